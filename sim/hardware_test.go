package sim

import (
	"math"
	"testing"
)

// TestEstimateServiceTime verifies the hardware scaling formula: base time
// divided by processing power plus a quarter of the IO latency.
func TestEstimateServiceTime(t *testing.T) {
	tests := []struct {
		profile string
		baseMs  float64
		want    float64
	}{
		{"standard", 100, 100/5.0 + 1.0*0.25},          // 20.25
		{"entry_level", 100, 100/1.5 + 2.0*0.25},       // 67.17
		{"high_performance", 100, 100/12.5 + 0.4*0.25}, // 8.1
		{"enterprise", 100, 100/30.0 + 0.2*0.25},       // 3.38
	}
	for _, tt := range tests {
		hw, err := HardwareByName(tt.profile)
		if err != nil {
			t.Fatalf("HardwareByName(%q): %v", tt.profile, err)
		}
		if got := hw.EstimateServiceTime(tt.baseMs); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: EstimateServiceTime(%v) = %v, want %v", tt.profile, tt.baseMs, got, tt.want)
		}
	}
}

// TestProfileLookups verifies the name registries and their error paths.
func TestProfileLookups(t *testing.T) {
	for _, name := range HardwareProfileNames() {
		if _, err := HardwareByName(name); err != nil {
			t.Errorf("HardwareByName(%q): %v", name, err)
		}
	}
	for _, name := range LanguageProfileNames() {
		if _, err := LanguageByName(name); err != nil {
			t.Errorf("LanguageByName(%q): %v", name, err)
		}
	}

	if _, err := HardwareByName("quantum"); err == nil {
		t.Error("expected error for unknown hardware profile")
	}
	if _, err := LanguageByName("cobol"); err == nil {
		t.Error("expected error for unknown language profile")
	}
}

// TestLanguageEfficiencyOrdering verifies the relative efficiency of the
// built-in runtimes (compiled beats VM beats interpreted).
func TestLanguageEfficiencyOrdering(t *testing.T) {
	order := []string{"python", "nodejs", "dotnet", "java", "go", "rust"}
	prev := 0.0
	for _, name := range order {
		lang, err := LanguageByName(name)
		if err != nil {
			t.Fatalf("LanguageByName(%q): %v", name, err)
		}
		if lang.EfficiencyFactor <= prev {
			t.Errorf("%s efficiency %v not greater than previous %v", name, lang.EfficiencyFactor, prev)
		}
		prev = lang.EfficiencyFactor
	}
}
