package sim

import "fmt"

// HardwareProfile is an immutable capability descriptor for a server class.
// Times are in milliseconds; CPUSpeed is GHz.
type HardwareProfile struct {
	Name            string
	CPUSpeed        float64
	MemoryGB        int
	IOLatency       float64
	ProcessingPower float64
	NumCores        int
}

// EstimateServiceTime converts an abstract base processing time (ms) into the
// effective time on this hardware: faster processing power divides the base
// cost, and a fraction of the IO latency is paid per request.
func (h HardwareProfile) EstimateServiceTime(baseMs float64) float64 {
	return baseMs/h.ProcessingPower + h.IOLatency*0.25
}

// LanguageProfile captures the per-runtime efficiency multiplier applied to
// request processing time, plus descriptive overheads.
type LanguageProfile struct {
	Name             string
	EfficiencyFactor float64
	MemoryOverheadMB float64
	StartupTimeMs    float64
}

var hardwareProfiles = map[string]HardwareProfile{
	"entry_level":      {Name: "entry_level", CPUSpeed: 2.0, MemoryGB: 4, IOLatency: 2.0, ProcessingPower: 1.5, NumCores: 4},
	"standard":         {Name: "standard", CPUSpeed: 2.4, MemoryGB: 8, IOLatency: 1.0, ProcessingPower: 5.0, NumCores: 8},
	"high_performance": {Name: "high_performance", CPUSpeed: 3.5, MemoryGB: 16, IOLatency: 0.4, ProcessingPower: 12.5, NumCores: 16},
	"enterprise":       {Name: "enterprise", CPUSpeed: 4.0, MemoryGB: 32, IOLatency: 0.2, ProcessingPower: 30.0, NumCores: 32},
}

var languageProfiles = map[string]LanguageProfile{
	"python": {Name: "Python", EfficiencyFactor: 2.0, MemoryOverheadMB: 150, StartupTimeMs: 450},
	"nodejs": {Name: "Node.js", EfficiencyFactor: 4.0, MemoryOverheadMB: 120, StartupTimeMs: 300},
	"java":   {Name: "Java", EfficiencyFactor: 8.0, MemoryOverheadMB: 220, StartupTimeMs: 800},
	"go":     {Name: "Go", EfficiencyFactor: 15.0, MemoryOverheadMB: 70, StartupTimeMs: 150},
	"rust":   {Name: "Rust", EfficiencyFactor: 22.0, MemoryOverheadMB: 50, StartupTimeMs: 80},
	"dotnet": {Name: ".NET", EfficiencyFactor: 7.0, MemoryOverheadMB: 180, StartupTimeMs: 600},
}

// HardwareByName returns a named hardware profile.
func HardwareByName(name string) (HardwareProfile, error) {
	if p, ok := hardwareProfiles[name]; ok {
		return p, nil
	}
	return HardwareProfile{}, fmt.Errorf("unknown hardware profile %q", name)
}

// LanguageByName returns a named language profile.
func LanguageByName(name string) (LanguageProfile, error) {
	if p, ok := languageProfiles[name]; ok {
		return p, nil
	}
	return LanguageProfile{}, fmt.Errorf("unknown language profile %q", name)
}

// HardwareProfileNames lists the built-in hardware profiles.
func HardwareProfileNames() []string {
	return []string{"entry_level", "standard", "high_performance", "enterprise"}
}

// LanguageProfileNames lists the built-in language profiles.
func LanguageProfileNames() []string {
	return []string{"python", "nodejs", "java", "go", "rust", "dotnet"}
}
