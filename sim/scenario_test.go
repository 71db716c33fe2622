package sim

import (
	"strings"
	"testing"
)

func validScenario() Scenario {
	sc := Scenario{
		Name:                  "unit",
		Duration:              10,
		NumServers:            2,
		BaseRequestRate:       5,
		RequestProcessingTime: 100,
		Seed:                  42,
	}
	sc.Normalize()
	return sc
}

// TestScenario_NormalizeDefaults verifies zero-valued fields get the
// documented defaults.
func TestScenario_NormalizeDefaults(t *testing.T) {
	sc := Scenario{}
	sc.Normalize()

	if sc.Hardware.Name != "standard" {
		t.Errorf("default hardware = %q, want standard", sc.Hardware.Name)
	}
	if sc.Language.Name != "Python" {
		t.Errorf("default language = %q, want Python", sc.Language.Name)
	}
	if sc.TrafficPattern != PatternPoisson {
		t.Errorf("default pattern = %q, want poisson", sc.TrafficPattern)
	}
	if sc.BalancingStrategy != StrategyRoundRobin {
		t.Errorf("default strategy = %q, want round_robin", sc.BalancingStrategy)
	}
	if sc.ProcessingTimeDistribution != string(DistNormal) {
		t.Errorf("default distribution = %q, want normal", sc.ProcessingTimeDistribution)
	}
	if sc.MinServiceTime != 0.1 {
		t.Errorf("default min service time = %v, want 0.1", sc.MinServiceTime)
	}
	if sc.UtilizationDecay != 0.8 {
		t.Errorf("default utilization decay = %v, want 0.8", sc.UtilizationDecay)
	}
	if sc.ProgressInterval != 1 {
		t.Errorf("default progress interval = %v, want 1", sc.ProgressInterval)
	}
}

// TestScenario_ValidateBounds exercises the rejection bounds one field at a
// time.
func TestScenario_ValidateBounds(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Scenario)
		wantErr string
	}{
		{"valid", func(sc *Scenario) {}, ""},
		{"duration too short", func(sc *Scenario) { sc.Duration = 0.001 }, "duration"},
		{"duration too long", func(sc *Scenario) { sc.Duration = 100000 }, "duration"},
		{"zero servers", func(sc *Scenario) { sc.NumServers = 0 }, "num_servers"},
		{"too many servers", func(sc *Scenario) { sc.NumServers = 1001 }, "num_servers"},
		{"negative rate", func(sc *Scenario) { sc.BaseRequestRate = -1 }, "base_request_rate"},
		{"rate too high", func(sc *Scenario) { sc.BaseRequestRate = 200000 }, "base_request_rate"},
		{"zero rate ok", func(sc *Scenario) { sc.BaseRequestRate = 0 }, ""},
		{"timeout below floor", func(sc *Scenario) { sc.RequestTimeout = 50 }, "request_timeout"},
		{"timeout disabled ok", func(sc *Scenario) { sc.RequestTimeout = 0 }, ""},
		{"timeout above ceiling", func(sc *Scenario) { sc.RequestTimeout = 4000000 }, "request_timeout"},
		{"zero processing time", func(sc *Scenario) { sc.RequestProcessingTime = 0 }, "request_processing_time"},
		{"negative stddev", func(sc *Scenario) { sc.ProcessingTimeStdDev = -1 }, "processing_time_stddev"},
		{"negative network latency", func(sc *Scenario) { sc.NetworkLatencyMean = -1 }, "network latency"},
		{"decay at one", func(sc *Scenario) { sc.UtilizationDecay = 1 }, "utilization_decay"},
		{"unknown pattern", func(sc *Scenario) { sc.TrafficPattern = "tsunami" }, "traffic_pattern"},
		{"unknown strategy", func(sc *Scenario) { sc.BalancingStrategy = "dice" }, "balancing_strategy"},
		{"unknown distribution", func(sc *Scenario) { sc.ProcessingTimeDistribution = "uniform" }, "distribution"},
		{"weights length mismatch", func(sc *Scenario) { sc.Weights = []int{1, 2, 3} }, "weights"},
		{"negative weight", func(sc *Scenario) { sc.Weights = []int{1, -1} }, "weights"},
		{"all-zero weights", func(sc *Scenario) { sc.Weights = []int{0, 0} }, "weights"},
		{"weights matching ok", func(sc *Scenario) { sc.Weights = []int{2, 1} }, ""},
		{"negative spike start", func(sc *Scenario) { sc.Spikes = []Spike{{StartTime: -1, Duration: 1, IntensityMultiplier: 2}} }, "spikes"},
		{"zero spike duration", func(sc *Scenario) { sc.Spikes = []Spike{{StartTime: 1, Duration: 0, IntensityMultiplier: 2}} }, "spikes"},
		{"zero spike intensity", func(sc *Scenario) { sc.Spikes = []Spike{{StartTime: 1, Duration: 1, IntensityMultiplier: 0}} }, "spikes"},
		{"negative workers", func(sc *Scenario) { sc.WorkersPerServer = -1 }, "workers_per_server"},
		{"coreless hardware without workers", func(sc *Scenario) {
			sc.Hardware = HardwareProfile{Name: "weird", ProcessingPower: 1}
		}, "cores"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := validScenario()
			tt.mutate(&sc)
			err := sc.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error mentioning %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
