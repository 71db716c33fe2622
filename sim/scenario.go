package sim

import "fmt"

// Validation bounds. Scenarios outside these ranges are either degenerate or
// expensive enough to be a configuration mistake.
const (
	MinDuration = 0.01  // seconds
	MaxDuration = 86400 // one simulated day

	MaxServers = 1000

	MaxRequestRate = 100000 // req/s

	MinTimeoutMs = 100
	MaxTimeoutMs = 3600000 // one hour
)

// Scenario is the complete, validated configuration of one simulation run.
// Durations at the scenario surface are in the units operators think in:
// the run length in seconds, per-request times in milliseconds.
type Scenario struct {
	Name     string  `yaml:"name"`
	Duration float64 `yaml:"duration"` // seconds

	NumServers       int             `yaml:"num_servers"`
	Hardware         HardwareProfile `yaml:"-"`
	Language         LanguageProfile `yaml:"-"`
	WorkersPerServer int             `yaml:"workers_per_server"` // 0 means hardware core count

	BaseRequestRate float64       `yaml:"base_request_rate"` // req/s
	TrafficPattern  string        `yaml:"traffic_pattern"`
	Traffic         TrafficParams `yaml:"traffic_params"`
	Spikes          []Spike       `yaml:"spikes"`

	BalancingStrategy string `yaml:"balancing_strategy"`
	Weights           []int  `yaml:"weights"`

	RequestProcessingTime      float64 `yaml:"request_processing_time"` // ms, before hardware/language scaling
	RequestTimeout             float64 `yaml:"request_timeout"`         // ms, 0 disables timeouts
	ProcessingTimeStdDev       float64 `yaml:"processing_time_stddev"`  // ms
	ProcessingTimeDistribution string  `yaml:"processing_time_distribution"`
	MinServiceTime             float64 `yaml:"min_service_time"` // ms

	NetworkLatencyMean   float64 `yaml:"network_latency_mean"`   // ms
	NetworkLatencyStdDev float64 `yaml:"network_latency_stddev"` // ms

	CPUDegradationEnabled bool    `yaml:"cpu_degradation_enabled"`
	UtilizationDecay      float64 `yaml:"utilization_decay"`

	Seed             int64   `yaml:"seed"`
	ProgressInterval float64 `yaml:"progress_interval"` // seconds
}

// Normalize fills in the defaults for fields left at their zero value. Called
// by NewSimulator, and by the config loader before validation so error
// messages report the effective configuration.
func (sc *Scenario) Normalize() {
	if sc.Hardware.Name == "" {
		sc.Hardware = hardwareProfiles["standard"]
	}
	if sc.Language.Name == "" {
		sc.Language = languageProfiles["python"]
	}
	if sc.TrafficPattern == "" {
		sc.TrafficPattern = PatternPoisson
	}
	if sc.BalancingStrategy == "" {
		sc.BalancingStrategy = StrategyRoundRobin
	}
	if sc.ProcessingTimeDistribution == "" {
		sc.ProcessingTimeDistribution = string(DistNormal)
	}
	if sc.MinServiceTime <= 0 {
		sc.MinServiceTime = 0.1
	}
	if sc.UtilizationDecay == 0 {
		sc.UtilizationDecay = 0.8
	}
	if sc.ProgressInterval <= 0 {
		sc.ProgressInterval = 1
	}
}

// Validate checks the scenario against the supported names and bounds. It
// assumes Normalize has run.
func (sc *Scenario) Validate() error {
	if sc.Duration < MinDuration || sc.Duration > MaxDuration {
		return fmt.Errorf("duration %.4gs out of range [%g, %g]", sc.Duration, float64(MinDuration), float64(MaxDuration))
	}
	if sc.NumServers < 1 || sc.NumServers > MaxServers {
		return fmt.Errorf("num_servers %d out of range [1, %d]", sc.NumServers, MaxServers)
	}
	if sc.BaseRequestRate < 0 || sc.BaseRequestRate > MaxRequestRate {
		return fmt.Errorf("base_request_rate %.4g out of range [0, %d]", sc.BaseRequestRate, MaxRequestRate)
	}
	if sc.RequestTimeout != 0 && (sc.RequestTimeout < MinTimeoutMs || sc.RequestTimeout > MaxTimeoutMs) {
		return fmt.Errorf("request_timeout %.4gms out of range [%d, %d] (0 disables timeouts)", sc.RequestTimeout, MinTimeoutMs, MaxTimeoutMs)
	}
	if sc.RequestProcessingTime <= 0 {
		return fmt.Errorf("request_processing_time must be positive, got %.4g", sc.RequestProcessingTime)
	}
	if sc.ProcessingTimeStdDev < 0 {
		return fmt.Errorf("processing_time_stddev must be non-negative, got %.4g", sc.ProcessingTimeStdDev)
	}
	if sc.NetworkLatencyMean < 0 || sc.NetworkLatencyStdDev < 0 {
		return fmt.Errorf("network latency parameters must be non-negative")
	}
	if sc.UtilizationDecay < 0 || sc.UtilizationDecay >= 1 {
		return fmt.Errorf("utilization_decay %.4g out of range [0, 1)", sc.UtilizationDecay)
	}
	if sc.WorkersPerServer < 0 {
		return fmt.Errorf("workers_per_server must be non-negative, got %d", sc.WorkersPerServer)
	}
	if sc.WorkersPerServer == 0 && sc.Hardware.NumCores <= 0 {
		return fmt.Errorf("hardware profile %q has no cores and workers_per_server is unset", sc.Hardware.Name)
	}

	if !IsValidTrafficPattern(sc.TrafficPattern) {
		return fmt.Errorf("unknown traffic_pattern %q, expected one of %v", sc.TrafficPattern, TrafficPatternNames())
	}
	if !IsValidStrategy(sc.BalancingStrategy) {
		return fmt.Errorf("unknown balancing_strategy %q, expected one of %v", sc.BalancingStrategy, StrategyNames())
	}
	if !IsValidDistribution(sc.ProcessingTimeDistribution) {
		return fmt.Errorf("unknown processing_time_distribution %q, expected normal or lognormal", sc.ProcessingTimeDistribution)
	}

	if len(sc.Weights) > 0 {
		if len(sc.Weights) != sc.NumServers {
			return fmt.Errorf("weights has %d entries for %d servers", len(sc.Weights), sc.NumServers)
		}
		positive := false
		for i, w := range sc.Weights {
			if w < 0 {
				return fmt.Errorf("weights[%d] is negative", i)
			}
			if w > 0 {
				positive = true
			}
		}
		if !positive {
			return fmt.Errorf("weights must contain at least one positive entry")
		}
	}

	for i, sp := range sc.Spikes {
		if sp.StartTime < 0 {
			return fmt.Errorf("spikes[%d]: start_time must be non-negative", i)
		}
		if sp.Duration <= 0 {
			return fmt.Errorf("spikes[%d]: duration must be positive", i)
		}
		if sp.IntensityMultiplier <= 0 {
			return fmt.Errorf("spikes[%d]: intensity_multiplier must be positive", i)
		}
	}

	return nil
}
