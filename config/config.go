// Package config loads simulation scenarios from YAML files. A file holds
// either a single scenario document or a top-level scenarios list; hardware
// may be given as a built-in profile name or spelled out inline.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Sang-it/server-load-simulation/sim"
)

// ScenarioConfig is the YAML shape of one scenario. It mirrors sim.Scenario
// except that hardware and language are resolved from names.
type ScenarioConfig struct {
	Name     string  `yaml:"name"`
	Duration float64 `yaml:"duration"`

	NumServers       int          `yaml:"num_servers"`
	Hardware         HardwareSpec `yaml:"hardware"`
	Language         string       `yaml:"language"`
	WorkersPerServer int          `yaml:"workers_per_server"`

	BaseRequestRate float64           `yaml:"base_request_rate"`
	TrafficPattern  string            `yaml:"traffic_pattern"`
	TrafficParams   sim.TrafficParams `yaml:"traffic_params"`
	Spikes          []sim.Spike       `yaml:"spikes"`

	BalancingStrategy string `yaml:"balancing_strategy"`
	Weights           []int  `yaml:"weights"`

	RequestProcessingTime      float64 `yaml:"request_processing_time"`
	RequestTimeout             float64 `yaml:"request_timeout"`
	ProcessingTimeStdDev       float64 `yaml:"processing_time_stddev"`
	ProcessingTimeDistribution string  `yaml:"processing_time_distribution"`
	MinServiceTime             float64 `yaml:"min_service_time"`

	NetworkLatencyMean   float64 `yaml:"network_latency_mean"`
	NetworkLatencyStdDev float64 `yaml:"network_latency_stddev"`

	CPUDegradationEnabled bool    `yaml:"cpu_degradation_enabled"`
	UtilizationDecay      float64 `yaml:"utilization_decay"`

	Seed             int64   `yaml:"seed"`
	ProgressInterval float64 `yaml:"progress_interval"`
}

// HardwareSpec accepts either a profile name ("standard") or an inline
// profile mapping.
type HardwareSpec struct {
	profile string
	inline  *inlineHardware
}

type inlineHardware struct {
	Name            string  `yaml:"name"`
	CPUSpeed        float64 `yaml:"cpu_speed"`
	MemoryGB        int     `yaml:"memory_gb"`
	IOLatency       float64 `yaml:"io_latency"`
	ProcessingPower float64 `yaml:"processing_power"`
	NumCores        int     `yaml:"num_cores"`
}

func (h *HardwareSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&h.profile)
	}
	h.inline = &inlineHardware{}
	return value.Decode(h.inline)
}

func (h *HardwareSpec) resolve() (sim.HardwareProfile, error) {
	if h.inline != nil {
		hw := sim.HardwareProfile{
			Name:            h.inline.Name,
			CPUSpeed:        h.inline.CPUSpeed,
			MemoryGB:        h.inline.MemoryGB,
			IOLatency:       h.inline.IOLatency,
			ProcessingPower: h.inline.ProcessingPower,
			NumCores:        h.inline.NumCores,
		}
		if hw.Name == "" {
			hw.Name = "custom"
		}
		if hw.ProcessingPower <= 0 {
			return sim.HardwareProfile{}, fmt.Errorf("inline hardware %q: processing_power must be positive", hw.Name)
		}
		if hw.NumCores <= 0 {
			return sim.HardwareProfile{}, fmt.Errorf("inline hardware %q: num_cores must be positive", hw.Name)
		}
		return hw, nil
	}
	if h.profile == "" {
		return sim.HardwareProfile{}, nil // defaulted by Normalize
	}
	return sim.HardwareByName(h.profile)
}

type scenarioFile struct {
	Scenarios []ScenarioConfig `yaml:"scenarios"`
}

// Load reads scenarios from a YAML file and returns them normalized and
// validated.
func Load(path string) ([]sim.Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scenario file: %w", err)
	}
	defer f.Close()

	scenarios, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scenarios, nil
}

// Parse decodes scenarios from YAML. The document is either a mapping with a
// scenarios list, or a single scenario mapping.
func Parse(r io.Reader) ([]sim.Scenario, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var file scenarioFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	configs := file.Scenarios
	if len(configs) == 0 {
		var single ScenarioConfig
		if err := yaml.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
		if single.Duration == 0 && single.NumServers == 0 {
			return nil, fmt.Errorf("no scenarios found")
		}
		configs = []ScenarioConfig{single}
	}

	scenarios := make([]sim.Scenario, 0, len(configs))
	for i, cfg := range configs {
		sc, err := cfg.ToScenario()
		if err != nil {
			return nil, fmt.Errorf("scenario %d (%s): %w", i, cfg.Name, err)
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

// ToScenario resolves profiles, fills defaults, and validates.
func (c *ScenarioConfig) ToScenario() (sim.Scenario, error) {
	hw, err := c.Hardware.resolve()
	if err != nil {
		return sim.Scenario{}, err
	}

	var lang sim.LanguageProfile
	if c.Language != "" {
		lang, err = sim.LanguageByName(c.Language)
		if err != nil {
			return sim.Scenario{}, err
		}
	}

	sc := sim.Scenario{
		Name:                       c.Name,
		Duration:                   c.Duration,
		NumServers:                 c.NumServers,
		Hardware:                   hw,
		Language:                   lang,
		WorkersPerServer:           c.WorkersPerServer,
		BaseRequestRate:            c.BaseRequestRate,
		TrafficPattern:             c.TrafficPattern,
		Traffic:                    c.TrafficParams,
		Spikes:                     c.Spikes,
		BalancingStrategy:          c.BalancingStrategy,
		Weights:                    c.Weights,
		RequestProcessingTime:      c.RequestProcessingTime,
		RequestTimeout:             c.RequestTimeout,
		ProcessingTimeStdDev:       c.ProcessingTimeStdDev,
		ProcessingTimeDistribution: c.ProcessingTimeDistribution,
		MinServiceTime:             c.MinServiceTime,
		NetworkLatencyMean:         c.NetworkLatencyMean,
		NetworkLatencyStdDev:       c.NetworkLatencyStdDev,
		CPUDegradationEnabled:      c.CPUDegradationEnabled,
		UtilizationDecay:           c.UtilizationDecay,
		Seed:                       c.Seed,
		ProgressInterval:           c.ProgressInterval,
	}

	sc.Normalize()
	if err := sc.Validate(); err != nil {
		return sim.Scenario{}, err
	}
	return sc, nil
}
