package sim

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/rand"
)

// Traffic pattern names accepted by NewTrafficGenerator.
const (
	PatternPoisson          = "poisson"
	PatternConstant         = "constant"
	PatternPeriodic         = "periodic"
	PatternWave             = "wave"
	PatternBursty           = "bursty"
	PatternExponentialBurst = "exponential_burst"
)

// IsValidTrafficPattern reports whether name is a supported pattern.
func IsValidTrafficPattern(name string) bool {
	switch name {
	case PatternPoisson, PatternConstant, PatternPeriodic, PatternWave, PatternBursty, PatternExponentialBurst:
		return true
	}
	return false
}

// TrafficPatternNames lists the supported traffic patterns.
func TrafficPatternNames() []string {
	return []string{PatternPoisson, PatternConstant, PatternPeriodic, PatternWave, PatternBursty, PatternExponentialBurst}
}

// Spike is a time-bounded multiplier on the generator's base rate.
// Overlapping spikes compose multiplicatively.
type Spike struct {
	StartTime           float64 `yaml:"start_time"` // seconds
	Duration            float64 `yaml:"duration"`   // seconds
	IntensityMultiplier float64 `yaml:"intensity_multiplier"`
}

// TrafficParams carries the per-pattern tuning knobs. Zero values select the
// defaults listed on each field.
type TrafficParams struct {
	Period          float64 `yaml:"period"`           // periodic: rate modulation period, seconds (default 3600)
	AmplitudeFactor float64 `yaml:"amplitude_factor"` // periodic/wave: modulation amplitude (default 0.5 periodic, 0.8 wave)
	WavePeriod      float64 `yaml:"wave_period"`      // wave: waveform period, seconds (default 60)
	WaveType        string  `yaml:"wave_type"`        // wave: "sine" (default) or "square"
	BurstSizeMean   float64 `yaml:"burst_size_mean"`  // bursty: mean arrivals per burst (default 5)
	BurstInterval   float64 `yaml:"burst_interval"`   // bursty: gap between bursts, seconds (default 2)
	BurstRate       float64 `yaml:"burst_rate"`       // exponential_burst: bursts per second (default 0.5)
	MeanBurstSize   float64 `yaml:"mean_burst_size"`  // exponential_burst: mean arrivals per burst (default 8)
}

// TrafficGenerator produces a lazy, effectively infinite sequence of
// inter-arrival delays. Restartable: the same seed reproduces the same
// sequence.
type TrafficGenerator interface {
	// Next returns the delay in seconds until the next arrival, given the
	// current simulated time. Returns +Inf when the rate is zero.
	Next(now float64) float64
	// Rate returns the instantaneous arrival rate (req/s) at time t with
	// spike multipliers applied.
	Rate(t float64) float64
}

// NewTrafficGenerator creates the generator for a pattern name. The name must
// have been validated already; an unknown name is a programming error and
// panics.
func NewTrafficGenerator(pattern string, baseRate float64, params TrafficParams, spikes []Spike, rng *rand.Rand) TrafficGenerator {
	base := baseTraffic{baseRate: baseRate, spikes: sortedSpikes(spikes), rng: rng}
	switch pattern {
	case PatternPoisson:
		return &poissonTraffic{base}
	case PatternConstant:
		return &constantTraffic{base}
	case PatternPeriodic:
		return &periodicTraffic{
			baseTraffic: base,
			period:      defaultIfZero(params.Period, 3600),
			amplitude:   defaultIfZero(params.AmplitudeFactor, 0.5),
		}
	case PatternWave:
		return &waveTraffic{
			baseTraffic: base,
			period:      defaultIfZero(params.WavePeriod, 60),
			amplitude:   defaultIfZero(params.AmplitudeFactor, 0.8),
			square:      params.WaveType == "square",
		}
	case PatternBursty:
		return &burstyTraffic{
			baseTraffic: base,
			sizeMean:    defaultIfZero(params.BurstSizeMean, 5),
			interval:    defaultIfZero(params.BurstInterval, 2),
		}
	case PatternExponentialBurst:
		return &expBurstTraffic{
			baseTraffic: base,
			interval:    1 / defaultIfZero(params.BurstRate, 0.5),
			sizeMean:    defaultIfZero(params.MeanBurstSize, 8),
		}
	default:
		panic(fmt.Sprintf("unknown traffic pattern %q", pattern))
	}
}

func defaultIfZero(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func sortedSpikes(spikes []Spike) []Spike {
	s := make([]Spike, len(spikes))
	copy(s, spikes)
	sort.Slice(s, func(i, j int) bool { return s[i].StartTime < s[j].StartTime })
	return s
}

type baseTraffic struct {
	baseRate float64
	spikes   []Spike
	rng      *rand.Rand
}

// spikeMultiplier composes all spike windows covering time t.
func (b *baseTraffic) spikeMultiplier(t float64) float64 {
	m := 1.0
	for _, s := range b.spikes {
		if s.StartTime <= t && t < s.StartTime+s.Duration {
			m *= s.IntensityMultiplier
		}
	}
	return m
}

// poissonTraffic draws exponentially distributed inter-arrival delays.
type poissonTraffic struct {
	baseTraffic
}

func (g *poissonTraffic) Rate(t float64) float64 {
	return g.baseRate * g.spikeMultiplier(t)
}

func (g *poissonTraffic) Next(now float64) float64 {
	return expInterval(g.rng, g.Rate(now))
}

// constantTraffic emits arrivals with exact 1/rate spacing.
type constantTraffic struct {
	baseTraffic
}

func (g *constantTraffic) Rate(t float64) float64 {
	return g.baseRate * g.spikeMultiplier(t)
}

func (g *constantTraffic) Next(now float64) float64 {
	rate := g.Rate(now)
	if rate <= 0 {
		return math.Inf(1)
	}
	return 1 / rate
}

// periodicTraffic modulates the base rate sinusoidally and samples arrivals
// as a Poisson process at the instantaneous rate.
type periodicTraffic struct {
	baseTraffic
	period    float64
	amplitude float64
}

func (g *periodicTraffic) Rate(t float64) float64 {
	rate := g.baseRate * (1 + g.amplitude*math.Sin(2*math.Pi*t/g.period))
	return math.Max(0, rate*g.spikeMultiplier(t))
}

func (g *periodicTraffic) Next(now float64) float64 {
	rate := g.Rate(now)
	if rate <= 0 && g.baseRate > 0 {
		// Trough of a deep modulation. Step forward instead of returning
		// +Inf, which would end the stream for good.
		return g.period / 100
	}
	return expInterval(g.rng, rate)
}

// waveTraffic is periodic with a selectable waveform (sine or square).
type waveTraffic struct {
	baseTraffic
	period    float64
	amplitude float64
	square    bool
}

func (g *waveTraffic) Rate(t float64) float64 {
	phase := math.Sin(2 * math.Pi * t / g.period)
	wave := phase
	if g.square {
		wave = 1.0
		if phase < 0 {
			wave = -1.0
		}
	}
	rate := g.baseRate * (1 + g.amplitude*wave)
	return math.Max(0, rate*g.spikeMultiplier(t))
}

func (g *waveTraffic) Next(now float64) float64 {
	rate := g.Rate(now)
	if rate <= 0 && g.baseRate > 0 {
		return g.period / 100
	}
	return expInterval(g.rng, rate)
}

// intraBurstGap is the near-zero spacing between arrivals inside one burst.
const intraBurstGap = 1e-4

// burstyTraffic emits Poisson-sized clusters of back-to-back arrivals
// separated by the configured inter-burst interval. Spikes multiply the burst
// frequency: the inter-burst wait is divided by the active spike multiplier.
type burstyTraffic struct {
	baseTraffic
	sizeMean float64
	interval float64
	pending  int // arrivals remaining in the current burst
}

func (g *burstyTraffic) Rate(t float64) float64 {
	return g.baseRate * g.spikeMultiplier(t)
}

func (g *burstyTraffic) Next(now float64) float64 {
	if g.pending > 0 {
		g.pending--
		return intraBurstGap
	}
	g.pending = poissonCount(g.rng, g.sizeMean) - 1
	return g.interval / g.spikeMultiplier(now)
}

// expBurstTraffic is bursty traffic whose burst sizes are exponentially
// distributed instead of Poisson.
type expBurstTraffic struct {
	baseTraffic
	sizeMean float64
	interval float64
	pending  int
}

func (g *expBurstTraffic) Rate(t float64) float64 {
	return g.baseRate * g.spikeMultiplier(t)
}

func (g *expBurstTraffic) Next(now float64) float64 {
	if g.pending > 0 {
		g.pending--
		return intraBurstGap
	}
	g.pending = exponentialCount(g.rng, g.sizeMean) - 1
	return g.interval / g.spikeMultiplier(now)
}
