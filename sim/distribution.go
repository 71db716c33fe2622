package sim

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// DistributionKind selects the statistical distribution used for processing
// time sampling.
type DistributionKind string

const (
	DistNormal    DistributionKind = "normal"
	DistLogNormal DistributionKind = "lognormal"
)

// IsValidDistribution reports whether name is a supported distribution kind.
func IsValidDistribution(name string) bool {
	switch DistributionKind(name) {
	case DistNormal, DistLogNormal:
		return true
	}
	return false
}

// ServiceSampler draws service durations and network latencies for one
// server. All randomness flows through the server's dedicated RNG stream.
type ServiceSampler struct {
	Kind            DistributionKind
	StdDevMs        float64
	NetworkMeanMs   float64
	NetworkStdDevMs float64
	MinServiceMs    float64
	rng             *rand.Rand
}

// NewServiceSampler creates a sampler bound to the given RNG stream.
func NewServiceSampler(kind DistributionKind, stddevMs, netMeanMs, netStdDevMs, minServiceMs float64, rng *rand.Rand) *ServiceSampler {
	return &ServiceSampler{
		Kind:            kind,
		StdDevMs:        stddevMs,
		NetworkMeanMs:   netMeanMs,
		NetworkStdDevMs: netStdDevMs,
		MinServiceMs:    minServiceMs,
		rng:             rng,
	}
}

// SampleProcessing draws a processing time (ms) around baseMs. A zero stddev
// returns baseMs exactly. A negative normal sample is non-physical: it is
// clamped to MinServiceMs and flagged so the request's terminal outcome is
// recorded as an error rather than a success.
func (s *ServiceSampler) SampleProcessing(baseMs float64) (ms float64, errored bool) {
	if s.StdDevMs <= 0 {
		return baseMs, false
	}

	var sample float64
	switch s.Kind {
	case DistLogNormal:
		// Convert the (mean, stddev) pair into log-space parameters so the
		// sampled distribution has the requested moments.
		ratio := s.StdDevMs / baseMs
		mu := math.Log(baseMs / math.Sqrt(1+ratio*ratio))
		sigma := math.Sqrt(math.Log(1 + ratio*ratio))
		sample = distuv.LogNormal{Mu: mu, Sigma: sigma, Src: s.rng}.Rand()
	default:
		sample = distuv.Normal{Mu: baseMs, Sigma: s.StdDevMs, Src: s.rng}.Rand()
	}

	if sample < 0 {
		return s.MinServiceMs, true
	}
	if sample < s.MinServiceMs {
		return s.MinServiceMs, false
	}
	return sample, false
}

// SampleNetworkLatency draws a normally distributed network latency (ms),
// floored at zero. Returns 0 when no latency is configured.
func (s *ServiceSampler) SampleNetworkLatency() float64 {
	if s.NetworkMeanMs <= 0 {
		return 0
	}
	sample := distuv.Normal{Mu: s.NetworkMeanMs, Sigma: s.NetworkStdDevMs, Src: s.rng}.Rand()
	return math.Max(0, sample)
}

// expInterval draws an exponentially distributed inter-arrival delay (s) for
// the given rate (req/s). Used by the Poisson-shaped traffic patterns.
func expInterval(rng *rand.Rand, rate float64) float64 {
	if rate <= 0 {
		return math.Inf(1)
	}
	return distuv.Exponential{Rate: rate, Src: rng}.Rand()
}

// poissonCount draws a Poisson-distributed count with the given mean,
// floored at 1. Used for burst sizing.
func poissonCount(rng *rand.Rand, mean float64) int {
	n := int(distuv.Poisson{Lambda: mean, Src: rng}.Rand())
	if n < 1 {
		return 1
	}
	return n
}

// exponentialCount draws an exponentially distributed count with the given
// mean, floored at 1.
func exponentialCount(rng *rand.Rand, mean float64) int {
	n := int(distuv.Exponential{Rate: 1 / mean, Src: rng}.Rand())
	if n < 1 {
		return 1
	}
	return n
}
