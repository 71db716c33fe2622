package sim

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
)

func trafficRNG() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

// TestConstantTraffic_ExactSpacing verifies constant traffic emits exactly
// 1/rate intervals.
func TestConstantTraffic_ExactSpacing(t *testing.T) {
	gen := NewTrafficGenerator(PatternConstant, 10, TrafficParams{}, nil, trafficRNG())
	for i := 0; i < 5; i++ {
		if got := gen.Next(float64(i)); got != 0.1 {
			t.Errorf("Next = %v, want 0.1", got)
		}
	}
}

// TestTraffic_ZeroRateNeverArrives verifies a zero base rate yields +Inf
// delays rather than a division blowup.
func TestTraffic_ZeroRateNeverArrives(t *testing.T) {
	for _, pattern := range []string{PatternConstant, PatternPoisson} {
		gen := NewTrafficGenerator(pattern, 0, TrafficParams{}, nil, trafficRNG())
		if got := gen.Next(0); !math.IsInf(got, 1) {
			t.Errorf("%s: Next = %v, want +Inf", pattern, got)
		}
	}
}

// TestSpike_MultipliesRateInsideWindow verifies spikes scale the rate only
// within [start, start+duration) and compose multiplicatively when they
// overlap.
func TestSpike_MultipliesRateInsideWindow(t *testing.T) {
	spikes := []Spike{
		{StartTime: 5, Duration: 10, IntensityMultiplier: 2},
		{StartTime: 8, Duration: 4, IntensityMultiplier: 3},
	}
	gen := NewTrafficGenerator(PatternConstant, 1, TrafficParams{}, spikes, trafficRNG())

	tests := []struct {
		t    float64
		rate float64
	}{
		{t: 0, rate: 1},     // before any spike
		{t: 5, rate: 2},     // first spike starts (inclusive)
		{t: 9, rate: 6},     // overlap composes 2*3
		{t: 12, rate: 2},    // second spike ended (exclusive end)
		{t: 15, rate: 1},    // first spike ended
		{t: 14.99, rate: 2}, // just inside first spike
	}
	for _, tt := range tests {
		if got := gen.Rate(tt.t); math.Abs(got-tt.rate) > 1e-12 {
			t.Errorf("Rate(%v) = %v, want %v", tt.t, got, tt.rate)
		}
	}
}

// TestPeriodicTraffic_RateFollowsSine verifies the sinusoidal modulation hits
// its peak a quarter period in and its floor at three quarters.
func TestPeriodicTraffic_RateFollowsSine(t *testing.T) {
	params := TrafficParams{Period: 100, AmplitudeFactor: 0.5}
	gen := NewTrafficGenerator(PatternPeriodic, 10, params, nil, trafficRNG())

	if got := gen.Rate(25); math.Abs(got-15) > 1e-9 {
		t.Errorf("Rate at peak = %v, want 15", got)
	}
	if got := gen.Rate(75); math.Abs(got-5) > 1e-9 {
		t.Errorf("Rate at trough = %v, want 5", got)
	}
	if got := gen.Rate(0); math.Abs(got-10) > 1e-9 {
		t.Errorf("Rate at phase zero = %v, want 10", got)
	}
}

// TestWaveTraffic_SquareWave verifies the square waveform switches between
// the two rate levels.
func TestWaveTraffic_SquareWave(t *testing.T) {
	params := TrafficParams{WavePeriod: 60, AmplitudeFactor: 0.8, WaveType: "square"}
	gen := NewTrafficGenerator(PatternWave, 10, params, nil, trafficRNG())

	if got := gen.Rate(15); math.Abs(got-18) > 1e-9 { // first half: +amplitude
		t.Errorf("Rate in high half = %v, want 18", got)
	}
	if got := gen.Rate(45); math.Abs(got-2) > 1e-9 { // second half: -amplitude
		t.Errorf("Rate in low half = %v, want 2", got)
	}
}

// TestWaveTraffic_DeadZoneProbesForward verifies a full-amplitude waveform
// steps through its zero-rate half instead of ending the stream.
func TestWaveTraffic_DeadZoneProbesForward(t *testing.T) {
	params := TrafficParams{WavePeriod: 60, AmplitudeFactor: 1.0, WaveType: "square"}
	gen := NewTrafficGenerator(PatternWave, 10, params, nil, trafficRNG())

	if got := gen.Rate(45); got != 0 {
		t.Fatalf("Rate in low half = %v, want 0", got)
	}
	if got := gen.Next(45); math.IsInf(got, 1) {
		t.Error("Next in dead zone should probe forward, not return +Inf")
	}
}

// TestBurstyTraffic_IntervalThenBackToBack verifies bursty traffic alternates
// a fixed inter-burst gap with near-zero intra-burst spacing.
func TestBurstyTraffic_IntervalThenBackToBack(t *testing.T) {
	params := TrafficParams{BurstSizeMean: 5, BurstInterval: 2}
	gen := NewTrafficGenerator(PatternBursty, 10, params, nil, trafficRNG())

	gaps, bursts := 0, 0
	for i := 0; i < 200; i++ {
		switch got := gen.Next(0); got {
		case 2.0:
			gaps++
		case intraBurstGap:
			bursts++
		default:
			t.Fatalf("Next = %v, want %v or %v", got, 2.0, intraBurstGap)
		}
	}
	if gaps == 0 || bursts == 0 {
		t.Errorf("expected both gaps and intra-burst arrivals, got %d gaps, %d intra", gaps, bursts)
	}
	// Mean burst size 5 means roughly 4 intra-burst arrivals per gap.
	if bursts < gaps {
		t.Errorf("intra-burst arrivals (%d) should outnumber gaps (%d) at mean size 5", bursts, gaps)
	}
}

// TestBurstPatterns_SpikeShortensBurstGap verifies a spike window multiplies
// the burst frequency: the inter-burst wait shrinks by the spike multiplier
// while intra-burst spacing stays near zero.
func TestBurstPatterns_SpikeShortensBurstGap(t *testing.T) {
	spikes := []Spike{{StartTime: 0, Duration: 100, IntensityMultiplier: 4}}

	tests := []struct {
		pattern string
		params  TrafficParams
		gap     float64
	}{
		{PatternBursty, TrafficParams{BurstSizeMean: 5, BurstInterval: 2}, 0.5},
		{PatternExponentialBurst, TrafficParams{BurstRate: 0.5, MeanBurstSize: 8}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			gen := NewTrafficGenerator(tt.pattern, 10, tt.params, spikes, trafficRNG())
			for i := 0; i < 100; i++ {
				got := gen.Next(1)
				if got != tt.gap && got != intraBurstGap {
					t.Fatalf("Next = %v, want %v or %v", got, tt.gap, intraBurstGap)
				}
			}

			// Outside the spike window the full interval applies again.
			outside := NewTrafficGenerator(tt.pattern, 10, tt.params, spikes, trafficRNG())
			if got := outside.Next(150); got != 2.0 {
				t.Errorf("Next outside spike = %v, want 2.0", got)
			}
		})
	}
}

// TestExponentialBurst_FixedIntervalFromRate verifies the inter-burst
// interval is 1/burst_rate.
func TestExponentialBurst_FixedIntervalFromRate(t *testing.T) {
	params := TrafficParams{BurstRate: 0.5, MeanBurstSize: 8}
	gen := NewTrafficGenerator(PatternExponentialBurst, 10, params, nil, trafficRNG())

	if got := gen.Next(0); got != 2.0 {
		t.Errorf("first Next = %v, want 2.0 (1/burst_rate)", got)
	}
}

// TestTraffic_SeededReproducibility verifies that the same stream seed
// reproduces the same arrival sequence for stochastic patterns.
func TestTraffic_SeededReproducibility(t *testing.T) {
	for _, pattern := range []string{PatternPoisson, PatternPeriodic, PatternBursty} {
		t.Run(pattern, func(t *testing.T) {
			g1 := NewTrafficGenerator(pattern, 10, TrafficParams{}, nil, rand.New(rand.NewSource(7)))
			g2 := NewTrafficGenerator(pattern, 10, TrafficParams{}, nil, rand.New(rand.NewSource(7)))
			for i := 0; i < 50; i++ {
				if a, b := g1.Next(float64(i)), g2.Next(float64(i)); a != b {
					t.Fatalf("delay %d diverged: %v vs %v", i, a, b)
				}
			}
		})
	}
}

// TestNewTrafficGenerator_UnknownPatternPanics verifies unvalidated pattern
// names are rejected loudly.
func TestNewTrafficGenerator_UnknownPatternPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown pattern")
		}
	}()
	NewTrafficGenerator("avalanche", 1, TrafficParams{}, nil, trafficRNG())
}
