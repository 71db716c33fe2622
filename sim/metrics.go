package sim

import (
	"math"
	"sort"

	"golang.org/x/exp/rand"
)

// reservoirCapacity bounds the memory of the percentile estimator. Runs with
// at most this many terminal requests get exact percentiles; beyond it the
// reservoir is a uniform sample (Algorithm R) drawn from the dedicated,
// seeded metrics stream, keeping runs reproducible.
const reservoirCapacity = 65536

// Collector subscribes to every terminal request transition and incrementally
// aggregates counts, sums, and order statistics without retaining the full
// sample set. All mutation happens on the single-threaded event-dispatch
// path.
type Collector struct {
	finalized bool
	arrivals  int

	global    *accumulator
	perServer map[int]*accumulator

	util map[int]*utilizationAccumulator
}

// NewCollector creates a collector whose reservoir sampling draws from the
// given RNG stream.
func NewCollector(rng *rand.Rand) *Collector {
	return &Collector{
		global:    newAccumulator(newReservoir(reservoirCapacity, rng)),
		perServer: make(map[int]*accumulator),
		util:      make(map[int]*utilizationAccumulator),
	}
}

// RecordArrival counts a generated arrival, independent of its eventual fate.
func (c *Collector) RecordArrival() {
	if c.finalized {
		panic("metrics: RecordArrival after Finalize")
	}
	c.arrivals++
}

// RecordUtilization stores a periodic utilization sample for a server.
func (c *Collector) RecordUtilization(serverID int, utilization float64) {
	if c.finalized {
		panic("metrics: RecordUtilization after Finalize")
	}
	u, ok := c.util[serverID]
	if !ok {
		u = &utilizationAccumulator{}
		c.util[serverID] = u
	}
	u.add(utilization)
}

// Observe records a request's terminal outcome. It must be called exactly
// once per terminal request; calling it after Finalize is a contract
// violation and panics.
func (c *Collector) Observe(req *Request) {
	if c.finalized {
		panic("metrics: Observe after Finalize")
	}
	if !req.Terminal() {
		panic("metrics: Observe called with non-terminal request")
	}

	respMs := (req.CompletionTime - req.ArrivalTime) * 1000
	// Queue wait runs until service start, or until the terminal transition
	// for requests that timed out without ever starting.
	waitEnd := req.ServiceStartTime
	if !req.Started {
		waitEnd = req.CompletionTime
	}
	waitMs := (waitEnd - req.EnqueueTime) * 1000

	c.global.observe(req.Outcome, respMs, waitMs)
	acc, ok := c.perServer[req.ServerID]
	if !ok {
		acc = newAccumulator(nil)
		c.perServer[req.ServerID] = acc
	}
	acc.observe(req.Outcome, respMs, waitMs)
}

// Finalize computes the derived rates and freezes the collector. Further
// observations panic. Finalize itself must only be called once.
func (c *Collector) Finalize(duration float64) *Snapshot {
	if c.finalized {
		panic("metrics: Finalize called twice")
	}
	c.finalized = true
	return c.snapshot(duration)
}

// Interim builds a snapshot of the metrics collected so far without freezing
// the collector. Used by progress observers during a run.
func (c *Collector) Interim(simTime float64) *Snapshot {
	return c.snapshot(simTime)
}

func (c *Collector) snapshot(duration float64) *Snapshot {
	g := c.global
	total := g.total()

	snap := &Snapshot{
		TotalRequests:       total,
		SuccessfulRequests:  g.success,
		TimedOutRequests:    g.timedOut,
		ErrorRequests:       g.errored,
		ArrivalsGenerated:   c.arrivals,
		SimulationDurationS: duration,
	}

	if total > 0 {
		snap.AvgResponseTimeMs = g.respSum / float64(total)
		snap.MinResponseTimeMs = g.respMin
		snap.MaxResponseTimeMs = g.respMax
		if total > 1 {
			mean := snap.AvgResponseTimeMs
			variance := (g.respSumSq - float64(total)*mean*mean) / float64(total-1)
			if variance > 0 {
				snap.ResponseTimeStdDevMs = math.Sqrt(variance)
			}
		}
		snap.ResponseTimePercentilesMs = g.reservoir.percentiles()
		snap.AvgQueueTimeMs = g.waitSum / float64(total)
		snap.MaxQueueTimeMs = g.waitMax
		snap.SuccessRate = float64(g.success) / float64(total)
	}
	if duration > 0 {
		snap.SuccessfulThroughputRPS = float64(g.success) / duration
		snap.TotalThroughputRPS = float64(total) / duration
	}

	utilCount := 0
	for _, u := range c.util {
		snap.AvgServerUtilization += u.sum
		utilCount += u.count
		if u.max > snap.MaxServerUtilization {
			snap.MaxServerUtilization = u.max
		}
	}
	if utilCount > 0 {
		snap.AvgServerUtilization /= float64(utilCount)
	}

	ids := make([]int, 0, len(c.perServer))
	for id := range c.perServer {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		acc := c.perServer[id]
		stats := ServerStats{
			ServerID:           id,
			TotalRequests:      acc.total(),
			SuccessfulRequests: acc.success,
			TimedOutRequests:   acc.timedOut,
			ErrorRequests:      acc.errored,
		}
		if n := acc.total(); n > 0 {
			stats.AvgResponseTimeMs = acc.respSum / float64(n)
			stats.MinResponseTimeMs = acc.respMin
			stats.MaxResponseTimeMs = acc.respMax
		}
		if u, ok := c.util[id]; ok && u.count > 0 {
			stats.AvgUtilization = u.sum / float64(u.count)
			stats.MaxUtilization = u.max
		}
		snap.PerServer = append(snap.PerServer, stats)
	}

	return snap
}

// accumulator holds the streaming aggregates for one scope (global or a
// single server). The reservoir is carried only by the global scope.
type accumulator struct {
	success  int
	timedOut int
	errored  int

	respSum   float64
	respSumSq float64
	respMin   float64
	respMax   float64
	waitSum   float64
	waitMax   float64

	reservoir *reservoir
}

func newAccumulator(r *reservoir) *accumulator {
	return &accumulator{respMin: math.Inf(1), reservoir: r}
}

func (a *accumulator) total() int {
	return a.success + a.timedOut + a.errored
}

func (a *accumulator) observe(outcome Outcome, respMs, waitMs float64) {
	switch outcome {
	case OutcomeSuccess:
		a.success++
	case OutcomeTimedOut:
		a.timedOut++
	case OutcomeError:
		a.errored++
	}
	a.respSum += respMs
	a.respSumSq += respMs * respMs
	if respMs < a.respMin {
		a.respMin = respMs
	}
	if respMs > a.respMax {
		a.respMax = respMs
	}
	a.waitSum += waitMs
	if waitMs > a.waitMax {
		a.waitMax = waitMs
	}
	if a.reservoir != nil {
		a.reservoir.add(respMs)
	}
}

type utilizationAccumulator struct {
	sum   float64
	max   float64
	count int
}

func (u *utilizationAccumulator) add(v float64) {
	u.sum += v
	u.count++
	if v > u.max {
		u.max = v
	}
}

// reservoir is a bounded uniform sample of a stream (Algorithm R). Exact
// while the stream fits the capacity.
type reservoir struct {
	capacity int
	seen     int
	values   []float64
	rng      *rand.Rand
}

func newReservoir(capacity int, rng *rand.Rand) *reservoir {
	return &reservoir{capacity: capacity, rng: rng}
}

func (r *reservoir) add(v float64) {
	r.seen++
	if len(r.values) < r.capacity {
		r.values = append(r.values, v)
		return
	}
	if j := r.rng.Intn(r.seen); j < r.capacity {
		r.values[j] = v
	}
}

func (r *reservoir) percentiles() PercentileStats {
	if len(r.values) == 0 {
		return PercentileStats{}
	}
	sorted := make([]float64, len(r.values))
	copy(sorted, r.values)
	sort.Float64s(sorted)
	return PercentileStats{
		P50:  percentile(sorted, 50),
		P95:  percentile(sorted, 95),
		P99:  percentile(sorted, 99),
		P999: percentile(sorted, 99.9),
	}
}

// percentile computes the p-th percentile of sorted values using linear
// interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
