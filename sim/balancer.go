package sim

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Load balancing strategy names accepted by NewLoadBalancer.
const (
	StrategyRoundRobin         = "round_robin"
	StrategyWeightedRoundRobin = "weighted_round_robin"
	StrategyLeastConnections   = "least_connections"
	StrategyLeastResponseTime  = "least_response_time"
	StrategyRandom             = "random"
	StrategyCPUAware           = "cpu_aware"
)

// IsValidStrategy reports whether name is a supported balancing strategy.
func IsValidStrategy(name string) bool {
	switch name {
	case StrategyRoundRobin, StrategyWeightedRoundRobin, StrategyLeastConnections,
		StrategyLeastResponseTime, StrategyRandom, StrategyCPUAware:
		return true
	}
	return false
}

// StrategyNames lists the supported balancing strategies.
func StrategyNames() []string {
	return []string{
		StrategyRoundRobin, StrategyWeightedRoundRobin, StrategyLeastConnections,
		StrategyLeastResponseTime, StrategyRandom, StrategyCPUAware,
	}
}

// ServerSnapshot is a lightweight read-only view of one server's state,
// rebuilt for every routing decision. Balancers see only snapshots, never the
// servers themselves.
type ServerSnapshot struct {
	ID              int
	QueueDepth      int     // requests waiting in the FIFO queue
	InFlight        int     // requests occupying worker slots
	Utilization     float64 // smoothed CPU utilization estimate, 0..1
	AvgResponseTime float64 // rolling average response time (s), 0 before first completion
}

// Load is the total outstanding work on this server.
func (s ServerSnapshot) Load() int {
	return s.QueueDepth + s.InFlight
}

// LoadBalancer selects a server for each incoming request. Implementations
// are pure functions of the snapshots except for strategy-specific rotation
// or weight counters.
type LoadBalancer interface {
	Select(req *Request, servers []ServerSnapshot) int
}

// Fixed score weights for the CPU-aware strategy.
const (
	cpuAwareUtilWeight  = 0.7
	cpuAwareQueueWeight = 0.3
)

// NewLoadBalancer creates a balancer by strategy name. Unknown names and
// empty weight-table entries are caught by Scenario validation; reaching here
// with one is a programming error and panics. weights applies only to
// weighted_round_robin (nil means weight 1 per server); rng is the run's
// seeded balancer stream, used only by the random strategy.
func NewLoadBalancer(strategy string, numServers int, weights []int, rng *rand.Rand) LoadBalancer {
	switch strategy {
	case StrategyRoundRobin:
		return &roundRobin{}
	case StrategyWeightedRoundRobin:
		w := weights
		if len(w) == 0 {
			w = make([]int, numServers)
			for i := range w {
				w[i] = 1
			}
		}
		return &weightedRoundRobin{weights: w}
	case StrategyLeastConnections:
		return &leastConnections{}
	case StrategyLeastResponseTime:
		return &leastResponseTime{}
	case StrategyRandom:
		return &randomBalancer{rng: rng}
	case StrategyCPUAware:
		return &cpuAware{}
	default:
		panic(fmt.Sprintf("unknown load balancing strategy %q", strategy))
	}
}

// roundRobin cycles through servers, advancing on every call.
type roundRobin struct {
	counter int
}

func (b *roundRobin) Select(_ *Request, servers []ServerSnapshot) int {
	mustHaveServers(servers)
	idx := b.counter % len(servers)
	b.counter++
	return servers[idx].ID
}

// weightedRoundRobin gives each server weight consecutive turns before
// advancing the cycle.
type weightedRoundRobin struct {
	weights []int
	idx     int
	used    int // turns consumed at the current index
}

func (b *weightedRoundRobin) Select(_ *Request, servers []ServerSnapshot) int {
	mustHaveServers(servers)
	// Skip non-positive weights so a zero-weighted server is never selected.
	for b.weights[b.idx%len(servers)] <= 0 {
		b.idx++
		b.used = 0
	}
	idx := b.idx % len(servers)
	b.used++
	if b.used >= b.weights[idx] {
		b.idx++
		b.used = 0
	}
	return servers[idx].ID
}

// leastConnections picks the server with the fewest in-flight plus queued
// requests; ties go to the lowest server id.
type leastConnections struct{}

func (b *leastConnections) Select(_ *Request, servers []ServerSnapshot) int {
	mustHaveServers(servers)
	best := servers[0]
	for _, s := range servers[1:] {
		if s.Load() < best.Load() {
			best = s
		}
	}
	return best.ID
}

// leastResponseTime picks the server with the lowest rolling-average response
// time. A server with no completions reports 0 and is preferred, seeding load
// across idle servers. Ties go to the lowest server id.
type leastResponseTime struct{}

func (b *leastResponseTime) Select(_ *Request, servers []ServerSnapshot) int {
	mustHaveServers(servers)
	best := servers[0]
	for _, s := range servers[1:] {
		if s.AvgResponseTime < best.AvgResponseTime {
			best = s
		}
	}
	return best.ID
}

// randomBalancer picks uniformly using the run's seeded stream.
type randomBalancer struct {
	rng *rand.Rand
}

func (b *randomBalancer) Select(_ *Request, servers []ServerSnapshot) int {
	mustHaveServers(servers)
	return servers[b.rng.Intn(len(servers))].ID
}

// cpuAware scores each server as utilization·α + normalizedQueue·β and picks
// the minimum. Queue length is normalized against the current maximum across
// servers. Ties go to the lowest server id.
type cpuAware struct{}

func (b *cpuAware) Select(_ *Request, servers []ServerSnapshot) int {
	mustHaveServers(servers)
	maxQueue := 0
	for _, s := range servers {
		if s.QueueDepth > maxQueue {
			maxQueue = s.QueueDepth
		}
	}
	best := servers[0]
	bestScore := b.score(servers[0], maxQueue)
	for _, s := range servers[1:] {
		if score := b.score(s, maxQueue); score < bestScore {
			best = s
			bestScore = score
		}
	}
	return best.ID
}

func (b *cpuAware) score(s ServerSnapshot, maxQueue int) float64 {
	normQueue := 0.0
	if maxQueue > 0 {
		normQueue = float64(s.QueueDepth) / float64(maxQueue)
	}
	return s.Utilization*cpuAwareUtilWeight + normQueue*cpuAwareQueueWeight
}

func mustHaveServers(servers []ServerSnapshot) {
	if len(servers) == 0 {
		panic("load balancer called with zero servers")
	}
}
