package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ProgressFunc observes the run at the progress interval. Observers must not
// mutate simulation state; snap is an interim metrics snapshot and may be nil
// when the observer only needs the clock.
type ProgressFunc func(simTime, duration float64, snap *Snapshot)

// Simulator owns the event loop for one scenario run. It is single-threaded:
// all state transitions happen inside Execute's dispatch loop, in the
// deterministic order imposed by the event queue.
type Simulator struct {
	Scenario  *Scenario
	Clock     float64
	Servers   []*Server
	Collector *Collector

	queue    *EventQueue
	balancer LoadBalancer
	traffic  TrafficGenerator
	rng      *PartitionedRNG

	nextSeq        uint64
	requestCounter int64

	progressFn ProgressFunc
}

// NewSimulator builds a ready-to-run simulator from a scenario. The scenario
// is normalized and validated; the initial arrival and progress events are
// seeded so Execute can be called directly.
func NewSimulator(sc Scenario) (*Simulator, error) {
	sc.Normalize()
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %q: %w", sc.Name, err)
	}

	rng := NewPartitionedRNG(sc.Seed)
	sim := &Simulator{
		Scenario:  &sc,
		Collector: NewCollector(rng.Stream(StreamMetrics)),
		queue:     NewEventQueue(),
		rng:       rng,
	}

	sim.traffic = NewTrafficGenerator(sc.TrafficPattern, sc.BaseRequestRate, sc.Traffic, sc.Spikes, rng.Stream(StreamTraffic))
	sim.balancer = NewLoadBalancer(sc.BalancingStrategy, sc.NumServers, sc.Weights, rng.Stream(StreamBalancer))

	sim.Servers = make([]*Server, sc.NumServers)
	for i := range sim.Servers {
		sampler := NewServiceSampler(
			DistributionKind(sc.ProcessingTimeDistribution),
			sc.ProcessingTimeStdDev,
			sc.NetworkLatencyMean,
			sc.NetworkLatencyStdDev,
			sc.MinServiceTime,
			rng.ForServer(i),
		)
		sim.Servers[i] = NewServer(i, &sc, sampler)
	}

	// The first arrival lands at t=0 so a constant-rate run of n seconds at
	// r req/s generates exactly n*r arrivals.
	if sc.BaseRequestRate > 0 {
		sim.Schedule(&ArrivalEvent{
			BaseEvent: sim.newBaseEvent(0, KindArrival),
			Request:   sim.newRequest(0),
		})
	}
	sim.Schedule(&ProgressEvent{BaseEvent: sim.newBaseEvent(sc.ProgressInterval, KindProgress)})

	return sim, nil
}

// SetProgress registers the progress observer. Must be called before Execute.
func (s *Simulator) SetProgress(fn ProgressFunc) { s.progressFn = fn }

// Schedule adds an event to the queue. Scheduling into the past would break
// clock monotonicity and is a programming error.
func (s *Simulator) Schedule(e Event) {
	if e.Timestamp() < s.Clock {
		panic(fmt.Sprintf("event %s scheduled at %.6f, before current time %.6f", e.Kind(), e.Timestamp(), s.Clock))
	}
	s.queue.Push(e)
}

// newBaseEvent stamps an event with the next per-simulator sequence number.
func (s *Simulator) newBaseEvent(timestamp float64, kind EventKind) BaseEvent {
	seq := s.nextSeq
	s.nextSeq++
	return BaseEvent{timestamp: timestamp, kind: kind, seq: seq}
}

func (s *Simulator) newRequest(arrival float64) *Request {
	id := s.requestCounter
	s.requestCounter++
	return &Request{ID: id, ArrivalTime: arrival, ServerID: -1, Outcome: OutcomePending}
}

// Execute runs the event loop until the scenario duration elapses, then
// finalizes and returns the metrics snapshot. The run ends when the next
// event lies beyond the duration; requests still queued or in flight at that
// point are excluded from outcome counts.
func (s *Simulator) Execute() (*Snapshot, error) {
	duration := s.Scenario.Duration
	for s.queue.Len() > 0 {
		e := s.queue.Peek()
		if e.Timestamp() > duration {
			break
		}
		s.queue.Pop()
		if e.Timestamp() < s.Clock {
			panic(fmt.Sprintf("event %s at %.6f dispatched after clock reached %.6f", e.Kind(), e.Timestamp(), s.Clock))
		}
		s.Clock = e.Timestamp()
		e.Execute(s)
	}
	s.Clock = duration

	snap := s.Collector.Finalize(duration)
	snap.Scenario = s.Scenario.Name
	return snap, nil
}

// Run is the package-level convenience: build a simulator for the scenario
// and execute it to completion.
func Run(sc Scenario) (*Snapshot, error) {
	sim, err := NewSimulator(sc)
	if err != nil {
		return nil, err
	}
	return sim.Execute()
}

// handleArrival routes the request to a server and schedules the next
// arrival from the traffic generator.
func (s *Simulator) handleArrival(e *ArrivalEvent) {
	now := e.Timestamp()
	s.Collector.RecordArrival()

	snapshots := make([]ServerSnapshot, len(s.Servers))
	for i, srv := range s.Servers {
		snapshots[i] = srv.Snapshot()
	}
	target := s.balancer.Select(e.Request, snapshots)
	logrus.Debugf("[%9.4fs] request %d arrives, routed to server %d", now, e.Request.ID, target)
	s.Servers[target].accept(s, e.Request, now)

	next := now + s.traffic.Next(now)
	if next < s.Scenario.Duration {
		s.Schedule(&ArrivalEvent{
			BaseEvent: s.newBaseEvent(next, KindArrival),
			Request:   s.newRequest(next),
		})
	}
}

// handleProgress samples per-server utilization and reschedules itself. Pure
// observation: it never changes the course of the run.
func (s *Simulator) handleProgress(e *ProgressEvent) {
	now := e.Timestamp()
	for _, srv := range s.Servers {
		s.Collector.RecordUtilization(srv.ID, srv.Utilization())
	}
	if s.progressFn != nil {
		s.progressFn(now, s.Scenario.Duration, s.Collector.Interim(now))
	}

	next := now + s.Scenario.ProgressInterval
	if next <= s.Scenario.Duration {
		s.Schedule(&ProgressEvent{BaseEvent: s.newBaseEvent(next, KindProgress)})
	}
}
