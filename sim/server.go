package sim

import (
	"math"

	"github.com/sirupsen/logrus"
)

// Server owns a FIFO queue of pending requests and a fixed number of
// concurrent worker slots. It is mutated exclusively on the simulator's
// event-dispatch path; balancers and the collector only read snapshots.
type Server struct {
	ID       int
	Hardware HardwareProfile
	Language LanguageProfile
	Slots    int

	queue    []*Request
	inFlight int

	// utilization is the smoothed CPU utilization estimate, recomputed on
	// every slot entry/exit: u ← decay·u + (1−decay)·(inFlight/Slots).
	utilization float64
	utilDecay   float64

	degradationEnabled bool
	processingTimeMs   float64
	timeout            float64 // seconds; 0 disables
	sampler            *ServiceSampler

	completed   int
	respTimeSum float64 // seconds, successes and errors only
}

// NewServer builds a server from scenario parameters and its dedicated
// sampler. Slot count comes from the hardware profile unless overridden.
func NewServer(id int, sc *Scenario, sampler *ServiceSampler) *Server {
	slots := sc.WorkersPerServer
	if slots <= 0 {
		slots = sc.Hardware.NumCores
	}
	return &Server{
		ID:                 id,
		Hardware:           sc.Hardware,
		Language:           sc.Language,
		Slots:              slots,
		utilDecay:          sc.UtilizationDecay,
		degradationEnabled: sc.CPUDegradationEnabled,
		processingTimeMs:   sc.RequestProcessingTime,
		timeout:            sc.RequestTimeout / 1000,
		sampler:            sampler,
	}
}

// Snapshot returns the read-only view used by load balancers.
func (s *Server) Snapshot() ServerSnapshot {
	return ServerSnapshot{
		ID:              s.ID,
		QueueDepth:      len(s.queue),
		InFlight:        s.inFlight,
		Utilization:     s.utilization,
		AvgResponseTime: s.avgResponseTime(),
	}
}

// Utilization returns the current smoothed CPU utilization estimate.
func (s *Server) Utilization() float64 { return s.utilization }

func (s *Server) avgResponseTime() float64 {
	if s.completed == 0 {
		return 0
	}
	return s.respTimeSum / float64(s.completed)
}

// accept hands a routed request to this server: it joins the FIFO queue, the
// per-request timeout starts counting from this instant, and a service start
// is attempted immediately so the request skips the queue when a slot is
// free.
func (s *Server) accept(sim *Simulator, req *Request, now float64) {
	req.ServerID = s.ID
	req.EnqueueTime = now
	s.queue = append(s.queue, req)

	if s.timeout > 0 {
		sim.Schedule(&TimeoutEvent{
			BaseEvent: sim.newBaseEvent(now+s.timeout, KindTimeout),
			Request:   req,
		})
	}
	if s.inFlight < s.Slots {
		sim.Schedule(&ServiceStartEvent{
			BaseEvent: sim.newBaseEvent(now, KindServiceStart),
			ServerID:  s.ID,
		})
	}
}

// startQueued moves queued requests into free worker slots, in FIFO order.
// Safe to call opportunistically: it no-ops when nothing can start.
func (s *Server) startQueued(sim *Simulator, now float64) {
	for s.inFlight < s.Slots && len(s.queue) > 0 {
		req := s.queue[0]
		s.queue = s.queue[1:]
		s.start(sim, req, now)
	}
}

// start transitions one request to active: sample its effective service
// duration and schedule the completion.
func (s *Server) start(sim *Simulator, req *Request, now float64) {
	req.Started = true
	req.ServiceStartTime = now

	baseMs := s.Hardware.EstimateServiceTime(s.processingTimeMs / s.Language.EfficiencyFactor)
	sampledMs, errored := s.sampler.SampleProcessing(baseMs)
	req.Errored = errored

	// Degradation is computed against utilization before this request takes
	// its slot, modeling contention from already-running work.
	sampledMs *= s.degradationFactor()
	totalMs := sampledMs + s.sampler.SampleNetworkLatency()

	s.inFlight++
	s.updateUtilization()

	logrus.Debugf("[%9.4fs] server %d starts request %d (service %.3fms, util %.2f)",
		now, s.ID, req.ID, totalMs, s.utilization)

	sim.Schedule(&ServiceCompleteEvent{
		BaseEvent: sim.newBaseEvent(now+totalMs/1000, KindServiceComplete),
		Request:   req,
	})
}

// degradationFactor models contention-induced slowdown: unity up to 50%
// utilization, then super-linear (exponential in the excess) toward
// saturation.
func (s *Server) degradationFactor() float64 {
	if !s.degradationEnabled || s.utilization <= 0.5 {
		return 1.0
	}
	excess := (s.utilization - 0.5) / 0.5
	return 1.0 + (math.Exp(2*excess) - 1)
}

// handleComplete finishes an active request unless its timeout already won.
func (s *Server) handleComplete(sim *Simulator, req *Request, now float64) {
	if req.Terminal() {
		return // timed out first; this completion is a no-op
	}
	req.Outcome = OutcomeSuccess
	if req.Errored {
		req.Outcome = OutcomeError
	}
	req.CompletionTime = now

	s.inFlight--
	s.updateUtilization()
	s.completed++
	s.respTimeSum += now - req.ArrivalTime

	sim.Collector.Observe(req)

	if len(s.queue) > 0 {
		sim.Schedule(&ServiceStartEvent{
			BaseEvent: sim.newBaseEvent(now, KindServiceStart),
			ServerID:  s.ID,
		})
	}
}

// handleTimeout times a request out, whether it is still queued or already
// active. The request's other pending event becomes a no-op.
func (s *Server) handleTimeout(sim *Simulator, req *Request, now float64) {
	if req.Terminal() {
		return // completed first; this timeout is a no-op
	}
	req.Outcome = OutcomeTimedOut
	req.CompletionTime = now

	if req.Started {
		s.inFlight--
		s.updateUtilization()
		defer s.maybeStartNext(sim, now)
	} else {
		s.removeQueued(req)
	}

	logrus.Debugf("[%9.4fs] server %d times out request %d", now, s.ID, req.ID)
	sim.Collector.Observe(req)
}

func (s *Server) maybeStartNext(sim *Simulator, now float64) {
	if len(s.queue) > 0 {
		sim.Schedule(&ServiceStartEvent{
			BaseEvent: sim.newBaseEvent(now, KindServiceStart),
			ServerID:  s.ID,
		})
	}
}

func (s *Server) removeQueued(req *Request) {
	for i, queued := range s.queue {
		if queued == req {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}

func (s *Server) updateUtilization() {
	instant := float64(s.inFlight) / float64(s.Slots)
	if instant > 1 {
		instant = 1
	}
	s.utilization = s.utilDecay*s.utilization + (1-s.utilDecay)*instant
}
