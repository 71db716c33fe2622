package sim

// EventKind identifies the type of a simulation event. The numeric value is
// also the tie-break priority at equal timestamps: arrivals dispatch before
// service starts, service starts before timeouts, timeouts before
// completions. A service start freed by a completion therefore runs before a
// same-instant timeout of a *different* request, while a request whose
// timeout and completion coincide always times out.
type EventKind int

const (
	KindArrival EventKind = iota
	KindServiceStart
	KindTimeout
	KindServiceComplete
	KindProgress
)

func (k EventKind) String() string {
	switch k {
	case KindArrival:
		return "arrival"
	case KindServiceStart:
		return "service_start"
	case KindTimeout:
		return "timeout"
	case KindServiceComplete:
		return "service_complete"
	case KindProgress:
		return "progress"
	default:
		return "unknown"
	}
}

// Event is a scheduled state transition. Events are immutable once created;
// Execute dispatches to the owning component's handler, which may schedule
// zero or more follow-up events.
type Event interface {
	Timestamp() float64
	Kind() EventKind
	Seq() uint64
	Execute(sim *Simulator)
}

// BaseEvent carries the fields common to all events. The sequence number is
// issued per simulator and breaks remaining ordering ties deterministically.
type BaseEvent struct {
	timestamp float64
	kind      EventKind
	seq       uint64
}

func (e *BaseEvent) Timestamp() float64 { return e.timestamp }
func (e *BaseEvent) Kind() EventKind    { return e.kind }
func (e *BaseEvent) Seq() uint64        { return e.seq }

// ArrivalEvent is a request entering the system. Dispatching it routes the
// request through the load balancer and schedules the next arrival.
type ArrivalEvent struct {
	BaseEvent
	Request *Request
}

func (e *ArrivalEvent) Execute(sim *Simulator) { sim.handleArrival(e) }

// ServiceStartEvent asks a server to move queued requests into free worker
// slots. It no-ops when the queue is empty or all slots are busy, so it is
// safe to schedule opportunistically.
type ServiceStartEvent struct {
	BaseEvent
	ServerID int
}

func (e *ServiceStartEvent) Execute(sim *Simulator) {
	sim.Servers[e.ServerID].startQueued(sim, e.timestamp)
}

// TimeoutEvent fires when a request has been with a server for the configured
// timeout. It no-ops if the request already completed.
type TimeoutEvent struct {
	BaseEvent
	Request *Request
}

func (e *TimeoutEvent) Execute(sim *Simulator) {
	sim.Servers[e.Request.ServerID].handleTimeout(sim, e.Request, e.timestamp)
}

// ServiceCompleteEvent fires when a request's sampled service duration has
// elapsed. It no-ops if the request timed out first.
type ServiceCompleteEvent struct {
	BaseEvent
	Request *Request
}

func (e *ServiceCompleteEvent) Execute(sim *Simulator) {
	sim.Servers[e.Request.ServerID].handleComplete(sim, e.Request, e.timestamp)
}

// ProgressEvent samples per-server utilization for the collector and invokes
// the optional progress callback. It is purely observational: it must never
// change the outcome of the run.
type ProgressEvent struct {
	BaseEvent
}

func (e *ProgressEvent) Execute(sim *Simulator) { sim.handleProgress(e) }
