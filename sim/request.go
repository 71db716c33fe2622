package sim

// Outcome is the terminal disposition of a request.
type Outcome string

const (
	OutcomePending  Outcome = "pending"
	OutcomeSuccess  Outcome = "success"
	OutcomeTimedOut Outcome = "timeout"
	// OutcomeError marks requests whose sampled service duration came out
	// negative and was clamped to the configured minimum.
	OutcomeError Outcome = "error"
)

// Request models a single request's lifecycle through the simulation.
// It is created when an arrival event dispatches, mutated only by
// scheduler-driven transitions, and discarded once the metrics collector
// has observed its terminal outcome.
type Request struct {
	ID int64

	ArrivalTime      float64 // simulated seconds
	EnqueueTime      float64 // when a server accepted the request
	ServiceStartTime float64 // when a worker slot picked it up
	CompletionTime   float64 // terminal transition time

	ServerID int  // assigned server, -1 until routed
	Started  bool // whether a worker slot ever picked it up
	Errored  bool // sampled duration was negative and got clamped

	Outcome Outcome
}

// Terminal reports whether the request has reached a terminal outcome.
// Once terminal, any still-pending timeout or completion event for this
// request dispatches as a no-op.
func (r *Request) Terminal() bool {
	return r.Outcome != OutcomePending
}
