// Package sim implements a deterministic discrete-event simulation of a pool
// of request-processing servers under configurable traffic, hardware, and
// load-balancing policies.
//
// The engine advances a logical clock only to the timestamps of scheduled
// events; no wall-clock time is involved. For a fixed Scenario (including its
// random seed) the sequence of dispatched events, and therefore the finished
// Snapshot, is fully reproducible.
package sim
