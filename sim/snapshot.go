package sim

// PercentileStats holds the response time order statistics (ms).
type PercentileStats struct {
	P50  float64 `json:"p50" yaml:"p50"`
	P95  float64 `json:"p95" yaml:"p95"`
	P99  float64 `json:"p99" yaml:"p99"`
	P999 float64 `json:"p99.9" yaml:"p99.9"`
}

// ServerStats is the per-server slice of a snapshot.
type ServerStats struct {
	ServerID           int     `json:"server_id" yaml:"server_id"`
	TotalRequests      int     `json:"total_requests" yaml:"total_requests"`
	SuccessfulRequests int     `json:"successful_requests" yaml:"successful_requests"`
	TimedOutRequests   int     `json:"timed_out_requests" yaml:"timed_out_requests"`
	ErrorRequests      int     `json:"error_requests" yaml:"error_requests"`
	AvgResponseTimeMs  float64 `json:"avg_response_time_ms" yaml:"avg_response_time_ms"`
	MinResponseTimeMs  float64 `json:"min_response_time_ms" yaml:"min_response_time_ms"`
	MaxResponseTimeMs  float64 `json:"max_response_time_ms" yaml:"max_response_time_ms"`
	AvgUtilization     float64 `json:"avg_utilization" yaml:"avg_utilization"`
	MaxUtilization     float64 `json:"max_utilization" yaml:"max_utilization"`
}

// Snapshot is the aggregated result of a run (or, for interim snapshots, of
// the run so far). Counts cover terminal requests only; arrivals that were
// still queued or in flight at the cutoff appear in ArrivalsGenerated but in
// none of the outcome counts.
type Snapshot struct {
	Scenario string `json:"scenario,omitempty" yaml:"scenario,omitempty"`

	TotalRequests      int `json:"total_requests" yaml:"total_requests"`
	SuccessfulRequests int `json:"successful_requests" yaml:"successful_requests"`
	TimedOutRequests   int `json:"timed_out_requests" yaml:"timed_out_requests"`
	ErrorRequests      int `json:"error_requests" yaml:"error_requests"`
	ArrivalsGenerated  int `json:"arrivals_generated" yaml:"arrivals_generated"`

	AvgResponseTimeMs         float64         `json:"avg_response_time_ms" yaml:"avg_response_time_ms"`
	MinResponseTimeMs         float64         `json:"min_response_time_ms" yaml:"min_response_time_ms"`
	MaxResponseTimeMs         float64         `json:"max_response_time_ms" yaml:"max_response_time_ms"`
	ResponseTimeStdDevMs      float64         `json:"response_time_stddev_ms" yaml:"response_time_stddev_ms"`
	ResponseTimePercentilesMs PercentileStats `json:"response_time_percentiles_ms" yaml:"response_time_percentiles_ms"`

	AvgQueueTimeMs float64 `json:"avg_queue_time_ms" yaml:"avg_queue_time_ms"`
	MaxQueueTimeMs float64 `json:"max_queue_time_ms" yaml:"max_queue_time_ms"`

	SuccessfulThroughputRPS float64 `json:"successful_throughput_rps" yaml:"successful_throughput_rps"`
	TotalThroughputRPS      float64 `json:"total_throughput_rps" yaml:"total_throughput_rps"`
	SuccessRate             float64 `json:"success_rate" yaml:"success_rate"`

	AvgServerUtilization float64 `json:"avg_server_utilization" yaml:"avg_server_utilization"`
	MaxServerUtilization float64 `json:"max_server_utilization" yaml:"max_server_utilization"`

	SimulationDurationS float64 `json:"simulation_duration_s" yaml:"simulation_duration_s"`

	PerServer []ServerStats `json:"per_server,omitempty" yaml:"per_server,omitempty"`
}
