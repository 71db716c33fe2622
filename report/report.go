// Package report renders simulation snapshots for humans and machines:
// plain-text summaries, JSON and CSV exports, and side-by-side scenario
// comparison.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Sang-it/server-load-simulation/sim"
)

// WriteJSON writes the snapshots as indented JSON. A single snapshot is
// written as an object, multiple as an array.
func WriteJSON(w io.Writer, snaps []*sim.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(snaps) == 1 {
		return enc.Encode(snaps[0])
	}
	return enc.Encode(snaps)
}

var csvHeader = []string{
	"scenario", "total_requests", "successful_requests", "timed_out_requests",
	"error_requests", "avg_response_time_ms", "p50_ms", "p95_ms", "p99_ms",
	"avg_queue_time_ms", "successful_throughput_rps", "success_rate",
	"avg_server_utilization", "simulation_duration_s",
}

// WriteCSV writes one summary row per snapshot.
func WriteCSV(w io.Writer, snaps []*sim.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range snaps {
		row := []string{
			s.Scenario,
			strconv.Itoa(s.TotalRequests),
			strconv.Itoa(s.SuccessfulRequests),
			strconv.Itoa(s.TimedOutRequests),
			strconv.Itoa(s.ErrorRequests),
			formatFloat(s.AvgResponseTimeMs),
			formatFloat(s.ResponseTimePercentilesMs.P50),
			formatFloat(s.ResponseTimePercentilesMs.P95),
			formatFloat(s.ResponseTimePercentilesMs.P99),
			formatFloat(s.AvgQueueTimeMs),
			formatFloat(s.SuccessfulThroughputRPS),
			formatFloat(s.SuccessRate),
			formatFloat(s.AvgServerUtilization),
			formatFloat(s.SimulationDurationS),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// Save writes snapshots to path, picking the format from the extension
// (.json or .csv).
func Save(path string, snaps []*sim.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(path, ".csv"):
		err = WriteCSV(f, snaps)
	case strings.HasSuffix(path, ".json"):
		err = WriteJSON(f, snaps)
	default:
		err = fmt.Errorf("unsupported report format for %q (want .json or .csv)", path)
	}
	if err != nil {
		return err
	}
	return f.Close()
}

// WriteSummary prints a human-readable digest of one run.
func WriteSummary(w io.Writer, s *sim.Snapshot) {
	name := s.Scenario
	if name == "" {
		name = "simulation"
	}
	fmt.Fprintf(w, "=== %s ===\n", name)
	fmt.Fprintf(w, "duration:            %.1fs\n", s.SimulationDurationS)
	fmt.Fprintf(w, "arrivals generated:  %d\n", s.ArrivalsGenerated)
	fmt.Fprintf(w, "completed requests:  %d (%d ok, %d timeout, %d error)\n",
		s.TotalRequests, s.SuccessfulRequests, s.TimedOutRequests, s.ErrorRequests)
	fmt.Fprintf(w, "success rate:        %.2f%%\n", s.SuccessRate*100)
	fmt.Fprintf(w, "throughput:          %.2f req/s (%.2f successful)\n",
		s.TotalThroughputRPS, s.SuccessfulThroughputRPS)
	fmt.Fprintf(w, "response time (ms):  avg %.2f  min %.2f  max %.2f\n",
		s.AvgResponseTimeMs, s.MinResponseTimeMs, s.MaxResponseTimeMs)
	p := s.ResponseTimePercentilesMs
	fmt.Fprintf(w, "percentiles (ms):    p50 %.2f  p95 %.2f  p99 %.2f  p99.9 %.2f\n",
		p.P50, p.P95, p.P99, p.P999)
	fmt.Fprintf(w, "queue time (ms):     avg %.2f  max %.2f\n", s.AvgQueueTimeMs, s.MaxQueueTimeMs)
	fmt.Fprintf(w, "utilization:         avg %.2f  max %.2f\n", s.AvgServerUtilization, s.MaxServerUtilization)
	for _, srv := range s.PerServer {
		fmt.Fprintf(w, "  server %d: %d reqs (%d ok), avg %.2fms, util avg %.2f\n",
			srv.ServerID, srv.TotalRequests, srv.SuccessfulRequests,
			srv.AvgResponseTimeMs, srv.AvgUtilization)
	}
}
