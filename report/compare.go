package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Sang-it/server-load-simulation/sim"
)

// Comparison ranks a set of scenario snapshots against each other.
type Comparison struct {
	Snapshots []*sim.Snapshot

	BestResponseTime string // scenario with the lowest average response time
	BestThroughput   string // scenario with the highest successful throughput
	BestSuccessRate  string // scenario with the highest success rate
}

// Compare ranks the snapshots. Snapshots with zero completed requests are
// skipped when picking winners. Ties keep the earlier scenario, so the
// ranking is deterministic in input order.
func Compare(snaps []*sim.Snapshot) Comparison {
	c := Comparison{Snapshots: snaps}

	var bestResp, bestTput, bestRate *sim.Snapshot
	for _, s := range snaps {
		if s.TotalRequests == 0 {
			continue
		}
		if bestResp == nil || s.AvgResponseTimeMs < bestResp.AvgResponseTimeMs {
			bestResp = s
		}
		if bestTput == nil || s.SuccessfulThroughputRPS > bestTput.SuccessfulThroughputRPS {
			bestTput = s
		}
		if bestRate == nil || s.SuccessRate > bestRate.SuccessRate {
			bestRate = s
		}
	}
	if bestResp != nil {
		c.BestResponseTime = bestResp.Scenario
	}
	if bestTput != nil {
		c.BestThroughput = bestTput.Scenario
	}
	if bestRate != nil {
		c.BestSuccessRate = bestRate.Scenario
	}
	return c
}

// WriteText renders the comparison as an aligned table followed by the
// winners.
func (c Comparison) WriteText(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "scenario\trequests\tsuccess%\tavg ms\tp95 ms\tp99 ms\tthroughput rps\tavg util")
	for _, s := range c.Snapshots {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
			s.Scenario, s.TotalRequests, s.SuccessRate*100,
			s.AvgResponseTimeMs, s.ResponseTimePercentilesMs.P95,
			s.ResponseTimePercentilesMs.P99, s.SuccessfulThroughputRPS,
			s.AvgServerUtilization)
	}
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "best response time: %s\n", c.BestResponseTime)
	fmt.Fprintf(w, "best throughput:    %s\n", c.BestThroughput)
	fmt.Fprintf(w, "best success rate:  %s\n", c.BestSuccessRate)
}
