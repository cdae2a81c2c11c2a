package nodes

import (
	"time"

	"github.com/waste-to-wealth/server/internal/metrics"
)

// firstN returns at most n leading elements of s.
func firstN[T any](s []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}

// observeStage records a stage run; degraded means the stage fell back to
// its empty default.
func observeStage(stage string, start time.Time, degraded bool) {
	outcome := metrics.OutcomeOK
	if degraded {
		outcome = metrics.OutcomeDegraded
	}
	metrics.RecordStage(stage, outcome, time.Since(start))
}
