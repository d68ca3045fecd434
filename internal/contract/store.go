package contract

import (
	"github.com/huangsam/prlens/schema"
)

// RunStore persists pipeline runs, attributed PRs and accumulated daily stats.
// Implementations back onto SQLite, MySQL or PostgreSQL, or act as a no-op
// when persistence is disabled.
type RunStore interface {
	// ExportRun persists one completed run atomically: the run row, every
	// attributed PR with its files and project rollups, and the stats deltas
	// accumulated onto existing daily counters. Either everything lands or
	// nothing does.
	ExportRun(run schema.AnalysisRun, pulls []schema.AttributedPullRequest, deltas *schema.StatsDeltas) (int64, error)

	// LatestRun returns the most recent run, or nil when none exist.
	LatestRun() (*schema.AnalysisRun, error)

	// AllRuns returns every recorded run in insertion order.
	AllRuns() ([]schema.AnalysisRun, error)

	// PullRequestsForRun returns the PR rows of one run in insertion order.
	PullRequestsForRun(runID int64) ([]schema.PullRequestRecord, error)

	// FilesForRun returns the attributed file rows of one run in insertion order.
	FilesForRun(runID int64) ([]schema.PrFileRecord, error)

	// DailyProjectStats returns all accumulated per-project daily counters.
	DailyProjectStats() ([]schema.DailyProjectStatsRecord, error)

	// DailyTeamProjectStats returns all accumulated per-team daily counters.
	DailyTeamProjectStats() ([]schema.DailyTeamProjectStatsRecord, error)

	// GetStatus returns status information about the store.
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}
