// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/prlens/schema"
)

// Rate-limit watermarks for the hosting API quota.
const (
	// RateLimitHighWater is the minimum quota required to start a run.
	RateLimitHighWater = 4000

	// RateLimitLowWater is the quota level at which the scheduler pauses
	// between windows until the quota recovers.
	RateLimitLowWater = 3000

	// QuotaCheckInterval is the number of detail fetches between quota checks.
	QuotaCheckInterval = 50

	// DefaultPausePeriod is how long the scheduler sleeps before re-checking
	// an exhausted quota.
	DefaultPausePeriod = 10 * time.Minute
)

// Sentinel errors shared across components and the exit-code mapping in main.
var (
	// ErrRateLimitCritical means the quota was below the high watermark on the
	// very first check of the run. Starting a long run on a near-exhausted
	// budget is not recoverable mid-flight, so the process aborts with exit
	// code 2 before doing any work.
	ErrRateLimitCritical = errors.New("rate limit below high watermark at run start")

	// ErrCommitNotFound means a referenced SHA is absent from the local clone.
	ErrCommitNotFound = errors.New("commit not found in local repository")
)

// GitClient defines the necessary operations for computing PR file diffs.
// This allows the attribution logic to be tested without needing a real git executable.
type GitClient interface {
	// Run executes a git command and returns the combined output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// CommitExists reports whether the ref resolves to a commit in the clone.
	CommitExists(ctx context.Context, repoPath string, ref string) bool

	// FirstParent returns the SHA of the commit's first parent, or an empty
	// string when the commit is a root commit with no parent.
	FirstParent(ctx context.Context, repoPath string, sha string) (string, error)

	// DiffNameStatus returns the raw name-status diff output between two refs,
	// with rename detection enabled.
	DiffNameStatus(ctx context.Context, repoPath string, fromRef, toRef string) ([]byte, error)

	// DiffNumstat returns the raw numstat diff output between two refs,
	// with rename detection enabled.
	DiffNumstat(ctx context.Context, repoPath string, fromRef, toRef string) ([]byte, error)
}

// QuotaState is an immutable snapshot of the hosting API quota at one check.
// The remaining count is always re-queried from the API, never decremented
// locally, so concurrent consumers of the same token are accounted for.
type QuotaState struct {
	Remaining int
	CheckedAt time.Time
}

// Exhausted reports whether the quota is at or below the low watermark.
func (s QuotaState) Exhausted() bool {
	return s.Remaining <= RateLimitLowWater
}

// QuotaChecker queries the remaining hosting API quota.
type QuotaChecker interface {
	CheckQuota(ctx context.Context) (QuotaState, error)
}

// PullRequestSource retrieves merged pull requests for a time window.
type PullRequestSource interface {
	QuotaChecker

	// FetchMergedPulls returns the PRs merged into baseBranch within
	// [start, end), sorted ascending by merge timestamp.
	FetchMergedPulls(ctx context.Context, start, end time.Time, baseBranch string) ([]schema.RawPullRequest, error)
}

// DelayFunc blocks for the given duration. Tests substitute a zero-delay
// implementation; production uses time.Sleep.
type DelayFunc func(d time.Duration)
