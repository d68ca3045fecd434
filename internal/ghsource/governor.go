package ghsource

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/prlens/internal/contract"
)

// Governor paces API consumption against the token's quota. The very first
// check of a run is strict: a budget below the high watermark aborts before
// any work starts. Later checks block until the quota recovers above the low
// watermark. Remaining counts are always re-queried from the API, so other
// consumers of the same token are accounted for.
type Governor struct {
	checker contract.QuotaChecker
	delay   contract.DelayFunc
	pause   time.Duration
	fetches int
	checked bool
}

// NewGovernor creates a Governor with the given pause period between quota
// polls. A nil delay defaults to time.Sleep.
func NewGovernor(checker contract.QuotaChecker, pause time.Duration, delay contract.DelayFunc) *Governor {
	if delay == nil {
		delay = time.Sleep
	}
	if pause <= 0 {
		pause = contract.DefaultPausePeriod
	}
	return &Governor{checker: checker, delay: delay, pause: pause}
}

// Check queries the remaining quota and blocks until it is above the low
// watermark. On the first check of the run it returns ErrRateLimitCritical
// instead of blocking when the budget is below the high watermark.
func (g *Governor) Check(ctx context.Context) error {
	state, err := g.checker.CheckQuota(ctx)
	if err != nil {
		return fmt.Errorf("quota check failed: %w", err)
	}

	if !g.checked {
		g.checked = true
		if state.Remaining < contract.RateLimitHighWater {
			return fmt.Errorf("%w: %d remaining", contract.ErrRateLimitCritical, state.Remaining)
		}
		return nil
	}

	for state.Exhausted() {
		fmt.Printf("⏳ Quota at %d, pausing %v for recovery\n", state.Remaining, g.pause)
		g.delay(g.pause)
		if err := ctx.Err(); err != nil {
			return err
		}
		state, err = g.checker.CheckQuota(ctx)
		if err != nil {
			return fmt.Errorf("quota check failed: %w", err)
		}
	}
	return nil
}

// RecordFetch notes one detail fetch and re-checks the quota at every
// check interval.
func (g *Governor) RecordFetch(ctx context.Context) error {
	g.fetches++
	if g.fetches%contract.QuotaCheckInterval == 0 {
		return g.Check(ctx)
	}
	return nil
}
