package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/prlens/internal/contract"
	"github.com/huangsam/prlens/internal/ghsource"
	"github.com/huangsam/prlens/schema"
)

// Scheduler walks the requested date range one UTC day at a time, fetching
// merged PRs per window and attributing each through the engine. Quota is
// checked before the first request and again at every window boundary.
type Scheduler struct {
	source contract.PullRequestSource
	engine *Engine
	gov    *ghsource.Governor
	branch string
}

// NewScheduler creates a Scheduler for one base branch.
func NewScheduler(source contract.PullRequestSource, engine *Engine, gov *ghsource.Governor, branch string) *Scheduler {
	return &Scheduler{source: source, engine: engine, gov: gov, branch: branch}
}

// Run processes [start, end) and returns the attributed PRs in merge order.
func (s *Scheduler) Run(ctx context.Context, start, end time.Time) ([]schema.AttributedPullRequest, *schema.RunSummary, error) {
	if err := s.gov.Check(ctx); err != nil {
		return nil, nil, err
	}

	summary := &schema.RunSummary{}
	var attributed []schema.AttributedPullRequest

	for _, window := range dailyWindows(start, end) {
		day := window.start.Format(time.DateOnly)
		fmt.Printf("🔍 Processing %s\n", day)

		pulls, err := s.source.FetchMergedPulls(ctx, window.start, window.end, s.branch)
		if err != nil {
			return nil, nil, fmt.Errorf("window %s: %w", day, err)
		}

		processed := 0
		for _, pr := range pulls {
			if !s.engine.ShouldProcess(pr) {
				summary.RollupCount++
				continue
			}
			record := s.engine.Attribute(ctx, pr)
			if len(record.Files) == 0 {
				summary.DegradedPRs++
			}
			attributed = append(attributed, record)
			processed++
		}

		summary.Windows++
		summary.PullCount += processed
		if len(pulls) == 0 {
			summary.WindowsEmpty++
		}
		fmt.Printf("✅ %s: %d merged PRs attributed\n", day, processed)

		if err := s.gov.Check(ctx); err != nil {
			return nil, nil, err
		}
	}

	return attributed, summary, nil
}

// window is one half-open [start, end) slice of the run.
type window struct {
	start time.Time
	end   time.Time
}

// dailyWindows splits [start, end) into UTC day windows. The last window is
// clipped to the range end.
func dailyWindows(start, end time.Time) []window {
	start = start.UTC()
	end = end.UTC()

	var windows []window
	for cursor := start; cursor.Before(end); {
		next := cursor.AddDate(0, 0, 1)
		if next.After(end) {
			next = end
		}
		windows = append(windows, window{start: cursor, end: next})
		cursor = next
	}
	return windows
}
