package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/huangsam/prlens/internal/contract"
	"github.com/huangsam/prlens/internal/ghsource"
	"github.com/huangsam/prlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthyGovernor() *ghsource.Governor {
	checker := &contract.MockQuotaChecker{}
	checker.On("CheckQuota", context.Background()).
		Return(contract.QuotaState{Remaining: 5000}, nil)
	return ghsource.NewGovernor(checker, time.Minute, func(time.Duration) {})
}

func TestSchedulerRun(t *testing.T) {
	start := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	day2 := start.AddDate(0, 0, 1)
	end := start.AddDate(0, 0, 2)

	source := &contract.MockPullRequestSource{}
	source.On("FetchMergedPulls", context.Background(), start, day2, "main").
		Return([]schema.RawPullRequest{
			{Number: 1, Author: "bob", MergedAt: start.Add(2 * time.Hour)},
			{Number: 2, Author: "bob", MergedAt: start.Add(3 * time.Hour), IsRollup: true},
		}, nil)
	source.On("FetchMergedPulls", context.Background(), day2, end, "main").
		Return([]schema.RawPullRequest(nil), nil)

	engine := newTestEngine(t, &contract.MockGitClient{})
	scheduler := NewScheduler(source, engine, healthyGovernor(), "main")

	attributed, summary, err := scheduler.Run(context.Background(), start, end)

	require.NoError(t, err)
	require.Len(t, attributed, 1)
	assert.Equal(t, 1, attributed[0].Number)

	assert.Equal(t, 2, summary.Windows)
	assert.Equal(t, 1, summary.PullCount)
	assert.Equal(t, 1, summary.RollupCount)
	assert.Equal(t, 1, summary.WindowsEmpty)
	assert.Equal(t, 1, summary.DegradedPRs) // no SHAs on the fixture PR
	source.AssertExpectations(t)
}

func TestSchedulerAbortsOnCriticalQuota(t *testing.T) {
	checker := &contract.MockQuotaChecker{}
	checker.On("CheckQuota", context.Background()).
		Return(contract.QuotaState{Remaining: 100}, nil).Once()

	source := &contract.MockPullRequestSource{}
	engine := newTestEngine(t, &contract.MockGitClient{})
	gov := ghsource.NewGovernor(checker, time.Minute, func(time.Duration) {})
	scheduler := NewScheduler(source, engine, gov, "main")

	start := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	_, _, err := scheduler.Run(context.Background(), start, start.AddDate(0, 0, 1))

	assert.ErrorIs(t, err, contract.ErrRateLimitCritical)
	source.AssertNotCalled(t, "FetchMergedPulls")
}

func TestDailyWindows(t *testing.T) {
	start := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)

	windows := dailyWindows(start, start.AddDate(0, 0, 3))
	require.Len(t, windows, 3)
	assert.Equal(t, start, windows[0].start)
	assert.Equal(t, start.AddDate(0, 0, 1), windows[0].end)
	assert.Equal(t, start.AddDate(0, 0, 3), windows[2].end)

	// Degenerate range yields no windows.
	assert.Empty(t, dailyWindows(start, start))
}
