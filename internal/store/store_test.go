package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/prlens/internal/contract"
	"github.com/huangsam/prlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a SQLite store backed by a temp file.
func newTestStore(t *testing.T) contract.RunStore {
	t.Helper()
	st, err := NewStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func testRun() schema.AnalysisRun {
	return schema.AnalysisRun{
		Owner:      "acme",
		Repo:       "widgets",
		StartDate:  time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC),
		BaseBranch: "main",
		RunDate:    time.Date(2025, 11, 2, 6, 0, 0, 0, time.UTC),
		PRCount:    1,
	}
}

func testPull() schema.AttributedPullRequest {
	return schema.AttributedPullRequest{
		Number:         12,
		Title:          "Fix login",
		Author:         "bob",
		Team:           "Alpha",
		MergedAt:       time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC),
		MergeCommitSHA: "m12",
		FileCountByProjectName: map[string]int{"Core": 2},
		Files: []schema.AttributedFile{
			{FileName: "src/Core/A.cs", Status: schema.ModifiedStatus, Additions: 8, Deletions: 2, Changes: 10, ProjectName: "Core"},
			{FileName: "src/Core/B.cs", Status: schema.AddedStatus, Additions: 5, Deletions: 0, Changes: 5, ProjectName: "Core"},
		},
	}
}

// testDeltas builds the counter deltas matching testPull.
func testDeltas() *schema.StatsDeltas {
	deltas := schema.NewStatsDeltas()
	d := deltas.Project(schema.ProjectKey{Day: "2025-11-01", ProjectName: "Core"}, "Core")
	d.PRCount = 1
	d.TotalLinesChanged = 15
	d.FilesModified = 1
	d.FilesAdded = 1
	deltas.TeamProject(schema.TeamProjectKey{Day: "2025-11-01", ProjectName: "Core", TeamName: "Alpha"}, "Core").PRCount = 1
	return deltas
}

func TestExportRunAndQueries(t *testing.T) {
	st := newTestStore(t)

	runID, err := st.ExportRun(testRun(), []schema.AttributedPullRequest{testPull()}, testDeltas())
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	latest, err := st.LatestRun()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, runID, latest.ID)
	assert.Equal(t, "acme", latest.Owner)
	assert.Equal(t, testRun().StartDate, latest.StartDate)
	assert.Equal(t, 1, latest.PRCount)

	pulls, err := st.PullRequestsForRun(runID)
	require.NoError(t, err)
	require.Len(t, pulls, 1)
	assert.Equal(t, 12, pulls[0].PRNumber)
	assert.Equal(t, "Alpha", pulls[0].Team)
	assert.False(t, pulls[0].IsRollupPR)

	files, err := st.FilesForRun(runID)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, pulls[0].ID, files[0].PullRequestID)
	assert.Equal(t, "src/Core/A.cs", files[0].FileName)
	assert.Equal(t, "Core", files[0].ProjectGroup)
	assert.Equal(t, schema.ModifiedStatus, files[0].Status)

	projectStats, err := st.DailyProjectStats()
	require.NoError(t, err)
	require.Len(t, projectStats, 1)
	assert.Equal(t, schema.Day("2025-11-01"), projectStats[0].Day)
	assert.Equal(t, 1, projectStats[0].PRCount)
	assert.Equal(t, 15, projectStats[0].TotalLinesChanged)

	teamStats, err := st.DailyTeamProjectStats()
	require.NoError(t, err)
	require.Len(t, teamStats, 1)
	assert.Equal(t, "Alpha", teamStats[0].TeamName)
}

func TestStatsAccumulateAcrossRuns(t *testing.T) {
	st := newTestStore(t)

	_, err := st.ExportRun(testRun(), []schema.AttributedPullRequest{testPull()}, testDeltas())
	require.NoError(t, err)

	second := testPull()
	second.Number = 13
	second.MergeCommitSHA = "m13"
	_, err = st.ExportRun(testRun(), []schema.AttributedPullRequest{second}, testDeltas())
	require.NoError(t, err)

	projectStats, err := st.DailyProjectStats()
	require.NoError(t, err)
	require.Len(t, projectStats, 1) // one bucket, counters summed
	assert.Equal(t, 2, projectStats[0].PRCount)
	assert.Equal(t, 30, projectStats[0].TotalLinesChanged)
	assert.Equal(t, 2, projectStats[0].FilesModified)
	assert.Equal(t, 2, projectStats[0].FilesAdded)

	teamStats, err := st.DailyTeamProjectStats()
	require.NoError(t, err)
	require.Len(t, teamStats, 1)
	assert.Equal(t, 2, teamStats[0].PRCount)
}

func TestExportRunRejectsDuplicatePrNumber(t *testing.T) {
	st := newTestStore(t)

	_, err := st.ExportRun(testRun(), []schema.AttributedPullRequest{testPull()}, testDeltas())
	require.NoError(t, err)

	// Re-exporting an overlapping window must fail on the pr_number constraint.
	fresh := testPull()
	fresh.Number = 99
	fresh.MergeCommitSHA = "m99"
	_, err = st.ExportRun(testRun(), []schema.AttributedPullRequest{fresh, testPull()}, testDeltas())
	require.Error(t, err)
	assert.ErrorContains(t, err, "PR #12")

	// The failed export rolls back entirely: no second run, no PR #99, and
	// the accumulated counters are untouched.
	runs, err := st.AllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)

	pulls, err := st.PullRequestsForRun(runs[0].ID)
	require.NoError(t, err)
	require.Len(t, pulls, 1)
	assert.Equal(t, 12, pulls[0].PRNumber)

	projectStats, err := st.DailyProjectStats()
	require.NoError(t, err)
	require.Len(t, projectStats, 1)
	assert.Equal(t, 1, projectStats[0].PRCount)
	assert.Equal(t, 15, projectStats[0].TotalLinesChanged)

	teamStats, err := st.DailyTeamProjectStats()
	require.NoError(t, err)
	require.Len(t, teamStats, 1)
	assert.Equal(t, 1, teamStats[0].PRCount)

	status, err := st.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.TotalRuns)
	assert.Equal(t, int64(1), status.TableSizes[pullsTable])
	assert.Equal(t, int64(2), status.TableSizes[filesTable])
}

func TestLatestRunOnEmptyStore(t *testing.T) {
	st := newTestStore(t)

	latest, err := st.LatestRun()
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestGetStatus(t *testing.T) {
	st := newTestStore(t)

	_, err := st.ExportRun(testRun(), []schema.AttributedPullRequest{testPull()}, testDeltas())
	require.NoError(t, err)

	status, err := st.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, int64(1), status.TotalRuns)
	require.NotNil(t, status.LastRun)
	assert.Equal(t, int64(2), status.TableSizes[filesTable])
	assert.Equal(t, int64(1), status.TableSizes[projectStatsTable])
}

func TestNoneBackendIsNoOp(t *testing.T) {
	st, err := NewStore(schema.NoneBackend, "")
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	runID, err := st.ExportRun(testRun(), []schema.AttributedPullRequest{testPull()}, testDeltas())
	require.NoError(t, err)
	assert.Zero(t, runID)

	latest, err := st.LatestRun()
	require.NoError(t, err)
	assert.Nil(t, latest)

	status, err := st.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
}
