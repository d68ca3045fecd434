package outwriter

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/huangsam/prlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSVResultsForPulls(t *testing.T) {
	pulls := []schema.AttributedPullRequest{
		{
			Number:         12,
			Title:          "Fix login",
			Author:         "bob",
			Team:           "Alpha",
			MergedAt:       time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC),
			MergeCommitSHA: "m12",
			Files: []schema.AttributedFile{
				{FileName: "src/Core/A.cs", Status: schema.ModifiedStatus, Additions: 8, Deletions: 2, Changes: 10, ProjectName: "Core"},
				{FileName: "src/Web/B.cs", Status: schema.AddedStatus, Additions: 5, Changes: 5, ProjectName: "Web"},
			},
		},
		{Number: 13, Title: "No diff", Author: "carol", Team: schema.UnassignedTeam,
			MergedAt: time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	require.NoError(t, writeCSVResultsForPulls(&buf, pulls))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4) // header + 2 files + 1 degraded row
	assert.Equal(t, "pr_number", rows[0][0])
	assert.Equal(t, []string{"12", "Fix login", "bob", "Alpha", "2025-11-01T10:00:00Z", "m12",
		"src/Core/A.cs", "Core", "modified", "8", "2", "10"}, rows[1])

	// Degraded PR keeps its row with empty file columns.
	assert.Equal(t, "13", rows[3][0])
	assert.Empty(t, rows[3][6])
}

func TestWriteCSVResultsForProjectStats(t *testing.T) {
	records := []schema.DailyProjectStatsRecord{
		{Day: "2025-11-01", ProjectName: "Core", ProjectGroup: "Core", PRCount: 3, TotalLinesChanged: 42, FilesModified: 4, FilesAdded: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, writeCSVResultsForProjectStats(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2025-11-01", "Core", "Core", "3", "42", "4", "1"}, rows[1])
}

func TestPivotTeamMatrix(t *testing.T) {
	records := []schema.DailyTeamProjectStatsRecord{
		{Day: "2025-11-01", ProjectName: "CoreAuth", ProjectGroup: "Core", TeamName: "Alpha", PRCount: 2},
		{Day: "2025-11-02", ProjectName: "CoreAuth", ProjectGroup: "Core", TeamName: "Alpha", PRCount: 1},
		{Day: "2025-11-01", ProjectName: "WebPortal", ProjectGroup: "Web", TeamName: "Beta", PRCount: 4},
	}

	groups, teams, counts := pivotTeamMatrix(records, nil, nil)

	assert.Equal(t, []string{"Core", "Web"}, groups)
	assert.Equal(t, []string{"Alpha", "Beta"}, teams)
	assert.Equal(t, 3, counts["Core"]["Alpha"]) // summed across days
	assert.Equal(t, 4, counts["Web"]["Beta"])
	assert.Zero(t, counts["Web"]["Alpha"])
}

func TestPivotTeamMatrixSeededAxes(t *testing.T) {
	records := []schema.DailyTeamProjectStatsRecord{
		{Day: "2025-11-01", ProjectName: "CoreAuth", ProjectGroup: "Core", TeamName: "Alpha", PRCount: 2},
	}

	// Idle groups and teams still appear as zero rows and columns, and
	// Unassigned gets a column even before any roster miss occurs.
	groups, teams, counts := pivotTeamMatrix(records,
		[]string{"Core", "Web"}, []string{"Alpha", "Beta", schema.UnassignedTeam})

	assert.Equal(t, []string{"Core", "Web"}, groups)
	assert.Equal(t, []string{"Alpha", "Beta", schema.UnassignedTeam}, teams)
	assert.Equal(t, 2, counts["Core"]["Alpha"])
	assert.Zero(t, counts["Web"]["Beta"])
	assert.Zero(t, counts["Core"][schema.UnassignedTeam])
}

func TestWriteCSVResultsForTeamMatrix(t *testing.T) {
	groups := []string{"Core", "Web"}
	teams := []string{"Alpha", "Beta"}
	counts := map[string]map[string]int{
		"Core": {"Alpha": 3},
		"Web":  {"Beta": 4},
	}

	var buf bytes.Buffer
	require.NoError(t, writeCSVResultsForTeamMatrix(&buf, groups, teams, counts))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"project_group", "Alpha", "Beta"}, rows[0])
	assert.Equal(t, []string{"Core", "3", "0"}, rows[1])
	assert.Equal(t, []string{"Web", "0", "4"}, rows[2])
}
