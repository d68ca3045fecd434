// Package stats folds attributed pull requests into daily per-project and
// per-team counter deltas.
package stats

import (
	"sort"
	"time"

	"github.com/huangsam/prlens/schema"
)

// GroupFunc maps a project name to its project group.
type GroupFunc func(projectName string) string

// Aggregate computes counter deltas for one batch of attributed PRs. For each
// project a PR touches, the PR counts exactly once toward that day's bucket no
// matter how many files hit the project, so the result is independent of file
// and PR ordering. Line and file counters sum over every file.
func Aggregate(pulls []schema.AttributedPullRequest, groupFor GroupFunc) *schema.StatsDeltas {
	deltas := schema.NewStatsDeltas()

	for _, pr := range pulls {
		day := schema.Day(pr.MergedAt.UTC().Format(time.DateOnly))
		touched := make(map[string]bool)

		for _, f := range pr.Files {
			key := schema.ProjectKey{Day: day, ProjectName: f.ProjectName}
			delta := deltas.Project(key, groupFor(f.ProjectName))
			delta.TotalLinesChanged += f.Changes
			if f.Status == schema.AddedStatus {
				delta.FilesAdded++
			} else {
				// removed and renamed files count as modifications
				delta.FilesModified++
			}

			if !touched[f.ProjectName] {
				touched[f.ProjectName] = true
				delta.PRCount++

				teamKey := schema.TeamProjectKey{Day: day, ProjectName: f.ProjectName, TeamName: pr.Team}
				deltas.TeamProject(teamKey, delta.ProjectGroup).PRCount++
			}
		}
	}

	return deltas
}

// ProjectRecords flattens project deltas into stat records sorted by day then
// project, the same shape the store hands back for accumulated stats.
func ProjectRecords(deltas *schema.StatsDeltas) []schema.DailyProjectStatsRecord {
	records := make([]schema.DailyProjectStatsRecord, 0, len(deltas.Projects))
	for key, d := range deltas.Projects {
		records = append(records, schema.DailyProjectStatsRecord{
			Day:               key.Day,
			ProjectName:       key.ProjectName,
			ProjectGroup:      d.ProjectGroup,
			PRCount:           d.PRCount,
			TotalLinesChanged: d.TotalLinesChanged,
			FilesModified:     d.FilesModified,
			FilesAdded:        d.FilesAdded,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Day != records[j].Day {
			return records[i].Day < records[j].Day
		}
		return records[i].ProjectName < records[j].ProjectName
	})
	return records
}

// TeamRecords flattens team deltas into stat records sorted by day, project
// and team.
func TeamRecords(deltas *schema.StatsDeltas) []schema.DailyTeamProjectStatsRecord {
	records := make([]schema.DailyTeamProjectStatsRecord, 0, len(deltas.TeamProjects))
	for key, d := range deltas.TeamProjects {
		records = append(records, schema.DailyTeamProjectStatsRecord{
			Day:          key.Day,
			ProjectName:  key.ProjectName,
			ProjectGroup: d.ProjectGroup,
			TeamName:     key.TeamName,
			PRCount:      d.PRCount,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Day != records[j].Day {
			return records[i].Day < records[j].Day
		}
		if records[i].ProjectName != records[j].ProjectName {
			return records[i].ProjectName < records[j].ProjectName
		}
		return records[i].TeamName < records[j].TeamName
	})
	return records
}
