// Package parquet exports attributed pull requests and accumulated daily
// stats to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/huangsam/prlens/schema"
)

// PullRequestRow represents one attributed pull request.
// This struct maps to the prlens_pull_requests database table.
type PullRequestRow struct {
	// PRNumber is the pull request number within the repository
	PRNumber int32 `parquet:"pr_number,snappy"`

	// Title is the pull request title
	Title string `parquet:"title,snappy"`

	// Author is the login of the pull request author
	Author string `parquet:"author,snappy"`

	// Team is the author's team from the roster, or Unassigned
	Team string `parquet:"team,snappy"`

	// MergedAt is the UTC merge timestamp
	MergedAt time.Time `parquet:"merged_at,snappy"`

	// MergeCommitSHA is the merge commit on the base branch (nullable)
	MergeCommitSHA *string `parquet:"merge_commit_sha,optional,snappy"`

	// FileCount is the number of changed files attributed to the PR
	FileCount int32 `parquet:"file_count,snappy"`

	// TotalChanges is the sum of changed lines across all files
	TotalChanges int32 `parquet:"total_changes,snappy"`
}

// FileRow represents one attributed file change.
// This struct maps to the prlens_pr_files database table.
type FileRow struct {
	// PRNumber references the parent pull request
	PRNumber int32 `parquet:"pr_number,snappy"`

	// FileName is the repo-relative path of the changed file
	FileName string `parquet:"file_name,snappy"`

	// ProjectName is the project the file was attributed to
	ProjectName string `parquet:"project_name,snappy"`

	// Status is the change kind: added, removed, modified or renamed
	Status string `parquet:"status,snappy"`

	// Additions is the number of added lines
	Additions int32 `parquet:"additions,snappy"`

	// Deletions is the number of deleted lines
	Deletions int32 `parquet:"deletions,snappy"`

	// Changes is additions plus deletions
	Changes int32 `parquet:"changes,snappy"`
}

// DailyProjectStatsRow represents one accumulated (day, project) counter row.
// This struct maps to the prlens_daily_project_stats database table.
type DailyProjectStatsRow struct {
	// Day is the UTC calendar date in ISO form
	Day string `parquet:"day,snappy"`

	// ProjectName is the stats bucket's project
	ProjectName string `parquet:"project_name,snappy"`

	// ProjectGroup is the project's group rollup
	ProjectGroup string `parquet:"project_group,snappy"`

	// PRCount is the number of PRs touching the project that day
	PRCount int32 `parquet:"pr_count,snappy"`

	// TotalLinesChanged is the summed line churn
	TotalLinesChanged int32 `parquet:"total_lines_changed,snappy"`

	// FilesModified is the number of modified files
	FilesModified int32 `parquet:"files_modified,snappy"`

	// FilesAdded is the number of added files
	FilesAdded int32 `parquet:"files_added,snappy"`
}

// DailyTeamProjectStatsRow represents one accumulated (day, project, team)
// counter row. This struct maps to the prlens_daily_team_project_stats table.
type DailyTeamProjectStatsRow struct {
	// Day is the UTC calendar date in ISO form
	Day string `parquet:"day,snappy"`

	// ProjectName is the stats bucket's project
	ProjectName string `parquet:"project_name,snappy"`

	// ProjectGroup is the project's group rollup
	ProjectGroup string `parquet:"project_group,snappy"`

	// TeamName is the stats bucket's team
	TeamName string `parquet:"team_name,snappy"`

	// PRCount is the number of PRs that team merged into the project that day
	PRCount int32 `parquet:"pr_count,snappy"`
}

// FromAttributedPulls converts attributed PRs to Parquet rows.
func FromAttributedPulls(pulls []schema.AttributedPullRequest) []PullRequestRow {
	rows := make([]PullRequestRow, 0, len(pulls))
	for _, pr := range pulls {
		row := PullRequestRow{
			PRNumber:     int32(pr.Number),
			Title:        pr.Title,
			Author:       pr.Author,
			Team:         pr.Team,
			MergedAt:     pr.MergedAt,
			FileCount:    int32(len(pr.Files)),
			TotalChanges: int32(pr.TotalChanges()),
		}
		if pr.MergeCommitSHA != "" {
			sha := pr.MergeCommitSHA
			row.MergeCommitSHA = &sha
		}
		rows = append(rows, row)
	}
	return rows
}

// FromAttributedFiles flattens the file changes of attributed PRs to Parquet rows.
func FromAttributedFiles(pulls []schema.AttributedPullRequest) []FileRow {
	var rows []FileRow
	for _, pr := range pulls {
		for _, f := range pr.Files {
			rows = append(rows, FileRow{
				PRNumber:    int32(pr.Number),
				FileName:    f.FileName,
				ProjectName: f.ProjectName,
				Status:      string(f.Status),
				Additions:   int32(f.Additions),
				Deletions:   int32(f.Deletions),
				Changes:     int32(f.Changes),
			})
		}
	}
	return rows
}

// FromFileRecords converts stored file rows to Parquet rows. numberByPullID
// maps internal pull_request ids to the public PR numbers the rows carry.
func FromFileRecords(records []schema.PrFileRecord, numberByPullID map[int64]int) []FileRow {
	rows := make([]FileRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, FileRow{
			PRNumber:    int32(numberByPullID[r.PullRequestID]),
			FileName:    r.FileName,
			ProjectName: r.ProjectName,
			Status:      string(r.Status),
			Additions:   int32(r.Additions),
			Deletions:   int32(r.Deletions),
			Changes:     int32(r.Changes),
		})
	}
	return rows
}

// FromDailyProjectStats converts stored project stats records to Parquet rows.
func FromDailyProjectStats(records []schema.DailyProjectStatsRecord) []DailyProjectStatsRow {
	rows := make([]DailyProjectStatsRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, DailyProjectStatsRow{
			Day:               string(r.Day),
			ProjectName:       r.ProjectName,
			ProjectGroup:      r.ProjectGroup,
			PRCount:           int32(r.PRCount),
			TotalLinesChanged: int32(r.TotalLinesChanged),
			FilesModified:     int32(r.FilesModified),
			FilesAdded:        int32(r.FilesAdded),
		})
	}
	return rows
}

// FromDailyTeamProjectStats converts stored team stats records to Parquet rows.
func FromDailyTeamProjectStats(records []schema.DailyTeamProjectStatsRecord) []DailyTeamProjectStatsRow {
	rows := make([]DailyTeamProjectStatsRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, DailyTeamProjectStatsRow{
			Day:          string(r.Day),
			ProjectName:  r.ProjectName,
			ProjectGroup: r.ProjectGroup,
			TeamName:     r.TeamName,
			PRCount:      int32(r.PRCount),
		})
	}
	return rows
}

// WritePullRequestsParquet writes attributed PR rows to a Parquet file.
func WritePullRequestsParquet(data []PullRequestRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteFilesParquet writes attributed file rows to a Parquet file.
func WriteFilesParquet(data []FileRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteDailyProjectStatsParquet writes project stats rows to a Parquet file.
func WriteDailyProjectStatsParquet(data []DailyProjectStatsRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteDailyTeamProjectStatsParquet writes team stats rows to a Parquet file.
func WriteDailyTeamProjectStatsParquet(data []DailyTeamProjectStatsRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes records to a Parquet file using struct schema inference.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
