package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/huangsam/prlens/schema"
)

// ExportRun persists one completed run in a single transaction: the run row,
// every attributed PR with its files and project rollups, and the stats
// deltas folded onto whatever counters earlier runs already accumulated.
// A failure anywhere rolls the whole run back.
func (s *StoreImpl) ExportRun(run schema.AnalysisRun, pulls []schema.AttributedPullRequest, deltas *schema.StatsDeltas) (int64, error) {
	if s.disabled() {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	runID, err := s.insertRun(tx, run)
	if err != nil {
		return 0, err
	}

	for _, pr := range pulls {
		prID, err := s.insertPull(tx, runID, pr)
		if err != nil {
			return 0, err
		}
		if err := s.insertFiles(tx, prID, pr, deltas); err != nil {
			return 0, err
		}
		if err := s.insertProjects(tx, prID, pr, deltas); err != nil {
			return 0, err
		}
	}

	if err := s.applyStatsDeltas(tx, deltas); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run export: %w", err)
	}
	return runID, nil
}

// insertRun inserts the run row and returns its generated ID.
func (s *StoreImpl) insertRun(tx *sql.Tx, run schema.AnalysisRun) (int64, error) {
	quotedTableName := quoteTableName(runsTable, s.backend)

	var runID int64
	var err error
	switch s.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (owner, repo, start_date, end_date, base_branch, run_date, pr_count)
			VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`, quotedTableName)
		err = tx.QueryRow(query, run.Owner, run.Repo, run.StartDate, run.EndDate,
			run.BaseBranch, run.RunDate, run.PRCount).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (owner, repo, start_date, end_date, base_branch, run_date, pr_count)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = tx.Exec(query, run.Owner, run.Repo,
			formatTime(run.StartDate, s.backend), formatTime(run.EndDate, s.backend),
			run.BaseBranch, formatTime(run.RunDate, s.backend), run.PRCount)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return runID, nil
}

// insertPull inserts one PR row and returns its generated ID.
func (s *StoreImpl) insertPull(tx *sql.Tx, runID int64, pr schema.AttributedPullRequest) (int64, error) {
	quotedTableName := quoteTableName(pullsTable, s.backend)

	var prID int64
	var err error
	switch s.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (analysis_run_id, pr_number, title, author, team, merged_at, merge_commit_sha, is_rollup_pr)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`, quotedTableName)
		err = tx.QueryRow(query, runID, pr.Number, pr.Title, pr.Author, pr.Team,
			pr.MergedAt, pr.MergeCommitSHA, false).Scan(&prID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (analysis_run_id, pr_number, title, author, team, merged_at, merge_commit_sha, is_rollup_pr)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = tx.Exec(query, runID, pr.Number, pr.Title, pr.Author, pr.Team,
			formatTime(pr.MergedAt, s.backend), pr.MergeCommitSHA, false)
		if err == nil {
			prID, err = result.LastInsertId()
		}
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert PR #%d: %w", pr.Number, err)
	}
	return prID, nil
}

// insertFiles inserts the attributed file rows of one PR.
func (s *StoreImpl) insertFiles(tx *sql.Tx, prID int64, pr schema.AttributedPullRequest, deltas *schema.StatsDeltas) error {
	query := s.rebind(fmt.Sprintf(`INSERT INTO %s (pull_request_id, file_name, project_name, project_group, status, additions, deletions, changes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, quoteTableName(filesTable, s.backend)))

	day := mergeDay(pr)
	for _, f := range pr.Files {
		group := groupFor(deltas, day, f.ProjectName)
		if _, err := tx.Exec(query, prID, f.FileName, f.ProjectName, group,
			string(f.Status), f.Additions, f.Deletions, f.Changes); err != nil {
			return fmt.Errorf("failed to insert file %s of PR #%d: %w", f.FileName, pr.Number, err)
		}
	}
	return nil
}

// insertProjects inserts the per-project rollup rows of one PR.
func (s *StoreImpl) insertProjects(tx *sql.Tx, prID int64, pr schema.AttributedPullRequest, deltas *schema.StatsDeltas) error {
	query := s.rebind(fmt.Sprintf(`INSERT INTO %s (pull_request_id, project_name, project_group, file_count)
		VALUES (?, ?, ?, ?)`, quoteTableName(projectsTable, s.backend)))

	day := mergeDay(pr)
	for projectName, fileCount := range pr.FileCountByProjectName {
		group := groupFor(deltas, day, projectName)
		if _, err := tx.Exec(query, prID, projectName, group, fileCount); err != nil {
			return fmt.Errorf("failed to insert project %s of PR #%d: %w", projectName, pr.Number, err)
		}
	}
	return nil
}

// applyStatsDeltas folds the run's counter deltas onto the stats tables.
// Existing rows are incremented in place; missing buckets are inserted.
func (s *StoreImpl) applyStatsDeltas(tx *sql.Tx, deltas *schema.StatsDeltas) error {
	if deltas == nil {
		return nil
	}

	updateProject := s.rebind(fmt.Sprintf(`UPDATE %s
		SET pr_count = pr_count + ?, total_lines_changed = total_lines_changed + ?,
		    files_modified = files_modified + ?, files_added = files_added + ?
		WHERE day = ? AND project_name = ?`, quoteTableName(projectStatsTable, s.backend)))
	insertProject := s.rebind(fmt.Sprintf(`INSERT INTO %s (day, project_name, project_group, pr_count, total_lines_changed, files_modified, files_added)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, quoteTableName(projectStatsTable, s.backend)))

	for key, delta := range deltas.Projects {
		result, err := tx.Exec(updateProject, delta.PRCount, delta.TotalLinesChanged,
			delta.FilesModified, delta.FilesAdded, string(key.Day), key.ProjectName)
		if err != nil {
			return fmt.Errorf("failed to update project stats for %s/%s: %w", key.Day, key.ProjectName, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if affected == 0 {
			if _, err := tx.Exec(insertProject, string(key.Day), key.ProjectName, delta.ProjectGroup,
				delta.PRCount, delta.TotalLinesChanged, delta.FilesModified, delta.FilesAdded); err != nil {
				return fmt.Errorf("failed to insert project stats for %s/%s: %w", key.Day, key.ProjectName, err)
			}
		}
	}

	updateTeam := s.rebind(fmt.Sprintf(`UPDATE %s SET pr_count = pr_count + ?
		WHERE day = ? AND project_name = ? AND team_name = ?`, quoteTableName(teamStatsTable, s.backend)))
	insertTeam := s.rebind(fmt.Sprintf(`INSERT INTO %s (day, project_name, project_group, team_name, pr_count)
		VALUES (?, ?, ?, ?, ?)`, quoteTableName(teamStatsTable, s.backend)))

	for key, delta := range deltas.TeamProjects {
		result, err := tx.Exec(updateTeam, delta.PRCount, string(key.Day), key.ProjectName, key.TeamName)
		if err != nil {
			return fmt.Errorf("failed to update team stats for %s/%s/%s: %w", key.Day, key.ProjectName, key.TeamName, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if affected == 0 {
			if _, err := tx.Exec(insertTeam, string(key.Day), key.ProjectName, delta.ProjectGroup,
				key.TeamName, delta.PRCount); err != nil {
				return fmt.Errorf("failed to insert team stats for %s/%s/%s: %w", key.Day, key.ProjectName, key.TeamName, err)
			}
		}
	}

	return nil
}

// mergeDay returns the PR's merge date as a stats day key.
func mergeDay(pr schema.AttributedPullRequest) schema.Day {
	return schema.Day(pr.MergedAt.UTC().Format(time.DateOnly))
}

// groupFor resolves a project's group from the run's deltas. Falls back to
// the project name itself, which is also what classification does for a
// project with no matching group prefix.
func groupFor(deltas *schema.StatsDeltas, day schema.Day, projectName string) string {
	if deltas != nil {
		if delta, ok := deltas.Projects[schema.ProjectKey{Day: day, ProjectName: projectName}]; ok {
			return delta.ProjectGroup
		}
	}
	return projectName
}
