package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/prlens/schema"
)

// LatestRun returns the most recent run, or nil when the store is empty or
// persistence is disabled. The run command uses it to continue from where the
// previous invocation stopped.
func (s *StoreImpl) LatestRun() (*schema.AnalysisRun, error) {
	if s.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT id, owner, repo, start_date, end_date, base_branch, run_date, pr_count
		FROM %s ORDER BY id DESC LIMIT 1`, quoteTableName(runsTable, s.backend))

	run, err := s.scanRun(s.db.QueryRow(query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return run, nil
}

// AllRuns retrieves all runs from the store in insertion order.
func (s *StoreImpl) AllRuns() ([]schema.AnalysisRun, error) {
	if s.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT id, owner, repo, start_date, end_date, base_branch, run_date, pr_count
		FROM %s ORDER BY id`, quoteTableName(runsTable, s.backend))

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRun
	for rows.Next() {
		run, err := s.scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		results = append(results, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// rowScanner abstracts sql.Row and sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun scans one run row, handling the SQLite text time format.
func (s *StoreImpl) scanRun(row rowScanner) (*schema.AnalysisRun, error) {
	var run schema.AnalysisRun

	switch s.backend {
	case schema.SQLiteBackend:
		var startStr, endStr, runStr string
		if err := row.Scan(&run.ID, &run.Owner, &run.Repo, &startStr, &endStr,
			&run.BaseBranch, &runStr, &run.PRCount); err != nil {
			return nil, err
		}
		for _, pair := range []struct {
			raw  string
			dest *time.Time
		}{
			{startStr, &run.StartDate},
			{endStr, &run.EndDate},
			{runStr, &run.RunDate},
		} {
			parsed, err := time.Parse(time.RFC3339Nano, pair.raw)
			if err != nil {
				return nil, fmt.Errorf("failed to parse stored time %q: %w", pair.raw, err)
			}
			*pair.dest = parsed
		}
	default: // MySQL and PostgreSQL store as native datetime
		if err := row.Scan(&run.ID, &run.Owner, &run.Repo, &run.StartDate, &run.EndDate,
			&run.BaseBranch, &run.RunDate, &run.PRCount); err != nil {
			return nil, err
		}
	}

	return &run, nil
}

// PullRequestsForRun retrieves the PR rows of one run in insertion order.
func (s *StoreImpl) PullRequestsForRun(runID int64) ([]schema.PullRequestRecord, error) {
	if s.disabled() {
		return nil, nil
	}

	query := s.rebind(fmt.Sprintf(`SELECT id, analysis_run_id, pr_number, title, author, team, merged_at, merge_commit_sha, is_rollup_pr
		FROM %s WHERE analysis_run_id = ? ORDER BY id`, quoteTableName(pullsTable, s.backend)))

	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pull requests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.PullRequestRecord
	for rows.Next() {
		var record schema.PullRequestRecord

		switch s.backend {
		case schema.SQLiteBackend:
			var mergedStr string
			if err := rows.Scan(&record.ID, &record.AnalysisRunID, &record.PRNumber, &record.Title,
				&record.Author, &record.Team, &mergedStr, &record.MergeCommitSHA, &record.IsRollupPR); err != nil {
				return nil, fmt.Errorf("failed to scan pull request: %w", err)
			}
			mergedAt, err := time.Parse(time.RFC3339Nano, mergedStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse merged_at: %w", err)
			}
			record.MergedAt = mergedAt
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.ID, &record.AnalysisRunID, &record.PRNumber, &record.Title,
				&record.Author, &record.Team, &record.MergedAt, &record.MergeCommitSHA, &record.IsRollupPR); err != nil {
				return nil, fmt.Errorf("failed to scan pull request: %w", err)
			}
		}

		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pull requests: %w", err)
	}
	return results, nil
}

// FilesForRun retrieves the attributed file rows of one run in insertion order.
func (s *StoreImpl) FilesForRun(runID int64) ([]schema.PrFileRecord, error) {
	if s.disabled() {
		return nil, nil
	}

	query := s.rebind(fmt.Sprintf(`SELECT f.id, f.pull_request_id, f.file_name, f.project_name, f.project_group, f.status, f.additions, f.deletions, f.changes
		FROM %s f JOIN %s p ON p.id = f.pull_request_id
		WHERE p.analysis_run_id = ? ORDER BY f.id`,
		quoteTableName(filesTable, s.backend), quoteTableName(pullsTable, s.backend)))

	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.PrFileRecord
	for rows.Next() {
		var record schema.PrFileRecord
		var status string
		if err := rows.Scan(&record.ID, &record.PullRequestID, &record.FileName, &record.ProjectName,
			&record.ProjectGroup, &status, &record.Additions, &record.Deletions, &record.Changes); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		record.Status = schema.FileStatus(status)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating files: %w", err)
	}
	return results, nil
}

// DailyProjectStats retrieves all accumulated per-project daily counters.
func (s *StoreImpl) DailyProjectStats() ([]schema.DailyProjectStatsRecord, error) {
	if s.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT id, day, project_name, project_group, pr_count, total_lines_changed, files_modified, files_added
		FROM %s ORDER BY day, project_name`, quoteTableName(projectStatsTable, s.backend))

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query project stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.DailyProjectStatsRecord
	for rows.Next() {
		var record schema.DailyProjectStatsRecord
		if err := rows.Scan(&record.ID, &record.Day, &record.ProjectName, &record.ProjectGroup,
			&record.PRCount, &record.TotalLinesChanged, &record.FilesModified, &record.FilesAdded); err != nil {
			return nil, fmt.Errorf("failed to scan project stats: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project stats: %w", err)
	}
	return results, nil
}

// DailyTeamProjectStats retrieves all accumulated per-team daily counters.
func (s *StoreImpl) DailyTeamProjectStats() ([]schema.DailyTeamProjectStatsRecord, error) {
	if s.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT id, day, project_name, project_group, team_name, pr_count
		FROM %s ORDER BY day, project_name, team_name`, quoteTableName(teamStatsTable, s.backend))

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query team stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.DailyTeamProjectStatsRecord
	for rows.Next() {
		var record schema.DailyTeamProjectStatsRecord
		if err := rows.Scan(&record.ID, &record.Day, &record.ProjectName, &record.ProjectGroup,
			&record.TeamName, &record.PRCount); err != nil {
			return nil, fmt.Errorf("failed to scan team stats: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team stats: %w", err)
	}
	return results, nil
}

// GetStatus returns status information about the store.
func (s *StoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(s.backend),
		Connected:  s.db != nil,
		TableSizes: make(map[string]int64),
	}

	if s.disabled() {
		return status, nil
	}

	runsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(runsTable, s.backend))
	if err := s.db.QueryRow(runsQuery).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		lastRun, err := s.LatestRun()
		if err != nil {
			return status, err
		}
		if lastRun != nil {
			status.LastRun = &lastRun.RunDate
		}
	}

	tables := []string{runsTable, pullsTable, filesTable, projectsTable, projectStatsTable, teamStatsTable}
	for _, table := range tables {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, s.backend))
		var count int64
		if err := s.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}
