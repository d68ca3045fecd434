package schema

import "time"

// AnalysisRun represents a row from the prlens_analysis_runs table.
// One row is created per pipeline invocation and never updated afterward.
type AnalysisRun struct {
	ID         int64
	Owner      string
	Repo       string
	StartDate  time.Time
	EndDate    time.Time
	BaseBranch string
	RunDate    time.Time
	PRCount    int
}

// PullRequestRecord represents a row from the prlens_pull_requests table.
type PullRequestRecord struct {
	ID             int64
	AnalysisRunID  int64
	PRNumber       int
	Title          string
	Author         string
	Team           string
	MergedAt       time.Time
	MergeCommitSHA string
	IsRollupPR     bool
}

// PrFileRecord represents a row from the prlens_pr_files table.
type PrFileRecord struct {
	ID            int64
	PullRequestID int64
	FileName      string
	ProjectName   string
	ProjectGroup  string
	Status        FileStatus
	Additions     int
	Deletions     int
	Changes       int
}

// DailyProjectStatsRecord represents a row from the prlens_daily_project_stats
// table. Unique per (Day, ProjectName); counters accumulate across runs.
type DailyProjectStatsRecord struct {
	ID                int64
	Day               Day
	ProjectName       string
	ProjectGroup      string
	PRCount           int
	TotalLinesChanged int
	FilesModified     int
	FilesAdded        int
}

// DailyTeamProjectStatsRecord represents a row from the
// prlens_daily_team_project_stats table. Unique per (Day, ProjectName, TeamName).
type DailyTeamProjectStatsRecord struct {
	ID           int64
	Day          Day
	ProjectName  string
	ProjectGroup string
	TeamName     string
	PRCount      int
}

// StoreStatus holds status information about the persistence store.
type StoreStatus struct {
	Backend    string
	Connected  bool
	TotalRuns  int64
	LastRun    *time.Time
	TableSizes map[string]int64
}
