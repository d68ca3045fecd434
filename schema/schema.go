// Package schema has configs, models and shared constants for all parts of prlens.
package schema

import "time"

// RawPullRequest is a merged pull request as retrieved from the hosting API,
// before attribution. Number is unique per repository.
type RawPullRequest struct {
	Number         int       // PR number within the repository
	Title          string    // PR title
	Author         string    // Login of the PR author
	MergedAt       time.Time // Merge timestamp, normalized to UTC
	Body           string    // PR description body
	MergeCommitSHA string    // SHA of the merge commit on the base branch
	HeadSHA        string    // SHA of the PR head commit, may be empty
	BaseSHA        string    // SHA of the PR base commit, may be empty
	IsRollup       bool      // True when the PR bundles other already-merged PRs
}

// ChangedFile is a single file change computed from a repository diff,
// before project classification.
type ChangedFile struct {
	FileName  string
	Status    FileStatus
	Additions int
	Deletions int
	Changes   int // Additions + Deletions
}

// AttributedFile is a changed file attributed to a project.
type AttributedFile struct {
	FileName    string
	Status      FileStatus
	Additions   int
	Deletions   int
	Changes     int // Additions + Deletions
	ProjectName string
}

// AttributedPullRequest is a fully attributed record for one merged PR.
type AttributedPullRequest struct {
	Number                 int
	Title                  string
	Author                 string
	Team                   string
	MergedAt               time.Time
	MergeCommitSHA         string
	FileCountByProjectName map[string]int
	Files                  []AttributedFile
}

// Team is a named set of author logins from the team roster.
type Team struct {
	Name    string   `json:"teamName"`
	Authors []string `json:"authors"`
}

// RunSummary counts what one pipeline run saw and produced.
type RunSummary struct {
	Windows      int // daily windows processed
	PullCount    int // PRs attributed
	RollupCount  int // rollup PRs skipped
	DegradedPRs  int // PRs recorded with an empty file list
	WindowsEmpty int // windows with no merged PRs
}

// TotalChanges sums the changed-line counts across all files of the PR.
func (pr *AttributedPullRequest) TotalChanges() int {
	total := 0
	for _, f := range pr.Files {
		total += f.Changes
	}
	return total
}
