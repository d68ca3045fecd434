// Package pipeline turns raw merged PRs into attributed records, one daily
// window at a time.
package pipeline

import (
	"context"
	"fmt"

	"github.com/huangsam/prlens/internal/classify"
	"github.com/huangsam/prlens/internal/contract"
	"github.com/huangsam/prlens/internal/gitdiff"
	"github.com/huangsam/prlens/schema"
)

// Engine attributes one raw PR to files, projects and a team. File changes
// come from the local clone, never from the hosting API.
type Engine struct {
	git        contract.GitClient
	classifier *classify.Classifier
	teams      []schema.Team
	repoPath   string
}

// NewEngine creates an Engine. The classifier must already have discovered
// the repository's project manifests.
func NewEngine(git contract.GitClient, classifier *classify.Classifier, teams []schema.Team, repoPath string) *Engine {
	return &Engine{git: git, classifier: classifier, teams: teams, repoPath: repoPath}
}

// ShouldProcess reports whether a PR takes part in attribution. Rollup PRs
// bundle work that was already attributed through its original PRs.
func (e *Engine) ShouldProcess(pr schema.RawPullRequest) bool {
	return !pr.IsRollup
}

// Attribute resolves the PR's changed files, classifies each into a project,
// and assigns the author's team. Attribution never fails: when no diff can be
// computed the PR is recorded with an empty file list.
func (e *Engine) Attribute(ctx context.Context, pr schema.RawPullRequest) schema.AttributedPullRequest {
	files := e.changedFiles(ctx, pr)

	attributed := make([]schema.AttributedFile, 0, len(files))
	counts := make(map[string]int)
	for _, f := range files {
		project := e.classifier.ProjectNameForPath(f.FileName)
		attributed = append(attributed, schema.AttributedFile{
			FileName:    f.FileName,
			Status:      f.Status,
			Additions:   f.Additions,
			Deletions:   f.Deletions,
			Changes:     f.Changes,
			ProjectName: project,
		})
		counts[project]++
	}

	return schema.AttributedPullRequest{
		Number:                 pr.Number,
		Title:                  pr.Title,
		Author:                 pr.Author,
		Team:                   schema.TeamForAuthor(e.teams, pr.Author),
		MergedAt:               pr.MergedAt,
		MergeCommitSHA:         pr.MergeCommitSHA,
		FileCountByProjectName: counts,
		Files:                  attributed,
	}
}

// GroupForProject exposes the classifier's project-to-group mapping for
// downstream aggregation.
func (e *Engine) GroupForProject(projectName string) string {
	return e.classifier.ClassifyProjectName(projectName)
}

// changedFiles tries the head-vs-base diff first, which reflects exactly what
// the PR changed even on a branch that drifted from the base. The merge commit
// against its first parent is the fallback for shallow or pruned clones where
// the head ref no longer resolves.
func (e *Engine) changedFiles(ctx context.Context, pr schema.RawPullRequest) []schema.ChangedFile {
	if pr.HeadSHA != "" && pr.BaseSHA != "" {
		files, err := gitdiff.DiffFiles(ctx, e.git, e.repoPath, pr.BaseSHA, pr.HeadSHA)
		if err == nil {
			return files
		}
		contract.LogWarn(fmt.Sprintf("head/base diff for PR #%d", pr.Number), err)
	}

	if pr.MergeCommitSHA != "" {
		files, err := gitdiff.MergeCommitFiles(ctx, e.git, e.repoPath, pr.MergeCommitSHA)
		if err == nil {
			return files
		}
		contract.LogWarn(fmt.Sprintf("merge commit diff for PR #%d", pr.Number), err)
	}

	contract.LogWarn(fmt.Sprintf("attribution for PR #%d", pr.Number), errNoDiffSource)
	return nil
}

var errNoDiffSource = fmt.Errorf("no resolvable diff source, recording empty file list")
