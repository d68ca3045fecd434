// Package gitdiff computes per-file change records between two commit states
// of a local repository clone.
package gitdiff

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/huangsam/prlens/internal/contract"
	"github.com/huangsam/prlens/schema"
)

// DiffFiles resolves both refs and returns the file changes between them,
// with rename detection enabled. Line counts come from the numstat output,
// which counts changed lines without context.
func DiffFiles(ctx context.Context, client contract.GitClient, repoPath, fromRef, toRef string) ([]schema.ChangedFile, error) {
	if !client.CommitExists(ctx, repoPath, fromRef) {
		return nil, fmt.Errorf("%w: %s", contract.ErrCommitNotFound, fromRef)
	}
	if !client.CommitExists(ctx, repoPath, toRef) {
		return nil, fmt.Errorf("%w: %s", contract.ErrCommitNotFound, toRef)
	}

	statusOut, err := client.DiffNameStatus(ctx, repoPath, fromRef, toRef)
	if err != nil {
		return nil, err
	}
	numstatOut, err := client.DiffNumstat(ctx, repoPath, fromRef, toRef)
	if err != nil {
		return nil, err
	}

	statuses := parseNameStatus(statusOut)
	counts := parseNumstat(numstatOut)

	files := make([]schema.ChangedFile, 0, len(statuses))
	for _, entry := range statuses {
		count := counts[entry.path]
		files = append(files, schema.ChangedFile{
			FileName:  entry.path,
			Status:    entry.status,
			Additions: count.additions,
			Deletions: count.deletions,
			Changes:   count.additions + count.deletions,
		})
	}
	return files, nil
}

// MergeCommitFiles diffs a merge commit against its first parent. A root
// commit with no parent yields an empty change set rather than failing.
func MergeCommitFiles(ctx context.Context, client contract.GitClient, repoPath, mergeSHA string) ([]schema.ChangedFile, error) {
	if !client.CommitExists(ctx, repoPath, mergeSHA) {
		return nil, fmt.Errorf("%w: %s", contract.ErrCommitNotFound, mergeSHA)
	}
	parent, err := client.FirstParent(ctx, repoPath, mergeSHA)
	if err != nil {
		return nil, err
	}
	if parent == "" {
		return nil, nil // Root commit
	}
	return DiffFiles(ctx, client, repoPath, parent, mergeSHA)
}

// statusEntry is one parsed name-status line, keyed by the post-change path.
type statusEntry struct {
	path   string
	status schema.FileStatus
}

// lineCount holds additions/deletions parsed from one numstat line.
type lineCount struct {
	additions int
	deletions int
}

// parseNameStatus parses `git diff --name-status -M` output. Rename and copy
// lines carry two paths; the second is the current one.
func parseNameStatus(out []byte) []statusEntry {
	var entries []statusEntry
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}

		kind := parts[0]
		path := parts[1]
		if (strings.HasPrefix(kind, "R") || strings.HasPrefix(kind, "C")) && len(parts) >= 3 {
			path = parts[2]
		}

		entries = append(entries, statusEntry{path: path, status: mapStatus(kind)})
	}
	return entries
}

// mapStatus converts a git status letter to a file status.
// Anything unrecognized defaults to modified.
func mapStatus(kind string) schema.FileStatus {
	if kind == "" {
		return schema.ModifiedStatus
	}
	switch kind[0] {
	case 'A':
		return schema.AddedStatus
	case 'D':
		return schema.RemovedStatus
	case 'R':
		return schema.RenamedStatus
	case 'M':
		return schema.ModifiedStatus
	default:
		return schema.ModifiedStatus
	}
}

// parseNumstat parses `git diff --numstat -M` output into a map keyed by the
// post-change path.
func parseNumstat(out []byte) map[string]lineCount {
	counts := make(map[string]lineCount)
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) < 3 {
			continue
		}

		path := resolveRenamedPath(parts[2])
		counts[path] = lineCount{
			additions: parseChurnValue(parts[0]),
			deletions: parseChurnValue(parts[1]),
		}
	}
	return counts
}

// parseChurnValue converts a churn string to int, handling "-" (binary) as 0.
func parseChurnValue(s string) int {
	if s == "-" {
		return 0
	}
	if val, err := strconv.Atoi(s); err == nil && val >= 0 {
		return val
	}
	return 0
}

// resolveRenamedPath collapses numstat rename notation to the new path.
// Handles both "old => new" and "dir/{old => new}/rest" forms.
func resolveRenamedPath(path string) string {
	if !strings.Contains(path, " => ") {
		return path
	}

	open := strings.Index(path, "{")
	closing := strings.Index(path, "}")
	if open != -1 && closing != -1 && open < closing {
		inner := path[open+1 : closing]
		innerParts := strings.SplitN(inner, " => ", 2)
		newInner := inner
		if len(innerParts) == 2 {
			newInner = innerParts[1]
		}
		resolved := path[:open] + newInner + path[closing+1:]
		return strings.ReplaceAll(resolved, "//", "/")
	}

	parts := strings.SplitN(path, " => ", 2)
	return parts[1]
}
