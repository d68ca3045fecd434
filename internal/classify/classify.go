// Package classify maps project names and file paths to project groups.
package classify

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/huangsam/prlens/schema"
)

// Classifier serves name-to-group and path-to-group lookups built from
// discovered project directories. Build it once per run via Discover.
type Classifier struct {
	repoRoot string
	groups   []string // group prefixes, sorted by descending length

	projectToGroup map[string]string // project name -> group
	dirToGroup     map[string]string // absolute project dir -> group
	dirToProject   map[string]string // absolute project dir -> project name
	dirKeys        []string          // dirToGroup keys, longest first
}

// New creates a Classifier for a repository root. The group prefix list must
// already be sorted by descending length (schema.LoadProjectGroups does this).
func New(repoRoot string, groups []string) *Classifier {
	return &Classifier{
		repoRoot:       filepath.Clean(repoRoot),
		groups:         groups,
		projectToGroup: make(map[string]string),
		dirToGroup:     make(map[string]string),
		dirToProject:   make(map[string]string),
	}
}

// ClassifyProjectName returns the first group whose name is a case-insensitive
// prefix of the project name. A project with no matching group is its own group.
func (c *Classifier) ClassifyProjectName(name string) string {
	lower := strings.ToLower(name)
	for _, group := range c.groups {
		if strings.HasPrefix(lower, strings.ToLower(group)) {
			return group
		}
	}
	return name
}

// Discover walks the working tree for project-manifest files matching the
// glob, recording each project's directory and classification. Unreadable
// subtrees are skipped rather than failing the run.
func (c *Classifier) Discover(manifestGlob string) error {
	count := 0
	err := filepath.WalkDir(c.repoRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		matched, matchErr := filepath.Match(manifestGlob, d.Name())
		if matchErr != nil {
			return fmt.Errorf("invalid manifest glob %q: %w", manifestGlob, matchErr)
		}
		if !matched {
			return nil
		}

		projectName := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		group := c.ClassifyProjectName(projectName)
		projectDir := filepath.Dir(path)
		c.projectToGroup[projectName] = group
		c.dirToGroup[projectDir] = group
		c.dirToProject[projectDir] = projectName
		count++
		return nil
	})
	if err != nil {
		return err
	}

	c.dirKeys = make([]string, 0, len(c.dirToGroup))
	for dir := range c.dirToGroup {
		c.dirKeys = append(c.dirKeys, dir)
	}
	sort.Slice(c.dirKeys, func(i, j int) bool {
		return len(c.dirKeys[i]) > len(c.dirKeys[j])
	})

	fmt.Printf("Discovered %d project manifests across %d groups\n", count, len(c.AllGroups()))
	return nil
}

// matchDir returns the longest project directory that case-insensitively
// prefixes the absolute path, or an empty string.
func (c *Classifier) matchDir(abs string) string {
	lowerAbs := strings.ToLower(abs)
	// dirKeys is longest-first, so the first hit is the most specific project.
	for _, dir := range c.dirKeys {
		if strings.HasPrefix(lowerAbs, strings.ToLower(dir)) {
			return dir
		}
	}
	return ""
}

// matchSegment scans path segments against known project names.
func (c *Classifier) matchSegment(abs string) string {
	rel := strings.TrimPrefix(abs, c.repoRoot)
	for _, segment := range strings.Split(rel, string(filepath.Separator)) {
		if _, ok := c.projectToGroup[segment]; ok {
			return segment
		}
	}
	return ""
}

// normalize makes a changed-file path absolute relative to the repo root.
func (c *Classifier) normalize(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.repoRoot, path)
}

// ClassifyFilePath returns the project group for a changed file path. The
// longest project directory that prefixes the path wins; unmatched paths fall
// back to scanning path segments against known project names, then to the
// Unmatched sentinel. This never fails.
func (c *Classifier) ClassifyFilePath(path string) string {
	abs := c.normalize(path)
	if dir := c.matchDir(abs); dir != "" {
		return c.dirToGroup[dir]
	}
	if segment := c.matchSegment(abs); segment != "" {
		return c.projectToGroup[segment]
	}
	return schema.UnmatchedGroup
}

// ProjectNameForPath returns the discovered project owning a file path, or the
// Unmatched sentinel. Persisted rows key stats by project name; groups are a
// derived rollup.
func (c *Classifier) ProjectNameForPath(path string) string {
	abs := c.normalize(path)
	if dir := c.matchDir(abs); dir != "" {
		return c.dirToProject[dir]
	}
	if segment := c.matchSegment(abs); segment != "" {
		return segment
	}
	return schema.UnmatchedGroup
}

// AllGroups returns the distinct discovered groups in sorted order.
func (c *Classifier) AllGroups() []string {
	seen := make(map[string]bool)
	var groups []string
	for _, group := range c.projectToGroup {
		if !seen[group] {
			seen[group] = true
			groups = append(groups, group)
		}
	}
	sort.Strings(groups)
	return groups
}
