package ghsource

import (
	"fmt"
	"regexp"
	"strings"
)

// rollupLinkThreshold is the number of distinct PR links in a body that marks
// the PR as a rollup of already-merged work.
const rollupLinkThreshold = 2

// pullLinkPattern builds a regexp matching PR links for one repository.
func pullLinkPattern(owner, repo string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(
		`https://github\.com/%s/%s/pull/(\d+)`,
		regexp.QuoteMeta(owner), regexp.QuoteMeta(repo),
	))
}

// IsRollupPullRequest reports whether a PR bundles other already-merged PRs.
// A PR qualifies when its title mentions a release, or when its body links to
// at least two distinct PRs of the same repository. Rollup PRs are excluded
// from attribution so bundled work is not counted twice.
func IsRollupPullRequest(title, body, owner, repo string) bool {
	if strings.Contains(strings.ToLower(title), "release") {
		return true
	}

	distinct := make(map[string]bool)
	for _, match := range pullLinkPattern(owner, repo).FindAllStringSubmatch(body, -1) {
		distinct[match[1]] = true
	}
	return len(distinct) >= rollupLinkThreshold
}
