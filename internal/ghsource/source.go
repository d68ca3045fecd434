// Package ghsource retrieves merged pull requests from the GitHub REST API
// and paces consumption against the token's rate-limit quota.
package ghsource

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/huangsam/prlens/internal/contract"
	"github.com/huangsam/prlens/schema"
)

const searchPageSize = 100

// Source fetches merged PRs for one repository via the REST API.
type Source struct {
	client *github.Client
	owner  string
	repo   string
	gov    *Governor
}

var _ contract.PullRequestSource = &Source{} // Compile-time check

// New creates a Source with an authenticated client. Secondary rate limits
// are absorbed by a waiter transport so abuse responses do not fail the run.
func New(token, owner, repo string) (*Source, error) {
	waiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("cannot create rate limit waiter: %w", err)
	}
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   waiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		},
	}
	return &Source{client: github.NewClient(httpClient), owner: owner, repo: repo}, nil
}

// NewWithClient creates a Source around an existing API client.
func NewWithClient(client *github.Client, owner, repo string) *Source {
	return &Source{client: client, owner: owner, repo: repo}
}

// SetGovernor attaches quota pacing to detail fetches.
func (s *Source) SetGovernor(gov *Governor) {
	s.gov = gov
}

// CheckQuota implements the QuotaChecker interface with the core REST quota.
func (s *Source) CheckQuota(ctx context.Context) (contract.QuotaState, error) {
	limits, _, err := s.client.RateLimit.Get(ctx)
	if err != nil {
		return contract.QuotaState{}, err
	}
	return contract.QuotaState{
		Remaining: limits.GetCore().Remaining,
		CheckedAt: time.Now().UTC(),
	}, nil
}

// FetchMergedPulls returns the PRs merged into baseBranch within [start, end),
// sorted ascending by merge timestamp. The search surfaces candidate numbers;
// a detail fetch per PR resolves the commit SHAs needed for local diffing. A
// failed detail fetch degrades that PR to its search-result fields rather than
// failing the window.
func (s *Source) FetchMergedPulls(ctx context.Context, start, end time.Time, baseBranch string) ([]schema.RawPullRequest, error) {
	issues, err := s.searchMergedIssues(ctx, start, end, baseBranch)
	if err != nil {
		return nil, err
	}

	var pulls []schema.RawPullRequest
	for _, issue := range issues {
		if s.gov != nil {
			if err := s.gov.RecordFetch(ctx); err != nil {
				return nil, err
			}
		}

		raw, err := s.fetchDetail(ctx, issue.GetNumber())
		if err != nil {
			contract.LogWarn(fmt.Sprintf("detail fetch for PR #%d", issue.GetNumber()), err)
			raw = s.fromSearchIssue(issue)
			if raw.MergedAt.IsZero() {
				// The search matched the window but carried no timestamp at
				// all. Clamp to the window start so the PR is still recorded.
				raw.MergedAt = start
			}
		}
		if raw.MergedAt.Before(start) || !raw.MergedAt.Before(end) {
			continue
		}
		pulls = append(pulls, raw)
	}

	sort.Slice(pulls, func(i, j int) bool {
		return pulls[i].MergedAt.Before(pulls[j].MergedAt)
	})
	return pulls, nil
}

// searchMergedIssues pages through the issue search for merged PRs,
// deduplicating across pages.
func (s *Source) searchMergedIssues(ctx context.Context, start, end time.Time, baseBranch string) ([]*github.Issue, error) {
	query := fmt.Sprintf("repo:%s/%s is:pr is:merged base:%s merged:%s..%s",
		s.owner, s.repo, baseBranch,
		start.UTC().Format("2006-01-02T15:04:05Z"),
		end.UTC().Format("2006-01-02T15:04:05Z"))
	opts := &github.SearchOptions{
		Sort:        "created",
		Order:       "asc",
		ListOptions: github.ListOptions{PerPage: searchPageSize},
	}

	seen := make(map[int]bool)
	var issues []*github.Issue
	for {
		result, resp, err := s.client.Search.Issues(ctx, query, opts)
		if err != nil {
			return nil, fmt.Errorf("pull request search failed: %w", err)
		}
		for _, issue := range result.Issues {
			if !seen[issue.GetNumber()] {
				seen[issue.GetNumber()] = true
				issues = append(issues, issue)
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return issues, nil
}

// fromSearchIssue builds a degraded record from search-result fields alone.
// Commit SHAs stay empty, so attribution yields an empty file list.
func (s *Source) fromSearchIssue(issue *github.Issue) schema.RawPullRequest {
	mergedAt := issue.GetPullRequestLinks().GetMergedAt().Time
	if mergedAt.IsZero() {
		mergedAt = issue.GetClosedAt().Time
	}
	raw := schema.RawPullRequest{
		Number:   issue.GetNumber(),
		Title:    issue.GetTitle(),
		Author:   issue.GetUser().GetLogin(),
		MergedAt: mergedAt.UTC(),
		Body:     issue.GetBody(),
	}
	raw.IsRollup = IsRollupPullRequest(raw.Title, raw.Body, s.owner, s.repo)
	return raw
}

// fetchDetail resolves the full PR record for one number.
func (s *Source) fetchDetail(ctx context.Context, number int) (schema.RawPullRequest, error) {
	pr, _, err := s.client.PullRequests.Get(ctx, s.owner, s.repo, number)
	if err != nil {
		return schema.RawPullRequest{}, err
	}

	raw := schema.RawPullRequest{
		Number:         pr.GetNumber(),
		Title:          pr.GetTitle(),
		Author:         pr.GetUser().GetLogin(),
		MergedAt:       pr.GetMergedAt().Time.UTC(),
		Body:           pr.GetBody(),
		MergeCommitSHA: pr.GetMergeCommitSHA(),
		HeadSHA:        pr.GetHead().GetSHA(),
		BaseSHA:        pr.GetBase().GetSHA(),
	}
	raw.IsRollup = IsRollupPullRequest(raw.Title, raw.Body, s.owner, s.repo)
	return raw, nil
}
