package ghsource

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestSource creates a Source that talks to a mock HTTP server.
func setupTestSource(t *testing.T, handler http.Handler) (*Source, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL

	return NewWithClient(client, "acme", "widgets"), server
}

func TestFetchMergedPulls(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("q"), "repo:acme/widgets is:pr is:merged base:main")
		fmt.Fprint(w, `{"total_count": 2, "items": [
			{"number": 7, "title": "Add checkout flow"},
			{"number": 5, "title": "Fix login"}
		]}`)
	})
	mux.HandleFunc("/repos/acme/widgets/pulls/5", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"number": 5, "title": "Fix login", "user": {"login": "bob"},
			"merged_at": "2025-11-01T10:00:00Z", "body": "",
			"merge_commit_sha": "m5", "head": {"sha": "h5"}, "base": {"sha": "b5"}}`)
	})
	mux.HandleFunc("/repos/acme/widgets/pulls/7", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"number": 7, "title": "Release 2025.11", "user": {"login": "carol"},
			"merged_at": "2025-11-01T15:00:00Z", "body": "",
			"merge_commit_sha": "m7", "head": {"sha": "h7"}, "base": {"sha": "b7"}}`)
	})

	source, _ := setupTestSource(t, mux)
	start := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	pulls, err := source.FetchMergedPulls(context.Background(), start, end, "main")

	require.NoError(t, err)
	require.Len(t, pulls, 2)

	// Sorted ascending by merge timestamp, not by search order.
	assert.Equal(t, 5, pulls[0].Number)
	assert.Equal(t, "bob", pulls[0].Author)
	assert.Equal(t, "m5", pulls[0].MergeCommitSHA)
	assert.Equal(t, "h5", pulls[0].HeadSHA)
	assert.Equal(t, "b5", pulls[0].BaseSHA)
	assert.False(t, pulls[0].IsRollup)

	assert.Equal(t, 7, pulls[1].Number)
	assert.True(t, pulls[1].IsRollup) // release title
}

func TestFetchMergedPullsOutsideWindow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/issues", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"total_count": 1, "items": [{"number": 9, "title": "Late merge"}]}`)
	})
	mux.HandleFunc("/repos/acme/widgets/pulls/9", func(w http.ResponseWriter, _ *http.Request) {
		// Merged exactly at the window end, which is exclusive.
		fmt.Fprint(w, `{"number": 9, "title": "Late merge", "user": {"login": "bob"},
			"merged_at": "2025-11-02T00:00:00Z",
			"merge_commit_sha": "m9", "head": {"sha": "h9"}, "base": {"sha": "b9"}}`)
	})

	source, _ := setupTestSource(t, mux)
	start := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	pulls, err := source.FetchMergedPulls(context.Background(), start, end, "main")

	require.NoError(t, err)
	assert.Empty(t, pulls)
}

func TestFetchMergedPullsDetailFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/issues", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"total_count": 1, "items": [{"number": 3, "title": "Fix cache",
			"user": {"login": "dana"}, "body": "",
			"pull_request": {"merged_at": "2025-11-01T08:00:00Z"}}]}`)
	})
	mux.HandleFunc("/repos/acme/widgets/pulls/3", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message": "boom"}`, http.StatusInternalServerError)
	})

	source, _ := setupTestSource(t, mux)
	start := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	pulls, err := source.FetchMergedPulls(context.Background(), start, end, "main")

	// The PR is still recorded, degraded to search-result fields.
	require.NoError(t, err)
	require.Len(t, pulls, 1)
	assert.Equal(t, 3, pulls[0].Number)
	assert.Equal(t, "dana", pulls[0].Author)
	assert.Empty(t, pulls[0].MergeCommitSHA)
	assert.Empty(t, pulls[0].HeadSHA)
}

func TestFetchMergedPullsDetailFailureWithoutTimestamp(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/issues", func(w http.ResponseWriter, _ *http.Request) {
		// Neither pull_request.merged_at nor closed_at is present.
		fmt.Fprint(w, `{"total_count": 1, "items": [{"number": 4, "title": "Fix cache",
			"user": {"login": "dana"}, "body": "", "pull_request": {}}]}`)
	})
	mux.HandleFunc("/repos/acme/widgets/pulls/4", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message": "boom"}`, http.StatusInternalServerError)
	})

	source, _ := setupTestSource(t, mux)
	start := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	pulls, err := source.FetchMergedPulls(context.Background(), start, end, "main")

	// Still recorded: the missing timestamp clamps to the window start
	// instead of silently dropping the PR.
	require.NoError(t, err)
	require.Len(t, pulls, 1)
	assert.Equal(t, 4, pulls[0].Number)
	assert.Equal(t, start, pulls[0].MergedAt)
}

func TestCheckQuota(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rate_limit", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"resources": {"core": {"limit": 5000, "remaining": 4321, "reset": 1767225600}}}`)
	})

	source, _ := setupTestSource(t, mux)
	state, err := source.CheckQuota(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4321, state.Remaining)
	assert.False(t, state.Exhausted())
}
