package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/prlens/internal/classify"
	"github.com/huangsam/prlens/internal/contract"
	"github.com/huangsam/prlens/internal/ghsource"
	"github.com/huangsam/prlens/internal/outwriter"
	"github.com/huangsam/prlens/internal/pipeline"
	"github.com/huangsam/prlens/internal/stats"
	"github.com/huangsam/prlens/internal/store"
	"github.com/huangsam/prlens/schema"
	"github.com/spf13/cobra"
)

// out is the shared output writer for all commands.
var out = outwriter.NewOutWriter()

// runCmd executes the full attribution pipeline for one date window.
var runCmd = &cobra.Command{
	Use:   "run [repo-path]",
	Short: "Fetch, attribute and aggregate merged PRs for a date window.",
	Long: `Walk the requested date range one UTC day at a time, fetching merged PRs
from the GitHub API and computing their file changes from the local clone.

Each PR is attributed to projects via the repository's manifest layout and to
a team via the author roster. Daily per-project and per-team counters are
accumulated onto the configured store.

Without --start/--end the window continues from the previous run recorded in
the store, one day at a time.

Examples:
  # Analyze one week explicitly, no persistence
  prlens run ~/clones/widgets --owner acme --repo widgets \
    --project-groups groups.json --teams teams.json \
    --start 2025-11-01 --end 2025-11-08

  # Continue from the last persisted run
  prlens run ~/clones/widgets --owner acme --repo widgets \
    --project-groups groups.json --teams teams.json --db-backend sqlite

  # Export the attributed PRs of the window as CSV
  prlens run ~/clones/widgets --owner acme --repo widgets \
    --project-groups groups.json --teams teams.json \
    --start 2025-11-01 --end 2025-11-02 --output csv --output-file pulls.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return executeRun(rootCtx)
	},
}

// executeRun wires the pipeline components together and drives one run.
func executeRun(ctx context.Context) error {
	started := time.Now()

	st, err := store.NewStore(cfg.DBBackend, cfg.DBConnect)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	start, end, err := resolveWindow(st)
	if err != nil {
		return err
	}
	fmt.Printf("🚀 Analyzing %s/%s from %s to %s\n",
		cfg.Owner, cfg.Repo, start.Format(time.DateOnly), end.Format(time.DateOnly))

	source, err := ghsource.New(cfg.GitHubToken, cfg.Owner, cfg.Repo)
	if err != nil {
		return err
	}
	gov := ghsource.NewGovernor(source, cfg.PausePeriod, nil)
	source.SetGovernor(gov)

	classifier := classify.New(cfg.RepoPath, cfg.ProjectGroups)
	if err := classifier.Discover(cfg.ManifestGlob); err != nil {
		return fmt.Errorf("project discovery failed: %w", err)
	}

	engine := pipeline.NewEngine(contract.NewLocalGitClient(), classifier, cfg.Teams, cfg.RepoPath)
	scheduler := pipeline.NewScheduler(source, engine, gov, cfg.BaseBranch)

	attributed, summary, err := scheduler.Run(ctx, start, end)
	if err != nil {
		return err
	}

	deltas := stats.Aggregate(attributed, engine.GroupForProject)

	run := schema.AnalysisRun{
		Owner:      cfg.Owner,
		Repo:       cfg.Repo,
		StartDate:  start,
		EndDate:    end,
		BaseBranch: cfg.BaseBranch,
		RunDate:    time.Now().UTC(),
		PRCount:    len(attributed),
	}
	runID, err := st.ExportRun(run, attributed, deltas)
	if err != nil {
		return fmt.Errorf("failed to persist run: %w", err)
	}
	if runID > 0 {
		fmt.Printf("💾 Persisted run %d to %s store\n", runID, cfg.DBBackend)
	}

	// Without a store the stats have nowhere to accumulate, so render them
	// directly: the per-project table plus the team matrix with every known
	// group and team (including Unassigned) present even at zero.
	if cfg.DBBackend == schema.NoneBackend {
		sheetCfg := *cfg
		sheetCfg.OutputFile = "" // --output-file is reserved for the PR listing
		if err := out.PrintProjectStats(stats.ProjectRecords(deltas), &sheetCfg); err != nil {
			return err
		}
		if err := out.PrintTeamMatrix(stats.TeamRecords(deltas),
			classifier.AllGroups(), schema.AllTeamNames(cfg.Teams), &sheetCfg); err != nil {
			return err
		}
	}

	return out.PrintRunResults(attributed, summary, cfg, time.Since(started))
}

// resolveWindow picks the date window for this run. Explicit dates win;
// otherwise the window continues one day past the previous persisted run,
// starting from a fixed default on an empty store.
func resolveWindow(st contract.RunStore) (time.Time, time.Time, error) {
	if !cfg.StartDate.IsZero() {
		return cfg.StartDate, cfg.EndDate, nil
	}

	last, err := st.LatestRun()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if last == nil {
		start, err := time.ParseInLocation(contract.DateFormat, contract.DefaultFirstRunStart, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return start, start.AddDate(0, 0, 1), nil
	}

	start := last.EndDate.UTC()
	return start, start.AddDate(0, 0, 1), nil
}
