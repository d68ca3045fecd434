package outwriter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/prlens/internal/contract"
	"github.com/huangsam/prlens/internal/parquet"
	"github.com/huangsam/prlens/schema"
)

// PrintRunResults outputs the attributed PRs of one run, dispatching based on
// the output format configured, then prints the run summary.
func (ow *OutWriter) PrintRunResults(pulls []schema.AttributedPullRequest, summary *schema.RunSummary, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.CSVOut:
		if err := printCSVResultsForPulls(pulls, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		path := cfg.OutputFile
		if path == "" {
			path = "prlens_pull_requests.parquet"
		}
		if err := parquet.WritePullRequestsParquet(parquet.FromAttributedPulls(pulls), path); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", path)
	default:
		// Default to human-readable table
		if err := printPullTable(pulls, cfg); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
	}

	printRunSummary(pulls, summary, cfg, duration)
	return nil
}

// printCSVResultsForPulls handles opening the file and calling the CSV writer.
func printCSVResultsForPulls(pulls []schema.AttributedPullRequest, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVResultsForPulls(w, pulls)
	}, "Wrote CSV")
}

// printPullTable prints the attributed PRs in tabular form.
func printPullTable(pulls []schema.AttributedPullRequest, cfg *contract.Config) error {
	printHeader("Attributed pull requests", cfg.UseColors)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"PR", "Title", "Author", "Team", "Merged", "Files", "Changes"})
	table.Configure(func(tableCfg *tablewriter.Config) {
		tableCfg.Row.Alignment.Global = tw.AlignRight
	})

	titleWidth := GetMaxTableTitleWidth(cfg)
	var data [][]string
	for _, pr := range pulls {
		data = append(data, []string{
			strconv.Itoa(pr.Number),
			contract.TruncateText(pr.Title, titleWidth),
			pr.Author,
			pr.Team,
			pr.MergedAt.UTC().Format(time.DateOnly),
			strconv.Itoa(len(pr.Files)),
			strconv.Itoa(pr.TotalChanges()),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// printRunSummary prints aggregate numbers for the run, including mean and
// median per-PR churn.
func printRunSummary(pulls []schema.AttributedPullRequest, summary *schema.RunSummary, cfg *contract.Config, duration time.Duration) {
	changes := make([]float64, 0, len(pulls))
	for _, pr := range pulls {
		changes = append(changes, float64(pr.TotalChanges()))
	}

	mean, median := 0.0, 0.0
	if len(changes) > 0 {
		mean, _ = stats.Mean(changes)
		median, _ = stats.Median(changes)
	}

	fmt.Printf("Attributed %d PRs across %d windows (%d rollups skipped, %d without diffs)\n",
		summary.PullCount, summary.Windows, summary.RollupCount, summary.DegradedPRs)
	fmt.Printf("Lines changed per PR: mean %.1f, median %.1f\n", mean, median)
	fmt.Printf("Run completed in %v against %s/%s. Store backend: %s\n",
		duration, cfg.Owner, cfg.Repo, cfg.DBBackend)
}
