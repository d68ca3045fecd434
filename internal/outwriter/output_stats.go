package outwriter

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/prlens/internal/contract"
	"github.com/huangsam/prlens/internal/parquet"
	"github.com/huangsam/prlens/schema"
)

// PrintProjectStats outputs the accumulated daily project counters,
// dispatching based on the output format configured.
func (ow *OutWriter) PrintProjectStats(records []schema.DailyProjectStatsRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.CSVOut:
		if err := printCSVResultsForProjectStats(records, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		path := cfg.OutputFile
		if path == "" {
			path = "prlens_daily_project_stats.parquet"
		}
		if err := parquet.WriteDailyProjectStatsParquet(parquet.FromDailyProjectStats(records), path); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", path)
	default:
		if err := printProjectStatsTable(records, cfg); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
	}
	return nil
}

// printCSVResultsForProjectStats handles opening the file and calling the CSV writer.
func printCSVResultsForProjectStats(records []schema.DailyProjectStatsRecord, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVResultsForProjectStats(w, records)
	}, "Wrote CSV")
}

// printProjectStatsTable prints daily project counters in tabular form with a
// churn distribution summary.
func printProjectStatsTable(records []schema.DailyProjectStatsRecord, cfg *contract.Config) error {
	printHeader("Daily project stats", cfg.UseColors)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Day", "Project", "Group", "PRs", "Lines", "Modified", "Added"})
	table.Configure(func(tableCfg *tablewriter.Config) {
		tableCfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range records {
		data = append(data, []string{
			string(r.Day),
			r.ProjectName,
			r.ProjectGroup,
			strconv.Itoa(r.PRCount),
			strconv.Itoa(r.TotalLinesChanged),
			strconv.Itoa(r.FilesModified),
			strconv.Itoa(r.FilesAdded),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	lines := make([]float64, 0, len(records))
	totalPRs := 0
	for _, r := range records {
		lines = append(lines, float64(r.TotalLinesChanged))
		totalPRs += r.PRCount
	}
	mean, median := 0.0, 0.0
	if len(lines) > 0 {
		mean, _ = stats.Mean(lines)
		median, _ = stats.Median(lines)
	}
	fmt.Printf("Showing %d daily buckets (total PRs: %d, lines changed per bucket: mean %.1f, median %.1f)\n",
		len(records), totalPRs, mean, median)
	return nil
}
