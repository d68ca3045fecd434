package outwriter

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/prlens/internal/contract"
	"github.com/huangsam/prlens/internal/parquet"
	"github.com/huangsam/prlens/schema"
)

// PrintTeamMatrix outputs PR counts pivoted into a project-group-by-team
// matrix, summed over all days. Text renders a table; CSV renders the same
// spreadsheet shape. seedGroups and seedTeams pre-populate the axes so that
// groups and teams without any PRs still show up as zero rows and columns;
// both may be nil to derive the axes from the records alone.
func (ow *OutWriter) PrintTeamMatrix(records []schema.DailyTeamProjectStatsRecord, seedGroups, seedTeams []string, cfg *contract.Config) error {
	groups, teams, counts := pivotTeamMatrix(records, seedGroups, seedTeams)

	switch cfg.Output {
	case schema.CSVOut:
		err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForTeamMatrix(w, groups, teams, counts)
		}, "Wrote CSV")
		if err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		// The matrix is a presentation shape; Parquet gets the raw rows.
		path := cfg.OutputFile
		if path == "" {
			path = "prlens_daily_team_project_stats.parquet"
		}
		if err := parquet.WriteDailyTeamProjectStatsParquet(parquet.FromDailyTeamProjectStats(records), path); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", path)
	default:
		if err := printTeamMatrixTable(groups, teams, counts, cfg); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
	}
	return nil
}

// pivotTeamMatrix folds daily rows into group-by-team totals with sorted axes.
func pivotTeamMatrix(records []schema.DailyTeamProjectStatsRecord, seedGroups, seedTeams []string) ([]string, []string, map[string]map[string]int) {
	counts := make(map[string]map[string]int)
	teamSet := make(map[string]bool)

	for _, group := range seedGroups {
		counts[group] = make(map[string]int)
	}
	for _, team := range seedTeams {
		teamSet[team] = true
	}

	for _, r := range records {
		if counts[r.ProjectGroup] == nil {
			counts[r.ProjectGroup] = make(map[string]int)
		}
		counts[r.ProjectGroup][r.TeamName] += r.PRCount
		teamSet[r.TeamName] = true
	}

	groups := make([]string, 0, len(counts))
	for group := range counts {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	teams := make([]string, 0, len(teamSet))
	for team := range teamSet {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	return groups, teams, counts
}

// printTeamMatrixTable renders the matrix as a table.
func printTeamMatrixTable(groups []string, teams []string, counts map[string]map[string]int, cfg *contract.Config) error {
	printHeader("PRs by project group and team", cfg.UseColors)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header(append([]string{"Group"}, teams...))
	table.Configure(func(tableCfg *tablewriter.Config) {
		tableCfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, group := range groups {
		row := []string{group}
		for _, team := range teams {
			row = append(row, strconv.Itoa(counts[group][team]))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
