package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/huangsam/prlens/schema"
)

// writeCSVResultsForProjectStats writes daily project counters to a CSV stream.
func writeCSVResultsForProjectStats(w io.Writer, records []schema.DailyProjectStatsRecord) error {
	header := []string{
		"day",
		"project_name",
		"project_group",
		"pr_count",
		"total_lines_changed",
		"files_modified",
		"files_added",
	}

	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, r := range records {
			row := []string{
				string(r.Day),
				r.ProjectName,
				r.ProjectGroup,
				strconv.Itoa(r.PRCount),
				strconv.Itoa(r.TotalLinesChanged),
				strconv.Itoa(r.FilesModified),
				strconv.Itoa(r.FilesAdded),
			}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeCSVResultsForTeamMatrix writes the group-by-team PR count matrix as a
// spreadsheet-shaped CSV: one row per project group, one column per team.
func writeCSVResultsForTeamMatrix(w io.Writer, groups []string, teams []string, counts map[string]map[string]int) error {
	header := append([]string{"project_group"}, teams...)

	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, group := range groups {
			row := []string{group}
			for _, team := range teams {
				row = append(row, strconv.Itoa(counts[group][team]))
			}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
