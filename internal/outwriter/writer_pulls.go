package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/prlens/schema"
)

// writeCSVResultsForPulls writes the attributed PR data to a CSV stream.
// One row per file keeps the sheet joinable against the stats exports.
func writeCSVResultsForPulls(w io.Writer, pulls []schema.AttributedPullRequest) error {
	header := []string{
		"pr_number",
		"title",
		"author",
		"team",
		"merged_at",
		"merge_commit_sha",
		"file_name",
		"project_name",
		"status",
		"additions",
		"deletions",
		"changes",
	}

	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, pr := range pulls {
			base := []string{
				strconv.Itoa(pr.Number),
				pr.Title,
				pr.Author,
				pr.Team,
				pr.MergedAt.UTC().Format(time.RFC3339),
				pr.MergeCommitSHA,
			}

			if len(pr.Files) == 0 {
				// Degraded PR: keep the row, leave file columns empty
				row := append(append([]string{}, base...), "", "", "", "", "", "")
				if err := csvWriter.Write(row); err != nil {
					return err
				}
				continue
			}

			for _, f := range pr.Files {
				row := append(append([]string{}, base...),
					f.FileName,
					f.ProjectName,
					string(f.Status),
					strconv.Itoa(f.Additions),
					strconv.Itoa(f.Deletions),
					strconv.Itoa(f.Changes),
				)
				if err := csvWriter.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
