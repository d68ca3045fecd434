package contract

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Color variables for console output.
var (
	HeaderColor = color.New(color.FgCyan, color.Bold) // section headers in summary tables
	WarnColor   = color.New(color.FgYellow)           // warnings and degraded attribution
	ErrorColor  = color.New(color.FgRed, color.Bold)  // fatal conditions
)

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetDBFilePath returns the path to the SQLite DB file used when no explicit
// connection string is configured.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".prlens.db"
	}
	return fmt.Sprintf("%s/.prlens.db", homeDir)
}

// TruncateText shortens text to maxWidth runes, marking the cut with an
// ellipsis. Widths below 4 return the text unchanged.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if maxWidth < 4 || len(runes) <= maxWidth {
		return text
	}
	return string(runes[:maxWidth-3]) + "..."
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. An empty path selects stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}
