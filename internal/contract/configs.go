package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/prlens/schema"
)

// Default values for configuration.
const (
	DefaultBaseBranch   = "main"
	DefaultManifestGlob = "*.csproj"

	// DefaultFirstRunStart is the window start used on the very first run
	// against an empty store, when no explicit dates are given.
	DefaultFirstRunStart = "2025-11-01"
)

// DateFormat is the accepted calendar-date representation for flags.
const DateFormat = "2006-01-02"

// Config holds the validated runtime configuration for a pipeline run.
type Config struct {
	RepoPath     string    // Absolute path to the local clone
	Owner        string    // Hosting owner/organization
	Repo         string    // Hosting repository name
	BaseBranch   string    // Branch PRs are merged into
	StartDate    time.Time // Start of the run window (UTC midnight); zero = derive from store
	EndDate      time.Time // End of the run window (UTC midnight, exclusive); zero = derive from store
	GitHubToken  string    // API token, sourced from env or flag
	ManifestGlob string    // Glob matching project-manifest file names

	ProjectGroups []string      // Group prefixes, sorted by descending length
	Teams         []schema.Team // Validated team roster

	DBBackend schema.DatabaseBackend
	DBConnect string // Please use env var as this is plaintext

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	PausePeriod time.Duration // Sleep interval for the rate-limit poll loop
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	Owner             string `mapstructure:"owner"`
	Repo              string `mapstructure:"repo"`
	BaseBranch        string `mapstructure:"base-branch"`
	Start             string `mapstructure:"start"`
	End               string `mapstructure:"end"`
	Token             string `mapstructure:"github-token"`
	ManifestGlob      string `mapstructure:"manifest-glob"`
	ProjectGroupsPath string `mapstructure:"project-groups"`
	TeamsPath         string `mapstructure:"teams"`
	DBBackend         string `mapstructure:"db-backend"`
	DBConnect         string `mapstructure:"db-connect"`
	Output            string `mapstructure:"output"`
	OutputFile        string `mapstructure:"output-file"`
	Width             int    `mapstructure:"width"`
	Color             string `mapstructure:"color"`
	PauseMinutes      int    `mapstructure:"pause-minutes"`
}

// ProcessAndValidate populates cfg from the raw input, running all parsing and
// validation. Any error here is a ConfigurationError: fatal at startup, before
// a partial run is attempted.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	repoPath, err := filepath.Abs(input.RepoPathStr)
	if err != nil {
		return fmt.Errorf("invalid repository path %q: %w", input.RepoPathStr, err)
	}
	if info, err := os.Stat(repoPath); err != nil || !info.IsDir() {
		return fmt.Errorf("repository path %q is not a directory", repoPath)
	}
	cfg.RepoPath = repoPath

	if input.Owner == "" || input.Repo == "" {
		return fmt.Errorf("--owner and --repo are required")
	}
	cfg.Owner = input.Owner
	cfg.Repo = input.Repo

	cfg.BaseBranch = input.BaseBranch
	if cfg.BaseBranch == "" {
		cfg.BaseBranch = DefaultBaseBranch
	}

	cfg.StartDate, cfg.EndDate, err = parseDateRange(input.Start, input.End)
	if err != nil {
		return err
	}

	cfg.GitHubToken = input.Token
	if cfg.GitHubToken == "" {
		cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}
	if cfg.GitHubToken == "" {
		return fmt.Errorf("a GitHub token is required (--github-token or GITHUB_TOKEN)")
	}

	cfg.ManifestGlob = input.ManifestGlob
	if cfg.ManifestGlob == "" {
		cfg.ManifestGlob = DefaultManifestGlob
	}

	if input.ProjectGroupsPath == "" {
		return fmt.Errorf("--project-groups is required")
	}
	if input.TeamsPath == "" {
		return fmt.Errorf("--teams is required")
	}
	if cfg.ProjectGroups, err = schema.LoadProjectGroups(input.ProjectGroupsPath); err != nil {
		return err
	}
	if cfg.Teams, err = schema.LoadTeams(input.TeamsPath); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(input.DBBackend)
	if input.DBBackend == "" {
		backend = schema.NoneBackend
	}
	if err := ValidateDatabaseConnectionString(backend, input.DBConnect); err != nil {
		return err
	}
	cfg.DBBackend = backend
	cfg.DBConnect = input.DBConnect

	// Sheet mode has no store to derive a window from, so dates are mandatory.
	if cfg.DBBackend == schema.NoneBackend && (cfg.StartDate.IsZero() || cfg.EndDate.IsZero()) {
		return fmt.Errorf("--start and --end are required without a database backend")
	}

	cfg.Output = schema.OutputMode(input.Output)
	if input.Output == "" {
		cfg.Output = schema.TextOut
	}
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.UseColors = parseBoolFlag(input.Color, true)

	cfg.PausePeriod = DefaultPausePeriod
	if input.PauseMinutes > 0 {
		cfg.PausePeriod = time.Duration(input.PauseMinutes) * time.Minute
	}

	return nil
}

// parseDateRange parses the start/end flags. Both empty is allowed (database
// mode derives the window from the last run); otherwise both must be present,
// calendar dates, UTC, and strictly ordered.
func parseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	if startStr == "" && endStr == "" {
		return time.Time{}, time.Time{}, nil
	}
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--start and --end must be provided together")
	}

	start, err := time.ParseInLocation(DateFormat, startStr, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --start date %q (want YYYY-MM-DD): %w", startStr, err)
	}
	end, err := time.ParseInLocation(DateFormat, endStr, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --end date %q (want YYYY-MM-DD): %w", endStr, err)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("--start %s must be before --end %s", startStr, endStr)
	}
	return start, end, nil
}

// ValidateDatabaseConnectionString performs basic validation of backend and
// connection string pairing.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("--db-connect is required for %s backend", backend)
		}
		return nil
	default:
		return fmt.Errorf("unsupported database backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}
}

// parseBoolFlag interprets yes/no style flag values with a default.
func parseBoolFlag(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "1", "on":
		return true
	case "no", "false", "0", "off":
		return false
	default:
		return fallback
	}
}
