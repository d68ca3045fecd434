package cmd

import (
	"fmt"
	"sort"

	"github.com/huangsam/prlens/internal/contract"
	"github.com/huangsam/prlens/internal/parquet"
	"github.com/huangsam/prlens/internal/store"
	"github.com/huangsam/prlens/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeSetup loads the minimal configuration needed for store operations.
// Store subcommands skip the full sharedSetup: they need no repository clone,
// GitHub token, or team roster, only the backend connection and output options.
func storeSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("db-backend"))
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	connStr := viper.GetString("db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}
	if backend == schema.NoneBackend {
		return fmt.Errorf("store commands need a real backend, got %s", backend)
	}

	cfg.DBBackend = backend
	cfg.DBConnect = connStr
	cfg.Output = schema.OutputMode(viper.GetString("output"))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	cfg.OutputFile = viper.GetString("output-file")
	cfg.Width = viper.GetInt("width")
	cfg.UseColors = parseColorFlag(viper.GetString("color"))

	return nil
}

// parseColorFlag interprets yes/no style values, defaulting to colored output.
func parseColorFlag(value string) bool {
	switch value {
	case "no", "false", "0", "off":
		return false
	default:
		return true
	}
}

// openStore connects to the configured backend.
func openStore() (contract.RunStore, error) {
	return store.NewStore(cfg.DBBackend, cfg.DBConnect)
}

// storeCmd groups the persistence subcommands.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect and manage the persisted run history",
	Long: `Work with the database that accumulates run history and daily stats.

Supported backends: SQLite (default), MySQL, PostgreSQL

Subcommands:
  status  - Show connection info, run count and table sizes
  clear   - Remove all persisted run data
  runs    - List persisted runs
  stats   - Show accumulated daily per-project stats
  matrix  - Show the team-by-project-group contribution matrix
  export  - Write accumulated stats to Parquet files
  migrate - Apply or roll back schema migrations

Examples:
  # Check store status
  prlens store status

  # Dump the daily project stats as CSV
  prlens store stats --output csv --output-file stats.csv

  # Use a PostgreSQL store (set connection string via env variable)
  PRLENS_DB_BACKEND=postgresql PRLENS_DB_CONNECT="..." prlens store matrix`,
}

// storeStatusCmd shows the store status.
var storeStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display store statistics and connection details",
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		st, err := openStore()
		if err != nil {
			contract.LogFatal("Failed to open store", err)
		}
		defer func() { _ = st.Close() }()

		status, err := st.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		printStoreStatus(status)
	},
}

// printStoreStatus renders the status block in the same shape for all backends.
func printStoreStatus(status schema.StoreStatus) {
	fmt.Printf("Backend:    %s\n", status.Backend)
	fmt.Printf("Connected:  %t\n", status.Connected)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	if status.LastRun != nil {
		fmt.Printf("Last run:   %s\n", status.LastRun.Format("2006-01-02 15:04:05 UTC"))
	} else {
		fmt.Printf("Last run:   never\n")
	}
	fmt.Println("Table sizes:")
	names := make([]string, 0, len(status.TableSizes))
	for name := range status.TableSizes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-36s %d\n", name, status.TableSizes[name])
	}
}

// storeClearCmd removes all persisted run data.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all persisted run data",
	Long: `Delete all persisted run history and accumulated stats.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the tables

Examples:
  # Clear the SQLite store (default)
  prlens store clear

  # Clear a MySQL store (set connection string via env variable)
  PRLENS_DB_BACKEND=mysql PRLENS_DB_CONNECT="..." prlens store clear`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		dbPath := cfg.DBConnect
		if dbPath == "" {
			dbPath = contract.GetDBFilePath()
		}
		if err := store.Clear(cfg.DBBackend, dbPath, cfg.DBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// storeRunsCmd lists the persisted run history.
var storeRunsCmd = &cobra.Command{
	Use:     "runs",
	Short:   "List persisted runs",
	Long:    `Print one line per persisted run with its window, base branch and PR count, oldest first.`,
	PreRunE: storeSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		runs, err := st.AllRuns()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}
		for _, run := range runs {
			fmt.Printf("%4d  %s/%s  %s -> %s  base=%s  prs=%d  at=%s\n",
				run.ID, run.Owner, run.Repo,
				run.StartDate.Format("2006-01-02"), run.EndDate.Format("2006-01-02"),
				run.BaseBranch, run.PRCount, run.RunDate.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

// storeStatsCmd prints the accumulated daily per-project stats.
var storeStatsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Show accumulated daily per-project stats",
	Long:    `Print one row per (day, project) bucket with its accumulated PR count, line churn and file counters. Supports text, csv and parquet output.`,
	PreRunE: storeSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		records, err := st.DailyProjectStats()
		if err != nil {
			return err
		}
		return out.PrintProjectStats(records, cfg)
	},
}

// storeMatrixCmd prints the team-by-project-group contribution matrix.
var storeMatrixCmd = &cobra.Command{
	Use:     "matrix",
	Short:   "Show the team-by-project-group contribution matrix",
	Long:    `Pivot the accumulated team stats into a matrix of PR counts with one row per project group and one column per team, summed over all days.`,
	PreRunE: storeSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		records, err := st.DailyTeamProjectStats()
		if err != nil {
			return err
		}
		return out.PrintTeamMatrix(records, nil, nil, cfg)
	},
}

// storeExportCmd writes the accumulated stats tables to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export accumulated stats to Parquet files",
	Long: `Write the accumulated daily stats to Parquet files in the current
directory, suitable for loading into analytics tooling:

  prlens_daily_project_stats.parquet
  prlens_daily_team_project_stats.parquet`,
	PreRunE: storeSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		projectStats, err := st.DailyProjectStats()
		if err != nil {
			return err
		}
		teamStats, err := st.DailyTeamProjectStats()
		if err != nil {
			return err
		}

		projectPath := "prlens_daily_project_stats.parquet"
		if err := parquet.WriteDailyProjectStatsParquet(parquet.FromDailyProjectStats(projectStats), projectPath); err != nil {
			return err
		}
		fmt.Printf("💾 Wrote %d project stat rows to %s\n", len(projectStats), projectPath)

		teamPath := "prlens_daily_team_project_stats.parquet"
		if err := parquet.WriteDailyTeamProjectStatsParquet(parquet.FromDailyTeamProjectStats(teamStats), teamPath); err != nil {
			return err
		}
		fmt.Printf("💾 Wrote %d team stat rows to %s\n", len(teamStats), teamPath)

		latest, err := st.LatestRun()
		if err != nil {
			return err
		}
		if latest == nil {
			return nil
		}
		pulls, err := st.PullRequestsForRun(latest.ID)
		if err != nil {
			return err
		}
		files, err := st.FilesForRun(latest.ID)
		if err != nil {
			return err
		}
		numberByPullID := make(map[int64]int, len(pulls))
		for _, p := range pulls {
			numberByPullID[p.ID] = p.PRNumber
		}
		filesPath := "prlens_pr_files.parquet"
		if err := parquet.WriteFilesParquet(parquet.FromFileRecords(files, numberByPullID), filesPath); err != nil {
			return err
		}
		fmt.Printf("💾 Wrote %d file rows of run %d to %s\n", len(files), latest.ID, filesPath)
		return nil
	},
}

// storeMigrateCmd applies schema migrations to the store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back store schema migrations",
	Long: `Run the embedded schema migrations against the configured backend.

Examples:
  # Migrate to the latest version
  prlens store migrate

  # Roll back everything
  prlens store migrate --target-version 0

  # Migrate to a specific version
  prlens store migrate --target-version 1`,
	PreRunE: storeSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		targetVersion := viper.GetInt("target-version")
		if err := store.Migrate(cfg.DBBackend, cfg.DBConnect, targetVersion); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("✅ Migration complete")
		return nil
	},
}
