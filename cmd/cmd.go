// Package cmd defines the command-line interface for prlens.
package cmd

import (
	"github.com/huangsam/prlens/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeRunsCmd)
	storeCmd.AddCommand(storeStatsCmd)
	storeCmd.AddCommand(storeMatrixCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("owner", "o", "", "GitHub owner or organization of the repository")
	rootCmd.PersistentFlags().StringP("repo", "r", "", "GitHub repository name")
	rootCmd.PersistentFlags().String("base-branch", contract.DefaultBaseBranch, "Branch that merged PRs target")
	rootCmd.PersistentFlags().String("start", "", "Window start date (YYYY-MM-DD, UTC)")
	rootCmd.PersistentFlags().String("end", "", "Window end date (YYYY-MM-DD, UTC, exclusive)")
	rootCmd.PersistentFlags().String("github-token", "", "GitHub API token (falls back to GITHUB_TOKEN)")
	rootCmd.PersistentFlags().String("manifest-glob", contract.DefaultManifestGlob, "Glob matching project-manifest file names")
	rootCmd.PersistentFlags().String("project-groups", "", "Path to the project groups JSON file")
	rootCmd.PersistentFlags().String("teams", "", "Path to the team roster JSON file")
	rootCmd.PersistentFlags().String("db-backend", "", "Store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("db-connect", "", "Database connection string for mysql/postgresql")
	rootCmd.PersistentFlags().String("output", "text", "Output format: text or csv or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored headers in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("pause-minutes", 0, "Minutes to sleep between rate-limit polls (0 = default)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Migration target version (-1 = latest, 0 = rollback all)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding migrate flags", err)
	}
}
