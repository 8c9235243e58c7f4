package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/questload/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "questload",
	Short: "Import localized quest sheets into a relational table",
	Long: `questload imports the English and Japanese quest sheet exports into a
single Quest table.

Every run drops and recreates the table, inserts one row per English quest
and then fills in quest_name_jp from the Japanese sheet, matching rows on
the table_name key.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection failed
  12 - User denied the table drop
  13 - Insert or update failed
  14 - Source CSV not found
  15 - Dropping or creating the table failed
  16 - Malformed source CSV row`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFiles(cmd)
	},
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	// -h is the PostgreSQL host flag; help stays on --help only.
	rootCmd.PersistentFlags().Bool("help", false, "Help for questload")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().String("config", "",
		"Path to questload.yaml (default: ./questload.yaml when present)")
	rootCmd.PersistentFlags().String("env-file", "",
		"Load environment variables from this file in addition to ./.env")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

// loadEnvFiles loads ./.env when present, then --env-file. Variables already
// set in the process environment win.
func loadEnvFiles(cmd *cobra.Command) error {
	_ = godotenv.Load()

	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// loadProjectConfig reads --config, or questload.yaml in the working
// directory. A missing default file is not an error and yields nil.
func loadProjectConfig(cmd *cobra.Command) (*config.ProjectConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(".")
	if errors.Is(err, config.ErrConfigNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	return cfg, nil
}
