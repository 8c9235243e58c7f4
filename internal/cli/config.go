package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vvka-141/questload/internal/config"
	"github.com/vvka-141/questload/pkg/questload"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage questload.yaml",
}

var configInitCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a questload.yaml holding every default",
	Long: `Init writes questload.yaml with the built-in defaults filled in, ready to
be edited. An existing file is left alone unless --force is given.

Examples:
  # Create config in current directory
  questload config init

  # Replace the config of another project
  questload config init ./game-data --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configInitForce bool

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().BoolVar(&configInitForce, "force", false,
		"Overwrite an existing questload.yaml")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	info, err := os.Stat(targetDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory: %w", targetDir, questload.ErrInvalidConfig)
	}

	path := filepath.Join(targetDir, config.ConfigFileName)
	if _, err := os.Stat(path); err == nil && !configInitForce {
		return fmt.Errorf("%s already exists (use --force to overwrite): %w", path, questload.ErrInvalidConfig)
	}

	if err := config.Save(path, config.Default()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	return nil
}
