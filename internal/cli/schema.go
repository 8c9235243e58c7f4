package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/questload/internal/config"
	"github.com/vvka-141/questload/internal/store"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the CREATE TABLE statement used by import",
	Long: `Schema prints the DDL that import runs after dropping the quest table.

Examples:
  questload schema
  questload schema --driver sqlite --table quest_staging`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

var schemaFlags storeFlags

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().StringVar(&schemaFlags.driver, "driver", "",
		"SQL dialect: postgres|sqlite (default: postgres, or store.driver in questload.yaml)")
	schemaCmd.Flags().StringVar(&schemaFlags.table, "table", "",
		"Table name (default: Quest)")
}

func runSchema(cmd *cobra.Command, args []string) error {
	projectCfg, err := loadProjectConfig(cmd)
	if err != nil {
		return err
	}
	driver, err := resolveDriver(schemaFlags, projectCfg)
	if err != nil {
		return err
	}
	table, err := resolveTable(schemaFlags, projectCfg)
	if err != nil {
		return err
	}

	dialect := store.DialectPostgres
	if driver == config.DriverSQLite {
		dialect = store.DialectSQLite
	}
	fmt.Fprintln(cmd.OutOrStdout(), store.Schema(dialect, table))
	return nil
}
