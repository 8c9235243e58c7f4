package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vvka-141/questload/internal/logging"
	"github.com/vvka-141/questload/internal/services"
	"github.com/vvka-141/questload/internal/ui"
	"github.com/vvka-141/questload/pkg/questload"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Report Japanese name coverage of the quest table",
	Long: `Verify reads the quest table back and reports how many rows carry a
Japanese name, which keys are still untranslated and how many keys are
shared by more than one row.

Exits with code 0 even when coverage is incomplete.

Examples:
  questload verify -d gamedata
  questload verify --driver sqlite --sqlite-path quests.db`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

type verifyFlagValues struct {
	conn  connectionFlags
	store storeFlags
	limit int
}

var verifyFlags verifyFlagValues

func init() {
	rootCmd.AddCommand(verifyCmd)

	addConnectionFlags(verifyCmd, &verifyFlags.conn)
	addStoreFlags(verifyCmd, &verifyFlags.store)
	verifyCmd.Flags().IntVar(&verifyFlags.limit, "limit", 20,
		"Maximum number of untranslated keys to list (0 lists all)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)

	projectCfg, err := loadProjectConfig(cmd)
	if err != nil {
		return err
	}
	table, err := resolveTable(verifyFlags.store, projectCfg)
	if err != nil {
		return err
	}
	openStore, err := buildStoreFactory(verifyFlags.conn, verifyFlags.store, projectCfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := services.NewImportService(openStore, ui.NewAutoApprover(nil), logger)
	coverage, err := svc.Verify(ctx, table)
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	printCoverage(cmd.OutOrStdout(), coverage, verifyFlags.limit)
	return nil
}

func printCoverage(out io.Writer, c *questload.Coverage, limit int) {
	percent := 0.0
	if c.Total > 0 {
		percent = float64(c.Translated) * 100 / float64(c.Total)
	}
	fmt.Fprintf(out, "Table %s: %d quests, %d with Japanese names (%.1f%%)\n",
		c.TableName, c.Total, c.Translated, percent)
	fmt.Fprintf(out, "Keys shared by more than one quest: %d\n", c.DuplicateKeys)

	if len(c.Untranslated) == 0 {
		return
	}
	fmt.Fprintf(out, "Untranslated keys: %d\n", len(c.Untranslated))
	shown := c.Untranslated
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, key := range shown {
		fmt.Fprintf(out, "  %s\n", key)
	}
	if rest := len(c.Untranslated) - len(shown); rest > 0 {
		fmt.Fprintf(out, "  ... and %d more\n", rest)
	}
}
