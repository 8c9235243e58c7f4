package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/questload/internal/config"
	"github.com/vvka-141/questload/internal/logging"
	"github.com/vvka-141/questload/internal/store"
	"github.com/vvka-141/questload/internal/testing/fixtures"
	"github.com/vvka-141/questload/pkg/questload"
)

// resetFlags clears flag values and Changed markers left by earlier runs.
func resetFlags() {
	importFlags = newImportFlags()
	verifyFlags = verifyFlagValues{limit: 20}
	schemaFlags = storeFlags{}
	configInitForce = false

	var walk func(cmd *cobra.Command)
	walk = func(cmd *cobra.Command) {
		cmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
		for _, c := range cmd.Commands() {
			walk(c)
		}
	}
	_ = rootCmd.PersistentFlags().Set("verbose", "false")
	_ = rootCmd.PersistentFlags().Set("config", "")
	_ = rootCmd.PersistentFlags().Set("env-file", "")
	walk(rootCmd)
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("QUESTLOAD_NON_INTERACTIVE", "1")
	resetFlags()
	t.Cleanup(resetFlags)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeQuestSheets(t *testing.T, dir string) {
	t.Helper()
	fixtures.WriteSheets(t, dir,
		fixtures.Sheet(
			fixtures.Row{Name: "Slay the Dragon", Key: "tbl_001", Expansion: "2"},
			fixtures.Row{Name: "Gather Herbs", Key: "tbl_002"},
		),
		fixtures.Sheet(
			fixtures.Row{Name: "ドラゴンを倒す", Key: "tbl_001", Expansion: "2"},
			fixtures.Row{Name: "", Key: "tbl_002"},
		),
	)
}

func readQuests(t *testing.T, dbPath, table string) []questload.QuestRecord {
	t.Helper()
	ctx := context.Background()
	s, err := store.OpenSQLite(ctx, dbPath, table, logging.NewNullLogger())
	require.NoError(t, err)
	defer s.Close()

	quests, err := s.Quests(ctx)
	require.NoError(t, err)
	return quests
}

func TestImportCommand_SQLite(t *testing.T) {
	dir := t.TempDir()
	writeQuestSheets(t, dir)
	dbPath := filepath.Join(dir, "quests.db")

	out, err := executeCommand(t, "import", "--driver", "sqlite", "--sqlite-path", dbPath, "--base-dir", dir, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "table=Quest")
	assert.Contains(t, out, "inserted=2")
	assert.Contains(t, out, "applied=1")
	assert.Contains(t, out, "skipped=1")

	quests := readQuests(t, dbPath, "Quest")
	require.Len(t, quests, 2)
	require.NotNil(t, quests[0].NameJP)
	assert.Equal(t, "ドラゴンを倒す", *quests[0].NameJP)
	assert.Nil(t, quests[1].NameJP)
	assert.Nil(t, quests[1].Expansion)

	out, err = executeCommand(t, "verify", "--driver", "sqlite", "--sqlite-path", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Table Quest: 2 quests, 1 with Japanese names (50.0%)")
	assert.Contains(t, out, "  tbl_002\n")
}

func TestImportCommand_ProjectConfig(t *testing.T) {
	dir := t.TempDir()
	writeQuestSheets(t, dir)
	dbPath := filepath.Join(dir, "from-yaml.db")

	cfgPath := filepath.Join(dir, config.ConfigFileName)
	fixtures.WriteFile(t, cfgPath, "store:\n  driver: sqlite\n  sqlite_path: "+dbPath+
		"\ntable: quest_yaml\ncsv:\n  base_dir: "+dir+"\n")

	_, err := executeCommand(t, "import", "--config", cfgPath)
	require.NoError(t, err)

	assert.Len(t, readQuests(t, dbPath, "quest_yaml"), 2)
}

func TestImportCommand_DryRunLeavesDatabaseAlone(t *testing.T) {
	dir := t.TempDir()
	writeQuestSheets(t, dir)
	dbPath := filepath.Join(dir, "quests.db")

	out, err := executeCommand(t, "import", "--driver", "sqlite", "--sqlite-path", dbPath, "--base-dir", dir, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "dry_run=true")
	assert.Contains(t, out, "applied=1")

	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr), "dry run must not create the database")
}

func TestImportCommand_MissingSources(t *testing.T) {
	dir := t.TempDir()

	_, err := executeCommand(t, "import", "--driver", "sqlite", "--sqlite-path", filepath.Join(dir, "q.db"), "--base-dir", dir)
	require.Error(t, err)
	assert.Equal(t, questload.ExitSourceMissing, questload.ExitCodeForError(err))
}

func TestImportCommand_MalformedEnglish(t *testing.T) {
	dir := t.TempDir()
	fixtures.WriteSheets(t, dir,
		fixtures.Sheet(fixtures.Row{Name: "Broken", Key: "tbl_001", Expansion: "two"}),
		fixtures.Sheet(),
	)

	_, err := executeCommand(t, "import", "--driver", "sqlite", "--sqlite-path", filepath.Join(dir, "q.db"), "--base-dir", dir)
	require.Error(t, err)
	assert.Equal(t, questload.ExitMalformedSource, questload.ExitCodeForError(err))
}

func TestImportCommand_ExpansionOutOfRange(t *testing.T) {
	dir := t.TempDir()
	fixtures.WriteSheets(t, dir,
		fixtures.Sheet(
			fixtures.Row{Name: "Slay the Dragon", Key: "tbl_001", Expansion: "2"},
			fixtures.Row{Name: "Too Far", Key: "tbl_002", Expansion: "99999999999"},
		),
		fixtures.Sheet(),
	)

	_, err := executeCommand(t, "import", "--driver", "sqlite", "--sqlite-path", filepath.Join(dir, "q.db"), "--base-dir", dir)
	require.Error(t, err)
	assert.Equal(t, questload.ExitMalformedSource, questload.ExitCodeForError(err))
	assert.Contains(t, err.Error(), "out of range")
}

func TestImportCommand_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"positional argument", []string{"import", "extra"}},
		{"unknown flag", []string{"import", "--nope"}},
		{"yes with interactive", []string{"import", "--yes", "--interactive", "--dry-run"}},
		{"bad skip rows", []string{"import", "--skip-rows", "two"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, questload.ExitUsageError, questload.ExitCodeForError(err), err.Error())
		})
	}
}

func TestImportCommand_InteractiveNeedsTerminal(t *testing.T) {
	dir := t.TempDir()
	writeQuestSheets(t, dir)

	_, err := executeCommand(t, "import", "--driver", "sqlite", "--sqlite-path", filepath.Join(dir, "q.db"),
		"--base-dir", dir, "--interactive")
	require.Error(t, err)
	assert.Equal(t, questload.ExitConfigError, questload.ExitCodeForError(err))
}

func TestImportCommand_InvalidTable(t *testing.T) {
	_, err := executeCommand(t, "import", "--driver", "sqlite", "--table", "quest; drop", "--dry-run")
	require.Error(t, err)
	assert.Equal(t, questload.ExitConfigError, questload.ExitCodeForError(err))
}

func TestSchemaCommand(t *testing.T) {
	out, err := executeCommand(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE Quest (")
	assert.Contains(t, out, "id SERIAL PRIMARY KEY")
	assert.Contains(t, out, "quest_name_jp VARCHAR(255)")

	out, err = executeCommand(t, "schema", "--driver", "sqlite", "--table", "quest_staging")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE quest_staging (")
	assert.Contains(t, out, "AUTOINCREMENT")
}

func TestSchemaCommand_UnknownDriver(t *testing.T) {
	_, err := executeCommand(t, "schema", "--driver", "oracle")
	require.Error(t, err)
	assert.ErrorIs(t, err, questload.ErrInvalidConfig)
}

func TestConfigInitCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := executeCommand(t, "config", "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, config.ConfigFileName)

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, questload.DefaultTableName, cfg.TableName())
	assert.Equal(t, questload.DefaultSheetLayout(), cfg.Layout())

	_, err = executeCommand(t, "config", "init", dir)
	require.Error(t, err)
	assert.Equal(t, questload.ExitConfigError, questload.ExitCodeForError(err))

	_, err = executeCommand(t, "config", "init", dir, "--force")
	assert.NoError(t, err)
}

func TestConfigInitCommand_MissingDirectory(t *testing.T) {
	_, err := executeCommand(t, "config", "init", filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, questload.ErrInvalidConfig)
}

func TestEnvFileFlag(t *testing.T) {
	const key = "QUESTLOAD_TEST_ENV_MARKER"
	path := filepath.Join(t.TempDir(), "test.env")
	fixtures.WriteFile(t, path, key+"=loaded\n")
	t.Cleanup(func() { os.Unsetenv(key) })

	_, err := executeCommand(t, "schema", "--env-file", path)
	require.NoError(t, err)
	assert.Equal(t, "loaded", os.Getenv(key))

	_, err = executeCommand(t, "schema", "--env-file", filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestConfigFlag_MissingFile(t *testing.T) {
	_, err := executeCommand(t, "schema", "--config", filepath.Join(t.TempDir(), "questload.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfigNotFound)
}
