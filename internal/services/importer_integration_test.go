package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/questload/internal/logging"
	"github.com/vvka-141/questload/internal/store"
	testhelpers "github.com/vvka-141/questload/internal/testing"
	"github.com/vvka-141/questload/internal/testing/fixtures"
	"github.com/vvka-141/questload/pkg/questload"
)

// importEndToEnd runs the dragon scenario against a real store.
func importEndToEnd(t *testing.T, factory questload.StoreFactory, table string) {
	ctx := context.Background()
	eng, jp := writeDragonSheets(t)
	svc := NewImportService(factory, &testhelpers.ForceApprover{}, logging.NewNullLogger())

	cfg := testConfig(eng, jp)
	cfg.TableName = table
	report, err := svc.Import(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Inserted)
	assert.Equal(t, int64(2), report.Update.RowsAffected)

	s, err := factory(ctx, table)
	require.NoError(t, err)
	defer s.Close()

	quests, err := s.Quests(ctx)
	require.NoError(t, err)
	require.Len(t, quests, 3)

	assert.Equal(t, "Slay the Dragon", quests[0].NameEng)
	require.NotNil(t, quests[0].NameJP)
	assert.Equal(t, "ドラゴンを倒す", *quests[0].NameJP)
	require.NotNil(t, quests[0].Expansion)
	assert.Equal(t, 2, *quests[0].Expansion)
	assert.Equal(t, "tbl_001", quests[0].TableName)

	assert.Nil(t, quests[1].NameJP, "blank Japanese name must not be applied")
	require.NotNil(t, quests[2].NameJP, "duplicate keys all receive the update")
	assert.Equal(t, "ドラゴンを倒す", *quests[2].NameJP)

	// A second run starts from an empty table.
	_, err = svc.Import(ctx, cfg)
	require.NoError(t, err)
	quests, err = s.Quests(ctx)
	require.NoError(t, err)
	assert.Len(t, quests, 3)

	cov, err := svc.Verify(ctx, table)
	require.NoError(t, err)
	assert.Equal(t, 3, cov.Total)
	assert.Equal(t, 2, cov.Translated)
	assert.Equal(t, []string{"tbl_002"}, cov.Untranslated)
	assert.Equal(t, 1, cov.DuplicateKeys)
}

func TestImport_SQLiteEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quests.db")
	importEndToEnd(t, store.SQLiteFactory(path, nil), questload.DefaultTableName)
}

func TestImport_PostgresEndToEnd(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	pool := testhelpers.GetTestPool(t, connString)
	table := testhelpers.UniqueTableName(t, pool)

	factory := func(ctx context.Context, tableName string) (questload.QuestStore, error) {
		return store.NewPostgresStore(ctx, pool, tableName, nil)
	}
	importEndToEnd(t, factory, table)
}

func TestImport_SQLiteMalformedEnglishLeavesTableEmpty(t *testing.T) {
	ctx := context.Background()
	eng, jp := fixtures.WriteSheets(t, t.TempDir(),
		fixtures.Sheet(
			fixtures.Row{Name: "Slay the Dragon", Key: "tbl_001", Expansion: "2"},
			fixtures.Row{Name: "Broken", Key: "tbl_002", Expansion: "2.5"},
		),
		fixtures.Sheet(),
	)
	factory := store.SQLiteFactory(filepath.Join(t.TempDir(), "quests.db"), nil)
	svc := NewImportService(factory, &testhelpers.ForceApprover{}, logging.NewNullLogger())

	_, err := svc.Import(ctx, testConfig(eng, jp))
	require.ErrorIs(t, err, questload.ErrMalformedRow)

	cov, err := svc.Verify(ctx, questload.DefaultTableName)
	require.NoError(t, err)
	assert.Zero(t, cov.Total, "table exists and is empty")
}
