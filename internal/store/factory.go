package store

import (
	"context"

	"github.com/vvka-141/questload/pkg/questload"
)

// PostgresFactory returns a StoreFactory that connects with connector on
// every call. Each store owns its pool.
func PostgresFactory(connector questload.Connector, logger questload.Logger) questload.StoreFactory {
	return func(ctx context.Context, tableName string) (questload.QuestStore, error) {
		return OpenPostgres(ctx, connector, tableName, logger)
	}
}

// SQLiteFactory returns a StoreFactory for the database file at path.
func SQLiteFactory(path string, logger questload.Logger) questload.StoreFactory {
	return func(ctx context.Context, tableName string) (questload.QuestStore, error) {
		return OpenSQLite(ctx, path, tableName, logger)
	}
}
