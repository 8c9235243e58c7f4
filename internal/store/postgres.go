package store

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/questload/internal/logging"
	"github.com/vvka-141/questload/pkg/questload"
)

// PostgresStore is a QuestStore backed by one pooled PostgreSQL connection.
type PostgresStore struct {
	conn     *pgxpool.Conn
	pool     *pgxpool.Pool
	ownsPool bool
	closer   io.Closer
	stmts    statements
	table    string
	logger   questload.Logger
}

var _ questload.QuestStore = (*PostgresStore)(nil)

// NewPostgresStore acquires a connection from pool. Close releases the
// connection but leaves the pool open.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, table string, logger questload.Logger) (*PostgresStore, error) {
	stmts, err := newStatements(DialectPostgres, table)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w: %w", questload.ErrConnectionFailed, err)
	}

	return &PostgresStore{
		conn:   conn,
		pool:   pool,
		stmts:  stmts,
		table:  table,
		logger: logger,
	}, nil
}

// OpenPostgres connects with connector and returns a store that closes the
// pool on Close, and the connector too when it is an io.Closer.
func OpenPostgres(ctx context.Context, connector questload.Connector, table string, logger questload.Logger) (*PostgresStore, error) {
	if _, err := newStatements(DialectPostgres, table); err != nil {
		return nil, err
	}
	pool, err := connector.Connect(ctx)
	if err != nil {
		closeConnector(connector)
		return nil, err
	}
	s, err := NewPostgresStore(ctx, pool, table, logger)
	if err != nil {
		pool.Close()
		closeConnector(connector)
		return nil, err
	}
	s.ownsPool = true
	if c, ok := connector.(io.Closer); ok {
		s.closer = c
	}
	return s, nil
}

func closeConnector(connector questload.Connector) {
	if c, ok := connector.(io.Closer); ok {
		_ = c.Close()
	}
}

// RecreateTable drops and creates the quest table.
func (s *PostgresStore) RecreateTable(ctx context.Context) error {
	if _, err := s.conn.Exec(ctx, s.stmts.drop); err != nil {
		return fmt.Errorf("failed to drop table %s: %w: %w", s.table, questload.ErrSchemaFailed, err)
	}
	if _, err := s.conn.Exec(ctx, s.stmts.create); err != nil {
		return fmt.Errorf("failed to create table %s: %w: %w", s.table, questload.ErrSchemaFailed, err)
	}
	s.logger.Verbose("Recreated table %s", s.table)
	return nil
}

// InsertEnglish inserts all records in a single transaction.
func (s *PostgresStore) InsertEnglish(ctx context.Context, records []questload.QuestRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w: %w", questload.ErrExecutionFailed, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(s.stmts.insert, rec.NameEng, rec.Expansion, rec.TableName)
	}

	results := tx.SendBatch(ctx, batch)
	for _, rec := range records {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return 0, fmt.Errorf("failed to insert line %d (%s): %w: %w", rec.Line, rec.TableName, questload.ErrExecutionFailed, err)
		}
		s.logger.Verbose("Inserted %s | %s | %s", rec.NameEng, formatExpansion(rec.Expansion), rec.TableName)
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("failed to insert English quests: %w: %w", questload.ErrExecutionFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit English quests: %w: %w", questload.ErrExecutionFailed, err)
	}
	return len(records), nil
}

// ApplyJapaneseNames runs one UPDATE per entry in a single transaction.
func (s *PostgresStore) ApplyJapaneseNames(ctx context.Context, updates []questload.NameUpdate) (questload.UpdateResult, error) {
	var result questload.UpdateResult
	if len(updates) == 0 {
		return result, nil
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w: %w", questload.ErrExecutionFailed, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(s.stmts.update, u.NameJP, u.TableName)
	}

	results := tx.SendBatch(ctx, batch)
	for _, u := range updates {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return questload.UpdateResult{}, fmt.Errorf("failed to update line %d (%s): %w: %w", u.Line, u.TableName, questload.ErrExecutionFailed, err)
		}
		result.Add(tag.RowsAffected())
		s.logger.Verbose("Updated %s -> %s (%d rows)", u.TableName, u.NameJP, tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return questload.UpdateResult{}, fmt.Errorf("failed to apply Japanese names: %w: %w", questload.ErrExecutionFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return questload.UpdateResult{}, fmt.Errorf("failed to commit Japanese names: %w: %w", questload.ErrExecutionFailed, err)
	}
	return result, nil
}

// Quests returns every record ordered by id.
func (s *PostgresStore) Quests(ctx context.Context) ([]questload.QuestRecord, error) {
	rows, err := s.conn.Query(ctx, s.stmts.list)
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (questload.QuestRecord, error) {
		var (
			rec       questload.QuestRecord
			expansion *int32
		)
		if err := row.Scan(&rec.ID, &rec.NameEng, &rec.NameJP, &expansion, &rec.TableName); err != nil {
			return rec, err
		}
		if expansion != nil {
			n := int(*expansion)
			rec.Expansion = &n
		}
		return rec, nil
	})
}

// Close releases the connection, and the pool when the store opened it.
func (s *PostgresStore) Close() error {
	if s.conn != nil {
		s.conn.Release()
		s.conn = nil
	}
	if s.ownsPool && s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	if s.closer != nil {
		err := s.closer.Close()
		s.closer = nil
		return err
	}
	return nil
}
