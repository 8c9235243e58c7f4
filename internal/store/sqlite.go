package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/vvka-141/questload/internal/logging"
	"github.com/vvka-141/questload/pkg/questload"
)

// SQLiteStore is a QuestStore backed by a SQLite database file.
type SQLiteStore struct {
	db     *sql.DB
	conn   *sql.Conn
	stmts  statements
	table  string
	logger questload.Logger
}

var _ questload.QuestStore = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the database at path.
// ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, path, table string, logger questload.Logger) (*SQLiteStore, error) {
	stmts, err := newStatements(DialectSQLite, table)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if path == "" {
		path = questload.DefaultSQLitePath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w: %w", questload.ErrConnectionFailed, err)
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w: %w", path, questload.ErrConnectionFailed, err)
	}

	return &SQLiteStore{
		db:     db,
		conn:   conn,
		stmts:  stmts,
		table:  table,
		logger: logger,
	}, nil
}

// RecreateTable drops and creates the quest table.
func (s *SQLiteStore) RecreateTable(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, s.stmts.drop); err != nil {
		return fmt.Errorf("failed to drop table %s: %w: %w", s.table, questload.ErrSchemaFailed, err)
	}
	if _, err := s.conn.ExecContext(ctx, s.stmts.create); err != nil {
		return fmt.Errorf("failed to create table %s: %w: %w", s.table, questload.ErrSchemaFailed, err)
	}
	s.logger.Verbose("Recreated table %s", s.table)
	return nil
}

// InsertEnglish inserts all records in a single transaction.
func (s *SQLiteStore) InsertEnglish(ctx context.Context, records []questload.QuestRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w: %w", questload.ErrExecutionFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.stmts.insert)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w: %w", questload.ErrExecutionFailed, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.NameEng, nullableInt(rec.Expansion), rec.TableName); err != nil {
			return 0, fmt.Errorf("failed to insert line %d (%s): %w: %w", rec.Line, rec.TableName, questload.ErrExecutionFailed, err)
		}
		s.logger.Verbose("Inserted %s | %s | %s", rec.NameEng, formatExpansion(rec.Expansion), rec.TableName)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit English quests: %w: %w", questload.ErrExecutionFailed, err)
	}
	return len(records), nil
}

// ApplyJapaneseNames runs one UPDATE per entry in a single transaction.
func (s *SQLiteStore) ApplyJapaneseNames(ctx context.Context, updates []questload.NameUpdate) (questload.UpdateResult, error) {
	var result questload.UpdateResult
	if len(updates) == 0 {
		return result, nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w: %w", questload.ErrExecutionFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.stmts.update)
	if err != nil {
		return result, fmt.Errorf("failed to prepare update: %w: %w", questload.ErrExecutionFailed, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, u := range updates {
		res, err := stmt.ExecContext(ctx, u.NameJP, u.TableName)
		if err != nil {
			return questload.UpdateResult{}, fmt.Errorf("failed to update line %d (%s): %w: %w", u.Line, u.TableName, questload.ErrExecutionFailed, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return questload.UpdateResult{}, fmt.Errorf("failed to update line %d (%s): %w: %w", u.Line, u.TableName, questload.ErrExecutionFailed, err)
		}
		result.Add(n)
		s.logger.Verbose("Updated %s -> %s (%d rows)", u.TableName, u.NameJP, n)
	}

	if err := tx.Commit(); err != nil {
		return questload.UpdateResult{}, fmt.Errorf("failed to commit Japanese names: %w: %w", questload.ErrExecutionFailed, err)
	}
	return result, nil
}

// Quests returns every record ordered by id.
func (s *SQLiteStore) Quests(ctx context.Context) ([]questload.QuestRecord, error) {
	rows, err := s.conn.QueryContext(ctx, s.stmts.list)
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []questload.QuestRecord
	for rows.Next() {
		var (
			rec       questload.QuestRecord
			nameJP    sql.NullString
			expansion sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.NameEng, &nameJP, &expansion, &rec.TableName); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if nameJP.Valid {
			rec.NameJP = &nameJP.String
		}
		if expansion.Valid {
			n := int(expansion.Int64)
			rec.Expansion = &n
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the connection and closes the database.
func (s *SQLiteStore) Close() error {
	var errs []error
	if s.conn != nil {
		errs = append(errs, s.conn.Close())
		s.conn = nil
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
		s.db = nil
	}
	return errors.Join(errs...)
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func formatExpansion(v *int) string {
	if v == nil {
		return "NULL"
	}
	return strconv.Itoa(*v)
}
