package store

import (
	"fmt"
	"strings"

	"github.com/vvka-141/questload/pkg/questload"
)

// Dialect selects the SQL flavour of a store.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Schema returns the CREATE TABLE statement for the quest table.
//
// SQLite does not enforce VARCHAR widths or 32-bit INTEGER bounds; the sheet
// reader rejects rows that exceed them so both stores accept the same input.
func Schema(dialect Dialect, table string) string {
	id := "SERIAL PRIMARY KEY"
	if dialect == DialectSQLite {
		id = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", table)
	fmt.Fprintf(&b, "    id %s,\n", id)
	fmt.Fprintf(&b, "    quest_name_eng VARCHAR(%d),\n", questload.MaxNameLength)
	fmt.Fprintf(&b, "    quest_name_jp VARCHAR(%d),\n", questload.MaxNameLength)
	b.WriteString("    expansion_number INTEGER,\n")
	fmt.Fprintf(&b, "    table_name VARCHAR(%d)\n", questload.MaxNameLength)
	b.WriteString(");")
	return b.String()
}

type statements struct {
	drop   string
	create string
	insert string
	update string
	list   string
}

func newStatements(dialect Dialect, table string) (statements, error) {
	if !questload.IsValidIdentifier(table) {
		return statements{}, fmt.Errorf("table name %q is not a plain SQL identifier: %w", table, questload.ErrInvalidConfig)
	}

	p1, p2, p3 := "$1", "$2", "$3"
	if dialect == DialectSQLite {
		p1, p2, p3 = "?", "?", "?"
	}

	return statements{
		drop:   "DROP TABLE IF EXISTS " + table,
		create: Schema(dialect, table),
		insert: fmt.Sprintf("INSERT INTO %s (quest_name_eng, quest_name_jp, expansion_number, table_name) VALUES (%s, NULL, %s, %s)",
			table, p1, p2, p3),
		update: fmt.Sprintf("UPDATE %s SET quest_name_jp = %s WHERE table_name = %s", table, p1, p2),
		list: fmt.Sprintf("SELECT id, COALESCE(quest_name_eng, ''), quest_name_jp, expansion_number, COALESCE(table_name, '') FROM %s ORDER BY id",
			table),
	}, nil
}
