// Package fixtures writes quest sheet exports for tests.
package fixtures

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Metadata lines that precede the data in a stock export.
const sheetPreamble = "key,0,1,2\n#,Name,Id,Expansion\nint32,str,str,byte\n"

// Row is one data line of a sheet: name, key and expansion cells.
type Row struct {
	Name      string
	Key       string
	Expansion string
}

// Sheet renders rows in the stock export layout.
func Sheet(rows ...Row) string {
	var b strings.Builder
	b.WriteString(sheetPreamble)
	for i, r := range rows {
		b.WriteString(strconv.Itoa(i + 1))
		for _, v := range []string{r.Name, r.Key, r.Expansion} {
			b.WriteByte(',')
			b.WriteString(quote(v))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteSheets writes English and Japanese sheets under dir in the default
// rsrc/csv layout and returns their paths.
func WriteSheets(t *testing.T, dir, english, japanese string) (string, string) {
	t.Helper()

	eng := filepath.Join(dir, "rsrc", "csv", "eng", "Quest.csv")
	jp := filepath.Join(dir, "rsrc", "csv", "jp", "Quest.csv")
	WriteFile(t, eng, english)
	WriteFile(t, jp, japanese)
	return eng, jp
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func quote(v string) string {
	if strings.ContainsAny(v, ",\"\n") {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}
