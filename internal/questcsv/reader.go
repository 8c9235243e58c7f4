package questcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/vvka-141/questload/pkg/questload"
)

// Options controls how a sheet is read.
type Options struct {
	// Source names the sheet in error messages, usually its path.
	Source string

	// Encoding is the source text encoding. Empty means UTF-8.
	Encoding string

	Layout questload.SheetLayout
}

// DefaultOptions returns options for a UTF-8 sheet in the stock layout.
func DefaultOptions() Options {
	return Options{
		Encoding: EncodingUTF8,
		Layout:   questload.DefaultSheetLayout(),
	}
}

// Columns holds resolved zero-based column positions.
type Columns struct {
	Name      int
	Key       int
	Expansion int
}

// Reader yields quest rows from one sheet export.
// It is not safe for concurrent use.
type Reader struct {
	csv      *csv.Reader
	closer   io.Closer
	opts     Options
	cols     Columns
	typeSeen bool
}

// Open opens the sheet at path. The caller must Close the reader.
func Open(path string, opts Options) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, questload.ErrSourceNotFound)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	if opts.Source == "" {
		opts.Source = path
	}
	r, err := NewReader(f, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader reads a sheet from src.
func NewReader(src io.Reader, opts Options) (*Reader, error) {
	if err := opts.Layout.Validate(); err != nil {
		return nil, err
	}
	decoded, err := decode(src, opts.Encoding)
	if err != nil {
		return nil, err
	}
	if opts.Source == "" {
		opts.Source = "<input>"
	}

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	return &Reader{
		csv:  cr,
		opts: opts,
		cols: Columns{
			Name:      opts.Layout.NameIndex,
			Key:       opts.Layout.KeyIndex,
			Expansion: opts.Layout.ExpansionIndex,
		},
	}, nil
}

// Columns returns the column positions in use. Header lookup happens while
// reading, so the result is final only after the first data row.
func (r *Reader) Columns() Columns {
	return r.cols
}

// Close closes the underlying file when the reader was created by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// ReadEnglish returns every English quest row.
//
// Rows whose quest cells are all blank are ignored. A row lacking one of the
// quest columns, with an expansion that is not a 32-bit integer, or with a
// name or key longer than questload.MaxNameLength fails the whole read with
// questload.ErrMalformedRow. A blank expansion yields a nil Expansion.
func (r *Reader) ReadEnglish() ([]questload.QuestRecord, error) {
	var records []questload.QuestRecord

	for {
		row, line, err := r.next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}

		name, hasName := cell(row, r.cols.Name)
		key, hasKey := cell(row, r.cols.Key)
		exp, hasExp := cell(row, r.cols.Expansion)

		if name == "" && key == "" && exp == "" {
			continue
		}
		if !hasName || !hasKey || !hasExp {
			return nil, fmt.Errorf("%s:%d: expected at least %d columns, got %d: %w",
				r.opts.Source, line, r.minColumns(), len(row), questload.ErrMalformedRow)
		}
		if err := r.checkLength(line, name, key); err != nil {
			return nil, err
		}

		rec := questload.QuestRecord{
			NameEng:   name,
			TableName: key,
			Line:      line,
		}
		if exp != "" {
			v, err := strconv.ParseInt(exp, 10, 32)
			if errors.Is(err, strconv.ErrRange) {
				return nil, fmt.Errorf("%s:%d: expansion number %s is out of range: %w",
					r.opts.Source, line, exp, questload.ErrMalformedRow)
			}
			if err != nil {
				return nil, fmt.Errorf("%s:%d: expansion number %q is not an integer: %w",
					r.opts.Source, line, exp, questload.ErrMalformedRow)
			}
			n := int(v)
			rec.Expansion = &n
		}
		records = append(records, rec)
	}
}

// ReadJapanese returns Japanese name updates and the number of rows skipped
// because the name or the key was blank. A name or key longer than
// questload.MaxNameLength fails the read with questload.ErrMalformedRow.
func (r *Reader) ReadJapanese() ([]questload.NameUpdate, int, error) {
	var (
		updates []questload.NameUpdate
		skipped int
	)

	for {
		row, line, err := r.next()
		if errors.Is(err, io.EOF) {
			return updates, skipped, nil
		}
		if err != nil {
			return nil, 0, err
		}

		name, _ := cell(row, r.cols.Name)
		key, _ := cell(row, r.cols.Key)
		if name == "" || key == "" {
			skipped++
			continue
		}
		if err := r.checkLength(line, name, key); err != nil {
			return nil, 0, err
		}

		updates = append(updates, questload.NameUpdate{
			NameJP:    name,
			TableName: key,
			Line:      line,
		})
	}
}

// next returns the next data row and its 1-based line number.
// Metadata rows are consumed here, resolving columns on the header row.
// SkipRows and HeaderRow count physical lines, blank ones included; the
// first record after the skipped lines is the type line.
func (r *Reader) next() ([]string, int, error) {
	for {
		row, err := r.csv.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, 0, io.EOF
			}
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, 0, fmt.Errorf("%s:%d: %v: %w", r.opts.Source, parseErr.Line, parseErr.Err, questload.ErrMalformedRow)
			}
			return nil, 0, fmt.Errorf("failed to read %s: %w", r.opts.Source, err)
		}

		line, _ := r.csv.FieldPos(0)
		layout := r.opts.Layout

		if line <= layout.SkipRows {
			if line == layout.HeaderRow {
				r.resolveColumns(row)
			}
			continue
		}
		if !r.typeSeen {
			r.typeSeen = true
			if layout.HeaderRow > layout.SkipRows {
				r.resolveColumns(row)
			}
			continue
		}
		return row, line, nil
	}
}

func (r *Reader) resolveColumns(header []string) {
	l := r.opts.Layout
	r.cols.Name = lookup(header, l.NameColumn, r.cols.Name)
	r.cols.Key = lookup(header, l.KeyColumn, r.cols.Key)
	r.cols.Expansion = lookup(header, l.ExpansionColumn, r.cols.Expansion)
}

func (r *Reader) checkLength(line int, name, key string) error {
	for _, v := range []string{name, key} {
		if n := utf8.RuneCountInString(v); n > questload.MaxNameLength {
			return fmt.Errorf("%s:%d: %q is %d characters, limit is %d: %w",
				r.opts.Source, line, truncate(v, 20), n, questload.MaxNameLength, questload.ErrMalformedRow)
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func (r *Reader) minColumns() int {
	return max(r.cols.Name, r.cols.Key, r.cols.Expansion) + 1
}

func lookup(header []string, name string, fallback int) int {
	if name == "" {
		return fallback
	}
	want := normalize(name)
	for i, h := range header {
		if strings.EqualFold(normalize(h), want) {
			return i
		}
	}
	return fallback
}

// cell returns the normalized value at i and whether the column exists.
func cell(row []string, i int) (string, bool) {
	if i < 0 || i >= len(row) {
		return "", false
	}
	return normalize(row[i]), true
}

func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
