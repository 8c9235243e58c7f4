// Package questcsv reads quest sheet exports.
//
// An export starts with metadata lines before the data: an index line, a
// column-name line and a type line. The reader skips them, resolves the quest
// columns by name (falling back to fixed positions) and yields typed rows.
//
// Supported source encodings are UTF-8 (with or without a byte order mark),
// Shift_JIS and EUC-JP. All values are trimmed and NFC-normalized so the same
// key written by different tools compares equal.
package questcsv
