package questcsv

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/vvka-141/questload/pkg/questload"
)

// Encoding names accepted by Options.Encoding.
const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
	EncodingEUCJP    = "euc-jp"
)

func lookupEncoding(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer("-", "", "_", "").Replace(key)

	switch key {
	case "", "utf8":
		return unicode.UTF8, nil
	case "shiftjis", "sjis", "cp932", "windows31j":
		return japanese.ShiftJIS, nil
	case "eucjp":
		return japanese.EUCJP, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q (use %s, %s or %s): %w",
			name, EncodingUTF8, EncodingShiftJIS, EncodingEUCJP, questload.ErrInvalidConfig)
	}
}

// ValidateEncoding reports whether name is a supported source encoding.
func ValidateEncoding(name string) error {
	_, err := lookupEncoding(name)
	return err
}

// decode wraps r so it yields UTF-8. A leading UTF-8 BOM is dropped.
func decode(r io.Reader, name string) (io.Reader, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
