package ingestion

import (
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	apperrors "github.com/rcastellanos/csv-insight-service/internal/pkg/errors"
)

// decodeReader wraps the input with a charset decoder when the configured
// encoding is not UTF-8. Unknown encoding names are a fatal error before
// any line is read.
func decodeReader(r io.Reader, name string) (io.Reader, error) {
	var enc encoding.Encoding

	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin-1", "latin1", "iso-8859-1":
		enc = charmap.ISO8859_1
	case "windows-1252", "cp1252":
		enc = charmap.Windows1252
	case "utf-16", "utf-16le":
		enc = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "utf-16be":
		enc = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	default:
		return nil, apperrors.UnsupportedEncoding(name)
	}

	return transform.NewReader(r, enc.NewDecoder()), nil
}
