package ingestion

import "strings"

// Tokenizer splits one line of delimited text into ordered raw fields.
// It performs a single left-to-right scan tracking quote state; a
// delimiter inside quotes is literal and an unterminated quote at end of
// line is treated as an implicit close. Malformed-quote detection is a
// validation concern, never a parse failure.
type Tokenizer struct {
	delimiter byte
	quote     byte
	escape    byte // 0 means no escape character configured
	trim      bool
}

// NewTokenizer creates a tokenizer for the given options
func NewTokenizer(opts Options) *Tokenizer {
	return &Tokenizer{
		delimiter: opts.Delimiter,
		quote:     opts.QuoteChar,
		escape:    opts.EscapeChar,
		trim:      opts.TrimWhitespace,
	}
}

// Split tokenizes one line into fields. End of line always terminates the
// last field, even if empty. Callers must filter empty lines before
// tokenizing; Split is only defined for lines carrying data.
func (t *Tokenizer) Split(line string) []string {
	fields := make([]string, 0, 8)
	quoted := make([]bool, 0, 8)

	var field strings.Builder
	inQuotes := false
	fieldQuoted := false

	for i := 0; i < len(line); i++ {
		c := line[i]

		switch {
		case t.escape != 0 && c == t.escape && i+1 < len(line) && line[i+1] == t.quote:
			// Escaped literal quote
			field.WriteByte(t.quote)
			i++

		case c == t.quote:
			inQuotes = !inQuotes
			if inQuotes {
				fieldQuoted = true
			}

		case c == t.delimiter && !inQuotes:
			fields = append(fields, field.String())
			quoted = append(quoted, fieldQuoted)
			field.Reset()
			fieldQuoted = false

		default:
			field.WriteByte(c)
		}
	}

	fields = append(fields, field.String())
	quoted = append(quoted, fieldQuoted)

	if t.trim {
		// Trimming never touches content that was inside quotes
		for i := range fields {
			if !quoted[i] {
				fields[i] = strings.TrimSpace(fields[i])
			}
		}
	}

	return fields
}

// Join renders fields back into one line using the configured delimiter,
// quoting fields that contain the delimiter or quote character
func (t *Tokenizer) Join(fields []string) string {
	var sb strings.Builder

	for i, f := range fields {
		if i > 0 {
			sb.WriteByte(t.delimiter)
		}
		if strings.IndexByte(f, t.delimiter) >= 0 || strings.IndexByte(f, t.quote) >= 0 {
			sb.WriteByte(t.quote)
			sb.WriteString(f)
			sb.WriteByte(t.quote)
		} else {
			sb.WriteString(f)
		}
	}

	return sb.String()
}
