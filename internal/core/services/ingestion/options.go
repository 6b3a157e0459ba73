package ingestion

import (
	"github.com/rcastellanos/csv-insight-service/internal/pkg/config"
)

// Options holds the parsing configuration for one ingestion run. Options
// are immutable after construction and safe to reuse across files.
type Options struct {
	// Delimiter separates fields outside quotes
	Delimiter byte

	// QuoteChar opens and closes a quoted field
	QuoteChar byte

	// EscapeChar, when non-zero, makes the following quote character a
	// literal instead of a quote toggle
	EscapeChar byte

	// HasHeaders treats the first non-empty line as column names;
	// otherwise names are synthesized as Column1..ColumnN
	HasHeaders bool

	// TrimWhitespace trims each unquoted field after tokenization
	TrimWhitespace bool

	// Encoding names the source charset (utf-8, iso-8859-1,
	// windows-1252, utf-16le, utf-16be)
	Encoding string

	// BatchSize is the number of rows handed to a streaming consumer
	// per callback
	BatchSize int
}

// DefaultOptions returns the standard CSV parsing configuration
func DefaultOptions() Options {
	return Options{
		Delimiter:      ',',
		QuoteChar:      '"',
		EscapeChar:     0,
		HasHeaders:     true,
		TrimWhitespace: true,
		Encoding:       "utf-8",
		BatchSize:      1000,
	}
}

// OptionsFromConfig builds Options from the service configuration
func OptionsFromConfig(cfg config.IngestConfig) Options {
	opts := DefaultOptions()

	if len(cfg.Delimiter) == 1 {
		opts.Delimiter = cfg.Delimiter[0]
	}
	if len(cfg.QuoteChar) == 1 {
		opts.QuoteChar = cfg.QuoteChar[0]
	}
	if len(cfg.EscapeChar) == 1 {
		opts.EscapeChar = cfg.EscapeChar[0]
	}
	opts.HasHeaders = cfg.HasHeaders
	opts.TrimWhitespace = cfg.TrimWhitespace
	if cfg.Encoding != "" {
		opts.Encoding = cfg.Encoding
	}
	if cfg.BatchSize > 0 {
		opts.BatchSize = cfg.BatchSize
	}

	return opts
}
