package ingestion

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rcastellanos/csv-insight-service/internal/core/domain"
	apperrors "github.com/rcastellanos/csv-insight-service/internal/pkg/errors"
)

// BatchConsumer receives the column set once, followed by each batch of
// rows in source order. The reader does not tokenize batch N+1 until the
// Batch call for batch N has returned, which gives a slow consumer
// natural back-pressure.
type BatchConsumer interface {
	// Columns is called exactly once, after column types have been
	// fixed from the first data row (or at end of input for a
	// headers-only file)
	Columns(cols []domain.Column) error

	// Batch is called once per full batch and once for a trailing
	// partial batch, oldest rows first
	Batch(ctx context.Context, rows []domain.DataRow) error
}

// ConsumerFuncs adapts plain functions to the BatchConsumer interface.
// Nil functions are no-ops.
type ConsumerFuncs struct {
	OnColumns func(cols []domain.Column) error
	OnBatch   func(ctx context.Context, rows []domain.DataRow) error
}

// Columns implements BatchConsumer
func (c ConsumerFuncs) Columns(cols []domain.Column) error {
	if c.OnColumns == nil {
		return nil
	}
	return c.OnColumns(cols)
}

// Batch implements BatchConsumer
func (c ConsumerFuncs) Batch(ctx context.Context, rows []domain.DataRow) error {
	if c.OnBatch == nil {
		return nil
	}
	return c.OnBatch(ctx, rows)
}

// Reader drives line-by-line ingestion: tokenize, coerce against the
// inferred column types, group into batches. Reads are strictly
// sequential; row order is the data's ordering invariant.
type Reader struct {
	opts   Options
	tok    *Tokenizer
	logger *slog.Logger
}

// NewReader creates a batch reader with the given options
func NewReader(opts Options, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		opts:   opts,
		tok:    NewTokenizer(opts),
		logger: logger,
	}
}

// Options returns the reader's parsing options
func (r *Reader) Options() Options {
	return r.opts
}

// ReadFile ingests a whole file into a CSVData value
func (r *Reader) ReadFile(ctx context.Context, path string) (*domain.CSVData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.SourceAccess(err, path)
	}
	defer file.Close()

	return r.Read(ctx, file, path)
}

// Read ingests the whole input into a CSVData value. On cancellation or
// read failure nothing partial is returned.
func (r *Reader) Read(ctx context.Context, input io.Reader, fileName string) (*domain.CSVData, error) {
	start := time.Now()

	var headers []domain.Column
	var rows []domain.DataRow

	collector := ConsumerFuncs{
		OnColumns: func(cols []domain.Column) error {
			headers = cols
			return nil
		},
		OnBatch: func(_ context.Context, batch []domain.DataRow) error {
			rows = append(rows, batch...)
			return nil
		},
	}

	total, err := r.scan(ctx, input, fileName, collector)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("file ingested",
		slog.String("file", fileName),
		slog.Int("rows", total),
		slog.Int("columns", len(headers)),
		slog.Duration("elapsed", time.Since(start)))

	return &domain.CSVData{
		Headers:     headers,
		Rows:        rows,
		FileName:    fileName,
		ProcessedAt: time.Now(),
	}, nil
}

// StreamFile ingests a file in streaming mode, handing batches to the
// consumer without materializing more than one batch at a time
func (r *Reader) StreamFile(ctx context.Context, path string, consumer BatchConsumer) error {
	file, err := os.Open(path)
	if err != nil {
		return apperrors.SourceAccess(err, path)
	}
	defer file.Close()

	return r.Stream(ctx, file, path, consumer)
}

// Stream ingests the input in streaming mode. The consumer owns whatever
// state it accumulated when an error interrupts the run.
func (r *Reader) Stream(ctx context.Context, input io.Reader, name string, consumer BatchConsumer) error {
	total, err := r.scan(ctx, input, name, consumer)
	if err != nil {
		return err
	}

	r.logger.Debug("stream completed",
		slog.String("source", name),
		slog.Int("rows", total))

	return nil
}

// scan is the single ingestion loop shared by both modes. It returns the
// number of data rows read.
func (r *Reader) scan(ctx context.Context, input io.Reader, name string, consumer BatchConsumer) (int, error) {
	batchSize := r.opts.BatchSize
	if batchSize < 1 {
		return 0, apperrors.InvalidBatchSize(batchSize)
	}

	decoded, err := decodeReader(input, r.opts.Encoding)
	if err != nil {
		return 0, err
	}

	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var columns []domain.Column
	columnsSent := false
	batch := make([]domain.DataRow, 0, batchSize)
	rowNumber := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		rows := batch
		batch = make([]domain.DataRow, 0, batchSize)
		return consumer.Batch(ctx, rows)
	}

	for scanner.Scan() {
		// Cancellation is honored between lines, never mid-line
		if err := ctx.Err(); err != nil {
			return rowNumber, err
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			// Empty lines yield no data values and no RowNumber
			continue
		}

		fields := r.tok.Split(line)

		if columns == nil {
			if r.opts.HasHeaders {
				columns = headerColumns(fields)
				continue
			}
			// No header row: synthesize names and treat this
			// line as the first data row
			columns = syntheticColumns(len(fields))
		}

		if rowNumber == 0 {
			// The first data row fixes every column's type
			for i := range columns {
				if i < len(fields) {
					columns[i].DataType = InferType(fields[i])
				} else {
					columns[i].DataType = domain.TypeEmpty
				}
			}
			if err := consumer.Columns(columns); err != nil {
				return 0, err
			}
			columnsSent = true
		}

		rowNumber++
		values := make([]domain.CellValue, len(columns))
		for i := range columns {
			if i < len(fields) {
				values[i] = ParseCellValue(fields[i], columns[i].DataType)
			} else {
				// Short rows are padded with Empty; extra
				// fields beyond the header width are dropped
				values[i] = domain.NewEmpty()
			}
		}

		batch = append(batch, domain.DataRow{RowNumber: rowNumber, Values: values})
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return rowNumber, err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return rowNumber, apperrors.Wrap(err, apperrors.ErrCodeSourceAccess,
			fmt.Sprintf("error reading source: %s", name))
	}

	if columns == nil {
		return 0, apperrors.EmptyInput(name)
	}

	if !columnsSent {
		// Headers-only input: still report the column set
		if err := consumer.Columns(columns); err != nil {
			return 0, err
		}
	}

	if err := flush(); err != nil {
		return rowNumber, err
	}

	return rowNumber, nil
}

// headerColumns builds the column set from a header line
func headerColumns(fields []string) []domain.Column {
	cols := make([]domain.Column, len(fields))
	for i, name := range fields {
		cols[i] = domain.Column{Name: name, Index: i, DataType: domain.TypeText}
	}
	return cols
}

// syntheticColumns builds Column1..ColumnN names for headerless input
func syntheticColumns(n int) []domain.Column {
	cols := make([]domain.Column, n)
	for i := range cols {
		cols[i] = domain.Column{Name: fmt.Sprintf("Column%d", i+1), Index: i, DataType: domain.TypeText}
	}
	return cols
}
