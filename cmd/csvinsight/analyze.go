package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rcastellanos/csv-insight-service/internal/core/domain"
	"github.com/rcastellanos/csv-insight-service/internal/core/services/analysis"
	"github.com/rcastellanos/csv-insight-service/internal/core/services/ingestion"
	"github.com/rcastellanos/csv-insight-service/internal/core/services/report"
	"github.com/rcastellanos/csv-insight-service/internal/pkg/logger"
)

var (
	analyzeDelimiter string
	analyzeEncoding  string
	analyzeNoHeaders bool
	analyzeNoTrim    bool
	analyzeBatchSize int
	analyzeRulesFile string
	analyzeFormat    string
	analyzeOutput    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [input-file]",
	Short: "Analyze a CSV file and write a report",
	Long: `Analyze a CSV file: infer column types, optionally validate rows
against a rule set, compute per-column statistics and write the report.

Examples:
  csvinsight analyze data.csv
  csvinsight analyze data.csv --format html -o report.html
  csvinsight analyze data.csv --rules rules.json --format xlsx -o report.xlsx
  csvinsight analyze data.csv --delimiter ";" --encoding latin-1 --no-headers`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeDelimiter, "delimiter", ",", "Field delimiter (single character)")
	analyzeCmd.Flags().StringVar(&analyzeEncoding, "encoding", "utf-8", "Input encoding (utf-8, latin-1, windows-1252, utf-16)")
	analyzeCmd.Flags().BoolVar(&analyzeNoHeaders, "no-headers", false, "Treat the first line as data and synthesize column names")
	analyzeCmd.Flags().BoolVar(&analyzeNoTrim, "no-trim", false, "Do not trim whitespace from unquoted fields")
	analyzeCmd.Flags().IntVar(&analyzeBatchSize, "batch-size", 1000, "Rows per batch")
	analyzeCmd.Flags().StringVar(&analyzeRulesFile, "rules", "", "JSON file mapping column names to validation rules")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "json", "Report format (json, html, xml, xlsx)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Output file (default: stdout)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	inputFile := args[0]
	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", inputFile)
	}
	if len(analyzeDelimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character")
	}

	registry := report.NewRegistry()
	if !registry.IsSupported(analyzeFormat) {
		return fmt.Errorf("unsupported format %q (supported: json, html, xml, xlsx)", analyzeFormat)
	}

	var rules domain.RuleSet
	if analyzeRulesFile != "" {
		data, err := os.ReadFile(analyzeRulesFile)
		if err != nil {
			return fmt.Errorf("failed to read rules file: %w", err)
		}
		if err := json.Unmarshal(data, &rules); err != nil {
			return fmt.Errorf("failed to parse rules file: %w", err)
		}
	}

	opts := ingestion.DefaultOptions()
	opts.Delimiter = analyzeDelimiter[0]
	opts.Encoding = analyzeEncoding
	opts.HasHeaders = !analyzeNoHeaders
	opts.TrimWhitespace = !analyzeNoTrim
	opts.BatchSize = analyzeBatchSize

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted")
		cancel()
	}()

	svc := analysis.NewService(nil, nil, logger.Get())
	result, err := svc.AnalyzeFile(ctx, analysis.Request{
		RunID:    uuid.New(),
		FilePath: inputFile,
		FileName: inputFile,
		Rules:    rules,
		Options:  opts,
	})
	if err != nil {
		return err
	}

	rep := &report.Report{
		RunID:       result.RunID.String(),
		FileName:    result.FileName,
		GeneratedAt: time.Now(),
		Summary:     result.Summary,
	}
	if result.Validation != nil {
		rep.Errors = result.Validation.Errors
	}

	out := os.Stdout
	if analyzeOutput != "" {
		f, err := os.Create(analyzeOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := registry.Render(analyzeFormat, out, rep); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if analyzeOutput != "" {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", analyzeOutput)
	}
	if result.Validation != nil && !result.Validation.IsValid {
		fmt.Fprintf(os.Stderr, "%d of %d rows failed validation\n",
			result.Summary.InvalidRows, result.Summary.TotalRows)
	}

	return nil
}
