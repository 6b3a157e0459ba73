package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rcastellanos/csv-insight-service/internal/infrastructure/queue"
	"github.com/rcastellanos/csv-insight-service/internal/infrastructure/storage"
	"github.com/rcastellanos/csv-insight-service/internal/pkg/config"
	"github.com/rcastellanos/csv-insight-service/internal/pkg/logger"
)

var enqueueFormat string

var enqueueCmd = &cobra.Command{
	Use:   "enqueue [input-file]",
	Short: "Store a file and enqueue it for background analysis",
	Long: `Copy the file into service storage and enqueue an analysis task
for the worker. Requires Redis and the configured storage path.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnqueue,
}

func init() {
	enqueueCmd.Flags().StringVarP(&enqueueFormat, "format", "f", "json", "Report format the worker should render")
}

func runEnqueue(cmd *cobra.Command, args []string) error {
	inputFile := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.Get()

	store, err := storage.NewLocalStorage(&cfg.Storage, log)
	if err != nil {
		return err
	}

	client, err := queue.NewAsynqClient(&cfg.Queue, log)
	if err != nil {
		return err
	}
	defer client.Close()

	file, err := os.Open(inputFile)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	ctx := context.Background()
	runID := uuid.New()

	meta, err := store.SaveSource(ctx, runID.String(), filepath.Base(inputFile), file)
	if err != nil {
		return err
	}

	info, err := client.EnqueueAnalyzeFile(ctx, queue.AnalyzeFilePayload{
		RunID:    runID.String(),
		FilePath: meta.StoredPath,
		FileHash: meta.Hash,
		Format:   enqueueFormat,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Enqueued analysis %s (task %s)\n", runID, info.ID)
	return nil
}
