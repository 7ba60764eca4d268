package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"visit-tracker/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ingestFile string

// ingestCmd applies a file of snapshots through the service.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Apply a JSON array of intersection snapshots",
	Long: `Reads a JSON array of intersection snapshots and applies them in order,
exactly as POST /intersections would. Snapshots that fail to decode or
validate are logged and skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		startTime := time.Now()

		data, err := os.ReadFile(ingestFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", ingestFile, err)
		}

		var payloads []json.RawMessage
		if err := json.Unmarshal(data, &payloads); err != nil {
			return fmt.Errorf("failed to parse %s: %w", ingestFile, err)
		}

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.store.Migrate(ctx); err != nil {
			return err
		}

		items, err := rt.service.IngestPayloads(ctx, payloads)
		if err != nil {
			return fmt.Errorf("ingestion stopped after %d snapshots: %w", len(items), err)
		}

		var (
			total    reconcile.Changes
			rejected int
		)
		for _, item := range items {
			if item.Result == nil {
				rejected++
				rt.logger.Warn("Snapshot rejected", zap.Int("index", item.Index), zap.String("error", item.Error))
				continue
			}
			total.Split += item.Result.Changes.Split
			total.Extended += item.Result.Changes.Extended
			total.Created += item.Result.Changes.Created
		}

		rt.logger.Info("Ingestion completed",
			zap.Int("snapshots", len(items)),
			zap.Int("rejected", rejected),
			zap.Int("split", total.Split),
			zap.Int("extended", total.Extended),
			zap.Int("created", total.Created),
			zap.Duration("execution_time", time.Since(startTime)),
		)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "Path to a JSON array of snapshots")
	_ = ingestCmd.MarkFlagRequired("file")
	RootCmd.AddCommand(ingestCmd)
}
