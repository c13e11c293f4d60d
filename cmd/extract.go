package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parkhip/ai-job-crawler/internal/logging"
	"github.com/parkhip/ai-job-crawler/internal/pipeline"
)

// newExtractCmd creates the 'extract' subcommand: fetch every posting
// in a previously discovered link batch.
func newExtractCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Fetch and persist the postings from a discovered link batch",
		Long: `Reads the link batch written by a previous discover run (today's by
default), re-filters it against the database, and fetches each
remaining posting page. Safe to re-run after a crash: already-ingested
URLs are skipped.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExtractCommand(cmd, date)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "link batch date in YYYY-MM-DD form (default today)")
	return cmd
}

func runExtractCommand(cmd *cobra.Command, date string) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	day := a.Clock.Now()
	if date != "" {
		day, err = time.Parse("2006-01-02", date)
		if err != nil {
			return fmt.Errorf("parse --date: %w", err)
		}
	}

	links, err := a.LinkArtifact.Read(day)
	if err != nil {
		return fmt.Errorf("read link batch: %w", err)
	}
	if len(links) == 0 {
		a.Logger.Info("link batch is empty; run discover first",
			zap.String("date", day.Format("2006-01-02")))
		return nil
	}

	runID := pipeline.NewRunID()
	orch := a.NewOrchestrator(nil, a.NewExtractor(), nil)

	counters, err := orch.ExtractBatch(cmd.Context(), runID, links)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	logging.WithRun(a.Logger, runID).Info("extraction finished",
		zap.Int("saved", counters.Saved),
		zap.Int("failed", counters.Failed),
	)
	return nil
}
