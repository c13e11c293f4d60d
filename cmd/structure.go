package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parkhip/ai-job-crawler/internal/logging"
	"github.com/parkhip/ai-job-crawler/internal/pipeline"
)

// newStructureCmd creates the 'structure' subcommand: run LLM
// extraction over the unprocessed backlog.
func newStructureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "structure",
		Short: "Structure unprocessed raw postings with the LLM",
		Long: `Pulls raw postings that do not have a clean row yet, up to the
configured batch limit, and extracts structured fields from each with
the LLM. Failed items stay unprocessed and are retried next run.`,
		RunE: runStructureCommand,
	}
}

func runStructureCommand(cmd *cobra.Command, _ []string) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	runID := pipeline.NewRunID()
	orch := a.NewOrchestrator(nil, nil, a.NewStructurer())

	counters, err := orch.StructureBacklog(cmd.Context(), runID)
	if err != nil {
		return fmt.Errorf("structure: %w", err)
	}

	logging.WithRun(a.Logger, runID).Info("structuring finished",
		zap.Int("saved", counters.Saved),
		zap.Int("failed", counters.Failed),
	)
	return nil
}
