package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parkhip/ai-job-crawler/internal/pipeline"
)

// newRunCmd creates the 'run' subcommand: the full three-phase pipeline.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run discover, extract, and structure in sequence",
		Long: `Executes the full pipeline: discover new posting URLs, fetch each
posting, then structure the unprocessed backlog. A blocked or empty
discovery skips extraction but still structures any backlog.`,
		RunE: runPipelineCommand,
	}
}

func runPipelineCommand(cmd *cobra.Command, _ []string) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	orch := a.NewOrchestrator(a.NewDiscoverer(), a.NewExtractor(), a.NewStructurer())
	if err := orch.Run(cmd.Context(), pipeline.NewRunID()); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	return nil
}
