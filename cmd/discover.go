package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parkhip/ai-job-crawler/internal/logging"
	"github.com/parkhip/ai-job-crawler/internal/pipeline"
)

// newDiscoverCmd creates the 'discover' subcommand: render the search
// page and persist the deduplicated link batch.
func newDiscoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Collect new job posting URLs from the search page",
		Long: `Renders the configured search page in a headless browser, extracts
posting URLs, drops any already ingested, and writes the surviving
batch to the links directory for the extract phase.`,
		RunE: runDiscoverCommand,
	}
}

func runDiscoverCommand(cmd *cobra.Command, _ []string) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	runID := pipeline.NewRunID()
	log := logging.WithRun(a.Logger, runID)
	orch := a.NewOrchestrator(a.NewDiscoverer(), nil, nil)

	links, err := orch.Discover(cmd.Context(), runID)
	switch {
	case errors.Is(err, pipeline.ErrBlocked):
		log.Warn("search page is blocking us; try again later")
		return nil
	case errors.Is(err, pipeline.ErrNoNewLinks):
		log.Info("no new postings since the last run")
		return nil
	case err != nil:
		return fmt.Errorf("discover: %w", err)
	}

	log.Info("discovery finished", zap.Int("new_links", len(links)))
	return nil
}
