// Package cmd defines and implements the CLI commands for the
// jobcrawler executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/parkhip/ai-job-crawler/internal/app"
	"github.com/parkhip/ai-job-crawler/internal/config"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// newApp is the application factory. It is a variable so tests can
// replace it with a factory that injects fakes.
var newApp = func(ctx context.Context, cfg config.Config, opts app.Options) (*app.App, error) {
	return app.New(ctx, cfg, opts)
}

// optionsFor maps a subcommand to the services it needs, so the
// structure command never launches a browser and the discover command
// never dials the model.
func optionsFor(name string) app.Options {
	switch name {
	case "discover":
		return app.Options{NeedRenderer: true}
	case "extract":
		return app.Options{NeedRenderer: true}
	case "structure":
		return app.Options{NeedLLM: true}
	case "run":
		return app.Options{NeedRenderer: true, NeedLLM: true}
	default:
		return app.Options{}
	}
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobcrawler",
		Short: "Job posting ingestion pipeline for Vietnamese tech job boards",
		Long: `jobcrawler discovers job posting URLs from a board's search page,
extracts each posting with a headless browser, and structures the raw
text into clean rows with an LLM. Each phase is resumable: work is
derived from database state, so a killed run picks up where it left off.`,

		// Runs after flags are parsed but before the subcommand's RunE:
		// load environment and config, then build and inject the app.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Secrets (GEMINI_API_KEY, db credentials) live in .env.
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("load .env: %w", err)
			}

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			appInstance, err := newApp(cmd.Context(), cfg, optionsFor(cmd.Name()))
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(*app.App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is built-in defaults plus environment)")

	cmd.AddCommand(newDiscoverCmd())
	cmd.AddCommand(newExtractCmd())
	cmd.AddCommand(newStructureCmd())
	cmd.AddCommand(newRunCmd())

	return cmd
}

func resolveApp(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
