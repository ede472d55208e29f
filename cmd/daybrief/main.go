package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"daybrief/internal/logging"
)

var (
	// Global flags
	configPath string
	dryRun     bool
	debug      bool
	outputDir  string

	// Logger, built once before any command runs
	logger *zap.Logger
)

// rootCmd generates and delivers the morning briefing.
var rootCmd = &cobra.Command{
	Use:   "daybrief",
	Short: "daybrief - daily morning briefing generator",
	Long: `daybrief assembles a daily briefing email from several sources:
current weather and an hourly forecast, today's calendar events, and
recent news articles with AI-generated summaries.

The assembled HTML document is sent to the configured recipient, or
written to a local file with --dry-run.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if debug {
			level = "debug"
		}
		var err error
		logger, err = logging.New(level, "logs")
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runBriefing,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to configuration YAML file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "write the briefing to a file instead of sending")
	rootCmd.Flags().StringVar(&outputDir, "output", "output", "directory for --dry-run briefing files")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
