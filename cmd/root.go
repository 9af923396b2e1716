package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/filterwatch/filterwatch-agent/internal/config"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	cfgFile string
	verbose bool
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "filterwatch",
	Short: "Relay abuse-filter hits from a wiki event stream to a webhook",
	Long: `filterwatch subscribes to a wiki's recent-changes event stream, picks out
abuse-filter hits, augments each with facts from the wiki's query API
(filter description, revision, diff size), and delivers a formatted
notification to a webhook — reliably, in order, and across restarts.

Get started:
  filterwatch watch     Run the notification pipeline
  filterwatch doctor    Verify configuration and connectivity

Configuration comes from FILTERWATCH_* environment variables;
FILTERWATCH_WEBHOOK_URL is required.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"optional JSON config file (environment variables take precedence)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose/debug output")

	rootCmd.Version = Version
	config.Version = Version
	rootCmd.AddCommand(
		watchCmd,
		doctorCmd,
	)
}

func initLogging() {
	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		slog.Debug("Verbose logging enabled")
	}
}
