package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/filterwatch/filterwatch-agent/internal/config"
	"github.com/filterwatch/filterwatch-agent/internal/pipeline"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the abuse-filter notification pipeline",
	Long: `Subscribes to the configured event stream and runs the pipeline until
interrupted. The stream position is persisted after each processed event,
so a restart resumes where the previous run left off.

Examples:
  FILTERWATCH_WEBHOOK_URL=https://discord.com/api/webhooks/... filterwatch watch
  FILTERWATCH_FILTERS=42,100 filterwatch watch --verbose`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown on SIGINT/SIGTERM.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		fmt.Println("\nShutting down filterwatch gracefully...")
		cancel()
	}()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Printf("filterwatch %s watching %s\n", Version, cfg.Stream.Wiki)
	if len(cfg.FilterIDs) == 0 {
		fmt.Println(dimStyle.Render("  No filter allow-list configured: all filters are in scope."))
	}
	fmt.Println("Press Ctrl+C to stop gracefully.")
	fmt.Println()

	p := pipeline.New(cfg)
	if err := p.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("pipeline error: %w", err)
	}

	if pending := p.Pending(); pending > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("  %d undelivered notification(s) discarded on shutdown.", pending)))
	}
	fmt.Println("filterwatch stopped.")
	return nil
}
