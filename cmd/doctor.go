package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/filterwatch/filterwatch-agent/internal/config"
	"github.com/filterwatch/filterwatch-agent/internal/cursor"
	"github.com/filterwatch/filterwatch-agent/internal/mwapi"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Verify configuration and connectivity",
	Long: `Checks that filterwatch is ready to run: the webhook URL is set and
well-formed, the query API answers, and the cursor file location is
writable. No notification is posted.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	failed := false
	check := func(name string, err error) {
		if err != nil {
			failed = true
			fmt.Println(failStyle.Render("  ✗ " + name + ": " + err.Error()))
			return
		}
		fmt.Println(okStyle.Render("  ✓ " + name))
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		if errors.Is(err, config.ErrWebhookURLMissing) {
			fmt.Println(failStyle.Render("  ✗ webhook URL: not set (FILTERWATCH_WEBHOOK_URL)"))
			return errors.New("configuration incomplete")
		}
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Println("Checking filterwatch configuration...")

	check("webhook URL", validateURL(cfg.Webhook.URL))
	check("stream URL", validateURL(cfg.Stream.URL))

	ctx, cancel := context.WithTimeout(cmd.Context(), 20*time.Second)
	defer cancel()
	check("query API", func() error {
		name, err := mwapi.New(cfg.API.URL, cfg.UserAgent).SiteName(ctx)
		if err != nil {
			return err
		}
		fmt.Println(dimStyle.Render("      site: " + name))
		return nil
	}())

	check("cursor file", cursorWritable(cfg.CursorPath))

	if failed {
		fmt.Println(warnStyle.Render("Some checks failed — fix the configuration above."))
		return errors.New("doctor found problems")
	}
	fmt.Println(okStyle.Render("All checks passed."))
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return nil
}

// cursorWritable verifies the cursor location without disturbing an existing
// cursor file.
func cursorWritable(path string) error {
	if pos := cursor.NewStore(path).Load(); pos != nil {
		return nil // already present and readable
	}
	probe := filepath.Join(filepath.Dir(path), ".filterwatch-doctor")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return err
	}
	return os.Remove(probe)
}
