package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadRequiresWebhookURL(t *testing.T) {
	_, err := Load("")
	if !errors.Is(err, ErrWebhookURLMissing) {
		t.Fatalf("expected ErrWebhookURLMissing, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FILTERWATCH_WEBHOOK_URL", "https://example.invalid/hook")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Stream.Wiki != "enwiki" {
		t.Errorf("stream.wiki default = %q, want enwiki", cfg.Stream.Wiki)
	}
	if cfg.CursorPath != "cursor.json" {
		t.Errorf("cursor_path default = %q, want cursor.json", cfg.CursorPath)
	}
	if cfg.Drain.Every != 3*time.Second {
		t.Errorf("drain.every default = %v, want 3s", cfg.Drain.Every)
	}
	if cfg.Reconnect.Policy != "client" || cfg.Reconnect.Resume != "cursor" {
		t.Errorf("reconnect defaults = %q/%q, want client/cursor", cfg.Reconnect.Policy, cfg.Reconnect.Resume)
	}
	if cfg.AllowList() != nil {
		t.Error("expected nil allow-list when no filters configured")
	}
}

func TestLoadFilterAllowList(t *testing.T) {
	t.Setenv("FILTERWATCH_WEBHOOK_URL", "https://example.invalid/hook")
	t.Setenv("FILTERWATCH_FILTERS", "42, 100,,7")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	allow := cfg.AllowList()
	for _, id := range []int{42, 100, 7} {
		if !allow[id] {
			t.Errorf("allow-list missing %d", id)
		}
	}
	if len(allow) != 3 {
		t.Errorf("allow-list size = %d, want 3", len(allow))
	}
}

func TestLoadRejectsBadFilterList(t *testing.T) {
	t.Setenv("FILTERWATCH_WEBHOOK_URL", "https://example.invalid/hook")
	t.Setenv("FILTERWATCH_FILTERS", "42,abc")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-integer filter id")
	}
}

func TestLoadRejectsBadReconnectPolicy(t *testing.T) {
	t.Setenv("FILTERWATCH_WEBHOOK_URL", "https://example.invalid/hook")
	t.Setenv("FILTERWATCH_RECONNECT_POLICY", "sometimes")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for invalid reconnect policy")
	}
}
