package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Version is stamped at build time via -ldflags and used in the generated
// default user agent.
var Version = "dev"

// ErrWebhookURLMissing is the fatal startup error for an unset webhook target.
var ErrWebhookURLMissing = errors.New("webhook.url is required (set FILTERWATCH_WEBHOOK_URL)")

// Load reads configuration from the environment and, if configPath is set or
// a config file is present, layers the file underneath. Environment always
// wins. The returned Config is validated: a missing webhook URL is an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix("FILTERWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	ids, err := parseFilterList(cfg.Filters)
	if err != nil {
		return nil, fmt.Errorf("parsing filter allow-list: %w", err)
	}
	cfg.FilterIDs = ids

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Webhook.URL == "" {
		return ErrWebhookURLMissing
	}
	switch cfg.Reconnect.Policy {
	case "client", "cooldown":
	default:
		return fmt.Errorf("invalid reconnect.policy %q (valid: client, cooldown)", cfg.Reconnect.Policy)
	}
	switch cfg.Reconnect.Resume {
	case "cursor", "tail":
	default:
		return fmt.Errorf("invalid reconnect.resume %q (valid: cursor, tail)", cfg.Reconnect.Resume)
	}
	return nil
}

// AllowList returns the filter allow-list as a membership set, or nil when
// all filters are in scope.
func (c *Config) AllowList() map[int]bool {
	if len(c.FilterIDs) == 0 {
		return nil
	}
	allow := make(map[int]bool, len(c.FilterIDs))
	for _, id := range c.FilterIDs {
		allow[id] = true
	}
	return allow
}

// parseFilterList parses a comma-separated list of integer filter ids.
// Blank entries are tolerated ("1,,2" parses as [1 2]).
func parseFilterList(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid filter id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// setDefaults populates viper with out-of-the-box values for everything
// except the webhook URL, which has no sensible default.
func setDefaults(v *viper.Viper) {
	v.SetDefault("webhook.url", "")
	v.SetDefault("webhook.username", "filterwatch")
	v.SetDefault("webhook.avatar_url", "")

	v.SetDefault("stream.url", "https://stream.wikimedia.org/v2/stream/recentchange")
	v.SetDefault("stream.wiki", "enwiki")
	v.SetDefault("stream.domain", "en.wikipedia.org")

	v.SetDefault("api.url", "https://en.wikipedia.org/w/api.php")

	v.SetDefault("filters", "")
	v.SetDefault("user_agent", "filterwatch-agent/"+Version)
	v.SetDefault("cursor_path", "cursor.json")

	v.SetDefault("drain.every", "3s")
	v.SetDefault("drain.retry_after_default", "5s")

	v.SetDefault("enrich.revision_lookup_delay", "2s")

	v.SetDefault("reconnect.policy", "client")
	v.SetDefault("reconnect.cooldown", "30s")
	v.SetDefault("reconnect.resume", "cursor")
}
