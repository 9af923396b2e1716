package config

import "time"

// Config is the root configuration structure for filterwatch.
// Values come from FILTERWATCH_* environment variables, optionally layered
// over a JSON config file.
type Config struct {
	Webhook   WebhookConfig   `mapstructure:"webhook"   json:"webhook"`
	Stream    StreamConfig    `mapstructure:"stream"    json:"stream"`
	API       APIConfig       `mapstructure:"api"       json:"api"`
	Drain     DrainConfig     `mapstructure:"drain"     json:"drain"`
	Enrich    EnrichConfig    `mapstructure:"enrich"    json:"enrich"`
	Reconnect ReconnectConfig `mapstructure:"reconnect" json:"reconnect"`

	// Filters is the comma-separated abuse-filter id allow-list.
	// Empty means all filters are in scope.
	Filters string `mapstructure:"filters" json:"filters"`
	// FilterIDs is Filters parsed at load time. Not read from config directly.
	FilterIDs []int `mapstructure:"-" json:"-"`

	// UserAgent identifies outbound requests to the stream, the query API,
	// and the webhook. A default is generated from the build version.
	UserAgent string `mapstructure:"user_agent" json:"user_agent"`
	// CursorPath is where the stream position is persisted between runs.
	CursorPath string `mapstructure:"cursor_path" json:"cursor_path"`
}

// WebhookConfig describes the single delivery destination.
type WebhookConfig struct {
	// URL is the webhook endpoint. Required; startup fails without it.
	URL       string `mapstructure:"url"        json:"url"`
	Username  string `mapstructure:"username"   json:"username"`
	AvatarURL string `mapstructure:"avatar_url" json:"avatar_url"`
}

// StreamConfig describes the upstream event feed subscription.
type StreamConfig struct {
	// URL is the SSE endpoint for the recent-changes topic.
	URL string `mapstructure:"url" json:"url"`
	// Wiki is the site id events must carry to be in scope (e.g. "enwiki").
	Wiki string `mapstructure:"wiki" json:"wiki"`
	// Domain is the wiki's web domain, used to build links in notifications.
	Domain string `mapstructure:"domain" json:"domain"`
}

// APIConfig points at the wiki's query API.
type APIConfig struct {
	URL string `mapstructure:"url" json:"url"`
}

// DrainConfig controls the delivery queue drain loop.
type DrainConfig struct {
	// Every is the drain tick period.
	Every time.Duration `mapstructure:"every" json:"every"`
	// RetryAfterDefault is the wait applied to a rate-limit response that
	// does not carry a usable retry_after value.
	RetryAfterDefault time.Duration `mapstructure:"retry_after_default" json:"retry_after_default"`
}

// EnrichConfig controls the enrichment lookups.
type EnrichConfig struct {
	// RevisionLookupDelay is slept before resolving a log entry to a
	// revision id, tolerating lag in the platform's lookup index.
	RevisionLookupDelay time.Duration `mapstructure:"revision_lookup_delay" json:"revision_lookup_delay"`
}

// ReconnectConfig controls behavior after a feed transport error.
type ReconnectConfig struct {
	// Policy is "client" (retry promptly, leaving pacing to the transport)
	// or "cooldown" (sleep Cooldown after a rate-limit response).
	Policy string `mapstructure:"policy" json:"policy"`
	// Cooldown is the sleep before reopening after a rate-limited close.
	Cooldown time.Duration `mapstructure:"cooldown" json:"cooldown"`
	// Resume is "cursor" (replay from the last persisted position) or
	// "tail" (rejoin at the live tail) when reopening after a rate limit.
	Resume string `mapstructure:"resume" json:"resume"`
}
