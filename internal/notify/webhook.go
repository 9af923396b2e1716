package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookSender posts notifications to a Discord-compatible webhook endpoint.
type WebhookSender struct {
	url       string
	username  string
	avatarURL string
	userAgent string
	client    *http.Client
}

// NewWebhookSender returns a WebhookSender for url.
func NewWebhookSender(url, username, avatarURL, userAgent string) *WebhookSender {
	return &WebhookSender{
		url:       url,
		username:  username,
		avatarURL: avatarURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type embedAuthor struct {
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embed struct {
	Description string      `json:"description"`
	Color       int         `json:"color"`
	Author      embedAuthor `json:"author"`
	Footer      embedFooter `json:"footer"`
}

type webhookPayload struct {
	Embeds    []embed `json:"embeds"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Username  string  `json:"username,omitempty"`
}

// Send posts one notification. A 429 response is returned as a
// *RateLimitError carrying the server's retry_after; any other non-2xx
// response is a terminal error for the item.
func (w *WebhookSender) Send(ctx context.Context, n *Notification) error {
	payload := webhookPayload{
		Embeds: []embed{{
			Description: n.Description,
			Color:       n.Color,
			Author:      embedAuthor{Name: n.AuthorName, URL: n.AuthorURL, IconURL: n.AuthorIcon},
			Footer:      embedFooter{Text: n.Footer},
		}},
		AvatarURL: w.avatarURL,
		Username:  w.username,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", w.userAgent)

	resp, err := w.client.Do(req) // #nosec G107 -- URL is the user-configured webhook endpoint
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		var body struct {
			RetryAfter float64 `json:"retry_after"`
		}
		// An absent or unparseable retry_after leaves RetryAfter zero; the
		// queue substitutes its default wait.
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &RateLimitError{RetryAfter: time.Duration(body.RetryAfter * float64(time.Second))}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
