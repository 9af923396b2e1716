package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/filterwatch/filterwatch-agent/internal/config"
	"github.com/filterwatch/filterwatch-agent/internal/cursor"
)

// Handler consumes one decoded feed event. Events are delivered in feed
// order, one at a time.
type Handler func(ctx context.Context, ev *RawEvent)

// Supervisor owns the single upstream subscription: it opens the SSE feed,
// hands each event to its handler, and reconnects on transport errors. On
// context cancellation it closes the subscription and returns.
type Supervisor struct {
	url        string
	userAgent  string
	policy     string
	cooldown   time.Duration
	resumeTail bool
	handler    Handler
	client     *http.Client

	// resume is the position the next (re)connection resumes after.
	// nil means "start from the feed's current tail".
	resume *cursor.Position
}

// NewSupervisor returns a Supervisor for url. When resume is non-nil the
// first connection replays from just after that position.
func NewSupervisor(url, userAgent string, rc config.ReconnectConfig, resume *cursor.Position, handler Handler) *Supervisor {
	return &Supervisor{
		url:        url,
		userAgent:  userAgent,
		policy:     rc.Policy,
		cooldown:   rc.Cooldown,
		resumeTail: rc.Resume == "tail",
		handler:    handler,
		resume:     resume,
		// No client timeout: the subscription is a long-lived streaming read.
		client: &http.Client{},
	}
}

// Run subscribes and keeps the subscription alive until ctx is cancelled.
// It only returns a non-nil error for conditions no reconnect can fix.
func (s *Supervisor) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return nil
		}

		delivered, rateLimited, err := s.subscribe(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if delivered > 0 {
			backoff = time.Second
		}

		switch {
		case rateLimited && s.policy == "cooldown":
			if s.resumeTail {
				// Rejoin at the live tail rather than replaying the backlog.
				s.resume = nil
			}
			slog.Warn("stream: feed rate-limited, cooling down",
				"cooldown", s.cooldown, "resume_tail", s.resumeTail)
			if !sleep(ctx, s.cooldown) {
				return nil
			}
		default:
			slog.Warn("stream: subscription closed, reconnecting",
				"backoff", backoff, "error", err)
			if !sleep(ctx, backoff) {
				return nil
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
		}
	}
}

// subscribe opens one connection and pumps events until it breaks. It
// returns how many events were delivered and whether the server closed the
// subscription with a rate-limit response.
func (s *Supervisor) subscribe(ctx context.Context) (delivered int, rateLimited bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return 0, false, fmt.Errorf("building stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("User-Agent", s.userAgent)
	if s.resume != nil {
		id, _ := json.Marshal([]cursor.Position{*s.resume})
		req.Header.Set("Last-Event-ID", string(id))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("opening stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return 0, true, fmt.Errorf("stream returned 429")
	}
	if resp.StatusCode != http.StatusOK {
		return 0, false, fmt.Errorf("stream returned %d", resp.StatusCode)
	}

	slog.Info("stream: subscribed", "url", s.url, "resume", s.resume)

	err = readFrames(resp.Body, func(f frame) error {
		if f.event != "" && f.event != "message" {
			return nil
		}
		var ev RawEvent
		if err := json.Unmarshal([]byte(f.data), &ev); err != nil {
			slog.Debug("stream: skipping undecodable event", "error", err)
			return nil
		}
		pos := ev.Position()
		s.resume = &pos
		s.handler(ctx, &ev)
		delivered++
		return ctx.Err()
	})
	return delivered, false, err
}

// sleep waits d or until ctx is done; it reports false when cancelled.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
