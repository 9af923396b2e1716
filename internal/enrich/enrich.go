// Package enrich augments an accepted filter-hit event with auxiliary facts
// from the wiki's query API. Every lookup is best-effort: a failure degrades
// to a fallback value and never aborts the event.
package enrich

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/filterwatch/filterwatch-agent/internal/mwapi"
)

// UnknownFilterDescription is substituted when a filter's description cannot
// be fetched (private filter, API failure).
const UnknownFilterDescription = "unknown or private filter"

// API is the subset of the query API the enricher depends on.
type API interface {
	FilterDescription(ctx context.Context, id int) (string, error)
	RevisionForLogEntry(ctx context.Context, logID int64) (int64, error)
	CompareWithPrevious(ctx context.Context, revID int64) (mwapi.Diff, error)
}

// Enriched carries the lookup results for one event. Nil pointers mean the
// corresponding lookup failed or did not apply.
type Enriched struct {
	FilterDescription string
	RevisionID        *int64
	SizeDelta         *int
	EditComment       string
	NewPage           bool
}

// Enricher runs the lookup chain. It is constructed once and shared by all
// events; the cache inside it is the only mutable state.
type Enricher struct {
	api           API
	cache         *Cache
	revisionDelay time.Duration
}

// New returns an Enricher using api. revisionDelay is slept before the
// revision-id lookup to tolerate lag in the platform's abuse-log index.
func New(api API, cache *Cache, revisionDelay time.Duration) *Enricher {
	return &Enricher{api: api, cache: cache, revisionDelay: revisionDelay}
}

// Enrich performs the lookup chain for one event: filter description,
// revision id, then diff metrics. It never returns an error; each step
// falls back independently.
func (e *Enricher) Enrich(ctx context.Context, filterID int, logID int64) Enriched {
	out := Enriched{
		FilterDescription: e.describeFilter(ctx, filterID),
	}

	// The abuse-log index lags the event feed slightly; give it a moment
	// before asking which revision the log entry produced.
	if e.revisionDelay > 0 {
		timer := time.NewTimer(e.revisionDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return out
		case <-timer.C:
		}
	}

	revID, err := e.api.RevisionForLogEntry(ctx, logID)
	if err != nil {
		if errors.Is(err, mwapi.ErrNotFound) {
			slog.Debug("enrich: log entry has no associated revision", "log_id", logID)
		} else {
			slog.Warn("enrich: revision lookup failed", "log_id", logID, "error", err)
		}
		return out // no revision: diff metrics do not apply
	}
	out.RevisionID = &revID

	diff, err := e.api.CompareWithPrevious(ctx, revID)
	if err != nil {
		slog.Warn("enrich: diff lookup failed", "revid", revID, "error", err)
		return out
	}
	out.NewPage = diff.NewPage
	if !diff.NewPage {
		delta := diff.SizeDelta
		out.SizeDelta = &delta
	}
	out.EditComment = diff.EditComment
	return out
}

// describeFilter resolves the filter description through the cache. Sentinel
// values are never cached, so a later success can still populate the entry.
func (e *Enricher) describeFilter(ctx context.Context, filterID int) string {
	if desc, ok := e.cache.Get(filterID); ok {
		return desc
	}
	desc, err := e.api.FilterDescription(ctx, filterID)
	if err != nil {
		if errors.Is(err, mwapi.ErrNotFound) {
			slog.Debug("enrich: filter is private or unknown", "filter", filterID)
		} else {
			slog.Warn("enrich: filter description lookup failed", "filter", filterID, "error", err)
		}
		return UnknownFilterDescription
	}
	e.cache.Put(filterID, desc)
	return desc
}
