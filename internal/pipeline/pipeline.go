// Package pipeline wires the ingestion → enrichment → delivery chain and
// owns all of its mutable state: the cursor store, the description cache,
// the delivery queue, and the last processed position.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/filterwatch/filterwatch-agent/internal/classify"
	"github.com/filterwatch/filterwatch-agent/internal/config"
	"github.com/filterwatch/filterwatch-agent/internal/cursor"
	"github.com/filterwatch/filterwatch-agent/internal/enrich"
	"github.com/filterwatch/filterwatch-agent/internal/markup"
	"github.com/filterwatch/filterwatch-agent/internal/mwapi"
	"github.com/filterwatch/filterwatch-agent/internal/notify"
	"github.com/filterwatch/filterwatch-agent/internal/stream"
)

// Pipeline is the process-lifetime owner of the notification pipeline.
// Constructed at startup, torn down when Run returns.
type Pipeline struct {
	cfg      *config.Config
	store    *cursor.Store
	lastPos  *cursor.Position
	allow    map[int]bool
	enricher *enrich.Enricher
	builder  *notify.Builder
	queue    *notify.Queue
	sup      *stream.Supervisor
}

// New builds a Pipeline from cfg, loading the persisted cursor so the
// subscription resumes where the previous run left off.
func New(cfg *config.Config) *Pipeline {
	store := cursor.NewStore(cfg.CursorPath)
	last := store.Load()

	api := mwapi.New(cfg.API.URL, cfg.UserAgent)
	render := markup.Renderer("https://" + cfg.Stream.Domain + "/wiki")
	sender := notify.NewWebhookSender(cfg.Webhook.URL, cfg.Webhook.Username, cfg.Webhook.AvatarURL, cfg.UserAgent)

	p := &Pipeline{
		cfg:      cfg,
		store:    store,
		lastPos:  last,
		allow:    cfg.AllowList(),
		enricher: enrich.New(api, enrich.NewCache(), cfg.Enrich.RevisionLookupDelay),
		builder:  notify.NewBuilder(cfg.Stream.Domain, render),
		queue:    notify.NewQueue(sender, cfg.Drain.RetryAfterDefault),
	}
	p.sup = stream.NewSupervisor(cfg.Stream.URL, cfg.UserAgent, cfg.Reconnect, last, p.HandleEvent)
	return p
}

// Run starts the drain schedule and consumes the feed until ctx is
// cancelled. The subscription is closed and the drain timer halted before
// Run returns.
func (p *Pipeline) Run(ctx context.Context) error {
	c := cron.New()
	spec := fmt.Sprintf("@every %s", p.cfg.Drain.Every)
	if _, err := c.AddFunc(spec, func() { p.queue.Drain(ctx) }); err != nil {
		return fmt.Errorf("registering drain schedule %q: %w", spec, err)
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	slog.Info("pipeline: running",
		"stream", p.cfg.Stream.URL,
		"wiki", p.cfg.Stream.Wiki,
		"filters", p.cfg.FilterIDs,
		"resume", p.lastPos,
		"drain_every", p.cfg.Drain.Every,
	)
	return p.sup.Run(ctx)
}

// HandleEvent processes one feed event: classify, enrich, build, enqueue,
// then advance the cursor. The cursor is persisted only after the
// notification is enqueued — never before, and never skipped.
func (p *Pipeline) HandleEvent(ctx context.Context, ev *stream.RawEvent) {
	res := classify.Classify(ev, p.cfg.Stream.Wiki, p.allow, p.lastPos)
	if !res.Accept {
		slog.Debug("pipeline: event rejected", "reason", res.Reason, "wiki", ev.Wiki, "type", ev.Type)
		return
	}

	enr := p.enricher.Enrich(ctx, res.FilterID, ev.LogParams.Log)
	n := p.builder.Build(ev, enr, res.FilterID)
	p.queue.Push(n)

	pos := ev.Position()
	p.store.Save(pos)
	p.lastPos = &pos

	slog.Info("pipeline: notification queued",
		"filter", res.FilterID, "title", ev.Title, "user", ev.User, "position", pos.String())
}

// Pending reports the number of notifications awaiting delivery.
func (p *Pipeline) Pending() int {
	return p.queue.Len()
}
