package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/filterwatch/filterwatch-agent/internal/enrich"
	"github.com/filterwatch/filterwatch-agent/internal/markup"
	"github.com/filterwatch/filterwatch-agent/internal/stream"
)

// boldDeltaThreshold is the absolute byte delta at which the figure is
// rendered in emphasis.
const boldDeltaThreshold = 500

// footerTimeFormat is the fixed long format for the absolute UTC timestamp.
const footerTimeFormat = "Monday, 2 January 2006 15:04:05 MST"

// Notification is the final payload for one filter hit. Immutable once
// built; discarded after a terminal delivery outcome.
type Notification struct {
	Description string
	Color       int
	AuthorName  string
	AuthorURL   string
	AuthorIcon  string
	Footer      string
}

// Builder maps a classified event plus its enrichment results into a
// Notification. It is stateless apart from the configured wiki domain and
// the comment renderer.
type Builder struct {
	scriptBase  string // https://<domain>/w/index.php
	articleBase string // https://<domain>/wiki
	render      func(string) string
}

// NewBuilder returns a Builder for the wiki at domain. render rewrites wiki
// markup in comments; pass nil for plain passthrough.
func NewBuilder(domain string, render func(string) string) *Builder {
	if render == nil {
		render = func(s string) string { return s }
	}
	return &Builder{
		scriptBase:  "https://" + domain + "/w/index.php",
		articleBase: "https://" + domain + "/wiki",
		render:      render,
	}
}

// Build renders the notification for one accepted, enriched event.
func (b *Builder) Build(ev *stream.RawEvent, enr enrich.Enriched, filterID int) *Notification {
	cat := Categorize(enr.SizeDelta, enr.NewPage)

	var parts []string
	parts = append(parts, b.linkSet(ev, enr)...)
	if ev.Title != "" {
		parts = append(parts, "**"+ev.Title+"**")
	}
	parts = append(parts, b.deltaText(ev, enr))
	if enr.FilterDescription != "" {
		parts = append(parts, "— "+enr.FilterDescription)
	}

	lines := []string{strings.Join(parts, " ")}
	if comment := b.render(ev.CommentText()); comment != "" {
		lines = append(lines, b.linkSelfReference(comment, ev.User))
	}
	if enr.EditComment != "" {
		lines = append(lines, "_"+b.render(enr.EditComment)+"_")
	}

	ts := time.Unix(ev.Timestamp, 0).UTC().Format(footerTimeFormat)
	return &Notification{
		Description: strings.Join(lines, "\n"),
		Color:       cat.Color(),
		AuthorName:  ev.User,
		AuthorURL:   b.userURL(ev.User),
		AuthorIcon:  cat.Icon(),
		Footer:      fmt.Sprintf("Filter #%d • %s", filterID, ts),
	}
}

// linkSet builds the leading links in their fixed order: diff (or new-page
// view), page history, abuse-log entry.
func (b *Builder) linkSet(ev *stream.RawEvent, enr enrich.Enriched) []string {
	var links []string
	if enr.RevisionID != nil {
		if enr.NewPage {
			links = append(links, fmt.Sprintf("[new](%s?oldid=%d)", b.scriptBase, *enr.RevisionID))
		} else {
			links = append(links, fmt.Sprintf("[diff](%s?diff=%d)", b.scriptBase, *enr.RevisionID))
		}
	}
	links = append(links,
		fmt.Sprintf("[hist](%s?title=%s&action=history)", b.scriptBase, markup.EscapeTitle(ev.Title)),
		fmt.Sprintf("[log](%s/Special:AbuseLog/%d)", b.articleBase, ev.LogParams.Log),
	)
	return links
}

// deltaText renders the bracketed byte-delta figure, bold at and above the
// threshold, or falls back to the log type/action pair when no delta exists.
func (b *Builder) deltaText(ev *stream.RawEvent, enr enrich.Enriched) string {
	if enr.SizeDelta == nil {
		return ev.LogType + " . . " + ev.LogAction
	}
	delta := *enr.SizeDelta
	if delta >= boldDeltaThreshold || delta <= -boldDeltaThreshold {
		return fmt.Sprintf("(**%+d**)", delta)
	}
	return fmt.Sprintf("(%+d)", delta)
}

// linkSelfReference hyperlinks the acting user's own name when it is the
// very first token of the comment, pointing at their profile, talk, and
// contributions pages.
func (b *Builder) linkSelfReference(comment, user string) string {
	if user == "" || !strings.HasPrefix(comment, user) {
		return comment
	}
	rest := comment[len(user):]
	if rest != "" && rest[0] != ' ' {
		return comment
	}
	return fmt.Sprintf("[%s](%s) ([talk](%s/User_talk:%s) | [contribs](%s/Special:Contributions/%s))%s",
		user, b.userURL(user),
		b.articleBase, markup.EscapeTitle(user),
		b.articleBase, markup.EscapeTitle(user),
		rest)
}

func (b *Builder) userURL(user string) string {
	return b.articleBase + "/User:" + markup.EscapeTitle(user)
}
