// Package classify decides, per incoming feed event, whether it is an
// abuse-filter hit in scope for notification.
package classify

import (
	"strconv"

	"github.com/filterwatch/filterwatch-agent/internal/cursor"
	"github.com/filterwatch/filterwatch-agent/internal/stream"
)

const (
	logType   = "abusefilter"
	logAction = "hit"
)

// Result is the classifier's verdict. FilterID is only meaningful when
// Accept is true. Reason describes the first failed predicate and is for
// debug logging only.
type Result struct {
	Accept   bool
	FilterID int
	Reason   string
}

func reject(reason string) Result {
	return Result{Reason: reason}
}

// Classify applies the in-scope predicates in order. Rejected events must
// produce no observable effect downstream: no queue entry, no cursor
// advance.
func Classify(ev *stream.RawEvent, wiki string, allow map[int]bool, last *cursor.Position) Result {
	if ev.Wiki != wiki {
		return reject("wrong wiki")
	}
	if ev.Type != "log" {
		return reject("not a log event")
	}
	if ev.LogType != logType || ev.LogAction != logAction {
		return reject("not a filter hit")
	}
	if ev.LogParams.Log == 0 || ev.LogParams.Filter == "" {
		return reject("missing log params")
	}
	filterID, err := strconv.Atoi(ev.LogParams.Filter)
	if err != nil {
		return reject("non-numeric filter id")
	}
	if allow != nil && !allow[filterID] {
		return reject("filter not in allow-list")
	}
	// Replay guard: a reconnect with an explicit resume position re-delivers
	// the event at that position.
	if last != nil && ev.Position().Equal(*last) {
		return reject("already processed")
	}
	return Result{Accept: true, FilterID: filterID}
}
