package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Sender delivers a single notification. Implemented by WebhookSender; tests
// substitute fakes.
type Sender interface {
	Send(ctx context.Context, n *Notification) error
}

// RateLimitError reports a rate-limited delivery attempt with the
// server-specified wait. A zero RetryAfter means the server gave no usable
// value; the queue falls back to its configured default.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// Queue is the ordered, in-memory delivery queue. It is FIFO except that a
// rate-limited item is reinserted at the head, preserving its order against
// items not yet attempted. Drained by at most one worker at a time.
type Queue struct {
	sender       Sender
	retryDefault time.Duration

	mu       sync.Mutex
	items    []*Notification
	draining bool
}

// NewQueue returns a Queue delivering through sender. retryDefault is used
// when a rate-limit response carries no usable wait.
func NewQueue(sender Sender, retryDefault time.Duration) *Queue {
	return &Queue{sender: sender, retryDefault: retryDefault}
}

// Push appends n to the tail of the queue.
func (q *Queue) Push(n *Notification) {
	q.mu.Lock()
	q.items = append(q.items, n)
	q.mu.Unlock()
}

// Len reports the number of pending notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain delivers pending notifications until the queue is empty. A Drain
// invoked while another is in progress returns immediately — the draining
// flag gives single-active-drain semantics under periodic scheduling. The
// flag is released only once the queue is empty or ctx is cancelled.
func (q *Queue) Drain(ctx context.Context) {
	q.mu.Lock()
	if q.draining {
		q.mu.Unlock()
		return
	}
	q.draining = true
	q.mu.Unlock()

	for {
		q.mu.Lock()
		if len(q.items) == 0 || ctx.Err() != nil {
			q.draining = false
			q.mu.Unlock()
			return
		}
		n := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		err := q.sender.Send(ctx, n)
		var rl *RateLimitError
		switch {
		case err == nil:
			// Delivered; move straight on to the next item.
		case errors.As(err, &rl):
			wait := rl.RetryAfter
			if wait <= 0 {
				wait = q.retryDefault
			}
			slog.Info("notify: webhook rate-limited, requeueing", "wait", wait)
			q.requeueFront(n)
			if !sleepCtx(ctx, wait) {
				q.release()
				return
			}
		default:
			// Terminal failure: the payload is not safely re-derivable after
			// an unknown partial failure, so the item is dropped.
			slog.Warn("notify: delivery failed, dropping notification", "error", err)
		}
	}
}

func (q *Queue) requeueFront(n *Notification) {
	q.mu.Lock()
	q.items = append([]*Notification{n}, q.items...)
	q.mu.Unlock()
}

func (q *Queue) release() {
	q.mu.Lock()
	q.draining = false
	q.mu.Unlock()
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
