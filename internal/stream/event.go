package stream

import (
	"encoding/json"

	"github.com/filterwatch/filterwatch-agent/internal/cursor"
)

// Meta carries the feed bookkeeping attached to every event.
type Meta struct {
	Domain    string `json:"domain"`
	Topic     string `json:"topic"`
	Partition int    `json:"partition"`
	Offset    int64  `json:"offset"`
}

// LogParams holds the log-entry parameters filterwatch cares about: the
// abuse-log entry id and the filter id (a decimal string upstream).
type LogParams struct {
	Log    int64  `json:"log"`
	Filter string `json:"filter"`
}

// UnmarshalJSON tolerates the legacy array encoding some log events carry
// for log_params; anything that is not an object decodes to the zero value,
// which the classifier treats as "required params absent".
func (p *LogParams) UnmarshalJSON(data []byte) error {
	type plain LogParams
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		*p = LogParams{}
		return nil
	}
	*p = LogParams(obj)
	return nil
}

// RawEvent is an event as received from the feed. Immutable once decoded.
type RawEvent struct {
	Wiki             string    `json:"wiki"`
	Type             string    `json:"type"`
	LogType          string    `json:"log_type"`
	LogAction        string    `json:"log_action"`
	LogParams        LogParams `json:"log_params"`
	Title            string    `json:"title"`
	User             string    `json:"user"`
	Comment          string    `json:"comment"`
	LogActionComment string    `json:"log_action_comment"`
	Timestamp        int64     `json:"timestamp"`
	Meta             Meta      `json:"meta"`
}

// Position returns the event's stream position.
func (e *RawEvent) Position() cursor.Position {
	return cursor.Position{Topic: e.Meta.Topic, Partition: e.Meta.Partition, Offset: e.Meta.Offset}
}

// CommentText returns the event's comment, preferring the plain comment
// field and falling back to log_action_comment.
func (e *RawEvent) CommentText() string {
	if e.Comment != "" {
		return e.Comment
	}
	return e.LogActionComment
}
