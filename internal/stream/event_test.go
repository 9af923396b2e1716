package stream

import (
	"encoding/json"
	"testing"
)

func TestRawEventDecode(t *testing.T) {
	raw := `{
		"wiki": "enwiki",
		"type": "log",
		"log_type": "abusefilter",
		"log_action": "hit",
		"log_params": {"log": 12345, "filter": "100"},
		"title": "Some Page",
		"user": "Example",
		"log_action_comment": "Example triggered filter 100",
		"timestamp": 1700000000,
		"meta": {"domain": "en.wikipedia.org", "topic": "eqiad.mediawiki.recentchange", "partition": 0, "offset": 42}
	}`
	var ev RawEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.LogParams.Log != 12345 || ev.LogParams.Filter != "100" {
		t.Errorf("log_params = %+v", ev.LogParams)
	}
	pos := ev.Position()
	if pos.Topic != "eqiad.mediawiki.recentchange" || pos.Offset != 42 {
		t.Errorf("position = %v", pos)
	}
	if ev.CommentText() != "Example triggered filter 100" {
		t.Errorf("comment = %q", ev.CommentText())
	}
}

func TestLogParamsToleratesLegacyArrayForm(t *testing.T) {
	var ev RawEvent
	if err := json.Unmarshal([]byte(`{"log_params": ["legacy", "array"]}`), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.LogParams.Log != 0 || ev.LogParams.Filter != "" {
		t.Errorf("expected zero log_params for legacy form, got %+v", ev.LogParams)
	}
}

func TestCommentTextPrefersComment(t *testing.T) {
	ev := RawEvent{Comment: "a", LogActionComment: "b"}
	if ev.CommentText() != "a" {
		t.Errorf("got %q, want comment field", ev.CommentText())
	}
}
