package classify

import (
	"testing"

	"github.com/filterwatch/filterwatch-agent/internal/cursor"
	"github.com/filterwatch/filterwatch-agent/internal/stream"
)

func hitEvent() *stream.RawEvent {
	return &stream.RawEvent{
		Wiki:      "enwiki",
		Type:      "log",
		LogType:   "abusefilter",
		LogAction: "hit",
		LogParams: stream.LogParams{Log: 555, Filter: "42"},
		Meta:      stream.Meta{Topic: "t", Partition: 0, Offset: 10},
	}
}

func TestClassifyAccepts(t *testing.T) {
	res := Classify(hitEvent(), "enwiki", nil, nil)
	if !res.Accept {
		t.Fatalf("expected accept, got reject: %s", res.Reason)
	}
	if res.FilterID != 42 {
		t.Errorf("FilterID = %d, want 42", res.FilterID)
	}
}

func TestClassifyRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*stream.RawEvent)
		allow  map[int]bool
		last   *cursor.Position
	}{
		{name: "wrong wiki", mutate: func(ev *stream.RawEvent) { ev.Wiki = "dewiki" }},
		{name: "edit event", mutate: func(ev *stream.RawEvent) { ev.Type = "edit" }},
		{name: "wrong log type", mutate: func(ev *stream.RawEvent) { ev.LogType = "move" }},
		{name: "wrong log action", mutate: func(ev *stream.RawEvent) { ev.LogAction = "modify" }},
		{name: "missing log id", mutate: func(ev *stream.RawEvent) { ev.LogParams.Log = 0 }},
		{name: "missing filter id", mutate: func(ev *stream.RawEvent) { ev.LogParams.Filter = "" }},
		{name: "non-numeric filter id", mutate: func(ev *stream.RawEvent) { ev.LogParams.Filter = "private" }},
		{name: "not in allow-list", mutate: func(ev *stream.RawEvent) {}, allow: map[int]bool{7: true}},
		{
			name:   "replay of persisted position",
			mutate: func(ev *stream.RawEvent) {},
			last:   &cursor.Position{Topic: "t", Partition: 0, Offset: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := hitEvent()
			tt.mutate(ev)
			res := Classify(ev, "enwiki", tt.allow, tt.last)
			if res.Accept {
				t.Fatalf("expected reject for %s", tt.name)
			}
			if res.Reason == "" {
				t.Error("reject without a reason")
			}
		})
	}
}

func TestClassifyAllowListMembership(t *testing.T) {
	res := Classify(hitEvent(), "enwiki", map[int]bool{42: true}, nil)
	if !res.Accept {
		t.Fatalf("expected accept for allow-listed filter, got: %s", res.Reason)
	}
}

func TestClassifyDifferentPositionNotReplay(t *testing.T) {
	last := &cursor.Position{Topic: "t", Partition: 0, Offset: 9}
	res := Classify(hitEvent(), "enwiki", nil, last)
	if !res.Accept {
		t.Fatalf("expected accept for newer position, got: %s", res.Reason)
	}
}
