package stream

import (
	"strings"
	"testing"
)

func TestReadFramesParsesEventsAndIDs(t *testing.T) {
	wire := strings.Join([]string{
		": keepalive",
		"event: message",
		`id: [{"topic":"t","partition":0,"offset":1}]`,
		`data: {"wiki":"enwiki"}`,
		"",
		"event: message",
		`data: {"wiki":"dewiki"}`,
		"",
	}, "\n")

	var got []frame
	err := readFrames(strings.NewReader(wire), func(f frame) error {
		got = append(got, f)
		return nil
	})
	if err != nil {
		t.Fatalf("readFrames: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(got))
	}
	if got[0].event != "message" || got[0].data != `{"wiki":"enwiki"}` {
		t.Errorf("frame 0 = %+v", got[0])
	}
	if got[0].id == "" {
		t.Error("frame 0 lost its id field")
	}
	if got[1].data != `{"wiki":"dewiki"}` {
		t.Errorf("frame 1 = %+v", got[1])
	}
}

func TestReadFramesJoinsMultilineData(t *testing.T) {
	wire := "data: {\ndata: \"a\": 1}\n\n"
	var got []frame
	if err := readFrames(strings.NewReader(wire), func(f frame) error {
		got = append(got, f)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].data != "{\n\"a\": 1}" {
		t.Fatalf("got %+v", got)
	}
}

func TestReadFramesFlushesTrailingFrame(t *testing.T) {
	var got []frame
	if err := readFrames(strings.NewReader("data: tail"), func(f frame) error {
		got = append(got, f)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].data != "tail" {
		t.Fatalf("got %+v", got)
	}
}

func TestReadFramesSkipsCommentOnlyBlocks(t *testing.T) {
	var got []frame
	if err := readFrames(strings.NewReader(": ping\n\n: ping\n\n"), func(f frame) error {
		got = append(got, f)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no frames, got %d", len(got))
	}
}
