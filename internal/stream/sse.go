package stream

import (
	"bufio"
	"io"
	"strings"
)

// frame is a single server-sent event as read off the wire.
type frame struct {
	event string
	data  string
	id    string
}

// maxLineSize bounds a single SSE line. Recent-change events with large
// comments stay well under this.
const maxLineSize = 1 << 20

// readFrames parses the SSE wire format from r and calls emit for each
// complete frame. It returns when r is exhausted (io.EOF is reported as nil)
// or emit returns an error.
func readFrames(r io.Reader, emit func(frame) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var cur frame
	var dataLines []string
	dispatch := func() error {
		if len(dataLines) == 0 {
			cur = frame{}
			return nil
		}
		cur.data = strings.Join(dataLines, "\n")
		err := emit(cur)
		cur = frame{}
		dataLines = nil
		return err
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if err := dispatch(); err != nil {
				return err
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue // comment / keepalive
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			cur.event = value
		case "data":
			dataLines = append(dataLines, value)
		case "id":
			cur.id = value
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	// Flush a trailing frame that was not terminated by a blank line.
	return dispatch()
}
