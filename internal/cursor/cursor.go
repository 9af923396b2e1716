package cursor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// Position identifies a point in the upstream event feed. Positions are
// totally ordered within a single (topic, partition) and unique per event.
type Position struct {
	Topic     string `json:"topic"`
	Partition int    `json:"partition"`
	Offset    int64  `json:"offset"`
}

// Equal reports whether two positions refer to the same event.
func (p Position) Equal(o Position) bool {
	return p.Topic == o.Topic && p.Partition == o.Partition && p.Offset == o.Offset
}

func (p Position) String() string {
	return fmt.Sprintf("%s[%d]@%d", p.Topic, p.Partition, p.Offset)
}

// Store persists the last successfully processed stream position to a file.
// The on-disk format is a JSON array holding a single position object — the
// array wrapper keeps the format compatible with a future multi-partition
// extension.
type Store struct {
	path string
}

// NewStore returns a Store writing to path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted position. A missing or unreadable file is not an
// error: it returns nil, meaning "start from the feed's current tail".
func (s *Store) Load() *Position {
	data, err := os.ReadFile(s.path)
	if err != nil {
		slog.Debug("cursor: no persisted position", "path", s.path, "error", err)
		return nil
	}
	var positions []Position
	if err := json.Unmarshal(data, &positions); err != nil || len(positions) == 0 {
		slog.Warn("cursor: ignoring unreadable cursor file", "path", s.path, "error", err)
		return nil
	}
	pos := positions[0]
	return &pos
}

// Save persists pos, overwriting the prior value. Failures are logged and
// non-fatal: an un-persisted advance only risks re-delivery after a restart.
func (s *Store) Save(pos Position) {
	data, err := json.Marshal([]Position{pos})
	if err != nil {
		slog.Warn("cursor: encoding position failed", "position", pos, "error", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		slog.Warn("cursor: writing cursor file failed", "path", s.path, "error", err)
	}
}
