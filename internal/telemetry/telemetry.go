// Package telemetry appends structured JSONL events for offline inspection
// and carries the per-turn id through contexts.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// EventsFile is the file name written under Sink.Dir.
const EventsFile = "events.jsonl"

// Sink writes events to Dir/events.jsonl when Enabled. A nil Sink drops everything.
type Sink struct {
	Dir     string
	Enabled bool

	// Errors receives write failures; os.Stderr when nil.
	Errors io.Writer
}

// Emit writes a single JSON line augmented with RFC3339Nano time and the
// event name. Failures are reported to s.Errors and otherwise ignored.
func (s *Sink) Emit(name string, fields map[string]any) {
	if s == nil || !s.Enabled {
		return
	}

	// Make a shallow copy so callers' maps aren't mutated.
	m := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		m[k] = v
	}
	m["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	m["event"] = name

	b, err := json.Marshal(m)
	if err != nil {
		s.errorf("telemetry: marshal %s: %v\n", name, err)
		return
	}

	dir := s.Dir
	if dir == "" {
		dir = ".agent"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.errorf("telemetry: mkdir %s: %v\n", dir, err)
		return
	}

	path := filepath.Join(dir, EventsFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		s.errorf("telemetry: open %s: %v\n", path, err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		s.errorf("telemetry: write %s: %v\n", path, err)
	}
}

func (s *Sink) errorf(format string, args ...any) {
	w := s.Errors
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, format, args...)
}

type turnIDKey struct{}

// NewTurnID returns a fresh turn id.
func NewTurnID() string {
	return "turn-" + uuid.NewString()
}

// WithTurnID returns a child context that carries id.
func WithTurnID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, turnIDKey{}, id)
}

// TurnIDFromContext returns the turn id from ctx, if a non-empty one is present.
func TurnIDFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(turnIDKey{}).(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
