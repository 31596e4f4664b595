// Package testutil provides shared test helpers for stores and services.
package testutil

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/blognotes/internal/builder"
	"github.com/starford/blognotes/internal/kv"
	"github.com/starford/blognotes/internal/noteservice"
	"github.com/starford/blognotes/internal/notestore"
	"github.com/starford/blognotes/internal/render"
)

// TestKV creates a SQLite-backed kv store in a temp dir, closed on cleanup.
func TestKV(t *testing.T) kv.Store {
	t.Helper()
	s, err := kv.OpenSQLite(filepath.Join(t.TempDir(), "blognotes-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// StepClock returns a clock starting at start and advancing by step per call.
func StepClock(start time.Time, step time.Duration) builder.Clock {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := cur
		cur = cur.Add(step)
		return now
	}
}

// Recorder is a noteservice.Publisher that remembers every change.
type Recorder struct {
	mu      sync.Mutex
	Changes []string
}

func (r *Recorder) PublishChange(kind string, _ int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Changes = append(r.Changes, kind)
}

// Kinds returns a copy of the recorded change kinds.
func (r *Recorder) Kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Changes))
	copy(out, r.Changes)
	return out
}

// TestService builds a service over backend with a deterministic UTC clock.
func TestService(t *testing.T, backend kv.Store, opts ...noteservice.Option) *noteservice.Service {
	t.Helper()
	start := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	b := builder.New(
		builder.WithClock(StepClock(start, time.Second)),
		builder.WithLocation(time.UTC),
	)
	return noteservice.New(notestore.New(backend, nil), b, render.New(), opts...)
}
