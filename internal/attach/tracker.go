// Package attach stages picked files until they are committed to a saved note.
package attach

import (
	"sync"

	"github.com/starford/blognotes/internal/apperr"
	"github.com/starford/blognotes/internal/models"
)

// Tracker is an in-memory, ordered list of staged files. It is never persisted.
type Tracker struct {
	mu    sync.Mutex
	files []models.FileRef
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Add appends files after the ones already staged.
func (t *Tracker) Add(files ...models.FileRef) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files = append(t.files, files...)
}

// RemoveAt drops the file at index i. An out-of-range index leaves the list as it
// was and returns *apperr.OutOfRangeError for the caller to ignore.
func (t *Tracker) RemoveAt(i int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i < 0 || i >= len(t.files) {
		return &apperr.OutOfRangeError{Index: i, Len: len(t.files)}
	}
	t.files = append(t.files[:i:i], t.files[i+1:]...)
	return nil
}

// Clear empties the list.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files = nil
}

// Len returns the number of staged files.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.files)
}

// Files returns a snapshot of the staged file references.
func (t *Tracker) Files() []models.FileRef {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.FileRef, len(t.files))
	copy(out, t.files)
	return out
}

// Descriptors projects every staged file to its persisted metadata, dropping
// any file contents. The result is never nil.
func (t *Tracker) Descriptors() []models.Attachment {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.descriptors()
}

func (t *Tracker) descriptors() []models.Attachment {
	out := make([]models.Attachment, len(t.files))
	for i, f := range t.files {
		out[i] = f.Descriptor()
	}
	return out
}

// Commit hands the staged descriptors to fn and clears the list only if fn
// succeeds. The tracker stays locked while fn runs, so files staged or removed
// concurrently are applied after the commit and are never lost.
func (t *Tracker) Commit(fn func([]models.Attachment) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := fn(t.descriptors()); err != nil {
		return err
	}
	t.files = nil
	return nil
}
