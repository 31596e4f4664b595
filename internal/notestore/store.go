// Package notestore persists the note collection as one JSON value in a kv.Store.
package notestore

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/blognotes/internal/apperr"
	"github.com/starford/blognotes/internal/kv"
	"github.com/starford/blognotes/internal/models"
)

// CollectionKey is the kv key holding the serialized collection.
const CollectionKey = "blogNotes"

// Store reads and writes the whole collection.
//
// Every public method holds mu for its full read-modify-write, so two callers can
// never interleave a load and a save.
type Store struct {
	mu     sync.Mutex
	kv     kv.Store
	logger *slog.Logger
}

// New creates a Store on top of backend.
func New(backend kv.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: backend, logger: logger}
}

// Load returns the stored collection. An absent or unparseable value yields an
// empty collection; only backend failures are returned as errors.
func (s *Store) Load() (models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save overwrites the stored collection with c.
func (s *Store) Save(c models.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(c)
}

// Prepend puts n at the front of the stored collection and returns the result.
func (s *Store) Prepend(n models.Note) (models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.load()
	if err != nil {
		return nil, err
	}
	next := make(models.Collection, 0, len(cur)+1)
	next = append(next, n)
	next = append(next, cur...)
	if err := s.save(next); err != nil {
		return nil, err
	}
	return next, nil
}

// DeleteByID removes the note with the given id. It reports whether a note was
// removed; an unknown id leaves the stored value untouched.
func (s *Store) DeleteByID(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.load()
	if err != nil {
		return false, err
	}
	next := cur.Without(id)
	if len(next) == len(cur) {
		return false, nil
	}
	if err := s.save(next); err != nil {
		return false, err
	}
	return true, nil
}

// ExportRaw returns the stored value exactly as persisted.
// ok is false when nothing has been stored yet.
func (s *Store) ExportRaw() (raw string, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err = s.kv.Get(CollectionKey)
	if err != nil {
		return "", false, fmt.Errorf("notestore: export: %w", err)
	}
	return raw, ok, nil
}

// ImportRaw replaces the stored collection with text when text parses as a
// collection. On failure it returns a *apperr.ParseError and changes nothing.
// The stored form is text with insignificant whitespace removed.
func (s *Store) ImportRaw(text string) error {
	if _, err := Decode([]byte(text)); err != nil {
		return &apperr.ParseError{Source: "import", Err: err}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return &apperr.ParseError{Source: "import", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(CollectionKey, buf.String()); err != nil {
		return fmt.Errorf("notestore: import: %w", err)
	}
	return nil
}

func (s *Store) load() (models.Collection, error) {
	raw, ok, err := s.kv.Get(CollectionKey)
	if err != nil {
		return nil, fmt.Errorf("notestore: load: %w", err)
	}
	if !ok {
		return models.Collection{}, nil
	}
	c, err := Decode([]byte(raw))
	if err != nil {
		s.logger.Debug("stored collection unreadable, treating as empty", slog.String("error", err.Error()))
		return models.Collection{}, nil
	}
	return c, nil
}

func (s *Store) save(c models.Collection) error {
	data, err := Encode(c)
	if err != nil {
		return fmt.Errorf("notestore: encode: %w", err)
	}
	if err := s.kv.Set(CollectionKey, string(data)); err != nil {
		return fmt.Errorf("notestore: save: %w", err)
	}
	return nil
}

// Decode parses data as a JSON array of notes. A JSON null decodes to an empty
// collection; any other non-array value is an error.
func Decode(data []byte) (models.Collection, error) {
	var c models.Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c == nil {
		c = models.Collection{}
	}
	return c, nil
}

// Encode serializes c the way a browser's JSON.stringify would: compact and
// without escaping HTML characters. Missing attachment lists become [].
func Encode(c models.Collection) ([]byte, error) {
	norm := make(models.Collection, len(c))
	for i, n := range c {
		if n.Files == nil {
			n.Files = []models.Attachment{}
		}
		norm[i] = n
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Fingerprint returns the hex SHA-256 digest of a raw stored value.
func Fingerprint(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}
