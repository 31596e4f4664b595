// Package noteservice wires the builder, store and renderer into the
// user-facing note operations shared by the HTTP, MCP and CLI surfaces.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/starford/blognotes/internal/apperr"
	"github.com/starford/blognotes/internal/attach"
	"github.com/starford/blognotes/internal/builder"
	"github.com/starford/blognotes/internal/models"
	"github.com/starford/blognotes/internal/notestore"
	"github.com/starford/blognotes/internal/render"
)

// Change kinds passed to a Publisher.
const (
	ChangeSaved    = "saved"
	ChangeDeleted  = "deleted"
	ChangeImported = "imported"
	ChangeReloaded = "reloaded"
)

// Publisher is told about every change to the stored collection.
type Publisher interface {
	PublishChange(kind string, id int64)
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the change listener.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithRenderCacheTTL sets how long rendered markup is kept per stored value.
func WithRenderCacheTTL(ttl time.Duration) Option {
	return func(s *Service) { s.cacheTTL = ttl }
}

// Service coordinates note operations.
type Service struct {
	store    *notestore.Store
	builder  *builder.Builder
	renderer *render.Renderer
	events   Publisher
	logger   *slog.Logger

	cacheTTL time.Duration
	rendered *cache.Cache
}

// New creates a note service.
func New(store *notestore.Store, b *builder.Builder, r *render.Renderer, opts ...Option) *Service {
	s := &Service{
		store:    store,
		builder:  b,
		renderer: r,
		logger:   slog.Default(),
		cacheTTL: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rendered = cache.New(s.cacheTTL, 2*s.cacheTTL)
	return s
}

// Rendered is the markup for one version of the stored collection.
type Rendered struct {
	HTML string
	ETag string
}

// List returns the stored collection, newest first.
func (s *Service) List(_ context.Context) (models.Collection, error) {
	return s.store.Load()
}

// Render renders the stored collection. Markup is cached by the fingerprint of
// the stored value, so unchanged collections are not re-rendered.
func (s *Service) Render(_ context.Context) (Rendered, error) {
	raw, ok, err := s.store.ExportRaw()
	if err != nil {
		return Rendered{}, err
	}
	etag := notestore.Fingerprint(raw)
	if x, found := s.rendered.Get(etag); found {
		return Rendered{HTML: x.(string), ETag: etag}, nil
	}

	c := models.Collection{}
	if ok {
		if decoded, decErr := notestore.Decode([]byte(raw)); decErr == nil {
			c = decoded
		}
	}
	html, err := s.renderer.Render(c)
	if err != nil {
		return Rendered{}, err
	}
	s.rendered.Set(etag, html, cache.DefaultExpiration)
	return Rendered{HTML: html, ETag: etag}, nil
}

// Save builds a note from the editor input and the files staged in tracker,
// stores it at the front of the collection and clears tracker. On a validation
// error nothing is stored and tracker is left as it was. tracker may be nil.
func (s *Service) Save(ctx context.Context, title, contentHTML string, tracker *attach.Tracker) (models.Note, error) {
	var n models.Note
	save := func(files []models.Attachment) error {
		built, err := s.builder.Build(title, contentHTML, files)
		if err != nil {
			return err
		}
		if _, err := s.store.Prepend(built); err != nil {
			return fmt.Errorf("noteservice: save: %w", err)
		}
		n = built
		return nil
	}

	var err error
	if tracker != nil {
		err = tracker.Commit(save)
	} else {
		err = save(nil)
	}
	if err != nil {
		return models.Note{}, err
	}

	s.logger.InfoContext(ctx, "note saved",
		slog.Int64("id", n.ID),
		slog.Int("attachments", len(n.Files)))
	s.publish(ChangeSaved, n.ID)
	return n, nil
}

// Delete removes the note with id. It returns apperr.ErrNotFound when no note
// has that id; the stored collection is untouched in that case.
func (s *Service) Delete(ctx context.Context, id int64) error {
	removed, err := s.store.DeleteByID(id)
	if err != nil {
		return fmt.Errorf("noteservice: delete: %w", err)
	}
	if !removed {
		return apperr.ErrNotFound
	}
	s.logger.InfoContext(ctx, "note deleted", slog.Int64("id", id))
	s.publish(ChangeDeleted, id)
	return nil
}

// Export returns the stored value for download, or apperr.ErrEmptyStore when
// nothing has been saved yet.
func (s *Service) Export(_ context.Context) (string, error) {
	raw, ok, err := s.store.ExportRaw()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperr.ErrEmptyStore
	}
	return raw, nil
}

// Import replaces the collection with text. A payload that is not a note
// collection yields *apperr.ParseError and leaves the store unchanged.
func (s *Service) Import(ctx context.Context, text string) error {
	if err := s.store.ImportRaw(text); err != nil {
		if apperr.IsParse(err) {
			s.logger.WarnContext(ctx, "import rejected", slog.String("error", err.Error()))
		}
		return err
	}
	s.logger.InfoContext(ctx, "notes imported", slog.Int("bytes", len(text)))
	s.publish(ChangeImported, 0)
	return nil
}

// NotifyExternalChange tells listeners the backing store was modified outside
// this process.
func (s *Service) NotifyExternalChange(ctx context.Context) {
	s.logger.DebugContext(ctx, "external change detected")
	s.publish(ChangeReloaded, 0)
}

// Fingerprint returns the fingerprint of the current stored value, or "" when
// nothing is stored.
func (s *Service) Fingerprint(_ context.Context) (string, error) {
	raw, ok, err := s.store.ExportRaw()
	if err != nil || !ok {
		return "", err
	}
	return notestore.Fingerprint(raw), nil
}

func (s *Service) publish(kind string, id int64) {
	if s.events != nil {
		s.events.PublishChange(kind, id)
	}
}

// IsUserError reports whether err should be shown to the user as-is rather
// than logged as an internal failure.
func IsUserError(err error) bool {
	return apperr.IsValidation(err) || apperr.IsParse(err) ||
		errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrEmptyStore)
}
