package internal

import (
	"fmt"
	"log/slog"

	"github.com/starford/blognotes/internal/builder"
	"github.com/starford/blognotes/internal/kv"
	"github.com/starford/blognotes/internal/noteservice"
	"github.com/starford/blognotes/internal/notestore"
	"github.com/starford/blognotes/internal/render"
	"github.com/starford/blognotes/internal/theme"
)

// Core is the storage-backed state shared by the server, the MCP server and
// the one-shot CLI commands.
type Core struct {
	KV      kv.Store
	Notes   *noteservice.Service
	Theme   *theme.Preference
	Storage StorageConfig
}

// OpenCore opens the configured backend and builds the note service on it.
// Extra service options (publisher) are appended after the configured ones.
func OpenCore(cfg *Config, logger *slog.Logger, opts ...noteservice.Option) (*Core, error) {
	loc, err := cfg.Notes.Location()
	if err != nil {
		return nil, fmt.Errorf("notes timezone: %w", err)
	}

	store, err := kv.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	b := builder.New(
		builder.WithLayout(cfg.Notes.TimestampLayout),
		builder.WithLocation(loc),
	)
	svcOpts := append([]noteservice.Option{
		noteservice.WithLogger(logger),
		noteservice.WithRenderCacheTTL(cfg.Notes.RenderCacheTTL),
	}, opts...)

	return &Core{
		KV:      store,
		Notes:   noteservice.New(notestore.New(store, logger), b, render.New(), svcOpts...),
		Theme:   theme.New(store),
		Storage: cfg.Storage,
	}, nil
}

// Close releases the backend.
func (c *Core) Close() error {
	return c.KV.Close()
}
