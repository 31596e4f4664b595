// Package theme stores the page's dark/light preference next to the notes.
package theme

import (
	"fmt"

	"github.com/starford/blognotes/internal/apperr"
	"github.com/starford/blognotes/internal/kv"
)

// Key is the kv key holding the preference.
const Key = "theme"

const (
	Light = "light"
	Dark  = "dark"
)

// Preference reads and writes the theme. Unknown stored values read as Light.
type Preference struct {
	kv kv.Store
}

// New returns a Preference backed by store.
func New(store kv.Store) *Preference {
	return &Preference{kv: store}
}

// Get returns the saved theme, defaulting to Light.
func (p *Preference) Get() (string, error) {
	v, ok, err := p.kv.Get(Key)
	if err != nil {
		return "", fmt.Errorf("theme: get: %w", err)
	}
	if !ok || v != Dark {
		return Light, nil
	}
	return Dark, nil
}

// Set saves theme, which must be Light or Dark.
func (p *Preference) Set(theme string) error {
	if theme != Light && theme != Dark {
		return &apperr.ValidationError{Field: "theme", Reason: fmt.Sprintf("must be %q or %q", Light, Dark)}
	}
	if err := p.kv.Set(Key, theme); err != nil {
		return fmt.Errorf("theme: set: %w", err)
	}
	return nil
}

// Toggle flips the saved theme and returns the new value.
func (p *Preference) Toggle() (string, error) {
	cur, err := p.Get()
	if err != nil {
		return "", err
	}
	next := Dark
	if cur == Dark {
		next = Light
	}
	return next, p.Set(next)
}
