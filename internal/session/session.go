// Package session keeps one attachment tracker per page session.
package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/starford/blognotes/internal/attach"
)

// Registry maps session ids to trackers. Idle sessions expire after the TTL,
// taking their staged files with them.
type Registry struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewRegistry creates a registry whose sessions live for ttl after last use.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Registry{
		cache: cache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// Tracker returns the tracker for id, creating it on first use, and extends the
// session's lifetime.
func (r *Registry) Tracker(id string) *attach.Tracker {
	if x, found := r.cache.Get(id); found {
		t := x.(*attach.Tracker)
		r.cache.Set(id, t, cache.DefaultExpiration)
		return t
	}
	t := attach.NewTracker()
	if err := r.cache.Add(id, t, cache.DefaultExpiration); err != nil {
		// Lost a race with a concurrent first request for the same id.
		if x, found := r.cache.Get(id); found {
			return x.(*attach.Tracker)
		}
		r.cache.Set(id, t, cache.DefaultExpiration)
	}
	return t
}

// End drops the session and its staged files.
func (r *Registry) End(id string) {
	r.cache.Delete(id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.cache.ItemCount()
}

// TTL returns the idle lifetime of a session.
func (r *Registry) TTL() time.Duration {
	return r.ttl
}
