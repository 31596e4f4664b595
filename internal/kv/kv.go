// Package kv provides durable string key-value stores used as the notes backend.
package kv

import (
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Store is a durable string key-value store.
// Get reports ok=false when the key has never been set or was removed.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
	Close() error
}

// Open returns the backend named by backend, rooted at path.
// For sqlite path is the database file, for file it is a directory.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(backend) {
	case BackendSQLite, "":
		return OpenSQLite(path)
	case BackendFile:
		return NewDir(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("kv: unknown backend %q", backend)
	}
}
