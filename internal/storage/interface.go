package storage

import "errors"

// ErrNotFound is returned by Get when the key has never been written
var ErrNotFound = errors.New("key not found")

// Provider is a durable key-value store. The engine keeps its whole state
// under a single key, so implementations only need whole-value reads and
// writes.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Values
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error

	// Utils
	GetConfigPath() string
}

// Migratable is implemented by SQL-backed providers with a versioned schema
type Migratable interface {
	RunMigrations() error
	SchemaVersion() (current, latest int, err error)
}
