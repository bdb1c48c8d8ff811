package domain

import "context"

// Database defines lifecycle operations for the underlying store.
// Each implementation (SQLite, MongoDB) owns its own schema or index
// setup, so the backend can be swapped without touching services.
type Database interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
	Users() UserRepository
	Posts() PostRepository
}
