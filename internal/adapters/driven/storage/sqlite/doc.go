// Package sqlite provides a SQLite-based implementation of the comment store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files,
// and applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.imgscout/data/comments.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. In the application every call
// arrives from the repository's single storage worker, so there is no write
// contention.
package sqlite
