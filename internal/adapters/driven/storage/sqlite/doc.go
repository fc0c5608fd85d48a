// Package sqlite provides the durable SQLite implementations of the
// storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. One database file backs two ports:
//
//   - ProcessedIndex: content hash to processed record, the deduplication ledger
//   - VectorIndex: chunk vectors with text and metadata, searched by brute-force cosine
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.intrafact/data/intrafact.db
//
// # Thread Safety
//
// All operations are thread-safe. Reads run concurrently under SQLite WAL;
// vector writes are additionally serialised by the store.
package sqlite
