// Package persistence provides storage-slot implementations for the job
// store. A slot is a single named location holding the whole collection as
// one JSON blob. Backends: plain file, SQLite with WAL mode and an
// in-memory slot for tests and ephemeral runs.
package persistence
