// Package store provides the SQLite-backed lifecycle journal.
//
// Every event the engine runtime records (built, grant, booting, booted,
// failed, destroyed, deprecation) is appended to lifecycle_events, and each
// instance gets one row in instances carrying its parent link.
//
// Ordering uses seq INTEGER from the engine's logical clock, never
// timestamps. All reads are ORDER BY seq ASC. Writes are idempotent per seq,
// so replaying the same journal into a store is harmless.
//
// *Store satisfies engine.Journal.
package store
