// Package store provides the SQLite-backed journal of generation runs.
//
// Every finished run, successful or not, is one row in runs; its
// per-function resolution failures are rows in run_failures. The journal is
// append-only and never feeds back into generation.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Listings are ordered by start time, then run ID, so equal timestamps still
// sort deterministically.
package store
