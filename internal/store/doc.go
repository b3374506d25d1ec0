// Package store provides SQLite-backed persistent parameter sets.
//
// A store database holds one table, params(name, value), where value is
// the compact JSON encoding of a parameter. Writers open the database with
// Open; renderers that only need to read a parameter set use OpenReadOnly,
// which never creates or migrates the file.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Names are compared and ordered with COLLATE BINARY, so Names and
// Snapshot return the same order as params.Map.Names.
package store
