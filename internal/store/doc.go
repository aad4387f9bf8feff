// Package store persists network snapshots.
//
// A snapshot is an archive.Archive saved under a store-assigned id with a
// logical sequence number and a content hash. The network itself always
// lives in memory; the store only records archives so a network can be
// rebuilt later.
//
// Two backends implement Snapshots:
//   - Store: SQLite, one row per entity and edge
//   - BadgerStore: BadgerDB, one msgpack blob per snapshot
//
// # Ordering and Identity
//
//   - seq is a per-store logical counter, never a timestamp; deleting a
//     snapshot never frees its seq for reuse
//   - List returns snapshots in seq order; Latest picks the highest seq
//   - content_hash is props.Hash over the archive's canonical JSON
//   - Saving an archive whose hash equals the latest snapshot of the same
//     name returns that snapshot instead of writing a new one
//
// # SQLite Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
