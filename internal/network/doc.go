// Package network implements the in-memory semantic network: a typed
// property graph of entities and directed, labeled edges.
//
// # Identity
//
// An Entity is identified by its ID. An Edge is identified by the triplet
// (label, source ID, target ID); labels are not unique, so many edges may
// share one. Self-loops are rejected.
//
// # Indices
//
// The network owns every entity and edge. Edges are keyed by Triplet and
// additionally indexed by label, by source ID and by target ID. The three
// secondary indices hold triplet keys, never pointers, and are updated under
// the same write lock as the primary map, so no reader can observe an edge
// in one index but not another. Empty index buckets are pruned on delete.
//
// # Concurrency
//
// A Network carries its own reader-writer lock: mutations are exclusive,
// reads are shared. Pointers returned by lookups refer to network-owned
// records and must be treated as read-only; use the Update methods to change
// properties.
package network
