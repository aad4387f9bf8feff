// Package engine implements subgraph pattern matching over a network.
//
// A pattern is itself a small network. Search finds every embedding of the
// pattern into a base network: an assignment of pattern entities to base
// entities and pattern labels to base labels such that each pattern edge
// lands on a base edge, both assignments are injective, and every property
// named on the pattern side is present with an equal value on the matched
// side.
//
// ALGORITHM:
//
// 1. The pattern must be non-empty, weakly connected and acyclic; otherwise
// Search fails with a *PatternError before any traversal.
// 2. The start label is the pattern label with the fewest base edges.
// 3. Every base edge matching the seed pattern edge becomes a one-edge Chain.
// 4. The walk visits the remaining pattern edges depth-first through shared
// entities. At each pattern edge every live chain is branched once per
// compatible base edge; chains with no compatible edge are dropped.
// 5. Chains alive after the walk are the complete embeddings.
//
// DETERMINISM:
//
// Pattern edges, neighbours and base candidates are all visited in triplet
// order, so the result order is stable across runs. Parallel search splits
// the seed chains into contiguous groups and concatenates the group results,
// which yields exactly the sequential order.
//
// The matcher only reads. It must not run concurrently with a mutation of
// the base network; concurrent searches over an unchanging network are safe.
package engine
