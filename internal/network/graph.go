package network

import (
	"cmp"
	"slices"
)

// adjacency maps entity id to the sorted ids of its successors.
type adjacency map[string][]string

// adjacencyLocked builds the successor lists over every entity. An empty
// label considers all edges; otherwise only edges carrying label.
func (n *Network) adjacencyLocked(label string) adjacency {
	graph := make(adjacency, len(n.entities))
	for id := range n.entities {
		graph[id] = nil
	}
	for t := range n.edges {
		if label != "" && t.Label != label {
			continue
		}
		graph[t.Source] = append(graph[t.Source], t.Target)
	}
	for id, succ := range graph {
		slices.Sort(succ)
		graph[id] = slices.Compact(succ)
	}
	return graph
}

// IsAcyclic reports whether the edges carrying label form a directed
// acyclic graph over the entities. An empty label considers every edge,
// ignoring labels. A label with no edges is acyclic.
func (n *Network) IsAcyclic(label string) bool {
	return len(n.Cycles(label)) == 0
}

// Cycles returns the strongly connected components with more than one
// entity, each sorted by id, in order of their smallest id. Self-loops
// cannot exist, so these are exactly the cycles.
func (n *Network) Cycles(label string) [][]string {
	n.mu.RLock()
	graph := n.adjacencyLocked(label)
	n.mu.RUnlock()

	var cycles [][]string
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 {
			slices.Sort(scc)
			cycles = append(cycles, scc)
		}
	}
	slices.SortFunc(cycles, func(a, b []string) int {
		return cmp.Compare(a[0], b[0])
	})
	return cycles
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order so the result is deterministic.
func tarjanSCC(graph adjacency) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int, len(graph))
		lowlink = make(map[string]int, len(graph))
		onStack = make(map[string]bool, len(graph))
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	slices.Sort(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// IsWeaklyConnected reports whether the network, viewed as an undirected
// graph, is connected. An empty network is not connected.
func (n *Network) IsWeaklyConnected() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if len(n.entities) == 0 {
		return false
	}

	var start string
	for id := range n.entities {
		start = id
		break
	}

	seen := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for t := range n.bySource[id] {
			if !seen[t.Target] {
				seen[t.Target] = true
				queue = append(queue, t.Target)
			}
		}
		for t := range n.byTarget[id] {
			if !seen[t.Source] {
				seen[t.Source] = true
				queue = append(queue, t.Source)
			}
		}
	}
	return len(seen) == len(n.entities)
}
