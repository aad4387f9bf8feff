package engine

import (
	"context"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/semnet/internal/network"
)

// Required names the pattern ids that must bind to themselves in the base
// network. Ids not listed are wildcards.
type Required struct {
	Entities map[string]bool
	Labels   map[string]bool
}

// Matcher searches a base network for embeddings of pattern networks.
type Matcher struct {
	base        *network.Network
	parallelism int
	observer    Observer
	logger      *slog.Logger
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithParallelism expands up to n groups of seed chains concurrently.
// Values below 2 search sequentially.
func WithParallelism(n int) MatcherOption {
	return func(m *Matcher) {
		m.parallelism = n
	}
}

// WithObserver installs a progress observer.
func WithObserver(o Observer) MatcherOption {
	return func(m *Matcher) {
		if o != nil {
			m.observer = o
		}
	}
}

// WithLogger sets the logger for debug tracing.
func WithLogger(l *slog.Logger) MatcherOption {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMatcher creates a matcher over base.
func NewMatcher(base *network.Network, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		base:        base,
		parallelism: 1,
		observer:    nopObserver{},
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Search returns every embedding of pattern into the base network, in a
// deterministic order. It fails with a *PatternError if the pattern is
// empty, disconnected or cyclic, and with ctx.Err() if ctx is done before
// the walk completes. A required id absent from the base network is not
// an error; it just yields no matches.
func (m *Matcher) Search(ctx context.Context, pattern *network.Network, req Required) (chains []Chain, err error) {
	start := time.Now()
	defer func() {
		m.observer.Finished(len(chains), time.Since(start), err)
	}()

	if err := validatePattern(pattern); err != nil {
		return nil, err
	}

	label := m.startLabel(pattern)
	seedEdge := pattern.SelectEdges(network.Selector{Label: label}, nil)[0]

	seeds := m.seed(seedEdge, req)
	m.observer.Seeded(label, len(seeds))
	m.logger.Debug("search seeded",
		"pattern", pattern.Name(),
		"start_label", label,
		"seed_edge", seedEdge.String(),
		"seeds", len(seeds),
	)

	groups := partition(seeds, m.parallelism)
	if len(groups) <= 1 {
		w := m.newWalk(pattern, req, seedEdge)
		chains, err = w.visit(ctx, seedEdge, seeds)
	} else {
		chains, err = m.searchParallel(ctx, pattern, req, seedEdge, groups)
	}
	if err != nil {
		return nil, err
	}

	m.logger.Debug("search finished", "pattern", pattern.Name(), "matches", len(chains))
	return chains, nil
}

func (m *Matcher) searchParallel(ctx context.Context, pattern *network.Network, req Required, seedEdge *network.Edge, groups [][]Chain) ([]Chain, error) {
	results := make([][]Chain, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	for i, group := range groups {
		g.Go(func() error {
			w := m.newWalk(pattern, req, seedEdge)
			out, err := w.visit(gctx, seedEdge, group)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var chains []Chain
	for _, r := range results {
		chains = append(chains, r...)
	}
	return chains, nil
}

// startLabel picks the pattern label with the fewest base edges among those
// present in the base network, breaking ties by label order. If no pattern
// label occurs in the base, the smallest label is used.
func (m *Matcher) startLabel(pattern *network.Network) string {
	labels := pattern.Labels()
	best, bestCount := "", 0
	for _, l := range labels {
		n := m.base.LabelCount(l)
		if n == 0 {
			continue
		}
		if best == "" || n < bestCount {
			best, bestCount = l, n
		}
	}
	if best == "" {
		return labels[0]
	}
	return best
}

// seed turns every base edge compatible with the seed pattern edge into a
// one-edge chain. Only required ids narrow the base query.
func (m *Matcher) seed(p *network.Edge, req Required) []Chain {
	sel := network.Selector{}
	if req.Labels[p.Label] {
		sel.Label = p.Label
	}
	if req.Entities[p.Source.ID] {
		sel.Source = p.Source.ID
	}
	if req.Entities[p.Target.ID] {
		sel.Target = p.Target.ID
	}

	var seeds []Chain
	for _, e := range m.base.SelectEdges(sel, p.Props) {
		if c, ok := (Chain{}).Extend(e, p, Append); ok {
			seeds = append(seeds, c)
		}
	}
	return seeds
}

// partition splits chains into at most n contiguous, order-preserving groups.
func partition(chains []Chain, n int) [][]Chain {
	if n < 2 || len(chains) < 2 {
		return [][]Chain{chains}
	}
	n = min(n, len(chains))
	size := (len(chains) + n - 1) / n
	groups := make([][]Chain, 0, n)
	for start := 0; start < len(chains); start += size {
		groups = append(groups, chains[start:min(start+size, len(chains))])
	}
	return groups
}

func validatePattern(pattern *network.Network) error {
	if pattern.Stats().Edges == 0 {
		return &PatternError{
			Code:    ErrCodeEmptyPattern,
			Message: "pattern has no edges",
		}
	}
	if !pattern.IsWeaklyConnected() {
		return &PatternError{
			Code:    ErrCodeDisconnected,
			Message: "pattern is not weakly connected",
		}
	}
	if cycles := pattern.Cycles(""); len(cycles) > 0 {
		return &PatternError{
			Code:    ErrCodeCyclic,
			Message: "pattern contains a directed cycle",
			Cycles:  cycles,
		}
	}
	return nil
}
