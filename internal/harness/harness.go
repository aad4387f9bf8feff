package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/semnet/internal/compiler"
	"github.com/roach88/semnet/internal/engine"
	"github.com/roach88/semnet/internal/network"
	"github.com/roach88/semnet/internal/schema"
)

// Option configures Run.
type Option func(*runner)

// WithLogger sets the logger for scenario progress.
func WithLogger(l *slog.Logger) Option {
	return func(r *runner) { r.logger = l }
}

// WithObserver attaches an observer to every query's matcher.
func WithObserver(o engine.Observer) Option {
	return func(r *runner) { r.observer = o }
}

type runner struct {
	logger   *slog.Logger
	observer engine.Observer
}

// Run builds the scenario's network and checks every query case.
//
// Failed expectations are reported in the Result. The returned error is
// reserved for scenarios that cannot run at all: a bad schema or a
// network script that does not build.
func Run(ctx context.Context, s *Scenario, opts ...Option) (*Result, error) {
	r := &runner{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(r)
	}

	var netOpts []network.Option
	if s.Schema != "" {
		v, err := schema.Compile(s.Schema)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		netOpts = append(netOpts, network.WithValidator(v))
	}

	base, err := compiler.BuildNetwork(s.Name, s.Network, netOpts...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: build network: %w", s.Name, err)
	}
	r.logger.Debug("network built", "scenario", s.Name, "stats", base.Stats())

	result := NewResult()
	for _, qc := range s.Queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		qr := r.runQuery(ctx, base, qc)
		result.Queries = append(result.Queries, qr)
		for _, msg := range checkQuery(qc, qr) {
			result.AddError(msg)
		}
		r.logger.Info("query completed",
			"scenario", s.Name,
			"query", qc.Name,
			"matches", len(qr.Matches),
			"error", qr.Error,
		)
	}
	return result, nil
}

func (r *runner) runQuery(ctx context.Context, base *network.Network, qc QueryCase) QueryResult {
	qr := QueryResult{Name: qc.Name, Matches: []engine.Mapping{}}

	q, err := compiler.CompileQuery(qc.Query)
	if err != nil {
		qr.Error = err.Error()
		return qr
	}

	mopts := []engine.MatcherOption{engine.WithLogger(r.logger)}
	if qc.Parallelism > 1 {
		mopts = append(mopts, engine.WithParallelism(qc.Parallelism))
	}
	if r.observer != nil {
		mopts = append(mopts, engine.WithObserver(r.observer))
	}

	chains, err := q.Search(ctx, engine.NewMatcher(base, mopts...))
	if err != nil {
		qr.Error = err.Error()
		return qr
	}
	for _, c := range chains {
		qr.Matches = append(qr.Matches, c.Mapping())
	}
	return qr
}

// checkQuery compares a query result with the case's expectations.
func checkQuery(qc QueryCase, qr QueryResult) []string {
	switch {
	case qc.Error != "" && qr.Error == "":
		return []string{fmt.Sprintf("query %s: expected error containing %q, got %d matches", qc.Name, qc.Error, len(qr.Matches))}
	case qc.Error != "":
		if !strings.Contains(qr.Error, qc.Error) {
			return []string{fmt.Sprintf("query %s: error %q does not contain %q", qc.Name, qr.Error, qc.Error)}
		}
		return nil
	case qr.Error != "":
		return []string{fmt.Sprintf("query %s: unexpected error: %s", qc.Name, qr.Error)}
	}

	var errs []string
	if qc.Count != nil && len(qr.Matches) != *qc.Count {
		errs = append(errs, fmt.Sprintf("query %s: got %d matches, want %d", qc.Name, len(qr.Matches), *qc.Count))
	}
	if qc.Expect != nil {
		errs = append(errs, compareMatches(qc.Name, qr.Matches, qc.Expect)...)
	}
	errs = append(errs, EvaluateAssertions(qc.Name, qr.Matches, qc.Assertions)...)
	return errs
}
