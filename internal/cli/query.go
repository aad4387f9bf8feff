package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/roach88/semnet/internal/compiler"
	"github.com/roach88/semnet/internal/engine"
	"github.com/roach88/semnet/internal/metrics"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Source    NetworkSource
	JQ        string // jq filter applied to the JSON result
	Parallel  int    // matcher workers; 0 uses the configured value
	FailEmpty bool   // exit 1 when nothing matches
}

// QueryResult is the output of the query command.
type QueryResult struct {
	Network string           `json:"network"`
	Count   int              `json:"count"`
	Matches []engine.Mapping `json:"matches"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <query-script>",
		Short: "Find every embedding of a pattern in a network",
		Long: `Compile a query script into a pattern and search a network for it.

Ids prefixed with * are wildcards; any other id or label must match
literally. The network is the latest snapshot unless --snapshot,
--name or --script select another.

Exit codes:
  0 - Search completed
  1 - No matches and --fail-empty set
  2 - Command error (bad script, invalid pattern, store error, etc.)

Examples:
  semnet query instance_of.snq
  semnet query instance_of.snq --script shapes.sn
  semnet query instance_of.snq --parallel 4 --format json
  semnet query instance_of.snq --jq '.matches[].entities.Object'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	addSourceFlags(cmd, &opts.Source)
	cmd.Flags().StringVar(&opts.Source.Script, "script", "", "network script to query instead of a snapshot")
	cmd.Flags().StringVar(&opts.Source.Schema, "schema", "", "CUE schema for --script")
	cmd.Flags().StringVar(&opts.JQ, "jq", "", "jq filter applied to the JSON result")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", 0, "matcher workers (default from config)")
	cmd.Flags().BoolVar(&opts.FailEmpty, "fail-empty", false, "exit 1 when there are no matches")

	return cmd
}

// addSourceFlags registers the snapshot selection flags.
func addSourceFlags(cmd *cobra.Command, src *NetworkSource) {
	cmd.Flags().StringVar(&src.Snapshot, "snapshot", "", "snapshot id")
	cmd.Flags().StringVar(&src.Name, "name", "", "latest snapshot with this network name")
}

func runQuery(opts *QueryOptions, queryPath string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()

	queryText, err := readScript(queryPath)
	if err != nil {
		return failLoad(f, err)
	}
	q, err := compiler.CompileQuery(queryText)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeScript, "compile query", err)
	}

	base, err := opts.loadNetwork(ctx, opts.Source)
	if err != nil {
		return failLoad(f, err)
	}

	workers := opts.Parallel
	if workers <= 0 {
		workers = opts.parallelism()
	}
	mm := metrics.NewMatcherMetrics(nil)
	m := engine.NewMatcher(base,
		engine.WithParallelism(workers),
		engine.WithObserver(mm),
		engine.WithLogger(opts.logger()),
	)

	chains, err := q.Search(ctx, m)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeQuery, "search", err)
	}

	totals := mm.Snapshot()
	f.VerboseLog("Searched %s: %d seeds, %d expansions, %d matches",
		base.Name(), totals.Seeds, totals.Expansions, totals.Matches)

	result := QueryResult{
		Network: base.Name(),
		Count:   len(chains),
		Matches: make([]engine.Mapping, len(chains)),
	}
	for i, c := range chains {
		result.Matches[i] = c.Mapping()
	}

	if opts.JQ != "" {
		if err := outputJQ(ctx, f, opts.JQ, result); err != nil {
			return f.Fail(ExitCommandError, ErrCodeJQ, "jq filter", err)
		}
	} else if err := outputQuery(f, result); err != nil {
		return err
	}

	if opts.FailEmpty && result.Count == 0 {
		return NewExitError(ExitFailure, "no matches")
	}
	return nil
}

func outputQuery(f *OutputFormatter, result QueryResult) error {
	if f.Format == "json" {
		return f.Success(result)
	}

	fmt.Fprintf(f.Writer, "%d match(es) in %s\n", result.Count, result.Network)
	for i, m := range result.Matches {
		fmt.Fprintf(f.Writer, "\n[%d]\n", i+1)
		writeBindings(f, "entities", m.Entities)
		writeBindings(f, "labels", m.Labels)
	}
	return nil
}

func writeBindings(f *OutputFormatter, title string, bindings map[string]string) {
	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	fmt.Fprintf(f.Writer, "  %s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(f.Writer, "    %s -> %s\n", k, bindings[k])
	}
}

// runJQ applies a jq filter to v's JSON form and returns every output.
func runJQ(ctx context.Context, filter string, v any) ([]any, error) {
	query, err := gojq.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression %q: %w", filter, err)
	}

	// gojq works on plain JSON values.
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, err
	}

	var out []any
	iter := query.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				break
			}
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// outputJQ prints each jq output on its own line, or all of them as the
// data array in JSON format.
func outputJQ(ctx context.Context, f *OutputFormatter, filter string, v any) error {
	values, err := runJQ(ctx, filter, v)
	if err != nil {
		return err
	}
	if f.Format == "json" {
		if values == nil {
			values = []any{}
		}
		return f.Success(values)
	}

	for _, v := range values {
		if s, ok := v.(string); ok {
			fmt.Fprintln(f.Writer, s)
			continue
		}
		data, err := gojq.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(f.Writer, strings.TrimSpace(string(data)))
	}
	return nil
}
