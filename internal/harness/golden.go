package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/semnet/internal/engine"
	"github.com/roach88/semnet/internal/props"
)

// Snapshot renders a scenario's query results as canonical JSON. Matches
// keep the matcher's order, so the output also pins that order down.
func Snapshot(name string, result *Result) ([]byte, error) {
	queries := make([]any, len(result.Queries))
	for i, q := range result.Queries {
		matches := make([]any, len(q.Matches))
		for j, m := range q.Matches {
			matches[j] = mappingMap(m)
		}
		entry := map[string]any{
			"name":    q.Name,
			"matches": matches,
		}
		if q.Error != "" {
			entry["error"] = q.Error
		}
		queries[i] = entry
	}
	return props.MarshalCanonical(map[string]any{
		"scenario": name,
		"queries":  queries,
	})
}

func mappingMap(m engine.Mapping) map[string]any {
	conv := func(in map[string]string) map[string]any {
		out := make(map[string]any, len(in))
		for k, v := range in {
			out[k] = v
		}
		return out
	}
	return map[string]any{
		"entities": conv(m.Entities),
		"labels":   conv(m.Labels),
	}
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the scenario cannot run. Mismatches fail t via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}

// ErrGoldenMismatch is returned by CheckGolden when output differs.
var ErrGoldenMismatch = errors.New("golden mismatch")

// CheckGolden compares a result's snapshot with dir/<name>.golden. With
// update set, it writes the file instead. Used outside of go test, where
// goldie's -update flag is not available.
func CheckGolden(dir, name string, result *Result, update bool) error {
	data, err := Snapshot(name, result)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, name+".golden")
	if update {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("write golden: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write golden: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read golden: %w", err)
	}
	if !bytes.Equal(want, data) {
		return fmt.Errorf("%s: %w", path, ErrGoldenMismatch)
	}
	return nil
}
