package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/semnet/internal/engine"
)

// AssertionError is returned when an assertion fails.
// It includes the matches to help debug the failure.
type AssertionError struct {
	Query    string
	Type     string
	Expected string
	Actual   string
	Matches  []engine.Mapping
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "query %s: assertion failed: %s\n", e.Query, e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Matches) > 0 {
		fmt.Fprintf(&buf, "\nMatches:\n")
		for i, m := range e.Matches {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, formatMapping(m))
		}
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure
// messages.
func EvaluateAssertions(query string, matches []engine.Mapping, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluate(query, matches, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(query string, matches []engine.Mapping, a Assertion) error {
	n := 0
	for _, m := range matches {
		if binds(m, a) {
			n++
		}
	}

	want := bindingsString(a)
	fail := func(expected, actual string) error {
		return &AssertionError{
			Query:    query,
			Type:     a.Type,
			Expected: expected,
			Actual:   actual,
			Matches:  matches,
		}
	}

	switch a.Type {
	case AssertContains:
		if n == 0 {
			return fail("a match with "+want, "no match has these bindings")
		}
	case AssertEvery:
		if n != len(matches) {
			return fail("every match with "+want, fmt.Sprintf("%d of %d matches", n, len(matches)))
		}
	case AssertNone:
		if n > 0 {
			return fail("no match with "+want, fmt.Sprintf("%d matches", n))
		}
	case AssertCount:
		if n != a.Count {
			return fail(fmt.Sprintf("%d matches with %s", a.Count, want), fmt.Sprintf("%d", n))
		}
	default:
		return fmt.Errorf("query %s: unknown assertion type: %s", query, a.Type)
	}
	return nil
}

// binds reports whether m includes every binding of a.
func binds(m engine.Mapping, a Assertion) bool {
	return subset(m.Entities, a.Entities) && subset(m.Labels, a.Labels)
}

func subset(have, want map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}

func bindingsString(a Assertion) string {
	if len(a.Entities) == 0 && len(a.Labels) == 0 {
		return "any bindings"
	}
	return formatMapping(engine.Mapping{Entities: a.Entities, Labels: a.Labels})
}

// formatMapping renders a mapping as "a=x b=y | l=m" with sorted keys.
func formatMapping(m engine.Mapping) string {
	pairs := func(in map[string]string) string {
		keys := make([]string, 0, len(in))
		for k := range in {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + in[k]
		}
		return strings.Join(parts, " ")
	}
	return pairs(m.Entities) + " | " + pairs(m.Labels)
}

// compareMatches checks got against the expected set, ignoring order.
func compareMatches(query string, got []engine.Mapping, want []ExpectedMatch) []string {
	count := func(keys []string) map[string]int {
		out := make(map[string]int, len(keys))
		for _, k := range keys {
			out[k]++
		}
		return out
	}

	gotKeys := make([]string, len(got))
	for i, m := range got {
		gotKeys[i] = formatMapping(m)
	}
	wantKeys := make([]string, len(want))
	for i, w := range want {
		wantKeys[i] = formatMapping(engine.Mapping{Entities: w.Entities, Labels: w.Labels})
	}

	gotSet, wantSet := count(gotKeys), count(wantKeys)
	var errs []string
	for _, k := range wantKeys {
		if gotSet[k] == 0 {
			errs = append(errs, fmt.Sprintf("query %s: missing match: %s", query, k))
		}
		gotSet[k]--
	}
	for _, k := range gotKeys {
		if wantSet[k] == 0 {
			errs = append(errs, fmt.Sprintf("query %s: unexpected match: %s", query, k))
		}
		wantSet[k]--
	}
	return errs
}
