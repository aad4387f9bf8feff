package harness

import "github.com/roach88/semnet/internal/engine"

// QueryResult is the outcome of one query case.
type QueryResult struct {
	Name string `json:"name"`

	// Matches lists the mappings in the order the matcher returned them.
	Matches []engine.Mapping `json:"matches"`

	// Error is the compile or search error text, if any.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every query case met its expectations.
	Pass bool `json:"pass"`

	// Queries holds one entry per query case, in scenario order.
	Queries []QueryResult `json:"queries"`

	// Errors contains failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Queries: []QueryResult{},
		Errors:  []string{},
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
