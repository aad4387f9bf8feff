package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Scenario defines a set of queries against one network.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is optional CUE source gating the network's properties.
	Schema string `yaml:"schema,omitempty"`

	// Network is a network script.
	Network string `yaml:"network"`

	// Queries run in order against the network.
	Queries []QueryCase `yaml:"queries"`
}

// QueryCase is one query and its expectations.
type QueryCase struct {
	Name string `yaml:"name"`

	// Query is a query script.
	Query string `yaml:"query"`

	// Parallelism runs the matcher with this many workers when above 1.
	Parallelism int `yaml:"parallelism,omitempty"`

	// Expect is the exact set of mappings, compared without regard to
	// order. Nil means no set comparison.
	Expect []ExpectedMatch `yaml:"expect,omitempty"`

	// Count is the expected number of matches.
	Count *int `yaml:"count,omitempty"`

	// Error is a substring the compile or search error must contain.
	Error string `yaml:"error,omitempty"`

	// Assertions check properties of the matches.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ExpectedMatch is a mapping written in a scenario file.
type ExpectedMatch struct {
	Entities map[string]string `yaml:"entities"`
	Labels   map[string]string `yaml:"labels"`
}

// Assertion checks a property of a query's matches.
type Assertion struct {
	// Type specifies the assertion type:
	// - "contains": some match includes the given bindings
	// - "every": every match includes the given bindings
	// - "none": no match includes the given bindings
	// - "count": exactly Count matches include the given bindings
	Type string `yaml:"type"`

	// Entities and Labels are bindings (pattern id to base id), matched
	// as a subset of each mapping.
	Entities map[string]string `yaml:"entities,omitempty"`
	Labels   map[string]string `yaml:"labels,omitempty"`

	// Count is the expected number of matches (used by count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertContains = "contains"
	AssertEvery    = "every"
	AssertNone     = "none"
	AssertCount    = "count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// ScenarioNotFoundError is returned when a scenario path doesn't exist.
type ScenarioNotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("scenario path %q does not exist", e.Path)
}

// Discover returns the scenario files at path: the file itself, or every
// .yaml and .yml file directly inside a directory, sorted by name.
func Discover(path string) ([]string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &ScenarioNotFoundError{Path: path}
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(path, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	return files, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Network == "" {
		return fmt.Errorf("network script is required")
	}
	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}

	names := make(map[string]bool, len(s.Queries))
	for i, q := range s.Queries {
		if q.Name == "" {
			return fmt.Errorf("queries[%d]: name is required", i)
		}
		if names[q.Name] {
			return fmt.Errorf("queries[%d]: duplicate name %q", i, q.Name)
		}
		names[q.Name] = true
		if q.Query == "" {
			return fmt.Errorf("queries[%d]: query is required", i)
		}
		if q.Count != nil && *q.Count < 0 {
			return fmt.Errorf("queries[%d]: count must be non-negative", i)
		}
		if q.Parallelism < 0 {
			return fmt.Errorf("queries[%d]: parallelism must be non-negative", i)
		}
		for j, a := range q.Assertions {
			if err := validateAssertion(a); err != nil {
				return fmt.Errorf("queries[%d].assertions[%d]: %w", i, j, err)
			}
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("type is required")
	case AssertContains, AssertEvery, AssertNone:
		if len(a.Entities) == 0 && len(a.Labels) == 0 {
			return fmt.Errorf("entities or labels is required for %s", a.Type)
		}
	case AssertCount:
		if a.Count < 0 {
			return fmt.Errorf("count must be non-negative")
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
