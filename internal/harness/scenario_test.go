package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/circle_instances.yaml")
	require.NoError(t, err)

	assert.Equal(t, "circle_instances", s.Name)
	require.Len(t, s.Queries, 4)
	assert.Equal(t, "instance_of", s.Queries[0].Name)
	require.NotNil(t, s.Queries[0].Count)
	assert.Equal(t, 1, *s.Queries[0].Count)
	assert.Equal(t, map[string]string{
		"Class": "Circle", "Class.part": "Circle.radius",
		"Object": "c2", "Object.part": "c2.radius",
	}, s.Queries[0].Expect[0].Entities)
	assert.Equal(t, "E203", s.Queries[2].Error)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: d
network: "(a)"
querys: []
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			"missing name",
			"description: d\nnetwork: '(a)'\nqueries: [{name: q, query: '(a)'}]",
			"name is required",
		},
		{
			"missing description",
			"name: n\nnetwork: '(a)'\nqueries: [{name: q, query: '(a)'}]",
			"description is required",
		},
		{
			"missing network",
			"name: n\ndescription: d\nqueries: [{name: q, query: '(a)'}]",
			"network script is required",
		},
		{
			"no queries",
			"name: n\ndescription: d\nnetwork: '(a)'\nqueries: []",
			"queries list is required",
		},
		{
			"unnamed query",
			"name: n\ndescription: d\nnetwork: '(a)'\nqueries: [{query: '(a)'}]",
			"queries[0]: name is required",
		},
		{
			"duplicate query",
			"name: n\ndescription: d\nnetwork: '(a)'\nqueries: [{name: q, query: '(a)'}, {name: q, query: '(b)'}]",
			`queries[1]: duplicate name "q"`,
		},
		{
			"empty query",
			"name: n\ndescription: d\nnetwork: '(a)'\nqueries: [{name: q}]",
			"queries[0]: query is required",
		},
		{
			"negative count",
			"name: n\ndescription: d\nnetwork: '(a)'\nqueries: [{name: q, query: '(a)', count: -1}]",
			"count must be non-negative",
		},
		{
			"unknown assertion",
			"name: n\ndescription: d\nnetwork: '(a)'\nqueries: [{name: q, query: '(a)', assertions: [{type: most}]}]",
			`unknown assertion type "most"`,
		},
		{
			"contains without bindings",
			"name: n\ndescription: d\nnetwork: '(a)'\nqueries: [{name: q, query: '(a)', assertions: [{type: contains}]}]",
			"entities or labels is required for contains",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDiscover(t *testing.T) {
	t.Run("directory", func(t *testing.T) {
		files, err := Discover("testdata/scenarios")
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join("testdata/scenarios", "circle_instances.yaml"),
			filepath.Join("testdata/scenarios", "circle_wildcards.yaml"),
			filepath.Join("testdata/scenarios", "residents.yaml"),
		}, files)
	})

	t.Run("file", func(t *testing.T) {
		files, err := Discover("testdata/scenarios/residents.yaml")
		require.NoError(t, err)
		assert.Equal(t, []string{"testdata/scenarios/residents.yaml"}, files)
	})

	t.Run("yml extension", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), nil, 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), nil, 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))

		files, err := Discover(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yml")}, files)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Discover("testdata/none")
		var nf *ScenarioNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "testdata/none", nf.Path)
	})
}
