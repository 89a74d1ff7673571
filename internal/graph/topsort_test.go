package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waymark/waymark/internal/repository"
	"github.com/waymark/waymark/pkg/types"
)

func TestTopologicalSortDependenciesBeforeDependents(t *testing.T) {
	repos := []*repository.Descriptor{
		descriptor("app", map[string]types.Range{"lib": "^1.0.0"}, nil, nil),
		descriptor("lib", map[string]types.Range{"core": "^1.0.0"}, nil, nil),
		descriptor("core", nil, nil, nil),
	}
	g, _ := Build(repos)

	order, err := g.TopologicalSort(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"core", "lib", "app"}, order)
}

func TestTopologicalSortIsDeterministicAcrossRepeatedRuns(t *testing.T) {
	repos := []*repository.Descriptor{
		descriptor("b", map[string]types.Range{"shared": "^1.0.0"}, nil, nil),
		descriptor("a", map[string]types.Range{"shared": "^1.0.0"}, nil, nil),
		descriptor("shared", nil, nil, nil),
	}
	g, _ := Build(repos)

	first, err := g.TopologicalSort(false)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := g.TopologicalSort(false)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, []string{"shared", "a", "b"}, first)
}

func TestTopologicalSortExcludeDevSkipsDevOnlyEdge(t *testing.T) {
	repos := []*repository.Descriptor{
		descriptor("tool", nil, nil, map[string]types.Range{"app": "^1.0.0"}),
		descriptor("app", nil, nil, nil),
	}
	g, _ := Build(repos)

	order, err := g.TopologicalSort(true)
	require.NoError(t, err)
	assert.Equal(t, []string{"app", "tool"}, order, "no prod/peer edge connects them once dev is excluded; ties break alphabetically ascending")
}

func TestTopologicalSortMutualDevCycleBreaksAlphabetically(t *testing.T) {
	repos := []*repository.Descriptor{
		descriptor("x", nil, nil, map[string]types.Range{"y": "^1.0.0"}),
		descriptor("y", nil, nil, map[string]types.Range{"x": "^1.0.0"}),
	}
	g, _ := Build(repos)

	order, err := g.TopologicalSort(true)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, order, "spec §8 scenario 4: dev-only mutual cycle, excludeDev leaves both ready at once")
}

func TestTopologicalSortReportsCircularDependency(t *testing.T) {
	repos := []*repository.Descriptor{
		descriptor("a", map[string]types.Range{"b": "^1.0.0"}, nil, nil),
		descriptor("b", map[string]types.Range{"a": "^1.0.0"}, nil, nil),
	}
	g, _ := Build(repos)

	_, err := g.TopologicalSort(false)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "circular dependency")
}
