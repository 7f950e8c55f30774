package digraph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDependencyOrderRespectsEdges(t *testing.T) {
	g := New[string]()
	g.AddDependency("app", "db")
	g.AddDependency("app", "cache")
	g.AddDependency("db", "config")
	g.AddDependency("cache", "config")

	order, err := g.DependencyOrder()
	require.NoError(t, err)

	index := make(map[string]int, len(order))
	for i, v := range order {
		index[v] = i
	}
	require.Less(t, index["config"], index["db"])
	require.Less(t, index["config"], index["cache"])
	require.Less(t, index["db"], index["app"])
	require.Less(t, index["cache"], index["app"])
}

func TestHasCyclesDetectsCycle(t *testing.T) {
	g := New[string]()
	g.AddDependency("a", "b")
	g.AddDependency("b", "c")
	g.AddDependency("c", "a")

	has, path := g.HasCycles()
	require.True(t, has)
	require.NotEmpty(t, path)
}

func TestDependencyOrderErrorsOnCycle(t *testing.T) {
	g := New[string]()
	g.AddDependency("a", "b")
	g.AddDependency("b", "a")

	_, err := g.DependencyOrder()
	require.Error(t, err)
	var cycleErr *CycleError[string]
	require.ErrorAs(t, err, &cycleErr)
}

func TestParallelDependencyOrderGroupsIndependentVertices(t *testing.T) {
	g := New[string]()
	g.AddDependency("app", "db")
	g.AddDependency("app", "cache")
	g.AddVertex("db")
	g.AddVertex("cache")

	levels, err := g.ParallelDependencyOrder()
	require.NoError(t, err)
	require.Len(t, levels, 2)
	require.ElementsMatch(t, []string{"db", "cache"}, levels[0])
	require.Equal(t, []string{"app"}, levels[1])
}

func TestRemoveVertexDropsEdges(t *testing.T) {
	g := New[string]()
	g.AddDependency("app", "db")
	g.RemoveVertex("db")

	require.False(t, g.HasDependency("app", "db"))
	require.Empty(t, g.DirectDependenciesOf("app"))
}
