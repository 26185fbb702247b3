package bondgraph

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Graph returns the bond network as an undirected graph with one node per
// particle (node ID = particle index) and one edge per bond, so gonum's
// graph algorithms can run on it.
func Graph(n int, bonds []Bond) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for _, b := range bonds {
		g.SetEdge(simple.Edge{F: simple.Node(b.I), T: simple.Node(b.J)})
	}
	return g
}

// Degrees returns the number of bonds at each particle of g.
func Degrees(g graph.Undirected, n int) []int {
	deg := make([]int, n)
	for i := 0; i < n; i++ {
		deg[i] = g.From(int64(i)).Len()
	}
	return deg
}
