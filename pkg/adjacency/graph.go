// Package adjacency builds the face adjacency graph of a shape. Two faces
// are adjacent iff they share an edge by identity; faces that only touch
// geometrically are not.
package adjacency

import (
	"slices"

	"github.com/chazu/splinter/pkg/kernel"
	"github.com/chazu/splinter/pkg/spatial"
)

// Graph is a sparse symmetric graph over face indices.
type Graph struct {
	adj [][]int
}

// Build connects faces whose edge lists share an edge. Only pairs the grid
// reports as candidates are compared, each pair once. edges[i] holds the
// edges of face i and grid must have been built over the same faces.
func Build(edges [][]kernel.Shape, grid *spatial.Grid) *Graph {
	g := &Graph{adj: make([][]int, len(edges))}

	sets := make([]map[kernel.Shape]struct{}, len(edges))
	for i, es := range edges {
		set := make(map[kernel.Shape]struct{}, len(es))
		for _, e := range es {
			set[e] = struct{}{}
		}
		sets[i] = set
	}

	tested := make(map[[2]int]struct{})
	for i := range edges {
		for _, j := range grid.Candidates(i) {
			pair := [2]int{min(i, j), max(i, j)}
			if _, ok := tested[pair]; ok {
				continue
			}
			tested[pair] = struct{}{}
			if sharesEdge(sets[i], edges[j]) {
				g.adj[i] = append(g.adj[i], j)
				g.adj[j] = append(g.adj[j], i)
			}
		}
	}
	for i := range g.adj {
		slices.Sort(g.adj[i])
	}
	return g
}

func sharesEdge(set map[kernel.Shape]struct{}, edges []kernel.Shape) bool {
	for _, e := range edges {
		if _, ok := set[e]; ok {
			return true
		}
	}
	return false
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.adj) }

// Neighbors returns the faces adjacent to i in ascending order.
func (g *Graph) Neighbors(i int) []int { return g.adj[i] }

// Adjacent reports whether faces i and j share an edge.
func (g *Graph) Adjacent(i, j int) bool {
	_, found := slices.BinarySearch(g.adj[i], j)
	return found
}

// EdgeCount returns the number of undirected adjacencies.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, nb := range g.adj {
		n += len(nb)
	}
	return n / 2
}

// FromPairs builds a graph over n nodes from explicit adjacencies.
func FromPairs(n int, pairs [][2]int) *Graph {
	g := &Graph{adj: make([][]int, n)}
	for _, p := range pairs {
		i, j := p[0], p[1]
		if i == j || slices.Contains(g.adj[i], j) {
			continue
		}
		g.adj[i] = append(g.adj[i], j)
		g.adj[j] = append(g.adj[j], i)
	}
	for i := range g.adj {
		slices.Sort(g.adj[i])
	}
	return g
}
