package cluster

import (
	"slices"

	"github.com/chazu/splinter/pkg/adjacency"
)

// Connected returns the connected components of g, ordered by their
// smallest face index, members ascending. The search keeps its own stack
// so face count does not bound recursion depth.
func Connected(g *adjacency.Graph) [][]int {
	visited := make([]bool, g.Len())
	var clusters [][]int
	var stack []int
	for start := 0; start < g.Len(); start++ {
		if visited[start] {
			continue
		}
		visited[start] = true
		stack = append(stack[:0], start)
		var members []int
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			members = append(members, cur)
			for _, nb := range g.Neighbors(cur) {
				if !visited[nb] {
					visited[nb] = true
					stack = append(stack, nb)
				}
			}
		}
		slices.Sort(members)
		clusters = append(clusters, members)
	}
	return clusters
}
