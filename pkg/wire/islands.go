package wire

// SplitIslands partitions g into its connected components. A connected graph
// is returned as is; otherwise every island is a new graph with node ids
// renumbered from 0. Islands appear in the order their first node is reached
// while scanning g.Nodes. An empty graph has no islands.
func SplitIslands(g *Graph) []*Graph {
	var islands [][]int
	seen := make([]bool, len(g.Nodes))

	for start := range g.Nodes {
		if seen[start] {
			continue
		}

		var island []int
		stack := []int{start}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[id] {
				continue
			}
			seen[id] = true
			island = append(island, id)
			stack = append(stack, g.Nodes[id].Edges...)
		}
		islands = append(islands, island)
	}

	if len(islands) == 1 {
		return []*Graph{g}
	}

	out := make([]*Graph, 0, len(islands))
	for _, island := range islands {
		out = append(out, repack(g, island))
	}
	return out
}

// repack copies the nodes listed in ids into a new graph, renumbering them in
// list order and rewriting every edge through the old->new map.
func repack(g *Graph, ids []int) *Graph {
	newID := make(map[int]int, len(ids))
	for i, old := range ids {
		newID[old] = i
	}

	nodes := make([]Node, len(ids))
	for i, old := range ids {
		src := g.Nodes[old]
		edges := make([]int, len(src.Edges))
		for k, e := range src.Edges {
			edges[k] = newID[e]
		}
		nodes[i] = Node{ID: i, Pos: src.Pos, Ref: src.Ref, Edges: edges}
	}
	return &Graph{ID: g.ID, Nodes: nodes}
}
