package slicmosaic

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

var (
	dx4 = [4]int{-1, 0, 1, 0}
	dy4 = [4]int{0, -1, 0, 1}
)

// ============ CONNECTIVITY ============

// enforceConnectivity splits every cluster into its 4-connected components
// and folds components smaller than H*W/(4n) into the neighbour they share
// the longest border with. Each resulting label is one connected component.
func (s *slic) enforceConnectivity(n int) *LabelMap {
	w, h := s.lab.W, s.lab.H
	comp, sizes := s.components()

	g := regionAdjacency(comp, len(sizes), w, h)
	minSize := float64(w*h) / float64(4*n)

	small := make([]int, 0, len(sizes))
	for id, size := range sizes {
		if float64(size) < minSize {
			small = append(small, id)
		}
	}
	slices.SortFunc(small, func(a, b int) int {
		return cmp.Or(cmp.Compare(sizes[a], sizes[b]), cmp.Compare(a, b))
	})

	parent := make([]int, len(sizes))
	for i := range parent {
		parent[i] = i
	}
	merged := 0
	for _, id := range small {
		if float64(sizes[id]) >= minSize {
			continue
		}
		target := mostTouching(g, int64(id))
		if target < 0 {
			continue
		}
		mergeRegion(g, int64(id), target)
		sizes[target] += sizes[id]
		parent[id] = int(target)
		merged++
	}
	s.logger.Debug("connectivity enforced", "components", len(sizes), "merged", merged)

	root := func(id int) int {
		for parent[id] != id {
			id = parent[id]
		}
		return id
	}
	relabel := make([]int, len(sizes))
	labels := make([]int, w*h)
	count := 0
	for i, c := range comp {
		r := root(c)
		if relabel[r] == 0 {
			count++
			relabel[r] = count
		}
		labels[i] = relabel[r]
	}
	return &LabelMap{W: w, H: h, Labels: labels, Count: count}
}

// components labels the 4-connected components of the cluster assignment in
// raster order and returns the component of every pixel and each size.
func (s *slic) components() ([]int, []int) {
	w, h := s.lab.W, s.lab.H
	comp := make([]int, w*h)
	for i := range comp {
		comp[i] = -1
	}
	var sizes []int
	elems := make([]int, 0, 64)
	for start := range w * h {
		if comp[start] != -1 {
			continue
		}
		id := len(sizes)
		comp[start] = id
		elems = append(elems[:0], start)
		for c := 0; c < len(elems); c++ {
			cur := elems[c]
			cx := cur % w
			cy := cur / w
			for k := range 4 {
				nx, ny := cx+dx4[k], cy+dy4[k]
				if nx >= 0 && nx < w && ny >= 0 && ny < h {
					nIdx := labelOffset(w, nx, ny)
					if comp[nIdx] == -1 && s.clusters[cur] == s.clusters[nIdx] {
						comp[nIdx] = id
						elems = append(elems, nIdx)
					}
				}
			}
		}
		sizes = append(sizes, len(elems))
	}
	return comp, sizes
}

// regionAdjacency builds the region adjacency graph; edge weights count the
// 4-neighbour pixel pairs two regions share.
func regionAdjacency(comp []int, n, w, h int) *simple.WeightedUndirectedGraph {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for id := range n {
		g.AddNode(simple.Node(id))
	}
	borders := make(map[[2]int]float64)
	touch := func(a, b int) {
		if a == b {
			return
		}
		if a > b {
			a, b = b, a
		}
		borders[[2]int{a, b}]++
	}
	for y := range h {
		for x := range w {
			c := comp[labelOffset(w, x, y)]
			if x+1 < w {
				touch(c, comp[labelOffset(w, x+1, y)])
			}
			if y+1 < h {
				touch(c, comp[labelOffset(w, x, y+1)])
			}
		}
	}
	for pair, weight := range borders {
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(pair[0]), simple.Node(pair[1]), weight))
	}
	return g
}

// mostTouching returns the neighbour sharing the longest border with id,
// the lowest id on ties, or -1 when id has no neighbours.
func mostTouching(g *simple.WeightedUndirectedGraph, id int64) int64 {
	best, bestW := int64(-1), -1.0
	for _, nb := range graph.NodesOf(g.From(id)) {
		w := g.WeightedEdge(id, nb.ID()).Weight()
		if w > bestW || (w == bestW && nb.ID() < best) {
			best, bestW = nb.ID(), w
		}
	}
	return best
}

// mergeRegion moves the borders of id onto target and removes id.
func mergeRegion(g *simple.WeightedUndirectedGraph, id, target int64) {
	for _, nb := range graph.NodesOf(g.From(id)) {
		if nb.ID() == target {
			continue
		}
		weight := g.WeightedEdge(id, nb.ID()).Weight()
		if e := g.WeightedEdge(target, nb.ID()); e != nil {
			weight += e.Weight()
		}
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(target), nb, weight))
	}
	g.RemoveNode(id)
}
