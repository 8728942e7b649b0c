package graph

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// ErrVertexOutOfRange is returned when an edge references a vertex id outside
// [0, n).
var ErrVertexOutOfRange = errors.New("graph: vertex out of range")

// Adjacency is an undirected, unweighted adjacency list without self loops.
// Neighbor lists are sorted and free of duplicates.
type Adjacency struct {
	n         int
	neighbors [][]int
}

// NewAdjacency builds the undirected adjacency of n vertices from a list of
// (source, target) pairs. Both directions are stored, duplicates and self
// loops are dropped.
func NewAdjacency(n int, edgeIndex [2][]int) (*Adjacency, error) {
	src, dst := edgeIndex[0], edgeIndex[1]
	if len(src) != len(dst) {
		return nil, errors.Errorf("graph: edge index rows differ in length (%d != %d)", len(src), len(dst))
	}

	sets := make([]map[int]struct{}, n)
	link := func(u, v int) {
		if sets[u] == nil {
			sets[u] = make(map[int]struct{})
		}
		sets[u][v] = struct{}{}
	}

	for e := range src {
		u, v := src[e], dst[e]
		if u < 0 || u >= n || v < 0 || v >= n {
			return nil, errors.Wrapf(ErrVertexOutOfRange, "edge %d (%d, %d) with %d vertices", e, u, v, n)
		}
		if u == v {
			continue
		}
		link(u, v)
		link(v, u)
	}

	adj := &Adjacency{n: n, neighbors: make([][]int, n)}
	for u, set := range sets {
		if len(set) == 0 {
			continue
		}
		list := make([]int, 0, len(set))
		for v := range set {
			list = append(list, v)
		}
		sort.Ints(list)
		adj.neighbors[u] = list
	}
	return adj, nil
}

// NumVertices returns the number of vertices.
func (a *Adjacency) NumVertices() int {
	return a.n
}

// Neighbors returns the sorted neighbor list of v. The slice must not be
// modified.
func (a *Adjacency) Neighbors(v int) []int {
	return a.neighbors[v]
}

// Degree returns the number of neighbors of v.
func (a *Adjacency) Degree(v int) int {
	return len(a.neighbors[v])
}

// NumEdges returns the number of directed pairs, i.e. twice the number of
// undirected edges.
func (a *Adjacency) NumEdges() int {
	total := 0
	for _, list := range a.neighbors {
		total += len(list)
	}
	return total
}

// EdgeIndex returns the adjacency as a 2×E list of directed pairs ordered by
// source then target.
func (a *Adjacency) EdgeIndex() [2][]int {
	total := a.NumEdges()
	var ei [2][]int
	ei[0] = make([]int, 0, total)
	ei[1] = make([]int, 0, total)
	for u, list := range a.neighbors {
		for _, v := range list {
			ei[0] = append(ei[0], u)
			ei[1] = append(ei[1], v)
		}
	}
	return ei
}

// Normalized returns D̃^{-1/2}(A+I)D̃^{-1/2}, where D̃ is the degree matrix of
// A+I.
func (a *Adjacency) Normalized() *SparseMatrix {
	invSqrt := make([]float64, a.n)
	for v := 0; v < a.n; v++ {
		invSqrt[v] = 1.0 / math.Sqrt(float64(len(a.neighbors[v])+1))
	}

	s := &SparseMatrix{
		n:       a.n,
		indptr:  make([]int, a.n+1),
		indices: make([]int, 0, a.NumEdges()+a.n),
		values:  make([]float64, 0, a.NumEdges()+a.n),
	}
	for u := 0; u < a.n; u++ {
		selfDone := false
		for _, v := range a.neighbors[u] {
			if !selfDone && v > u {
				s.indices = append(s.indices, u)
				s.values = append(s.values, invSqrt[u]*invSqrt[u])
				selfDone = true
			}
			s.indices = append(s.indices, v)
			s.values = append(s.values, invSqrt[u]*invSqrt[v])
		}
		if !selfDone {
			s.indices = append(s.indices, u)
			s.values = append(s.values, invSqrt[u]*invSqrt[u])
		}
		s.indptr[u+1] = len(s.indices)
	}
	return s
}
