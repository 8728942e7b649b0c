// Package graph holds the node-classification graph shared by the dataset
// loaders and the models: node features, labels, connectivity and the
// train/validation/test partition, plus the sparse normalized adjacency used
// for propagation.
package graph

import (
	"gonum.org/v1/gonum/mat"
)

// Graph is a citation-style graph prepared for semi-supervised node
// classification.
type Graph struct {
	// X is the N×F node feature matrix.
	X *mat.Dense
	// Y holds the class id of every node.
	Y []int
	// EdgeIndex is the 2×E list of directed (source, target) pairs.
	EdgeIndex [2][]int

	TrainMask []bool
	ValMask   []bool
	TestMask  []bool

	NumClasses int
}

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() int {
	return len(g.Y)
}

// NumFeatures returns the width of the feature matrix.
func (g *Graph) NumFeatures() int {
	if g.X == nil {
		return 0
	}
	_, c := g.X.Dims()
	return c
}

// NumEdges returns the number of directed pairs in EdgeIndex.
func (g *Graph) NumEdges() int {
	return len(g.EdgeIndex[0])
}

// MaskToIndex converts a boolean mask into the ascending list of positions
// where it is set.
func MaskToIndex(mask []bool) []int {
	idx := make([]int, 0, len(mask))
	for i, m := range mask {
		if m {
			idx = append(idx, i)
		}
	}
	return idx
}
