package nn

import (
	"gonum.org/v1/gonum/mat"
)

// Gather returns the rows of m at idx, in order. An empty idx yields an
// empty matrix.
func Gather(m *mat.Dense, idx []int) *mat.Dense {
	if len(idx) == 0 {
		return &mat.Dense{}
	}
	_, c := m.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for i, r := range idx {
		copy(out.RawRowView(i), m.RawRowView(r))
	}
	return out
}

// GatherInts returns v[idx[0]], v[idx[1]], ...
func GatherInts(v []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, r := range idx {
		out[i] = v[r]
	}
	return out
}

// ScatterAdd adds row i of src to row idx[i] of dst.
func ScatterAdd(dst, src *mat.Dense, idx []int) {
	for i, r := range idx {
		row := dst.RawRowView(r)
		for j, v := range src.RawRowView(i) {
			row[j] += v
		}
	}
}
