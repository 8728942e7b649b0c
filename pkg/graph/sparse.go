package graph

import (
	"gonum.org/v1/gonum/mat"
)

// SparseMatrix is a square matrix in compressed sparse row form.
type SparseMatrix struct {
	n       int
	indptr  []int
	indices []int
	values  []float64
}

// Dims returns the matrix dimensions.
func (s *SparseMatrix) Dims() (int, int) {
	return s.n, s.n
}

// NNZ returns the number of stored entries.
func (s *SparseMatrix) NNZ() int {
	return len(s.values)
}

// At returns the element at row i, column j.
func (s *SparseMatrix) At(i, j int) float64 {
	for k := s.indptr[i]; k < s.indptr[i+1]; k++ {
		if s.indices[k] == j {
			return s.values[k]
		}
	}
	return 0
}

// MulDense computes dst = S·src. dst must be a distinct n×c matrix, it is
// allocated when nil.
func (s *SparseMatrix) MulDense(dst, src *mat.Dense) *mat.Dense {
	r, c := src.Dims()
	if r != s.n {
		panic(mat.ErrShape)
	}
	if dst == nil {
		dst = mat.NewDense(s.n, c, nil)
	} else {
		dst.Zero()
	}

	for i := 0; i < s.n; i++ {
		out := dst.RawRowView(i)
		for k := s.indptr[i]; k < s.indptr[i+1]; k++ {
			w := s.values[k]
			in := src.RawRowView(s.indices[k])
			for j := range out {
				out[j] += w * in[j]
			}
		}
	}
	return dst
}

// LaplacianMul computes dst = (I − S)·src.
func (s *SparseMatrix) LaplacianMul(dst, src *mat.Dense) *mat.Dense {
	dst = s.MulDense(dst, src)
	dst.Sub(src, dst)
	return dst
}

// Dense returns a dense copy.
func (s *SparseMatrix) Dense() *mat.Dense {
	d := mat.NewDense(s.n, s.n, nil)
	for i := 0; i < s.n; i++ {
		for k := s.indptr[i]; k < s.indptr[i+1]; k++ {
			d.Set(i, s.indices[k], s.values[k])
		}
	}
	return d
}
