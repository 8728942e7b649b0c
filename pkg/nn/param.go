// Package nn is a small dense neural-network toolkit for full-graph training:
// parameters, linear layers, dropout, softmax cross-entropy, Adam, an
// accuracy metric, the one-step training driver and npz weight files.
package nn

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrShapeMismatch is returned when operands or stored weights do not
	// have the expected dimensions.
	ErrShapeMismatch = errors.New("nn: shape mismatch")

	// ErrMissingParameter is returned when a weight file lacks a parameter.
	ErrMissingParameter = errors.New("nn: missing parameter")
)

// Parameter is a named trainable matrix with its gradient accumulator.
type Parameter struct {
	Name  string
	Value *mat.Dense
	Grad  *mat.Dense
}

// NewParameter allocates a zero r×c parameter.
func NewParameter(name string, r, c int) *Parameter {
	return &Parameter{
		Name:  name,
		Value: mat.NewDense(r, c, nil),
		Grad:  mat.NewDense(r, c, nil),
	}
}

// ZeroGrad clears the gradient.
func (p *Parameter) ZeroGrad() {
	p.Grad.Zero()
}

// GlorotUniform fills the parameter from U(-a, a), a = sqrt(6/(fanIn+fanOut)).
func (p *Parameter) GlorotUniform(rng *rand.Rand) {
	r, c := p.Value.Dims()
	limit := math.Sqrt(6.0 / float64(r+c))
	data := p.Value.RawMatrix().Data
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * limit
	}
}

// SumSquares returns Σ p² over all parameters.
func SumSquares(params []*Parameter) float64 {
	total := 0.0
	for _, p := range params {
		for _, v := range p.Value.RawMatrix().Data {
			total += v * v
		}
	}
	return total
}

// ZeroGrads clears the gradients of all parameters.
func ZeroGrads(params []*Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
