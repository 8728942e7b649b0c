package nn

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Linear computes XW + b.
type Linear struct {
	Weights *Parameter // in×out
	Biases  *Parameter // 1×out

	input *mat.Dense
}

// NewLinear creates a Glorot-initialized layer. Parameters are named
// "<name>/weights" and "<name>/biases".
func NewLinear(name string, in, out int, rng *rand.Rand) *Linear {
	l := &Linear{
		Weights: NewParameter(name+"/weights", in, out),
		Biases:  NewParameter(name+"/biases", 1, out),
	}
	l.Weights.GlorotUniform(rng)
	return l
}

// Params returns the weights and biases.
func (l *Linear) Params() []*Parameter {
	return []*Parameter{l.Weights, l.Biases}
}

// Forward computes the layer output and remembers x for Backward.
func (l *Linear) Forward(x *mat.Dense) *mat.Dense {
	n, _ := x.Dims()
	_, out := l.Weights.Value.Dims()

	l.input = x
	y := mat.NewDense(n, out, nil)
	y.Mul(x, l.Weights.Value)

	b := l.Biases.Value.RawRowView(0)
	for i := 0; i < n; i++ {
		row := y.RawRowView(i)
		for j := range row {
			row[j] += b[j]
		}
	}
	return y
}

// Backward accumulates dW = xᵀ·dOut and db = Σ_rows dOut. When needInput is
// set it also returns dx = dOut·Wᵀ, otherwise nil.
func (l *Linear) Backward(dOut *mat.Dense, needInput bool) *mat.Dense {
	var dW mat.Dense
	dW.Mul(l.input.T(), dOut)
	l.Weights.Grad.Add(l.Weights.Grad, &dW)

	n, _ := dOut.Dims()
	db := l.Biases.Grad.RawRowView(0)
	for i := 0; i < n; i++ {
		for j, v := range dOut.RawRowView(i) {
			db[j] += v
		}
	}

	if !needInput {
		return nil
	}
	in, _ := l.Weights.Value.Dims()
	dx := mat.NewDense(n, in, nil)
	dx.Mul(dOut, l.Weights.Value.T())
	return dx
}
