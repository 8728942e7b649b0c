package nn

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ReLU is max(0, x).
type ReLU struct {
	active []bool
}

// Forward applies the activation.
func (r *ReLU) Forward(x *mat.Dense) *mat.Dense {
	n, c := x.Dims()
	y := mat.NewDense(n, c, nil)
	y.Copy(x)

	data := y.RawMatrix().Data
	r.active = make([]bool, len(data))
	for i, v := range data {
		if v > 0 {
			r.active[i] = true
		} else {
			data[i] = 0
		}
	}
	return y
}

// Backward masks dOut by the units that were active in Forward.
func (r *ReLU) Backward(dOut *mat.Dense) *mat.Dense {
	n, c := dOut.Dims()
	dx := mat.NewDense(n, c, nil)
	dx.Copy(dOut)
	data := dx.RawMatrix().Data
	for i := range data {
		if !r.active[i] {
			data[i] = 0
		}
	}
	return dx
}

// Dropout zeroes each unit with probability Rate while training and scales
// survivors by 1/(1-Rate). It is the identity in evaluation.
type Dropout struct {
	Rate float64

	rng  *rand.Rand
	mask []float64
}

// NewDropout creates a dropout layer drawing from rng.
func NewDropout(rate float64, rng *rand.Rand) *Dropout {
	return &Dropout{Rate: rate, rng: rng}
}

// Forward applies dropout when training is set.
func (d *Dropout) Forward(x *mat.Dense, training bool) *mat.Dense {
	if !training || d.Rate <= 0 {
		d.mask = nil
		return x
	}

	n, c := x.Dims()
	y := mat.NewDense(n, c, nil)
	y.Copy(x)

	scale := 0.0
	if d.Rate < 1 {
		scale = 1 / (1 - d.Rate)
	}
	data := y.RawMatrix().Data
	d.mask = make([]float64, len(data))
	for i := range data {
		if d.rng.Float64() >= d.Rate {
			d.mask[i] = scale
		}
		data[i] *= d.mask[i]
	}
	return y
}

// Backward applies the mask of the last Forward to dOut.
func (d *Dropout) Backward(dOut *mat.Dense) *mat.Dense {
	if d.mask == nil {
		return dOut
	}
	n, c := dOut.Dims()
	dx := mat.NewDense(n, c, nil)
	dx.Copy(dOut)
	data := dx.RawMatrix().Data
	for i := range data {
		data[i] *= d.mask[i]
	}
	return dx
}
