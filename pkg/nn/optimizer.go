package nn

import (
	"math"
)

// Optimizer updates parameter values from their accumulated gradients.
type Optimizer interface {
	Apply(params []*Parameter)
}

// SGD performs p -= LR·g.
type SGD struct {
	LR float64
}

// Apply updates params in place.
func (o *SGD) Apply(params []*Parameter) {
	for _, p := range params {
		grad := p.Grad.RawMatrix().Data
		value := p.Value.RawMatrix().Data
		for i := range value {
			value[i] -= o.LR * grad[i]
		}
	}
}

// Adam implements Kingma & Ba with bias-corrected moment estimates.
type Adam struct {
	LR    float64
	Beta1 float64
	Beta2 float64
	Eps   float64

	step int
	m    map[*Parameter][]float64
	v    map[*Parameter][]float64
}

// NewAdam returns Adam with the usual defaults (0.9, 0.999, 1e-8).
func NewAdam(lr float64) *Adam {
	return &Adam{
		LR:    lr,
		Beta1: 0.9,
		Beta2: 0.999,
		Eps:   1e-8,
		m:     make(map[*Parameter][]float64),
		v:     make(map[*Parameter][]float64),
	}
}

// Steps returns the number of updates applied so far.
func (o *Adam) Steps() int {
	return o.step
}

// Apply performs one Adam update on params.
func (o *Adam) Apply(params []*Parameter) {
	o.step++
	correction1 := 1 - math.Pow(o.Beta1, float64(o.step))
	correction2 := 1 - math.Pow(o.Beta2, float64(o.step))

	for _, p := range params {
		grad := p.Grad.RawMatrix().Data
		value := p.Value.RawMatrix().Data

		m, ok := o.m[p]
		if !ok {
			m = make([]float64, len(value))
			o.m[p] = m
		}
		v, ok := o.v[p]
		if !ok {
			v = make([]float64, len(value))
			o.v[p] = v
		}

		for i, g := range grad {
			m[i] = o.Beta1*m[i] + (1-o.Beta1)*g
			v[i] = o.Beta2*v[i] + (1-o.Beta2)*g*g
			mHat := m[i] / correction1
			vHat := v[i] / correction2
			value[i] -= o.LR * mHat / (math.Sqrt(vHat) + o.Eps)
		}
	}
}
