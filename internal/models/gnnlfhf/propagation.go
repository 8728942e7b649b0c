package gnnlfhf

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/cnclabs/gnnlfhf/pkg/graph"
)

// Propagation is a linear graph filter Z = P·H together with its adjoint.
type Propagation interface {
	Forward(h *mat.Dense) *mat.Dense
	Backward(dOut *mat.Dense) *mat.Dense
}

// Filter holds the propagation hyperparameters.
type Filter struct {
	Type  Type
	Form  Form
	Alpha float64
	Mu    float64
	Beta  float64
	NIter int
}

// NewPropagation builds the filter over the normalized adjacency adj.
//
// GNN-LF: Z = {(μ+1/α−1)I + (2−μ−1/α)Â}⁻¹ {μI + (1−μ)Â} H
// GNN-HF: Z = {(β+1/α)I + (1−β−1/α)Â}⁻¹ {I + βL̃} H
func NewPropagation(adj *graph.SparseMatrix, f Filter) (Propagation, error) {
	if f.Alpha <= 0 || math.IsNaN(f.Alpha) {
		return nil, errors.Errorf("gnnlfhf: alpha must be positive, got %v", f.Alpha)
	}

	switch f.Form {
	case Closed:
		return newClosedPropagation(adj, f)
	case Iterative:
		return newIterativePropagation(adj, f)
	}
	return nil, errors.Wrapf(ErrUnknownForm, "%d", f.Form)
}

// closedPropagation stores the exact N×N operator.
type closedPropagation struct {
	op *mat.Dense
}

func newClosedPropagation(adj *graph.SparseMatrix, f Filter) (*closedPropagation, error) {
	var leftI, leftA, rightI, rightA float64
	inv := 1 / f.Alpha
	switch f.Type {
	case LowPass:
		leftI, leftA = f.Mu+inv-1, 2-f.Mu-inv
		rightI, rightA = f.Mu, 1-f.Mu
	case HighPass:
		leftI, leftA = f.Beta+inv, 1-f.Beta-inv
		// I + β(I − Â)
		rightI, rightA = 1+f.Beta, -f.Beta
	default:
		return nil, errors.Wrapf(ErrUnknownType, "%d", f.Type)
	}

	a := adj.Dense()
	n, _ := a.Dims()
	left := combine(a, leftI, leftA)
	right := combine(a, rightI, rightA)

	op := mat.NewDense(n, n, nil)
	if err := op.Solve(left, right); err != nil {
		return nil, errors.Wrap(err, "gnnlfhf: solve closed-form propagation")
	}
	return &closedPropagation{op: op}, nil
}

// combine returns cI·I + cA·a.
func combine(a *mat.Dense, cI, cA float64) *mat.Dense {
	n, _ := a.Dims()
	out := mat.NewDense(n, n, nil)
	out.Scale(cA, a)
	for i := 0; i < n; i++ {
		out.Set(i, i, out.At(i, i)+cI)
	}
	return out
}

func (p *closedPropagation) Forward(h *mat.Dense) *mat.Dense {
	var z mat.Dense
	z.Mul(p.op, h)
	return &z
}

func (p *closedPropagation) Backward(dOut *mat.Dense) *mat.Dense {
	var dh mat.Dense
	dh.Mul(p.op.T(), dOut)
	return &dh
}

// iterativePropagation runs Zᵏ⁺¹ = c₁ÂZᵏ + c₂H + c₃MH from Z⁰ = H, with
// M = Â for GNN-LF and M = L̃ for GNN-HF. The unrolled operator is a
// polynomial in the symmetric Â, so it is its own adjoint.
type iterativePropagation struct {
	adj        *graph.SparseMatrix
	c1, c2, c3 float64
	highPass   bool
	niter      int
}

func newIterativePropagation(adj *graph.SparseMatrix, f Filter) (*iterativePropagation, error) {
	if f.NIter < 0 {
		return nil, errors.Errorf("gnnlfhf: niter must not be negative, got %d", f.NIter)
	}

	p := &iterativePropagation{adj: adj, niter: f.NIter}
	a := f.Alpha
	switch f.Type {
	case LowPass:
		d := 1 + a*f.Mu - a
		if d == 0 {
			return nil, errors.Errorf("gnnlfhf: 1+αμ−α is zero for alpha=%v mu=%v", a, f.Mu)
		}
		p.c1 = (1 + a*f.Mu - 2*a) / d
		p.c2 = a * f.Mu / d
		p.c3 = a * (1 - f.Mu) / d
	case HighPass:
		d := a*f.Beta + 1
		if d == 0 {
			return nil, errors.Errorf("gnnlfhf: αβ+1 is zero for alpha=%v beta=%v", a, f.Beta)
		}
		p.c1 = (a*f.Beta - a + 1) / d
		p.c2 = a / d
		p.c3 = a * f.Beta / d
		p.highPass = true
	default:
		return nil, errors.Wrapf(ErrUnknownType, "%d", f.Type)
	}
	return p, nil
}

func (p *iterativePropagation) apply(h *mat.Dense) *mat.Dense {
	n, c := h.Dims()

	var mh *mat.Dense
	if p.highPass {
		mh = p.adj.LaplacianMul(nil, h)
	} else {
		mh = p.adj.MulDense(nil, h)
	}
	base := mat.NewDense(n, c, nil)
	base.Scale(p.c3, mh)
	mh.Scale(p.c2, h)
	base.Add(base, mh)

	z := mat.NewDense(n, c, nil)
	z.Copy(h)
	next := mat.NewDense(n, c, nil)
	for k := 0; k < p.niter; k++ {
		p.adj.MulDense(next, z)
		next.Scale(p.c1, next)
		next.Add(next, base)
		z, next = next, z
	}
	return z
}

func (p *iterativePropagation) Forward(h *mat.Dense) *mat.Dense {
	return p.apply(h)
}

func (p *iterativePropagation) Backward(dOut *mat.Dense) *mat.Dense {
	return p.apply(dOut)
}
