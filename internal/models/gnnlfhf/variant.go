package gnnlfhf

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownType is returned for model types other than GNN-LF and GNN-HF.
	ErrUnknownType = errors.New("gnnlfhf: unknown model type")
	// ErrUnknownForm is returned for forms other than closed and iterative.
	ErrUnknownForm = errors.New("gnnlfhf: unknown model form")
)

// Type selects the graph filter.
type Type int

const (
	// LowPass is GNN-LF.
	LowPass Type = iota
	// HighPass is GNN-HF.
	HighPass
)

func (t Type) String() string {
	switch t {
	case LowPass:
		return "GNN-LF"
	case HighPass:
		return "GNN-HF"
	}
	return "unknown"
}

// ParseType accepts "GNN-LF" and "GNN-HF" in any case.
func ParseType(s string) (Type, error) {
	switch strings.ToUpper(s) {
	case "GNN-LF":
		return LowPass, nil
	case "GNN-HF":
		return HighPass, nil
	}
	return 0, errors.Wrapf(ErrUnknownType, "%q", s)
}

// Form selects how the propagation is evaluated.
type Form int

const (
	// Closed applies the exact filter as a precomputed dense operator.
	Closed Form = iota
	// Iterative approximates the filter with a fixed number of sparse steps.
	Iterative
)

func (f Form) String() string {
	switch f {
	case Closed:
		return "closed"
	case Iterative:
		return "iterative"
	}
	return "unknown"
}

// ParseForm accepts "closed" and "iterative" in any case.
func ParseForm(s string) (Form, error) {
	switch strings.ToLower(s) {
	case "closed":
		return Closed, nil
	case "iterative":
		return Iterative, nil
	}
	return 0, errors.Wrapf(ErrUnknownForm, "%q", s)
}
