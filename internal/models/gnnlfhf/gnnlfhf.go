// Package gnnlfhf implements GNN-LF and GNN-HF, the low-pass and high-pass
// graph filters derived from the unified optimization framework of
// Zhu et al. (WWW 2021), for semi-supervised node classification.
//
// The model is an MLP over node features followed by a fixed graph filter:
//
//	H = MLP(X)
//	Z = P·H
//
// where P is one of the four filters selected by Type and Form.
package gnnlfhf

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/cnclabs/gnnlfhf/pkg/graph"
	"github.com/cnclabs/gnnlfhf/pkg/nn"
)

// DefaultName is the model name used for the checkpoint file.
const DefaultName = "GNNLFHF"

// Config describes the model.
type Config struct {
	InChannels  int
	OutChannels int
	HiddenDim   int
	NumLayers   int
	DropRate    float64
	Filter      Filter
	Name        string
	Seed        int64
}

// GNNLFHF is an MLP followed by a GNN-LF or GNN-HF propagation.
type GNNLFHF struct {
	name     string
	lins     []*nn.Linear
	dropouts []*nn.Dropout
	relus    []*nn.ReLU
	prop     Propagation
	training bool
	logger   *zap.Logger
}

// New builds the model for the graph given by numNodes and edgeIndex.
func New(cfg Config, numNodes int, edgeIndex [2][]int, logger *zap.Logger) (*GNNLFHF, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.NumLayers < 1 {
		return nil, errors.Errorf("gnnlfhf: num_layers must be at least 1, got %d", cfg.NumLayers)
	}
	if cfg.InChannels < 1 || cfg.OutChannels < 1 {
		return nil, errors.Errorf("gnnlfhf: invalid channels in=%d out=%d", cfg.InChannels, cfg.OutChannels)
	}
	if cfg.NumLayers > 1 && cfg.HiddenDim < 1 {
		return nil, errors.Errorf("gnnlfhf: hidden_dim must be positive, got %d", cfg.HiddenDim)
	}
	if cfg.DropRate < 0 || cfg.DropRate > 1 {
		return nil, errors.Errorf("gnnlfhf: drop_rate must be in [0, 1], got %v", cfg.DropRate)
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	logger.Info("Model Setting",
		zap.String("model", cfg.Name),
		zap.Stringer("type", cfg.Filter.Type),
		zap.Stringer("form", cfg.Filter.Form),
		zap.Int("in_channels", cfg.InChannels),
		zap.Int("out_channels", cfg.OutChannels),
		zap.Int("hidden_dim", cfg.HiddenDim),
		zap.Int("num_layers", cfg.NumLayers),
		zap.Float64("drop_rate", cfg.DropRate),
		zap.Float64("alpha", cfg.Filter.Alpha),
		zap.Float64("mu", cfg.Filter.Mu),
		zap.Float64("beta", cfg.Filter.Beta),
		zap.Int("niter", cfg.Filter.NIter),
	)

	m := &GNNLFHF{name: cfg.Name, logger: logger}
	for i := 0; i < cfg.NumLayers; i++ {
		in, out := cfg.HiddenDim, cfg.HiddenDim
		if i == 0 {
			in = cfg.InChannels
		}
		if i == cfg.NumLayers-1 {
			out = cfg.OutChannels
		}
		m.lins = append(m.lins, nn.NewLinear(fmt.Sprintf("lin%d", i), in, out, rng))
		m.dropouts = append(m.dropouts, nn.NewDropout(cfg.DropRate, rng))
		if i < cfg.NumLayers-1 {
			m.relus = append(m.relus, &nn.ReLU{})
		}
	}

	adj, err := graph.NewAdjacency(numNodes, edgeIndex)
	if err != nil {
		return nil, errors.Wrap(err, "gnnlfhf: adjacency")
	}

	start := time.Now()
	m.prop, err = NewPropagation(adj.Normalized(), cfg.Filter)
	if err != nil {
		return nil, err
	}
	logger.Info("propagation ready",
		zap.Int("nodes", numNodes),
		zap.Int("edges", adj.NumEdges()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return m, nil
}

// Name returns the model name.
func (m *GNNLFHF) Name() string {
	return m.name
}

// SetTrain enables dropout.
func (m *GNNLFHF) SetTrain() {
	m.training = true
}

// SetEval disables dropout.
func (m *GNNLFHF) SetEval() {
	m.training = false
}

// Forward returns the N×C logits for the full graph.
func (m *GNNLFHF) Forward(x *mat.Dense) *mat.Dense {
	h := x
	last := len(m.lins) - 1
	for i, lin := range m.lins {
		h = m.dropouts[i].Forward(h, m.training)
		h = lin.Forward(h)
		if i < last {
			h = m.relus[i].Forward(h)
		}
	}
	return m.prop.Forward(h)
}

// Backward accumulates parameter gradients for dLoss/dLogits of the last
// Forward call.
func (m *GNNLFHF) Backward(dOut *mat.Dense) {
	d := m.prop.Backward(dOut)
	last := len(m.lins) - 1
	for i := last; i >= 0; i-- {
		if i < last {
			d = m.relus[i].Backward(d)
		}
		d = m.lins[i].Backward(d, i > 0)
		if i > 0 {
			d = m.dropouts[i].Backward(d)
		}
	}
}

// TrainableWeights returns all parameters in layer order.
func (m *GNNLFHF) TrainableWeights() []*nn.Parameter {
	params := make([]*nn.Parameter, 0, 2*len(m.lins))
	for _, lin := range m.lins {
		params = append(params, lin.Params()...)
	}
	return params
}

// RegParams returns the L2-penalized subset: the first linear layer.
func (m *GNNLFHF) RegParams() []*nn.Parameter {
	return m.lins[0].Params()
}

// SaveWeights writes all parameters to an npz archive.
func (m *GNNLFHF) SaveWeights(path string) error {
	return nn.SaveNPZ(path, m.TrainableWeights())
}

// LoadWeights restores all parameters from an npz archive.
func (m *GNNLFHF) LoadWeights(path string) error {
	return nn.LoadNPZ(path, m.TrainableWeights())
}
