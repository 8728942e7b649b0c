package nn

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Batch is the full-graph training input: features, labels, the partition
// indices and the L2 weight.
type Batch struct {
	X         *mat.Dense
	Y         []int
	TrainIdx  []int
	ValIdx    []int
	TestIdx   []int
	NumNodes  int
	RegLambda float64
}

// Network is a differentiable model over the full graph.
type Network interface {
	Forward(x *mat.Dense) *mat.Dense
	// Backward accumulates parameter gradients from dLoss/dOutput of the
	// last Forward.
	Backward(dOut *mat.Dense)
	TrainableWeights() []*Parameter
	RegParams() []*Parameter
}

// WithLoss wraps a network with a loss. Forward returns the scalar loss;
// Backward accumulates the gradients of that loss into the network's
// parameters without changing their values.
type WithLoss interface {
	Forward(b *Batch) (float64, error)
	Backward() error
}

// TrainOneStep runs forward, backward and one optimizer update.
type TrainOneStep struct {
	loss      WithLoss
	optimizer Optimizer
	weights   []*Parameter
}

// NewTrainOneStep binds a loss wrapper, an optimizer and the weights it
// updates.
func NewTrainOneStep(loss WithLoss, optimizer Optimizer, weights []*Parameter) *TrainOneStep {
	return &TrainOneStep{loss: loss, optimizer: optimizer, weights: weights}
}

// Step performs one optimization step and returns the loss before the update.
func (s *TrainOneStep) Step(b *Batch) (float64, error) {
	ZeroGrads(s.weights)

	loss, err := s.loss.Forward(b)
	if err != nil {
		return 0, errors.Wrap(err, "loss forward")
	}
	if err := s.loss.Backward(); err != nil {
		return 0, errors.Wrap(err, "loss backward")
	}

	s.optimizer.Apply(s.weights)
	return loss, nil
}
