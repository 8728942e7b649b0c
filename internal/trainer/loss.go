package trainer

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/cnclabs/gnnlfhf/pkg/nn"
)

// SemiSpvzLoss is the semi-supervised node classification loss: the base
// loss over the training nodes plus reg_lambda/2 · Σ p² over the network's
// regularization parameters.
type SemiSpvzLoss struct {
	net    nn.Network
	lossFn nn.LossFunc

	// state of the last Forward, consumed by Backward
	dOut      *mat.Dense
	regLambda float64
}

// NewSemiSpvzLoss wraps net with lossFn.
func NewSemiSpvzLoss(net nn.Network, lossFn nn.LossFunc) *SemiSpvzLoss {
	return &SemiSpvzLoss{net: net, lossFn: lossFn}
}

// Forward runs the network on the full graph and returns the loss.
func (l *SemiSpvzLoss) Forward(b *nn.Batch) (float64, error) {
	logits := l.net.Forward(b.X)
	trainLogits := nn.Gather(logits, b.TrainIdx)
	trainY := nn.GatherInts(b.Y, b.TrainIdx)

	loss, dTrain, err := l.lossFn(trainLogits, trainY)
	if err != nil {
		return 0, errors.Wrap(err, "train loss")
	}

	l2 := nn.SumSquares(l.net.RegParams())
	loss += b.RegLambda / 2 * l2

	r, c := logits.Dims()
	l.dOut = mat.NewDense(r, c, nil)
	nn.ScatterAdd(l.dOut, dTrain, b.TrainIdx)
	l.regLambda = b.RegLambda
	return loss, nil
}

// Backward accumulates the gradient of the last Forward into the network's
// parameters.
func (l *SemiSpvzLoss) Backward() error {
	if l.dOut == nil {
		return errors.New("trainer: Backward called before Forward")
	}
	l.net.Backward(l.dOut)
	for _, p := range l.net.RegParams() {
		p.Grad.Add(p.Grad, scaled(l.regLambda, p.Value))
	}
	l.dOut = nil
	return nil
}

func scaled(f float64, m *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Scale(f, m)
	return &out
}
