// Package trainer drives full-graph semi-supervised training: one optimizer
// step and one validation pass per epoch, best-validation checkpointing and a
// final test evaluation from the best checkpoint.
package trainer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cnclabs/gnnlfhf/pkg/nn"
)

// Model is the network being trained.
type Model interface {
	nn.Network
	SetTrain()
	SetEval()
	SaveWeights(path string) error
	LoadWeights(path string) error
}

// Stepper performs one forward, backward and update cycle.
type Stepper interface {
	Step(b *nn.Batch) (float64, error)
}

// Trainer runs the epoch loop.
type Trainer struct {
	Model          Model
	Step           Stepper
	Metric         nn.Metric
	Batch          *nn.Batch
	Epochs         int
	CheckpointPath string
	Out            io.Writer
	Logger         *zap.Logger
}

// Result summarizes a run.
type Result struct {
	BestValAcc float64
	BestEpoch  int
	TestAcc    float64
	Snapshots  int
}

// Run trains for Epochs epochs, checkpointing whenever validation accuracy
// strictly improves, then reloads the best checkpoint and reports test
// accuracy. Any collaborator error aborts the run.
func (t *Trainer) Run(ctx context.Context) (*Result, error) {
	logger := t.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	res := &Result{}
	for epoch := 1; epoch <= t.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		t.Model.SetTrain()
		trainLoss, err := t.Step.Step(t.Batch)
		if err != nil {
			return res, errors.Wrapf(err, "epoch %d", epoch)
		}

		t.Model.SetEval()
		valAcc := t.evaluate(t.Batch.ValIdx)

		fmt.Fprintf(t.Out, "Epoch [%03d]   train loss: %.4f  val acc: %.4f\n", epoch, trainLoss, valAcc)

		if valAcc > res.BestValAcc {
			res.BestValAcc = valAcc
			res.BestEpoch = epoch
			if err := t.Model.SaveWeights(t.CheckpointPath); err != nil {
				return res, errors.Wrapf(err, "epoch %d: save best model", epoch)
			}
			res.Snapshots++
			logger.Debug("saved best model",
				zap.Int("epoch", epoch),
				zap.Float64("val_acc", valAcc),
				zap.String("path", t.CheckpointPath),
				zap.String("size", fileSize(t.CheckpointPath)),
			)
		}
	}

	if err := t.Model.LoadWeights(t.CheckpointPath); err != nil {
		return res, errors.Wrap(err, "load best model")
	}
	t.Model.SetEval()
	res.TestAcc = t.evaluate(t.Batch.TestIdx)
	fmt.Fprintf(t.Out, "Test acc:  %.4f\n", res.TestAcc)

	logger.Info("training finished",
		zap.Int("best_epoch", res.BestEpoch),
		zap.Float64("best_val_acc", res.BestValAcc),
		zap.Float64("test_acc", res.TestAcc),
		zap.Int("snapshots", res.Snapshots),
	)
	return res, nil
}

// evaluate runs a full forward pass and returns the accuracy over idx.
func (t *Trainer) evaluate(idx []int) float64 {
	logits := t.Model.Forward(t.Batch.X)
	return nn.CalculateAcc(nn.Gather(logits, idx), nn.GatherInts(t.Batch.Y, idx), t.Metric)
}

func fileSize(path string) string {
	st, err := os.Stat(path)
	if err != nil {
		return "unknown"
	}
	return humanize.Bytes(uint64(st.Size()))
}
