package trainer

import (
	"context"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cnclabs/gnnlfhf/internal/config"
	"github.com/cnclabs/gnnlfhf/internal/models/gnnlfhf"
	"github.com/cnclabs/gnnlfhf/pkg/device"
	"github.com/cnclabs/gnnlfhf/pkg/graph"
	"github.com/cnclabs/gnnlfhf/pkg/nn"
	"github.com/cnclabs/gnnlfhf/pkg/planetoid"
)

// DatasetLoader loads the dataset called name under root.
type DatasetLoader func(root, name string) (*planetoid.Dataset, error)

// Run validates cfg, loads the dataset, builds GNN-LF/HF and trains it,
// writing the per-epoch report and the test accuracy to out.
func Run(ctx context.Context, cfg *config.Config, load DatasetLoader, out io.Writer, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dev := device.Select(cfg.GPU, logger)

	dataset, err := load(cfg.DatasetPath, cfg.Dataset)
	if err != nil {
		return nil, errors.Wrap(err, "load dataset")
	}
	g := dataset.Graph

	trainIdx := graph.MaskToIndex(g.TrainMask)
	valIdx := graph.MaskToIndex(g.ValMask)
	testIdx := graph.MaskToIndex(g.TestMask)
	logger.Info("dataset loaded",
		zap.String("dataset", dataset.Name),
		zap.Int("nodes", g.NumNodes()),
		zap.Int("edges", g.NumEdges()),
		zap.Int("features", dataset.NumFeatures),
		zap.Int("classes", dataset.NumClasses),
		zap.String("feature_bytes", humanize.Bytes(uint64(8*g.NumNodes()*dataset.NumFeatures))),
		zap.Int("train", len(trainIdx)),
		zap.Int("val", len(valIdx)),
		zap.Int("test", len(testIdx)),
	)

	modelType, err := gnnlfhf.ParseType(cfg.ModelType)
	if err != nil {
		return nil, err
	}
	modelForm, err := gnnlfhf.ParseForm(cfg.ModelForm)
	if err != nil {
		return nil, err
	}

	net, err := gnnlfhf.New(gnnlfhf.Config{
		InChannels:  dataset.NumFeatures,
		OutChannels: dataset.NumClasses,
		HiddenDim:   cfg.HiddenDim,
		NumLayers:   cfg.NumLayers,
		DropRate:    cfg.DropRate,
		Filter: gnnlfhf.Filter{
			Type:  modelType,
			Form:  modelForm,
			Alpha: cfg.Alpha,
			Mu:    cfg.Mu,
			Beta:  cfg.Beta,
			NIter: cfg.NIter,
		},
		Name: gnnlfhf.DefaultName,
		Seed: cfg.Seed,
	}, g.NumNodes(), g.EdgeIndex, logger)
	if err != nil {
		return nil, errors.Wrap(err, "build model")
	}

	optimizer := nn.NewAdam(cfg.LR)
	lossFunc := NewSemiSpvzLoss(net, nn.SoftmaxCrossEntropy)
	trainOneStep := nn.NewTrainOneStep(lossFunc, optimizer, net.TrainableWeights())

	logger.Info("Learning Parameters",
		zap.Stringer("device", dev),
		zap.Float64("lr", cfg.LR),
		zap.Int("n_epoch", cfg.NEpoch),
		zap.Float64("reg_lambda", cfg.RegLambda),
	)

	t := &Trainer{
		Model:  net,
		Step:   trainOneStep,
		Metric: &nn.Accuracy{},
		Batch: &nn.Batch{
			X:         g.X,
			Y:         g.Y,
			TrainIdx:  trainIdx,
			ValIdx:    valIdx,
			TestIdx:   testIdx,
			NumNodes:  g.NumNodes(),
			RegLambda: cfg.RegLambda,
		},
		Epochs:         cfg.NEpoch,
		CheckpointPath: cfg.CheckpointPath(net.Name()),
		Out:            out,
		Logger:         logger,
	}
	return t.Run(ctx)
}
