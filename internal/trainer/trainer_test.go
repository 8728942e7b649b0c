package trainer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/cnclabs/gnnlfhf/pkg/nn"
)

// stubModel versions its weights: every Step bumps the version, SaveWeights
// records it under the path and LoadWeights restores it.
type stubModel struct {
	version  int
	training bool
	saved    map[string]int
	saves    []int
	logits   func(version int) *mat.Dense
	// version seen by each evaluation-mode forward pass
	evalVersions []int
}

func newStubModel(logits func(version int) *mat.Dense) *stubModel {
	return &stubModel{saved: make(map[string]int), logits: logits}
}

func (m *stubModel) Forward(x *mat.Dense) *mat.Dense {
	if !m.training {
		m.evalVersions = append(m.evalVersions, m.version)
	}
	if m.logits != nil {
		return m.logits(m.version)
	}
	r, _ := x.Dims()
	return mat.NewDense(r, 2, nil)
}

func (m *stubModel) Backward(*mat.Dense) {}
func (m *stubModel) TrainableWeights() []*nn.Parameter { return nil }
func (m *stubModel) RegParams() []*nn.Parameter { return nil }
func (m *stubModel) SetTrain() { m.training = true }
func (m *stubModel) SetEval() { m.training = false }

func (m *stubModel) SaveWeights(path string) error {
	m.saved[path] = m.version
	m.saves = append(m.saves, m.version)
	return nil
}

func (m *stubModel) LoadWeights(path string) error {
	v, ok := m.saved[path]
	if !ok {
		return errors.Errorf("open %s: no such file", path)
	}
	m.version = v
	return nil
}

type stubStep struct {
	model  *stubModel
	losses []float64
	err    error
}

func (s *stubStep) Step(*nn.Batch) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	if !s.model.training {
		return 0, errors.New("step outside training mode")
	}
	s.model.version++
	if len(s.losses) == 0 {
		return 1, nil
	}
	l := s.losses[0]
	s.losses = s.losses[1:]
	return l, nil
}

// scriptedMetric returns the scripted accuracies in read order.
type scriptedMetric struct {
	results []float64
	reads   int
	resets  int
}

func (s *scriptedMetric) Update(*mat.Dense, []int) {}

func (s *scriptedMetric) Result() float64 {
	r := s.results[s.reads]
	s.reads++
	return r
}

func (s *scriptedMetric) Reset() { s.resets++ }

func testBatch() *nn.Batch {
	return &nn.Batch{
		X:        mat.NewDense(4, 1, nil),
		Y:        []int{0, 1, 0, 1},
		TrainIdx: []int{0},
		ValIdx:   []int{1, 2},
		TestIdx:  []int{3},
		NumNodes: 4,
	}
}

func newTestTrainer(model *stubModel, metric nn.Metric, epochs int, out *bytes.Buffer) *Trainer {
	return &Trainer{
		Model:          model,
		Step:           &stubStep{model: model, losses: []float64{0.69314, 0.5}},
		Metric:         metric,
		Batch:          testBatch(),
		Epochs:         epochs,
		CheckpointPath: "./GNNLFHF.npz",
		Out:            out,
	}
}

func TestRunScriptedAccuracies(t *testing.T) {
	model := newStubModel(nil)
	metric := &scriptedMetric{results: []float64{0.70, 0.65, 0.81}}
	var out bytes.Buffer

	res, err := newTestTrainer(model, metric, 2, &out).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Snapshots)
	assert.Equal(t, []int{1}, model.saves)
	assert.Equal(t, 0.70, res.BestValAcc)
	assert.Equal(t, 1, res.BestEpoch)
	assert.Equal(t, 0.81, res.TestAcc)
	assert.Equal(t, 3, metric.resets)

	assert.Equal(t,
		"Epoch [001]   train loss: 0.6931  val acc: 0.7000\n"+
			"Epoch [002]   train loss: 0.5000  val acc: 0.6500\n"+
			"Test acc:  0.8100\n",
		out.String())

	// the test pass ran on the reloaded epoch-1 weights
	assert.Equal(t, []int{1, 2, 1}, model.evalVersions)
}

func TestSnapshotOnlyOnStrictImprovement(t *testing.T) {
	model := newStubModel(nil)
	vals := []float64{0.5, 0.5, 0.6, 0.4, 0.6, 0.7, 0.0}
	metric := &scriptedMetric{results: append(append([]float64{}, vals...), 0.9)}
	var out bytes.Buffer

	res, err := newTestTrainer(model, metric, len(vals), &out).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3, 6}, model.saves)
	assert.Equal(t, 3, res.Snapshots)
	assert.Equal(t, 0.7, res.BestValAcc)
	assert.Equal(t, 6, res.BestEpoch)

	best := 0.0
	for epoch, acc := range vals {
		saved := false
		for _, v := range model.saves {
			saved = saved || v == epoch+1
		}
		assert.Equal(t, acc > best, saved, "epoch %d", epoch+1)
		if acc > best {
			best = acc
		}
	}

	assert.Equal(t, 1, strings.Count(out.String(), "Test acc:"))
	assert.Equal(t, len(vals), strings.Count(out.String(), "Epoch ["))
}

func TestTestAccuracyUsesBestSnapshot(t *testing.T) {
	// labels: val rows 1, 2 -> {1, 0}; test row 3 -> 1
	right := mat.NewDense(4, 2, []float64{
		1, 0,
		0, 1,
		1, 0,
		0, 1,
	})
	wrong := mat.NewDense(4, 2, []float64{
		0, 1,
		0, 1,
		0, 1,
		1, 0,
	})
	model := newStubModel(func(version int) *mat.Dense {
		if version == 1 {
			return right
		}
		return wrong
	})
	var out bytes.Buffer

	res, err := newTestTrainer(model, &nn.Accuracy{}, 3, &out).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1.0, res.BestValAcc)
	assert.Equal(t, 1, res.Snapshots)
	// the in-memory weights after epoch 3 would score 0
	assert.Equal(t, 1.0, res.TestAcc)
	assert.True(t, strings.HasSuffix(out.String(), "Test acc:  1.0000\n"))
}

func TestRunWithoutImprovementFailsToReload(t *testing.T) {
	model := newStubModel(nil)
	metric := &scriptedMetric{results: []float64{0, 0}}
	var out bytes.Buffer

	res, err := newTestTrainer(model, metric, 2, &out).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load best model")
	assert.Equal(t, 0, res.Snapshots)
	assert.NotContains(t, out.String(), "Test acc")
}

func TestRunPropagatesStepError(t *testing.T) {
	model := newStubModel(nil)
	tr := newTestTrainer(model, &scriptedMetric{}, 3, &bytes.Buffer{})
	boom := errors.New("boom")
	tr.Step = &stubStep{model: model, err: boom}

	_, err := tr.Run(context.Background())
	assert.True(t, errors.Is(err, boom))
	assert.Empty(t, model.saves)
}

func TestRunStopsOnCancel(t *testing.T) {
	model := newStubModel(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := newTestTrainer(model, &scriptedMetric{}, 3, &out).Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, out.String())
}

// linearNet is logits = X·W with W as its only, regularized, parameter.
type linearNet struct {
	w    *nn.Parameter
	x    *mat.Dense
	dOut *mat.Dense
}

func (n *linearNet) Forward(x *mat.Dense) *mat.Dense {
	n.x = x
	var out mat.Dense
	out.Mul(x, n.w.Value)
	return &out
}

func (n *linearNet) Backward(dOut *mat.Dense) {
	n.dOut = dOut
	var dW mat.Dense
	dW.Mul(n.x.T(), dOut)
	n.w.Grad.Add(n.w.Grad, &dW)
}

func (n *linearNet) TrainableWeights() []*nn.Parameter { return []*nn.Parameter{n.w} }
func (n *linearNet) RegParams() []*nn.Parameter { return []*nn.Parameter{n.w} }

func TestSemiSpvzLoss(t *testing.T) {
	w := nn.NewParameter("w", 2, 2)
	w.Value.SetRow(0, []float64{1, 2})
	w.Value.SetRow(1, []float64{3, 4})
	net := &linearNet{w: w}

	b := &nn.Batch{
		X: mat.NewDense(3, 2, []float64{
			1, 0,
			0, 1,
			1, 1,
		}),
		Y:         []int{1, 0, 1},
		TrainIdx:  []int{0, 2},
		RegLambda: 0.1,
	}

	lossFn := NewSemiSpvzLoss(net, nn.SoftmaxCrossEntropy)
	require.Error(t, lossFn.Backward())

	loss, err := lossFn.Forward(b)
	require.NoError(t, err)

	var logits mat.Dense
	logits.Mul(b.X, w.Value)
	ce, _, err := nn.SoftmaxCrossEntropy(nn.Gather(&logits, b.TrainIdx), []int{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, ce+0.1/2*30, loss, 1e-12)

	// parameters are untouched by the loss wrapper
	assert.Equal(t, []float64{1, 2, 3, 4}, w.Value.RawMatrix().Data)

	require.NoError(t, lossFn.Backward())
	// only training rows carry gradient
	assert.Equal(t, []float64{0, 0}, net.dOut.RawRowView(1))
	assert.NotEqual(t, []float64{0, 0}, net.dOut.RawRowView(0))

	// dL/dW = Xᵀ·dOut + λW
	var want mat.Dense
	want.Mul(b.X.T(), net.dOut)
	want.Add(&want, scaled(0.1, w.Value))
	assert.True(t, mat.EqualApprox(&want, w.Grad, 1e-12))
}
