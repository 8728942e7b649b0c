package nn

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// LossFunc maps logits and integer labels to a scalar loss and its gradient
// with respect to the logits.
type LossFunc func(logits *mat.Dense, labels []int) (float64, *mat.Dense, error)

// SoftmaxCrossEntropy is the mean over rows of −log softmax(logits)[label].
// An empty batch has zero loss.
func SoftmaxCrossEntropy(logits *mat.Dense, labels []int) (float64, *mat.Dense, error) {
	n, c := logits.Dims()
	if n != len(labels) {
		return 0, nil, errors.Wrapf(ErrShapeMismatch, "%d logit rows for %d labels", n, len(labels))
	}

	if n == 0 {
		return 0, &mat.Dense{}, nil
	}
	grad := mat.NewDense(n, c, nil)

	loss := 0.0
	for i := 0; i < n; i++ {
		y := labels[i]
		if y < 0 || y >= c {
			return 0, nil, errors.Errorf("nn: label %d out of range [0, %d)", y, c)
		}
		row := logits.RawRowView(i)
		g := grad.RawRowView(i)

		maxLogit := math.Inf(-1)
		for _, v := range row {
			if v > maxLogit {
				maxLogit = v
			}
		}
		sum := 0.0
		for j, v := range row {
			g[j] = math.Exp(v - maxLogit)
			sum += g[j]
		}
		loss += math.Log(sum) - (row[y] - maxLogit)

		for j := range g {
			g[j] /= sum
		}
		g[y] -= 1
	}

	grad.Scale(1/float64(n), grad)
	return loss / float64(n), grad, nil
}
