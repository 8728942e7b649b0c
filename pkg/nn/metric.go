package nn

import (
	"gonum.org/v1/gonum/mat"
)

// Metric accumulates predictions until Reset.
type Metric interface {
	Update(logits *mat.Dense, labels []int)
	Result() float64
	Reset()
}

// Accuracy is the fraction of rows whose arg-max logit equals the label.
type Accuracy struct {
	correct int
	total   int
}

// Update accumulates one batch.
func (a *Accuracy) Update(logits *mat.Dense, labels []int) {
	for i, y := range labels {
		row := logits.RawRowView(i)
		best := 0
		for j, v := range row {
			if v > row[best] {
				best = j
			}
		}
		if best == y {
			a.correct++
		}
		a.total++
	}
}

// Result returns the accuracy so far, 0 when nothing was accumulated.
func (a *Accuracy) Result() float64 {
	if a.total == 0 {
		return 0
	}
	return float64(a.correct) / float64(a.total)
}

// Reset clears the counters.
func (a *Accuracy) Reset() {
	a.correct = 0
	a.total = 0
}

// CalculateAcc updates metric with one batch, reads the result and resets it.
func CalculateAcc(logits *mat.Dense, labels []int, metric Metric) float64 {
	metric.Update(logits, labels)
	acc := metric.Result()
	metric.Reset()
	return acc
}
