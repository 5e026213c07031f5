// Package metrics scores regression predictions.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Grade is a qualitative verdict on a model's R².
type Grade string

const (
	Excellent Grade = "excellent"
	Good      Grade = "good"
	Weak      Grade = "weak"
)

// Grades maps r2 onto a verdict: above 0.75 is excellent, above 0.65 good.
func Grades(r2 float64) Grade {
	switch {
	case r2 > 0.75:
		return Excellent
	case r2 > 0.65:
		return Good
	default:
		return Weak
	}
}

// Verdict is a one-line reading of the grade.
func (g Grade) Verdict() string {
	switch g {
	case Excellent:
		return "analyst-grade accuracy"
	case Good:
		return "captures most of the price structure"
	default:
		return "weak fit, the data may be too noisy"
	}
}

// Score holds held-out evaluation results.
type Score struct {
	N     int
	RMSE  float64
	R2    float64
	Grade Grade
}

// Evaluate compares predictions against actual labels.
func Evaluate(pred, actual []float64) (Score, error) {
	if len(pred) != len(actual) {
		return Score{}, fmt.Errorf("%d predictions for %d labels", len(pred), len(actual))
	}
	if len(pred) == 0 {
		return Score{}, errors.New("nothing to evaluate")
	}
	r2 := R2(pred, actual)
	return Score{
		N:     len(pred),
		RMSE:  RMSE(pred, actual),
		R2:    r2,
		Grade: Grades(r2),
	}, nil
}

// RMSE is the root mean squared error. Inputs must have equal non-zero length.
func RMSE(pred, actual []float64) float64 {
	return floats.Distance(pred, actual, 2) / math.Sqrt(float64(len(actual)))
}

// R2 is the coefficient of determination of pred against actual.
func R2(pred, actual []float64) float64 {
	return stat.RSquaredFrom(pred, actual, nil)
}
