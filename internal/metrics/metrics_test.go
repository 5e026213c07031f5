package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRMSE(t *testing.T) {
	assert.Equal(t, 0.0, RMSE([]float64{1, 2, 3}, []float64{1, 2, 3}))
	assert.InDelta(t, 2.0, RMSE([]float64{3, 4}, []float64{1, 2}), 1e-12)
	assert.InDelta(t, 1.0, RMSE([]float64{0, 2}, []float64{1, 1}), 1e-12)
}

func TestR2(t *testing.T) {
	actual := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.0, R2(actual, actual), 1e-12)

	mean := []float64{2.5, 2.5, 2.5, 2.5}
	assert.InDelta(t, 0.0, R2(mean, actual), 1e-12)

	// SSres = 1, SStot = 5.
	assert.InDelta(t, 0.8, R2([]float64{1, 2, 3, 5}, actual), 1e-12)
}

func TestGrades(t *testing.T) {
	tests := []struct {
		r2   float64
		want Grade
	}{
		{0.9, Excellent},
		{0.7501, Excellent},
		{0.75, Good},
		{0.7, Good},
		{0.65, Weak},
		{0.1, Weak},
		{-2, Weak},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Grades(tt.r2), "r2=%v", tt.r2)
	}
}

func TestEvaluate(t *testing.T) {
	s, err := Evaluate([]float64{1, 2, 3, 5}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 4, s.N)
	assert.InDelta(t, 0.8, s.R2, 1e-12)
	assert.InDelta(t, 0.5, s.RMSE, 1e-12)
	assert.Equal(t, Excellent, s.Grade)

	_, err = Evaluate(nil, nil)
	assert.Error(t, err)
	_, err = Evaluate([]float64{1}, []float64{1, 2})
	assert.Error(t, err)
}

func TestVerdict(t *testing.T) {
	assert.NotEqual(t, Excellent.Verdict(), Good.Verdict())
	assert.Contains(t, Weak.Verdict(), "noisy")
	assert.Equal(t, Weak.Verdict(), Grade("unknown").Verdict())
}
