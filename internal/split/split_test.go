package split

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainTest_Sizes(t *testing.T) {
	tests := []struct {
		n, wantTest int
	}{
		{100, 20},
		{101, 21},
		{5, 1},
		{2, 1},
		{0, 0},
	}
	for _, tt := range tests {
		train, test, err := TrainTest(tt.n, 0.2, 42)
		require.NoError(t, err, "n=%d", tt.n)
		assert.Len(t, test, tt.wantTest, "n=%d", tt.n)
		assert.Len(t, train, tt.n-tt.wantTest, "n=%d", tt.n)
	}
}

func TestTrainTest_Deterministic(t *testing.T) {
	train1, test1, err := TrainTest(500, 0.2, 42)
	require.NoError(t, err)
	train2, test2, err := TrainTest(500, 0.2, 42)
	require.NoError(t, err)

	assert.Equal(t, train1, train2)
	assert.Equal(t, test1, test2)
}

func TestTrainTest_SeedChangesPartition(t *testing.T) {
	_, test1, err := TrainTest(500, 0.2, 42)
	require.NoError(t, err)
	_, test2, err := TrainTest(500, 0.2, 7)
	require.NoError(t, err)

	assert.NotEqual(t, test1, test2)
}

func TestTrainTest_DisjointCover(t *testing.T) {
	train, test, err := TrainTest(237, 0.2, 42)
	require.NoError(t, err)

	all := append(slices.Clone(train), test...)
	slices.Sort(all)
	for i, v := range all {
		require.Equal(t, i, v)
	}
}

func TestTrainTest_BadRatio(t *testing.T) {
	for _, r := range []float64{0, 1, -0.1, 1.5} {
		_, _, err := TrainTest(10, r, 42)
		assert.Error(t, err, "ratio %g", r)
	}
	_, _, err := TrainTest(1, 0.2, 42)
	assert.Error(t, err, "a single row cannot be split")
	_, _, err = TrainTest(-1, 0.2, 42)
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	rows := []string{"a", "b", "c", "d"}
	assert.Equal(t, []string{"d", "a"}, Apply(rows, []int{3, 0}))
	assert.Empty(t, Apply(rows, nil))
}
