// Package split partitions a table into train and test subsets.
package split

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
)

// TrainTest returns train and test row indices for n rows. The test subset
// holds ceil(n*testRatio) rows. The same n, ratio, and seed always yield the
// same partition.
func TrainTest(n int, testRatio float64, seed uint64) (train, test []int, err error) {
	if n < 0 {
		return nil, nil, fmt.Errorf("negative row count %d", n)
	}
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("test ratio %g not in (0, 1)", testRatio)
	}

	nTest := int(math.Ceil(float64(n) * testRatio))
	if n > 0 && nTest >= n {
		return nil, nil, fmt.Errorf("test ratio %g leaves no training rows out of %d", testRatio, n)
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	perm := rng.Perm(n)

	test = slices.Clone(perm[:nTest])
	train = slices.Clone(perm[nTest:])
	return train, test, nil
}

// Apply selects rows by index.
func Apply[T any](rows []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}
