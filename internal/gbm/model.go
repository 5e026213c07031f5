// Package gbm implements gradient-boosted regression trees with squared
// error loss.
package gbm

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RelPath is the model artifact's location under a project root.
const RelPath = "models/model.json"

// Params are the boosting hyperparameters.
type Params struct {
	NEstimators    int     `json:"n_estimators" yaml:"n_estimators"`
	LearningRate   float64 `json:"learning_rate" yaml:"learning_rate"`
	MaxDepth       int     `json:"max_depth" yaml:"max_depth"`
	MinSamplesLeaf int     `json:"min_samples_leaf" yaml:"min_samples_leaf"`
}

// DefaultParams returns the production hyperparameters.
func DefaultParams() Params {
	return Params{
		NEstimators:    1000,
		LearningRate:   0.05,
		MaxDepth:       6,
		MinSamplesLeaf: 5,
	}
}

// Validate checks that every parameter is usable.
func (p Params) Validate() error {
	var errs []error
	if p.NEstimators < 1 {
		errs = append(errs, fmt.Errorf("n_estimators must be >= 1, got %d", p.NEstimators))
	}
	if !(p.LearningRate > 0) || p.LearningRate > 1 {
		errs = append(errs, fmt.Errorf("learning_rate must be in (0, 1], got %g", p.LearningRate))
	}
	if p.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("max_depth must be >= 1, got %d", p.MaxDepth))
	}
	if p.MinSamplesLeaf < 1 {
		errs = append(errs, fmt.Errorf("min_samples_leaf must be >= 1, got %d", p.MinSamplesLeaf))
	}
	return errors.Join(errs...)
}

// Model is a fitted ensemble. The zero value is not usable; build one with
// Fit or Load.
type Model struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Params    Params    `json:"params"`
	Features  []string  `json:"features"`
	Init      float64   `json:"init"`
	Trees     []Tree    `json:"trees"`
}

// Fit trains a model on x (one row per sample, columns named by features)
// and labels y. logger may be nil.
func Fit(features []string, x [][]float64, y []float64, p Params, logger *slog.Logger) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(x) == 0 {
		return nil, errors.New("no training samples")
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%d samples but %d labels", len(x), len(y))
	}
	for i, row := range x {
		if len(row) != len(features) {
			return nil, fmt.Errorf("sample %d has %d values, want %d", i, len(row), len(features))
		}
		if floats.HasNaN(row) {
			return nil, fmt.Errorf("sample %d contains NaN", i)
		}
	}
	if floats.HasNaN(y) {
		return nil, errors.New("labels contain NaN")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	n := len(x)
	m := &Model{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Params:    p,
		Features:  slices.Clone(features),
		Init:      stat.Mean(y, nil),
		Trees:     make([]Tree, 0, p.NEstimators),
	}

	presorted := make([][]int, len(features))
	for f := range features {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		slices.SortStableFunc(order, func(a, b int) int {
			switch {
			case x[a][f] < x[b][f]:
				return -1
			case x[a][f] > x[b][f]:
				return 1
			}
			return 0
		})
		presorted[f] = order
	}

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = m.Init
	}
	resid := make([]float64, n)
	work := make([][]int, len(features))
	for f := range work {
		work[f] = make([]int, n)
	}
	b := newTreeBuilder(x, p.MaxDepth, p.MinSamplesLeaf)

	for t := 0; t < p.NEstimators; t++ {
		floats.SubTo(resid, y, pred)
		for f := range work {
			copy(work[f], presorted[f])
		}
		tree := b.build(resid, work)
		m.Trees = append(m.Trees, tree)
		for i := range pred {
			pred[i] += p.LearningRate * tree.predict(x[i])
		}
		if (t+1)%100 == 0 || t+1 == p.NEstimators {
			floats.SubTo(resid, y, pred)
			logger.Debug("boosting",
				"trees", t+1,
				"train_rmse", math.Sqrt(floats.Dot(resid, resid)/float64(n)))
		}
	}

	logger.Info("model fitted", "id", m.ID, "trees", len(m.Trees), "samples", n)
	return m, nil
}

// Predict returns the model's estimate for one feature vector.
func (m *Model) Predict(x []float64) (float64, error) {
	if len(x) != len(m.Features) {
		return 0, fmt.Errorf("got %d features, model expects %d", len(x), len(m.Features))
	}
	sum := 0.0
	for i := range m.Trees {
		sum += m.Trees[i].predict(x)
	}
	return m.Init + m.Params.LearningRate*sum, nil
}

// PredictBatch predicts every row of x.
func (m *Model) PredictBatch(x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, row := range x {
		v, err := m.Predict(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Save writes the model as JSON to path, replacing any existing file.
func (m *Model) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating model directory: %w", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing model: %w", err)
	}
	return nil
}

// Load reads a model written by Save. A missing file yields an error
// wrapping fs.ErrNotExist.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing model %s: %w", path, err)
	}
	if err := m.check(); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return &m, nil
}

// check verifies tree structure so Predict cannot index out of range.
func (m *Model) check() error {
	if len(m.Features) == 0 {
		return errors.New("no feature names")
	}
	for t, tree := range m.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d is empty", t)
		}
		for i, n := range tree.Nodes {
			if n.Leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= len(m.Features) {
				return fmt.Errorf("tree %d node %d: feature %d out of range", t, i, n.Feature)
			}
			if n.Left <= i || n.Right <= i || n.Left >= len(tree.Nodes) || n.Right >= len(tree.Nodes) {
				return fmt.Errorf("tree %d node %d: bad child index", t, i)
			}
		}
	}
	return nil
}
