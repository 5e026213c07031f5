package trainer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pricecast-dev/pricecast/internal/config"
	"github.com/pricecast-dev/pricecast/internal/gbm"
	"github.com/pricecast-dev/pricecast/internal/gitops"
	"github.com/pricecast-dev/pricecast/internal/id"
	"github.com/pricecast-dev/pricecast/internal/metrics"
	"github.com/pricecast-dev/pricecast/internal/runlog"
	"github.com/pricecast-dev/pricecast/internal/split"
)

// Options configure a training run.
type Options struct {
	// FromFeatures trains on the persisted feature table instead of
	// re-cleaning the raw input.
	FromFeatures bool
	Logger       *slog.Logger
	// Now overrides the clock for run IDs and log timestamps.
	Now func() time.Time
}

// Result describes a finished run.
type Result struct {
	RunID      string
	Model      *gbm.Model
	Dataset    *Dataset
	TrainRows  int
	TestRows   int
	Score      metrics.Score
	CommitHash string
}

// Run executes one full retrain and persists the model, schema, district
// table, and run log entry under projectRoot.
func Run(projectRoot string, cfg *config.Config, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var (
		ds  *Dataset
		err error
	)
	if opts.FromFeatures {
		ds, err = LoadDataset(projectRoot, cfg.FeaturesPath(projectRoot), cfg.Cleaning.Policy())
	} else {
		ds, err = BuildDataset(cfg.InputPath(projectRoot), cfg.Cleaning.Policy(), logger)
	}
	if err != nil {
		return nil, err
	}

	trainIdx, testIdx, err := split.TrainTest(len(ds.Rows), cfg.Training.TestRatio, cfg.Training.Seed)
	if err != nil {
		return nil, fmt.Errorf("splitting %d rows: %w", len(ds.Rows), err)
	}
	trainX, trainY, err := ds.Schema.Matrix(split.Apply(ds.Rows, trainIdx))
	if err != nil {
		return nil, err
	}
	testX, testY, err := ds.Schema.Matrix(split.Apply(ds.Rows, testIdx))
	if err != nil {
		return nil, err
	}
	logger.Info("split", "train", len(trainIdx), "test", len(testIdx), "seed", cfg.Training.Seed)

	m, err := gbm.Fit(ds.Schema.Features, trainX, trainY, cfg.Training.Params, logger)
	if err != nil {
		return nil, fmt.Errorf("fitting model: %w", err)
	}

	pred, err := m.PredictBatch(testX)
	if err != nil {
		return nil, fmt.Errorf("scoring test rows: %w", err)
	}
	score, err := metrics.Evaluate(pred, testY)
	if err != nil {
		return nil, fmt.Errorf("scoring test rows: %w", err)
	}
	logger.Info("evaluated", "rmse", score.RMSE, "r2", score.R2, "grade", score.Grade)

	if err := m.Save(filepath.Join(projectRoot, gbm.RelPath)); err != nil {
		return nil, err
	}
	if !opts.FromFeatures {
		if err := ds.Save(projectRoot, cfg.FeaturesPath(projectRoot)); err != nil {
			return nil, err
		}
	}

	existing, err := runlog.RunIDs(projectRoot)
	if err != nil {
		return nil, err
	}
	ts := now().UTC()
	res := &Result{
		RunID:     id.NextRunID(existing, ts),
		Model:     m,
		Dataset:   ds,
		TrainRows: len(trainIdx),
		TestRows:  len(testIdx),
		Score:     score,
	}

	if cfg.Git.AutoCommit && gitops.IsRepo(projectRoot) {
		hash, err := commitArtifacts(projectRoot, cfg, res)
		if err != nil {
			return nil, err
		}
		res.CommitHash = hash
	}

	entry := runlog.Entry{
		Timestamp:  ts,
		RunID:      res.RunID,
		ModelID:    m.ID,
		Rows:       len(ds.Rows),
		TrainRows:  res.TrainRows,
		TestRows:   res.TestRows,
		RMSE:       score.RMSE,
		R2:         score.R2,
		Grade:      string(score.Grade),
		CommitHash: res.CommitHash,
	}
	if err := runlog.Append(projectRoot, []runlog.Entry{entry}); err != nil {
		return nil, err
	}
	return res, nil
}

func commitArtifacts(projectRoot string, cfg *config.Config, res *Result) (string, error) {
	paths := []string{filepath.Dir(gbm.RelPath)}
	if rel, err := filepath.Rel(projectRoot, cfg.FeaturesPath(projectRoot)); err == nil && filepath.IsLocal(rel) {
		paths = append(paths, rel)
	}
	if _, err := os.Stat(filepath.Join(projectRoot, runlog.RelPath)); err == nil {
		paths = append(paths, filepath.Dir(runlog.RelPath))
	}

	msg := fmt.Sprintf("train: %s (r2=%.4f, rmse=%.4f)", res.RunID, res.Score.R2, res.Score.RMSE)
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.CommitPaths(projectRoot, msg, author, paths...)
	if errors.Is(err, gitops.ErrNothingToCommit) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("committing artifacts: %w", err)
	}
	return hash, nil
}
