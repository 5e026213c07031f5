// Package trainer runs the batch pipeline: ingest, clean, build features,
// split, fit, evaluate, and persist.
package trainer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pricecast-dev/pricecast/internal/cleaning"
	"github.com/pricecast-dev/pricecast/internal/config"
	"github.com/pricecast-dev/pricecast/internal/districts"
	"github.com/pricecast-dev/pricecast/internal/features"
	"github.com/pricecast-dev/pricecast/internal/ingest"
	"github.com/pricecast-dev/pricecast/internal/model"
	"github.com/pricecast-dev/pricecast/internal/normalize"
)

// ErrNoRows is returned when nothing survives cleaning.
var ErrNoRows = errors.New("no rows survived cleaning")

// maxReportedViolations caps how many invariant violations an error lists.
const maxReportedViolations = 10

// Dataset is a validated feature table with its code table and schema.
type Dataset struct {
	Rows      []model.FeatureRow
	Districts *districts.Table
	Schema    features.Schema
	// Report is set when the dataset was produced by cleaning raw input.
	Report *cleaning.Report
}

// Clean reads the raw input, filters it, builds features, and writes the
// feature table, schema, and district table under projectRoot.
func Clean(projectRoot string, cfg *config.Config, logger *slog.Logger) (*Dataset, error) {
	ds, err := BuildDataset(cfg.InputPath(projectRoot), cfg.Cleaning.Policy(), logger)
	if err != nil {
		return nil, err
	}
	if err := ds.Save(projectRoot, cfg.FeaturesPath(projectRoot)); err != nil {
		return nil, err
	}
	return ds, nil
}

// BuildDataset runs ingest, normalization, the quality filter, and the
// feature builder on input without writing anything.
func BuildDataset(input string, policy cleaning.Policy, logger *slog.Logger) (*Dataset, error) {
	table, err := ingest.Load(input)
	if err != nil {
		return nil, err
	}
	logger.Info("input loaded", "path", input, "rows", len(table.Records), "columns", len(table.Columns))

	records := normalize.NormalizeAll(table.Records)
	kept, report, err := cleaning.NewPipeline(cleaning.Stages(policy), logger).Run(table, records)
	if err != nil {
		return nil, fmt.Errorf("cleaning: %w", err)
	}
	if len(kept) == 0 {
		return nil, ErrNoRows
	}

	codes := districts.Build(features.DistrictNames(kept))
	rows, err := features.Build(kept, codes)
	if err != nil {
		return nil, fmt.Errorf("building features: %w", err)
	}

	ds := &Dataset{Rows: rows, Districts: codes, Schema: features.DefaultSchema(), Report: &report}
	if err := ds.Validate(policy); err != nil {
		return nil, err
	}
	return ds, nil
}

// LoadDataset reads a feature table written by Clean, along with the
// persisted schema and district table.
func LoadDataset(projectRoot, featuresPath string, policy cleaning.Policy) (*Dataset, error) {
	rows, err := features.LoadTable(featuresPath)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", featuresPath, ErrNoRows)
	}
	schema, err := features.LoadSchema(projectRoot)
	if err != nil {
		return nil, err
	}
	codes, err := districts.Load(projectRoot)
	if err != nil {
		return nil, err
	}
	ds := &Dataset{Rows: rows, Districts: codes, Schema: schema}
	if err := ds.Validate(policy); err != nil {
		return nil, err
	}
	return ds, nil
}

// Validate checks the feature table invariants.
func (d *Dataset) Validate(policy cleaning.Policy) error {
	violations := features.ValidateTable(d.Rows, policy, d.Districts.Len())
	if len(violations) == 0 {
		return nil
	}
	errs := make([]error, 0, maxReportedViolations+1)
	for i, v := range violations {
		if i == maxReportedViolations {
			errs = append(errs, fmt.Errorf("... and %d more", len(violations)-i))
			break
		}
		errs = append(errs, v)
	}
	return fmt.Errorf("feature table failed validation (%d violations): %w", len(violations), errors.Join(errs...))
}

// Save writes the feature table, schema, and district table.
func (d *Dataset) Save(projectRoot, featuresPath string) error {
	if err := features.SaveTable(featuresPath, d.Schema, d.Rows); err != nil {
		return err
	}
	if err := features.SaveSchema(projectRoot, d.Schema); err != nil {
		return err
	}
	return d.Districts.Save(projectRoot)
}
