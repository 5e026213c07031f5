// Package cleaning applies the quality filter to normalized records.
package cleaning

import (
	"fmt"
	"log/slog"

	"github.com/pricecast-dev/pricecast/internal/model"
)

// ColumnSet reports which source columns are present.
type ColumnSet interface {
	Has(column string) bool
}

// StageResult records the effect of one stage.
type StageResult struct {
	Name    string
	In      int
	Out     int
	Skipped bool // optional stage whose column was absent
}

// Dropped returns how many rows the stage removed.
func (s StageResult) Dropped() int { return s.In - s.Out }

// Report summarizes a pipeline run.
type Report struct {
	Initial int
	Final   int
	Stages  []StageResult
}

// Pipeline runs stages in order.
type Pipeline struct {
	stages []Stage
	logger *slog.Logger
}

// NewPipeline creates a Pipeline. A nil logger uses slog.Default().
func NewPipeline(stages []Stage, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{stages: stages, logger: logger}
}

// Run filters records. The input slice is not modified.
func (p *Pipeline) Run(cols ColumnSet, records []model.Record) ([]model.Record, Report, error) {
	report := Report{Initial: len(records)}
	current := records

	for _, st := range p.stages {
		missing := missingColumn(cols, st.Requires)
		if missing != "" {
			if !st.Optional {
				return nil, report, fmt.Errorf("stage %s: required column %q not found", st.Name, missing)
			}
			p.logger.Debug("skipping stage", "stage", st.Name, "missing_column", missing)
			report.Stages = append(report.Stages, StageResult{Name: st.Name, In: len(current), Out: len(current), Skipped: true})
			continue
		}

		kept := make([]model.Record, 0, len(current))
		for _, r := range current {
			if st.Keep(r) {
				kept = append(kept, r)
			}
		}
		res := StageResult{Name: st.Name, In: len(current), Out: len(kept)}
		report.Stages = append(report.Stages, res)
		p.logger.Debug("stage applied", "stage", st.Name, "in", res.In, "out", res.Out)
		current = kept
	}

	report.Final = len(current)
	p.logger.Info("cleaning finished", "initial", report.Initial, "final", report.Final)
	return current, report, nil
}

func missingColumn(cols ColumnSet, required []string) string {
	for _, c := range required {
		if !cols.Has(c) {
			return c
		}
	}
	return ""
}
