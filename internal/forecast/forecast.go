// Package forecast answers price questions from the persisted artifacts.
package forecast

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/pricecast-dev/pricecast/internal/districts"
	"github.com/pricecast-dev/pricecast/internal/features"
	"github.com/pricecast-dev/pricecast/internal/gbm"
	"github.com/pricecast-dev/pricecast/internal/model"
)

// ErrModelNotFound is returned by Load when no trained model exists.
var ErrModelNotFound = fmt.Errorf("model artifact not found, run `pricecast train` first: %w", fs.ErrNotExist)

// ErrSchemaMismatch is returned when the model was trained on a different
// feature order than the persisted schema.
var ErrSchemaMismatch = errors.New("model features do not match schema")

// Disclaimer accompanies every projection.
const Disclaimer = "注意：此預測是基於過去幾年的市場趨勢進行「線性推估」。" +
	"若未來發生重大經濟變動（如政策打房、金融海嘯），實際價格可能會有落差。"

// Regressor maps one feature vector to a price per ping.
type Regressor interface {
	Predict(x []float64) (float64, error)
}

// Estimate is one projected price.
type Estimate struct {
	Year       int     `json:"year"`
	HouseAge   int     `json:"house_age"`
	UnitPrice  float64 `json:"unit_price"`  // 10k TWD per ping
	TotalPrice float64 `json:"total_price"` // 10k TWD
}

// Predictor runs one-row inference against a loaded model. It is read-only
// after construction and safe for concurrent use.
type Predictor struct {
	model     Regressor
	modelID   string
	schema    features.Schema
	districts *districts.Table
	limits    Limits
}

// New wraps an already-loaded regressor.
func New(m Regressor, schema features.Schema, table *districts.Table, limits Limits) *Predictor {
	return &Predictor{model: m, schema: schema, districts: table, limits: limits}
}

// Load reads the model, schema, and district table from a project root.
func Load(projectRoot string, limits Limits) (*Predictor, error) {
	path := filepath.Join(projectRoot, gbm.RelPath)
	m, err := gbm.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrModelNotFound)
	}
	if err != nil {
		return nil, err
	}

	schema, err := features.LoadSchema(projectRoot)
	if err != nil {
		return nil, err
	}
	if !schema.Matches(m.Features) {
		return nil, fmt.Errorf("%w: model %v, schema %v", ErrSchemaMismatch, m.Features, schema.Features)
	}

	table, err := districts.Load(projectRoot)
	if err != nil {
		return nil, err
	}

	p := New(m, schema, table, limits)
	p.modelID = m.ID
	return p, nil
}

// ModelID identifies the loaded model artifact, if known.
func (p *Predictor) ModelID() string { return p.modelID }

// Districts returns the selectable district names, sorted.
func (p *Predictor) Districts() []string { return p.districts.Names() }

// Limits returns the accepted input ranges.
func (p *Predictor) Limits() Limits { return p.limits }

// FutureAge is the house age in targetYear given its age in baseYear.
func FutureAge(age, targetYear, baseYear int) int {
	return age + (targetYear - baseYear)
}

// Estimate predicts the price in in.TargetYear.
func (p *Predictor) Estimate(in Input) (Estimate, error) {
	if err := in.Validate(p.limits, p.districts); err != nil {
		return Estimate{}, err
	}
	return p.estimate(in)
}

// Trend predicts one estimate per year from the base year through the last
// forecast year, aging the house one year per step. in.TargetYear is
// validated but otherwise ignored.
func (p *Predictor) Trend(in Input) ([]Estimate, error) {
	if err := in.Validate(p.limits, p.districts); err != nil {
		return nil, err
	}
	out := make([]Estimate, 0, p.limits.MaxYear-p.limits.BaseYear+1)
	for y := p.limits.BaseYear; y <= p.limits.MaxYear; y++ {
		step := in
		step.TargetYear = y
		e, err := p.estimate(step)
		if err != nil {
			return nil, fmt.Errorf("year %d: %w", y, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// FeatureRow returns the unlabeled row fed to the model for in.
func (p *Predictor) FeatureRow(in Input) (model.FeatureRow, error) {
	code, ok := p.districts.Code(in.District)
	if !ok {
		return model.FeatureRow{}, fmt.Errorf("unknown district %q", in.District)
	}
	return model.FeatureRow{
		HouseAge:     float64(FutureAge(in.HouseAge, in.TargetYear, p.limits.BaseYear)),
		TotalPing:    in.Area,
		TotalFloors:  in.TotalFloors,
		DistrictCode: code,
		BuildingType: in.BuildingType,
		TradeYear:    in.TargetYear,
	}, nil
}

func (p *Predictor) estimate(in Input) (Estimate, error) {
	row, err := p.FeatureRow(in)
	if err != nil {
		return Estimate{}, err
	}
	x, err := p.schema.Vector(row)
	if err != nil {
		return Estimate{}, err
	}
	unit, err := p.model.Predict(x)
	if err != nil {
		return Estimate{}, fmt.Errorf("predicting: %w", err)
	}
	return Estimate{
		Year:       in.TargetYear,
		HouseAge:   int(row.HouseAge),
		UnitPrice:  unit,
		TotalPrice: unit * in.Area,
	}, nil
}
