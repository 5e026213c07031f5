package forecast

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricecast-dev/pricecast/internal/districts"
	"github.com/pricecast-dev/pricecast/internal/features"
	"github.com/pricecast-dev/pricecast/internal/gbm"
	"github.com/pricecast-dev/pricecast/internal/model"
)

// linearModel prices a ping at 50 minus half the house age plus one per
// year past 2025, and records every vector it sees.
type linearModel struct {
	seen [][]float64
}

func (m *linearModel) Predict(x []float64) (float64, error) {
	m.seen = append(m.seen, append([]float64(nil), x...))
	return 50 - 0.5*x[0] + (x[5] - 2025), nil
}

type failingModel struct{}

func (failingModel) Predict([]float64) (float64, error) { return 0, errors.New("boom") }

func testTable() *districts.Table {
	return districts.Build([]string{"左營區", "鼓山區", "三民區"})
}

func scenario() Input {
	return Input{
		District:     "三民區",
		HouseAge:     10,
		TargetYear:   2027,
		Area:         35.0,
		TotalFloors:  15,
		BuildingType: model.BuildingTower,
	}
}

func newTestPredictor(m Regressor) *Predictor {
	return New(m, features.DefaultSchema(), testTable(), DefaultLimits(2025, 5))
}

func TestFutureAge(t *testing.T) {
	assert.Equal(t, 12, FutureAge(10, 2027, 2025))
	assert.Equal(t, 10, FutureAge(10, 2025, 2025))
	assert.Equal(t, 65, FutureAge(60, 2030, 2025))
}

func TestEstimateScenario(t *testing.T) {
	m := &linearModel{}
	p := newTestPredictor(m)

	e, err := p.Estimate(scenario())
	require.NoError(t, err)

	require.Len(t, m.seen, 1)
	assert.Equal(t, []float64{12, 35.0, 15.0, 0, 3, 2027}, m.seen[0])
	assert.Equal(t, 2027, e.Year)
	assert.Equal(t, 12, e.HouseAge)
	assert.InDelta(t, 46.0, e.UnitPrice, 1e-9)
	assert.InDelta(t, e.UnitPrice*35.0, e.TotalPrice, 1e-9)
}

func TestTrend(t *testing.T) {
	m := &linearModel{}
	p := newTestPredictor(m)

	trend, err := p.Trend(scenario())
	require.NoError(t, err)
	require.Len(t, trend, 6)
	require.Len(t, m.seen, 6)

	for i, e := range trend {
		assert.Equal(t, 2025+i, e.Year)
		assert.Equal(t, 10+i, e.HouseAge)
		assert.InDelta(t, e.UnitPrice*35.0, e.TotalPrice, 1e-9)
		if i > 0 {
			assert.GreaterOrEqual(t, e.HouseAge, trend[i-1].HouseAge)
		}
	}
	// The trend point for the target year equals the single estimate.
	single, err := p.Estimate(scenario())
	require.NoError(t, err)
	assert.Equal(t, single, trend[2])
}

func TestEstimateValidation(t *testing.T) {
	p := newTestPredictor(&linearModel{})

	tests := []struct {
		name  string
		mod   func(*Input)
		field string
	}{
		{"unknown district", func(in *Input) { in.District = "信義區" }, "district"},
		{"age too high", func(in *Input) { in.HouseAge = 61 }, "house_age"},
		{"negative age", func(in *Input) { in.HouseAge = -1 }, "house_age"},
		{"year before base", func(in *Input) { in.TargetYear = 2024 }, "target_year"},
		{"year after horizon", func(in *Input) { in.TargetYear = 2031 }, "target_year"},
		{"area too small", func(in *Input) { in.Area = 4.5 }, "area"},
		{"area too large", func(in *Input) { in.Area = 200.5 }, "area"},
		{"floors zero", func(in *Input) { in.TotalFloors = 0 }, "total_floors"},
		{"unknown type", func(in *Input) { in.BuildingType = model.BuildingUnknown }, "building_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := scenario()
			tt.mod(&in)
			_, err := p.Estimate(in)
			require.Error(t, err)
			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)

			_, err = p.Trend(in)
			assert.Error(t, err)
		})
	}
}

func TestValidateBoundsInclusive(t *testing.T) {
	l := DefaultLimits(2025, 5)
	in := scenario()
	in.HouseAge, in.Area, in.TotalFloors, in.TargetYear = 60, 200, 50, 2030
	assert.NoError(t, in.Validate(l, testTable()))
	in.HouseAge, in.Area, in.TotalFloors, in.TargetYear = 0, 5, 1, 2025
	assert.NoError(t, in.Validate(l, testTable()))
}

func TestEstimateModelError(t *testing.T) {
	p := newTestPredictor(failingModel{})
	_, err := p.Estimate(scenario())
	assert.ErrorContains(t, err, "boom")
	_, err = p.Trend(scenario())
	assert.ErrorContains(t, err, "year 2025")
}

func TestLimitsYears(t *testing.T) {
	assert.Equal(t, []int{2025, 2026, 2027, 2028, 2029, 2030}, DefaultLimits(2025, 5).Years())
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "38.5", FormatUnitPrice(38.46))
	assert.Equal(t, "40.0", FormatUnitPrice(40))
	assert.Equal(t, "1,234", FormatTotalPrice(1234.9))
	assert.Equal(t, "999", FormatTotalPrice(999.99))
	assert.Equal(t, "1,234,567", FormatTotalPrice(1234567))
	assert.Equal(t, "0", FormatTotalPrice(0.4))
	assert.Equal(t, int64(1610), WholeTotal(1610.99))
}

func writeArtifacts(t *testing.T, dir string, featureNames []string) *gbm.Model {
	t.Helper()
	x := [][]float64{
		{1, 30, 10, 0, 3, 2022},
		{5, 35, 12, 1, 3, 2023},
		{20, 40, 4, 2, 1, 2022},
		{30, 25, 3, 2, 2, 2024},
	}
	y := []float64{40, 38, 20, 18}
	m, err := gbm.Fit(featureNames, x, y, gbm.Params{NEstimators: 5, LearningRate: 0.5, MaxDepth: 2, MinSamplesLeaf: 1}, nil)
	require.NoError(t, err)
	require.NoError(t, m.Save(filepath.Join(dir, gbm.RelPath)))
	require.NoError(t, features.SaveSchema(dir, features.DefaultSchema()))
	require.NoError(t, testTable().Save(dir))
	return m
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	m := writeArtifacts(t, dir, features.DefaultSchema().Features)

	p, err := Load(dir, DefaultLimits(2025, 5))
	require.NoError(t, err)
	assert.Equal(t, m.ID, p.ModelID())
	assert.Equal(t, []string{"三民區", "左營區", "鼓山區"}, p.Districts())

	e, err := p.Estimate(scenario())
	require.NoError(t, err)
	row, err := p.FeatureRow(scenario())
	require.NoError(t, err)
	x, err := features.DefaultSchema().Vector(row)
	require.NoError(t, err)
	want, err := m.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, want, e.UnitPrice)
}

func TestLoadModelMissing(t *testing.T) {
	_, err := Load(t.TempDir(), DefaultLimits(2025, 5))
	assert.ErrorIs(t, err, ErrModelNotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadSchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	names := features.DefaultSchema().Features
	swapped := []string{names[1], names[0], names[2], names[3], names[4], names[5]}
	writeArtifacts(t, dir, swapped)

	_, err := Load(dir, DefaultLimits(2025, 5))
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}
