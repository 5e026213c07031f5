// Package features builds the labeled feature table and owns the feature
// schema, which fixes vector ordering for both training and inference.
package features

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/pricecast-dev/pricecast/internal/model"
)

// SchemaRelPath is the schema artifact's location under a project root.
const SchemaRelPath = "models/schema.yaml"

// Feature and label names.
const (
	HouseAge     = "house_age"
	TotalPing    = "total_ping"
	TotalFloors  = "total_floors"
	DistrictCode = "district_code"
	BuildingType = "building_type"
	TradeYear    = "trade_year"
	PricePerPing = "price_per_ping"
)

// Schema is the ordered list of model inputs plus the label column.
type Schema struct {
	Features []string `yaml:"features"`
	Label    string   `yaml:"label"`
}

// DefaultSchema returns the six-feature schema.
func DefaultSchema() Schema {
	return Schema{
		Features: []string{HouseAge, TotalPing, TotalFloors, DistrictCode, BuildingType, TradeYear},
		Label:    PricePerPing,
	}
}

// Matches reports whether names equals the schema's feature order.
func (s Schema) Matches(names []string) bool {
	return slices.Equal(s.Features, names)
}

// Columns returns the feature names followed by the label.
func (s Schema) Columns() []string {
	return append(slices.Clone(s.Features), s.Label)
}

// Vector returns the row's features in schema order.
func (s Schema) Vector(row model.FeatureRow) ([]float64, error) {
	x := make([]float64, len(s.Features))
	for i, name := range s.Features {
		v, err := value(row, name)
		if err != nil {
			return nil, err
		}
		x[i] = v
	}
	return x, nil
}

// Matrix returns feature vectors and labels for rows.
func (s Schema) Matrix(rows []model.FeatureRow) ([][]float64, []float64, error) {
	xs := make([][]float64, len(rows))
	ys := make([]float64, len(rows))
	for i, r := range rows {
		x, err := s.Vector(r)
		if err != nil {
			return nil, nil, err
		}
		xs[i] = x
		ys[i] = r.PricePerPing
	}
	return xs, ys, nil
}

// Validate checks that every name is a known column.
func (s Schema) Validate() error {
	if len(s.Features) == 0 {
		return fmt.Errorf("schema has no features")
	}
	seen := make(map[string]bool)
	for _, name := range s.Features {
		if _, err := value(model.FeatureRow{}, name); err != nil {
			return err
		}
		if seen[name] {
			return fmt.Errorf("duplicate feature %q", name)
		}
		seen[name] = true
	}
	if s.Label != PricePerPing {
		return fmt.Errorf("unsupported label %q", s.Label)
	}
	return nil
}

func value(row model.FeatureRow, name string) (float64, error) {
	switch name {
	case HouseAge:
		return row.HouseAge, nil
	case TotalPing:
		return row.TotalPing, nil
	case TotalFloors:
		return row.TotalFloors, nil
	case DistrictCode:
		return float64(row.DistrictCode), nil
	case BuildingType:
		return float64(row.BuildingType), nil
	case TradeYear:
		return float64(row.TradeYear), nil
	case PricePerPing:
		return row.PricePerPing, nil
	default:
		return 0, fmt.Errorf("unknown feature %q", name)
	}
}

func setValue(row *model.FeatureRow, name string, v float64) error {
	switch name {
	case HouseAge:
		row.HouseAge = v
	case TotalPing:
		row.TotalPing = v
	case TotalFloors:
		row.TotalFloors = v
	case DistrictCode:
		row.DistrictCode = int(v)
	case BuildingType:
		row.BuildingType = model.BuildingType(v)
	case TradeYear:
		row.TradeYear = int(v)
	case PricePerPing:
		row.PricePerPing = v
	default:
		return fmt.Errorf("unknown feature %q", name)
	}
	return nil
}

// SaveSchema writes models/schema.yaml, overwriting any existing file.
func SaveSchema(projectRoot string, s Schema) error {
	path := filepath.Join(projectRoot, SchemaRelPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating models dir: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling schema: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing schema: %w", err)
	}
	return nil
}

// LoadSchema reads models/schema.yaml.
func LoadSchema(projectRoot string) (Schema, error) {
	data, err := os.ReadFile(filepath.Join(projectRoot, SchemaRelPath))
	if err != nil {
		return Schema{}, fmt.Errorf("reading schema: %w", err)
	}
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Schema{}, fmt.Errorf("parsing schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Schema{}, fmt.Errorf("invalid schema: %w", err)
	}
	return s, nil
}
