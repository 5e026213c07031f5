package features

import (
	"fmt"

	"github.com/pricecast-dev/pricecast/internal/districts"
	"github.com/pricecast-dev/pricecast/internal/model"
)

// Build turns cleaned records into feature rows. Every record must be
// complete (see cleaning.Complete) and its district present in the table.
func Build(records []model.Record, table *districts.Table) ([]model.FeatureRow, error) {
	rows := make([]model.FeatureRow, 0, len(records))
	for _, r := range records {
		row, err := buildRow(r, table)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.Raw.Line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DistrictNames returns the district of every record, for districts.Build.
func DistrictNames(records []model.Record) []string {
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Raw.District
	}
	return names
}

func buildRow(r model.Record, table *districts.Table) (model.FeatureRow, error) {
	age, ok := r.HouseAge()
	if !ok {
		return model.FeatureRow{}, fmt.Errorf("house age unknown")
	}
	if !r.UnitPrice.Valid || !r.Area.Valid {
		return model.FeatureRow{}, fmt.Errorf("unit price or area missing")
	}
	code, ok := table.Code(r.Raw.District)
	if !ok {
		return model.FeatureRow{}, fmt.Errorf("district %q not in code table", r.Raw.District)
	}
	return model.FeatureRow{
		HouseAge:     float64(age),
		TotalPing:    r.Area.Decimal.InexactFloat64(),
		TotalFloors:  r.TotalFloors,
		DistrictCode: code,
		BuildingType: r.BuildingType,
		TradeYear:    r.TradeYear,
		PricePerPing: r.UnitPrice.Decimal.InexactFloat64(),
	}, nil
}
