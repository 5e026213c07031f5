package features

import (
	"fmt"

	"github.com/pricecast-dev/pricecast/internal/cleaning"
	"github.com/pricecast-dev/pricecast/internal/model"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	Row         int // 1-based data row
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [row %d]: %s", e.Invariant, e.Row, e.Description)
}

// ValidateTable enforces the post-cleaning invariants on a feature table.
// districtCount bounds the district codes; pass 0 to skip that check.
func ValidateTable(rows []model.FeatureRow, p cleaning.Policy, districtCount int) []ValidationError {
	var errs []ValidationError
	add := func(inv, row int, format string, args ...any) {
		errs = append(errs, ValidationError{Invariant: inv, Row: row, Description: fmt.Sprintf(format, args...)})
	}

	for i, r := range rows {
		n := i + 1

		// Invariant 1: unit price strictly inside the policy range.
		if !(r.PricePerPing > p.MinUnitPrice && r.PricePerPing < p.MaxUnitPrice) {
			add(1, n, "price per ping %.4f outside (%g, %g)", r.PricePerPing, p.MinUnitPrice, p.MaxUnitPrice)
		}

		// Invariant 2: house age in [0, max).
		if r.HouseAge < 0 || r.HouseAge >= float64(p.MaxHouseAge) {
			add(2, n, "house age %g outside [0, %d)", r.HouseAge, p.MaxHouseAge)
		}

		// Invariant 3: trade year at or after the cutoff.
		if r.TradeYear < p.MinTradeYear {
			add(3, n, "trade year %d before %d", r.TradeYear, p.MinTradeYear)
		}

		// Invariant 4: positive area.
		if r.TotalPing <= 0 {
			add(4, n, "area %g is not positive", r.TotalPing)
		}

		// Invariant 5: at least one floor.
		if r.TotalFloors < 1 {
			add(5, n, "total floors %g below 1", r.TotalFloors)
		}

		// Invariant 6: district code inside the table.
		if districtCount > 0 && (r.DistrictCode < 0 || r.DistrictCode >= districtCount) {
			add(6, n, "district code %d outside [0, %d)", r.DistrictCode, districtCount)
		}

		// Invariant 7: building type in the closed enumeration.
		if r.BuildingType < model.BuildingUnknown || r.BuildingType > model.BuildingTower {
			add(7, n, "building type %d not in 0..3", r.BuildingType)
		}
	}
	return errs
}
