package cleaning

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pricecast-dev/pricecast/internal/model"
)

// Stage is a named row predicate. Rows for which Keep returns false are
// dropped. Stages never modify records.
type Stage struct {
	Name string
	// Requires lists the source columns the predicate reads.
	Requires []string
	// Optional stages are skipped when a required column is absent;
	// otherwise a missing column is an error.
	Optional bool
	Keep     func(model.Record) bool
}

// Policy holds the thresholds used by the range stages.
type Policy struct {
	MinTradeYear int
	MinUnitPrice float64 // exclusive, 10k TWD per ping
	MaxUnitPrice float64 // exclusive
	MaxHouseAge  int     // exclusive
}

// DefaultPolicy returns the standard thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MinTradeYear: 2021,
		MinUnitPrice: 5,
		MaxUnitPrice: 150,
		MaxHouseAge:  60,
	}
}

// Stage names.
const (
	StageTransactionType = "transaction-type"
	StageResidential     = "residential-usage"
	StageEmptyRemarks    = "empty-remarks"
	StageTradeYear       = "trade-year"
	StageGroundFloor     = "exclude-ground-floor"
	StageComplete        = "complete"
	StagePriceRange      = "price-range"
	StageAgeRange        = "age-range"
)

const (
	landAndBuilding = "房地"
	residential     = "住家用"
)

// Stages returns the cleaning sequence for a policy. Order matters: each
// stage sees only the survivors of the previous one.
func Stages(p Policy) []Stage {
	return []Stage{
		TransactionType(),
		ResidentialUsage(),
		EmptyRemarks(),
		TradeYearFrom(p.MinTradeYear),
		ExcludeGroundFloor(),
		Complete(),
		PriceRange(p.MinUnitPrice, p.MaxUnitPrice),
		AgeRange(p.MaxHouseAge),
	}
}

// TransactionType keeps land+building transactions, excluding land-only
// and parking-only sales.
func TransactionType() Stage {
	return Stage{
		Name:     StageTransactionType,
		Requires: []string{model.ColTransactionType},
		Optional: true,
		Keep: func(r model.Record) bool {
			return strings.Contains(r.Raw.TransactionType, landAndBuilding)
		},
	}
}

// ResidentialUsage keeps rows whose main usage is residential.
func ResidentialUsage() Stage {
	return Stage{
		Name:     StageResidential,
		Requires: []string{model.ColUsage},
		Keep: func(r model.Record) bool {
			return r.Raw.Usage == residential
		},
	}
}

// EmptyRemarks drops rows carrying any remark; remarks flag atypical deals
// such as related-party sales.
func EmptyRemarks() Stage {
	return Stage{
		Name:     StageEmptyRemarks,
		Requires: []string{model.ColRemarks},
		Optional: true,
		Keep: func(r model.Record) bool {
			return strings.TrimSpace(r.Raw.Remarks) == ""
		},
	}
}

// TradeYearFrom keeps rows traded in or after year. Unknown years are dropped.
func TradeYearFrom(year int) Stage {
	return Stage{
		Name:     StageTradeYear,
		Requires: []string{model.ColTradeDate},
		Keep: func(r model.Record) bool {
			return r.TradeYear != model.UnknownYear && r.TradeYear >= year
		},
	}
}

// ExcludeGroundFloor drops rows whose transfer floor mentions "1" or "一".
// This also drops 10th, 11th, 21st... floors.
func ExcludeGroundFloor() Stage {
	return Stage{
		Name:     StageGroundFloor,
		Requires: []string{model.ColTransferFloor},
		Optional: true,
		Keep: func(r model.Record) bool {
			return !strings.Contains(r.Raw.TransferFloor, "一") &&
				!strings.Contains(r.Raw.TransferFloor, "1")
		},
	}
}

// Complete drops rows missing unit price, area, house age, or district.
func Complete() Stage {
	return Stage{
		Name:     StageComplete,
		Requires: []string{model.ColUnitPrice, model.ColArea, model.ColBuildDate, model.ColDistrict},
		Keep: func(r model.Record) bool {
			_, ok := r.HouseAge()
			return ok && r.UnitPrice.Valid && r.Area.Valid && r.Raw.District != ""
		},
	}
}

// PriceRange keeps unit prices strictly between lo and hi.
func PriceRange(lo, hi float64) Stage {
	dlo, dhi := decimal.NewFromFloat(lo), decimal.NewFromFloat(hi)
	return Stage{
		Name:     StagePriceRange,
		Requires: []string{model.ColUnitPrice},
		Keep: func(r model.Record) bool {
			if !r.UnitPrice.Valid {
				return false
			}
			return r.UnitPrice.Decimal.GreaterThan(dlo) && r.UnitPrice.Decimal.LessThan(dhi)
		},
	}
}

// AgeRange keeps house ages in [0, maxAge).
func AgeRange(maxAge int) Stage {
	return Stage{
		Name:     StageAgeRange,
		Requires: []string{model.ColBuildDate},
		Keep: func(r model.Record) bool {
			age, ok := r.HouseAge()
			return ok && age >= 0 && age < maxAge
		},
	}
}
