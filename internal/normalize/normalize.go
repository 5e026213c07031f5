// Package normalize converts raw registry rows into typed records.
// Nothing here fails: unparseable values become sentinels and are
// dropped (or defaulted) later by the cleaning stages.
package normalize

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pricecast-dev/pricecast/internal/model"
)

// rocOffset converts a Republic of China (Minguo) year to Gregorian.
const rocOffset = 1911

var (
	pingPerSquareMeter = decimal.RequireFromString("0.3025")
	tenThousand        = decimal.NewFromInt(10000)
)

// ROCYear converts a compact ROC date (YYYMMDD or YYMMDD, month+day in the
// last four digits) to a Gregorian year. Returns model.UnknownYear for blank,
// non-numeric, or shorter-than-6-digit input.
func ROCYear(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.UnknownYear
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return model.UnknownYear
	}
	n := d.IntPart()
	if n <= 0 {
		return model.UnknownYear
	}
	digits := strconv.FormatInt(n, 10)
	if len(digits) < 6 {
		return model.UnknownYear
	}
	roc, err := strconv.Atoi(digits[:len(digits)-4])
	if err != nil {
		return model.UnknownYear
	}
	return roc + rocOffset
}

// buildingKeywords is checked in order; the first match wins.
var buildingKeywords = []struct {
	typ      model.BuildingType
	keywords []string
}{
	{model.BuildingTower, []string{"大樓", "華廈", "tower", "mixed-use"}},
	{model.BuildingTownhouse, []string{"透天", "別墅", "townhouse", "villa"}},
	{model.BuildingApartment, []string{"公寓", "apartment"}},
}

// ClassifyBuildingType maps free text to the building-type enumeration.
func ClassifyBuildingType(text string) model.BuildingType {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return model.BuildingUnknown
	}
	for _, bk := range buildingKeywords {
		for _, kw := range bk.keywords {
			if strings.Contains(text, kw) {
				return bk.typ
			}
		}
	}
	return model.BuildingUnknown
}

// ParseFloorCount strips the 層 suffix and accepts a purely numeric floor
// count. Anything else (including Chinese numerals) defaults to 1.
func ParseFloorCount(s string) float64 {
	txt := strings.ReplaceAll(strings.TrimSpace(s), "層", "")
	if txt == "" {
		return 1
	}
	for _, r := range txt {
		if r < '0' || r > '9' {
			return 1
		}
	}
	f, err := strconv.ParseFloat(txt, 64)
	if err != nil {
		return 1
	}
	return f
}

// ParseDecimal coerces numeric text, tolerating thousands separators.
// Invalid input yields an invalid NullDecimal rather than an error.
func ParseDecimal(s string) decimal.NullDecimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// UnitPricePerPing converts TWD per square meter to 10k TWD per ping.
func UnitPricePerPing(perSquareMeter decimal.NullDecimal) decimal.NullDecimal {
	if !perSquareMeter.Valid {
		return perSquareMeter
	}
	return decimal.NewNullDecimal(perSquareMeter.Decimal.Div(pingPerSquareMeter).Div(tenThousand))
}

// AreaPing converts square meters to ping.
func AreaPing(squareMeters decimal.NullDecimal) decimal.NullDecimal {
	if !squareMeters.Valid {
		return squareMeters
	}
	return decimal.NewNullDecimal(squareMeters.Decimal.Mul(pingPerSquareMeter))
}

// Normalize derives the typed fields of a raw record.
func Normalize(raw model.RawRecord) model.Record {
	return model.Record{
		Raw:          raw,
		TradeYear:    ROCYear(raw.TradeDate),
		BuildYear:    ROCYear(raw.BuildDate),
		TotalFloors:  ParseFloorCount(raw.TotalFloors),
		BuildingType: ClassifyBuildingType(raw.BuildingType),
		UnitPrice:    UnitPricePerPing(ParseDecimal(raw.UnitPrice)),
		Area:         AreaPing(ParseDecimal(raw.Area)),
	}
}

// NormalizeAll normalizes every raw record, preserving order.
func NormalizeAll(raws []model.RawRecord) []model.Record {
	records := make([]model.Record, len(raws))
	for i, raw := range raws {
		records[i] = Normalize(raw)
	}
	return records
}
