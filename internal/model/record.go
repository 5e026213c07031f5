package model

import "github.com/shopspring/decimal"

// UnknownYear marks a date that could not be converted.
const UnknownYear = 0

// BuildingType is the closed building-type enumeration used as a feature.
type BuildingType int

const (
	BuildingUnknown   BuildingType = 0
	BuildingApartment BuildingType = 1
	BuildingTownhouse BuildingType = 2 // townhouse or villa
	BuildingTower     BuildingType = 3 // tower or mixed-use mid-rise
)

// String returns the display label.
func (b BuildingType) String() string {
	switch b {
	case BuildingApartment:
		return "公寓"
	case BuildingTownhouse:
		return "透天/別墅"
	case BuildingTower:
		return "大樓/華廈"
	default:
		return "unknown"
	}
}

// SelectableBuildingTypes lists the types a user may pick, in display order.
var SelectableBuildingTypes = []BuildingType{BuildingTower, BuildingTownhouse, BuildingApartment}

// Record is a raw record plus normalized fields.
type Record struct {
	Raw          RawRecord
	TradeYear    int // UnknownYear if unparseable
	BuildYear    int // UnknownYear if unparseable
	TotalFloors  float64
	BuildingType BuildingType
	UnitPrice    decimal.NullDecimal // 10k TWD per ping
	Area         decimal.NullDecimal // ping
}

// HouseAge returns trade year minus build year. ok is false when either
// year is unknown.
func (r Record) HouseAge() (age int, ok bool) {
	if r.TradeYear == UnknownYear || r.BuildYear == UnknownYear {
		return 0, false
	}
	return r.TradeYear - r.BuildYear, true
}
