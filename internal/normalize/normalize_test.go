package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricecast-dev/pricecast/internal/model"
)

func TestROCYear(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1100115", 2021},
		{"1121231", 2023},
		{"990101", 2010},
		{"0850600", 1996},
		{"1100115.0", 2021},
		{" 1130301 ", 2024},
		{"12345", model.UnknownYear},
		{"0", model.UnknownYear},
		{"", model.UnknownYear},
		{"   ", model.UnknownYear},
		{"abc", model.UnknownYear},
		{"-1100115", model.UnknownYear},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ROCYear(tt.in), "ROCYear(%q)", tt.in)
	}
}

func TestROCYear_AllSixDigitDates(t *testing.T) {
	for roc := 10; roc <= 99; roc++ {
		in := decimal.NewFromInt(int64(roc*10000 + 101)).String()
		assert.Equal(t, roc+1911, ROCYear(in), "ROCYear(%q)", in)
	}
}

func TestClassifyBuildingType(t *testing.T) {
	tests := []struct {
		in   string
		want model.BuildingType
	}{
		{"住宅大樓(11層含以上有電梯)", model.BuildingTower},
		{"華廈(10層含以下有電梯)", model.BuildingTower},
		{"透天厝", model.BuildingTownhouse},
		{"別墅", model.BuildingTownhouse},
		{"公寓(5樓含以下無電梯)", model.BuildingApartment},
		{"店面(店鋪)", model.BuildingUnknown},
		{"", model.BuildingUnknown},
		{"Tower", model.BuildingTower},
		{"villa apartment", model.BuildingTownhouse},
		{"townhouse-style apartment", model.BuildingTownhouse},
		{"mixed-use villa", model.BuildingTower},
		{"apartment", model.BuildingApartment},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyBuildingType(tt.in), "ClassifyBuildingType(%q)", tt.in)
	}
}

func TestClassifyBuildingType_Total(t *testing.T) {
	inputs := []string{"", "x", "大樓公寓", "透天公寓", "???", "ＶＩＬＬＡ", "辦公商業大樓"}
	for _, in := range inputs {
		got := ClassifyBuildingType(in)
		assert.Contains(t, []model.BuildingType{0, 1, 2, 3}, got, "ClassifyBuildingType(%q)", in)
	}
}

func TestParseFloorCount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"15層", 15},
		{"7", 7},
		{" 12層 ", 12},
		{"十五層", 1},
		{"", 1},
		{"3.5", 1},
		{"-2", 1},
		{"地下層", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseFloorCount(tt.in), "ParseFloorCount(%q)", tt.in)
	}
}

func TestParseDecimal(t *testing.T) {
	d := ParseDecimal("1,234,567")
	require.True(t, d.Valid)
	assert.Equal(t, "1234567", d.Decimal.String())

	d = ParseDecimal(" 98.76 ")
	require.True(t, d.Valid)
	assert.Equal(t, "98.76", d.Decimal.String())

	assert.False(t, ParseDecimal("").Valid)
	assert.False(t, ParseDecimal("n/a").Valid)
}

func TestUnitConversions(t *testing.T) {
	// 302,500 TWD/m² is exactly 100 (10k TWD) per ping.
	price := UnitPricePerPing(ParseDecimal("302500"))
	require.True(t, price.Valid)
	assert.Equal(t, "100", price.Decimal.String())

	area := AreaPing(ParseDecimal("100"))
	require.True(t, area.Valid)
	assert.Equal(t, "30.25", area.Decimal.String())

	assert.False(t, UnitPricePerPing(decimal.NullDecimal{}).Valid)
	assert.False(t, AreaPing(decimal.NullDecimal{}).Valid)
}

func TestNormalize(t *testing.T) {
	raw := model.RawRecord{
		Line:         3,
		District:     "左營區",
		TradeDate:    "1120315",
		BuildDate:    "0990601",
		BuildingType: "住宅大樓(11層含以上有電梯)",
		UnitPrice:    "151250",
		Area:         "115.70",
		TotalFloors:  "15",
	}
	rec := Normalize(raw)

	assert.Equal(t, raw, rec.Raw)
	assert.Equal(t, 2023, rec.TradeYear)
	assert.Equal(t, 2010, rec.BuildYear)
	age, ok := rec.HouseAge()
	assert.True(t, ok)
	assert.Equal(t, 13, age)
	assert.Equal(t, 15.0, rec.TotalFloors)
	assert.Equal(t, model.BuildingTower, rec.BuildingType)
	require.True(t, rec.UnitPrice.Valid)
	assert.Equal(t, "50", rec.UnitPrice.Decimal.String())
	require.True(t, rec.Area.Valid)
	assert.InDelta(t, 34.99925, rec.Area.Decimal.InexactFloat64(), 1e-9)
}

func TestNormalizeAll_PreservesOrder(t *testing.T) {
	raws := []model.RawRecord{{Line: 2, District: "a"}, {Line: 3, District: "b"}}
	recs := NormalizeAll(raws)
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].Raw.District)
	assert.Equal(t, "b", recs[1].Raw.District)
}
