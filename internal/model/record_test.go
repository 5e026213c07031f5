package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordHouseAge(t *testing.T) {
	tests := []struct {
		trade, build int
		want         int
		ok           bool
	}{
		{2023, 2000, 23, true},
		{2021, 2021, 0, true},
		{2021, 2024, -3, true},
		{UnknownYear, 2000, 0, false},
		{2023, UnknownYear, 0, false},
	}
	for _, tt := range tests {
		r := Record{TradeYear: tt.trade, BuildYear: tt.build}
		age, ok := r.HouseAge()
		assert.Equal(t, tt.ok, ok, "HouseAge(%d, %d) ok", tt.trade, tt.build)
		assert.Equal(t, tt.want, age, "HouseAge(%d, %d)", tt.trade, tt.build)
	}
}

func TestBuildingTypeString(t *testing.T) {
	assert.Equal(t, "大樓/華廈", BuildingTower.String())
	assert.Equal(t, "透天/別墅", BuildingTownhouse.String())
	assert.Equal(t, "公寓", BuildingApartment.String())
	assert.Equal(t, "unknown", BuildingUnknown.String())
	assert.Equal(t, "unknown", BuildingType(9).String())
}
