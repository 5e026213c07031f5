package model

// FeatureRow is one labeled row of the feature table.
type FeatureRow struct {
	HouseAge     float64
	TotalPing    float64
	TotalFloors  float64
	DistrictCode int
	BuildingType BuildingType
	TradeYear    int
	PricePerPing float64 // label
}
