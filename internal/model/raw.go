package model

// Source column names in the MOI actual-price registry export.
const (
	ColDistrict        = "鄉鎮市區"
	ColTransactionType = "交易標的"
	ColTradeDate       = "交易年月日"
	ColBuildDate       = "建築完成年月"
	ColBuildingType    = "建物型態"
	ColUsage           = "主要用途"
	ColRemarks         = "備註"
	ColUnitPrice       = "單價元平方公尺"
	ColArea            = "建物移轉總面積平方公尺"
	ColTransferFloor   = "移轉層次"
	ColTotalFloors     = "總樓層數"
)

// RawRecord is one row of the source table, kept as text.
type RawRecord struct {
	Line            int // 1-based line in the source file
	District        string
	TransactionType string
	TradeDate       string
	BuildDate       string
	BuildingType    string
	Usage           string
	Remarks         string
	UnitPrice       string // TWD per square meter
	Area            string // square meters
	TransferFloor   string
	TotalFloors     string
}
