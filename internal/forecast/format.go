package forecast

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatUnitPrice renders a price per ping like "38.5".
func FormatUnitPrice(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1)
}

// FormatTotalPrice truncates to whole 10k TWD and groups thousands,
// e.g. 1234.9 -> "1,234".
func FormatTotalPrice(v float64) string {
	s := decimal.NewFromFloat(v).Truncate(0).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// WholeTotal is the truncated total price used for chart points.
func WholeTotal(v float64) int64 {
	return decimal.NewFromFloat(v).Truncate(0).IntPart()
}
