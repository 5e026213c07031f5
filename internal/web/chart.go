package web

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pricecast-dev/pricecast/internal/forecast"
)

const trendColor = "#FF4B4B"

// ChartPoint is one labeled value.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ChartConfig describes a single-series line chart.
type ChartConfig struct {
	Title  string       `json:"title"`
	XAxis  string       `json:"xAxis"`
	YAxis  string       `json:"yAxis"`
	Color  string       `json:"color"`
	Points []ChartPoint `json:"points"`
}

// BuildTrendChart charts whole-10k total prices by year.
func BuildTrendChart(trend []forecast.Estimate) *ChartConfig {
	if len(trend) == 0 {
		return nil
	}
	points := make([]ChartPoint, 0, len(trend))
	for _, e := range trend {
		points = append(points, ChartPoint{
			Label: strconv.Itoa(e.Year),
			Value: float64(forecast.WholeTotal(e.TotalPrice)),
		})
	}
	return &ChartConfig{
		Title:  "未來價格趨勢模擬",
		XAxis:  "年份",
		YAxis:  "預測總價 (萬元)",
		Color:  trendColor,
		Points: points,
	}
}

// svgPlot is a chart laid out in SVG user units.
type svgPlot struct {
	Width, Height int
	Left, Bottom  float64
	Right, Top    float64
	Polyline      string
	Dots          []svgDot
	YTicks        []svgTick
	Color         string
	Title         string
	XAxis, YAxis  string
}

type svgDot struct {
	X, Y  float64
	Label string
	Value string
}

type svgTick struct {
	Y     float64
	Label string
}

const (
	plotWidth  = 640
	plotHeight = 300
	padLeft    = 80.0
	padRight   = 24.0
	padTop     = 24.0
	padBottom  = 44.0
	yTickCount = 4
)

// layout maps chart values onto SVG coordinates.
func (c *ChartConfig) layout() *svgPlot {
	if c == nil || len(c.Points) == 0 {
		return nil
	}

	lo, hi := c.Points[0].Value, c.Points[0].Value
	for _, p := range c.Points[1:] {
		lo, hi = min(lo, p.Value), max(hi, p.Value)
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}

	p := &svgPlot{
		Width:  plotWidth,
		Height: plotHeight,
		Left:   padLeft,
		Right:  plotWidth - padRight,
		Top:    padTop,
		Bottom: plotHeight - padBottom,
		Color:  c.Color,
		Title:  c.Title,
		XAxis:  c.XAxis,
		YAxis:  c.YAxis,
	}
	innerW := p.Right - p.Left
	innerH := p.Bottom - p.Top
	y := func(v float64) float64 { return p.Top + (hi-v)/(hi-lo)*innerH }

	coords := make([]string, 0, len(c.Points))
	for i, pt := range c.Points {
		x := p.Left + innerW/2
		if len(c.Points) > 1 {
			x = p.Left + float64(i)*innerW/float64(len(c.Points)-1)
		}
		d := svgDot{X: round1(x), Y: round1(y(pt.Value)), Label: pt.Label, Value: forecast.FormatTotalPrice(pt.Value)}
		p.Dots = append(p.Dots, d)
		coords = append(coords, fmt.Sprintf("%g,%g", d.X, d.Y))
	}
	p.Polyline = strings.Join(coords, " ")

	for i := 0; i <= yTickCount; i++ {
		v := lo + (hi-lo)*float64(i)/yTickCount
		p.YTicks = append(p.YTicks, svgTick{Y: round1(y(v)), Label: forecast.FormatTotalPrice(v)})
	}
	return p
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
