package binding

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/lvillar/reportcanvas/model"
)

// Point is one label of a chart with the record's value and the average.
type Point struct {
	Label   string  `json:"label"`
	Actual  float64 `json:"actual"`
	Average float64 `json:"average"`
}

// ChartData is a chart configuration resolved against one record.
type ChartData struct {
	Points    []Point   `json:"points"`
	DomainMax float64   `json:"domainMax"`
	Ticks     []float64 `json:"ticks"`
}

// Series resolves each label of cfg to its actual and average value.
func Series(ds model.Dataset, index int, cfg model.ChartConfig) []Point {
	points := make([]Point, len(cfg.Labels))
	for i, label := range cfg.Labels {
		p := Point{Label: label}
		if i < len(cfg.ScoreCols) {
			p.Actual = Number(cell(ds, index, cfg.ScoreCols[i]))
		}
		if i < len(cfg.AvgCols) {
			p.Average = Number(cell(ds, index, cfg.AvgCols[i]))
		}
		points[i] = p
	}
	return points
}

// DomainMax returns the value axis maximum shared by every chart kind: the
// largest actual or average value plus 20% headroom, rounded up to the next
// even integer. It is 0 when there are no points.
func DomainMax(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}
	values := make([]float64, 0, 2*len(points))
	for _, p := range points {
		values = append(values, p.Actual, p.Average)
	}
	d := math.Ceil(floats.Max(values)*headroom/2-epsilon) * 2
	if d == 0 {
		return 0 // no negative zero
	}
	return d
}

// Ticks returns the radial ticks of a radar chart: every even value from 0
// up to, but excluding, domain.
func Ticks(domain float64) []float64 {
	var ticks []float64
	for v := 0.0; v < domain-epsilon; v += 2 {
		ticks = append(ticks, v)
	}
	return ticks
}

// Chart resolves cfg for the record at index. The result is identical for
// bar and radar renderings.
func Chart(ds model.Dataset, index int, cfg model.ChartConfig) ChartData {
	points := Series(ds, index, cfg)
	domain := DomainMax(points)
	return ChartData{Points: points, DomainMax: domain, Ticks: Ticks(domain)}
}
