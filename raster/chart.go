package raster

import (
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/lvillar/reportcanvas/binding"
	"github.com/lvillar/reportcanvas/frame"
	"github.com/lvillar/reportcanvas/model"
)

// Series names shown in chart legends.
const (
	actualName  = "Actual"
	averageName = "Average"
)

// box is a rectangle in canvas pixels.
type box struct{ x, y, w, h float64 }

func (c *canvas) chart(ch frame.ChartItem) {
	frameBox := box{ch.X, ch.Y, ch.Width, ch.Height}
	c.dc.DrawRectangle(c.px(ch.X), c.px(ch.Y), c.px(ch.Width), c.px(ch.Height))
	c.dc.SetColor(pageColor)
	c.dc.FillPreserve()
	c.dc.SetColor(frameColor)
	c.dc.SetLineWidth(c.px(1))
	c.dc.Stroke()

	switch {
	case ch.NoData:
		c.centred("No data", ch.X+ch.Width/2, ch.Y+ch.Height/2, 14, labelColor)
	case ch.Kind == model.ChartRadar:
		c.radar(ch, frameBox)
	default:
		c.bars(ch, frameBox)
	}
	c.chrome(ch.Chrome, ch.X, ch.Y, ch.Width, ch.Height, 2)
}

// domain guards against a degenerate axis when every value is zero.
func domain(d binding.ChartData) float64 {
	if d.DomainMax <= 0 {
		return 2
	}
	return d.DomainMax
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

// axisStep picks an even tick spacing giving at most five intervals.
func axisStep(dmax float64) float64 {
	step := 2 * math.Ceil(dmax/10)
	if step < 2 {
		step = 2
	}
	return step
}

func (c *canvas) legend(x, y float64, actual, average drawing.Color) {
	for i, entry := range []struct {
		name string
		col  drawing.Color
	}{{actualName, actual}, {averageName, average}} {
		ly := y + float64(i)*14
		c.dc.DrawRectangle(c.px(x), c.px(ly+2), c.px(10), c.px(10))
		c.dc.SetColor(entry.col)
		c.dc.Fill()
		c.label(entry.name, x+14, ly, 11, false, labelColor)
	}
}

// bars draws a grouped bar chart: one group per label, actual then average.
func (c *canvas) bars(ch frame.ChartItem, b box) {
	const (
		top, right, bottom, left = 36, 24, 40, 44
	)
	actual := parseColor(ch.ActualColor, parseColor(model.DefaultActualColor, drawing.ColorBlack))
	average := parseColor(ch.AverageColor, parseColor(model.DefaultAverageColor, drawing.ColorBlack))
	plot := box{b.x + left, b.y + top, b.w - left - right, b.h - top - bottom}
	if plot.w <= 0 || plot.h <= 0 {
		return
	}
	dmax := domain(ch.Data)
	yOf := func(v float64) float64 {
		v = math.Max(0, math.Min(v, dmax))
		return plot.y + plot.h - v/dmax*plot.h
	}

	step := axisStep(dmax)
	c.dc.SetLineWidth(c.px(1))
	for v := 0.0; v <= dmax+1e-9; v += step {
		y := yOf(v)
		c.dc.SetColor(gridColor)
		c.dc.DrawLine(c.px(plot.x), c.px(y), c.px(plot.x+plot.w), c.px(y))
		c.dc.Stroke()
		c.setFont(10, false)
		c.dc.SetColor(labelColor)
		c.dc.DrawStringAnchored(formatValue(v), c.px(plot.x-4), c.px(y), 1, 0.5)
	}
	c.dc.SetColor(axisColor)
	c.dc.DrawLine(c.px(plot.x), c.px(plot.y), c.px(plot.x), c.px(plot.y+plot.h))
	c.dc.DrawLine(c.px(plot.x), c.px(plot.y+plot.h), c.px(plot.x+plot.w), c.px(plot.y+plot.h))
	c.dc.Stroke()

	n := len(ch.Data.Points)
	if n > 0 {
		group := plot.w / float64(n)
		bw := group * 0.35
		for i, p := range ch.Data.Points {
			gx := plot.x + float64(i)*group + (group-2*bw)/2
			for j, s := range []struct {
				v   float64
				col drawing.Color
			}{{p.Actual, actual}, {p.Average, average}} {
				x := gx + float64(j)*bw
				y := yOf(s.v)
				c.dc.DrawRectangle(c.px(x), c.px(y), c.px(bw), c.px(plot.y+plot.h-y))
				c.dc.SetColor(s.col)
				c.dc.Fill()
				c.setFont(10, false)
				c.dc.SetColor(labelColor)
				c.dc.DrawStringAnchored(formatValue(s.v), c.px(x+bw/2), c.px(y-2), 0.5, 0)
			}
			c.centred(p.Label, plot.x+float64(i)*group+group/2, plot.y+plot.h+12, 11, labelColor)
		}
	}
	c.legend(b.x+8, b.y+6, actual, average)
}

// radar draws both series as filled polygons over a grid of the radial
// ticks.
func (c *canvas) radar(ch frame.ChartItem, b box) {
	const margin = 30
	actual := parseColor(ch.ActualColor, parseColor(model.DefaultActualColor, drawing.ColorBlack))
	average := parseColor(ch.AverageColor, parseColor(model.DefaultAverageColor, drawing.ColorBlack))
	n := len(ch.Data.Points)
	r := math.Min(b.w, b.h)/2 - margin
	if n == 0 || r <= 0 {
		c.legend(b.x+8, b.y+6, actual, average)
		return
	}
	cx, cy := b.x+b.w/2, b.y+b.h/2+6
	dmax := domain(ch.Data)
	vertex := func(i int, v float64) (float64, float64) {
		a := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
		d := r * math.Max(0, math.Min(v, dmax)) / dmax
		return cx + d*math.Cos(a), cy + d*math.Sin(a)
	}
	polygon := func(value func(i int) float64) {
		for i := 0; i < n; i++ {
			x, y := vertex(i, value(i))
			c.dc.LineTo(c.px(x), c.px(y))
		}
		c.dc.ClosePath()
	}

	c.dc.SetLineWidth(c.px(1))
	c.dc.SetColor(gridColor)
	rings := append(append([]float64(nil), ch.Data.Ticks...), dmax)
	for _, t := range rings {
		if t <= 0 {
			continue
		}
		c.dc.NewSubPath()
		polygon(func(int) float64 { return t })
		c.dc.Stroke()
	}
	for i := 0; i < n; i++ {
		x, y := vertex(i, dmax)
		c.dc.DrawLine(c.px(cx), c.px(cy), c.px(x), c.px(y))
	}
	c.dc.Stroke()

	for _, t := range ch.Data.Ticks {
		_, y := vertex(0, t)
		c.setFont(10, false)
		c.dc.SetColor(labelColor)
		c.dc.DrawStringAnchored(formatValue(t), c.px(cx+3), c.px(y), 0, 0.5)
	}

	for _, s := range []struct {
		col     drawing.Color
		opacity float64
		value   func(i int) float64
	}{
		{actual, 0.6, func(i int) float64 { return ch.Data.Points[i].Actual }},
		{average, 0.3, func(i int) float64 { return ch.Data.Points[i].Average }},
	} {
		c.dc.NewSubPath()
		polygon(s.value)
		c.dc.SetColor(withOpacity(s.col, s.opacity))
		c.dc.FillPreserve()
		c.dc.SetColor(s.col)
		c.dc.Stroke()
	}

	for i, p := range ch.Data.Points {
		x, y := vertex(i, dmax)
		dx, dy := x-cx, y-cy
		d := math.Hypot(dx, dy)
		if d > 0 {
			x, y = x+dx/d*14, y+dy/d*14
		}
		c.centred(p.Label, x, y, 12, labelColor)
	}
	c.legend(b.x+8, b.y+6, actual, average)
}
