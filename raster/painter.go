// Package raster paints resolved scenes into images and provides the
// frame-loop Surface the exporter captures pages from.
package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // decoder registration
	_ "image/jpeg" // decoder registration
	_ "image/png"  // decoder registration
	"math"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/qr"
	"github.com/fogleman/gg"
	pdf417 "github.com/ruudk/golang-pdf417"
	"github.com/wcharczuk/go-chart/v2/drawing"
	_ "golang.org/x/image/bmp" // decoder registration
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // decoder registration
	_ "golang.org/x/image/webp" // decoder registration

	"github.com/lvillar/reportcanvas/frame"
	"github.com/lvillar/reportcanvas/model"
)

// ErrEmptyScene is returned when a scene has no area to paint.
var ErrEmptyScene = errors.New("raster: scene has no area")

// PDF417 layout: data columns and error correction level.
const (
	pdf417Columns  = 4
	pdf417Security = 2
)

// textPadding is the inset of text inside its box, in canvas pixels.
const textPadding = 4

// Painter draws scenes. A Painter is stateless and safe for concurrent use.
type Painter struct {
	transparent bool
}

// PainterOption configures a Painter.
type PainterOption func(*Painter)

// WithTransparentPage leaves the page background transparent so the raster
// can be laid over a letterhead.
func WithTransparentPage() PainterOption {
	return func(p *Painter) {
		p.transparent = true
	}
}

// NewPainter returns a Painter.
func NewPainter(opts ...PainterOption) *Painter {
	p := &Painter{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Paint renders scene at scale device pixels per canvas pixel.
func (p *Painter) Paint(scene frame.Scene, scale float64) (image.Image, error) {
	return p.PaintContext(context.Background(), scene, scale)
}

// PaintContext is Paint stopping between items once ctx is done.
func (p *Painter) PaintContext(ctx context.Context, scene frame.Scene, scale float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if scale <= 0 || math.IsNaN(scale) {
		return nil, fmt.Errorf("raster: invalid scale %v", scale)
	}
	w := int(math.Round(scene.Width * scale))
	h := int(math.Round(scene.Height * scale))
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyScene
	}
	faces, err := newFaceCache()
	if err != nil {
		return nil, err
	}
	defer faces.close()

	c := &canvas{dc: gg.NewContext(w, h), k: scale, faces: faces}
	if !p.transparent {
		c.dc.SetColor(pageColor)
		c.dc.Clear()
	}
	for _, item := range scene.Items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.item(item)
	}
	return c.dc.Image(), nil
}

// canvas carries one paint call. All coordinates passed to its methods are
// canvas pixels; k converts them to device pixels.
type canvas struct {
	dc    *gg.Context
	k     float64
	faces *faceCache
}

func (c *canvas) px(v float64) float64 { return v * c.k }

func (c *canvas) item(it frame.Item) {
	switch v := it.(type) {
	case frame.TextItem:
		c.text(v)
	case frame.ShapeItem:
		c.shape(v)
	case frame.ImageItem:
		c.image(v)
	case frame.ChartItem:
		c.chart(v)
	case frame.BarcodeItem:
		c.barcode(v)
	}
}

// setFont selects a face of size canvas pixels.
func (c *canvas) setFont(size float64, bold bool) {
	c.dc.SetFontFace(c.faces.face(c.px(size), bold))
}

// label draws s with its top-left corner at (x, y).
func (c *canvas) label(s string, x, y, size float64, bold bool, col drawing.Color) (w, h float64) {
	face := c.faces.face(c.px(size), bold)
	c.dc.SetFontFace(face)
	m := face.Metrics()
	ascent := float64(m.Ascent) / 64
	c.dc.SetColor(col)
	c.dc.DrawString(s, c.px(x), c.px(y)+ascent)
	tw, _ := c.dc.MeasureString(s)
	return tw / c.k, float64(m.Height) / 64 / c.k
}

// centred draws s centred on (x, y).
func (c *canvas) centred(s string, x, y, size float64, col drawing.Color) {
	c.setFont(size, false)
	c.dc.SetColor(col)
	c.dc.DrawStringAnchored(s, c.px(x), c.px(y), 0.5, 0.5)
}

func (c *canvas) text(t frame.TextItem) {
	tw, th := c.label(t.Text, t.X+textPadding, t.Y+textPadding, t.FontSize, t.Bold,
		parseColor(t.Color, drawing.ColorBlack))
	c.chrome(t.Chrome, t.X, t.Y, tw+2*textPadding, th+2*textPadding, 1)
}

func (c *canvas) shape(s frame.ShapeItem) {
	switch s.Kind {
	case model.ShapeCircle:
		c.dc.DrawEllipse(c.px(s.X+s.Width/2), c.px(s.Y+s.Height/2), c.px(s.Width/2), c.px(s.Height/2))
	default:
		c.dc.DrawRectangle(c.px(s.X), c.px(s.Y), c.px(s.Width), c.px(s.Height))
	}
	if !s.Fill.IsNone() {
		c.dc.SetColor(parseColor(s.Fill, drawing.ColorTransparent))
		c.dc.FillPreserve()
	}
	if s.StrokeWidth > 0 {
		c.dc.SetColor(parseColor(s.Stroke, drawing.ColorBlack))
		c.dc.SetLineWidth(c.px(s.StrokeWidth))
		c.dc.StrokePreserve()
	}
	c.dc.ClearPath()
	c.chrome(s.Chrome, s.X, s.Y, s.Width, s.Height, 1)
}

func (c *canvas) image(m frame.ImageItem) {
	dw, dh := int(math.Round(c.px(m.Width))), int(math.Round(c.px(m.Height)))
	src, _, err := image.Decode(bytes.NewReader(m.Data))
	if err != nil || dw <= 0 || dh <= 0 {
		// Unreadable payloads are painted as a placeholder instead of
		// failing the whole frame.
		c.missing(m.X, m.Y, m.Width, m.Height, "image")
		c.chrome(m.Chrome, m.X, m.Y, m.Width, m.Height, 1)
		return
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	c.dc.DrawImage(dst, int(math.Round(c.px(m.X))), int(math.Round(c.px(m.Y))))
	c.chrome(m.Chrome, m.X, m.Y, m.Width, m.Height, 1)
}

func (c *canvas) barcode(b frame.BarcodeItem) {
	defer c.chrome(b.Chrome, b.X, b.Y, b.Width, b.Height, 1)
	if b.Value == "" {
		c.missing(b.X, b.Y, b.Width, b.Height, b.Placeholder)
		return
	}
	img, err := encodeBarcode(b.Symbology, b.Value, int(c.px(b.Width)), int(c.px(b.Height)))
	if err != nil {
		c.missing(b.X, b.Y, b.Width, b.Height, b.Value)
		return
	}
	c.dc.DrawImage(img, int(math.Round(c.px(b.X))), int(math.Round(c.px(b.Y))))
}

func encodeBarcode(sym model.Symbology, value string, w, h int) (image.Image, error) {
	var (
		bc  barcode.Barcode
		err error
	)
	switch sym {
	case model.SymbologyCode128:
		bc, err = code128.Encode(value)
	case model.SymbologyPDF417:
		bc, err = encodePDF417(value)
	default:
		bc, err = qr.Encode(value, qr.M, qr.Auto)
	}
	if err != nil {
		return nil, fmt.Errorf("raster: encoding %s barcode: %w", sym, err)
	}
	if sym.Square() && w != h {
		w = min(w, h)
		h = w
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("raster: %s barcode has no area", sym)
	}
	if scaled, err := barcode.Scale(bc, w, h); err == nil {
		return scaled, nil
	}
	// Smaller than one device pixel per module.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), bc, bc.Bounds(), xdraw.Src, nil)
	return dst, nil
}

func encodePDF417(value string) (bc barcode.Barcode, err error) {
	// The encoder panics on input it cannot compact.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return pdf417.Encode(value, pdf417Columns, pdf417Security), nil
}

// missing paints a grey box with caption for content that cannot be drawn.
func (c *canvas) missing(x, y, w, h float64, caption string) {
	c.dc.DrawRectangle(c.px(x), c.px(y), c.px(w), c.px(h))
	c.dc.SetColor(missingColor)
	c.dc.Fill()
	if caption != "" {
		c.centred(caption, x+w/2, y+h/2, 12, labelColor)
	}
}

// chrome draws the edit-only selection outline and delete affordance.
func (c *canvas) chrome(ch frame.Chrome, x, y, w, h, lw float64) {
	if ch.Selected {
		c.dc.Push()
		c.dc.SetDash(c.px(4), c.px(3))
		c.dc.SetLineWidth(c.px(lw))
		c.dc.SetColor(chromeColor)
		c.dc.DrawRectangle(c.px(x), c.px(y), c.px(w), c.px(h))
		c.dc.Stroke()
		c.dc.Pop()
	}
	if ch.Deletable {
		const r = 10
		cx, cy := x+w, y
		c.dc.DrawCircle(c.px(cx), c.px(cy), c.px(r))
		c.dc.SetColor(pageColor)
		c.dc.FillPreserve()
		c.dc.SetColor(frameColor)
		c.dc.SetLineWidth(c.px(1))
		c.dc.Stroke()
		c.dc.SetColor(chromeColor)
		c.dc.DrawLine(c.px(cx-4), c.px(cy-4), c.px(cx+4), c.px(cy+4))
		c.dc.DrawLine(c.px(cx+4), c.px(cy-4), c.px(cx-4), c.px(cy+4))
		c.dc.Stroke()
	}
}
