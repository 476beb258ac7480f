// Package frame projects a template onto one dataset record.
//
// Render is a pure function: it resolves every data-bound object of the
// template for the requested record and returns the Scene a painting surface
// draws. It holds no pixel logic.
package frame

import (
	"github.com/lvillar/reportcanvas/binding"
	"github.com/lvillar/reportcanvas/model"
)

// Mode selects whether editing chrome is part of the scene.
type Mode int

const (
	// Edit includes selection highlighting and delete affordances.
	Edit Mode = iota
	// Export omits all editing chrome.
	Export
)

func (m Mode) String() string {
	if m == Export {
		return "export"
	}
	return "edit"
}

// Chrome is the edit-only decoration of an item. It is always zero in
// Export mode.
type Chrome struct {
	Selected  bool `json:"selected,omitempty"`
	Deletable bool `json:"deletable,omitempty"`
}

// Item is one resolved element of a scene.
type Item interface {
	ItemID() string
	Decoration() Chrome
	Bounds() (x, y, w, h float64)
}

// TextItem is a Text or a resolved MappedText.
type TextItem struct {
	Type     model.Kind  `json:"type"`
	ID       string      `json:"id"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Text     string      `json:"text"`
	FontSize float64     `json:"fontSize"`
	Bold     bool        `json:"bold"`
	Color    model.Color `json:"color"`
	Chrome   Chrome      `json:"chrome"`
}

// ShapeItem is a rectangle or ellipse.
type ShapeItem struct {
	Type        model.Kind      `json:"type"`
	ID          string          `json:"id"`
	X           float64         `json:"x"`
	Y           float64         `json:"y"`
	Width       float64         `json:"width"`
	Height      float64         `json:"height"`
	Kind        model.ShapeKind `json:"kind"`
	Stroke      model.Color     `json:"stroke"`
	Fill        model.Color     `json:"fill"`
	StrokeWidth float64         `json:"strokeWidth"`
	Chrome      Chrome          `json:"chrome"`
}

// ImageItem is an image stretched to its bounds.
type ImageItem struct {
	Type   model.Kind `json:"type"`
	ID     string     `json:"id"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Data   []byte     `json:"-"`
	Chrome Chrome     `json:"chrome"`
}

// ChartItem is a chart resolved for the scene's record. NoData is set when
// the record does not exist.
type ChartItem struct {
	Type         model.Kind        `json:"type"`
	ID           string            `json:"id"`
	X            float64           `json:"x"`
	Y            float64           `json:"y"`
	Width        float64           `json:"width"`
	Height       float64           `json:"height"`
	Kind         model.ChartKind   `json:"kind"`
	Data         binding.ChartData `json:"data"`
	NoData       bool              `json:"noData,omitempty"`
	ActualColor  model.Color       `json:"actualColor"`
	AverageColor model.Color       `json:"avgColor"`
	Chrome       Chrome            `json:"chrome"`
}

// BarcodeItem is a barcode resolved for the scene's record. Value is empty
// when the bound cell is missing, and Placeholder is shown instead.
type BarcodeItem struct {
	Type        model.Kind      `json:"type"`
	ID          string          `json:"id"`
	X           float64         `json:"x"`
	Y           float64         `json:"y"`
	Width       float64         `json:"width"`
	Height      float64         `json:"height"`
	Symbology   model.Symbology `json:"symbology"`
	Value       string          `json:"value,omitempty"`
	Placeholder string          `json:"placeholder,omitempty"`
	Chrome      Chrome          `json:"chrome"`
}

func (t TextItem) ItemID() string    { return t.ID }
func (s ShapeItem) ItemID() string   { return s.ID }
func (m ImageItem) ItemID() string   { return m.ID }
func (c ChartItem) ItemID() string   { return c.ID }
func (b BarcodeItem) ItemID() string { return b.ID }

func (t TextItem) Decoration() Chrome    { return t.Chrome }
func (s ShapeItem) Decoration() Chrome   { return s.Chrome }
func (m ImageItem) Decoration() Chrome   { return m.Chrome }
func (c ChartItem) Decoration() Chrome   { return c.Chrome }
func (b BarcodeItem) Decoration() Chrome { return b.Chrome }

// Bounds of a text item have no extent; the painter measures glyphs.
func (t TextItem) Bounds() (x, y, w, h float64)    { return t.X, t.Y, 0, 0 }
func (s ShapeItem) Bounds() (x, y, w, h float64)   { return s.X, s.Y, s.Width, s.Height }
func (m ImageItem) Bounds() (x, y, w, h float64)   { return m.X, m.Y, m.Width, m.Height }
func (c ChartItem) Bounds() (x, y, w, h float64)   { return c.X, c.Y, c.Width, c.Height }
func (b BarcodeItem) Bounds() (x, y, w, h float64) { return b.X, b.Y, b.Width, b.Height }

// Scene is a template fully resolved for one record.
type Scene struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Record int     `json:"record"`
	Mode   Mode    `json:"-"`
	Items  []Item  `json:"items"`
}
