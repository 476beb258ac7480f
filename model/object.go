// Package model defines the report template: the canvas objects a user places
// on a page, the chart configuration they bind to a dataset, and the dataset
// itself.
//
// A canvas object is one of a fixed set of variants (Text, MappedText, Shape,
// Image, Chart, Barcode). Every variant implements the sealed Object
// interface, so consumers switch exhaustively over the concrete types instead
// of inspecting a type tag.
package model

import (
	"errors"
	"fmt"
)

// Kind names a canvas object variant.
type Kind string

const (
	KindText       Kind = "text"
	KindMappedText Kind = "mappedText"
	KindShape      Kind = "shape"
	KindImage      Kind = "image"
	KindChart      Kind = "chart"
	KindBarcode    Kind = "barcode"
)

// Sentinel errors returned by field updates and constructors.
var (
	ErrInvalidField     = errors.New("model: field not applicable to object")
	ErrInvalidValue     = errors.New("model: invalid field value")
	ErrRadarTooFewItems = errors.New("model: radar chart needs at least 3 items")
)

// Object is a positioned visual element of a template. The set of
// implementations is closed to this package.
type Object interface {
	ObjectID() string
	Kind() Kind
	Position() (x, y float64)

	withID(id string) Object
	set(f Field, v any) (Object, error)
}

// Base holds the fields every canvas object carries.
type Base struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// ObjectID returns the stable identifier of the object.
func (b Base) ObjectID() string { return b.ID }

// Position returns the top-left corner in canvas pixels.
func (b Base) Position() (x, y float64) { return b.X, b.Y }

// setBase applies x/y updates. ok is false when f is not a base field.
func (b *Base) setBase(f Field, v any) (ok bool, err error) {
	switch f {
	case FieldX:
		n, good := toFloat(v)
		if !good {
			return true, invalid(f, v)
		}
		b.X = n
	case FieldY:
		n, good := toFloat(v)
		if !good {
			return true, invalid(f, v)
		}
		b.Y = n
	default:
		return false, nil
	}
	return true, nil
}

// Text is a literal text label.
type Text struct {
	Base
	Text     string  `json:"text"`
	FontSize float64 `json:"fontSize"`
	Bold     bool    `json:"bold"`
	Color    Color   `json:"color"`
}

func (Text) Kind() Kind { return KindText }

func (t Text) withID(id string) Object { t.ID = id; return t }

func (t Text) set(f Field, v any) (Object, error) {
	if ok, err := t.setBase(f, v); ok {
		return t, err
	}
	var err error
	switch f {
	case FieldText:
		t.Text, err = stringValue(f, v)
	case FieldFontSize, FieldBold, FieldColor:
		err = setTextStyle(&t.FontSize, &t.Bold, &t.Color, f, v)
	default:
		return t, notApplicable(f, KindText)
	}
	return t, err
}

// MappedText is a text placeholder bound to a dataset column. It displays
// the record's cell for that column.
type MappedText struct {
	Base
	Column   string  `json:"column"`
	FontSize float64 `json:"fontSize"`
	Bold     bool    `json:"bold"`
	Color    Color   `json:"color"`
}

func (MappedText) Kind() Kind { return KindMappedText }

func (t MappedText) withID(id string) Object { t.ID = id; return t }

func (t MappedText) set(f Field, v any) (Object, error) {
	if ok, err := t.setBase(f, v); ok {
		return t, err
	}
	var err error
	switch f {
	case FieldColumn:
		t.Column, err = stringValue(f, v)
	case FieldFontSize, FieldBold, FieldColor:
		err = setTextStyle(&t.FontSize, &t.Bold, &t.Color, f, v)
	default:
		return t, notApplicable(f, KindMappedText)
	}
	return t, err
}

// ShapeKind selects the outline of a Shape.
type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeCircle    ShapeKind = "circle"
)

// Shape is a rectangle or an ellipse inscribed in its bounds.
type Shape struct {
	Base
	ShapeKind   ShapeKind `json:"kind"`
	Width       float64   `json:"width"`
	Height      float64   `json:"height"`
	Stroke      Color     `json:"stroke"`
	Fill        Color     `json:"fill"` // ColorNone for transparent
	StrokeWidth float64   `json:"strokeWidth"`
}

func (Shape) Kind() Kind { return KindShape }

func (s Shape) withID(id string) Object { s.ID = id; return s }

func (s Shape) set(f Field, v any) (Object, error) {
	if ok, err := s.setBase(f, v); ok {
		return s, err
	}
	var err error
	switch f {
	case FieldKind:
		var str string
		if str, err = stringValue(f, v); err == nil {
			switch k := ShapeKind(str); k {
			case ShapeRectangle, ShapeCircle:
				s.ShapeKind = k
			default:
				err = invalid(f, v)
			}
		}
	case FieldWidth:
		s.Width, err = positive(f, v)
	case FieldHeight:
		s.Height, err = positive(f, v)
	case FieldStroke:
		s.Stroke, err = colorValue(f, v)
	case FieldFill:
		s.Fill, err = colorValue(f, v)
	case FieldStrokeWidth:
		n, good := toFloat(v)
		if !good || n < 0 {
			return s, invalid(f, v)
		}
		s.StrokeWidth = n
	default:
		return s, notApplicable(f, KindShape)
	}
	return s, err
}

// Image is an opaque image payload stretched to fill its bounds.
type Image struct {
	Base
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Data   []byte  `json:"data"`
}

func (Image) Kind() Kind { return KindImage }

func (m Image) withID(id string) Object { m.ID = id; return m }

func (m Image) set(f Field, v any) (Object, error) {
	if ok, err := m.setBase(f, v); ok {
		return m, err
	}
	var err error
	switch f {
	case FieldWidth:
		m.Width, err = positive(f, v)
	case FieldHeight:
		m.Height, err = positive(f, v)
	case FieldData:
		m.Data, err = bytesValue(f, v)
	default:
		return m, notApplicable(f, KindImage)
	}
	return m, err
}

// ChartKind selects how a chart's series are drawn.
type ChartKind string

const (
	ChartBar   ChartKind = "bar"
	ChartRadar ChartKind = "radar"
)

// Chart draws the actual/average series described by Config for the current
// record.
type Chart struct {
	Base
	ChartKind ChartKind   `json:"kind"`
	Width     float64     `json:"width"`
	Height    float64     `json:"height"`
	Config    ChartConfig `json:"config"`
}

func (Chart) Kind() Kind { return KindChart }

func (c Chart) withID(id string) Object { c.ID = id; return c }

func (c Chart) set(f Field, v any) (Object, error) {
	if ok, err := c.setBase(f, v); ok {
		return c, err
	}
	var err error
	switch f {
	case FieldKind:
		var str string
		if str, err = stringValue(f, v); err == nil {
			c.ChartKind = ChartKind(str)
			err = c.validate()
		}
	case FieldWidth:
		c.Width, err = chartSide(f, v)
	case FieldHeight:
		c.Height, err = chartSide(f, v)
	case FieldConfig:
		cfg, good := v.(ChartConfig)
		if !good {
			return c, invalid(f, v)
		}
		c.Config = cfg.clone()
		err = c.validate()
	default:
		return c, notApplicable(f, KindChart)
	}
	return c, err
}

func (c Chart) validate() error {
	switch c.ChartKind {
	case ChartBar:
		return nil
	case ChartRadar:
		if len(c.Config.Labels) < MinRadarItems {
			return ErrRadarTooFewItems
		}
		return nil
	default:
		return fmt.Errorf("%w: chart kind %q", ErrInvalidValue, c.ChartKind)
	}
}

// Symbology selects the barcode encoding of a Barcode object.
type Symbology string

const (
	SymbologyQR      Symbology = "qr"
	SymbologyCode128 Symbology = "code128"
	SymbologyPDF417  Symbology = "pdf417"
)

// Valid reports whether s is a supported symbology.
func (s Symbology) Valid() bool {
	switch s {
	case SymbologyQR, SymbologyCode128, SymbologyPDF417:
		return true
	}
	return false
}

// Square reports whether s encodes into a square symbol.
func (s Symbology) Square() bool { return s == SymbologyQR }

// Barcode encodes the record's cell for Column as a barcode.
type Barcode struct {
	Base
	Column    string    `json:"column"`
	Symbology Symbology `json:"symbology"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
}

func (Barcode) Kind() Kind { return KindBarcode }

func (b Barcode) withID(id string) Object { b.ID = id; return b }

func (b Barcode) set(f Field, v any) (Object, error) {
	if ok, err := b.setBase(f, v); ok {
		return b, err
	}
	var err error
	switch f {
	case FieldColumn:
		b.Column, err = stringValue(f, v)
	case FieldSymbology:
		var str string
		if str, err = stringValue(f, v); err == nil {
			if s := Symbology(str); s.Valid() {
				b.Symbology = s
			} else {
				err = invalid(f, v)
			}
		}
	case FieldWidth:
		b.Width, err = positive(f, v)
	case FieldHeight:
		b.Height, err = positive(f, v)
	default:
		return b, notApplicable(f, KindBarcode)
	}
	return b, err
}

// Size returns the width and height of obj. Text variants have no intrinsic
// size and report zero.
func Size(obj Object) (w, h float64) {
	switch o := obj.(type) {
	case Shape:
		return o.Width, o.Height
	case Image:
		return o.Width, o.Height
	case Chart:
		return o.Width, o.Height
	case Barcode:
		return o.Width, o.Height
	}
	return 0, 0
}

// WithID returns a copy of obj carrying id.
func WithID(obj Object, id string) Object {
	return obj.withID(id)
}

// Set returns a copy of obj with field f replaced by v. obj itself is never
// modified.
func Set(obj Object, f Field, v any) (Object, error) {
	next, err := obj.set(f, v)
	if err != nil {
		return obj, err
	}
	return next, nil
}
