package model

// Default geometry and style of newly added objects.
const (
	DefaultFontSize    = 16
	DefaultText        = "Enter text"
	DefaultChartWidth  = 400
	DefaultChartHeight = 300
	DefaultShapeSide   = 120
	DefaultBarcodeSide = 120
	DefaultStrokeWidth = 2
	DefaultTextColor   = Color("#000000")
	DefaultStrokeColor = Color("#333333")
	textOffsetX        = 100
	textOffsetY        = 20
)

// View is the visible canvas area new objects are centred in.
type View struct {
	Width, Height float64
}

func (v View) centre(w, h float64) Base {
	return Base{X: v.Width/2 - w/2, Y: v.Height/2 - h/2}
}

func (v View) textOrigin() Base {
	return Base{X: v.Width/2 - textOffsetX, Y: v.Height/2 - textOffsetY}
}

// NewText returns a default text label placed in view.
func NewText(v View, text string) Text {
	if text == "" {
		text = DefaultText
	}
	return Text{Base: v.textOrigin(), Text: text, FontSize: DefaultFontSize, Color: DefaultTextColor}
}

// NewMappedText returns a default mapped text placed in view.
func NewMappedText(v View, column string) MappedText {
	return MappedText{Base: v.textOrigin(), Column: column, FontSize: DefaultFontSize, Color: DefaultTextColor}
}

// NewShape returns a default shape of kind placed in view.
func NewShape(v View, kind ShapeKind) (Shape, error) {
	if kind != ShapeRectangle && kind != ShapeCircle {
		return Shape{}, invalid(FieldKind, kind)
	}
	return Shape{
		Base:        v.centre(DefaultShapeSide, DefaultShapeSide),
		ShapeKind:   kind,
		Width:       DefaultShapeSide,
		Height:      DefaultShapeSide,
		Stroke:      DefaultStrokeColor,
		Fill:        ColorNone,
		StrokeWidth: DefaultStrokeWidth,
	}, nil
}

// NewImage returns an image object of the given size placed in view.
func NewImage(v View, data []byte, w, h float64) (Image, error) {
	if w <= 0 || h <= 0 {
		return Image{}, invalid(FieldWidth, [2]float64{w, h})
	}
	return Image{Base: v.centre(w, h), Width: w, Height: h, Data: append([]byte(nil), data...)}, nil
}

// NewChart returns a default-sized chart placed in view.
func NewChart(v View, kind ChartKind, cfg ChartConfig) (Chart, error) {
	c := Chart{
		Base:      v.centre(DefaultChartWidth, DefaultChartHeight),
		ChartKind: kind,
		Width:     DefaultChartWidth,
		Height:    DefaultChartHeight,
		Config:    cfg.clone(),
	}
	if err := c.validate(); err != nil {
		return Chart{}, err
	}
	return c, nil
}

// NewBarcode returns a default barcode bound to column placed in view.
func NewBarcode(v View, column string, sym Symbology) (Barcode, error) {
	if sym == "" {
		sym = SymbologyQR
	}
	if !sym.Valid() {
		return Barcode{}, invalid(FieldSymbology, sym)
	}
	w, h := float64(DefaultBarcodeSide), float64(DefaultBarcodeSide)
	if !sym.Square() {
		w, h = 2*DefaultBarcodeSide, DefaultBarcodeSide/2
	}
	return Barcode{Base: v.centre(w, h), Column: column, Symbology: sym, Width: w, Height: h}, nil
}
