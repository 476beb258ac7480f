package model

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
)

// Field names an updatable property of a canvas object.
type Field string

const (
	FieldX           Field = "x"
	FieldY           Field = "y"
	FieldText        Field = "text"
	FieldColumn      Field = "column"
	FieldFontSize    Field = "fontSize"
	FieldBold        Field = "bold"
	FieldColor       Field = "color"
	FieldKind        Field = "kind"
	FieldWidth       Field = "width"
	FieldHeight      Field = "height"
	FieldStroke      Field = "stroke"
	FieldFill        Field = "fill"
	FieldStrokeWidth Field = "strokeWidth"
	FieldData        Field = "data"
	FieldConfig      Field = "config"
	FieldSymbology   Field = "symbology"
)

// Limits applied by field updates.
const (
	MinFontSize   = 8
	MaxFontSize   = 48
	MinChartSide  = 100
	MaxChartSide  = 800
	MinRadarItems = 3
)

func invalid(f Field, v any) error {
	return fmt.Errorf("%w: %s=%v", ErrInvalidValue, f, v)
}

func notApplicable(f Field, k Kind) error {
	return fmt.Errorf("%w: %s on %s", ErrInvalidField, f, k)
}

// toFloat accepts the numeric shapes a value takes after JSON decoding or
// when passed from Go code directly.
func toFloat(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case int32:
		n = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func stringValue(f Field, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", invalid(f, v)
	}
	return s, nil
}

func colorValue(f Field, v any) (Color, error) {
	switch x := v.(type) {
	case Color:
		return x, nil
	case string:
		return Color(x), nil
	}
	return "", invalid(f, v)
}

func positive(f Field, v any) (float64, error) {
	n, ok := toFloat(v)
	if !ok || n <= 0 {
		return 0, invalid(f, v)
	}
	return n, nil
}

func chartSide(f Field, v any) (float64, error) {
	n, err := positive(f, v)
	if err != nil {
		return 0, err
	}
	return clamp(n, MinChartSide, MaxChartSide), nil
}

func bytesValue(f Field, v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return append([]byte(nil), x...), nil
	case string:
		b, err := base64.StdEncoding.DecodeString(x)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, f, err)
		}
		return b, nil
	}
	return nil, invalid(f, v)
}

func setTextStyle(size *float64, bold *bool, color *Color, f Field, v any) error {
	switch f {
	case FieldFontSize:
		n, ok := toFloat(v)
		if !ok {
			return invalid(f, v)
		}
		*size = ClampFontSize(n)
	case FieldBold:
		b, ok := v.(bool)
		if !ok {
			return invalid(f, v)
		}
		*bold = b
	case FieldColor:
		c, err := colorValue(f, v)
		if err != nil {
			return err
		}
		*color = c
	}
	return nil
}

// ClampFontSize limits n to [MinFontSize, MaxFontSize].
func ClampFontSize(n float64) float64 {
	return clamp(n, MinFontSize, MaxFontSize)
}

func clamp(n, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, n))
}
