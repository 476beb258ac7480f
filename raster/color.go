package raster

import (
	"image/color"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/lvillar/reportcanvas/model"
)

// Fixed colours of the page and editing chrome.
var (
	pageColor    = drawing.ColorWhite
	chromeColor  = drawing.ColorFromHex("333333")
	frameColor   = drawing.ColorFromHex("aaaaaa")
	axisColor    = drawing.ColorFromHex("888888")
	gridColor    = drawing.ColorFromHex("dddddd")
	labelColor   = drawing.ColorFromHex("444444")
	missingColor = drawing.ColorFromHex("e0e0e0")
)

// parseColor converts a model colour. Unparseable values fall back to fallback.
func parseColor(c model.Color, fallback drawing.Color) drawing.Color {
	hex := strings.TrimPrefix(strings.TrimSpace(string(c)), "#")
	if len(hex) != 3 && len(hex) != 6 {
		return fallback
	}
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return fallback
		}
	}
	return drawing.ColorFromHex(hex)
}

// withOpacity scales the alpha channel of c by a.
func withOpacity(c drawing.Color, a float64) color.Color {
	return c.WithAlpha(uint8(float64(c.A) * a))
}
