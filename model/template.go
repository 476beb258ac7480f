package model

import "fmt"

// Color is a CSS-style hex colour ("#rrggbb" or "#rgb"), or ColorNone.
type Color string

// ColorNone marks a transparent fill.
const ColorNone Color = "none"

// IsNone reports whether c is transparent.
func (c Color) IsNone() bool { return c == ColorNone || c == "" }

// PxPerMM converts paper millimetres to canvas pixels.
const PxPerMM = 3.78

// Paper is a supported page format.
type Paper string

const (
	PaperA4 Paper = "A4"
	PaperA3 Paper = "A3"
)

var paperMM = map[Paper][2]float64{
	PaperA4: {210, 297},
	PaperA3: {297, 420},
}

// ParsePaper validates a paper name.
func ParsePaper(s string) (Paper, error) {
	p := Paper(s)
	if _, ok := paperMM[p]; !ok {
		return "", fmt.Errorf("%w: paper %q", ErrInvalidValue, s)
	}
	return p, nil
}

// SizeMM returns the paper size in millimetres.
func (p Paper) SizeMM() (w, h float64) {
	mm, ok := paperMM[p]
	if !ok {
		mm = paperMM[PaperA4]
	}
	return mm[0], mm[1]
}

// SizePx returns the paper size in canvas pixels.
func (p Paper) SizePx() (w, h float64) {
	w, h = p.SizeMM()
	return w * PxPerMM, h * PxPerMM
}

// Template is one complete report layout. Objects is in paint order: the
// last element is drawn on top.
type Template struct {
	Paper   Paper            `json:"paper"`
	Objects []Object         `json:"-"`
	Items   []EvaluationItem `json:"items"`
}
