package raster

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

type fontSet struct {
	regular *truetype.Font
	bold    *truetype.Font
}

var loadFonts = sync.OnceValues(func() (fontSet, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return fontSet{}, fmt.Errorf("raster: parsing regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return fontSet{}, fmt.Errorf("raster: parsing bold font: %w", err)
	}
	return fontSet{regular: regular, bold: bold}, nil
})

type faceKey struct {
	size float64
	bold bool
}

// faceCache hands out font faces for one paint call. Faces keep glyph caches
// and must not be shared between goroutines.
type faceCache struct {
	fonts fontSet
	faces map[faceKey]font.Face
}

func newFaceCache() (*faceCache, error) {
	fs, err := loadFonts()
	if err != nil {
		return nil, err
	}
	return &faceCache{fonts: fs, faces: make(map[faceKey]font.Face)}, nil
}

// face returns a face rendering size device pixels.
func (c *faceCache) face(size float64, bold bool) font.Face {
	key := faceKey{size: size, bold: bold}
	if f, ok := c.faces[key]; ok {
		return f
	}
	ttf := c.fonts.regular
	if bold {
		ttf = c.fonts.bold
	}
	f := truetype.NewFace(ttf, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	c.faces[key] = f
	return f
}

func (c *faceCache) close() {
	for _, f := range c.faces {
		f.Close()
	}
}
