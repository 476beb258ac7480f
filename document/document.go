// Package document assembles captured page rasters into a PDF.
//
// Pages are measured in CSS pixels and converted to points at 0.75 pt/px.
// Every page of a document has the same size; the orientation is landscape
// when the page is wider than it is tall.
package document

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
)

// PtPerPx converts CSS pixels to PDF points.
const PtPerPx = 0.75

// Orientation strings understood by gofpdf.
const (
	Portrait  = "P"
	Landscape = "L"
)

// Builder accumulates one full-bleed image page per AddPage call.
type Builder struct {
	pdf         *gofpdf.Fpdf
	orientation string
	size        gofpdf.SizeType // portrait-normalised, in points
	w, h        float64         // page size as laid out, in points
	pages       int
	cfg         config
	letterhead  int
	imp         *gofpdi.Importer
	done        bool
}

// Orientation returns "L" when width exceeds height and "P" otherwise.
func Orientation(widthPx, heightPx int) string {
	if widthPx > heightPx {
		return Landscape
	}
	return Portrait
}

// New returns a Builder for pages of widthPx by heightPx CSS pixels.
func New(widthPx, heightPx int, opts ...Option) (*Builder, error) {
	if widthPx <= 0 || heightPx <= 0 {
		return nil, newError("New", fmt.Errorf("%w: %dx%d", ErrInvalidSize, widthPx, heightPx))
	}
	b := &Builder{
		orientation: Orientation(widthPx, heightPx),
		w:           float64(widthPx) * PtPerPx,
		h:           float64(heightPx) * PtPerPx,
		letterhead:  -1,
	}
	for _, opt := range opts {
		opt(&b.cfg)
	}
	// gofpdf swaps the sides of landscape pages itself, so the size it is
	// given is always the portrait one.
	b.size = gofpdf.SizeType{Wd: min(b.w, b.h), Ht: max(b.w, b.h)}

	b.pdf = gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: b.orientation,
		UnitStr:        "pt",
		Size:           b.size,
	})
	b.pdf.SetMargins(0, 0, 0)
	b.pdf.SetAutoPageBreak(false, 0)
	if b.cfg.title != "" {
		b.pdf.SetTitle(b.cfg.title, true)
	}
	if b.cfg.author != "" {
		b.pdf.SetAuthor(b.cfg.author, true)
	}
	if b.cfg.creator != "" {
		b.pdf.SetCreator(b.cfg.creator, true)
	}

	if b.cfg.letterhead != "" {
		if err := b.importLetterhead(); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Builder) importLetterhead() (err error) {
	if _, err := os.Stat(b.cfg.letterhead); err != nil {
		return newError("Letterhead", err)
	}
	// The importer panics on malformed input.
	defer func() {
		if r := recover(); r != nil {
			err = newError("Letterhead", fmt.Errorf("importing %s: %v", b.cfg.letterhead, r))
		}
	}()
	b.imp = gofpdi.NewImporter()
	b.letterhead = b.imp.ImportPage(b.pdf, b.cfg.letterhead, b.cfg.letterheadPage, "/MediaBox")
	return nil
}

// Size returns the page size in points as laid out on the page.
func (b *Builder) Size() (w, h float64) { return b.w, b.h }

// PageOrientation returns the orientation string of every page.
func (b *Builder) PageOrientation() string { return b.orientation }

// PageCount returns the number of pages added so far.
func (b *Builder) PageCount() int { return b.pages }

// AddPage appends a page showing img stretched to the full page.
func (b *Builder) AddPage(img image.Image) error {
	if b.done {
		return newError("AddPage", ErrClosed)
	}
	if img == nil {
		return newError("AddPage", ErrNilImage)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return newError("AddPage", fmt.Errorf("encoding page %d: %w", b.pages+1, err))
	}

	b.pdf.AddPageFormat(b.orientation, b.size)
	if b.letterhead >= 0 {
		b.imp.UseImportedTemplate(b.pdf, b.letterhead, 0, 0, b.w, b.h)
	}

	name := fmt.Sprintf("page-%d", b.pages+1)
	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	b.pdf.RegisterImageOptionsReader(name, opt, &buf)
	b.pdf.ImageOptions(name, 0, 0, b.w, b.h, false, opt, 0, "")

	if b.cfg.watermark.Text != "" {
		b.stamp()
	}
	if b.pdf.Err() {
		return newError("AddPage", b.pdf.Error())
	}
	b.pages++
	return nil
}

// stamp renders the watermark centred on the current page.
func (b *Builder) stamp() {
	wm := b.cfg.watermark
	b.pdf.SetFont("Helvetica", "B", wm.FontSize)
	b.pdf.SetTextColor(wm.R, wm.G, wm.B)
	b.pdf.SetAlpha(wm.Opacity, "Normal")

	tw := b.pdf.GetStringWidth(wm.Text)
	cx, cy := b.w/2, b.h/2
	b.pdf.TransformBegin()
	b.pdf.TransformRotate(wm.Angle, cx, cy)
	b.pdf.Text(cx-tw/2, cy+wm.FontSize/3, wm.Text)
	b.pdf.TransformEnd()

	b.pdf.SetAlpha(1.0, "Normal")
}

// Output writes the finished document to w. A Builder can be written once.
func (b *Builder) Output(w io.Writer) error {
	if b.done {
		return newError("Output", ErrClosed)
	}
	if b.pages == 0 {
		return newError("Output", ErrNoPages)
	}
	b.done = true
	if err := b.pdf.Output(w); err != nil {
		return newError("Output", err)
	}
	return nil
}

// Save writes the finished document to path.
func (b *Builder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return newError("Save", fmt.Errorf("creating %s: %w", path, err))
	}
	if err := b.Output(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return newError("Save", err)
	}
	return nil
}
