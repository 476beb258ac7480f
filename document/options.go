package document

// Option configures a Builder.
type Option func(*config)

type config struct {
	title          string
	author         string
	creator        string
	letterhead     string
	letterheadPage int
	watermark      Watermark
}

// Watermark is a text stamped diagonally across every page.
type Watermark struct {
	Text     string  // watermark text
	FontSize float64 // font size in points (default: 60)
	Opacity  float64 // 0.0 to 1.0 (default: 0.3)
	Angle    float64 // rotation angle in degrees (default: 45)
	R, G, B  int     // text color (default: light gray)
}

func (w *Watermark) defaults() {
	if w.FontSize == 0 {
		w.FontSize = 60
	}
	if w.Opacity == 0 {
		w.Opacity = 0.3
	}
	if w.Angle == 0 {
		w.Angle = 45
	}
	if w.R == 0 && w.G == 0 && w.B == 0 {
		w.R, w.G, w.B = 200, 200, 200
	}
}

// WithTitle sets the document title metadata.
func WithTitle(title string) Option {
	return func(c *config) {
		c.title = title
	}
}

// WithAuthor sets the document author metadata.
func WithAuthor(author string) Option {
	return func(c *config) {
		c.author = author
	}
}

// WithCreator sets the document creator metadata.
func WithCreator(creator string) Option {
	return func(c *config) {
		c.creator = creator
	}
}

// WithLetterhead draws page (1-based) of the PDF at path underneath every
// captured page. Page values below 1 select the first page.
func WithLetterhead(path string, page int) Option {
	return func(c *config) {
		if page < 1 {
			page = 1
		}
		c.letterhead = path
		c.letterheadPage = page
	}
}

// WithWatermark stamps text over every page using default styling.
func WithWatermark(text string) Option {
	return WithWatermarkStyle(Watermark{Text: text})
}

// WithWatermarkStyle stamps a fully specified watermark over every page.
func WithWatermarkStyle(wm Watermark) Option {
	return func(c *config) {
		wm.defaults()
		c.watermark = wm
	}
}
