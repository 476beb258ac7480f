package reportcanvas

import (
	"io"
	"log"
	"time"

	"github.com/lvillar/reportcanvas/document"
	"github.com/lvillar/reportcanvas/export"
	"github.com/lvillar/reportcanvas/model"
	"github.com/lvillar/reportcanvas/raster"
)

// Option is a functional option for configuring a new Session via New.
type Option func(*sessionConfig)

type sessionConfig struct {
	paper         model.Paper
	view          model.View
	logger        *log.Logger
	frameInterval time.Duration
	export        export.Config
	fileName      string
	document      []document.Option
	transparent   bool
}

// WithPaper sets the initial paper type. The default is A4.
func WithPaper(p model.Paper) Option {
	return func(c *sessionConfig) {
		c.paper = p
	}
}

// WithView sets the visible canvas area new objects are centred in. By
// default it is the page itself.
func WithView(width, height float64) Option {
	return func(c *sessionConfig) {
		c.view = model.View{Width: width, Height: height}
	}
}

// WithLogger sets the logger for export progress and paint failures.
func WithLogger(l *log.Logger) Option {
	return func(c *sessionConfig) {
		c.logger = l
	}
}

// WithFrameInterval sets the period of the surface's frame loop.
func WithFrameInterval(d time.Duration) Option {
	return func(c *sessionConfig) {
		c.frameInterval = d
	}
}

// WithCaptureScale sets the oversampling factor of captured pages.
func WithCaptureScale(scale float64) Option {
	return func(c *sessionConfig) {
		c.export.Scale = scale
	}
}

// WithTimeouts bounds the wait for a record to settle and one capture
// attempt.
func WithTimeouts(settle, capture time.Duration) Option {
	return func(c *sessionConfig) {
		c.export.SettleTimeout = settle
		c.export.CaptureTimeout = capture
	}
}

// WithRetries sets how often a failed capture is retried before the record
// is skipped.
func WithRetries(n int) Option {
	return func(c *sessionConfig) {
		c.export.Retries = n
	}
}

// WithProgress registers an export progress observer.
func WithProgress(fn export.ProgressFunc) Option {
	return func(c *sessionConfig) {
		c.export.Progress = fn
	}
}

// WithFileName sets the file ExportFile writes when given no path.
func WithFileName(name string) Option {
	return func(c *sessionConfig) {
		c.fileName = name
	}
}

// WithDocumentOptions passes options to every document the session builds.
func WithDocumentOptions(opts ...document.Option) Option {
	return func(c *sessionConfig) {
		c.document = append(c.document, opts...)
	}
}

// WithLetterhead draws page of the PDF at path beneath every exported page.
// Pages are then captured with a transparent background.
func WithLetterhead(path string, page int) Option {
	return func(c *sessionConfig) {
		c.document = append(c.document, document.WithLetterhead(path, page))
		c.transparent = true
	}
}

// WithWatermark stamps text across every exported page.
func WithWatermark(text string) Option {
	return func(c *sessionConfig) {
		c.document = append(c.document, document.WithWatermark(text))
	}
}

func defaultConfig() *sessionConfig {
	return &sessionConfig{
		paper:         model.PaperA4,
		logger:        log.New(io.Discard, "", 0),
		frameInterval: raster.DefaultFrameInterval,
		export:        export.DefaultConfig(),
		fileName:      export.DefaultFileName,
	}
}

// WithTitle sets the title metadata of exported documents.
func WithTitle(title string) Option {
	return func(c *sessionConfig) {
		c.document = append(c.document, document.WithTitle(title), document.WithCreator("reportcanvas"))
	}
}
