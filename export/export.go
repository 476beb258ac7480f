// Package export drives a painting surface through every record of a
// dataset and collects one captured page per record into a PDF.
//
// The loop is strictly sequential: all iterations share one surface, and a
// record is captured only after the surface reports that a frame showing it
// has been painted. A capture that overruns its timeout is abandoned but
// still awaited before the surface is touched again.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"sync"
	"time"

	"github.com/lvillar/reportcanvas/document"
	"github.com/lvillar/reportcanvas/frame"
)

// DefaultFileName is the name an export is saved under when none is given.
const DefaultFileName = "report.pdf"

// Sentinel errors returned by Exporter.
var (
	ErrNoRecords        = errors.New("export: dataset has no records")
	ErrEmptyPage        = errors.New("export: surface has no area")
	ErrNoPages          = errors.New("export: no page could be captured")
	ErrExportInProgress = errors.New("export: export already in progress")
	ErrSettleTimeout    = errors.New("export: surface did not settle")
)

// Surface is the painting surface an export runs on.
type Surface interface {
	// Bounds measures the page in canvas pixels.
	Bounds() image.Rectangle
	// Present shows record in mode. The channel is closed once the change
	// is visually committed.
	Present(record int, mode frame.Mode) <-chan struct{}
	// Capture rasterises what is currently painted.
	Capture(ctx context.Context, scale float64) (image.Image, error)
}

// ProgressFunc observes the export. It is called with (index+1, total)
// before each record is captured.
type ProgressFunc func(current, total int)

// Config controls an export.
type Config struct {
	// Scale is the capture oversampling factor.
	Scale float64
	// SettleTimeout bounds the wait for a record to be painted.
	SettleTimeout time.Duration
	// CaptureTimeout bounds one capture attempt.
	CaptureTimeout time.Duration
	// Retries is the number of extra capture attempts before a record is
	// skipped.
	Retries int
	// Progress, if set, is called before each capture.
	Progress ProgressFunc
	// Document configures the output document.
	Document []document.Option
}

// DefaultConfig returns the standard export configuration: 2x oversampling
// and one retry per record.
func DefaultConfig() Config {
	return Config{
		Scale:          2,
		SettleTimeout:  5 * time.Second,
		CaptureTimeout: 30 * time.Second,
		Retries:        1,
	}
}

// RecordFailure describes a record that produced no page.
type RecordFailure struct {
	Index int
	Err   error
}

func (f RecordFailure) Error() string {
	return fmt.Sprintf("record %d: %v", f.Index, f.Err)
}

func (f RecordFailure) Unwrap() error { return f.Err }

// Result summarises a finished export.
type Result struct {
	Records  int
	Pages    int
	Width    int
	Height   int
	Failures []RecordFailure
}

// Exporter runs exports on one surface.
type Exporter struct {
	surface Surface
	cfg     Config
	logger  *log.Logger
	running sync.Mutex
	overrun <-chan captured // abandoned capture still in flight
}

// New returns an Exporter for surface. A nil logger discards output.
func New(surface Surface, cfg Config, logger *log.Logger) *Exporter {
	def := DefaultConfig()
	if cfg.Scale <= 0 {
		cfg.Scale = def.Scale
	}
	if cfg.SettleTimeout <= 0 {
		cfg.SettleTimeout = def.SettleTimeout
	}
	if cfg.CaptureTimeout <= 0 {
		cfg.CaptureTimeout = def.CaptureTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Exporter{surface: surface, cfg: cfg, logger: logger}
}

// Export captures records pages and writes the finished PDF to w.
func (e *Exporter) Export(ctx context.Context, records int, w io.Writer) (*Result, error) {
	b, res, err := e.run(ctx, records)
	if err != nil {
		return res, err
	}
	if err := b.Output(w); err != nil {
		return res, fmt.Errorf("export: writing document: %w", err)
	}
	return res, nil
}

// ExportFile is Export saving to path, or to DefaultFileName when path is
// empty.
func (e *Exporter) ExportFile(ctx context.Context, records int, path string) (*Result, error) {
	if path == "" {
		path = DefaultFileName
	}
	b, res, err := e.run(ctx, records)
	if err != nil {
		return res, err
	}
	if err := b.Save(path); err != nil {
		return res, fmt.Errorf("export: saving %s: %w", path, err)
	}
	return res, nil
}

func (e *Exporter) run(ctx context.Context, records int) (*document.Builder, *Result, error) {
	if !e.running.TryLock() {
		return nil, nil, ErrExportInProgress
	}
	defer e.running.Unlock()

	if records <= 0 {
		return nil, nil, ErrNoRecords
	}
	bounds := e.surface.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, nil, ErrEmptyPage
	}
	res := &Result{Records: records, Width: bounds.Dx(), Height: bounds.Dy()}

	// Hand the surface back to the editor whatever happens below.
	defer func() {
		if e.drain(ctx) != nil {
			e.logger.Printf("export: releasing surface with a capture in flight")
		}
		e.surface.Present(0, frame.Edit)
	}()

	b, err := document.New(bounds.Dx(), bounds.Dy(), e.cfg.Document...)
	if err != nil {
		return nil, res, fmt.Errorf("export: %w", err)
	}

	for i := 0; i < records; i++ {
		if err := ctx.Err(); err != nil {
			return nil, res, err
		}
		if e.cfg.Progress != nil {
			e.cfg.Progress(i+1, records)
		}
		e.logger.Printf("export: rendering %d/%d", i+1, records)

		img, err := e.record(ctx, i)
		if err != nil {
			if ctx.Err() != nil {
				return nil, res, ctx.Err()
			}
			e.logger.Printf("export: skipping record %d: %v", i, err)
			res.Failures = append(res.Failures, RecordFailure{Index: i, Err: err})
			continue
		}
		if err := b.AddPage(img); err != nil {
			return nil, res, fmt.Errorf("export: record %d: %w", i, err)
		}
		res.Pages++
	}

	if res.Pages == 0 {
		return nil, res, fmt.Errorf("%w: %d of %d records failed", ErrNoPages, len(res.Failures), records)
	}
	return b, res, nil
}

// record presents record i, waits for it to be painted and captures it,
// retrying the capture up to cfg.Retries times.
func (e *Exporter) record(ctx context.Context, i int) (image.Image, error) {
	if err := e.drain(ctx); err != nil {
		return nil, err
	}
	if err := e.settle(ctx, e.surface.Present(i, frame.Export)); err != nil {
		return nil, err
	}
	var err error
	for attempt := 0; attempt <= e.cfg.Retries; attempt++ {
		var img image.Image
		img, err = e.capture(ctx)
		if err == nil {
			return img, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt < e.cfg.Retries {
			e.logger.Printf("export: capture of record %d failed, retrying: %v", i, err)
		}
	}
	return nil, err
}

func (e *Exporter) settle(ctx context.Context, done <-chan struct{}) error {
	t := time.NewTimer(e.cfg.SettleTimeout)
	defer t.Stop()
	select {
	case <-done:
		return nil
	case <-t.C:
		return ErrSettleTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

type captured struct {
	img image.Image
	err error
}

// capture runs one capture bounded by cfg.CaptureTimeout. A capture that
// overruns is abandoned; its result is discarded.
func (e *Exporter) capture(ctx context.Context) (image.Image, error) {
	if err := e.drain(ctx); err != nil {
		return nil, err
	}
	cctx, cancel := context.WithTimeout(ctx, e.cfg.CaptureTimeout)
	defer cancel()

	ch := make(chan captured, 1)
	go func() {
		img, err := e.surface.Capture(cctx, e.cfg.Scale)
		ch <- captured{img, err}
	}()
	select {
	case c := <-ch:
		return c.img, c.err
	case <-cctx.Done():
		e.overrun = ch
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("export: capture timed out after %v", e.cfg.CaptureTimeout)
	}
}

// drain waits for an abandoned capture to return.
func (e *Exporter) drain(ctx context.Context) error {
	if e.overrun == nil {
		return nil
	}
	select {
	case <-e.overrun:
		e.overrun = nil
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
