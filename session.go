// Package reportcanvas is an editing session for data-driven report
// templates. A template is a page of positioned canvas objects; some of them
// are bound to columns of a tabular dataset. Exporting renders the template
// once per dataset record and collects the pages into a single PDF.
//
// Example:
//
//	s := reportcanvas.New(reportcanvas.WithPaper(model.PaperA4))
//	if err := s.LoadSpreadsheet("scores.xlsx"); err != nil {
//	    return err
//	}
//	s.AddMappedText("Name")
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	go s.Start(ctx)
//	res, err := s.ExportFile(ctx, "")
package reportcanvas

import (
	"bytes"
	"context"
	"image"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/lvillar/reportcanvas/export"
	"github.com/lvillar/reportcanvas/frame"
	"github.com/lvillar/reportcanvas/ingest"
	"github.com/lvillar/reportcanvas/model"
	"github.com/lvillar/reportcanvas/raster"
	"github.com/lvillar/reportcanvas/store"
)

// Session is one editing session: a template, the dataset it is bound to,
// the record being previewed and the surface everything is painted on.
// A Session is safe for concurrent use.
type Session struct {
	cfg       *sessionConfig
	logger    *log.Logger
	store     *store.Store
	painter   *raster.Painter
	surface   *raster.Surface
	exportCfg export.Config

	dataset atomic.Pointer[model.Dataset]

	mu     sync.Mutex // guards record
	record int

	loopMu   sync.Mutex
	loopDone chan struct{} // closed when the running frame loop stops
}

// New returns a session with an empty template and no dataset.
func New(opts ...Option) *Session {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard, "", 0)
	}

	s := &Session{cfg: cfg, logger: cfg.logger, store: store.New(cfg.paper)}
	s.dataset.Store(&model.Dataset{})

	var popts []raster.PainterOption
	if cfg.transparent {
		popts = append(popts, raster.WithTransparentPage())
	}
	s.painter = raster.NewPainter(popts...)
	s.surface = raster.NewSurface(s.resolve,
		raster.WithPainter(s.painter),
		raster.WithFrameInterval(cfg.frameInterval),
		raster.WithSurfaceLogger(cfg.logger),
	)

	s.exportCfg = cfg.export
	s.exportCfg.Document = append(s.exportCfg.Document, cfg.document...)
	return s
}

// resolve is the surface's scene source.
func (s *Session) resolve(record int, mode frame.Mode) frame.Scene {
	return frame.Render(s.store.Template(), *s.dataset.Load(), record, mode, s.store.Selected())
}

// Start runs the frame loop until ctx is done. If an export is driving its
// own loop, Start takes over once that loop stops.
func (s *Session) Start(ctx context.Context) {
	for {
		busy := s.acquireLoop()
		if busy == nil {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-busy:
		}
	}
	defer s.releaseLoop()
	s.surface.Run(ctx)
}

// acquireLoop marks a frame loop as running. If one already runs it returns
// a channel closed when that loop stops.
func (s *Session) acquireLoop() <-chan struct{} {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()
	if s.loopDone != nil {
		return s.loopDone
	}
	s.loopDone = make(chan struct{})
	return nil
}

func (s *Session) releaseLoop() {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()
	close(s.loopDone)
	s.loopDone = nil
}

// view is the area new objects are centred in.
func (s *Session) view() model.View {
	if s.cfg.view.Width > 0 && s.cfg.view.Height > 0 {
		return s.cfg.view
	}
	w, h := s.store.Paper().SizePx()
	return model.View{Width: w, Height: h}
}

func (s *Session) add(op string, obj model.Object) (string, error) {
	id, err := s.store.Add(obj)
	if err != nil {
		return "", wrap(op, err)
	}
	s.surface.Invalidate()
	return id, nil
}

// AddText places a static text label. An empty text uses a placeholder.
func (s *Session) AddText(text string) (string, error) {
	return s.add("AddText", model.NewText(s.view(), text))
}

// AddMappedText places a text showing the current record's value of column.
func (s *Session) AddMappedText(column string) (string, error) {
	return s.add("AddMappedText", model.NewMappedText(s.view(), column))
}

// AddShape places a rectangle or circle.
func (s *Session) AddShape(kind model.ShapeKind) (string, error) {
	obj, err := model.NewShape(s.view(), kind)
	if err != nil {
		return "", wrap("AddShape", err)
	}
	return s.add("AddShape", obj)
}

// AddImage places an encoded image of the given size in canvas pixels. A
// zero size uses the image's own dimensions.
func (s *Session) AddImage(data []byte, width, height float64) (string, error) {
	if width <= 0 || height <= 0 {
		if c, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			width, height = float64(c.Width), float64(c.Height)
		}
	}
	obj, err := model.NewImage(s.view(), data, width, height)
	if err != nil {
		return "", wrap("AddImage", err)
	}
	return s.add("AddImage", obj)
}

// AddChart places a chart over the evaluation items named in labels, in that
// order. A nil labels uses every item. Empty colours select the defaults.
func (s *Session) AddChart(kind model.ChartKind, labels []string, actual, average model.Color) (string, error) {
	cfg := model.NewChartConfig(s.store.Items(), labels, actual, average)
	obj, err := model.NewChart(s.view(), kind, cfg)
	if err != nil {
		return "", wrap("AddChart", err)
	}
	return s.add("AddChart", obj)
}

// AddBarcode places a barcode encoding the current record's value of column.
func (s *Session) AddBarcode(column string, sym model.Symbology) (string, error) {
	obj, err := model.NewBarcode(s.view(), column, sym)
	if err != nil {
		return "", wrap("AddBarcode", err)
	}
	return s.add("AddBarcode", obj)
}

// Update sets one field of the object with id. An unknown id is a no-op.
func (s *Session) Update(id string, field model.Field, value any) error {
	if _, err := s.store.Update(id, field, value); err != nil {
		return wrap("Update", err)
	}
	s.surface.Invalidate()
	return nil
}

// Remove deletes the object with id. An unknown id is a no-op.
func (s *Session) Remove(id string) error {
	if _, err := s.store.Remove(id); err != nil {
		return wrap("Remove", err)
	}
	s.surface.Invalidate()
	return nil
}

// Select marks id as selected; an empty id clears the selection.
func (s *Session) Select(id string) error {
	if err := s.store.Select(id); err != nil {
		return wrap("Select", err)
	}
	s.surface.Invalidate()
	return nil
}

// Selected returns the selected object id, or "".
func (s *Session) Selected() string { return s.store.Selected() }

// SetPaper changes the page format.
func (s *Session) SetPaper(p model.Paper) error {
	if _, err := model.ParsePaper(string(p)); err != nil {
		return wrap("SetPaper", err)
	}
	if err := s.store.SetPaper(p); err != nil {
		return wrap("SetPaper", err)
	}
	s.surface.Invalidate()
	return nil
}

// SetEvaluationItems replaces the items charts are configured from. Charts
// already placed keep their own copy.
func (s *Session) SetEvaluationItems(items []model.EvaluationItem) error {
	return wrap("SetEvaluationItems", s.store.SetItems(items))
}

// Template returns the current template.
func (s *Session) Template() model.Template { return s.store.Template() }

// Objects returns the objects of the template in paint order.
func (s *Session) Objects() []model.Object { return s.store.Snapshot().Objects() }

// Dataset returns the loaded dataset.
func (s *Session) Dataset() model.Dataset { return *s.dataset.Load() }

// LoadDataset binds ds to the template and shows its first record.
func (s *Session) LoadDataset(ds model.Dataset) error {
	ds.Columns = append([]string(nil), ds.Columns...)
	rows := make([][]string, len(ds.Rows))
	for i, r := range ds.Rows {
		rows[i] = append([]string(nil), r...)
	}
	ds.Rows = rows
	if err := s.store.Guard(func() { s.dataset.Store(&ds) }); err != nil {
		return wrap("LoadDataset", err)
	}
	s.logger.Printf("reportcanvas: loaded %d records, columns %v", ds.Len(), ds.Columns)
	s.ShowRecord(0)
	return nil
}

// LoadSpreadsheet loads the first sheet of the workbook at path.
func (s *Session) LoadSpreadsheet(path string) error {
	ds, err := ingest.ReadFile(path)
	if err != nil {
		return wrap("LoadSpreadsheet", err)
	}
	return s.LoadDataset(*ds)
}

// ReadSpreadsheet loads the first sheet of a workbook streamed from r.
func (s *Session) ReadSpreadsheet(r io.Reader) error {
	ds, err := ingest.Read(r)
	if err != nil {
		return wrap("ReadSpreadsheet", err)
	}
	return s.LoadDataset(*ds)
}

// Record returns the index of the previewed record.
func (s *Session) Record() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// ShowRecord previews record i, clamped to the dataset, and returns the
// index actually shown. During an export the preview follows once the
// export has finished.
func (s *Session) ShowRecord(i int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.dataset.Load().Len()
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	s.record = i
	s.surface.Present(i, frame.Edit)
	return i
}

// Next previews the following record.
func (s *Session) Next() int { return s.ShowRecord(s.Record() + 1) }

// Prev previews the preceding record.
func (s *Session) Prev() int { return s.ShowRecord(s.Record() - 1) }

// Scene resolves the previewed record in Edit mode.
func (s *Session) Scene() frame.Scene {
	return s.resolve(s.Record(), frame.Edit)
}

// Preview paints the previewed record at scale.
func (s *Session) Preview(scale float64) (image.Image, error) {
	img, err := s.painter.Paint(s.Scene(), scale)
	return img, wrap("Preview", err)
}

// Export renders every record and writes the PDF to w. Template edits are
// rejected while it runs.
func (s *Session) Export(ctx context.Context, w io.Writer) (*export.Result, error) {
	return s.export(ctx, "Export", func(e *export.Exporter, n int) (*export.Result, error) {
		return e.Export(ctx, n, w)
	})
}

// ExportFile is Export saving to path, or to the configured file name when
// path is empty.
func (s *Session) ExportFile(ctx context.Context, path string) (*export.Result, error) {
	if path == "" {
		path = s.cfg.fileName
	}
	return s.export(ctx, "ExportFile", func(e *export.Exporter, n int) (*export.Result, error) {
		return e.ExportFile(ctx, n, path)
	})
}

func (s *Session) export(ctx context.Context, op string, run func(e *export.Exporter, records int) (*export.Result, error)) (*export.Result, error) {
	if err := s.store.Lock(); err != nil {
		return nil, wrap(op, err)
	}
	defer s.store.Unlock()

	n := s.dataset.Load().Len()
	if n == 0 {
		return nil, wrap(op, ErrNoRecords)
	}

	claim, err := s.surface.Claim()
	if err != nil {
		return nil, wrap(op, err)
	}
	// Releasing repaints whatever the editor asked for meanwhile.
	defer claim.Release()

	// Without a running frame loop nothing would ever settle.
	if s.acquireLoop() == nil {
		loopCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			s.surface.Run(loopCtx)
		}()
		defer func() {
			cancel()
			<-done
			s.releaseLoop()
		}()
	}

	res, err := run(export.New(claim, s.exportCfg, s.logger), n)
	if err != nil {
		return res, wrap(op, err)
	}
	s.logger.Printf("reportcanvas: exported %d of %d records", res.Pages, res.Records)
	return res, nil
}
