package raster

import (
	"context"
	"errors"
	"image"
	"io"
	"log"
	"math"
	"sync"
	"time"

	"github.com/lvillar/reportcanvas/frame"
)

// DefaultFrameInterval is the time between frame boundaries of Run.
const DefaultFrameInterval = 16 * time.Millisecond

// Sentinel errors returned by Surface.
var (
	ErrNotPainted = errors.New("raster: surface has not painted a frame yet")
	ErrClaimed    = errors.New("raster: surface is claimed")
)

// SceneFunc resolves the scene shown for record in mode. It is called on the
// frame loop when a presented state is committed.
type SceneFunc func(record int, mode frame.Mode) frame.Scene

// view is the presentation state a caller asked for.
type view struct {
	record int
	mode   frame.Mode
}

type waiter struct {
	gen  uint64
	done chan struct{}
}

// Surface is the painting surface of an editing session. It models a
// display refreshed at frame boundaries:
//
//   - Present records a state change and returns a channel.
//   - The first frame boundary after the change commits it: the scene is
//     resolved from the current template.
//   - The next boundary paints the committed scene and closes the channel.
//
// A closed channel therefore guarantees that Capture sees the presented
// state and never the one before it.
//
// An export takes the surface over with Claim. Until the claim is released
// only the claim presents; the editor's requests are held back and shown
// when the claim ends.
type Surface struct {
	source   SceneFunc
	painter  *Painter
	interval time.Duration
	logger   *log.Logger

	mu        sync.Mutex
	requested view
	reqGen    uint64
	committed frame.Scene
	commitGen uint64
	painted   frame.Scene
	paintGen  uint64
	image     image.Image
	waiters   []waiter

	claim *Claim
	edit  view            // editor's view while claimed
	held  []chan struct{} // editor waiters while claimed
}

// SurfaceOption configures a Surface.
type SurfaceOption func(*Surface)

// WithFrameInterval sets the tick period used by Run.
func WithFrameInterval(d time.Duration) SurfaceOption {
	return func(s *Surface) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithPainter replaces the default painter.
func WithPainter(p *Painter) SurfaceOption {
	return func(s *Surface) {
		if p != nil {
			s.painter = p
		}
	}
}

// WithSurfaceLogger sets the logger for paint failures.
func WithSurfaceLogger(l *log.Logger) SurfaceOption {
	return func(s *Surface) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSurface returns a surface showing record 0 in Edit mode. Nothing is
// painted until the frame loop runs.
func NewSurface(source SceneFunc, opts ...SurfaceOption) *Surface {
	s := &Surface{
		source:   source,
		painter:  NewPainter(),
		interval: DefaultFrameInterval,
		logger:   log.New(io.Discard, "", 0),
		reqGen:   1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bounds measures the page the surface currently shows, in canvas pixels.
func (s *Surface) Bounds() image.Rectangle {
	s.mu.Lock()
	v := s.requested
	s.mu.Unlock()
	scene := s.source(v.record, v.mode)
	return image.Rect(0, 0, int(math.Round(scene.Width)), int(math.Round(scene.Height)))
}

// Record returns the record most recently presented.
func (s *Surface) Record() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requested.record
}

// Present asks the surface to show record in mode. The returned channel is
// closed once a frame reflecting this request has been painted. While the
// surface is claimed the request is held until the claim is released.
func (s *Surface) Present(record int, mode frame.Mode) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := view{record: record, mode: mode}
	if s.claim != nil {
		s.edit = v
		done := make(chan struct{})
		s.held = append(s.held, done)
		return done
	}
	return s.present(v)
}

// present queues v as the next state. s.mu must be held.
func (s *Surface) present(v view) <-chan struct{} {
	s.reqGen++
	s.requested = v
	w := waiter{gen: s.reqGen, done: make(chan struct{})}
	s.waiters = append(s.waiters, w)
	return w.done
}

// Invalidate repaints the current view, e.g. after the template changed.
// It does nothing while the surface is claimed: releasing the claim
// repaints the editor's view anyway.
func (s *Surface) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claim == nil {
		s.present(s.requested)
	}
}

// Claim takes exclusive control of the presented state. It fails with
// ErrClaimed while another claim is held.
func (s *Surface) Claim() (*Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claim != nil {
		return nil, ErrClaimed
	}
	c := &Claim{s: s}
	s.claim = c
	s.edit = s.requested
	return c, nil
}

// Claim is exclusive use of a Surface, as held by an export.
type Claim struct {
	s *Surface
}

// Bounds measures the page the surface currently shows.
func (c *Claim) Bounds() image.Rectangle { return c.s.Bounds() }

// Present shows record in mode. After Release it is a no-op whose channel
// is already closed.
func (c *Claim) Present(record int, mode frame.Mode) <-chan struct{} {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claim != c {
		done := make(chan struct{})
		close(done)
		return done
	}
	return s.present(view{record: record, mode: mode})
}

// Capture rasterises the last painted scene.
func (c *Claim) Capture(ctx context.Context, scale float64) (image.Image, error) {
	return c.s.Capture(ctx, scale)
}

// Release hands the surface back to the editor and presents the editor's
// latest view. Waiters held during the claim settle with it.
func (c *Claim) Release() {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claim != c {
		return
	}
	s.claim = nil
	s.present(s.edit)
	for _, done := range s.held {
		s.waiters = append(s.waiters, waiter{gen: s.reqGen, done: done})
	}
	s.held = nil
}

// Tick is one frame boundary. It either commits the pending request or
// paints the committed scene; never both.
func (s *Surface) Tick() {
	s.mu.Lock()
	if s.commitGen < s.reqGen {
		v, gen := s.requested, s.reqGen
		s.mu.Unlock()
		scene := s.source(v.record, v.mode)
		s.mu.Lock()
		if gen > s.commitGen {
			s.committed = scene
			s.commitGen = gen
		}
		s.mu.Unlock()
		return
	}
	if s.paintGen >= s.commitGen {
		s.mu.Unlock()
		return
	}
	scene, gen := s.committed, s.commitGen
	s.mu.Unlock()

	img, err := s.painter.Paint(scene, 1)
	if err != nil {
		s.logger.Printf("raster: painting record %d: %v", scene.Record, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen <= s.paintGen {
		return
	}
	s.painted = scene
	s.paintGen = gen
	s.image = img
	pending := s.waiters[:0]
	for _, w := range s.waiters {
		if w.gen <= gen {
			close(w.done)
			continue
		}
		pending = append(pending, w)
	}
	s.waiters = pending
}

// Run ticks the frame loop until ctx is done.
func (s *Surface) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Tick()
		}
	}
}

// Scene returns the last painted scene.
func (s *Surface) Scene() (frame.Scene, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.painted, s.paintGen > 0
}

// Frame returns the last painted preview image, or nil.
func (s *Surface) Frame() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image
}

// Capture rasterises the last painted scene at scale device pixels per
// canvas pixel.
func (s *Surface) Capture(ctx context.Context, scale float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scene, ok := s.Scene()
	if !ok {
		return nil, ErrNotPainted
	}
	return s.painter.PaintContext(ctx, scene, scale)
}
