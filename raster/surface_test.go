package raster_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lvillar/reportcanvas/frame"
	"github.com/lvillar/reportcanvas/raster"
)

// source records which states were committed.
type source struct {
	mu      sync.Mutex
	commits []int
}

func (s *source) scene(record int, mode frame.Mode) frame.Scene {
	s.mu.Lock()
	s.commits = append(s.commits, record)
	s.mu.Unlock()
	return frame.Scene{Width: 20, Height: 10, Record: record, Mode: mode}
}

func closed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestSurfaceSettlesAfterCommitAndPaint(t *testing.T) {
	src := &source{}
	s := raster.NewSurface(src.scene)

	done := s.Present(3, frame.Export)
	if closed(done) {
		t.Fatal("settled before any frame")
	}
	s.Tick() // commit
	if closed(done) {
		t.Fatal("settled after commit only")
	}
	if _, ok := s.Scene(); ok {
		t.Fatal("painted scene exposed before paint")
	}
	s.Tick() // paint
	if !closed(done) {
		t.Fatal("not settled after paint")
	}
	scene, ok := s.Scene()
	if !ok || scene.Record != 3 || scene.Mode != frame.Export {
		t.Errorf("painted scene = %+v, %v", scene, ok)
	}
	if s.Frame() == nil {
		t.Error("no preview frame after paint")
	}
}

func TestSurfaceNeverCapturesStaleRecord(t *testing.T) {
	src := &source{}
	s := raster.NewSurface(src.scene)

	first := s.Present(0, frame.Export)
	s.Tick()
	s.Tick()
	if !closed(first) {
		t.Fatal("record 0 not settled")
	}

	next := s.Present(1, frame.Export)
	s.Tick()
	if closed(next) {
		t.Fatal("record 1 settled before it was painted")
	}
	if scene, _ := s.Scene(); scene.Record != 0 {
		t.Fatalf("painted record = %d before paint, want 0", scene.Record)
	}
	s.Tick()
	if !closed(next) {
		t.Fatal("record 1 not settled")
	}
	if scene, _ := s.Scene(); scene.Record != 1 {
		t.Errorf("painted record = %d, want 1", scene.Record)
	}
}

func TestSurfaceSupersededRequest(t *testing.T) {
	src := &source{}
	s := raster.NewSurface(src.scene)

	a := s.Present(1, frame.Export)
	s.Tick() // commits 1
	b := s.Present(2, frame.Export)
	s.Tick() // commits 2 instead of painting 1
	if closed(a) || closed(b) {
		t.Fatal("settled without a paint")
	}
	s.Tick()
	if !closed(a) || !closed(b) {
		t.Fatal("paint of the newer request must release older waiters")
	}
	if scene, _ := s.Scene(); scene.Record != 2 {
		t.Errorf("painted record = %d, want 2", scene.Record)
	}
}

func TestSurfaceCapture(t *testing.T) {
	s := raster.NewSurface((&source{}).scene)
	ctx := context.Background()

	if _, err := s.Capture(ctx, 2); !errors.Is(err, raster.ErrNotPainted) {
		t.Fatalf("capture before paint err = %v", err)
	}
	s.Tick()
	s.Tick()
	img, err := s.Capture(ctx, 2)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Errorf("capture bounds = %v, want 40x20", b)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := s.Capture(cctx, 2); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled capture err = %v", err)
	}
}

func TestSurfaceBounds(t *testing.T) {
	s := raster.NewSurface((&source{}).scene)
	if b := s.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Errorf("bounds = %v", b)
	}
}

func TestSurfaceRun(t *testing.T) {
	s := raster.NewSurface((&source{}).scene, raster.WithFrameInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	select {
	case <-s.Present(5, frame.Edit):
	case <-time.After(5 * time.Second):
		t.Fatal("frame loop never settled")
	}
	if s.Record() != 5 {
		t.Errorf("record = %d", s.Record())
	}
}

func TestSurfaceClaimHoldsEditorRequests(t *testing.T) {
	s := raster.NewSurface((&source{}).scene)

	c, err := s.Claim()
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if _, err := s.Claim(); !errors.Is(err, raster.ErrClaimed) {
		t.Fatalf("second Claim err = %v", err)
	}

	mine := c.Present(1, frame.Export)
	edit := s.Present(7, frame.Edit)
	s.Invalidate()
	s.Tick()
	s.Tick()
	if !closed(mine) {
		t.Fatal("claimed request not settled")
	}
	if closed(edit) {
		t.Fatal("editor request settled while claimed")
	}
	if scene, _ := s.Scene(); scene.Record != 1 || scene.Mode != frame.Export {
		t.Fatalf("painted %d/%v, want 1/export", scene.Record, scene.Mode)
	}

	c.Release()
	if !closed(c.Present(2, frame.Export)) {
		t.Error("Present after Release must not block")
	}
	s.Tick()
	s.Tick()
	if !closed(edit) {
		t.Fatal("editor request not settled after Release")
	}
	if scene, _ := s.Scene(); scene.Record != 7 || scene.Mode != frame.Edit {
		t.Errorf("painted %d/%v, want 7/edit", scene.Record, scene.Mode)
	}
	if _, err := s.Claim(); err != nil {
		t.Errorf("Claim after Release: %v", err)
	}
}

func TestSurfaceClaimIgnoresConcurrentEditors(t *testing.T) {
	s := raster.NewSurface((&source{}).scene, raster.WithFrameInterval(50*time.Microsecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	c, err := s.Claim()
	if err != nil {
		t.Fatal(err)
	}
	defer c.Release()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			s.Invalidate()
			s.Present(i%5, frame.Edit)
		}
	}()
	defer func() {
		close(stop)
		wg.Wait()
	}()

	for i := 0; i < 300; i++ {
		select {
		case <-c.Present(i, frame.Export):
		case <-time.After(5 * time.Second):
			t.Fatalf("record %d never settled", i)
		}
		scene, _ := s.Scene()
		if scene.Record != i || scene.Mode != frame.Export {
			t.Fatalf("settled for record %d but painted %d/%v", i, scene.Record, scene.Mode)
		}
	}
}
