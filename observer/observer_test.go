package observer

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/gogpu/vg"
	"github.com/gogpu/vg/surface"
)

type countBackend struct {
	paints   int
	fills    int
	flushes  int
	failWith error
}

func (b *countBackend) Content() vg.Content { return vg.ContentColorAlpha }
func (b *countBackend) Finish() error       { return nil }
func (b *countBackend) Extents() (image.Rectangle, bool) {
	return image.Rect(0, 0, 50, 50), true
}
func (b *countBackend) Flush() error { b.flushes++; return nil }

func (b *countBackend) Paint(op vg.Op, source vg.Pattern, clip *vg.Clip) error {
	b.paints++
	return b.failWith
}

func (b *countBackend) Fill(op vg.Op, source vg.Pattern, path *vg.Path, rule vg.FillRule, tolerance float64, clip *vg.Clip) error {
	b.fills++
	return b.failWith
}

func solid() vg.Pattern { return vg.NewSolidPattern(vg.RGBA{A: 1}) }

func TestObserverCountsAndForwards(t *testing.T) {
	cb := &countBackend{}
	target := surface.NewFromBackend(cb)
	obs := New(target)
	b := FromSurface(obs)

	if err := obs.Paint(vg.OpOver, solid(), nil); err != nil {
		t.Fatalf("Paint: %v", err)
	}
	path := &vg.Path{}
	path.Rectangle(1, 1, 5, 5)
	if err := obs.Fill(vg.OpOver, solid(), path, vg.FillRuleNonZero, vg.DefaultTolerance, nil); err != nil {
		t.Fatalf("Fill: %v", err)
	}

	if cb.paints != 1 || cb.fills != 1 {
		t.Fatalf("target saw paints=%d fills=%d, want 1 and 1", cb.paints, cb.fills)
	}
	st := b.Stats()
	if st.Paint.Count != 1 || st.Fill.Count != 1 {
		t.Fatalf("stats paint=%d fill=%d, want 1 and 1", st.Paint.Count, st.Fill.Count)
	}
	n, _ := st.Total()
	if n != 2 {
		t.Fatalf("total ops = %d, want 2", n)
	}
}

func TestObserverFlushesInsideMeasurement(t *testing.T) {
	cb := &countBackend{}
	target := surface.NewFromBackend(cb)
	obs := New(target)

	if err := obs.Paint(vg.OpOver, solid(), nil); err != nil {
		t.Fatalf("Paint: %v", err)
	}
	if cb.flushes != 1 {
		t.Fatalf("target flushed %d times, want 1 (sync after op)", cb.flushes)
	}
}

func TestObserverRecordsErrors(t *testing.T) {
	cb := &countBackend{failWith: errors.New("boom")}
	target := surface.NewFromBackend(cb)
	obs := New(target)
	b := FromSurface(obs)

	if err := obs.Paint(vg.OpOver, solid(), nil); err == nil {
		t.Fatal("Paint error did not propagate through the observer")
	}
	if b.Stats().Paint.Errors != 1 {
		t.Fatalf("error count = %d, want 1", b.Stats().Paint.Errors)
	}
}

func TestObserverCallbacks(t *testing.T) {
	cb := &countBackend{}
	target := surface.NewFromBackend(cb)
	obs := New(target)
	b := FromSurface(obs)

	var seen []OpKind
	b.AddCallback(func(kind OpKind, elapsed time.Duration, err error) {
		seen = append(seen, kind)
		if elapsed < 0 {
			t.Errorf("negative elapsed time %v", elapsed)
		}
	})
	_ = obs.Paint(vg.OpOver, solid(), nil)
	if len(seen) != 1 || seen[0] != KindPaint {
		t.Fatalf("callbacks saw %v, want [paint]", seen)
	}
}

func TestObserverReset(t *testing.T) {
	cb := &countBackend{}
	target := surface.NewFromBackend(cb)
	obs := New(target)
	b := FromSurface(obs)

	_ = obs.Paint(vg.OpOver, solid(), nil)
	b.Reset()
	if n, _ := b.Stats().Total(); n != 0 {
		t.Fatalf("total after reset = %d, want 0", n)
	}
}
