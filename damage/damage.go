// Package damage accumulates the dirty boxes a surface's composite
// operations touch, and reduces them to a pixel region on demand.
//
// Damage follows a builder ("linear handle") discipline: every Add
// method returns the handle the caller must use from then on:
//
//	d = d.AddBox(box)
//	d = d.Reduce()
//
// Failures are sticky on the handle itself; once Err returns non-nil
// every further Add is a no-op.
package damage

import (
	"errors"
	"image"

	"github.com/gogpu/vg/region"
)

// ErrDestroyed is the sticky error of a destroyed accumulator.
var ErrDestroyed = errors.New("damage: destroyed")

// inlineBoxes is the capacity of the chunk embedded in Damage itself.
// The first 32 boxes never touch the heap.
const inlineBoxes = 32

// chunkGranularity rounds up heap chunk sizes.
const chunkGranularity = 64

// chunk is one fixed-capacity box store.
type chunk struct {
	next  *chunk
	count int
	boxes []image.Rectangle
}

// Damage is an append-only accumulation of dirty boxes.
//
// Not safe for concurrent use; a Damage belongs to its surface.
type Damage struct {
	err error

	// reduced holds everything merged by the last Reduce.
	reduced *region.Region

	// dirty counts boxes appended since the last Reduce.
	dirty int

	// remain is the free capacity of the tail chunk.
	remain int

	head   chunk
	tail   *chunk
	inline [inlineBoxes]image.Rectangle
}

// New creates an empty Damage accumulator.
func New() *Damage {
	d := &Damage{}
	d.head.boxes = d.inline[:]
	d.tail = &d.head
	d.remain = inlineBoxes
	return d
}

// Err returns the accumulator's sticky error, if any.
func (d *Damage) Err() error {
	if d == nil {
		return ErrDestroyed
	}
	return d.err
}

// Dirty returns the number of boxes appended since the last Reduce.
func (d *Damage) Dirty() int {
	if d == nil {
		return 0
	}
	return d.dirty
}

// grow makes room for at least count more boxes.
// The new chunk doubles the previous chunk's capacity, or is sized for
// count rounded up to the chunk granularity, whichever is larger.
func (d *Damage) grow(count int) {
	size := 2 * cap(d.tail.boxes)
	need := (count + chunkGranularity - 1) &^ (chunkGranularity - 1)
	if need > size {
		size = need
	}
	c := &chunk{boxes: make([]image.Rectangle, size)}
	d.tail.next = c
	d.tail = c
	d.remain = size
}

// AddBox appends one dirty box. Empty boxes are ignored.
// Callers must use the returned handle.
func (d *Damage) AddBox(box image.Rectangle) *Damage {
	if d == nil || d.err != nil || box.Empty() {
		return d
	}
	if d.remain == 0 {
		d.grow(1)
	}
	d.tail.boxes[d.tail.count] = box
	d.tail.count++
	d.remain--
	d.dirty++
	return d
}

// AddRectangle appends one dirty rectangle.
// Callers must use the returned handle.
func (d *Damage) AddRectangle(r image.Rectangle) *Damage {
	return d.AddBox(r)
}

// AddBoxes appends a batch of dirty boxes.
// Callers must use the returned handle.
func (d *Damage) AddBoxes(boxes []image.Rectangle) *Damage {
	if d == nil || d.err != nil {
		return d
	}
	n := 0
	for _, b := range boxes {
		if !b.Empty() {
			n++
		}
	}
	if n == 0 {
		return d
	}
	// Fill the tail's free slots first; a batch then grows at most
	// once, sized for everything still unplaced.
	left := n
	for _, b := range boxes {
		if b.Empty() {
			continue
		}
		if d.remain == 0 {
			d.grow(left)
		}
		d.tail.boxes[d.tail.count] = b
		d.tail.count++
		d.remain--
		left--
	}
	d.dirty += n
	return d
}

// AddRegion appends every rectangle of a region.
// Callers must use the returned handle.
func (d *Damage) AddRegion(r *region.Region) *Damage {
	return d.AddBoxes(r.Rects())
}

// Reduce merges all accumulated boxes (plus any previously reduced
// region) into a single region. Reduce with no new boxes is a no-op.
// Callers must use the returned handle.
func (d *Damage) Reduce() *Damage {
	if d == nil || d.err != nil || d.dirty == 0 {
		return d
	}
	boxes := make([]image.Rectangle, 0, d.dirty+d.reduced.NumRects())
	boxes = append(boxes, d.reduced.Rects()...)
	for c := &d.head; c != nil; c = c.next {
		boxes = append(boxes, c.boxes[:c.count]...)
	}
	d.reduced = region.FromRects(boxes)

	// Drop the heap chunks and rewind to the inline store.
	d.head.next = nil
	d.head.count = 0
	d.tail = &d.head
	d.remain = inlineBoxes
	d.dirty = 0
	return d
}

// Region returns the reduced dirty region. It reduces first if boxes
// were appended since the last Reduce.
func (d *Damage) Region() *region.Region {
	if d == nil {
		return &region.Region{}
	}
	d = d.Reduce()
	if d.reduced == nil {
		return &region.Region{}
	}
	return d.reduced
}

// Destroy releases the accumulator's storage. Subsequent Adds are
// no-ops. Destroying nil is a no-op.
func (d *Damage) Destroy() {
	if d == nil {
		return
	}
	d.head.next = nil
	d.head.count = 0
	d.tail = &d.head
	d.remain = 0
	d.dirty = 0
	d.reduced = nil
	d.err = ErrDestroyed
}
