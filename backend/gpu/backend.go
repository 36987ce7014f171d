// Package gpu is the GPU surface backend. Pixels live in a storage
// buffer on the device; solid paints run as compute dispatches, and
// reading the surface back stages the buffer through a mapped copy.
//
// The backend is deliberately sparse: operations it has no shader for
// return vg.ErrUnsupported, and callers that need full coverage layer
// it over the image backend (paginated fallback, wrapper surfaces).
// Importing the package registers it as the "gpu" surface type.
package gpu

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vg"
	"github.com/gogpu/vg/surface"
)

func init() {
	surface.Register(surface.BackendGPU, func(content vg.Content, width, height int) (surface.Backend, error) {
		return New(content, width, height)
	})
}

// gpuTimeout bounds every fence wait.
const gpuTimeout = 5 * time.Second

// Backend renders into a device-resident pixel buffer.
type Backend struct {
	ctx     *deviceContext
	pipe    *pipeline
	content vg.Content
	width   int
	height  int

	// pixels is the storage buffer holding width*height packed RGBA
	// words; staging is the map-readable copy target for readback.
	pixels  hal.Buffer
	staging hal.Buffer

	finished bool
}

var (
	_ surface.Backend        = (*Backend)(nil)
	_ surface.Extenter       = (*Backend)(nil)
	_ surface.Painter        = (*Backend)(nil)
	_ surface.SourceImager   = (*Backend)(nil)
	_ surface.SimilarCreator = (*Backend)(nil)
	_ surface.Flusher        = (*Backend)(nil)
	_ vg.SurfaceSource       = (*Backend)(nil)
)

// New creates a GPU backend of the given size, acquiring the shared
// device on first use.
func New(content vg.Content, width, height int) (*Backend, error) {
	if width <= 0 || height <= 0 {
		return nil, vg.ErrInvalidSize
	}
	ctx, err := acquireDevice()
	if err != nil {
		return nil, err
	}
	pipe, err := newPipeline(ctx.device)
	if err != nil {
		return nil, err
	}

	bufSize := uint64(width) * uint64(height) * 4
	b := &Backend{
		ctx:     ctx,
		pipe:    pipe,
		content: content,
		width:   width,
		height:  height,
	}
	b.pixels, err = ctx.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "vg_pixels", Size: bufSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		b.destroyResources()
		return nil, fmt.Errorf("gpu: create pixel buffer: %w", err)
	}
	b.staging, err = ctx.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "vg_staging", Size: bufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		b.destroyResources()
		return nil, fmt.Errorf("gpu: create staging buffer: %w", err)
	}
	// Surfaces start transparent.
	b.ctx.queue.WriteBuffer(b.pixels, 0, make([]byte, bufSize))
	return b, nil
}

func (b *Backend) Content() vg.Content { return b.content }

func (b *Backend) Finish() error {
	b.finished = true
	b.destroyResources()
	return nil
}

func (b *Backend) destroyResources() {
	if b.staging != nil {
		b.ctx.device.DestroyBuffer(b.staging)
		b.staging = nil
	}
	if b.pixels != nil {
		b.ctx.device.DestroyBuffer(b.pixels)
		b.pixels = nil
	}
	if b.pipe != nil {
		b.pipe.destroy(b.ctx.device)
		b.pipe = nil
	}
}

func (b *Backend) Status() error    { return nil }
func (b *Backend) IsFinished() bool { return b.finished }

func (b *Backend) Extents() (image.Rectangle, bool) {
	return image.Rect(0, 0, b.width, b.height), true
}

func (b *Backend) CreateSimilar(content vg.Content, width, height int) (surface.Backend, error) {
	return New(content, width, height)
}

// Flush is a no-op: every paint submits and fences before returning.
func (b *Backend) Flush() error { return nil }

// Paint composites a solid source. Patterns that need per-pixel
// sampling and clips with analytic paths have no shader here and fall
// through to the caller's fallback path.
func (b *Backend) Paint(op vg.Op, source vg.Pattern, clip *vg.Clip) error {
	if b.finished {
		return vg.ErrSurfaceFinished
	}

	var shaderOp uint32
	var c vg.RGBA
	switch op {
	case vg.OpClear:
		shaderOp = shaderOpClear
	case vg.OpSource, vg.OpOver:
		solid, ok := source.(*vg.SolidPattern)
		if !ok {
			return vg.ErrUnsupported
		}
		c = solid.C
		shaderOp = shaderOpSource
		if op == vg.OpOver {
			shaderOp = shaderOpOver
		}
	default:
		return vg.ErrUnsupported
	}
	if p, _ := clip.Path(); p != nil {
		return vg.ErrUnsupported
	}
	if clip.IsEmpty() {
		return vg.ErrNothingToDo
	}

	rects := clip.Rects()
	if rects == nil {
		rects = []image.Rectangle{image.Rect(0, 0, b.width, b.height)}
	}
	for _, r := range rects {
		r = r.Intersect(image.Rect(0, 0, b.width, b.height))
		if r.Empty() {
			continue
		}
		if err := b.dispatchFill(shaderOp, c, r); err != nil {
			return err
		}
	}
	return nil
}

// fillParams packs the shader uniform: premultiplied color, dispatch
// rectangle, buffer dimensions and operator code. Layout matches the
// WGSL Params struct (48 bytes, std140-compatible).
func fillParams(op uint32, c vg.RGBA, r image.Rectangle, w, h int) []byte {
	buf := make([]byte, 48)
	a := c.A
	put := func(off int, v float64) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(v)))
	}
	put(0, c.R*a)
	put(4, c.G*a)
	put(8, c.B*a)
	put(12, a)
	le := binary.LittleEndian
	le.PutUint32(buf[16:], uint32(r.Min.X))
	le.PutUint32(buf[20:], uint32(r.Min.Y))
	le.PutUint32(buf[24:], uint32(r.Max.X))
	le.PutUint32(buf[28:], uint32(r.Max.Y))
	le.PutUint32(buf[32:], uint32(w))
	le.PutUint32(buf[36:], uint32(h))
	le.PutUint32(buf[40:], op)
	return buf
}

// dispatchFill runs one fill pass over r and waits for completion.
func (b *Backend) dispatchFill(op uint32, c vg.RGBA, r image.Rectangle) error {
	device, queue := b.ctx.device, b.ctx.queue
	params := fillParams(op, c, r, b.width, b.height)

	uniform, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "vg_fill_params", Size: uint64(len(params)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create uniform buffer: %w", err)
	}
	defer device.DestroyBuffer(uniform)
	queue.WriteBuffer(uniform, 0, params)

	bufSize := uint64(b.width) * uint64(b.height) * 4
	bind, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "vg_fill_bind",
		Layout: b.pipe.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: uniform.NativeHandle(), Offset: 0, Size: uint64(len(params))}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: b.pixels.NativeHandle(), Offset: 0, Size: bufSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create bind group: %w", err)
	}
	defer device.DestroyBindGroup(bind)

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "vg_fill_encoder"})
	if err != nil {
		return fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("vg_fill"); err != nil {
		return fmt.Errorf("gpu: begin encoding: %w", err)
	}
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "vg_fill_pass"})
	pass.SetPipeline(b.pipe.compute)
	pass.SetBindGroup(0, bind, nil)
	pass.Dispatch(uint32(r.Dx()+7)/8, uint32(r.Dy()+7)/8, 1)
	pass.End()

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmd)

	return b.submitAndWait(cmd)
}

func (b *Backend) submitAndWait(cmd hal.CommandBuffer) error {
	device, queue := b.ctx.device, b.ctx.queue
	fence, err := device.CreateFence()
	if err != nil {
		return fmt.Errorf("gpu: create fence: %w", err)
	}
	defer device.DestroyFence(fence)
	if err := queue.Submit([]hal.CommandBuffer{cmd}, fence, 1); err != nil {
		return fmt.Errorf("gpu: submit: %w", err)
	}
	ok, err := device.Wait(fence, 1, gpuTimeout)
	if err != nil {
		return fmt.Errorf("gpu: wait: %w", err)
	}
	if !ok {
		return fmt.Errorf("gpu: wait: timed out after %v", gpuTimeout)
	}
	return nil
}

// AcquireSourceImage copies the pixel buffer back to the host. The
// returned image is an independent copy; the release func is a no-op.
func (b *Backend) AcquireSourceImage() (*image.RGBA, func(), error) {
	if b.finished {
		return nil, nil, vg.ErrSurfaceFinished
	}
	device, queue := b.ctx.device, b.ctx.queue
	bufSize := uint64(b.width) * uint64(b.height) * 4

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "vg_readback_encoder"})
	if err != nil {
		return nil, nil, fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("vg_readback"); err != nil {
		return nil, nil, fmt.Errorf("gpu: begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(b.pixels, b.staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: bufSize},
	})
	cmd, err := encoder.EndEncoding()
	if err != nil {
		return nil, nil, fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmd)

	if err := b.submitAndWait(cmd); err != nil {
		return nil, nil, err
	}

	data := make([]byte, bufSize)
	if err := queue.ReadBuffer(b.staging, 0, data); err != nil {
		return nil, nil, fmt.Errorf("gpu: readback: %w", err)
	}

	// Packed words are little-endian R|G|B|A, matching image.RGBA's
	// byte order directly.
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	copy(img.Pix, data)
	return img, func() {}, nil
}
