//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/fractal"
	"github.com/gogpu/wgpu/hal"
)

// DefaultFenceTimeout bounds the wait for one frame's GPU work.
const DefaultFenceTimeout = 5 * time.Second

// ErrRendererClosed is returned by RenderFrame and Resize after Close.
var ErrRendererClosed = errors.New("gpu: renderer closed")

// RendererConfig selects what the compute kernel evaluates and how the
// pipelines are built.
type RendererConfig struct {
	// TileSize is the workgroup edge. Zero means DefaultTileSize.
	TileSize uint32

	Family fractal.Family
	Julia  fractal.Point

	// PrecompileShaders lowers WGSL to SPIR-V with naga instead of handing
	// the backend WGSL.
	PrecompileShaders bool

	// FenceTimeout is the per-frame GPU wait. Zero means DefaultFenceTimeout.
	FenceTimeout time.Duration
}

// ConfigFrom derives a RendererConfig from the application configuration.
func ConfigFrom(cfg fractal.Config) RendererConfig {
	return RendererConfig{
		TileSize: cfg.TileSize,
		Family:   cfg.Family,
		Julia:    cfg.Julia,
	}
}

// FrameStats counts frames produced by a Renderer.
type FrameStats struct {
	Frames   uint64
	Computes uint64

	// Workgroup counts of the last compute dispatch.
	WorkgroupsX, WorkgroupsY uint32
}

// Renderer is the frame driver. It owns both stages and the resource
// manager, and records each frame as one command buffer: compute pass
// first, then the render pass that samples its output.
//
// Renderer is not safe for concurrent use; drive it from the window's
// event thread.
type Renderer struct {
	dev *Device
	cfg RendererConfig

	compute   *ComputeStage
	present   *PresentStage
	resources *ResourceManager

	stats  FrameStats
	lost   bool
	closed bool
}

// NewRenderer builds the compute and present pipelines on dev. The
// offscreen image is allocated by the first Resize.
func NewRenderer(dev *Device, cfg RendererConfig) (*Renderer, error) {
	if cfg.TileSize == 0 {
		cfg.TileSize = DefaultTileSize
	}
	if cfg.FenceTimeout <= 0 {
		cfg.FenceTimeout = DefaultFenceTimeout
	}

	compute, err := NewComputeStage(dev, cfg.TileSize, cfg.PrecompileShaders)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fractal.ErrResourceAllocationFailed, err)
	}
	present, err := NewPresentStage(dev, cfg.PrecompileShaders)
	if err != nil {
		compute.Destroy()
		return nil, fmt.Errorf("%w: %w", fractal.ErrResourceAllocationFailed, err)
	}

	r := &Renderer{
		dev:     dev,
		cfg:     cfg,
		compute: compute,
		present: present,
	}
	r.resources = newResourceManager(&halAllocator{device: dev.device, compute: compute, present: present})
	slogger().Info("renderer ready",
		"adapter", dev.Name(), "tile", cfg.TileSize, "family", cfg.Family.String(),
		"surface_format", present.Format())
	return r, nil
}

// Resources returns the resource manager.
func (r *Renderer) Resources() *ResourceManager { return r.resources }

// Stats returns the frame counters.
func (r *Renderer) Stats() FrameStats { return r.stats }

// Resize forwards to ResourceManager.OnResize.
func (r *Renderer) Resize(width, height int, view fractal.ViewState) (fractal.ViewState, error) {
	if r.closed {
		return view, ErrRendererClosed
	}
	return r.resources.OnResize(width, height, view)
}

// RenderFrame records and submits one frame onto surface.
//
// With recompute set, the view is uploaded and the compute pass refills the
// offscreen image before it is presented; otherwise the previous image is
// presented again. A freshly allocated image is always computed.
//
// A nil surface returns fractal.ErrSurfaceAcquireFailed. Submission or
// fence failures return fractal.ErrDeviceLost, after which every call fails.
func (r *Renderer) RenderFrame(view fractal.ViewState, surface hal.TextureView, recompute bool) error {
	switch {
	case r.closed:
		return ErrRendererClosed
	case r.lost:
		return fractal.ErrDeviceLost
	case surface == nil:
		return fractal.ErrSurfaceAcquireFailed
	}

	fr, err := r.resources.CurrentBindings(surface)
	if err != nil {
		return err
	}
	defer r.resources.Release(fr)

	if fr.Target.usage == 0 {
		recompute = true
	}
	if recompute {
		r.compute.WriteUniforms(NewUniforms(view, r.cfg.Family, r.cfg.Julia))
	}

	encoder, err := r.dev.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "fractal_frame_encoder"})
	if err != nil {
		return fmt.Errorf("%w: create command encoder: %w", fractal.ErrResourceAllocationFailed, err)
	}
	if err := encoder.BeginEncoding("fractal_frame"); err != nil {
		return fmt.Errorf("%w: begin encoding: %w", fractal.ErrResourceAllocationFailed, err)
	}
	fr.Target.beginRecording()

	var wx, wy uint32
	if recompute {
		wx, wy = r.compute.Record(encoder, fr)
	}
	r.present.Record(encoder, fr)

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("%w: end encoding: %w", fractal.ErrResourceAllocationFailed, err)
	}
	defer r.dev.device.FreeCommandBuffer(cmdBuf)

	if err := r.submit(cmdBuf); err != nil {
		r.lost = true
		slogger().Error("gpu device lost", "err", err)
		return err
	}
	fr.Target.commit()

	r.stats.Frames++
	if recompute {
		r.stats.Computes++
		r.stats.WorkgroupsX, r.stats.WorkgroupsY = wx, wy
		slogger().Debug("frame computed",
			"width", fr.Target.Width, "height", fr.Target.Height,
			"workgroups_x", wx, "workgroups_y", wy, "iterations", view.Iterations)
	}
	return nil
}

// submit queues cmdBuf and blocks until the GPU has finished it.
func (r *Renderer) submit(cmdBuf hal.CommandBuffer) error {
	fence, err := r.dev.device.CreateFence()
	if err != nil {
		return fmt.Errorf("%w: create fence: %w", fractal.ErrDeviceLost, err)
	}
	defer r.dev.device.DestroyFence(fence)

	if err := r.dev.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("%w: submit: %w", fractal.ErrDeviceLost, err)
	}
	fenceOK, err := r.dev.device.Wait(fence, 1, r.cfg.FenceTimeout)
	if err != nil {
		return fmt.Errorf("%w: wait for GPU: %w", fractal.ErrDeviceLost, err)
	}
	if !fenceOK {
		return fmt.Errorf("%w: wait for GPU timed out after %v", fractal.ErrDeviceLost, r.cfg.FenceTimeout)
	}
	return nil
}

// Close releases GPU objects in reverse dependency order: frame bindings,
// the offscreen image, then the present and compute pipelines. The Device
// is left to its owner. Safe to call more than once.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.resources.Close()
	r.present.Destroy()
	r.compute.Destroy()
	slogger().Info("renderer closed", "frames", r.stats.Frames, "computes", r.stats.Computes)
}
