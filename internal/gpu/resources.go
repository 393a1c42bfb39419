//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/fractal"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// offscreenFormat is the storage format the compute kernel writes.
const offscreenFormat = gputypes.TextureFormatRGBA8Unorm

// Target is the offscreen image: written by the compute stage as a storage
// texture, sampled by the present stage.
type Target struct {
	Width, Height uint32

	Texture hal.Texture
	View    hal.TextureView

	// usage is the layout left by the last submitted pass. recorded is the
	// layout at the end of the encoder being recorded; it becomes usage
	// only once that encoder has been submitted.
	usage    gputypes.TextureUsage
	recorded gputypes.TextureUsage
}

// beginRecording starts layout tracking for a new encoder from the last
// submitted state, dropping whatever an abandoned encoder recorded.
func (t *Target) beginRecording() { t.recorded = t.usage }

// commit makes the recorded layout current after a successful submit.
func (t *Target) commit() { t.usage = t.recorded }

// barrier returns the transition from the recorded usage to next and
// records next. A zero usage means the texture has not been touched since
// creation. ok is false when t is already in next.
func (t *Target) barrier(next gputypes.TextureUsage) (b hal.TextureBarrier, ok bool) {
	if t.recorded == next {
		return hal.TextureBarrier{}, false
	}
	b = hal.TextureBarrier{
		Texture: t.Texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: t.recorded,
			NewUsage: next,
		},
	}
	t.recorded = next
	return b, true
}

// FrameResources are the bind groups of one frame. They reference the
// target current when they were built and must not outlive the frame.
type FrameResources struct {
	Target  *Target
	Surface hal.TextureView
	Compute hal.BindGroup
	Present hal.BindGroup
}

// allocator creates and destroys the objects the ResourceManager owns.
// halAllocator is the production implementation; tests inject failures.
type allocator interface {
	createTarget(width, height uint32) (*Target, error)
	destroyTarget(t *Target)
	createComputeBindings(t *Target) (hal.BindGroup, error)
	createPresentBindings(t *Target) (hal.BindGroup, error)
	destroyBindGroup(bg hal.BindGroup)
}

// ResourceManager is the sole owner of the size-dependent offscreen image.
//
// Replacement on resize is build-new, swap, drop-old: consumers never see a
// mix of pre- and post-resize objects, and on allocation failure the prior
// image stays installed.
type ResourceManager struct {
	alloc  allocator
	target *Target

	// frame is the FrameResources handed out by CurrentBindings and not
	// yet released.
	frame *FrameResources
}

func newResourceManager(alloc allocator) *ResourceManager {
	return &ResourceManager{alloc: alloc}
}

// Size returns the current offscreen image dimensions, or 0, 0 before the
// first successful resize.
func (m *ResourceManager) Size() (width, height int) {
	if m.target == nil {
		return 0, 0
	}
	return int(m.target.Width), int(m.target.Height)
}

// Target returns the installed offscreen image, or nil.
func (m *ResourceManager) Target() *Target { return m.target }

// OnResize installs an offscreen image of the new size and returns view
// with Extent.Y refitted to the new aspect ratio.
//
// Resizing to the current size reallocates nothing. If allocation fails the
// previous image and view stay in place and the error wraps
// fractal.ErrResourceAllocationFailed.
func (m *ResourceManager) OnResize(width, height int, view fractal.ViewState) (fractal.ViewState, error) {
	if width <= 0 || height <= 0 {
		return view, fmt.Errorf("%w: resize to %dx%d", fractal.ErrInvalidSize, width, height)
	}
	if w, h := m.Size(); w == width && h == height {
		return view.FitAspect(width, height), nil
	}

	next, err := m.alloc.createTarget(uint32(width), uint32(height)) //nolint:gosec // checked positive above
	if err != nil {
		return view, fmt.Errorf("%w: offscreen image %dx%d: %w", fractal.ErrResourceAllocationFailed, width, height, err)
	}

	prev := m.target
	m.target = next
	if prev != nil {
		// Frames wait on their fence before returning, so nothing in
		// flight still references prev.
		m.alloc.destroyTarget(prev)
	}
	slogger().Debug("offscreen image replaced", "width", width, "height", height)
	return view.FitAspect(width, height), nil
}

// CurrentBindings builds the bind groups for one frame from the current
// offscreen image. Call it fresh every frame and hand the result back to
// Release once the frame has been submitted and waited on. A nil surface
// builds the compute bindings only, for offscreen snapshots.
func (m *ResourceManager) CurrentBindings(surface hal.TextureView) (*FrameResources, error) {
	if m.target == nil {
		return nil, fmt.Errorf("%w: no offscreen image, resize first", fractal.ErrInvalidSize)
	}
	if m.frame != nil {
		m.Release(m.frame)
	}

	compute, err := m.alloc.createComputeBindings(m.target)
	if err != nil {
		return nil, fmt.Errorf("%w: compute bindings: %w", fractal.ErrResourceAllocationFailed, err)
	}
	var present hal.BindGroup
	if surface != nil {
		present, err = m.alloc.createPresentBindings(m.target)
		if err != nil {
			m.alloc.destroyBindGroup(compute)
			return nil, fmt.Errorf("%w: present bindings: %w", fractal.ErrResourceAllocationFailed, err)
		}
	}

	m.frame = &FrameResources{
		Target:  m.target,
		Surface: surface,
		Compute: compute,
		Present: present,
	}
	return m.frame, nil
}

// Release destroys a frame's bind groups, present bindings first.
func (m *ResourceManager) Release(fr *FrameResources) {
	if fr == nil {
		return
	}
	if fr.Present != nil {
		m.alloc.destroyBindGroup(fr.Present)
		fr.Present = nil
	}
	if fr.Compute != nil {
		m.alloc.destroyBindGroup(fr.Compute)
		fr.Compute = nil
	}
	if m.frame == fr {
		m.frame = nil
	}
}

// Close releases any outstanding frame bindings and then the offscreen image.
func (m *ResourceManager) Close() {
	m.Release(m.frame)
	if m.target != nil {
		m.alloc.destroyTarget(m.target)
		m.target = nil
	}
}
