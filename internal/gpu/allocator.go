//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// halAllocator allocates resource-manager objects on a hal.Device using the
// layouts owned by the two stages.
type halAllocator struct {
	device  hal.Device
	compute *ComputeStage
	present *PresentStage
}

var _ allocator = (*halAllocator)(nil)

func (a *halAllocator) createTarget(width, height uint32) (*Target, error) {
	tex, err := a.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "fractal_offscreen",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        offscreenFormat,
		Usage:         gputypes.TextureUsageStorageBinding | gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("create offscreen texture: %w", err)
	}
	view, err := a.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "fractal_offscreen_view",
		Format:        offscreenFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		a.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create offscreen view: %w", err)
	}
	return &Target{Width: width, Height: height, Texture: tex, View: view}, nil
}

func (a *halAllocator) destroyTarget(t *Target) {
	if t.View != nil {
		a.device.DestroyTextureView(t.View)
		t.View = nil
	}
	if t.Texture != nil {
		a.device.DestroyTexture(t.Texture)
		t.Texture = nil
	}
}

func (a *halAllocator) createComputeBindings(t *Target) (hal.BindGroup, error) {
	return a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "fractal_compute_bind",
		Layout: a.compute.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: a.compute.uniformBuf.NativeHandle(), Offset: 0, Size: uniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: t.View.NativeHandle(),
			}},
		},
	})
}

func (a *halAllocator) createPresentBindings(t *Target) (hal.BindGroup, error) {
	return a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "fractal_present_bind",
		Layout: a.present.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{
				TextureView: t.View.NativeHandle(),
			}},
			{Binding: 1, Resource: gputypes.SamplerBinding{
				Sampler: a.present.sampler.NativeHandle(),
			}},
		},
	})
}

func (a *halAllocator) destroyBindGroup(bg hal.BindGroup) {
	a.device.DestroyBindGroup(bg)
}
