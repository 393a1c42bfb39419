//go:build !nogpu

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/fractal"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the row pitch alignment required by
// texture-to-buffer copies.
const copyPitchAlignment = 256

// Snapshot computes view into the offscreen image and reads it back. The
// image has the size of the last Resize. No surface is involved, so it works
// on a standalone device from OpenDevice.
func (r *Renderer) Snapshot(view fractal.ViewState) (*image.RGBA, error) {
	switch {
	case r.closed:
		return nil, ErrRendererClosed
	case r.lost:
		return nil, fractal.ErrDeviceLost
	}

	fr, err := r.resources.CurrentBindings(nil)
	if err != nil {
		return nil, err
	}
	defer r.resources.Release(fr)

	t := fr.Target
	r.compute.WriteUniforms(NewUniforms(view, r.cfg.Family, r.cfg.Julia))

	encoder, err := r.dev.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "fractal_snapshot_encoder"})
	if err != nil {
		return nil, fmt.Errorf("%w: create command encoder: %w", fractal.ErrResourceAllocationFailed, err)
	}
	if err := encoder.BeginEncoding("fractal_snapshot"); err != nil {
		return nil, fmt.Errorf("%w: begin encoding: %w", fractal.ErrResourceAllocationFailed, err)
	}
	t.beginRecording()

	wx, wy := r.compute.Record(encoder, fr)
	transition(encoder, t, gputypes.TextureUsageCopySrc)

	bytesPerRow := t.Width * 4
	pitch := alignedPitch(bytesPerRow)
	size := uint64(pitch) * uint64(t.Height)

	staging, err := r.dev.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "fractal_snapshot_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("%w: create staging buffer: %w", fractal.ErrResourceAllocationFailed, err)
	}
	defer r.dev.device.DestroyBuffer(staging)

	encoder.CopyTextureToBuffer(t.Texture, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: pitch, RowsPerImage: t.Height},
		TextureBase:  hal.ImageCopyTexture{Texture: t.Texture, MipLevel: 0},
		Size:         hal.Extent3D{Width: t.Width, Height: t.Height, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("%w: end encoding: %w", fractal.ErrResourceAllocationFailed, err)
	}
	defer r.dev.device.FreeCommandBuffer(cmdBuf)

	if err := r.submit(cmdBuf); err != nil {
		r.lost = true
		slogger().Error("gpu device lost", "err", err)
		return nil, err
	}
	t.commit()

	readback := make([]byte, size)
	if err := r.dev.queue.ReadBuffer(staging, 0, readback); err != nil {
		return nil, fmt.Errorf("gpu: readback: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, int(t.Width), int(t.Height)))
	unpackRows(img.Pix, readback, int(bytesPerRow), int(pitch), int(t.Height))

	r.stats.Computes++
	r.stats.WorkgroupsX, r.stats.WorkgroupsY = wx, wy
	slogger().Debug("snapshot computed",
		"width", t.Width, "height", t.Height, "iterations", view.Iterations)
	return img, nil
}

// alignedPitch rounds a row size up to copyPitchAlignment.
func alignedPitch(bytesPerRow uint32) uint32 {
	return (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// unpackRows copies rows of rowBytes from src, laid out with the given
// pitch, into the tightly packed dst.
func unpackRows(dst, src []byte, rowBytes, pitch, rows int) {
	if pitch == rowBytes {
		copy(dst, src[:rowBytes*rows])
		return
	}
	for y := 0; y < rows; y++ {
		copy(dst[y*rowBytes:(y+1)*rowBytes], src[y*pitch:y*pitch+rowBytes])
	}
}
