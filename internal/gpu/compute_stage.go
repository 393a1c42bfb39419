//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DefaultTileSize is the compute workgroup edge in pixels.
const DefaultTileSize = 8

// DispatchSize returns the workgroup counts that cover a width x height
// image with tile x tile workgroups. The last row and column of workgroups
// may hang past the image edge; those lanes are no-ops in the shader.
func DispatchSize(width, height, tile uint32) (x, y uint32) {
	if tile == 0 {
		return 0, 0
	}
	return (width + tile - 1) / tile, (height + tile - 1) / tile
}

// ComputeStage evaluates the escape-time map into the offscreen image.
//
// It owns the compute pipeline and the uniform buffer; the per-frame bind
// group referencing both comes from ResourceManager.CurrentBindings.
type ComputeStage struct {
	device hal.Device
	queue  hal.Queue
	tile   uint32

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline
	uniformBuf hal.Buffer
}

// NewComputeStage builds the compute pipeline for the given tile size.
func NewComputeStage(dev *Device, tile uint32, precompile bool) (*ComputeStage, error) {
	if tile == 0 {
		tile = DefaultTileSize
	}
	s := &ComputeStage{device: dev.device, queue: dev.queue, tile: tile}
	if err := s.createPipeline(precompile); err != nil {
		s.Destroy()
		return nil, err
	}
	return s, nil
}

func (s *ComputeStage) createPipeline(precompile bool) error {
	shader, err := createShaderModule(s.device, "fractal_escape", escapeShaderSource(s.tile), precompile)
	if err != nil {
		return err
	}
	s.shader = shader

	// Binding 0: Params (uniform)
	// Binding 1: offscreen image (write-only storage texture)
	bindLayout, err := s.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "fractal_escape_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageCompute,
				StorageTexture: &gputypes.StorageTextureBindingLayout{
					Access:        gputypes.StorageTextureAccessWriteOnly,
					Format:        offscreenFormat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create escape bind group layout: %w", err)
	}
	s.bindLayout = bindLayout

	pipeLayout, err := s.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "fractal_escape_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{s.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create escape pipeline layout: %w", err)
	}
	s.pipeLayout = pipeLayout

	pipeline, err := s.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   "fractal_escape_pipeline",
		Layout:  s.pipeLayout,
		Compute: hal.ComputeState{Module: s.shader, EntryPoint: "cs_main"},
	})
	if err != nil {
		return fmt.Errorf("create escape compute pipeline: %w", err)
	}
	s.pipeline = pipeline

	uniformBuf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "fractal_params",
		Size:  uniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create params buffer: %w", err)
	}
	s.uniformBuf = uniformBuf
	return nil
}

// TileSize returns the workgroup edge the pipeline was built for.
func (s *ComputeStage) TileSize() uint32 { return s.tile }

// WriteUniforms uploads the view snapshot the next dispatch reads.
func (s *ComputeStage) WriteUniforms(u Uniforms) {
	s.queue.WriteBuffer(s.uniformBuf, 0, u.Bytes())
}

// Record encodes the compute pass that fills fr.Target and returns the
// workgroup counts dispatched.
func (s *ComputeStage) Record(encoder hal.CommandEncoder, fr *FrameResources) (x, y uint32) {
	t := fr.Target
	transition(encoder, t, gputypes.TextureUsageStorageBinding)

	x, y = DispatchSize(t.Width, t.Height, s.tile)
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "fractal_escape_pass"})
	pass.SetPipeline(s.pipeline)
	pass.SetBindGroup(0, fr.Compute, nil)
	pass.Dispatch(x, y, 1)
	pass.End()
	return x, y
}

// Destroy releases the pipeline objects in reverse creation order.
func (s *ComputeStage) Destroy() {
	if s.device == nil {
		return
	}
	if s.uniformBuf != nil {
		s.device.DestroyBuffer(s.uniformBuf)
		s.uniformBuf = nil
	}
	if s.pipeline != nil {
		s.device.DestroyComputePipeline(s.pipeline)
		s.pipeline = nil
	}
	if s.pipeLayout != nil {
		s.device.DestroyPipelineLayout(s.pipeLayout)
		s.pipeLayout = nil
	}
	if s.bindLayout != nil {
		s.device.DestroyBindGroupLayout(s.bindLayout)
		s.bindLayout = nil
	}
	if s.shader != nil {
		s.device.DestroyShaderModule(s.shader)
		s.shader = nil
	}
}

// transition records a layout barrier on t if its recorded usage differs.
func transition(encoder hal.CommandEncoder, t *Target, next gputypes.TextureUsage) {
	if b, ok := t.barrier(next); ok {
		encoder.TransitionTextures([]hal.TextureBarrier{b})
	}
}
