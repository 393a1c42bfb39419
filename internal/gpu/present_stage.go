//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// quadVertexCount is the vertex count of the fullscreen triangle strip.
const quadVertexCount = 4

// PresentStage draws the offscreen image onto the surface as a
// full-viewport quad with bilinear filtering. It never writes the image.
type PresentStage struct {
	device hal.Device
	format gputypes.TextureFormat

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	sampler    hal.Sampler
}

// NewPresentStage builds the render pipeline targeting the device's
// surface format.
func NewPresentStage(dev *Device, precompile bool) (*PresentStage, error) {
	s := &PresentStage{device: dev.device, format: dev.surfaceFormat}
	if err := s.createPipeline(precompile); err != nil {
		s.Destroy()
		return nil, err
	}
	return s, nil
}

func (s *PresentStage) createPipeline(precompile bool) error {
	shader, err := createShaderModule(s.device, "fractal_present", presentShaderSource, precompile)
	if err != nil {
		return err
	}
	s.shader = shader

	// Binding 0: offscreen image (sampled texture)
	// Binding 1: bilinear sampler
	bindLayout, err := s.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "fractal_present_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create present bind group layout: %w", err)
	}
	s.bindLayout = bindLayout

	pipeLayout, err := s.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "fractal_present_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{s.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create present pipeline layout: %w", err)
	}
	s.pipeLayout = pipeLayout

	sampler, err := s.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "fractal_present_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("create present sampler: %w", err)
	}
	s.sampler = sampler

	pipeline, err := s.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "fractal_present_pipeline",
		Layout: s.pipeLayout,
		Vertex: hal.VertexState{
			Module:     s.shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     s.shader,
			EntryPoint: fragmentEntryPoint(s.format),
			Targets: []gputypes.ColorTargetState{
				{
					Format:    s.format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create present pipeline: %w", err)
	}
	s.pipeline = pipeline
	return nil
}

// fragmentEntryPoint picks the fragment shader for the surface format.
func fragmentEntryPoint(format gputypes.TextureFormat) string {
	switch format {
	case gputypes.TextureFormatBGRA8UnormSrgb, gputypes.TextureFormatRGBA8UnormSrgb:
		return "fs_main_srgb"
	}
	return "fs_main"
}

// Format returns the color target format of the pipeline.
func (s *PresentStage) Format() gputypes.TextureFormat { return s.format }

// Record encodes the render pass that samples fr.Target onto fr.Surface.
func (s *PresentStage) Record(encoder hal.CommandEncoder, fr *FrameResources) {
	transition(encoder, fr.Target, gputypes.TextureUsageTextureBinding)

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "fractal_present_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       fr.Surface,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	rp.SetPipeline(s.pipeline)
	rp.SetBindGroup(0, fr.Present, nil)
	rp.Draw(quadVertexCount, 1, 0, 0)
	rp.End()
}

// Destroy releases the pipeline objects in reverse creation order.
func (s *PresentStage) Destroy() {
	if s.device == nil {
		return
	}
	if s.pipeline != nil {
		s.device.DestroyRenderPipeline(s.pipeline)
		s.pipeline = nil
	}
	if s.sampler != nil {
		s.device.DestroySampler(s.sampler)
		s.sampler = nil
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
