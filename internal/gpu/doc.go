//go:build !nogpu

// Package gpu is the interactive fractal renderer built on gogpu/wgpu/hal.
//
// Each frame is one command buffer with two ordered passes:
//
//	Uniforms -> Compute pass (escape.wgsl -> offscreen image) -> Render pass (present.wgsl -> surface)
//
// Key components:
//
//   - Device: hal instance/device/queue, either opened standalone (Vulkan) or
//     borrowed from a host window through gpucontext
//   - ResourceManager: sole owner of the size-dependent offscreen image;
//     resize builds the replacement first and swaps it in atomically
//   - ComputeStage: escape-time compute pipeline and its uniform buffer
//   - PresentStage: fullscreen triangle-strip pipeline with a bilinear sampler
//   - Renderer: the frame driver; records both passes, submits and waits on a fence
//
// Renderer.Snapshot runs the compute pass alone and reads the image back,
// for headless export on a device from OpenDevice.
//
// Bind groups are rebuilt for every frame from the current offscreen image
// and released once the frame's fence has signalled.
//
// The package is excluded from builds tagged nogpu.
package gpu
