//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// ErrNoAdapter is returned by OpenDevice when no GPU adapter is available.
var ErrNoAdapter = errors.New("gpu: no GPU adapters found")

// Device bundles the hal device and queue the renderer records into.
//
// A Device opened by OpenDevice owns its instance and device and destroys
// them on Close. A Device built with NewDevice or FromProvider borrows them
// from the host and Close leaves them alive.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	name          string
	surfaceFormat gputypes.TextureFormat
	external      bool
}

// OpenDevice brings up a standalone Vulkan device, preferring a discrete or
// integrated GPU over software adapters.
func OpenDevice() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("gpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open device: %w", err)
	}
	slogger().Info("gpu device opened", "adapter", selected.Info.Name)
	return &Device{
		instance:      instance,
		device:        openDev.Device,
		queue:         openDev.Queue,
		name:          selected.Info.Name,
		surfaceFormat: gputypes.TextureFormatBGRA8UnormSrgb,
	}, nil
}

// NewDevice wraps a device and queue owned by someone else.
func NewDevice(device hal.Device, queue hal.Queue, surfaceFormat gputypes.TextureFormat) *Device {
	return &Device{
		device:        device,
		queue:         queue,
		name:          "external",
		surfaceFormat: surfaceFormat,
		external:      true,
	}
}

// FromProvider borrows the device, queue and surface format of a host
// window. The provider must also implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func FromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}
	format := provider.SurfaceFormat()
	if format == gputypes.TextureFormatUndefined {
		format = gputypes.TextureFormatBGRA8UnormSrgb
	}
	slogger().Info("gpu device borrowed from host", "surface_format", format)
	return NewDevice(device, queue, format), nil
}

// Name returns the adapter name, or "external" for a borrowed device.
func (d *Device) Name() string { return d.name }

// SurfaceFormat returns the color format the present pipeline renders into.
func (d *Device) SurfaceFormat() gputypes.TextureFormat { return d.surfaceFormat }

// HalDevice returns the underlying hal.Device.
func (d *Device) HalDevice() hal.Device { return d.device }

// HalQueue returns the underlying hal.Queue.
func (d *Device) HalQueue() hal.Queue { return d.queue }

// Close destroys the device and instance if this Device owns them.
// Safe to call more than once.
func (d *Device) Close() {
	if !d.external {
		if d.device != nil {
			d.device.Destroy()
		}
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device = nil
	d.queue = nil
	d.instance = nil
}
