//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gogpu/fractal"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// fakeBindGroup satisfies hal.BindGroup without a device. Its methods are
// never called by the resource manager.
type fakeBindGroup struct {
	hal.BindGroup
	name string
}

// fakeSurface stands in for a swapchain view.
type fakeSurface struct{ hal.TextureView }

// fakeAllocator records every call and can be told to fail.
type fakeAllocator struct {
	calls []string
	live  map[*Target]bool

	failTarget  bool
	failCompute bool
	failPresent bool
}

func newFakeAllocator() *fakeAllocator {
	return &fakeAllocator{live: make(map[*Target]bool)}
}

func (a *fakeAllocator) createTarget(w, h uint32) (*Target, error) {
	if a.failTarget {
		a.calls = append(a.calls, fmt.Sprintf("create target %dx%d failed", w, h))
		return nil, errors.New("out of memory")
	}
	t := &Target{Width: w, Height: h}
	a.live[t] = true
	a.calls = append(a.calls, fmt.Sprintf("create target %dx%d", w, h))
	return t, nil
}

func (a *fakeAllocator) destroyTarget(t *Target) {
	delete(a.live, t)
	a.calls = append(a.calls, fmt.Sprintf("destroy target %dx%d", t.Width, t.Height))
}

func (a *fakeAllocator) createComputeBindings(t *Target) (hal.BindGroup, error) {
	if a.failCompute {
		return nil, errors.New("compute bind group")
	}
	a.calls = append(a.calls, "create compute")
	return &fakeBindGroup{name: "compute"}, nil
}

func (a *fakeAllocator) createPresentBindings(t *Target) (hal.BindGroup, error) {
	if a.failPresent {
		return nil, errors.New("present bind group")
	}
	a.calls = append(a.calls, "create present")
	return &fakeBindGroup{name: "present"}, nil
}

func (a *fakeAllocator) destroyBindGroup(bg hal.BindGroup) {
	a.calls = append(a.calls, "destroy "+bg.(*fakeBindGroup).name)
}

func initialView() fractal.ViewState {
	return fractal.ViewState{Center: fractal.Pt(-0.75, 0), Extent: fractal.Pt(3.5, 2.0), Iterations: 500}
}

func equalCalls(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("calls = %q, want %q", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("calls = %q, want %q", got, want)
		}
	}
}

func TestResourceManagerResize(t *testing.T) {
	alloc := newFakeAllocator()
	m := newResourceManager(alloc)

	view, err := m.OnResize(800, 600, initialView())
	if err != nil {
		t.Fatalf("OnResize(800, 600) error = %v", err)
	}
	if w, h := m.Size(); w != 800 || h != 600 {
		t.Errorf("Size() = %dx%d", w, h)
	}
	if view.Extent.Y != 3.5*600.0/800.0 {
		t.Errorf("Extent.Y = %g", view.Extent.Y)
	}

	view, err = m.OnResize(1024, 768, view)
	if err != nil {
		t.Fatalf("OnResize(1024, 768) error = %v", err)
	}
	if view.Extent.X != 3.5 || view.Extent.Y != 3.5*768.0/1024.0 {
		t.Errorf("Extent = %v, want (3.5, %g)", view.Extent, 3.5*768.0/1024.0)
	}
	if w, h := m.Size(); w != 1024 || h != 768 {
		t.Errorf("Size() = %dx%d", w, h)
	}

	// The replacement is built before the old image is dropped.
	equalCalls(t, alloc.calls, []string{
		"create target 800x600",
		"create target 1024x768",
		"destroy target 800x600",
	})
	if len(alloc.live) != 1 {
		t.Errorf("live targets = %d, want 1", len(alloc.live))
	}
}

func TestResourceManagerResizeIdempotent(t *testing.T) {
	alloc := newFakeAllocator()
	m := newResourceManager(alloc)

	once, err := m.OnResize(640, 480, initialView())
	if err != nil {
		t.Fatal(err)
	}
	target := m.Target()
	twice, err := m.OnResize(640, 480, once)
	if err != nil {
		t.Fatal(err)
	}
	if once != twice {
		t.Errorf("second resize changed view: %v -> %v", once, twice)
	}
	if m.Target() != target {
		t.Error("second resize replaced the offscreen image")
	}
	if len(alloc.calls) != 1 {
		t.Errorf("calls = %q, want a single allocation", alloc.calls)
	}
}

func TestResourceManagerResizeFailureKeepsPrevious(t *testing.T) {
	alloc := newFakeAllocator()
	m := newResourceManager(alloc)

	view, err := m.OnResize(800, 600, initialView())
	if err != nil {
		t.Fatal(err)
	}
	prev := m.Target()

	alloc.failTarget = true
	got, err := m.OnResize(4096, 4096, view)
	if !errors.Is(err, fractal.ErrResourceAllocationFailed) {
		t.Fatalf("OnResize() error = %v, want ErrResourceAllocationFailed", err)
	}
	if got != view {
		t.Errorf("failed resize changed view: %v", got)
	}
	if m.Target() != prev || !alloc.live[prev] {
		t.Error("failed resize did not keep the previous image installed")
	}
	if w, h := m.Size(); w != 800 || h != 600 {
		t.Errorf("Size() = %dx%d after failed resize", w, h)
	}
}

func TestResourceManagerResizeInvalid(t *testing.T) {
	m := newResourceManager(newFakeAllocator())
	for _, sz := range [][2]int{{0, 600}, {800, 0}, {-1, 5}} {
		if _, err := m.OnResize(sz[0], sz[1], initialView()); !errors.Is(err, fractal.ErrInvalidSize) {
			t.Errorf("OnResize(%d, %d) error = %v, want ErrInvalidSize", sz[0], sz[1], err)
		}
	}
}

func TestCurrentBindingsFreshEachFrame(t *testing.T) {
	alloc := newFakeAllocator()
	m := newResourceManager(alloc)

	if _, err := m.CurrentBindings(fakeSurface{}); !errors.Is(err, fractal.ErrInvalidSize) {
		t.Fatalf("CurrentBindings before resize error = %v", err)
	}
	if _, err := m.OnResize(320, 200, initialView()); err != nil {
		t.Fatal(err)
	}
	alloc.calls = nil

	first, err := m.CurrentBindings(fakeSurface{})
	if err != nil {
		t.Fatal(err)
	}
	if first.Target != m.Target() {
		t.Error("frame does not reference the current image")
	}
	m.Release(first)

	second, err := m.CurrentBindings(fakeSurface{})
	if err != nil {
		t.Fatal(err)
	}
	if second == first || second.Compute == first.Compute {
		t.Error("bindings were reused across frames")
	}
	m.Release(second)
	m.Release(second)

	equalCalls(t, alloc.calls, []string{
		"create compute", "create present", "destroy present", "destroy compute",
		"create compute", "create present", "destroy present", "destroy compute",
	})
}

func TestCurrentBindingsFailure(t *testing.T) {
	alloc := newFakeAllocator()
	m := newResourceManager(alloc)
	if _, err := m.OnResize(320, 200, initialView()); err != nil {
		t.Fatal(err)
	}

	alloc.failPresent = true
	alloc.calls = nil
	if _, err := m.CurrentBindings(fakeSurface{}); !errors.Is(err, fractal.ErrResourceAllocationFailed) {
		t.Fatalf("CurrentBindings() error = %v", err)
	}
	// The compute group built before the failure is released.
	equalCalls(t, alloc.calls, []string{"create compute", "destroy compute"})

	alloc.failPresent = false
	alloc.failCompute = true
	if _, err := m.CurrentBindings(fakeSurface{}); !errors.Is(err, fractal.ErrResourceAllocationFailed) {
		t.Fatalf("CurrentBindings() error = %v", err)
	}
}

func TestResourceManagerCloseOrder(t *testing.T) {
	alloc := newFakeAllocator()
	m := newResourceManager(alloc)
	if _, err := m.OnResize(320, 200, initialView()); err != nil {
		t.Fatal(err)
	}
	if _, err := m.CurrentBindings(fakeSurface{}); err != nil {
		t.Fatal(err)
	}
	alloc.calls = nil

	m.Close()
	equalCalls(t, alloc.calls, []string{"destroy present", "destroy compute", "destroy target 320x200"})
	if m.Target() != nil || len(alloc.live) != 0 {
		t.Error("Close left the offscreen image alive")
	}

	m.Close()
	if len(alloc.calls) != 3 {
		t.Errorf("second Close made calls: %q", alloc.calls)
	}
}

func TestCurrentBindingsOffscreen(t *testing.T) {
	alloc := newFakeAllocator()
	m := newResourceManager(alloc)
	if _, err := m.OnResize(64, 64, initialView()); err != nil {
		t.Fatal(err)
	}
	alloc.failPresent = true
	alloc.calls = nil

	fr, err := m.CurrentBindings(nil)
	if err != nil {
		t.Fatalf("CurrentBindings(nil) error = %v", err)
	}
	if fr.Compute == nil || fr.Present != nil || fr.Surface != nil {
		t.Errorf("offscreen frame = %+v, want compute bindings only", fr)
	}
	m.Release(fr)
	equalCalls(t, alloc.calls, []string{"create compute", "destroy compute"})
}

func TestTargetLayoutTracking(t *testing.T) {
	tgt := &Target{Width: 8, Height: 8}

	// First frame: untouched texture moves to storage, then to sampled.
	tgt.beginRecording()
	b, ok := tgt.barrier(gputypes.TextureUsageStorageBinding)
	if !ok || b.Usage.OldUsage != 0 || b.Usage.NewUsage != gputypes.TextureUsageStorageBinding {
		t.Fatalf("first barrier = %+v, %v", b.Usage, ok)
	}
	if _, ok := tgt.barrier(gputypes.TextureUsageStorageBinding); ok {
		t.Error("barrier emitted for an unchanged usage")
	}
	if _, ok := tgt.barrier(gputypes.TextureUsageTextureBinding); !ok {
		t.Fatal("no barrier to TextureBinding")
	}
	tgt.commit()
	if tgt.usage != gputypes.TextureUsageTextureBinding {
		t.Fatalf("usage = %v after commit", tgt.usage)
	}

	// An encoder abandoned before submit must not move the tracked layout.
	tgt.beginRecording()
	tgt.barrier(gputypes.TextureUsageStorageBinding)
	tgt.barrier(gputypes.TextureUsageCopySrc)

	tgt.beginRecording()
	b, ok = tgt.barrier(gputypes.TextureUsageStorageBinding)
	if !ok || b.Usage.OldUsage != gputypes.TextureUsageTextureBinding {
		t.Errorf("barrier after abandoned encoder = %+v, %v; want old usage TextureBinding", b.Usage, ok)
	}
	if tgt.usage != gputypes.TextureUsageTextureBinding {
		t.Errorf("usage = %v, abandoned recording leaked", tgt.usage)
	}
}
