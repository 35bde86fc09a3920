//go:build !nogpu

package wgpu

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/drape"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func newNoopBackend(t *testing.T) *Backend {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	b, err := New(device, queue)
	if err != nil {
		cleanup()
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() {
		b.Close()
		cleanup()
	})
	return b
}

func TestShadersCompile(t *testing.T) {
	if err := ValidateShaders(); err != nil {
		t.Fatal(err)
	}
	for _, p := range []drape.Program{drape.ProgramUniformColor, drape.ProgramVertexColor} {
		src, ok := ShaderSource(p)
		if !ok || src == "" {
			t.Fatalf("no source for %s", p)
		}
		spirv, err := naga.Compile(src)
		if err != nil {
			t.Fatalf("%s: %v", p, err)
		}
		if len(spirv) == 0 {
			t.Errorf("%s: empty SPIR-V", p)
		}
	}
}

func TestNewNilDevice(t *testing.T) {
	if _, err := New(nil, nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("New(nil, nil) = %v, want ErrNilDevice", err)
	}
}

// mockDevice, mockQueue and mockAdapter implement the gpucontext types.
type mockDevice struct{}

func (m *mockDevice) Poll(wait bool) {}
func (m *mockDevice) Destroy()       {}

type mockQueue struct{}

type mockAdapter struct{}

// mockProvider implements gpucontext.DeviceProvider, optionally exposing
// HAL objects.
type mockProvider struct{}

func (m *mockProvider) Device() gpucontext.Device             { return &mockDevice{} }
func (m *mockProvider) Queue() gpucontext.Queue               { return &mockQueue{} }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return &mockAdapter{} }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }

type halMockProvider struct {
	mockProvider
	device hal.Device
	queue  hal.Queue
}

func (m *halMockProvider) HalDevice() any { return m.device }
func (m *halMockProvider) HalQueue() any  { return m.queue }

func TestNewFromProvider(t *testing.T) {
	if _, err := NewFromProvider(&mockProvider{}); !errors.Is(err, ErrNoHALDevice) {
		t.Errorf("plain provider: err = %v, want ErrNoHALDevice", err)
	}

	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	if _, err := NewFromProvider(&halMockProvider{device: device}); !errors.Is(err, ErrNoHALDevice) {
		t.Errorf("provider without queue: err = %v, want ErrNoHALDevice", err)
	}

	b, err := NewFromProvider(&halMockProvider{device: device, queue: queue})
	if err != nil {
		t.Fatalf("NewFromProvider failed: %v", err)
	}
	defer b.Close()
	if b.Device() != device {
		t.Error("backend does not use the provider's device")
	}
	if b.owned {
		t.Error("borrowed device marked as owned")
	}
}

func TestPipelineCacheSharesRenderers(t *testing.T) {
	b := newNoopBackend(t)

	r1, err := drape.NewDrapingRenderer(b)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := drape.NewDrapingRenderer(b)
	if err != nil {
		t.Fatal(err)
	}
	hits, misses := b.PipelineStats()
	if hits != 2 || misses != 2 {
		t.Errorf("stats = %d hits, %d misses; want 2, 2", hits, misses)
	}
	if got := b.pipelines.Size(); got != 2 {
		t.Errorf("cache size = %d, want 2", got)
	}

	r1.Destroy()
	if got := b.pipelines.Size(); got != 2 {
		t.Errorf("cache size after first Destroy = %d, want 2", got)
	}
	r2.Destroy()
	if got := b.pipelines.Size(); got != 0 {
		t.Errorf("cache size after second Destroy = %d, want 0", got)
	}

	r3, err := drape.NewDrapingRenderer(b, drape.WithLabelPrefix("other"))
	if err != nil {
		t.Fatal(err)
	}
	defer r3.Destroy()
	if _, misses := b.PipelineStats(); misses != 4 {
		t.Errorf("misses after drained cache = %d, want 4", misses)
	}
}

func TestHashPipelineDescriptor(t *testing.T) {
	base := func() *drape.PipelineDescriptor {
		blend := drape.AlphaBlend()
		return &drape.PipelineDescriptor{
			Label:   "p",
			Program: drape.ProgramUniformColor,
			Vertex:  drape.PositionLayout(),
			DepthStencil: drape.DepthStencilState{
				StencilFront: drape.StencilFaceState{DepthFailOp: drape.StencilOperationDecrementWrap},
			},
			Blend: &blend,
		}
	}
	want := hashPipelineDescriptor(base())

	tests := []struct {
		name   string
		modify func(*drape.PipelineDescriptor)
		same   bool
	}{
		{"identical", func(*drape.PipelineDescriptor) {}, true},
		{"label", func(d *drape.PipelineDescriptor) { d.Label = "q" }, false},
		{"program", func(d *drape.PipelineDescriptor) { d.Program = drape.ProgramVertexColor }, false},
		{"stencil op", func(d *drape.PipelineDescriptor) {
			d.DepthStencil.StencilFront.DepthFailOp = drape.StencilOperationIncrementWrap
		}, false},
		{"cull", func(d *drape.PipelineDescriptor) { d.Primitive.CullMode = gputypes.CullModeFront }, false},
		{"no blend", func(d *drape.PipelineDescriptor) { d.Blend = nil }, false},
		{"depth write", func(d *drape.PipelineDescriptor) { d.DepthStencil.DepthWriteEnabled = true }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base()
			tt.modify(d)
			if got := hashPipelineDescriptor(d) == want; got != tt.same {
				t.Errorf("hash equal = %v, want %v", got, tt.same)
			}
		})
	}
}

func TestStencilOperationMapping(t *testing.T) {
	tests := []struct {
		in   drape.StencilOperation
		want hal.StencilOperation
	}{
		{drape.StencilOperationKeep, hal.StencilOperationKeep},
		{drape.StencilOperationZero, hal.StencilOperationZero},
		{drape.StencilOperationInvert, hal.StencilOperationInvert},
		{drape.StencilOperationIncrementWrap, hal.StencilOperationIncrementWrap},
		{drape.StencilOperationDecrementWrap, hal.StencilOperationDecrementWrap},
	}
	for _, tt := range tests {
		got, err := halStencilOp(tt.in)
		if err != nil {
			t.Fatalf("%v: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("%v mapped to %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := halStencilOp(drape.StencilOperation(200)); err == nil {
		t.Error("unknown operation mapped without error")
	}
}

func TestRenderDrapingNoop(t *testing.T) {
	b := newNoopBackend(t)

	color, depth, err := b.NewTargets(64, 48)
	if err != nil {
		t.Fatal(err)
	}
	defer b.DestroyTargets(color, depth)

	r, err := drape.NewDrapingRenderer(b)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Destroy()

	square := []drape.Point2D{drape.Pt(3, 3), drape.Pt(7, 3), drape.Pt(7, 7), drape.Pt(3, 7)}
	poly := drape.NewDrapeablePolygon(square, drape.BoundsOf(square, drape.Range{Min: -1, Max: 1}))
	vb, ib, err := poly.Renderable(b)
	if err != nil {
		t.Fatal(err)
	}
	defer vb.Destroy()
	defer ib.Destroy()

	stream, err := b.NewCommandStream()
	if err != nil {
		t.Fatal(err)
	}
	if err := stream.Clear(color, depth, drape.White); err != nil {
		t.Fatal(err)
	}
	mvp := mgl32.Perspective(mgl32.DegToRad(45), 4.0/3, 0.1, 100).
		Mul4(mgl32.LookAtV(mgl32.Vec3{5, -6, 8}, mgl32.Vec3{5, 5, 0}, mgl32.Vec3{0, 0, 1}))
	if err := r.Render(stream, color, depth, mvp, drape.Red.WithAlpha(0.5), vb, ib); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if stream.passes != 1 {
		t.Errorf("passes = %d, want 1 (clear and draws share a pass)", stream.passes)
	}
	if len(stream.bindGroups) != 2 {
		t.Errorf("bind groups = %d, want one per pass", len(stream.bindGroups))
	}
	if err := stream.Finish(); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if len(stream.uniformBufs) != 0 {
		t.Error("uniform buffers not released by Finish")
	}
	if err := stream.Finish(); !errors.Is(err, ErrStreamFinished) {
		t.Errorf("second Finish = %v, want ErrStreamFinished", err)
	}

	// Noop backend returns zeroed readback data, so only the shape is checked.
	img, err := b.ReadPixels(color)
	if err != nil {
		t.Fatalf("ReadPixels failed: %v", err)
	}
	if bounds := img.Bounds(); bounds.Dx() != 64 || bounds.Dy() != 48 {
		t.Errorf("image bounds = %v, want 64x48", bounds)
	}
}

type foreignBuffer struct{}

func (foreignBuffer) Size() uint64 { return 12 }

func TestSubmitRejectsForeignHandles(t *testing.T) {
	b := newNoopBackend(t)
	color, depth, err := b.NewTargets(8, 8)
	if err != nil {
		t.Fatal(err)
	}
	stream, err := b.NewCommandStream()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = stream.Finish() }()

	err = stream.Submit(&drape.DrawBundle{
		Color:        color,
		DepthStencil: depth,
		Draws:        []drape.DrawCall{{VertexBuffer: foreignBuffer{}, IndexBuffer: foreignBuffer{}}},
	})
	if !errors.Is(err, ErrForeignHandle) {
		t.Errorf("Submit = %v, want ErrForeignHandle", err)
	}
	if stream.pass != nil {
		t.Error("rejected bundle opened a render pass")
	}

	other, _, err := b.NewTargets(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if err := stream.Clear(other, depth, drape.Black); err == nil {
		t.Error("Clear with mismatched target sizes succeeded")
	}
}

func TestCloseIdempotent(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	b, err := New(device, queue)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := drape.NewDrapingRenderer(b); err != nil {
		t.Fatal(err)
	}
	b.Close()
	b.Close()

	if _, err := b.CreateVertexBuffer("v", make([]byte, 12)); !errors.Is(err, ErrClosed) {
		t.Errorf("CreateVertexBuffer after Close = %v, want ErrClosed", err)
	}
	if _, err := b.NewStream(); !errors.Is(err, ErrClosed) {
		t.Errorf("NewStream after Close = %v, want ErrClosed", err)
	}
}

func TestCopyRows(t *testing.T) {
	// Two rows of one BGRA pixel, padded to a stride of 8 bytes.
	src := []byte{
		1, 2, 3, 4, 0, 0, 0, 0,
		5, 6, 7, 8, 0, 0, 0, 0,
	}
	dst := make([]byte, 8)
	copyRows(dst, src, 4, 8, 2, true)
	want := []byte{3, 2, 1, 4, 7, 6, 5, 8}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}

	copyRows(dst, src, 4, 8, 2, false)
	if dst[0] != 1 || dst[4] != 5 {
		t.Errorf("unswapped dst = %v", dst)
	}
}

// waitDevice reports a fixed fence wait result.
type waitDevice struct {
	hal.Device
	ok  bool
	err error
}

func (d waitDevice) Wait(hal.Fence, uint64, time.Duration) (bool, error) {
	return d.ok, d.err
}

func TestWaitFence(t *testing.T) {
	errLost := errors.New("device lost")
	tests := []struct {
		name    string
		ok      bool
		err     error
		wantErr error
	}{
		{"signaled", true, nil, nil},
		{"timeout", false, nil, ErrFenceTimeout},
		{"device error", false, errLost, errLost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newNoopBackend(t)
			b.device = waitDevice{Device: b.device, ok: tt.ok, err: tt.err}

			err := b.waitFence(nil, 1)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("waitFence() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("waitFence() = %v, want %v", err, tt.wantErr)
			}
			if strings.Contains(err.Error(), "%!") {
				t.Errorf("malformed error message %q", err.Error())
			}
		})
	}
}
