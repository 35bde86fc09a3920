//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/drape"
	"github.com/gogpu/drape/backend"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan HAL backend for Open.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

var (
	// ErrNoHALDevice is returned when a provider does not expose hal.Device
	// and hal.Queue.
	ErrNoHALDevice = errors.New("wgpu: provider does not expose HAL device and queue")

	// ErrNilDevice is returned by New when device or queue is nil.
	ErrNilDevice = errors.New("wgpu: device or queue is nil")

	// ErrClosed is returned when a closed backend is used.
	ErrClosed = errors.New("wgpu: backend closed")

	// ErrFenceTimeout is returned when submitted work does not finish within
	// the fence timeout.
	ErrFenceTimeout = errors.New("wgpu: timed out waiting for GPU")

	// ErrForeignHandle is returned for buffers, pipelines or targets that
	// were not created by this backend.
	ErrForeignHandle = errors.New("wgpu: handle not created by this backend")
)

// defaultFenceTimeout bounds every wait for submitted GPU work.
const defaultFenceTimeout = 5 * time.Second

func init() {
	backend.Register(backend.BackendWGPU, func() (backend.Device, error) {
		return Open()
	})
}

// Option configures a Backend.
type Option func(*Backend)

// WithFenceTimeout sets how long Finish and ReadPixels wait for the GPU.
func WithFenceTimeout(d time.Duration) Option {
	return func(b *Backend) {
		if d > 0 {
			b.fenceTimeout = d
		}
	}
}

// Backend implements drape.GraphicsBackend and backend.Device on a
// gogpu/wgpu HAL device.
//
// A Backend either owns its device (Open) or borrows one from the host
// application (New, NewFromProvider). Borrowed devices are not destroyed by
// Close.
type Backend struct {
	mu sync.Mutex

	device   hal.Device
	queue    hal.Queue
	instance hal.Instance // non-nil only when the backend owns the device
	owned    bool

	shaders       map[drape.Program]hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout

	pipelines *pipelineCache

	fenceTimeout time.Duration
	closed       bool
}

var (
	_ drape.GraphicsBackend = (*Backend)(nil)
	_ backend.Device        = (*Backend)(nil)
)

// New creates a backend on a borrowed device and compiles the shader
// programs.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Backend, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	b := &Backend{
		device:       device,
		queue:        queue,
		pipelines:    newPipelineCache(),
		fenceTimeout: defaultFenceTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	if err := b.createShared(); err != nil {
		b.destroyShared()
		return nil, err
	}
	return b, nil
}

// NewFromProvider creates a backend on the device of a host application.
// The provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Backend, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALDevice
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNoHALDevice, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrNoHALDevice, hp.HalQueue())
	}
	return New(device, queue, opts...)
}

// Open creates a backend on its own Vulkan device, preferring a discrete
// or integrated GPU.
func Open(opts ...Option) (*Backend, error) {
	api, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, errors.New("wgpu: vulkan backend not available")
	}
	instance, err := api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.New("wgpu: no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	b, err := New(openDev.Device, openDev.Queue, opts...)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	b.instance = instance
	b.owned = true
	drape.Logger().Info("wgpu: device opened", "adapter", selected.Info.Name)
	return b, nil
}

// createShared compiles the shader programs and the layouts shared by every
// pipeline: one uniform buffer at group(0) binding(0).
func (b *Backend) createShared() error {
	b.shaders = make(map[drape.Program]hal.ShaderModule, len(programSources))
	for program, src := range programSources {
		module, err := b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  "drape_" + program.String() + "_shader",
			Source: hal.ShaderSource{WGSL: src},
		})
		if err != nil {
			return fmt.Errorf("compile %s shader: %w", program, err)
		}
		b.shaders[program] = module
	}

	uniformLayout, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "drape_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create uniform bind group layout: %w", err)
	}
	b.uniformLayout = uniformLayout

	pipeLayout, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "drape_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{b.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	b.pipeLayout = pipeLayout
	return nil
}

// destroyShared releases shaders and layouts in reverse creation order.
// Safe to call with partially created resources.
func (b *Backend) destroyShared() {
	if b.pipeLayout != nil {
		b.device.DestroyPipelineLayout(b.pipeLayout)
		b.pipeLayout = nil
	}
	if b.uniformLayout != nil {
		b.device.DestroyBindGroupLayout(b.uniformLayout)
		b.uniformLayout = nil
	}
	for program, module := range b.shaders {
		b.device.DestroyShaderModule(module)
		delete(b.shaders, program)
	}
}

// Name implements backend.Device.
func (b *Backend) Name() string { return backend.BackendWGPU }

// Device returns the HAL device.
func (b *Backend) Device() hal.Device { return b.device }

// PipelineStats returns pipeline cache hits and misses.
func (b *Backend) PipelineStats() (hits, misses uint64) {
	return b.pipelines.Stats()
}

// Close destroys cached pipelines and shared resources, and the device if
// the backend owns it. Close is idempotent.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true

	for _, p := range b.pipelines.drain() {
		b.device.DestroyRenderPipeline(p.raw)
	}
	b.destroyShared()

	if b.owned {
		b.device.Destroy()
		if b.instance != nil {
			b.instance.Destroy()
		}
	}
	b.device = nil
	b.queue = nil
	b.instance = nil
}

func (b *Backend) checkOpen() error {
	if b.closed {
		return ErrClosed
	}
	return nil
}
