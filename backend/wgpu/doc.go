// Package wgpu implements drape.GraphicsBackend on a gogpu/wgpu HAL device.
//
// Each drape.Program is an embedded WGSL module (shaders/*.wgsl) sharing a
// single uniform block of drape.Uniforms at group(0) binding(0). Vertex
// shaders remap GL clip depth to the WebGPU [0, 1] range, so projection
// matrices built with mgl32 can be used unchanged.
//
// # Device Sharing
//
// A host application that already owns a device passes it in:
//
//	be, err := wgpu.New(device, queue)
//
// or, through a gpucontext.DeviceProvider exposing HalDevice/HalQueue:
//
//	be, err := wgpu.NewFromProvider(provider)
//
// Open creates a standalone Vulkan device, and is what the backend
// registry uses under the name "wgpu".
//
// # Command Streams
//
// A CommandStream records into one command encoder. Bundles that target
// the same textures share a render pass; switching targets starts a new pass
// that loads the previous contents. Finish submits and waits on a fence.
//
// # Pipeline Cache
//
// Pipelines are cached by an FNV-1a hash of their descriptor and reference
// counted, so several renderers on one backend compile the draping
// pipelines once.
//
// Building with the nogpu tag excludes this package's implementation.
package wgpu
