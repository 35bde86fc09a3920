// Package backend provides a pluggable registry of drape rendering devices.
//
// A Device is a drape.GraphicsBackend that can also allocate offscreen
// targets, record command streams and read pixels back. The demo commands
// select one by name; libraries embedding drape normally construct a
// backend directly instead.
//
// # Backend Registration
//
// Backends register themselves from init() functions:
//
//	import (
//		_ "github.com/gogpu/drape/backend/soft"
//		_ "github.com/gogpu/drape/backend/wgpu"
//	)
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Open() to request
// a specific backend by name:
//
//	dev, err := backend.Default()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Close()
//
// # Available Backends
//
//   - "wgpu": GPU rendering through gogpu/wgpu (requires a Vulkan device)
//   - "soft": CPU reference rasterizer (always available)
package backend
