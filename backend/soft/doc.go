// Package soft implements drape.GraphicsBackend on the CPU.
//
// It executes pipelines with the depth, stencil and blend semantics of
// WebGPU, so the two-pass draping algorithm can be run and inspected pixel
// by pixel without a GPU. Tests use it to check the stencil buffer after
// rendering; the demo commands use it for headless output.
//
//	be := soft.New()
//	color := soft.NewColorBuffer(800, 600)
//	depth := soft.NewDepthStencilBuffer(800, 600)
//
//	stream := be.NewCommandStream()
//	_ = renderer.Render(stream, color, depth, mvp, fill, vb, ib)
//	_ = stream.Finish()
//
//	img := color.Image()
//
// Importing the package registers it with the backend registry as "soft".
package soft
