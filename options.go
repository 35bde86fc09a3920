package drape

import "github.com/gogpu/gputypes"

// RendererOption configures a DrapingRenderer during creation.
//
// Example:
//
//	r, err := drape.NewDrapingRenderer(backend,
//	    drape.WithColorFormat(gputypes.TextureFormatRGBA8Unorm))
type RendererOption func(*rendererOptions)

// rendererOptions holds optional configuration for DrapingRenderer creation.
type rendererOptions struct {
	colorFormat        gputypes.TextureFormat
	depthStencilFormat gputypes.TextureFormat
	labelPrefix        string
}

// defaultOptions returns the default renderer options.
func defaultOptions() rendererOptions {
	return rendererOptions{
		colorFormat:        gputypes.TextureFormatBGRA8Unorm,
		depthStencilFormat: gputypes.TextureFormatDepth24PlusStencil8,
		labelPrefix:        "drape",
	}
}

// WithColorFormat sets the format of the color targets the renderer draws
// into. The default is BGRA8Unorm.
func WithColorFormat(f gputypes.TextureFormat) RendererOption {
	return func(o *rendererOptions) {
		o.colorFormat = f
	}
}

// WithDepthStencilFormat sets the depth/stencil target format. It must have
// a stencil aspect. The default is Depth24PlusStencil8.
func WithDepthStencilFormat(f gputypes.TextureFormat) RendererOption {
	return func(o *rendererOptions) {
		o.depthStencilFormat = f
	}
}

// WithLabelPrefix sets the prefix of all debug labels.
func WithLabelPrefix(prefix string) RendererOption {
	return func(o *rendererOptions) {
		o.labelPrefix = prefix
	}
}
