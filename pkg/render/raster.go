package render

import "github.com/matzehuels/survfit/pkg/compose"

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	scale   float64
	dpi     float64
}

// WithPNGSVGOptions passes options through to the underlying SVG renderer.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithDPI renders at a resolution instead of a scale factor. Combine it
// with [WithPhysicalSize] through [WithPNGSVGOptions].
func WithDPI(dpi float64) PNGOption {
	return func(r *pngRenderer) { r.dpi = dpi }
}

// PNG renders u as PNG via SVG conversion.
func PNG(u compose.Unit, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	svg := SVG(u, r.svgOpts...)
	if r.dpi > 0 {
		return ToPNGAtDPI(svg, r.dpi)
	}
	return ToPNG(svg, r.scale)
}

// PDF renders u as PDF via SVG conversion.
func PDF(u compose.Unit, opts ...SVGOption) ([]byte, error) {
	return ToPDF(SVG(u, opts...))
}
