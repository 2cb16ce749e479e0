package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/survfit/pkg/compose"
	"github.com/matzehuels/survfit/pkg/figure"
)

// SVGOption configures [SVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	widthIn, heightIn float64
	background        string
	title             string
}

// WithPhysicalSize sets the document size in inches. Without it the size is
// in figure units (pixels).
func WithPhysicalSize(widthIn, heightIn float64) SVGOption {
	return func(r *svgRenderer) { r.widthIn, r.heightIn = widthIn, heightIn }
}

// WithBackground sets the canvas color; "none" leaves it transparent.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithTitle adds a document <title>.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// clipped element classes are drawn inside the plot-area clip path.
var clipped = map[string]bool{"ribbon": true, "curve": true, "censor": true}

// SVG renders u as a standalone SVG document.
func SVG(u compose.Unit, opts ...SVGOption) []byte {
	r := svgRenderer{background: "white"}
	for _, opt := range opts {
		opt(&r)
	}
	w, h := u.Size()

	var buf bytes.Buffer
	width, height := fmt.Sprintf("%.0f", w), fmt.Sprintf("%.0f", h)
	if r.widthIn > 0 && r.heightIn > 0 {
		width, height = fmt.Sprintf("%gin", r.widthIn), fmt.Sprintf("%gin", r.heightIn)
	}
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%s" height="%s" preserveAspectRatio="xMidYMid meet">`+"\n",
		w, h, width, height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", figure.EscapeXML(r.title))
	}
	if r.background != "none" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", attr(r.background))
	}
	for _, p := range u.Placements() {
		renderFigure(&buf, p)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderFigure(buf *bytes.Buffer, p figure.Placement) {
	f := p.Figure
	th := f.Theme()
	fmt.Fprintf(buf, `  <svg id="fig-%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" viewBox="0 0 %.1f %.1f" font-family="%s">`+"\n",
		f.ID(), p.Box.X, p.Box.Y, p.Box.W, p.Box.H, f.Width(), f.Height(), attr(th.FontFamily))
	for i, panel := range f.Panels() {
		clip := clipID(f, i)
		fmt.Fprintf(buf, `    <g class="panel panel-%s" data-name="%s">`+"\n", attr(string(panel.Kind)), attr(panel.Name))
		areas := panel.Facets
		if len(areas) == 0 {
			areas = []figure.Rect{panel.PlotArea}
		}
		fmt.Fprintf(buf, `      <defs><clipPath id="%s">`, clip)
		for _, a := range areas {
			fmt.Fprintf(buf, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`, a.X, a.Y, a.W, a.H)
		}
		buf.WriteString("</clipPath></defs>\n")
		for _, el := range panel.Elements {
			buf.WriteString("      ")
			if clipped[figure.ClassOf(el)] {
				fmt.Fprintf(buf, `<g clip-path="url(#%s)">`, clip)
				writeElement(buf, el)
				buf.WriteString("</g>")
			} else {
				writeElement(buf, el)
			}
			buf.WriteString("\n")
		}
		buf.WriteString("    </g>\n")
	}
	buf.WriteString("  </svg>\n")
}

// clipID is unique per figure and panel so composed figures never share
// clip paths.
func clipID(f *figure.Figure, panel int) string {
	return fmt.Sprintf("clip-%s-%d", f.ID()[:8], panel)
}

// attr escapes a value written inside a double-quoted attribute. Colors
// and dash patterns come from user palettes and recipes.
func attr(s string) string { return figure.EscapeXML(s) }

func strokeAttrs(s figure.Stroke) string {
	out := fmt.Sprintf(`stroke="%s" stroke-width="%.2f"`, attr(s.Color), s.Width)
	if s.Dash != "" {
		out += fmt.Sprintf(` stroke-dasharray="%s"`, attr(s.Dash))
	}
	return out
}

func writeElement(buf *bytes.Buffer, el figure.Element) {
	switch e := el.(type) {
	case figure.Line:
		fmt.Fprintf(buf, `<line class="%s" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" %s/>`,
			attr(e.Class), e.X1, e.Y1, e.X2, e.Y2, strokeAttrs(e.Stroke))
	case figure.Path:
		fmt.Fprintf(buf, `<path class="%s" d="%s" fill="none" %s stroke-linejoin="round"/>`,
			attr(e.Class), pathData(e.Points), strokeAttrs(e.Stroke))
	case figure.Polygon:
		pts := make([]string, len(e.Points))
		for i, p := range e.Points {
			pts[i] = fmt.Sprintf("%.2f,%.2f", p.X, p.Y)
		}
		fmt.Fprintf(buf, `<polygon class="%s" points="%s" fill="%s" fill-opacity="%.2f" stroke="none"/>`,
			attr(e.Class), strings.Join(pts, " "), attr(e.Fill), e.Opacity)
	case figure.Marker:
		half := e.Size / 2
		if e.Shape == "circle" {
			fmt.Fprintf(buf, `<circle class="%s" cx="%.2f" cy="%.2f" r="%.2f" fill="none" %s/>`,
				attr(e.Class), e.X, e.Y, half, strokeAttrs(e.Stroke))
			return
		}
		fmt.Fprintf(buf, `<path class="%s" d="M%.2f %.2fH%.2fM%.2f %.2fV%.2f" %s/>`,
			attr(e.Class), e.X-half, e.Y, e.X+half, e.X, e.Y-half, e.Y+half, strokeAttrs(e.Stroke))
	case figure.Text:
		attrs := fmt.Sprintf(`class="%s" x="%.2f" y="%.2f" font-size="%.2f" text-anchor="%s" fill="%s"`,
			attr(e.Class), e.X, e.Y, e.Size, attr(e.Anchor), attr(e.Color))
		if e.Bold {
			attrs += ` font-weight="bold"`
		}
		if e.Rotate != 0 {
			attrs += fmt.Sprintf(` transform="rotate(%.1f %.2f %.2f)"`, e.Rotate, e.X, e.Y)
		}
		fmt.Fprintf(buf, `<text %s>%s</text>`, attrs, figure.EscapeXML(e.Content))
	case figure.Box:
		fmt.Fprintf(buf, `<rect class="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"`,
			attr(e.Class), e.Rect.X, e.Rect.Y, e.Rect.W, e.Rect.H, attr(e.Fill))
		if e.Stroke.Color != "" {
			buf.WriteString(" " + strokeAttrs(e.Stroke))
		}
		buf.WriteString("/>")
	}
}

func pathData(pts []figure.Point) string {
	var b strings.Builder
	for i, p := range pts {
		if i == 0 {
			fmt.Fprintf(&b, "M%.2f %.2f", p.X, p.Y)
		} else {
			fmt.Fprintf(&b, "L%.2f %.2f", p.X, p.Y)
		}
	}
	return b.String()
}
