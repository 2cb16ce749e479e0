package figure

import (
	"bytes"
	"encoding/xml"
	"strings"
	"unicode/utf8"
)

const (
	// Average glyph advance as a fraction of the font size.
	fontCharWidth = 0.55
	// Line box height as a multiple of the font size.
	lineHeight = 1.25
)

// TextWidth estimates the rendered width of s at the given font size.
// The estimate is font-independent so layout stays deterministic.
func TextWidth(s string, size float64) float64 {
	return float64(utf8.RuneCountInString(s)) * size * fontCharWidth
}

// LineHeight returns the line box height for a font size.
func LineHeight(size float64) float64 {
	return size * lineHeight
}

// Wrap breaks s into lines no wider than width at the given font size.
// Words longer than a line are kept whole on their own line.
func Wrap(s string, size, width float64) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		if TextWidth(cur+" "+w, size) <= width {
			cur += " " + w
			continue
		}
		lines = append(lines, cur)
		cur = w
	}
	return append(lines, cur)
}

// EscapeXML escapes s for use in SVG text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
