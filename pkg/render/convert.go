package render

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/matzehuels/survfit/pkg/errors"
)

// rsvgBinary is the librsvg command line converter used for PNG and PDF.
var rsvgBinary = "rsvg-convert"

// ToPDF converts SVG bytes to a vector PDF. Physical sizes set with
// [WithPhysicalSize] become the page size.
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "pdf")
}

// ToPNG rasterises SVG bytes at zoom times their pixel size.
func ToPNG(svg []byte, zoom float64) ([]byte, error) {
	if zoom <= 0 {
		return nil, errors.Configuration("png zoom must be positive, got %g", zoom)
	}
	return convert(svg, "png", "--zoom", fmt.Sprintf("%.2f", zoom))
}

// ToPNGAtDPI rasterises SVG bytes at dpi. The pixel size is the SVG's
// physical size in inches times dpi.
func ToPNGAtDPI(svg []byte, dpi float64) ([]byte, error) {
	if dpi <= 0 {
		return nil, errors.Configuration("png dpi must be positive, got %g", dpi)
	}
	d := fmt.Sprintf("%.0f", dpi)
	return convert(svg, "png", "--dpi-x", d, "--dpi-y", d)
}

func convert(svg []byte, format string, args ...string) ([]byte, error) {
	bin, err := exec.LookPath(rsvgBinary)
	if err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"%s output needs %s from librsvg (brew install librsvg, apt install librsvg2-bin)", format, rsvgBinary)
	}

	cmd := exec.Command(bin, append([]string{"--format", format}, args...)...)
	cmd.Stdin = bytes.NewReader(svg)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", rsvgBinary, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
