// Package export writes figures and compositions to files.
package export

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/survfit/pkg/compose"
	"github.com/matzehuels/survfit/pkg/errors"
	"github.com/matzehuels/survfit/pkg/figure"
	"github.com/matzehuels/survfit/pkg/render"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// Formats lists every supported format.
var Formats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON}

// cssDPI is the resolution figure units are defined at.
const cssDPI = 96.0

// DefaultDPI is the raster resolution used when none is given.
const DefaultDPI = 300.0

// Options controls file output.
type Options struct {
	// Format is one of [Formats]; empty means infer from the file extension.
	Format string
	// DPI is the PNG resolution.
	DPI float64
	// WidthIn and HeightIn set the physical size in inches. With only one
	// set the other follows the unit's aspect ratio; with neither the size
	// is the unit's natural size at 96 DPI.
	WidthIn  float64
	HeightIn float64
}

func (o Options) resolve(u compose.Unit, path string) (Options, error) {
	if o.Format == "" {
		o.Format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	o.Format = strings.ToLower(o.Format)
	switch o.Format {
	case FormatSVG, FormatPNG, FormatPDF, FormatJSON:
	case "":
		return o, errors.New(errors.ErrCodeInvalidFormat, "cannot infer an output format from %q", path)
	default:
		return o, errors.New(errors.ErrCodeInvalidFormat, "unsupported output format %q (want one of %s)", o.Format, strings.Join(Formats, ", "))
	}
	if o.DPI < 0 || o.WidthIn < 0 || o.HeightIn < 0 {
		return o, errors.Configuration("export DPI and size cannot be negative")
	}
	if o.DPI == 0 {
		o.DPI = DefaultDPI
	}
	w, h := u.Size()
	if w == 0 || h == 0 {
		return o, errors.Layout("cannot export an empty figure")
	}
	switch {
	case o.WidthIn == 0 && o.HeightIn == 0:
		o.WidthIn, o.HeightIn = w/cssDPI, h/cssDPI
	case o.HeightIn == 0:
		o.HeightIn = o.WidthIn * h / w
	case o.WidthIn == 0:
		o.WidthIn = o.HeightIn * w / h
	}
	return o, nil
}

// Encode renders u in the requested format.
func Encode(u compose.Unit, opts Options) ([]byte, error) {
	opts, err := opts.resolve(u, "")
	if err != nil {
		return nil, err
	}
	return encode(u, opts)
}

func encode(u compose.Unit, opts Options) ([]byte, error) {
	size := render.WithPhysicalSize(opts.WidthIn, opts.HeightIn)
	switch opts.Format {
	case FormatSVG:
		return render.SVG(u, size), nil
	case FormatPNG:
		return render.PNG(u, render.WithDPI(opts.DPI), render.WithPNGSVGOptions(size))
	case FormatPDF:
		return render.PDF(u, size)
	default:
		fig, ok := u.(*figure.Figure)
		if !ok {
			return nil, errors.New(errors.ErrCodeUnsupported, "json export needs a single figure, not a composition")
		}
		return render.JSON(fig)
	}
}

// Save renders u and writes it to path, creating parent directories.
func Save(u compose.Unit, path string, opts Options) error {
	opts, err := opts.resolve(u, path)
	if err != nil {
		return err
	}
	data, err := encode(u, opts)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}
