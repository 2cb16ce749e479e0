package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/survfit/pkg/compose"
	"github.com/matzehuels/survfit/pkg/errors"
	"github.com/matzehuels/survfit/pkg/figure"
)

func testFigure() *figure.Figure {
	return figure.New(figure.DefaultTheme(), figure.Panel{
		Kind:  figure.KindPrimary,
		Name:  "curves",
		Frame: figure.Rect{W: 960, H: 480},
	})
}

func TestSaveSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "km.svg")
	if err := Save(testFigure(), path, Options{}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `width="10in" height="5in"`) {
		t.Errorf("natural size should be 96 DPI:\n%s", data[:200])
	}
}

func TestPhysicalSize(t *testing.T) {
	tests := []struct {
		name         string
		opts         Options
		wantW, wantH float64
	}{
		{"natural", Options{}, 10, 5},
		{"width only", Options{WidthIn: 7}, 7, 3.5},
		{"height only", Options{HeightIn: 2}, 4, 2},
		{"both", Options{WidthIn: 3, HeightIn: 3}, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Format = FormatSVG
			o, err := tt.opts.resolve(testFigure(), "")
			if err != nil {
				t.Fatal(err)
			}
			if o.WidthIn != tt.wantW || o.HeightIn != tt.wantH {
				t.Errorf("size = %gx%g, want %gx%g", o.WidthIn, o.HeightIn, tt.wantW, tt.wantH)
			}
			if o.DPI != DefaultDPI {
				t.Errorf("dpi = %g", o.DPI)
			}
		})
	}
}

func TestFormatErrors(t *testing.T) {
	fig := testFigure()
	if err := Save(fig, filepath.Join(t.TempDir(), "km.gif"), Options{}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("gif err = %v", err)
	}
	if _, err := Encode(fig, Options{}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("no format err = %v", err)
	}
	if _, err := Encode(fig, Options{Format: "svg", DPI: -1}); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("negative dpi err = %v", err)
	}
	c := compose.Wrap(fig).Beside(fig)
	if _, err := Encode(c, Options{Format: FormatJSON}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("composite json err = %v", err)
	}
}

func TestEncodeJSON(t *testing.T) {
	data, err := Encode(testFigure(), Options{Format: "JSON"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"kind": "primary"`) {
		t.Errorf("json = %s", data)
	}
}
