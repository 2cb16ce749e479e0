package render

import (
	"encoding/json"

	"github.com/matzehuels/survfit/pkg/figure"
	"github.com/matzehuels/survfit/pkg/scale"
)

type jsonOutput struct {
	ID          string      `json:"id"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	Proportions []float64   `json:"proportions"`
	Panels      []jsonPanel `json:"panels"`
}

type jsonPanel struct {
	Kind     string         `json:"kind"`
	Name     string         `json:"name"`
	Frame    jsonRect       `json:"frame"`
	PlotArea jsonRect       `json:"plot_area"`
	Facets   []jsonRect     `json:"facets,omitempty"`
	XAxis    jsonAxis       `json:"x_axis"`
	YAxis    *jsonAxis      `json:"y_axis,omitempty"`
	Elements map[string]int `json:"elements,omitempty"`
	Table    *jsonTable     `json:"table,omitempty"`
}

type jsonRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

type jsonAxis struct {
	Min       float64   `json:"min"`
	Max       float64   `json:"max"`
	Breaks    []float64 `json:"breaks"`
	Labels    []string  `json:"labels"`
	Transform string    `json:"transform,omitempty"`
}

type jsonTable struct {
	Times []float64      `json:"times"`
	Rows  []jsonTableRow `json:"rows"`
}

type jsonTableRow struct {
	Block  string   `json:"block"`
	Header string   `json:"header"`
	Cells  []string `json:"cells"`
}

// JSON serialises the resolved geometry of fig. Elements are summarised as
// counts per class.
func JSON(fig *figure.Figure) ([]byte, error) {
	out := jsonOutput{
		ID:          fig.ID(),
		Width:       fig.Width(),
		Height:      fig.Height(),
		Proportions: fig.Proportions(),
	}
	for _, p := range fig.Panels() {
		jp := jsonPanel{
			Kind:     string(p.Kind),
			Name:     p.Name,
			Frame:    toRect(p.Frame),
			PlotArea: toRect(p.PlotArea),
			XAxis:    toAxis(p.XAxis),
		}
		for _, f := range p.Facets {
			jp.Facets = append(jp.Facets, toRect(f))
		}
		if p.Kind == figure.KindPrimary {
			y := toAxis(p.YAxis)
			jp.YAxis = &y
		}
		if len(p.Elements) > 0 {
			jp.Elements = make(map[string]int)
			for _, el := range p.Elements {
				jp.Elements[figure.ClassOf(el)]++
			}
		}
		if p.Table != nil {
			jt := &jsonTable{Times: p.Table.Times}
			for _, r := range p.Table.Rows {
				jt.Rows = append(jt.Rows, jsonTableRow{Block: r.Block, Header: r.Header, Cells: r.Cells})
			}
			jp.Table = jt
		}
		out.Panels = append(out.Panels, jp)
	}
	return json.MarshalIndent(out, "", "  ")
}

func toRect(r figure.Rect) jsonRect { return jsonRect{X: r.X, Y: r.Y, W: r.W, H: r.H} }

func toAxis(a scale.Axis) jsonAxis {
	ja := jsonAxis{Min: a.Min, Max: a.Max, Breaks: a.Breaks, Labels: a.Labels}
	if a.Transform != nil {
		ja.Transform = a.Transform.Name
	}
	return ja
}
