package figure

// Theme holds the visual constants shared by every panel of a figure.
type Theme struct {
	FontFamily string
	FontSize   float64
	Palette    []string
	Linetypes  []string
	Background string
	Grid       string
	Ink        string
}

// DefaultTheme returns the stock theme.
func DefaultTheme() Theme {
	return Theme{
		FontFamily: "Helvetica, Arial, sans-serif",
		FontSize:   11,
		Palette:    []string{"#F8766D", "#00BFC4", "#7CAE00", "#C77CFF", "#FF61C3", "#00A9FF", "#CD9600"},
		Linetypes:  []string{"", "6 3", "2 2", "8 3 2 3", "1 3"},
		Background: "#EBEBEB",
		Grid:       "#FFFFFF",
		Ink:        "#222222",
	}
}

// Color returns the palette color for index i, cycling.
func (t Theme) Color(i int) string {
	if len(t.Palette) == 0 {
		return t.Ink
	}
	return t.Palette[i%len(t.Palette)]
}

// Linetype returns the dash array for index i, cycling.
func (t Theme) Linetype(i int) string {
	if len(t.Linetypes) == 0 {
		return ""
	}
	return t.Linetypes[i%len(t.Linetypes)]
}

// TickSize is the font size for tick and cell labels.
func (t Theme) TickSize() float64 { return t.FontSize * 0.85 }

// TitleSize is the font size for figure titles.
func (t Theme) TitleSize() float64 { return t.FontSize * 1.3 }
