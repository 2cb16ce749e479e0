// Package render turns resolved figures and compositions into output
// formats.
//
// # Formats
//
//   - [SVG] writes any [compose.Unit] as a standalone SVG document. Each
//     placed figure becomes a nested <svg> with its own viewBox, so the
//     figure is scaled uniformly into its box.
//   - [PNG] and [PDF] convert the SVG with the external rsvg-convert tool
//     (from librsvg). [ToPNG], [ToPNGAtDPI] and [ToPDF] convert arbitrary
//     SVG bytes.
//   - [JSON] serialises a figure's resolved geometry for other tooling.
//   - [Table] prints the risk tables of a figure for a terminal.
//
// Example:
//
//	fig, _ := assembly.New(model).AddRiskTable(risktable.Default()).Build()
//	svg := render.SVG(fig, render.WithPhysicalSize(7, 5))
//	png, err := render.ToPNGAtDPI(svg, 300)
package render
