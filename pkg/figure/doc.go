// Package figure defines resolved, geometry-final figures.
//
// A [Figure] is what a build produces: one primary [Panel] and zero or more
// risk-table panels stacked vertically, each with a frozen frame, plot area,
// axes and drawable [Element] values in absolute figure coordinates. Figure
// units are CSS pixels (96 per inch) with the origin at the top-left.
//
// Figures are immutable. Accessors return copies, so a figure can be handed
// to renderers, exporters and composition tools without coordination.
// Two figures with identical content have the same [Figure.ID].
package figure
