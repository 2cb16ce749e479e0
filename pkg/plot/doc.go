// Package plot describes and renders the primary curve panel.
//
// A [Spec] is the recipe for one panel: the curve model, an ordered list of
// [Overlay] values (confidence band, censor marks, quantile guides,
// comparison annotations), one optional [scale.Scale] per axis, labels,
// legend placement, faceting and theme. Specs are edited only through
// [Op] values, which is how the assembly package keeps recipes deferred:
//
//	spec := plot.NewSpec(model)
//	for _, op := range []plot.Op{plot.ConfidenceBand(), plot.ScaleX(scale.Scale{Breaks: br})} {
//	    if err := op(&spec); err != nil { ... }
//	}
//	panel, err := plot.Render(spec, plot.DefaultRoles())
//
// Scales are single slots. Applying [ScaleX] twice keeps only the second
// request; nothing from the first survives.
//
// Rendering is two-phase. [Resolve] computes axes and the margins the panel
// needs for its legend, tick labels, axis labels and wrapped titles.
// [Resolved.Draw] lays the panel out with caller-chosen margins, which lets
// the assembly widen the left margin so that stacked panels share one plot
// area edge. [Render] is Resolve followed by Draw with the panel's own
// margins.
//
// # Aesthetic roles
//
// By default strata map to color and competing-risk outcomes map to
// linetype. [Roles] swaps the two. Pass roles explicitly where possible;
// [SetDefaultRoles] changes the process-wide fallback and returns the
// function that restores it. The fallback is not goroutine-scoped, so
// concurrent sessions must not overlap their set/reset windows.
package plot
