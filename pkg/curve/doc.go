// Package curve holds the immutable output of a survival estimator.
//
// A [Model] owns one or more strata. Each stratum is an ordered sequence of
// [Record] values, one per observed time, carrying the estimate, its
// confidence bounds and the at-risk, event and censor counts at that time.
// Cumulative event and censor counts are derived once at construction.
//
// Models are produced by an [Estimator] (see the io package for a
// file-backed one) and never modified afterwards: every accessor returns a
// copy. Queries at times that were not observed use step-function
// semantics through [Model.Lookup]:
//
//	m, _ := curve.New(curve.KindSurvival, curve.Stratum{Label: "A", Records: recs})
//	rec, ok := m.Lookup("A", 2.5) // record observed at the greatest time <= 2.5
//
// # Statistic keys
//
// Risk tables and templates refer to record fields by key. The keys
// available on every model are listed in [Keys].
package curve
