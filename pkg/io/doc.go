// Package io reads and writes tidy curve tables and serves them as a
// file-backed [curve.Estimator].
//
// # JSON Format
//
//	{
//	  "kind": "survival",
//	  "strata": [
//	    {
//	      "label": "Control",
//	      "records": [
//	        {"time": 0, "estimate": 1, "conf_low": 1, "conf_high": 1, "n_risk": 10},
//	        {"time": 2, "estimate": 0.8, "conf_low": 0.6, "conf_high": 0.95, "n_risk": 10, "n_event": 2}
//	      ]
//	    }
//	  ]
//	}
//
// Competing-risk incidence tables set "kind": "incidence" and an "outcome"
// per stratum. An upstream estimator that failed writes {"error": "..."}
// instead of strata; reading such a file reports an ESTIMATION error.
//
// # CSV Format
//
// CSV files follow the tidy layout produced by common survival packages: a
// header row naming the columns time, estimate, conf.low, conf.high,
// n.risk, n.event, n.censor and optionally strata and outcome. Column order
// is free; rows are grouped into strata in first-seen order.
//
//	time,n.risk,n.event,n.censor,estimate,conf.low,conf.high,strata
//	0,10,0,0,1,1,1,Control
//	2,10,2,1,0.8,0.6,0.95,Control
//
// # Estimator
//
// [FileEstimator] resolves a [curve.Request] dataset to a file under its
// root and reads it with [Import]:
//
//	est := io.FileEstimator{Root: "data"}
//	model, err := curve.Estimate(ctx, est, curve.Request{Dataset: "lung.csv"})
package io
