// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import "github.com/cpmech/fgraph/graph"

// Optimize runs one optimization call over g (spec §4.5). seeds == nil
// selects "all" problem assembly; a non-nil (possibly empty) slice selects
// pose-seeded partial-graph assembly. cancel, if non-nil, is polled
// cooperatively between iterations (spec §5 "Cancellation").
//
// On a usable result (SolutionUsable true) it also returns the requested
// covariance blocks, or nil if none were requested.
func Optimize(g *graph.Graph, seeds []int64, opts Options, cancel *bool) (Summary, map[int64][][]float64) {
	p := buildProblem(g, seeds)

	var summary Summary
	switch opts.Minimizer {
	case LineSearch:
		summary = runLineSearch(p, opts, cancel)
	default:
		summary = runTrustRegion(p, opts, cancel)
	}

	var cov map[int64][][]float64
	if summary.SolutionUsable && !opts.Covariance.None {
		cov = recoverCovariance(g, p, opts.Covariance, seeds)
	}
	return summary, cov
}
