// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ffi

import (
	"github.com/cpmech/fgraph/graph"
	"github.com/cpmech/fgraph/optimize"
)

// DecodeOptions parses the solver-options wire format (spec §6):
// [max_iters, fn_tol, grad_tol, step_tol, verbosity, trust_region_strategy,
// covariance_type_count, covariance_type_ids..., initial_trust_region_radius].
// Negative covariance ids are reserved: -1 = none, -2 = all poses and points.
func DecodeOptions(wire []float64) optimize.Options {
	opts := optimize.DefaultOptions()
	if len(wire) < 7 {
		return opts
	}
	opts.MaxIterations = int(wire[0])
	opts.FunctionTolerance = wire[1]
	opts.GradientTolerance = wire[2]
	opts.StepTolerance = wire[3]
	opts.Verbosity = optimize.Verbosity(int(wire[4]))
	opts.TrustRegionStrategyType = optimize.TrustRegionStrategy(int(wire[5]))

	count := int(wire[6])
	idsStart := 7
	idsEnd := idsStart + count
	if count == 1 && idsEnd <= len(wire) {
		switch int64(wire[idsStart]) {
		case -1:
			opts.Covariance = optimize.CovarianceRequest{None: true}
		case -2:
			opts.Covariance = optimize.CovarianceRequest{AllPosesAndPoints: true}
		default:
			opts.Covariance = optimize.CovarianceRequest{Types: []graph.VariableType{graph.VariableType(int(wire[idsStart]))}}
		}
	} else if count > 1 && idsEnd <= len(wire) {
		types := make([]graph.VariableType, count)
		for i := 0; i < count; i++ {
			types[i] = graph.VariableType(int(wire[idsStart+i]))
		}
		opts.Covariance = optimize.CovarianceRequest{Types: types}
	} else {
		opts.Covariance = optimize.CovarianceRequest{None: true}
	}

	if idsEnd < len(wire) {
		opts.InitialTrustRegionRadius = wire[idsEnd]
	}
	return opts
}

// EncodeSummary produces the solution-info wire format (spec §6):
// [initial_cost, final_cost, successful_steps, unsuccessful_steps,
// total_time_seconds, termination_type, is_solution_usable].
func EncodeSummary(summary optimize.Summary) []float64 {
	usable := 0.0
	if summary.SolutionUsable {
		usable = 1.0
	}
	return []float64{
		summary.InitialCost,
		summary.FinalCost,
		float64(summary.SuccessfulSteps),
		float64(summary.UnsuccessfulSteps),
		summary.TotalTime.Seconds(),
		float64(summary.Termination),
		usable,
	}
}

// Optimize answers optimize(handle, options_struct, seeds, covariance_types,
// out_summary, out_optimised_ids, out_fixed_ids) (spec §6). seeds == nil
// selects the "all" assembly mode. On return, the session's covariance cache
// holds exactly the blocks this call recovered for subsequent NodeCovariance
// queries; it is empty when none were requested or the solution is unusable.
func Optimize(handle int64, optionsWire []float64, seeds []int64, cancel *bool) (summaryWire []float64, optimizedIDs, fixedIDs []int64) {
	s, ok := lookup(handle)
	if !ok {
		return nil, nil, nil
	}
	opts := DecodeOptions(optionsWire)

	s.mu.Lock()
	defer s.mu.Unlock()

	summary, cov := optimize.Optimize(s.g, seeds, opts, cancel)
	s.covar = nil
	if summary.SolutionUsable {
		s.covar = cov
	}
	return EncodeSummary(summary), summary.OptimizedIDs, summary.FixedIDs
}
