// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"time"

	gonumopt "gonum.org/v1/gonum/optimize"
)

// runLineSearch delegates to gonum/optimize for the line-search minimizer
// branch (spec §4.5): the flat vector x lives in the tangent space around
// the states captured when the call started, so Func/Grad re-linearise
// through the same factor trait the trust-region branch uses, and the
// result is mapped back through each block's own Plus at the end. This is
// the engine's one dependency on an actual external "Solver" library
// (spec §1) rather than a hand-rolled minimizer.
func runLineSearch(p *problem, opts Options, cancel *bool) Summary {
	start := time.Now()
	origin := p.currentStates()
	p.preOptimizationUpdate(origin)

	initialCost, _, initialGrad := p.evaluate(origin)

	if p.totalFreeSize == 0 {
		return Summary{
			InitialCost: initialCost, FinalCost: initialCost,
			Termination: Convergence, SolutionUsable: true,
			OptimizedIDs: p.optimizedIDs, FixedIDs: p.fixedIDs,
			TotalTime: time.Since(start),
		}
	}
	_ = initialGrad

	problem := gonumopt.Problem{
		Func: func(x []float64) float64 {
			states := p.applyDelta(origin, x)
			return p.costOnly(states)
		},
		Grad: func(grad, x []float64) {
			states := p.applyDelta(origin, x)
			_, _, b := p.evaluate(states)
			copy(grad, b)
		},
	}

	var method gonumopt.Method
	switch opts.LineSearchDir {
	case SteepestDescent:
		method = &gonumopt.GradientDescent{}
	case NonlinearConjugateGradient:
		method = &gonumopt.CG{}
	case BFGS:
		method = &gonumopt.BFGS{}
	default:
		method = &gonumopt.LBFGS{}
	}

	settings := &gonumopt.Settings{
		GradientThreshold: opts.GradientTolerance,
		MajorIterations:   opts.MaxIterations,
	}
	if cancel != nil {
		settings.Converger = cancelConverger{cancel: cancel}
	}

	x0 := make([]float64, p.totalFreeSize)
	result, err := gonumopt.Minimize(problem, x0, settings, method)

	termination := NoConvergence
	usable := true
	message := ""
	if err != nil {
		termination = Failure
		usable = false
		message = err.Error()
	} else if result.Status == gonumopt.Success {
		termination = Convergence
	}

	var finalCost float64
	if result != nil {
		finalCost = result.F
		final := p.applyDelta(origin, result.X)
		p.commit(final)
	} else {
		finalCost = initialCost
	}

	return Summary{
		InitialCost:    initialCost,
		FinalCost:      finalCost,
		Termination:    termination,
		Message:        message,
		SolutionUsable: usable,
		OptimizedIDs:   p.optimizedIDs,
		FixedIDs:       p.fixedIDs,
		TotalTime:      time.Since(start),
	}
}

// cancelConverger adapts the cooperative bool-pointer cancellation (spec
// §5 "Cancellation") to gonum/optimize's Converger interface.
type cancelConverger struct {
	cancel *bool
}

func (c cancelConverger) Init(nTasks int) {}

func (c cancelConverger) Converged(loc *gonumopt.Location) gonumopt.Status {
	if c.cancel != nil && *c.cancel {
		return gonumopt.Success
	}
	return gonumopt.NotTerminated
}
