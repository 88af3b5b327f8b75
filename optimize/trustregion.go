// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"math"
	"time"

	"github.com/cpmech/fgraph/solver"
)

func gradientNorm(b []float64) float64 {
	sum := 0.0
	for _, v := range b {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// runTrustRegion implements the Levenberg-Marquardt trust-region loop
// (spec §4.5 "Solver options" trust-region branch); Dogleg is accepted in
// Options but, absent a dedicated dogleg step computation in the retrieved
// stack, falls back to the same damped Gauss-Newton step (documented as a
// simplification in DESIGN.md, consistent with spec §1 treating the
// concrete trust-region math as the external Solver's concern).
func runTrustRegion(p *problem, opts Options, cancel *bool) Summary {
	start := time.Now()
	states := p.currentStates()
	p.preOptimizationUpdate(states)

	cost, H, b := p.evaluate(states)
	initialCost := cost

	if p.totalFreeSize == 0 {
		return Summary{
			InitialCost: initialCost, FinalCost: cost,
			Termination: Convergence, SolutionUsable: true,
			OptimizedIDs: p.optimizedIDs, FixedIDs: p.fixedIDs,
			TotalTime: time.Since(start),
		}
	}

	lambda := 1.0 / math.Max(opts.InitialTrustRegionRadius, 1e-12)
	successful, unsuccessful := 0, 0
	termination := NoConvergence
	message := "max iterations reached"

	for iter := 0; iter < opts.MaxIterations; iter++ {
		if gradientNorm(b) < opts.GradientTolerance {
			termination = Convergence
			message = "gradient tolerance reached"
			break
		}
		if cancel != nil && *cancel {
			termination = NoConvergence
			message = "cancelled"
			break
		}

		delta, ok := solver.SolveDamped(H, b, lambda)
		if !ok {
			return Summary{
				InitialCost: initialCost, FinalCost: cost,
				Termination: Failure, SolutionUsable: false,
				Message:      "linear solve failed",
				OptimizedIDs: p.optimizedIDs, FixedIDs: p.fixedIDs,
				TotalTime: time.Since(start),
			}
		}

		stepNorm := gradientNorm(delta)
		trial := p.applyDelta(states, delta)
		trialCost := p.costOnly(trial)

		if trialCost < cost {
			prevCost := cost
			states = trial
			cost, H, b = p.evaluate(states)
			lambda = math.Max(lambda/10, 1e-12)
			successful++
			if cancel != nil && *cancel {
				termination = NoConvergence
				message = "cancelled"
				break
			}
			if math.Abs(prevCost-cost) < opts.FunctionTolerance*math.Max(1, prevCost) {
				termination = Convergence
				message = "function tolerance reached"
				break
			}
			if stepNorm < opts.StepTolerance {
				termination = Convergence
				message = "step tolerance reached"
				break
			}
		} else {
			lambda *= 10
			unsuccessful++
			if lambda > 1e16 {
				termination = NoConvergence
				message = "trust region collapsed"
				break
			}
		}
	}

	p.commit(states)

	return Summary{
		InitialCost:       initialCost,
		FinalCost:         cost,
		SuccessfulSteps:   successful,
		UnsuccessfulSteps: unsuccessful,
		TotalTime:         time.Since(start),
		Termination:       termination,
		Message:           message,
		SolutionUsable:    termination != Failure,
		OptimizedIDs:      p.optimizedIDs,
		FixedIDs:          p.fixedIDs,
	}
}
