// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import "github.com/cpmech/fgraph/param"

// numDiffStep is the central-difference step used to linearise factor
// residuals. The "concrete residual/Jacobian math of each individual
// factor family" is explicitly outside this engine's specified core
// (spec §1); create_cost_function's auto-diff integration is described as
// "a family-specific implementation detail" (spec §9). Lacking a grounded
// auto-diff library in the retrieval pack, every concrete family in this
// package linearises via central finite differences on the tangent space
// instead, which keeps each family's code to "compute the residual" and
// nothing more.
const numDiffStep = 1e-6

// numericalJacobian computes, for each variable block, the residualDim x
// localSize derivative of residualFn by perturbing that block's tangent
// space with param.Plus and re-evaluating. states and paramIDs must be
// parallel slices, one entry per connected variable in argument order.
func numericalJacobian(paramIDs []param.ID, states [][]float64, residualFn func(states [][]float64) []float64) []JacobianBlock {
	base := residualFn(states)
	blocks := make([]JacobianBlock, len(states))
	for k := range states {
		p := param.For(paramIDs[k])
		localDim := localSizeFor(p, len(states[k]))
		block := make(JacobianBlock, len(base))
		for r := range block {
			block[r] = make([]float64, localDim)
		}
		for d := 0; d < localDim; d++ {
			delta := make([]float64, localDim)
			delta[d] = numDiffStep
			plusStates := make([][]float64, len(states))
			copy(plusStates, states)
			plusStates[k] = p.Plus(states[k], delta)
			resPlus := residualFn(plusStates)

			delta[d] = -numDiffStep
			minusStates := make([][]float64, len(states))
			copy(minusStates, states)
			minusStates[k] = p.Plus(states[k], delta)
			resMinus := residualFn(minusStates)

			for r := range base {
				block[r][d] = (resPlus[r] - resMinus[r]) / (2 * numDiffStep)
			}
		}
		blocks[k] = block
	}
	return blocks
}
