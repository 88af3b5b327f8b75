// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import "testing"

// A negative lossParameter disables robustification entirely: the original's
// "lossParameter < 0 => no LossFunctionWrapper" convention.
func TestRobustWeightDisabledReproducesPlainCost(tst *testing.T) {
	res := []float64{3, 4}
	cost, scale := RobustWeight(-1, res)
	wantCost := 0.5 * (3*3 + 4*4)
	if cost != wantCost {
		tst.Fatalf("expected plain cost %v, got %v", wantCost, cost)
	}
	if scale != 1 {
		tst.Fatalf("expected scale 1 when disabled, got %v", scale)
	}
}

// Below the Huber transition, the loss is the identity and behaves exactly
// like the disabled case.
func TestRobustWeightBelowTransitionIsQuadratic(tst *testing.T) {
	res := []float64{0.1, 0.1}
	cost, scale := RobustWeight(1.0, res)
	wantCost := 0.5 * (0.1*0.1 + 0.1*0.1)
	if cost != wantCost {
		tst.Fatalf("expected quadratic cost %v below the transition, got %v", wantCost, cost)
	}
	if scale != 1 {
		tst.Fatalf("expected scale 1 below the transition, got %v", scale)
	}
}

// Beyond the transition, Huber downweights: the scale must shrink below 1
// and the robustified cost must be strictly less than the plain quadratic
// cost it replaces.
func TestRobustWeightBeyondTransitionDownweights(tst *testing.T) {
	res := []float64{10, 0}
	a := 1.0
	cost, scale := RobustWeight(a, res)

	if scale >= 1 {
		tst.Fatalf("expected scale < 1 for a large residual past the Huber transition, got %v", scale)
	}
	plainCost := 0.5 * (10.0 * 10.0)
	if cost >= plainCost {
		tst.Fatalf("expected robustified cost %v to be smaller than plain cost %v", cost, plainCost)
	}
}
