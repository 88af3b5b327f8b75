// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"math"

	"github.com/cpmech/gosl/fun"
)

// huberLoss adapts the Huber robustifier to gosl/fun.Func, the same
// pluggable-scalar-function abstraction the teacher threads through
// fem/essenbcs.go's EssentialBc.Fcn — here F/G/H are evaluated at the
// residual block's squared norm s rather than at time t (spec §3
// "optional loss parameter (>=0 enables a robustifier such as Huber)").
type huberLoss struct {
	a float64 // lossParameter, the Huber transition scale
}

// F is rho(s): a quadratic below the transition, a square-root falloff
// beyond it, matching Ceres' HuberLoss.
func (h huberLoss) F(t float64, x []float64) float64 {
	s := x[0]
	if s <= h.a*h.a {
		return s
	}
	return 2*h.a*math.Sqrt(s) - h.a*h.a
}

// G is rho'(s), used to derive the iteratively-reweighted scaling factor.
func (h huberLoss) G(t float64, x []float64) float64 {
	s := x[0]
	if s <= h.a*h.a {
		return 1
	}
	return h.a / math.Sqrt(s)
}

// H is rho''(s); not needed by RobustWeight's first-order reweighting but
// supplied to satisfy fun.Func completely.
func (h huberLoss) H(t float64, x []float64) float64 {
	s := x[0]
	if s <= h.a*h.a {
		return 0
	}
	return -0.5 * h.a * math.Pow(s, -1.5)
}

// RobustWeight evaluates the factor's configured loss function (spec §3,
// §4.3 item 2) against one residual block and returns the block's cost
// contribution plus the scale factor to apply to both the residual and
// its Jacobian before accumulating into the normal equations.
//
// A negative lossParameter disables robustification entirely (cost is the
// plain 0.5*sum(r^2), scale 1), matching the original's "lossParameter < 0
// => no LossFunctionWrapper" convention. Otherwise this is the standard
// IRLS linearisation of a Ceres-style loss: residual and Jacobian are
// scaled by sqrt(rho'(s)), which reproduces the loss's effect on the
// Gauss-Newton normal equations without the second-order (Triggs)
// correction term Ceres applies internally — that correction needs the
// per-element outer product of the residual and is not grounded in
// anything this pack's examples implement, so it is left out rather than
// invented.
func RobustWeight(lossParameter float64, residual []float64) (cost float64, scale float64) {
	s := 0.0
	for _, r := range residual {
		s += r * r
	}
	if lossParameter < 0 {
		return 0.5 * s, 1
	}
	var loss fun.Func = huberLoss{a: lossParameter}
	rho := loss.F(0, []float64{s})
	rhoPrime := loss.G(0, []float64{s})
	if rhoPrime < 0 {
		rhoPrime = 0
	}
	return 0.5 * rho, math.Sqrt(rhoPrime)
}
