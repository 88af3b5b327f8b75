// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package optimize is the optimization driver (spec §4.5): problem
// assembly from a graph.Graph (full or pose-seeded), solver configuration,
// cooperative cancellation, solution summary, and covariance recovery.
//
// It plays the role the teacher's fem solver.go/run_iterations play for a
// finite-element time step: assemble a residual/Jacobian system from the
// domain's elements, solve, update state, check convergence — generalized
// from one Newton-Raphson iteration over a fixed mesh to a Levenberg-
// Marquardt (or line-search) iteration over a graph's free variables.
package optimize

import "github.com/cpmech/fgraph/graph"

// MinimizerType selects the top-level optimization strategy (spec §4.5
// "trust-region vs line-search minimizer").
type MinimizerType int

const (
	TrustRegion MinimizerType = iota
	LineSearch
)

// TrustRegionStrategy selects the trust-region subproblem solver.
type TrustRegionStrategy int

const (
	LevenbergMarquardt TrustRegionStrategy = iota
	Dogleg
)

// DoglegType names a Dogleg subtype. The trust-region minimizer does not
// read it: a Dogleg request runs Levenberg-Marquardt steps.
type DoglegType int

const (
	TraditionalDogleg DoglegType = iota
	SubspaceDogleg
)

// LinearSolverType names a solver for the per-iteration normal-equation (or
// Gauss-Newton) linear system. The minimizers do not read it: every
// trust-region step is a dense Cholesky solve, whichever value is set.
type LinearSolverType int

const (
	SparseNormalCholesky LinearSolverType = iota
	DenseQR
)

// LineSearchDirection selects the search direction for the LineSearch
// minimizer.
type LineSearchDirection int

const (
	SteepestDescent LineSearchDirection = iota
	NonlinearConjugateGradient
	BFGS
	LBFGS
)

// LineSearchStepType names a step-size rule for the LineSearch minimizer.
// The line-search branch does not read it; the step size comes from the
// default line search of the gonum/optimize method chosen by LineSearchDir.
type LineSearchStepType int

const (
	Armijo LineSearchStepType = iota
	Wolfe
)

// Verbosity names a solver logging level. Neither minimizer reads it, so
// every level runs without printing anything.
type Verbosity int

const (
	Silent Verbosity = iota
	Summary
	PerIteration
)

// CovarianceRequest controls which node types get covariance blocks
// recovered after a usable optimization (spec §4.7).
type CovarianceRequest struct {
	// None requests no covariance recovery.
	None bool
	// AllPosesAndPoints requests every pose and point node reachable from
	// the optimization's variable set (reserved code -2 in the wire format).
	AllPosesAndPoints bool
	// Types, when neither None nor AllPosesAndPoints, lists the specific
	// node types to recover.
	Types []graph.VariableType
}

// Options is the closed solver-configuration record the driver passes
// through to the minimizer (spec §4.5 "Solver options").
type Options struct {
	Minimizer MinimizerType

	TrustRegionStrategyType TrustRegionStrategy
	Dogleg                  DoglegType
	LinearSolver            LinearSolverType

	LineSearchDir  LineSearchDirection
	LineSearchStep LineSearchStepType

	InitialTrustRegionRadius float64
	MaxIterations            int
	FunctionTolerance        float64
	GradientTolerance        float64
	StepTolerance            float64
	Verbosity                Verbosity

	UpdateStateEveryIteration bool

	// Ordering maps a variable id to a group number for an optional
	// linear-solver elimination ordering hint.
	Ordering map[int64]int

	NumThreads int

	Covariance CovarianceRequest
}

// DefaultOptions returns the spec's documented defaults (spec §4.5).
func DefaultOptions() Options {
	return Options{
		Minimizer:                TrustRegion,
		TrustRegionStrategyType:  LevenbergMarquardt,
		Dogleg:                   TraditionalDogleg,
		LinearSolver:             SparseNormalCholesky,
		LineSearchDir:            LBFGS,
		LineSearchStep:           Wolfe,
		InitialTrustRegionRadius: 1e4,
		MaxIterations:            200,
		FunctionTolerance:        1e-6,
		GradientTolerance:        1e-10,
		StepTolerance:            1e-8,
		Verbosity:                Silent,
		NumThreads:               1,
		Covariance:               CovarianceRequest{None: true},
	}
}
