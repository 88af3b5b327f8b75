// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solver is the adapter boundary onto the dense linear-algebra and
// minimization routines the optimizer driver needs: a damped normal-
// equation solve for the trust-region step, and a dense-SVD pseudo-inverse
// for covariance recovery. It plays the role the teacher's fem LinSol
// (gosl/la-backed) plays for a finite-element stiffness solve, generalized
// from a sparse FE system to the small dense systems a factor-graph
// optimize call assembles.
//
// The concrete auto-diff/sparse-solver library the original system calls
// "the Solver" is explicitly out of scope (spec §1); gonum/mat is this
// engine's grounded substitute for the damped solve and the pseudo-inverse,
// wired in behind this package. The optimizer driver still imports gonum/mat
// itself for the stacked covariance Jacobian, and gonum/optimize for its
// line-search branch.
package solver

import "gonum.org/v1/gonum/mat"

// SolveDamped solves (H + lambda*diag(H)) delta = -b via Cholesky
// (Levenberg-Marquardt's Marquardt scaling), returning ok=false if the
// damped system is not positive definite.
func SolveDamped(H [][]float64, b []float64, lambda float64) (delta []float64, ok bool) {
	n := len(b)
	flat := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := H[i][j]
			if i == j {
				v += lambda * H[i][i]
				if H[i][i] == 0 {
					v = lambda
				}
			}
			flat[i*n+j] = v
		}
	}
	sym := mat.NewSymDense(n, flat)
	var chol mat.Cholesky
	if !chol.Factorize(sym) {
		return nil, false
	}
	rhs := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		rhs.SetVec(i, -b[i])
	}
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, rhs); err != nil {
		return nil, false
	}
	delta = make([]float64, n)
	for i := 0; i < n; i++ {
		delta[i] = x.AtVec(i)
	}
	return delta, true
}

// PseudoInverseFromJacobian builds the dense-SVD pseudo-inverse of JᵀJ
// (the Gauss-Newton normal-equation matrix) from the stacked residual
// Jacobian J, treating singular values at or below threshold as a
// null-space direction contributing zero covariance rather than infinity
// (spec §4.7 "dense-SVD covariance estimator ... null-space absorption").
func PseudoInverseFromJacobian(J *mat.Dense, threshold float64) [][]float64 {
	_, n := J.Dims()
	var svd mat.SVD
	if !svd.Factorize(J, mat.SVDThin) {
		return nil
	}
	values := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	invSigma2 := make([]float64, len(values))
	for i, s := range values {
		if s > threshold {
			invSigma2[i] = 1 / (s * s)
		}
	}
	cols := len(values)
	cov := make([][]float64, n)
	for i := range cov {
		cov[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sum := 0.0
			for k := 0; k < cols; k++ {
				sum += v.At(i, k) * invSigma2[k] * v.At(j, k)
			}
			cov[i][j] = sum
		}
	}
	return cov
}
