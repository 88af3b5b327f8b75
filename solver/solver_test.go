// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"
)

func TestSolveDampedKnownSystem(tst *testing.T) {
	// H = [[4,1],[1,3]], b = [-1,-2] => with lambda=0 solve H*delta = -b
	H := [][]float64{{4, 1}, {1, 3}}
	b := []float64{-1, -2}
	delta, ok := SolveDamped(H, b, 0)
	if !ok {
		tst.Fatalf("expected a positive-definite solve")
	}
	// verify H*delta == -b
	r0 := H[0][0]*delta[0] + H[0][1]*delta[1]
	r1 := H[1][0]*delta[0] + H[1][1]*delta[1]
	chk.Scalar(tst, "H*delta[0]", 1e-10, r0, -b[0])
	chk.Scalar(tst, "H*delta[1]", 1e-10, r1, -b[1])
}

func TestSolveDampedZeroDiagonalUsesLambda(tst *testing.T) {
	H := [][]float64{{0, 0}, {0, 0}}
	b := []float64{1, 1}
	_, ok := SolveDamped(H, b, 1)
	if !ok {
		tst.Fatalf("expected lambda-only diagonal to be positive definite")
	}
}

func TestSolveDampedNonPositiveDefiniteFails(tst *testing.T) {
	H := [][]float64{{1, 2}, {2, 1}}
	b := []float64{1, 1}
	_, ok := SolveDamped(H, b, 0)
	if ok {
		tst.Fatalf("expected indefinite system to fail the Cholesky solve")
	}
}

func TestPseudoInverseFromJacobianFullRank(tst *testing.T) {
	// J = identity(3): JᵀJ = I, covariance should also be I.
	J := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	cov := PseudoInverseFromJacobian(J, 1e-9)
	if cov == nil {
		tst.Fatalf("expected non-nil covariance")
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			chk.Scalar(tst, "cov", 1e-9, cov[i][j], want)
		}
	}
}

func TestPseudoInverseFromJacobianRankDeficient(tst *testing.T) {
	// J has a zero column: the corresponding direction is a null space
	// and must contribute zero covariance rather than blow up.
	J := mat.NewDense(2, 2, []float64{1, 0, 0, 0})
	cov := PseudoInverseFromJacobian(J, 1e-9)
	if cov == nil {
		tst.Fatalf("expected non-nil covariance")
	}
	chk.Scalar(tst, "cov[1][1]", 1e-12, cov[1][1], 0)
}
