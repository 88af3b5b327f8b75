// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"math"
	"sort"

	"github.com/cpmech/fgraph/param"
	"github.com/cpmech/fgraph/verr"
	"gonum.org/v1/gonum/mat"
)

// eigenValueThreshold is the pseudo-inverse / square-root-synthesis cutoff
// from spec §4.6 step 6-7: eigenvalues at or below this are treated as
// gauge-free (rank-deficient) directions and zeroed rather than inverted.
const eigenValueThreshold = 1e-6

// MarginalizeFactor eliminates the given factor set via Schur complement
// (spec §4.6). The subset must be "separator-preserving": variables
// connected only to factors in the subset are marginalized out (M);
// variables with factors outside the subset are retained (R). Returns the
// new marginal factor's id, or a reserved sentinel (verr.FixedWouldMarginalize,
// verr.NoRetained) without mutating the graph.
func (g *Graph) MarginalizeFactor(factorIDs []int64) (int64, int) {
	factorSet := make(map[int64]bool, len(factorIDs))
	for _, id := range factorIDs {
		if _, ok := g.factors[id]; ok {
			factorSet[id] = true
		}
	}
	touched := make(map[int64]bool)
	for fid := range factorSet {
		for _, vid := range g.factors[fid].VariableIDs() {
			touched[vid] = true
		}
	}

	var m, r []int64
	for vid := range touched {
		onlyInSet := true
		for otherFid := range g.incident[vid] {
			if !factorSet[otherFid] {
				onlyInSet = false
				break
			}
		}
		if onlyInSet {
			if fixed, _ := g.vars.isFixed(vid); fixed {
				return -1, verr.FixedWouldMarginalize
			}
			m = append(m, vid)
		} else {
			r = append(r, vid)
		}
	}
	if len(r) == 0 {
		return -1, verr.NoRetained
	}
	sort.Slice(m, func(i, j int) bool { return m[i] < m[j] })
	sort.Slice(r, func(i, j int) bool { return r[i] < r[j] })

	order := append(append([]int64{}, m...), r...)
	localSizeOf := func(vid int64) int {
		typ, _ := g.vars.typeOf(vid)
		return localSize(typ)
	}
	offsets := make(map[int64]int, len(order))
	total := 0
	for _, vid := range order {
		offsets[vid] = total
		total += localSizeOf(vid)
	}
	mSize := 0
	for _, vid := range m {
		mSize += localSizeOf(vid)
	}
	rSize := total - mSize

	linPoint := make(map[int64][]float64, len(touched))
	for vid := range touched {
		st, _ := g.vars.getState(vid)
		linPoint[vid] = st
	}

	H := make([][]float64, total)
	for i := range H {
		H[i] = make([]float64, total)
	}
	b := make([]float64, total)

	var sortedFactorIDs []int64
	for fid := range factorSet {
		sortedFactorIDs = append(sortedFactorIDs, fid)
	}
	sort.Slice(sortedFactorIDs, func(i, j int) bool { return sortedFactorIDs[i] < sortedFactorIDs[j] })

	for _, fid := range sortedFactorIDs {
		f := g.factors[fid]
		ids := f.VariableIDs()
		blocks := make(map[int64][]float64, len(ids))
		for _, id := range ids {
			blocks[id] = linPoint[id]
		}
		f.SetJacobianAndResidual(blocks)
		jac := f.Jacobian()
		res := f.Residual()

		for i, idI := range ids {
			Ji := jac[i]
			oi := offsets[idI]
			li := localSizeOf(idI)
			for a := 0; a < li; a++ {
				sum := 0.0
				for row := 0; row < len(res); row++ {
					sum += Ji[row][a] * res[row]
				}
				b[oi+a] += sum
			}
			for j, idJ := range ids {
				Jj := jac[j]
				oj := offsets[idJ]
				lj := localSizeOf(idJ)
				for a := 0; a < li; a++ {
					for c := 0; c < lj; c++ {
						sum := 0.0
						for row := 0; row < len(res); row++ {
							sum += Ji[row][a] * Jj[row][c]
						}
						H[oi+a][oj+c] += sum
					}
				}
			}
		}
	}

	var jPrime [][]float64
	var rPrime []float64

	if mSize == 0 {
		jPrime, rPrime = sqrtFactorize(H, b, rSize)
	} else {
		Hmm := subMatrix(H, 0, mSize, 0, mSize)
		Hrr := subMatrix(H, mSize, total, mSize, total)
		Hrm := subMatrix(H, mSize, total, 0, mSize)
		Hmr := subMatrix(H, 0, mSize, mSize, total)
		bm := b[0:mSize]
		br := b[mSize:total]

		HmmSym := symmetrize(Hmm, mSize)
		HmmPinv := pseudoInverseSym(HmmSym, mSize)

		// H' = Hrr - Hrm * Hmm^-1 * Hmr ; b' = br - Hrm * Hmm^-1 * bm
		HrmPinv := matMul(Hrm, HmmPinv, rSize, mSize, mSize)
		schurH := matSub(Hrr, matMul(HrmPinv, Hmr, rSize, mSize, rSize), rSize, rSize)
		schurB := vecSub(br, matVec(HrmPinv, bm, rSize, mSize), rSize)

		jPrime, rPrime = sqrtFactorize(schurH, schurB, rSize)
	}

	retainedTypes := make(map[int64]VariableType, len(r))
	retainedParams := make(map[int64]param.ID, len(r))
	retainedLocalSizes := make(map[int64]int, len(r))
	retainedOffsets := make(map[int64]int, len(r))
	retainedLinPoint := make(map[int64][]float64, len(r))
	off := 0
	for _, vid := range r {
		typ, _ := g.vars.typeOf(vid)
		retainedTypes[vid] = typ
		retainedParams[vid] = typ.ParamID()
		sz := localSizeOf(vid)
		retainedLocalSizes[vid] = sz
		retainedOffsets[vid] = off
		off += sz
		retainedLinPoint[vid] = linPoint[vid]
	}

	mf := &marginalFactor{
		retainedIDs:    append([]int64{}, r...),
		retainedTypes:  retainedTypes,
		retainedParams: retainedParams,
		localSizes:     retainedLocalSizes,
		offsets:        retainedOffsets,
		linPoint:       retainedLinPoint,
		jPrime:         jPrime,
		rPrime:         rPrime,
	}

	for _, fid := range sortedFactorIDs {
		g.removeFactorNoGC(fid)
	}
	g.collectDangling()

	newID := g.nextFactorID
	g.nextFactorID++
	g.factors[newID] = mf
	g.factorGroup[newID] = 0
	for _, vid := range r {
		g.addIncident(vid, newID)
	}
	g.indexAdd(newID, mf, 0)
	return newID, verr.Present
}

// MarginalizeNode eliminates the factor set touching id, plus any
// velocity/IMU-bias prior factors on ancillary nodes that would become
// isolated by that removal (spec §4.6 "Marginalize node").
func (g *Graph) MarginalizeNode(id int64) (int64, int) {
	incidentSet, ok := g.incident[id]
	if !ok {
		return -1, verr.Absent
	}
	factorSet := make(map[int64]bool)
	for fid := range incidentSet {
		factorSet[fid] = true
	}
	// pull in ancillary prior factors that would be left dangling
	for fid := range incidentSet {
		f := g.factors[fid]
		for _, vid := range f.VariableIDs() {
			if vid == id {
				continue
			}
			typ, _ := g.vars.typeOf(vid)
			if typ != VelocityR3 && typ != IMUBias {
				continue
			}
			allInSet := true
			for otherFid := range g.incident[vid] {
				if otherFid == fid || factorSet[otherFid] {
					continue
				}
				allInSet = false
			}
			if !allInSet {
				continue
			}
			for otherFid := range g.incident[vid] {
				factorSet[otherFid] = true
			}
		}
	}
	ids := make([]int64, 0, len(factorSet))
	for fid := range factorSet {
		ids = append(ids, fid)
	}
	return g.MarginalizeFactor(ids)
}

// --- plain dense-matrix helpers, local to the marginalization engine ---

func subMatrix(a [][]float64, r0, r1, c0, c1 int) [][]float64 {
	out := make([][]float64, r1-r0)
	for i := range out {
		out[i] = append([]float64{}, a[r0+i][c0:c1]...)
	}
	return out
}

func symmetrize(a [][]float64, n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[i][j] = 0.5 * (a[i][j] + a[j][i])
		}
	}
	return out
}

func matMul(a, b [][]float64, rows, inner, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = make([]float64, cols)
		for k := 0; k < inner; k++ {
			aik := a[i][k]
			if aik == 0 {
				continue
			}
			for j := 0; j < cols; j++ {
				out[i][j] += aik * b[k][j]
			}
		}
	}
	return out
}

func matVec(a [][]float64, v []float64, rows, cols int) []float64 {
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		sum := 0.0
		for j := 0; j < cols; j++ {
			sum += a[i][j] * v[j]
		}
		out[i] = sum
	}
	return out
}

func matSub(a, b [][]float64, rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			out[i][j] = a[i][j] - b[i][j]
		}
	}
	return out
}

func vecSub(a, b []float64, n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = a[i] - b[i]
	}
	return out
}

// eigenSymmetric decomposes a (flattened row-major) n x n symmetric matrix
// via gonum's EigenSym, returning eigenvalues and the matching eigenvector
// columns.
func eigenSymmetric(a [][]float64, n int) (values []float64, vectors [][]float64) {
	flat := make([]float64, n*n)
	for i := 0; i < n; i++ {
		copy(flat[i*n:(i+1)*n], a[i])
	}
	sym := mat.NewSymDense(n, flat)
	var es mat.EigenSym
	es.Factorize(sym, true)
	values = es.Values(nil)
	var vecDense mat.Dense
	es.VectorsTo(&vecDense)
	vectors = make([][]float64, n)
	for i := 0; i < n; i++ {
		vectors[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			vectors[i][j] = vecDense.At(i, j)
		}
	}
	return values, vectors
}

// pseudoInverseSym builds Hmm^-1 via eigendecomposition, inverting
// eigenvalues above eigenValueThreshold and zeroing the rest (spec §4.6
// step 6).
func pseudoInverseSym(a [][]float64, n int) [][]float64 {
	values, vectors := eigenSymmetric(a, n)
	inv := make([]float64, n)
	for i, lambda := range values {
		if lambda > eigenValueThreshold {
			inv[i] = 1 / lambda
		}
	}
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sum := 0.0
			for k := 0; k < n; k++ {
				sum += vectors[i][k] * inv[k] * vectors[j][k]
			}
			out[i][j] = sum
		}
	}
	return out
}

// sqrtFactorize eigendecomposes H' and synthesizes the square-root
// Jacobian J' = diag(sqrt(lambda)) * V^T and residual
// r' = diag(1/sqrt(lambda)) * V^T * b', clipping at the same threshold
// (spec §4.6 step 7).
func sqrtFactorize(hPrime [][]float64, bPrime []float64, n int) ([][]float64, []float64) {
	if n == 0 {
		return nil, nil
	}
	sym := symmetrize(hPrime, n)
	values, vectors := eigenSymmetric(sym, n)

	vT := make([][]float64, n) // V^T
	for i := 0; i < n; i++ {
		vT[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			vT[i][j] = vectors[j][i]
		}
	}

	jPrime := make([][]float64, n)
	rPrime := make([]float64, n)
	for i, lambda := range values {
		row := vT[i]
		if lambda > eigenValueThreshold {
			sq := math.Sqrt(lambda)
			scaled := make([]float64, n)
			for j := 0; j < n; j++ {
				scaled[j] = sq * row[j]
			}
			jPrime[i] = scaled

			sum := 0.0
			for j := 0; j < n; j++ {
				sum += row[j] * bPrime[j]
			}
			rPrime[i] = sum / sq
		} else {
			jPrime[i] = make([]float64, n)
			rPrime[i] = 0
		}
	}
	return jPrime, rPrime
}
