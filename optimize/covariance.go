// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"github.com/cpmech/fgraph/graph"
	"github.com/cpmech/fgraph/solver"
	"gonum.org/v1/gonum/mat"
)

// svdEigenThreshold is the singular-value cutoff below which a direction is
// treated as gauge-free (null-space) and contributes zero covariance
// instead of blowing up to infinity (spec §4.7 "null-space absorption").
const svdEigenThreshold = 1e-9

// ExpandCovarianceRequest resolves a CovarianceRequest against a candidate
// id set to the concrete list of node ids to recover covariance for (spec
// §4.7 step 1; SPEC_FULL.md §C.3, mirroring the original's
// getCovarianceNodeID). Unlike the rest of this package it takes no
// *problem, so it is independently testable without running an optimize
// call: pass g.AllVariableIDs() for the "all" mode, or the output of
// graph.Graph.NodesInPartialGraph to reproduce a partial-graph expansion.
func ExpandCovarianceRequest(g *graph.Graph, candidateIDs []int64, req CovarianceRequest) []int64 {
	var out []int64
	for _, id := range candidateIDs {
		typ, ok := g.NodeType(id)
		if !ok {
			continue
		}
		switch {
		case req.AllPosesAndPoints:
			if typ == graph.PoseSE3 || typ == graph.PoseSE2 || typ == graph.PoseSIM3 ||
				typ == graph.PointR3 || typ == graph.PointR2 {
				out = append(out, id)
			}
		case len(req.Types) > 0:
			for _, want := range req.Types {
				if typ == want {
					out = append(out, id)
					break
				}
			}
		}
	}
	return out
}

// expandCovarianceRequest resolves a CovarianceRequest among the problem's
// free (optimized) variables: in partial-graph mode the candidate set is
// already restricted to the problem's free blocks, which only contain
// seed-reachable ids.
func expandCovarianceRequest(p *problem, req CovarianceRequest) []int64 {
	candidates := make([]int64, len(p.freeBlocks))
	for i, blk := range p.freeBlocks {
		candidates[i] = blk.id
	}
	return ExpandCovarianceRequest(p.g, candidates, req)
}

// stackJacobian re-linearises every included factor at states and stacks
// each residual block's Jacobian columns (restricted to free variables)
// into one dense (totalResidualRows x totalFreeSize) matrix, the input to
// the dense-SVD covariance estimator (spec §4.7 step 2).
func (p *problem) stackJacobian(states map[int64][]float64) *mat.Dense {
	type rowRange struct{ start, rows int }
	var blocks []rowRange
	totalRows := 0
	rowsByFactor := make(map[int64]int, len(p.factorIDs))
	for _, fid := range p.factorIDs {
		f, ok := p.g.Factor(fid)
		if !ok {
			continue
		}
		ids := f.VariableIDs()
		fblocks := make(map[int64][]float64, len(ids))
		for _, id := range ids {
			fblocks[id] = states[id]
		}
		f.SetJacobianAndResidual(fblocks)
		n := f.ResidualDim()
		rowsByFactor[fid] = n
		blocks = append(blocks, rowRange{totalRows, n})
		totalRows += n
	}

	J := mat.NewDense(totalRows, p.totalFreeSize, nil)
	row := 0
	for i, fid := range p.factorIDs {
		f, ok := p.g.Factor(fid)
		if !ok {
			continue
		}
		ids := f.VariableIDs()
		jac := f.Jacobian()
		for k, id := range ids {
			bi, isFree := p.freeIndex[id]
			if !isFree {
				continue
			}
			blk := p.freeBlocks[bi]
			Jk := jac[k]
			for r := 0; r < blocks[i].rows; r++ {
				for c := 0; c < blk.localDim; c++ {
					J.Set(row+r, blk.offset+c, Jk[r][c])
				}
			}
		}
		row += blocks[i].rows
	}
	return J
}

// recoverCovariance implements spec §4.7: expand the request, run a
// dense-SVD covariance estimator over the stacked Jacobian, and return one
// dim x dim block per requested node, with the local-parameterization
// tangent-space covariance placed in the trailing local_size x local_size
// submatrix (the leading global_size - local_size rows/cols, present only
// for pose-family types whose quaternion component is redundant, are left
// zero).
func recoverCovariance(g *graph.Graph, p *problem, req CovarianceRequest, seeds []int64) map[int64][][]float64 {
	targets := expandCovarianceRequest(p, req)
	if len(targets) == 0 {
		return nil
	}

	states := p.currentStates()
	J := p.stackJacobian(states)

	cov := solver.PseudoInverseFromJacobian(J, svdEigenThreshold)
	if cov == nil {
		return nil
	}

	out := make(map[int64][][]float64, len(targets))
	for _, id := range targets {
		bi := p.freeIndex[id]
		blk := p.freeBlocks[bi]
		globalDim, _ := g.NodeDim(id)
		block := make([][]float64, globalDim)
		for i := range block {
			block[i] = make([]float64, globalDim)
		}
		pad := globalDim - blk.localDim
		for i := 0; i < blk.localDim; i++ {
			for j := 0; j < blk.localDim; j++ {
				block[pad+i][pad+j] = cov[blk.offset+i][blk.offset+j]
			}
		}
		out[id] = block
	}
	return out
}
