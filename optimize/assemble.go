// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"sort"

	"github.com/cpmech/fgraph/graph"
	"github.com/cpmech/fgraph/param"
)

// block describes one free variable's slice of the tangent-space system:
// its id, global dimension, parameterization and offset into the flat
// delta vector.
type block struct {
	id       int64
	paramID  param.ID
	localDim int
	offset   int
}

// problem is the assembled residual-block system for one Optimize call:
// the factor and variable sets selected by §4.5, plus the free-variable
// layout the linear system is built against. Fixed variables still appear
// in residual evaluation (their current state is read, never perturbed)
// but contribute no columns to the system (spec §4.5 "Fix/free application").
type problem struct {
	g             *graph.Graph
	factorIDs     []int64
	freeBlocks    []block
	freeIndex     map[int64]int // id -> index into freeBlocks
	fixedIDs      []int64
	optimizedIDs  []int64
	totalFreeSize int
}

func localSizeOf(g *graph.Graph, id int64) int {
	typ, _ := g.NodeType(id)
	p := param.For(typ.ParamID())
	if n := p.LocalSize(); n >= 0 {
		return n
	}
	dim, _ := g.NodeDim(id)
	return dim
}

// buildProblem assembles the residual-block set per §4.5: "all" when seeds
// is nil, pose-seeded expansion otherwise.
func buildProblem(g *graph.Graph, seeds []int64) *problem {
	var factorIDs []int64
	var varIDs []int64
	if seeds == nil {
		factorIDs = g.FactorIDs()
		varIDs = g.AllVariableIDs()
	} else {
		var included map[int64]bool
		factorIDs, included = g.SelectPartialGraph(seeds)
		for id := range included {
			varIDs = append(varIDs, id)
		}
	}
	sort.Slice(factorIDs, func(i, j int) bool { return factorIDs[i] < factorIDs[j] })
	sort.Slice(varIDs, func(i, j int) bool { return varIDs[i] < varIDs[j] })

	p := &problem{g: g, factorIDs: factorIDs, freeIndex: make(map[int64]int)}
	offset := 0
	for _, id := range varIDs {
		fixed, _ := g.IsFixed(id)
		if fixed {
			p.fixedIDs = append(p.fixedIDs, id)
			continue
		}
		p.optimizedIDs = append(p.optimizedIDs, id)
		typ, _ := g.NodeType(id)
		b := block{id: id, paramID: typ.ParamID(), localDim: localSizeOf(g, id), offset: offset}
		p.freeIndex[id] = len(p.freeBlocks)
		p.freeBlocks = append(p.freeBlocks, b)
		offset += b.localDim
	}
	p.totalFreeSize = offset
	return p
}

// currentStates snapshots every id (free and fixed) the problem's factors
// touch, keyed by id; used as the parameter-block map passed to each
// factor's PreOptimizationUpdate / SetJacobianAndResidual.
func (p *problem) currentStates() map[int64][]float64 {
	states := make(map[int64][]float64)
	for _, fid := range p.factorIDs {
		f, ok := p.g.Factor(fid)
		if !ok {
			continue
		}
		for _, id := range f.VariableIDs() {
			if _, ok := states[id]; ok {
				continue
			}
			st, _ := p.g.GetState(id)
			states[id] = st
		}
	}
	return states
}

func (p *problem) preOptimizationUpdate(states map[int64][]float64) {
	for _, fid := range p.factorIDs {
		f, ok := p.g.Factor(fid)
		if !ok {
			continue
		}
		blocks := make(map[int64][]float64, len(f.VariableIDs()))
		for _, id := range f.VariableIDs() {
			blocks[id] = states[id]
		}
		f.PreOptimizationUpdate(blocks)
	}
}

// evaluate linearises every factor at states, returning the total cost
// (0.5 * sum of squared residuals, the Ceres convention), the Gauss-Newton
// normal-equation matrix H = JᵀJ and gradient b = Jᵀr restricted to free
// variable columns/rows.
func (p *problem) evaluate(states map[int64][]float64) (cost float64, H [][]float64, b []float64) {
	n := p.totalFreeSize
	H = make([][]float64, n)
	for i := range H {
		H[i] = make([]float64, n)
	}
	b = make([]float64, n)

	for _, fid := range p.factorIDs {
		f, ok := p.g.Factor(fid)
		if !ok {
			continue
		}
		ids := f.VariableIDs()
		blocks := make(map[int64][]float64, len(ids))
		for _, id := range ids {
			blocks[id] = states[id]
		}
		f.SetJacobianAndResidual(blocks)
		jac := f.Jacobian()
		res := f.Residual()

		rcost, scale := graph.RobustWeight(f.LossParameter(), res)
		cost += rcost
		if scale != 1 {
			res = scaleVector(res, scale)
			jac = scaleJacobian(jac, scale)
		}

		for i, idI := range ids {
			bi, freeI := p.freeIndex[idI]
			if !freeI {
				continue
			}
			Ji := jac[i]
			blkI := p.freeBlocks[bi]
			for a := 0; a < blkI.localDim; a++ {
				sum := 0.0
				for row := range res {
					sum += Ji[row][a] * res[row]
				}
				b[blkI.offset+a] += sum
			}
			for j, idJ := range ids {
				bj, freeJ := p.freeIndex[idJ]
				if !freeJ {
					continue
				}
				Jj := jac[j]
				blkJ := p.freeBlocks[bj]
				for a := 0; a < blkI.localDim; a++ {
					for c := 0; c < blkJ.localDim; c++ {
						sum := 0.0
						for row := range res {
							sum += Ji[row][a] * Jj[row][c]
						}
						H[blkI.offset+a][blkJ.offset+c] += sum
					}
				}
			}
		}
	}
	return cost, H, b
}

// costOnly evaluates the total cost without building the normal equations,
// for the LM trial-step accept/reject check.
func (p *problem) costOnly(states map[int64][]float64) float64 {
	cost := 0.0
	for _, fid := range p.factorIDs {
		f, ok := p.g.Factor(fid)
		if !ok {
			continue
		}
		ids := f.VariableIDs()
		blocks := make(map[int64][]float64, len(ids))
		for _, id := range ids {
			blocks[id] = states[id]
		}
		f.SetJacobianAndResidual(blocks)
		rcost, _ := graph.RobustWeight(f.LossParameter(), f.Residual())
		cost += rcost
	}
	return cost
}

// scaleVector returns a new slice with every element of v multiplied by s,
// the residual side of a robust-loss reweighting (spec §4.3 item 2).
func scaleVector(v []float64, s float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * s
	}
	return out
}

// scaleJacobian returns a new set of blocks with every entry multiplied by
// s, the Jacobian side of the same reweighting.
func scaleJacobian(blocks []graph.JacobianBlock, s float64) []graph.JacobianBlock {
	out := make([]graph.JacobianBlock, len(blocks))
	for i, blk := range blocks {
		scaled := make(graph.JacobianBlock, len(blk))
		for r, row := range blk {
			scaledRow := make([]float64, len(row))
			for c, v := range row {
				scaledRow[c] = v * s
			}
			scaled[r] = scaledRow
		}
		out[i] = scaled
	}
	return out
}

// applyDelta returns a new states map with every free block advanced by
// delta (a flat vector over the free layout) via its parameterization's
// Plus, leaving fixed variables untouched.
func (p *problem) applyDelta(states map[int64][]float64, delta []float64) map[int64][]float64 {
	out := make(map[int64][]float64, len(states))
	for id, st := range states {
		out[id] = st
	}
	for _, blk := range p.freeBlocks {
		d := delta[blk.offset : blk.offset+blk.localDim]
		out[blk.id] = param.For(blk.paramID).Plus(states[blk.id], d)
	}
	return out
}

// commit writes states back into the graph's variable registry for every
// free block (fixed variables are never written).
func (p *problem) commit(states map[int64][]float64) {
	for _, blk := range p.freeBlocks {
		p.g.SetState(blk.id, states[blk.id])
	}
}
