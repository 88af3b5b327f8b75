// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import "github.com/cpmech/fgraph/param"

// marginalFactor is the linear-Gaussian factor synthesized by Schur-complement
// elimination (spec §3 "Marginal factor", §4.6). Unlike every other family
// it carries no measurement/information of its own — Jprime/rprime already
// are the weighted square-root quantities — and it is immutable once built:
// SetMeasurement/SetInformation/SetLossParameter panic, matching the design
// note that a marginal factor's "schema queries" for inapplicable setters are
// genuine programmer errors, not recoverable conditions (spec §9).
type marginalFactor struct {
	retainedIDs    []int64
	retainedTypes  map[int64]VariableType
	retainedParams map[int64]param.ID
	localSizes     map[int64]int
	offsets        map[int64]int
	linPoint       map[int64][]float64

	jPrime [][]float64 // retainedBlockSize x retainedBlockSize
	rPrime []float64   // retainedBlockSize

	jac []JacobianBlock
	res []float64
}

func (m *marginalFactor) FactorType() FactorType { return Marginal }

func (m *marginalFactor) VariableIDs() []int64 { return m.retainedIDs }

func (m *marginalFactor) VariableType(id int64) VariableType { return m.retainedTypes[id] }

func (m *marginalFactor) VariableDim(id int64) int { return m.retainedTypes[id].Dim() }

// DefaultState returns the linearization-point state captured at
// marginalization time; by construction every retained id already exists
// in the registry, so this path is only exercised defensively.
func (m *marginalFactor) DefaultState(id int64) []float64 { return m.linPoint[id] }

func (m *marginalFactor) LocalParameterization(id int64) param.ID { return m.retainedParams[id] }

func (m *marginalFactor) LossParameter() float64 { return -1 }
func (m *marginalFactor) SetLossParameter(float64) {
	panic("graph: marginal factor is immutable after creation")
}

func (m *marginalFactor) Measurement() []float64 { return nil }
func (m *marginalFactor) Information() []float64 { return nil }
func (m *marginalFactor) SetMeasurement([]float64) {
	panic("graph: marginal factor is immutable after creation")
}
func (m *marginalFactor) SetInformation([]float64) {
	panic("graph: marginal factor is immutable after creation")
}

func (m *marginalFactor) PreOptimizationUpdate(map[int64][]float64) {}

// SetJacobianAndResidual evaluates r' + J'*Δx per spec §4.6 "Marginal
// factor evaluation": Δx is the on-manifold delta from the linearization
// point, computed per retained variable through its own parameterization's
// Minus (Euclidean subtraction for R^n types, the quaternion small-angle
// convention for SE(3)/SIM(3)/pose types).
func (m *marginalFactor) SetJacobianAndResidual(blocks map[int64][]float64) {
	n := len(m.rPrime)
	delta := make([]float64, n)
	for _, id := range m.retainedIDs {
		p := param.For(m.retainedParams[id])
		dx := p.Minus(blocks[id], m.linPoint[id])
		off := m.offsets[id]
		copy(delta[off:off+m.localSizes[id]], dx)
	}
	res := make([]float64, n)
	copy(res, m.rPrime)
	for r := 0; r < n; r++ {
		row := m.jPrime[r]
		sum := 0.0
		for c := 0; c < n; c++ {
			sum += row[c] * delta[c]
		}
		res[r] += sum
	}
	m.res = res

	jac := make([]JacobianBlock, len(m.retainedIDs))
	for k, id := range m.retainedIDs {
		off := m.offsets[id]
		size := m.localSizes[id]
		block := make(JacobianBlock, n)
		for r := 0; r < n; r++ {
			block[r] = append([]float64{}, m.jPrime[r][off:off+size]...)
		}
		jac[k] = block
	}
	m.jac = jac
}

func (m *marginalFactor) Jacobian() []JacobianBlock { return m.jac }
func (m *marginalFactor) Residual() []float64       { return m.res }
func (m *marginalFactor) ResidualDim() int          { return len(m.rPrime) }
