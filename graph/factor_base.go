// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import "github.com/cpmech/fgraph/param"

// slotSchema is the per-variable-id schema a family declares for itself:
// type, dimension and parameterization. Concrete families fill this in
// their constructor; factorBase answers the schema-query trait methods
// from it, the same way the teacher's Info struct in fem/element.go
// answers "Dofs" queries for an element without each element repeating
// the bookkeeping.
type slotSchema struct {
	id    int64
	typ   VariableType
	param param.ID
}

// factorBase holds the fields common to every concrete factor family and
// implements the parts of the Factor trait that are purely data-driven
// (schema queries, measurement/information/loss accessors, cached
// jacobian/residual accessors). Concrete families embed it and supply
// DefaultState, PreOptimizationUpdate and SetJacobianAndResidual.
type factorBase struct {
	ftype       FactorType
	schema      []slotSchema
	measurement []float64
	information []float64
	loss        float64

	jac    []JacobianBlock
	res    []float64
	resDim int
}

func (b *factorBase) FactorType() FactorType { return b.ftype }

func (b *factorBase) VariableIDs() []int64 {
	out := make([]int64, len(b.schema))
	for i, s := range b.schema {
		out[i] = s.id
	}
	return out
}

func (b *factorBase) VariableType(id int64) VariableType {
	for _, s := range b.schema {
		if s.id == id {
			return s.typ
		}
	}
	return 0
}

func (b *factorBase) VariableDim(id int64) int {
	for _, s := range b.schema {
		if s.id == id {
			return s.typ.Dim()
		}
	}
	return 0
}

func (b *factorBase) LocalParameterization(id int64) param.ID {
	for _, s := range b.schema {
		if s.id == id {
			return s.param
		}
	}
	return param.IdentityN
}

func (b *factorBase) LossParameter() float64     { return b.loss }
func (b *factorBase) SetLossParameter(p float64) { b.loss = p }

func (b *factorBase) Measurement() []float64 { return b.measurement }
func (b *factorBase) Information() []float64 { return b.information }

func (b *factorBase) SetMeasurement(m []float64) { b.measurement = m }
func (b *factorBase) SetInformation(i []float64) { b.information = i }

func (b *factorBase) Jacobian() []JacobianBlock { return b.jac }
func (b *factorBase) Residual() []float64       { return b.res }
func (b *factorBase) ResidualDim() int          { return b.resDim }

// PreOptimizationUpdate is a no-op by default; only bias-sensitive
// families (IMU) override it.
func (b *factorBase) PreOptimizationUpdate(map[int64][]float64) {}

// localSize returns the tangent-space size for a connected id, used when
// sizing Jacobian columns (pose types use 6/7 local vs 7/8 global, etc).
func localSize(typ VariableType) int {
	return localSizeFor(param.For(typ.ParamID()), typ.Dim())
}

// localSizeFor resolves the IdentityN placeholder (-1) parameterization
// size against a concrete global dimension.
func localSizeFor(p param.Parameterization, globalDim int) int {
	if n := p.LocalSize(); n >= 0 {
		return n
	}
	return globalDim
}
