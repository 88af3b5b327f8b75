// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import "github.com/cpmech/fgraph/param"

// JacobianBlock is the residualDim x localDim derivative of a factor's
// residual with respect to one connected variable's tangent space.
type JacobianBlock [][]float64

// Factor is the uniform capability set every factor family implements
// (spec §4.3). It plays the role the teacher's Elem interface plays for a
// finite element: the optimizer (like fem's solver.go) dispatches purely
// through this trait, never through a concrete family type, which keeps it
// decoupled from the ever-growing factor catalog.
type Factor interface {
	// FactorType reports the closed-enumeration family this factor belongs to.
	FactorType() FactorType

	// VariableIDs returns the connected node ids, in argument order.
	VariableIDs() []int64
	// VariableType returns the declared type for one connected node id.
	VariableType(id int64) VariableType
	// VariableDim returns the declared global dimension for one connected node id.
	VariableDim(id int64) int
	// DefaultState returns the family-provided default state for a
	// variable created implicitly by adding this factor.
	DefaultState(id int64) []float64
	// LocalParameterization identifies the manifold update rule for one slot.
	LocalParameterization(id int64) param.ID

	// LossParameter returns the configured robust-loss parameter; >=0
	// enables a Huber-style robustifier, <0 disables it (spec §3).
	LossParameter() float64
	SetLossParameter(p float64)

	// Measurement and Information expose the factor's immutable
	// calibration data; SetMeasurement/SetInformation mutate it in place.
	Measurement() []float64
	Information() []float64
	SetMeasurement(m []float64)
	SetInformation(info []float64)

	// PreOptimizationUpdate is invoked once per optimize call, before the
	// Solver consumes the factor, giving bias-sensitive factors (IMU) a
	// chance to refresh cached linearization-dependent terms. parameterBlocks
	// maps each connected id to its current state slice.
	PreOptimizationUpdate(parameterBlocks map[int64][]float64)

	// SetJacobianAndResidual linearises the factor around the given
	// current states (keyed by variable id) and caches the result for
	// Jacobian/Residual to retrieve; used by marginalization (spec §4.3
	// item 8) and by the residual-introspection helper.
	SetJacobianAndResidual(parameterBlocks map[int64][]float64)
	// Jacobian returns, for each variable id in VariableIDs() order, the
	// residualDim x localDim Jacobian block computed by the last call to
	// SetJacobianAndResidual.
	Jacobian() []JacobianBlock
	// Residual returns the residualDim residual vector computed by the
	// last call to SetJacobianAndResidual.
	Residual() []float64
	// ResidualDim is the number of rows the factor contributes.
	ResidualDim() int
}

// FamilyConstructor builds a Factor from a slice of connected node ids plus
// already-sliced measurement/information buffers (used by both the
// single-add and bulk-add paths, spec §4.3 "family registry").
type FamilyConstructor func(ids []int64, measurement, information []float64, loss float64) Factor

// familyRegistry maps string factor-type identifiers to constructors,
// mirroring the teacher's eallocators map in fem/element.go.
var familyRegistry = make(map[string]FamilyConstructor)

// RegisterFamily installs (or replaces) the constructor for a factor-type
// name. Intended to be called from package init() functions, exactly as
// the teacher's element files register themselves via init().
func RegisterFamily(name string, ctor FamilyConstructor) {
	familyRegistry[name] = ctor
}

// NewFactor constructs a Factor of the named family, or reports ok=false
// if the name is not registered.
func NewFactor(name string, ids []int64, measurement, information []float64, loss float64) (Factor, bool) {
	ctor, ok := familyRegistry[name]
	if !ok {
		return nil, false
	}
	return ctor(ids, measurement, information, loss), true
}
