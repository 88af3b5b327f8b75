// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import "github.com/cpmech/fgraph/param"

// priorPoseSE2 anchors a single SE(2) pose to an absolute measurement,
// the 2D analogue of the teacher's essential boundary condition: it pins
// one node's state instead of letting the graph float unconstrained.
type priorPoseSE2 struct{ factorBase }

func newPriorPoseSE2(ids []int64, measurement, information []float64, loss float64) Factor {
	if measurement == nil {
		measurement = []float64{0, 0, 0}
	}
	if information == nil {
		information = identityMat(3)
	}
	return &priorPoseSE2{factorBase{
		ftype:       PriorPoseSE2,
		schema:      []slotSchema{{ids[0], PoseSE2, param.IdentityN}},
		measurement: measurement,
		information: information,
		loss:        loss,
		resDim:      3,
	}}
}

func (f *priorPoseSE2) DefaultState(int64) []float64 { return append([]float64{}, f.measurement...) }

func (f *priorPoseSE2) SetJacobianAndResidual(blocks map[int64][]float64) {
	x := blocks[f.schema[0].id]
	residFn := func(s [][]float64) []float64 {
		return []float64{s[0][0] - f.measurement[0], s[0][1] - f.measurement[1], wrapAngle(s[0][2] - f.measurement[2])}
	}
	e := residFn([][]float64{x})
	jac := numericalJacobian([]param.ID{param.IdentityN}, [][]float64{x}, residFn)
	L := infoSqrt(f.information, 3)
	f.res = weightResidual(L, e)
	f.jac = weightJacobians(L, jac)
}

// priorPoseSE3 anchors a single SE(3) pose to an absolute measurement.
type priorPoseSE3 struct{ factorBase }

func newPriorPoseSE3(ids []int64, measurement, information []float64, loss float64) Factor {
	if measurement == nil {
		measurement = []float64{0, 0, 0, 0, 0, 0, 1}
	}
	if information == nil {
		information = identityMat(6)
	}
	return &priorPoseSE3{factorBase{
		ftype:       PriorPoseSE3,
		schema:      []slotSchema{{ids[0], PoseSE3, param.SE3}},
		measurement: measurement,
		information: information,
		loss:        loss,
		resDim:      6,
	}}
}

func (f *priorPoseSE3) DefaultState(int64) []float64 { return append([]float64{}, f.measurement...) }

func (f *priorPoseSE3) SetJacobianAndResidual(blocks map[int64][]float64) {
	x := blocks[f.schema[0].id]
	residFn := func(s [][]float64) []float64 {
		t := []float64{s[0][0] - f.measurement[0], s[0][1] - f.measurement[1], s[0][2] - f.measurement[2]}
		dq := param.QuatMul(param.QuatConj(f.measurement[3:7]), s[0][3:7])
		if dq[3] < 0 {
			dq[0], dq[1], dq[2], dq[3] = -dq[0], -dq[1], -dq[2], -dq[3]
		}
		return []float64{t[0], t[1], t[2], 2 * dq[0], 2 * dq[1], 2 * dq[2]}
	}
	e := residFn([][]float64{x})
	jac := numericalJacobian([]param.ID{param.SE3}, [][]float64{x}, residFn)
	L := infoSqrt(f.information, 6)
	f.res = weightResidual(L, e)
	f.jac = weightJacobians(L, jac)
}

// priorVelocity anchors a single R3 velocity variable to an absolute
// measurement, e.g. a zero-velocity-at-rest prior.
type priorVelocity struct{ factorBase }

func newPriorVelocity(ids []int64, measurement, information []float64, loss float64) Factor {
	if measurement == nil {
		measurement = []float64{0, 0, 0}
	}
	if information == nil {
		information = identityMat(3)
	}
	return &priorVelocity{factorBase{
		ftype:       PriorVelocity,
		schema:      []slotSchema{{ids[0], VelocityR3, param.IdentityN}},
		measurement: measurement,
		information: information,
		loss:        loss,
		resDim:      3,
	}}
}

func (f *priorVelocity) DefaultState(int64) []float64 { return append([]float64{}, f.measurement...) }

func (f *priorVelocity) SetJacobianAndResidual(blocks map[int64][]float64) {
	x := blocks[f.schema[0].id]
	residFn := func(s [][]float64) []float64 {
		return []float64{s[0][0] - f.measurement[0], s[0][1] - f.measurement[1], s[0][2] - f.measurement[2]}
	}
	e := residFn([][]float64{x})
	jac := numericalJacobian([]param.ID{param.IdentityN}, [][]float64{x}, residFn)
	L := infoSqrt(f.information, 3)
	f.res = weightResidual(L, e)
	f.jac = weightJacobians(L, jac)
}

// priorIMUBias anchors a single R6 IMU bias variable (3 gyro + 3 accel) to
// an absolute measurement.
type priorIMUBias struct{ factorBase }

func newPriorIMUBias(ids []int64, measurement, information []float64, loss float64) Factor {
	if measurement == nil {
		measurement = make([]float64, 6)
	}
	if information == nil {
		information = identityMat(6)
	}
	return &priorIMUBias{factorBase{
		ftype:       PriorIMUBias,
		schema:      []slotSchema{{ids[0], IMUBias, param.IdentityN}},
		measurement: measurement,
		information: information,
		loss:        loss,
		resDim:      6,
	}}
}

func (f *priorIMUBias) DefaultState(int64) []float64 { return append([]float64{}, f.measurement...) }

func (f *priorIMUBias) SetJacobianAndResidual(blocks map[int64][]float64) {
	x := blocks[f.schema[0].id]
	residFn := func(s [][]float64) []float64 {
		out := make([]float64, 6)
		for i := 0; i < 6; i++ {
			out[i] = s[0][i] - f.measurement[i]
		}
		return out
	}
	e := residFn([][]float64{x})
	jac := numericalJacobian([]param.ID{param.IdentityN}, [][]float64{x}, residFn)
	L := infoSqrt(f.information, 6)
	f.res = weightResidual(L, e)
	f.jac = weightJacobians(L, jac)
}
