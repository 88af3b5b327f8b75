// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"math"

	"github.com/cpmech/fgraph/param"
)

// gpsFactor anchors a single SE(3) pose's translation to an absolute
// R3 position measurement, leaving orientation unconstrained — the
// classic "GPS edge" in a pose graph.
type gpsFactor struct{ factorBase }

func newGPS(ids []int64, measurement, information []float64, loss float64) Factor {
	if measurement == nil {
		measurement = []float64{0, 0, 0}
	}
	if information == nil {
		information = identityMat(3)
	}
	return &gpsFactor{factorBase{
		ftype:       GPS,
		schema:      []slotSchema{{ids[0], PoseSE3, param.SE3}},
		measurement: measurement,
		information: information,
		loss:        loss,
		resDim:      3,
	}}
}

func (f *gpsFactor) DefaultState(int64) []float64 {
	return []float64{f.measurement[0], f.measurement[1], f.measurement[2], 0, 0, 0, 1}
}

func (f *gpsFactor) SetJacobianAndResidual(blocks map[int64][]float64) {
	x := blocks[f.schema[0].id]
	residFn := func(s [][]float64) []float64 {
		return []float64{s[0][0] - f.measurement[0], s[0][1] - f.measurement[1], s[0][2] - f.measurement[2]}
	}
	e := residFn([][]float64{x})
	jac := numericalJacobian([]param.ID{param.SE3}, [][]float64{x}, residFn)
	L := infoSqrt(f.information, 3)
	f.res = weightResidual(L, e)
	f.jac = weightJacobians(L, jac)
}

// posePointSE2 measures a 2D landmark's position in a pose's local frame.
type posePointSE2 struct{ factorBase }

func newPosePointSE2(ids []int64, measurement, information []float64, loss float64) Factor {
	if measurement == nil {
		measurement = []float64{0, 0}
	}
	if information == nil {
		information = identityMat(2)
	}
	return &posePointSE2{factorBase{
		ftype: PosePointSE2,
		schema: []slotSchema{
			{ids[0], PoseSE2, param.IdentityN},
			{ids[1], PointR2, param.IdentityN},
		},
		measurement: measurement,
		information: information,
		loss:        loss,
		resDim:      2,
	}}
}

func (f *posePointSE2) DefaultState(id int64) []float64 {
	if id == f.schema[0].id {
		return []float64{0, 0, 0}
	}
	return []float64{0, 0}
}

func posePointSE2Residual(pose, point, meas []float64) []float64 {
	dx, dy := point[0]-pose[0], point[1]-pose[1]
	ct, st := math.Cos(pose[2]), math.Sin(pose[2])
	return []float64{ct*dx + st*dy - meas[0], -st*dx + ct*dy - meas[1]}
}

func (f *posePointSE2) SetJacobianAndResidual(blocks map[int64][]float64) {
	pose := blocks[f.schema[0].id]
	point := blocks[f.schema[1].id]
	e := posePointSE2Residual(pose, point, f.measurement)
	jac := numericalJacobian([]param.ID{param.IdentityN, param.IdentityN}, [][]float64{pose, point},
		func(s [][]float64) []float64 { return posePointSE2Residual(s[0], s[1], f.measurement) })
	L := infoSqrt(f.information, 2)
	f.res = weightResidual(L, e)
	f.jac = weightJacobians(L, jac)
}

// posePointSE3 measures a 3D landmark's position in a pose's local frame.
type posePointSE3 struct{ factorBase }

func newPosePointSE3(ids []int64, measurement, information []float64, loss float64) Factor {
	if measurement == nil {
		measurement = []float64{0, 0, 0}
	}
	if information == nil {
		information = identityMat(3)
	}
	return &posePointSE3{factorBase{
		ftype: PosePointSE3,
		schema: []slotSchema{
			{ids[0], PoseSE3, param.SE3},
			{ids[1], PointR3, param.IdentityN},
		},
		measurement: measurement,
		information: information,
		loss:        loss,
		resDim:      3,
	}}
}

func (f *posePointSE3) DefaultState(id int64) []float64 {
	if id == f.schema[0].id {
		return []float64{0, 0, 0, 0, 0, 0, 1}
	}
	return []float64{0, 0, 0}
}

func posePointSE3Residual(pose, point, meas []float64) []float64 {
	qInv := param.QuatConj(pose[3:7])
	d := []float64{point[0] - pose[0], point[1] - pose[1], point[2] - pose[2]}
	local := param.RotateByQuat(qInv, d)
	return []float64{local[0] - meas[0], local[1] - meas[1], local[2] - meas[2]}
}

func (f *posePointSE3) SetJacobianAndResidual(blocks map[int64][]float64) {
	pose := blocks[f.schema[0].id]
	point := blocks[f.schema[1].id]
	e := posePointSE3Residual(pose, point, f.measurement)
	jac := numericalJacobian([]param.ID{param.SE3, param.IdentityN}, [][]float64{pose, point},
		func(s [][]float64) []float64 { return posePointSE3Residual(s[0], s[1], f.measurement) })
	L := infoSqrt(f.information, 3)
	f.res = weightResidual(L, e)
	f.jac = weightJacobians(L, jac)
}
