// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"math"

	"github.com/cpmech/fgraph/param"
)

// betweenPoseSE2 constrains two SE(2) poses by a measured relative
// transform [dx, dy, dtheta]: the standard 2D pose-graph edge.
type betweenPoseSE2 struct{ factorBase }

func newBetweenPoseSE2(ids []int64, measurement, information []float64, loss float64) Factor {
	if measurement == nil {
		measurement = []float64{0, 0, 0}
	}
	if information == nil {
		information = identityMat(3)
	}
	return &betweenPoseSE2{factorBase{
		ftype: BetweenPosesSE2,
		schema: []slotSchema{
			{ids[0], PoseSE2, param.IdentityN},
			{ids[1], PoseSE2, param.IdentityN},
		},
		measurement: measurement,
		information: information,
		loss:        loss,
		resDim:      3,
	}}
}

func (f *betweenPoseSE2) DefaultState(int64) []float64 { return []float64{0, 0, 0} }

func se2Residual(xi, xj, meas []float64) []float64 {
	dx, dy := xj[0]-xi[0], xj[1]-xi[1]
	ct, st := math.Cos(xi[2]), math.Sin(xi[2])
	localDx := ct*dx + st*dy
	localDy := -st*dx + ct*dy
	dtheta := wrapAngle(xj[2] - xi[2] - meas[2])
	return []float64{localDx - meas[0], localDy - meas[1], dtheta}
}

func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func (f *betweenPoseSE2) PreOptimizationUpdate(map[int64][]float64) {}

func (f *betweenPoseSE2) SetJacobianAndResidual(blocks map[int64][]float64) {
	xi := blocks[f.schema[0].id]
	xj := blocks[f.schema[1].id]
	e := se2Residual(xi, xj, f.measurement)
	jac := numericalJacobian([]param.ID{param.IdentityN, param.IdentityN}, [][]float64{xi, xj},
		func(s [][]float64) []float64 { return se2Residual(s[0], s[1], f.measurement) })
	L := infoSqrt(f.information, 3)
	f.res = weightResidual(L, e)
	f.jac = weightJacobians(L, jac)
}

// betweenPoseSE3 constrains two SE(3) poses by a measured relative
// transform [tx,ty,tz,qx,qy,qz,qw].
type betweenPoseSE3 struct{ factorBase }

func newBetweenPoseSE3(ids []int64, measurement, information []float64, loss float64) Factor {
	if measurement == nil {
		measurement = []float64{0, 0, 0, 0, 0, 0, 1}
	}
	if information == nil {
		information = identityMat(6)
	}
	return &betweenPoseSE3{factorBase{
		ftype: BetweenPosesSE3,
		schema: []slotSchema{
			{ids[0], PoseSE3, param.SE3},
			{ids[1], PoseSE3, param.SE3},
		},
		measurement: measurement,
		information: information,
		loss:        loss,
		resDim:      6,
	}}
}

func (f *betweenPoseSE3) DefaultState(int64) []float64 { return []float64{0, 0, 0, 0, 0, 0, 1} }

func se3Residual(xi, xj, meas []float64) []float64 {
	qiInv := param.QuatConj(xi[3:7])
	relT := param.RotateByQuat(qiInv, []float64{xj[0] - xi[0], xj[1] - xi[1], xj[2] - xi[2]})
	relQ := param.QuatMul(qiInv, xj[3:7])
	measQInv := param.QuatConj(meas[3:7])
	dQ := param.QuatMul(measQInv, relQ)
	if dQ[3] < 0 {
		dQ[0], dQ[1], dQ[2], dQ[3] = -dQ[0], -dQ[1], -dQ[2], -dQ[3]
	}
	return []float64{
		relT[0] - meas[0], relT[1] - meas[1], relT[2] - meas[2],
		2 * dQ[0], 2 * dQ[1], 2 * dQ[2],
	}
}

func (f *betweenPoseSE3) PreOptimizationUpdate(map[int64][]float64) {}

func (f *betweenPoseSE3) SetJacobianAndResidual(blocks map[int64][]float64) {
	xi := blocks[f.schema[0].id]
	xj := blocks[f.schema[1].id]
	e := se3Residual(xi, xj, f.measurement)
	jac := numericalJacobian([]param.ID{param.SE3, param.SE3}, [][]float64{xi, xj},
		func(s [][]float64) []float64 { return se3Residual(s[0], s[1], f.measurement) })
	L := infoSqrt(f.information, 6)
	f.res = weightResidual(L, e)
	f.jac = weightJacobians(L, jac)
}

// betweenPoseSIM3 constrains two SIM(3) poses by a measured relative
// similarity transform [tx,ty,tz,qx,qy,qz,qw,s].
type betweenPoseSIM3 struct{ factorBase }

func newBetweenPoseSIM3(ids []int64, measurement, information []float64, loss float64) Factor {
	if measurement == nil {
		measurement = []float64{0, 0, 0, 0, 0, 0, 1, 1}
	}
	if information == nil {
		information = identityMat(7)
	}
	return &betweenPoseSIM3{factorBase{
		ftype: BetweenPosesSIM3,
		schema: []slotSchema{
			{ids[0], PoseSIM3, param.SIM3},
			{ids[1], PoseSIM3, param.SIM3},
		},
		measurement: measurement,
		information: information,
		loss:        loss,
		resDim:      7,
	}}
}

func (f *betweenPoseSIM3) DefaultState(int64) []float64 {
	return []float64{0, 0, 0, 0, 0, 0, 1, 1}
}

func sim3Residual(xi, xj, meas []float64) []float64 {
	qiInv := param.QuatConj(xi[3:7])
	si := xi[7]
	relT := param.RotateByQuat(qiInv, []float64{xj[0] - xi[0], xj[1] - xi[1], xj[2] - xi[2]})
	for i := range relT {
		relT[i] /= si
	}
	relQ := param.QuatMul(qiInv, xj[3:7])
	relS := xj[7] / si
	measQInv := param.QuatConj(meas[3:7])
	dQ := param.QuatMul(measQInv, relQ)
	if dQ[3] < 0 {
		dQ[0], dQ[1], dQ[2], dQ[3] = -dQ[0], -dQ[1], -dQ[2], -dQ[3]
	}
	return []float64{
		relT[0] - meas[0], relT[1] - meas[1], relT[2] - meas[2],
		2 * dQ[0], 2 * dQ[1], 2 * dQ[2],
		math.Log(relS / meas[7]),
	}
}

func (f *betweenPoseSIM3) PreOptimizationUpdate(map[int64][]float64) {}

func (f *betweenPoseSIM3) SetJacobianAndResidual(blocks map[int64][]float64) {
	xi := blocks[f.schema[0].id]
	xj := blocks[f.schema[1].id]
	e := sim3Residual(xi, xj, f.measurement)
	jac := numericalJacobian([]param.ID{param.SIM3, param.SIM3}, [][]float64{xi, xj},
		func(s [][]float64) []float64 { return sim3Residual(s[0], s[1], f.measurement) })
	L := infoSqrt(f.information, 7)
	f.res = weightResidual(L, e)
	f.jac = weightJacobians(L, jac)
}
