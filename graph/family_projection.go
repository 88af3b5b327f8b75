// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"math"

	"github.com/cpmech/fgraph/param"
)

// distortionModel selects the radial term applied before the pinhole
// division in a distortedProjection factor. The spec lists four distorted
// pinhole variants without naming their distortion math (out of scope per
// spec §1); this file picks four increasingly aggressive single-parameter
// radial models so the four families remain distinguishable residual
// functions rather than four structurally-identical copies.
type distortionModel int

const (
	distortionRadial1 distortionModel = iota
	distortionRadial2
	distortionRadialInverse
	distortionRadialOddPower
)

func applyDistortion(model distortionModel, x, y, k float64) (float64, float64) {
	r2 := x*x + y*y
	switch model {
	case distortionRadial1:
		s := 1 + k*r2
		return x * s, y * s
	case distortionRadial2:
		s := 1 + k*r2*r2
		return x * s, y * s
	case distortionRadialInverse:
		s := 1 / (1 + k*r2)
		return x * s, y * s
	default: // distortionRadialOddPower
		r := r2 * math.Sqrt(r2) // r^3, an odd power of the radius
		s := 1 + k*r
		return x * s, y * s
	}
}

// cameraProjection projects a landmark into a camera's normalized image
// plane: measurement is [u, v] in normalized (fx=fy=1, cx=cy=0)
// coordinates, leaving the concrete intrinsic-calibration model (out of
// scope per spec §1) to a higher layer.
type cameraProjection struct{ factorBase }

func newCameraProjection(ids []int64, measurement, information []float64, loss float64) Factor {
	if measurement == nil {
		measurement = []float64{0, 0}
	}
	if information == nil {
		information = identityMat(2)
	}
	return &cameraProjection{factorBase{
		ftype: CameraProjection,
		schema: []slotSchema{
			{ids[0], PoseSE3, param.SE3},
			{ids[1], PointR3, param.IdentityN},
		},
		measurement: measurement,
		information: information,
		loss:        loss,
		resDim:      2,
	}}
}

func (f *cameraProjection) DefaultState(id int64) []float64 {
	if id == f.schema[0].id {
		return []float64{0, 0, 0, 0, 0, 0, 1}
	}
	return []float64{0, 0, 1}
}

func projectPinhole(pose, point []float64) []float64 {
	qInv := param.QuatConj(pose[3:7])
	d := []float64{point[0] - pose[0], point[1] - pose[1], point[2] - pose[2]}
	local := param.RotateByQuat(qInv, d)
	return []float64{local[0] / local[2], local[1] / local[2]}
}

func (f *cameraProjection) SetJacobianAndResidual(blocks map[int64][]float64) {
	pose := blocks[f.schema[0].id]
	point := blocks[f.schema[1].id]
	residFn := func(s [][]float64) []float64 {
		uv := projectPinhole(s[0], s[1])
		return []float64{uv[0] - f.measurement[0], uv[1] - f.measurement[1]}
	}
	e := residFn([][]float64{pose, point})
	jac := numericalJacobian([]param.ID{param.SE3, param.IdentityN}, [][]float64{pose, point}, residFn)
	L := infoSqrt(f.information, 2)
	f.res = weightResidual(L, e)
	f.jac = weightJacobians(L, jac)
}

// distortedProjection projects a landmark through a camera plus a single
// radial distortion coefficient, connected as an IntrinsicScalar node so
// calibration can be jointly refined with poses and landmarks.
type distortedProjection struct {
	factorBase
	model distortionModel
}

func newDistortedProjectionFamily(model distortionModel, ftype FactorType) FamilyConstructor {
	return func(ids []int64, measurement, information []float64, loss float64) Factor {
		if measurement == nil {
			measurement = []float64{0, 0}
		}
		if information == nil {
			information = identityMat(2)
		}
		return &distortedProjection{factorBase: factorBase{
			ftype: ftype,
			schema: []slotSchema{
				{ids[0], PoseSE3, param.SE3},
				{ids[1], PointR3, param.IdentityN},
				{ids[2], IntrinsicScalar, param.IdentityN},
			},
			measurement: measurement,
			information: information,
			loss:        loss,
			resDim:      2,
		}, model: model}
	}
}

func (f *distortedProjection) DefaultState(id int64) []float64 {
	switch id {
	case f.schema[0].id:
		return []float64{0, 0, 0, 0, 0, 0, 1}
	case f.schema[1].id:
		return []float64{0, 0, 1}
	default:
		return []float64{0}
	}
}

func (f *distortedProjection) SetJacobianAndResidual(blocks map[int64][]float64) {
	pose := blocks[f.schema[0].id]
	point := blocks[f.schema[1].id]
	k := blocks[f.schema[2].id]
	residFn := func(s [][]float64) []float64 {
		uv := projectPinhole(s[0], s[1])
		dx, dy := applyDistortion(f.model, uv[0], uv[1], s[2][0])
		return []float64{dx - f.measurement[0], dy - f.measurement[1]}
	}
	e := residFn([][]float64{pose, point, k})
	jac := numericalJacobian([]param.ID{param.SE3, param.IdentityN, param.IdentityN}, [][]float64{pose, point, k}, residFn)
	L := infoSqrt(f.information, 2)
	f.res = weightResidual(L, e)
	f.jac = weightJacobians(L, jac)
}
