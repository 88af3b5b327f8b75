// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import "github.com/cpmech/fgraph/param"

// The concrete IMU preintegration math (bias linearization, covariance
// propagation over the raw gyro/accel stream) is explicitly the Solver's
// and the caller's concern, not this engine's (spec §1, §9): a factor only
// needs to consume an already-preintegrated measurement and compare it to
// the current states. These three families implement the simplified
// constant-velocity preintegration model: measurement is
// [dpx,dpy,dpz, dvx,dvy,dvz, dqx,dqy,dqz,dqw, dt].

func imuMeasurementOrDefault(measurement []float64) []float64 {
	if measurement != nil {
		return measurement
	}
	return []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1}
}

// imuFactor connects (pose_i, vel_i, bias_i, pose_j, vel_j) — indices 0
// and 3 are the pose nodes, matching the "only the first and fourth node
// are pose nodes" rule used to classify IMU edges in a partial graph.
type imuFactor struct{ factorBase }

func newIMU(ids []int64, measurement, information []float64, loss float64) Factor {
	measurement = imuMeasurementOrDefault(measurement)
	if information == nil {
		information = identityMat(9)
	}
	return &imuFactor{factorBase{
		ftype: IMU,
		schema: []slotSchema{
			{ids[0], PoseSE3, param.SE3},
			{ids[1], VelocityR3, param.IdentityN},
			{ids[2], IMUBias, param.IdentityN},
			{ids[3], PoseSE3, param.SE3},
			{ids[4], VelocityR3, param.IdentityN},
		},
		measurement: measurement,
		information: information,
		loss:        loss,
		resDim:      9,
	}}
}

func (f *imuFactor) DefaultState(id int64) []float64 {
	switch id {
	case f.schema[0].id, f.schema[3].id:
		return []float64{0, 0, 0, 0, 0, 0, 1}
	case f.schema[2].id:
		return make([]float64, 6)
	default:
		return []float64{0, 0, 0}
	}
}

func imuResidual(poseI, velI, poseJ, velJ, meas []float64) []float64 {
	dt := meas[10]
	qInvI := param.QuatConj(poseI[3:7])
	dp := []float64{
		poseJ[0] - poseI[0] - velI[0]*dt,
		poseJ[1] - poseI[1] - velI[1]*dt,
		poseJ[2] - poseI[2] - velI[2]*dt,
	}
	predDp := param.RotateByQuat(qInvI, dp)
	dv := []float64{velJ[0] - velI[0], velJ[1] - velI[1], velJ[2] - velI[2]}
	predDv := param.RotateByQuat(qInvI, dv)
	predDq := param.QuatMul(qInvI, poseJ[3:7])
	measQInv := param.QuatConj(meas[6:10])
	dq := param.QuatMul(measQInv, predDq)
	if dq[3] < 0 {
		dq[0], dq[1], dq[2], dq[3] = -dq[0], -dq[1], -dq[2], -dq[3]
	}
	return []float64{
		predDp[0] - meas[0], predDp[1] - meas[1], predDp[2] - meas[2],
		predDv[0] - meas[3], predDv[1] - meas[4], predDv[2] - meas[5],
		2 * dq[0], 2 * dq[1], 2 * dq[2],
	}
}

func (f *imuFactor) SetJacobianAndResidual(blocks map[int64][]float64) {
	poseI := blocks[f.schema[0].id]
	velI := blocks[f.schema[1].id]
	poseJ := blocks[f.schema[3].id]
	velJ := blocks[f.schema[4].id]
	e := imuResidual(poseI, velI, poseJ, velJ, f.measurement)
	jac := numericalJacobian(
		[]param.ID{param.SE3, param.IdentityN, param.IdentityN, param.SE3, param.IdentityN},
		[][]float64{poseI, velI, blocks[f.schema[2].id], poseJ, velJ},
		func(s [][]float64) []float64 { return imuResidual(s[0], s[1], s[3], s[4], f.measurement) })
	L := infoSqrt(f.information, 9)
	f.res = weightResidual(L, e)
	f.jac = weightJacobians(L, jac)
}

// imuGravityScale extends imuFactor with a shared monocular-scale and
// gravity-direction estimate, used to bootstrap metric scale before a
// metric sensor (GPS, stereo) is available. Adds gravity (quaternion,
// rotating a canonical [0,0,-1] direction) and scale (scalar) nodes.
type imuGravityScale struct{ factorBase }

func newIMUGravityScale(ids []int64, measurement, information []float64, loss float64) Factor {
	measurement = imuMeasurementOrDefault(measurement)
	if information == nil {
		information = identityMat(9)
	}
	return &imuGravityScale{factorBase{
		ftype: IMUGravityScale,
		schema: []slotSchema{
			{ids[0], PoseSE3, param.SE3},
			{ids[1], VelocityR3, param.IdentityN},
			{ids[2], IMUBias, param.IdentityN},
			{ids[3], PoseSE3, param.SE3},
			{ids[4], VelocityR3, param.IdentityN},
			{ids[5], GravityQuaternion, param.Quaternion},
			{ids[6], ScaleScalar, param.IdentityN},
		},
		measurement: measurement,
		information: information,
		loss:        loss,
		resDim:      9,
	}}
}

func (f *imuGravityScale) DefaultState(id int64) []float64 {
	switch id {
	case f.schema[0].id, f.schema[3].id:
		return []float64{0, 0, 0, 0, 0, 0, 1}
	case f.schema[2].id:
		return make([]float64, 6)
	case f.schema[5].id:
		return []float64{0, 0, 0, 1}
	case f.schema[6].id:
		return []float64{1}
	default:
		return []float64{0, 0, 0}
	}
}

const gravityMagnitude = 9.81

func imuGravityScaleResidual(poseI, velI, poseJ, velJ, gravityQ, scale, meas []float64) []float64 {
	dt := meas[10]
	s := scale[0]
	g := param.RotateByQuat(gravityQ, []float64{0, 0, -gravityMagnitude})
	qInvI := param.QuatConj(poseI[3:7])
	dp := []float64{
		s*(poseJ[0]-poseI[0]) - velI[0]*dt - 0.5*g[0]*dt*dt,
		s*(poseJ[1]-poseI[1]) - velI[1]*dt - 0.5*g[1]*dt*dt,
		s*(poseJ[2]-poseI[2]) - velI[2]*dt - 0.5*g[2]*dt*dt,
	}
	predDp := param.RotateByQuat(qInvI, dp)
	dv := []float64{
		velJ[0] - velI[0] - g[0]*dt,
		velJ[1] - velI[1] - g[1]*dt,
		velJ[2] - velI[2] - g[2]*dt,
	}
	predDv := param.RotateByQuat(qInvI, dv)
	predDq := param.QuatMul(qInvI, poseJ[3:7])
	measQInv := param.QuatConj(meas[6:10])
	dq := param.QuatMul(measQInv, predDq)
	if dq[3] < 0 {
		dq[0], dq[1], dq[2], dq[3] = -dq[0], -dq[1], -dq[2], -dq[3]
	}
	return []float64{
		predDp[0] - meas[0], predDp[1] - meas[1], predDp[2] - meas[2],
		predDv[0] - meas[3], predDv[1] - meas[4], predDv[2] - meas[5],
		2 * dq[0], 2 * dq[1], 2 * dq[2],
	}
}

func (f *imuGravityScale) SetJacobianAndResidual(blocks map[int64][]float64) {
	poseI := blocks[f.schema[0].id]
	velI := blocks[f.schema[1].id]
	bias := blocks[f.schema[2].id]
	poseJ := blocks[f.schema[3].id]
	velJ := blocks[f.schema[4].id]
	gravityQ := blocks[f.schema[5].id]
	scale := blocks[f.schema[6].id]
	e := imuGravityScaleResidual(poseI, velI, poseJ, velJ, gravityQ, scale, f.measurement)
	jac := numericalJacobian(
		[]param.ID{param.SE3, param.IdentityN, param.IdentityN, param.SE3, param.IdentityN, param.Quaternion, param.IdentityN},
		[][]float64{poseI, velI, bias, poseJ, velJ, gravityQ, scale},
		func(s [][]float64) []float64 {
			return imuGravityScaleResidual(s[0], s[1], s[3], s[4], s[5], s[6], f.measurement)
		})
	L := infoSqrt(f.information, 9)
	f.res = weightResidual(L, e)
	f.jac = weightJacobians(L, jac)
}

// imuGravityScaleTransform extends imuGravityScale with an IMU-to-pose
// sensor extrinsic (SE3), for rigs where the optimized pose is not the
// IMU's own frame (e.g. a camera-centric pose graph with a rigidly
// mounted IMU).
type imuGravityScaleTransform struct{ factorBase }

func newIMUGravityScaleTransform(ids []int64, measurement, information []float64, loss float64) Factor {
	measurement = imuMeasurementOrDefault(measurement)
	if information == nil {
		information = identityMat(9)
	}
	return &imuGravityScaleTransform{factorBase{
		ftype: IMUGravityScaleTransform,
		schema: []slotSchema{
			{ids[0], PoseSE3, param.SE3},
			{ids[1], VelocityR3, param.IdentityN},
			{ids[2], IMUBias, param.IdentityN},
			{ids[3], PoseSE3, param.SE3},
			{ids[4], VelocityR3, param.IdentityN},
			{ids[5], GravityQuaternion, param.Quaternion},
			{ids[6], ScaleScalar, param.IdentityN},
			{ids[7], SensorTransformSE3, param.SE3},
		},
		measurement: measurement,
		information: information,
		loss:        loss,
		resDim:      9,
	}}
}

func (f *imuGravityScaleTransform) DefaultState(id int64) []float64 {
	switch id {
	case f.schema[0].id, f.schema[3].id, f.schema[7].id:
		return []float64{0, 0, 0, 0, 0, 0, 1}
	case f.schema[2].id:
		return make([]float64, 6)
	case f.schema[5].id:
		return []float64{0, 0, 0, 1}
	case f.schema[6].id:
		return []float64{1}
	default:
		return []float64{0, 0, 0}
	}
}

func composeSE3(a, b []float64) []float64 {
	t := param.RotateByQuat(a[3:7], b[0:3])
	q := param.QuatMul(a[3:7], b[3:7])
	return []float64{a[0] + t[0], a[1] + t[1], a[2] + t[2], q[0], q[1], q[2], q[3]}
}

func (f *imuGravityScaleTransform) SetJacobianAndResidual(blocks map[int64][]float64) {
	poseI := blocks[f.schema[0].id]
	velI := blocks[f.schema[1].id]
	bias := blocks[f.schema[2].id]
	poseJ := blocks[f.schema[3].id]
	velJ := blocks[f.schema[4].id]
	gravityQ := blocks[f.schema[5].id]
	scale := blocks[f.schema[6].id]
	transform := blocks[f.schema[7].id]
	residFn := func(s [][]float64) []float64 {
		imuPoseI := composeSE3(s[0], s[7])
		imuPoseJ := composeSE3(s[3], s[7])
		return imuGravityScaleResidual(imuPoseI, s[1], imuPoseJ, s[4], s[5], s[6], f.measurement)
	}
	e := residFn([][]float64{poseI, velI, bias, poseJ, velJ, gravityQ, scale, transform})
	jac := numericalJacobian(
		[]param.ID{param.SE3, param.IdentityN, param.IdentityN, param.SE3, param.IdentityN, param.Quaternion, param.IdentityN, param.SE3},
		[][]float64{poseI, velI, bias, poseJ, velJ, gravityQ, scale, transform},
		residFn)
	L := infoSqrt(f.information, 9)
	f.res = weightResidual(L, e)
	f.jac = weightJacobians(L, jac)
}
