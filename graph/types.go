// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package graph owns the bipartite variable/factor graph: typed variables
// with local parameterizations, factors with heterogeneous arities,
// incremental add/remove/marginalize semantics and dangling-node GC.
//
// It plays the role the teacher's fem.Domain plays for a finite-element
// mesh: Domain owns Nodes (by equation number) and Elems (by cell id) plus
// the essential/natural boundary condition bookkeeping; Graph owns
// Variables (by node id) and Factors (by factor id) plus the fix/free and
// group/type index bookkeeping.
package graph

import (
	"github.com/cpmech/fgraph/param"
	"github.com/cpmech/gosl/chk"
)

// VariableType is the closed enumeration of estimable quantities.
type VariableType int

const (
	PoseSE3 VariableType = iota
	PoseSE2
	PointR3
	PointR2
	VelocityR3
	IMUBias
	IntrinsicScalar
	SensorTransformSE3
	PoseSIM3
	GravityQuaternion
	ScaleScalar
)

var variableTypeNames = map[VariableType]string{
	PoseSE3:             "POSE_SE3",
	PoseSE2:             "POSE_SE2",
	PointR3:             "POINT_R3",
	PointR2:             "POINT_R2",
	VelocityR3:          "VELOCITY_R3",
	IMUBias:             "IMU_BIAS",
	IntrinsicScalar:     "INTRINSIC",
	SensorTransformSE3:  "SENSOR_TRANSFORM_SE3",
	PoseSIM3:            "POSE_SIM3",
	GravityQuaternion:   "GRAVITY_QUATERNION",
	ScaleScalar:         "SCALE",
}

// String implements fmt.Stringer.
func (t VariableType) String() string {
	if s, ok := variableTypeNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// Dim returns the global (ambient) dimension of a variable of this type.
func (t VariableType) Dim() int {
	switch t {
	case PoseSE3:
		return 7
	case PoseSE2:
		return 3
	case PointR3:
		return 3
	case PointR2:
		return 2
	case VelocityR3:
		return 3
	case IMUBias:
		return 6
	case IntrinsicScalar:
		return 1
	case SensorTransformSE3:
		return 7
	case PoseSIM3:
		return 8
	case GravityQuaternion:
		return 4
	case ScaleScalar:
		return 1
	}
	chk.Panic("graph: unknown variable type %d", int(t))
	return 0
}

// ParamID returns the local parameterization identifier shared by every
// variable of this type (spec §4.4).
func (t VariableType) ParamID() param.ID {
	switch t {
	case PoseSE3, SensorTransformSE3:
		return param.SE3
	case PoseSE2:
		return param.IdentityN // SE(2) is stored as (x,y,theta): additive locally
	case PointR3, VelocityR3, IMUBias, IntrinsicScalar, ScaleScalar, PointR2:
		return param.IdentityN
	case PoseSIM3:
		return param.SIM3
	case GravityQuaternion:
		return param.Quaternion
	}
	chk.Panic("graph: unknown variable type %d", int(t))
	return param.IdentityN
}

// IsPoseNode reports whether t is one of the two pose types that
// participate in pose-seeded partial-graph selection (spec §4.5). Per
// original_source's isPoseNode, SIM(3) poses do NOT count, only SE(2)/SE(3).
func (t VariableType) IsPoseNode() bool {
	return t == PoseSE3 || t == PoseSE2
}

// FactorType is the closed enumeration of factor families.
type FactorType int

const (
	BetweenPosesSE2 FactorType = iota
	BetweenPosesSE3
	PosePointSE2
	PosePointSE3
	IMU
	IMUGravityScale
	IMUGravityScaleTransform
	GPS
	PriorPoseSE2
	PriorPoseSE3
	PriorIMUBias
	PriorVelocity
	CameraProjection
	DistortedProjectionPinhole
	DistortedProjectionFisheye
	DistortedProjectionKannalaBrandt
	DistortedProjectionEquidistant
	BetweenPosesSIM3
	Marginal
)

var factorTypeNames = map[FactorType]string{
	BetweenPosesSE2:                  "TwoPoseSE2",
	BetweenPosesSE3:                  "TwoPoseSE3",
	PosePointSE2:                     "PosePointSE2",
	PosePointSE3:                     "PosePointSE3",
	IMU:                              "IMU",
	IMUGravityScale:                  "IMU_G_S",
	IMUGravityScaleTransform:         "IMU_G_S_T",
	GPS:                              "GPS",
	PriorPoseSE2:                     "Pose_SE2_Prior_F",
	PriorPoseSE3:                     "Pose_SE3_Prior_F",
	PriorIMUBias:                     "IMU_Bias_Prior_F",
	PriorVelocity:                    "Vel3_Prior_F",
	CameraProjection:                 "CameraSE3XYZ",
	DistortedProjectionPinhole:       "PinholeCameraSE3XYZ",
	DistortedProjectionFisheye:       "FisheyeCameraSE3XYZ",
	DistortedProjectionKannalaBrandt: "KannalaBrandtCameraSE3XYZ",
	DistortedProjectionEquidistant:   "EquidistantCameraSE3XYZ",
	BetweenPosesSIM3:                 "TwoPoseSIM3",
	Marginal:                         "Marginal",
}

// String implements fmt.Stringer.
func (t FactorType) String() string {
	if s, ok := factorTypeNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// IsBetweenPoses reports whether the factor type connects two pose
// variables and nothing else (spec §4.5 first inclusion rule).
func (t FactorType) IsBetweenPoses() bool {
	return t == BetweenPosesSE2 || t == BetweenPosesSE3 || t == BetweenPosesSIM3
}

// IsIMUFamily reports whether the factor type is one of the IMU factors.
func (t FactorType) IsIMUFamily() bool {
	return t == IMU || t == IMUGravityScale || t == IMUGravityScaleTransform
}
