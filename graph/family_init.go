// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

// init registers every built-in factor family constructor under its wire
// name, mirroring the teacher's e_*.go element files self-registering into
// eallocators from their own init() functions.
func init() {
	RegisterFamily(BetweenPosesSE2.String(), newBetweenPoseSE2)
	RegisterFamily(BetweenPosesSE3.String(), newBetweenPoseSE3)
	RegisterFamily(BetweenPosesSIM3.String(), newBetweenPoseSIM3)
	RegisterFamily(PosePointSE2.String(), newPosePointSE2)
	RegisterFamily(PosePointSE3.String(), newPosePointSE3)
	RegisterFamily(GPS.String(), newGPS)
	RegisterFamily(PriorPoseSE2.String(), newPriorPoseSE2)
	RegisterFamily(PriorPoseSE3.String(), newPriorPoseSE3)
	RegisterFamily(PriorVelocity.String(), newPriorVelocity)
	RegisterFamily(PriorIMUBias.String(), newPriorIMUBias)
	RegisterFamily(CameraProjection.String(), newCameraProjection)
	RegisterFamily(DistortedProjectionPinhole.String(), newDistortedProjectionFamily(distortionRadial1, DistortedProjectionPinhole))
	RegisterFamily(DistortedProjectionFisheye.String(), newDistortedProjectionFamily(distortionRadial2, DistortedProjectionFisheye))
	RegisterFamily(DistortedProjectionKannalaBrandt.String(), newDistortedProjectionFamily(distortionRadialInverse, DistortedProjectionKannalaBrandt))
	RegisterFamily(DistortedProjectionEquidistant.String(), newDistortedProjectionFamily(distortionRadialOddPower, DistortedProjectionEquidistant))
	RegisterFamily(IMU.String(), newIMU)
	RegisterFamily(IMUGravityScale.String(), newIMUGravityScale)
	RegisterFamily(IMUGravityScaleTransform.String(), newIMUGravityScaleTransform)
}
