// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ffi

import "github.com/cpmech/fgraph/verr"

// familyShape describes one family's fixed arity and per-factor buffer
// sizes, enough to split a bulk flat-array add_gaussian call back into
// per-factor slices.
type familyShape struct {
	arity   int // number of connected node ids
	measLen int // length of one factor's measurement vector
	infoDim int // side length of one factor's (square) information matrix
}

var familyShapes = map[string]familyShape{
	"TwoPoseSE2":                {2, 3, 3},
	"TwoPoseSE3":                {2, 7, 6},
	"TwoPoseSIM3":               {2, 8, 7},
	"PosePointSE2":              {2, 2, 2},
	"PosePointSE3":              {2, 3, 3},
	"GPS":                       {1, 3, 3},
	"Pose_SE2_Prior_F":          {1, 3, 3},
	"Pose_SE3_Prior_F":          {1, 7, 6},
	"Vel3_Prior_F":              {1, 3, 3},
	"IMU_Bias_Prior_F":          {1, 6, 6},
	"CameraSE3XYZ":              {2, 2, 2},
	"PinholeCameraSE3XYZ":       {3, 2, 2},
	"FisheyeCameraSE3XYZ":       {3, 2, 2},
	"KannalaBrandtCameraSE3XYZ": {3, 2, 2},
	"EquidistantCameraSE3XYZ":   {3, 2, 2},
	"IMU":                       {5, 11, 9},
	"IMU_G_S":                   {7, 11, 9},
	"IMU_G_S_T":                 {8, 11, 9},
}

// splitBulkBuffer disambiguates a "shared vs per-factor" buffer by length
// equality (spec §9 "the disambiguation is by length"): a buffer of
// exactly perFactorLen is shared across every factor in the bulk call; one
// of numFactors*perFactorLen is a distinct value per factor. Returns nil,
// false for any other length (a caller error).
func splitBulkBuffer(buf []float64, numFactors, perFactorLen int) (slices [][]float64, ok bool) {
	if perFactorLen == 0 {
		return make([][]float64, numFactors), true
	}
	switch len(buf) {
	case perFactorLen:
		slices = make([][]float64, numFactors)
		for i := range slices {
			slices[i] = buf
		}
		return slices, true
	case numFactors * perFactorLen:
		slices = make([][]float64, numFactors)
		for i := range slices {
			slices[i] = buf[i*perFactorLen : (i+1)*perFactorLen]
		}
		return slices, true
	default:
		return nil, false
	}
}

// addBulk is the shared bulk-add engine behind AddGaussian and its
// richer-named siblings: it knows one family's fixed shape and splits the
// flat ids/measurement/information/loss/group buffers into numFactors
// individual graph.AddFactor calls.
func addBulk(handle int64, familyName string, ids []int64, measurement, information, loss []float64, groupIDs []int64, numFactors int) (factorIDs []int64, status []int64) {
	s, ok := lookup(handle)
	if !ok {
		return nil, []int64{verr.Absent}
	}
	shape, known := familyShapes[familyName]
	if !known {
		return nil, []int64{verr.Absent}
	}
	if len(ids) != numFactors*shape.arity {
		return nil, []int64{verr.DimMismatch}
	}
	measSlices, ok := splitBulkBuffer(measurement, numFactors, shape.measLen)
	if !ok {
		return nil, []int64{verr.DimMismatch}
	}
	infoSlices, ok := splitBulkBuffer(information, numFactors, shape.infoDim*shape.infoDim)
	if !ok {
		return nil, []int64{verr.DimMismatch}
	}
	lossSlices, ok := splitBulkBuffer(loss, numFactors, 1)
	if !ok {
		return nil, []int64{verr.DimMismatch}
	}
	groups := groupIDs
	if len(groups) == 1 && numFactors > 1 {
		broadcast := make([]int64, numFactors)
		for i := range broadcast {
			broadcast[i] = groups[0]
		}
		groups = broadcast
	}
	if len(groups) != numFactors {
		return nil, []int64{verr.DimMismatch}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	factorIDs = make([]int64, numFactors)
	status = make([]int64, numFactors)
	anyBad := false
	for i := 0; i < numFactors; i++ {
		fid, code := s.g.AddFactor(
			familyName,
			ids[i*shape.arity:(i+1)*shape.arity],
			measSlices[i],
			infoSlices[i],
			lossOf(lossSlices[i]),
			groups[i],
		)
		factorIDs[i] = fid
		status[i] = int64(code)
		if code != verr.Present {
			anyBad = true
		}
	}
	if anyBad {
		status = append(status, verr.Absent)
	}
	return factorIDs, status
}

func lossOf(slice []float64) float64 {
	if len(slice) == 0 {
		return -1
	}
	return slice[0]
}

// AddGaussian answers add_gaussian(factor_type_str, ids, measurement,
// information, num_factors, group_ids) for every "simple" Gaussian factor
// family: the between-poses, pose-point, GPS, prior and plain camera-
// projection families (spec §6). loss carries the robust-loss parameter,
// shared or per-factor by the same length disambiguation as information.
func AddGaussian(handle int64, familyType string, ids []int64, measurement, information, loss []float64, numFactors int, groupIDs []int64) (factorIDs []int64, status []int64) {
	return addBulk(handle, familyType, ids, measurement, information, loss, groupIDs, numFactors)
}

// AddDistortedCameraProjection answers add_distorted_camera_projection for
// one of the four distorted-pinhole families (ids triples of
// pose/point/intrinsic); the richer "sensor_transform" argument in the
// spec's signature has no family-level slot in this engine's simplified
// distortion models (family_projection.go), so it is intentionally not
// accepted here — see DESIGN.md.
func AddDistortedCameraProjection(handle int64, familyType string, ids []int64, measurement, information, loss []float64, numFactors int, groupIDs []int64) (factorIDs []int64, status []int64) {
	return addBulk(handle, familyType, ids, measurement, information, loss, groupIDs, numFactors)
}

// AddIMU answers add_imu for the plain IMU family. The spec's signature
// (sample_rate, gravity, four noise matrices, raw gyro/accel readings) is
// the concrete preintegration pipeline's concern, explicitly out of scope
// (spec §1, §9); callers here supply the already-preintegrated 11-element
// measurement family_imu.go's imuFactor expects directly.
func AddIMU(handle int64, ids []int64, measurement, information, loss []float64, numFactors int, groupIDs []int64) (factorIDs []int64, status []int64) {
	return addBulk(handle, "IMU", ids, measurement, information, loss, groupIDs, numFactors)
}

// AddIMUGravityScale answers the gravity/scale IMU variant.
func AddIMUGravityScale(handle int64, ids []int64, measurement, information, loss []float64, numFactors int, groupIDs []int64) (factorIDs []int64, status []int64) {
	return addBulk(handle, "IMU_G_S", ids, measurement, information, loss, groupIDs, numFactors)
}

// AddIMUGravityScaleTransform answers the gravity/scale/transform IMU variant.
func AddIMUGravityScaleTransform(handle int64, ids []int64, measurement, information, loss []float64, numFactors int, groupIDs []int64) (factorIDs []int64, status []int64) {
	return addBulk(handle, "IMU_G_S_T", ids, measurement, information, loss, groupIDs, numFactors)
}

// RemoveFactor answers remove_factor(factorID).
func RemoveFactor(handle int64, factorID int64) bool {
	s, ok := lookup(handle)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.RemoveFactor(factorID)
}

// RemoveNode answers remove_node(id), returning the removed factor ids.
func RemoveNode(handle int64, id int64) []int64 {
	s, ok := lookup(handle)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.RemoveNode(id)
}

// MarginalizeFactor answers marginalize_factor(factor_ids[]).
func MarginalizeFactor(handle int64, factorIDs []int64) (newFactorID int64, status int64) {
	s, ok := lookup(handle)
	if !ok {
		return -1, verr.Absent
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, code := s.g.MarginalizeFactor(factorIDs)
	return id, int64(code)
}

// MarginalizeNode answers marginalize_node(id).
func MarginalizeNode(handle int64, id int64) (newFactorID int64, status int64) {
	s, ok := lookup(handle)
	if !ok {
		return -1, verr.Absent
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	newID, code := s.g.MarginalizeNode(id)
	return newID, int64(code)
}
