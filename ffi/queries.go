// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ffi

import "github.com/cpmech/fgraph/graph"

// NumNodes answers num_nodes(handle).
func NumNodes(handle int64) int {
	s, ok := lookup(handle)
	if !ok {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.NumNodes()
}

// NumFactors answers num_factors(handle).
func NumFactors(handle int64) int {
	s, ok := lookup(handle)
	if !ok {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.NumFactors()
}

// GetNodeIDs answers get_node_ids(group_ids, node_type_str, factor_type_str).
func GetNodeIDs(handle int64, groupID int64, nodeType string, factorType string) []int64 {
	s, ok := lookup(handle)
	if !ok {
		return nil
	}
	nt, ok := nodeTypeByName(nodeType)
	if !ok {
		return nil
	}
	ft, ok := factorTypeByName(factorType)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.GetNodeIDs(groupID, nt, ft)
}

// IsConnected answers is_connected(seeds).
func IsConnected(handle int64, seeds []int64) bool {
	s, ok := lookup(handle)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.IsConnected(seeds)
}

// IsPoseNode answers is_pose_node(ids[]): 1 per id if its type is one of
// the two pose-seeded-selection pose types (SE(2)/SE(3), not SIM(3)), 0
// otherwise, -1 for an absent id.
func IsPoseNode(handle int64, ids []int64) []int64 {
	s, ok := lookup(handle)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(ids))
	for i, id := range ids {
		typ, exists := s.g.NodeType(id)
		if !exists {
			out[i] = -1
			continue
		}
		if typ.IsPoseNode() {
			out[i] = 1
		}
	}
	return out
}

// allVariableTypes/allFactorTypes enumerate the closed type sets so the
// name->type lookup tables below are built from each type's own String(),
// rather than a hand-maintained copy that could drift from graph/types.go.
var allVariableTypes = []graph.VariableType{
	graph.PoseSE3, graph.PoseSE2, graph.PointR3, graph.PointR2,
	graph.VelocityR3, graph.IMUBias, graph.IntrinsicScalar,
	graph.SensorTransformSE3, graph.PoseSIM3, graph.GravityQuaternion,
	graph.ScaleScalar,
}

var allFactorTypes = []graph.FactorType{
	graph.BetweenPosesSE2, graph.BetweenPosesSE3, graph.PosePointSE2,
	graph.PosePointSE3, graph.IMU, graph.IMUGravityScale,
	graph.IMUGravityScaleTransform, graph.GPS, graph.PriorPoseSE2,
	graph.PriorPoseSE3, graph.PriorIMUBias, graph.PriorVelocity,
	graph.CameraProjection, graph.DistortedProjectionPinhole,
	graph.DistortedProjectionFisheye, graph.DistortedProjectionKannalaBrandt,
	graph.DistortedProjectionEquidistant, graph.BetweenPosesSIM3, graph.Marginal,
}

var nodeTypeByNameTable map[string]graph.VariableType
var factorTypeByNameTable map[string]graph.FactorType

func init() {
	nodeTypeByNameTable = make(map[string]graph.VariableType, len(allVariableTypes))
	for _, t := range allVariableTypes {
		nodeTypeByNameTable[t.String()] = t
	}
	factorTypeByNameTable = make(map[string]graph.FactorType, len(allFactorTypes))
	for _, t := range allFactorTypes {
		factorTypeByNameTable[t.String()] = t
	}
}

func nodeTypeByName(name string) (graph.VariableType, bool) {
	t, ok := nodeTypeByNameTable[name]
	return t, ok
}

func factorTypeByName(name string) (graph.FactorType, bool) {
	t, ok := factorTypeByNameTable[name]
	return t, ok
}
