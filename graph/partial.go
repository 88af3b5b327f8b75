// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import "sort"

// SelectPartialGraph walks the factor set seeded by a set of pose-node
// ids and returns the included factor ids plus the set of variable ids
// they touch, per spec §4.5's pose-seeded inclusion rules. A nil seedIDs
// means "all": callers should skip partial selection entirely and walk
// every live factor instead (this function is only for the non-nil case).
func (g *Graph) SelectPartialGraph(seedIDs []int64) ([]int64, map[int64]bool) {
	seeds := make(map[int64]bool, len(seedIDs))
	for _, id := range seedIDs {
		seeds[id] = true
	}

	included := make(map[int64]bool)
	includedVars := make(map[int64]bool)
	for seed := range seeds {
		includedVars[seed] = true
	}

	for factorID, f := range g.factors {
		if isUnselectedPoseNodeIncluded(f, seeds) {
			included[factorID] = true
			for _, id := range f.VariableIDs() {
				includedVars[id] = true
			}
		}
	}

	// Second pass: velocity-prior and IMU-bias-prior factors whose sole
	// node is already in the included-variable set (spec §4.5, preserves
	// regularisation when the user optimises a window).
	for factorID, f := range g.factors {
		if included[factorID] {
			continue
		}
		if f.FactorType() != PriorVelocity && f.FactorType() != PriorIMUBias {
			continue
		}
		ids := f.VariableIDs()
		if len(ids) == 1 && includedVars[ids[0]] {
			included[factorID] = true
			includedVars[ids[0]] = true
		}
	}

	out := make([]int64, 0, len(included))
	for id := range included {
		out = append(out, id)
	}
	return out, includedVars
}

// NodesInPartialGraph returns the sorted set of variable ids a pose-seeded
// partial optimization over seedIDs would touch, without running an
// optimization — mirrors the original's findNodesInPartialGraphByPoseNodes,
// useful for a caller inspecting a window before paying for a solve.
// Every id in seedIDs must be a pose node (SE(2) or SE(3)); if any is not,
// this returns nil, matching the original's isPoseNode guard.
func (g *Graph) NodesInPartialGraph(seedIDs []int64) []int64 {
	for _, id := range seedIDs {
		typ, ok := g.NodeType(id)
		if !ok || !typ.IsPoseNode() {
			return nil
		}
	}
	_, includedVars := g.SelectPartialGraph(seedIDs)
	out := make([]int64, 0, len(includedVars))
	for id := range includedVars {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// isUnselectedPoseNodeIncluded decides whether factor f should be pulled
// into a pose-seeded partial graph, mirroring the original engine's
// eponymous helper:
//
//   - a between-poses factor (SE(2)/SE(3)/SIM(3)) qualifies iff every pose
//     id it connects is a seed;
//   - an IMU-family factor qualifies iff both its endpoint pose ids (the
//     first and, for IMU, the fourth connected node — see graph/family_imu.go)
//     are seeds;
//   - a marginal factor qualifies iff every pose-type (SE(2)/SE(3), not
//     SIM(3)) retained id it connects is a seed;
//   - any other factor qualifies iff it touches at least one seed.
func isUnselectedPoseNodeIncluded(f Factor, seeds map[int64]bool) bool {
	ftype := f.FactorType()
	ids := f.VariableIDs()

	switch {
	case ftype.IsBetweenPoses():
		for _, id := range ids {
			if !seeds[id] {
				return false
			}
		}
		return true

	case ftype.IsIMUFamily():
		poseI, poseJ := ids[0], ids[3]
		return seeds[poseI] && seeds[poseJ]

	case ftype == Marginal:
		for _, id := range ids {
			if f.VariableType(id).IsPoseNode() && !seeds[id] {
				return false
			}
		}
		return true

	default:
		for _, id := range ids {
			if seeds[id] {
				return true
			}
		}
		return false
	}
}
