// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"testing"

	"github.com/cpmech/fgraph/verr"
)

func identity(n int) []float64 { return identityMat(n) }

// Scenario F — type-mismatch rejection must not mutate the graph.
func TestAddFactorTypeMismatchLeavesGraphUnchanged(tst *testing.T) {
	g := NewGraph()
	if _, code := g.AddFactor("Pose_SE3_Prior_F", []int64{7}, []float64{0, 0, 0, 0, 0, 0, 1}, identity(6), -1, 0); code != verr.Present {
		tst.Fatalf("expected first add to succeed, got code %d", code)
	}
	before := g.NumFactors()

	_, code := g.AddFactor("Pose_SE2_Prior_F", []int64{7}, []float64{0, 0, 0}, identity(3), -1, 0)
	if code != verr.TypeMismatch {
		tst.Fatalf("expected TypeMismatch, got %d", code)
	}
	if g.NumFactors() != before {
		tst.Fatalf("expected num_factors unchanged, got %d want %d", g.NumFactors(), before)
	}
	typ, ok := g.NodeType(7)
	if !ok || typ != PoseSE3 {
		tst.Fatalf("expected node 7 to remain POSE_SE3, got %v", typ)
	}
}

// Invariant 4 — add then remove restores node-level state.
func TestAddThenRemoveRestoresNodeSet(tst *testing.T) {
	g := NewGraph()
	before := g.NumNodes()
	id, code := g.AddFactor("Vel3_Prior_F", []int64{1}, []float64{1, 2, 3}, identity(3), -1, 0)
	if code != verr.Present {
		tst.Fatalf("add failed: %d", code)
	}
	if !g.RemoveFactor(id) {
		tst.Fatalf("remove failed")
	}
	if g.NumNodes() != before {
		tst.Fatalf("expected node count restored to %d, got %d", before, g.NumNodes())
	}
	if g.HasNode(1) {
		tst.Fatalf("expected dangling node 1 to be collected")
	}
}

// Scenario B — removing a node cascades to its incident factors.
func TestRemoveNodeCascade(tst *testing.T) {
	g := NewGraph()
	f12, _ := g.AddFactor("TwoPoseSE2", []int64{1, 2}, []float64{1, 0, 0}, identity(3), -1, 0)
	f23, _ := g.AddFactor("TwoPoseSE2", []int64{2, 3}, []float64{0, 1, 0}, identity(3), -1, 0)
	g.AddFactor("TwoPoseSE2", []int64{3, 1}, []float64{-1, 0, 0}, identity(3), -1, 0)

	removed := g.RemoveNode(2)
	if len(removed) != 2 {
		tst.Fatalf("expected 2 removed factors, got %d: %v", len(removed), removed)
	}
	seen := map[int64]bool{}
	for _, id := range removed {
		seen[id] = true
	}
	if !seen[f12] || !seen[f23] {
		tst.Fatalf("expected factor ids %d and %d removed, got %v", f12, f23, removed)
	}
	if g.NumFactors() != 1 {
		tst.Fatalf("expected 1 remaining factor (the prior-free triangle leg), got %d", g.NumFactors())
	}
	if g.HasNode(2) {
		tst.Fatalf("expected node 2 to be collected")
	}
	if !g.HasNode(1) || !g.HasNode(3) {
		tst.Fatalf("expected nodes 1 and 3 to remain")
	}
}

// Invariant 5 — is_connected(all) iff one connected component.
func TestIsConnectedAll(tst *testing.T) {
	g := NewGraph()
	g.AddFactor("TwoPoseSE2", []int64{1, 2}, []float64{1, 0, 0}, identity(3), -1, 0)
	g.AddFactor("TwoPoseSE2", []int64{2, 3}, []float64{0, 1, 0}, identity(3), -1, 0)
	all := g.AllVariableIDs()
	if !g.IsConnected(all) {
		tst.Fatalf("expected chain 1-2-3 to be connected")
	}

	g.AddFactor("Vel3_Prior_F", []int64{99}, []float64{0, 0, 0}, identity(3), -1, 0)
	all = g.AllVariableIDs()
	if g.IsConnected(all) {
		tst.Fatalf("expected isolated node 99 to break connectivity")
	}
}

// Invariant 8 — fix/free round trip.
func TestFixFreeRoundTrip(tst *testing.T) {
	g := NewGraph()
	g.AddFactor("Vel3_Prior_F", []int64{1}, []float64{0, 0, 0}, identity(3), -1, 0)
	before, _ := g.IsFixed(1)
	g.Fix(1)
	g.Free(1)
	after, _ := g.IsFixed(1)
	if before != after {
		tst.Fatalf("expected is_fixed round trip, got before=%v after=%v", before, after)
	}
	state, _ := g.GetState(1)
	if state[0] != 0 || state[1] != 0 || state[2] != 0 {
		tst.Fatalf("expected state unchanged by fix/free, got %v", state)
	}
}

// Scenario C — marginalizing an interior pose preserves the endpoints'
// connectivity through the synthesized marginal factor.
func TestMarginalizeNodeChain(tst *testing.T) {
	g := NewGraph()
	meas := []float64{1, 0, 0, 0, 0, 0, 1}
	g.AddFactor("TwoPoseSE3", []int64{1, 2}, meas, identity(6), -1, 0)
	g.AddFactor("TwoPoseSE3", []int64{2, 3}, meas, identity(6), -1, 0)
	g.AddFactor("TwoPoseSE3", []int64{3, 4}, meas, identity(6), -1, 0)

	newID, code := g.MarginalizeNode(2)
	if code != verr.Present {
		tst.Fatalf("expected marginalize to succeed, got code %d", code)
	}
	if g.HasNode(2) {
		tst.Fatalf("expected node 2 removed")
	}
	f, ok := g.Factor(newID)
	if !ok {
		tst.Fatalf("expected new marginal factor to be registered")
	}
	if f.FactorType() != Marginal {
		tst.Fatalf("expected Marginal factor type, got %v", f.FactorType())
	}
	ids := f.VariableIDs()
	if len(ids) != 2 {
		tst.Fatalf("expected marginal factor to connect exactly 2 retained nodes, got %v", ids)
	}
	connects := map[int64]bool{ids[0]: true, ids[1]: true}
	if !connects[1] || !connects[3] {
		tst.Fatalf("expected marginal factor to connect {1,3}, got %v", ids)
	}
	if !g.HasNode(1) || !g.HasNode(3) || !g.HasNode(4) {
		tst.Fatalf("expected nodes 1, 3, 4 to remain")
	}
}

func TestPartialGraphBetweenPosesNeedsBothSeeds(tst *testing.T) {
	g := NewGraph()
	g.AddFactor("TwoPoseSE2", []int64{1, 2}, []float64{1, 0, 0}, identity(3), -1, 0)
	g.AddFactor("TwoPoseSE2", []int64{2, 3}, []float64{0, 1, 0}, identity(3), -1, 0)

	_, includedVars := g.SelectPartialGraph([]int64{1})
	if !includedVars[1] {
		tst.Fatalf("expected seed 1 included")
	}
	if includedVars[3] {
		tst.Fatalf("did not expect node 3 to be pulled in by a single seed on a between-poses factor")
	}
}

// IsConnected must use the sub-graph induced by seeds, not the whole
// graph's adjacency: two seeds bridged only by a non-seed intermediate
// pose on a between-poses factor must be reported disconnected.
func TestIsConnectedInducedSubgraphNotWholeGraph(tst *testing.T) {
	g := NewGraph()
	g.AddFactor("TwoPoseSE2", []int64{1, 2}, []float64{1, 0, 0}, identity(3), -1, 0)
	g.AddFactor("TwoPoseSE2", []int64{2, 3}, []float64{0, 1, 0}, identity(3), -1, 0)

	if g.IsConnected([]int64{1, 3}) {
		tst.Fatalf("expected seeds 1 and 3 (bridged only via non-seed node 2) to be disconnected")
	}
	if !g.IsConnected([]int64{1, 2}) {
		tst.Fatalf("expected seeds 1 and 2 (directly connected by a factor) to be connected")
	}
}

func TestNodesInPartialGraphRequiresPoseSeeds(tst *testing.T) {
	g := NewGraph()
	g.AddFactor("TwoPoseSE2", []int64{1, 2}, []float64{1, 0, 0}, identity(3), -1, 0)
	g.AddFactor("PosePointSE2", []int64{2, 10}, []float64{0, 0}, identity(2), -1, 0)

	ids := g.NodesInPartialGraph([]int64{1, 2})
	found := map[int64]bool{}
	for _, id := range ids {
		found[id] = true
	}
	if !found[1] || !found[2] {
		tst.Fatalf("expected nodes 1 and 2 in the partial graph, got %v", ids)
	}

	// node 10 is a point, not a pose node, so seeding on it is rejected.
	if ids := g.NodesInPartialGraph([]int64{10}); ids != nil {
		tst.Fatalf("expected nil for a non-pose seed, got %v", ids)
	}
}

func TestFactorResidualReevaluatesAtCurrentState(tst *testing.T) {
	g := NewGraph()
	fid, code := g.AddFactor("Vel3_Prior_F", []int64{1}, []float64{1, 0, 0}, identity(3), -1, 0)
	if code != verr.Present {
		tst.Fatalf("add failed: %d", code)
	}
	g.SetState(1, []float64{0, 0, 0})
	res, ok := g.FactorResidual(fid)
	if !ok {
		tst.Fatalf("expected a residual for a known factor id")
	}
	// state set to zero, measurement is {1,0,0}: residual should be non-zero.
	if res[0] == 0 {
		tst.Fatalf("expected a non-zero residual against the prior, got %v", res)
	}
	// must not mutate the node's state.
	state, _ := g.GetState(1)
	if state[0] != 0 || state[1] != 0 || state[2] != 0 {
		tst.Fatalf("expected FactorResidual not to mutate node state, got %v", state)
	}

	if _, ok := g.FactorResidual(999999); ok {
		tst.Fatalf("expected ok=false for an unknown factor id")
	}
}
