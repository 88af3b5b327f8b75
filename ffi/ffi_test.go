// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ffi

import (
	"math"
	"testing"

	"github.com/cpmech/fgraph/verr"
	"github.com/cpmech/gosl/chk"
)

func identity(n int) []float64 {
	m := make([]float64, n*n)
	for i := 0; i < n; i++ {
		m[i*n+i] = 1
	}
	return m
}

// buildTriangle wires a handle-keyed SE(2) pose-graph triangle via the
// bulk add_gaussian path, with a single shared information matrix (length
// equality against "one factor's worth" rather than "num_factors times
// one factor's worth").
func buildTriangle(tst *testing.T) (handle int64, id1, id2, id3 int64) {
	handle = NewGraph()
	id1, id2, id3 = 1, 2, 3
	ids := []int64{id1, id2, id2, id3, id3, id1}
	measurement := []float64{
		1, 0, 0,
		0, 1, math.Pi / 2,
		-1, 1, -math.Pi / 2,
	}
	information := identity(3) // shared across all 3 factors
	loss := []float64{-1}      // shared: no robust loss
	groupIDs := []int64{0}

	factorIDs, status := AddGaussian(handle, "TwoPoseSE2", ids, measurement, information, loss, 3, groupIDs)
	if len(factorIDs) != 3 {
		tst.Fatalf("expected 3 factor ids, got %d", len(factorIDs))
	}
	for i, code := range status {
		if i >= 3 {
			break
		}
		if code != verr.Present {
			tst.Fatalf("factor %d failed to add: code %d", i, code)
		}
	}
	Fix(handle, []int64{id1})
	return handle, id1, id2, id3
}

func TestSplitBulkBufferSharedVsPerFactor(tst *testing.T) {
	shared, ok := splitBulkBuffer([]float64{1, 2, 3}, 4, 3)
	if !ok || len(shared) != 4 {
		tst.Fatalf("expected shared split to broadcast across 4 factors, got %v ok=%v", shared, ok)
	}
	for _, s := range shared {
		chk.Vector(tst, "shared slice", 1e-15, s, []float64{1, 2, 3})
	}

	perFactor, ok := splitBulkBuffer([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	if !ok || len(perFactor) != 2 {
		tst.Fatalf("expected per-factor split into 2 slices, got %v ok=%v", perFactor, ok)
	}
	chk.Vector(tst, "perFactor[0]", 1e-15, perFactor[0], []float64{1, 2, 3})
	chk.Vector(tst, "perFactor[1]", 1e-15, perFactor[1], []float64{4, 5, 6})

	if _, ok := splitBulkBuffer([]float64{1, 2}, 4, 3); ok {
		tst.Fatalf("expected an unrelated length to be rejected")
	}
}

func TestNewGraphAddBulkAndQueries(tst *testing.T) {
	handle, id1, id2, id3 := buildTriangle(tst)
	defer DestroyGraph(handle)

	if NumNodes(handle) != 3 {
		tst.Fatalf("expected 3 nodes, got %d", NumNodes(handle))
	}
	if NumFactors(handle) != 3 {
		tst.Fatalf("expected 3 factors, got %d", NumFactors(handle))
	}

	codes := HasNode(handle, []int64{id1, id2, id3, 999})
	if len(codes) != 5 {
		tst.Fatalf("expected 4 per-id codes + trailing flag, got %v", codes)
	}
	if codes[0] != verr.Present || codes[3] != verr.Absent {
		tst.Fatalf("unexpected HasNode codes: %v", codes)
	}

	names, status := NodeType(handle, []int64{id1})
	if len(status) != 0 {
		tst.Fatalf("expected no trailing flag on all-present NodeType, got %v", status)
	}
	if names[0] != "POSE_SE2" && names[0] == "" {
		tst.Fatalf("expected a non-empty node type name, got %q", names[0])
	}
}

func TestSetStateAndGetStateRoundTrip(tst *testing.T) {
	handle, id1, _, _ := buildTriangle(tst)
	defer DestroyGraph(handle)

	newState := []float64{2, 3, 0.5}
	codes := SetState(handle, []int64{id1}, newState, []int64{3})
	if len(codes) != 1 || codes[0] != verr.Present {
		tst.Fatalf("expected SetState to succeed, got %v", codes)
	}

	state, lens, status := GetState(handle, []int64{id1})
	if len(status) != 0 {
		tst.Fatalf("expected no trailing flag, got %v", status)
	}
	if lens[0] != 3 {
		tst.Fatalf("expected len 3, got %d", lens[0])
	}
	chk.Vector(tst, "state", 1e-15, state, newState)
}

func TestFixFreeAndIsFixed(tst *testing.T) {
	handle, id1, id2, _ := buildTriangle(tst)
	defer DestroyGraph(handle)

	codes := IsFixed(handle, []int64{id1, id2})
	if len(codes) != 2 {
		tst.Fatalf("expected no trailing flag, got %v", codes)
	}
	if codes[0] != 1 || codes[1] != 0 {
		tst.Fatalf("expected id1 fixed and id2 free, got %v", codes)
	}

	Free(handle, []int64{id1})
	codes = IsFixed(handle, []int64{id1})
	if codes[0] != 0 {
		tst.Fatalf("expected id1 free after Free, got %v", codes)
	}
}

func TestRemoveNodeCascadeRemovesFactors(tst *testing.T) {
	handle, _, id2, _ := buildTriangle(tst)
	defer DestroyGraph(handle)

	removed := RemoveNode(handle, id2)
	if len(removed) != 2 {
		tst.Fatalf("expected 2 removed factors, got %d: %v", len(removed), removed)
	}
	if NumFactors(handle) != 1 {
		tst.Fatalf("expected 1 remaining factor, got %d", NumFactors(handle))
	}
}

func TestOptimizeDecodeEncodeAndCovariance(tst *testing.T) {
	handle, _, id2, _ := buildTriangle(tst)
	defer DestroyGraph(handle)

	// [max_iters, fn_tol, grad_tol, step_tol, verbosity, trust_region_strategy,
	//  covariance_type_count, covariance_type_id(-2=all poses/points), trust_region_radius]
	optionsWire := []float64{200, 1e-6, 1e-10, 1e-8, 0, 0, 1, -2, 1e4}

	summaryWire, optimizedIDs, fixedIDs := Optimize(handle, optionsWire, nil, nil)
	if len(summaryWire) != 7 {
		tst.Fatalf("expected a 7-element summary wire, got %d: %v", len(summaryWire), summaryWire)
	}
	usable := summaryWire[6]
	if usable != 1 {
		tst.Fatalf("expected a usable solution, wire=%v", summaryWire)
	}
	finalCost := summaryWire[1]
	chk.Scalar(tst, "final_cost", 1e-6, finalCost, 0)

	if len(optimizedIDs) == 0 {
		tst.Fatalf("expected at least one optimized id")
	}
	if len(fixedIDs) != 1 {
		tst.Fatalf("expected exactly one fixed id, got %v", fixedIDs)
	}

	blocks, dims, status := NodeCovariance(handle, []int64{id2})
	if len(status) != 0 {
		tst.Fatalf("expected no missing-covariance flag, got %v", status)
	}
	if dims[0] != 3 {
		tst.Fatalf("expected a 3x3 covariance block for a PoseSE2 node, got dim %d", dims[0])
	}
	if len(blocks) != 9 {
		tst.Fatalf("expected 9 flat covariance entries, got %d", len(blocks))
	}
}

func TestUnknownHandleIsNoop(tst *testing.T) {
	bogus := int64(999999)
	if NumNodes(bogus) != 0 {
		tst.Fatalf("expected 0 nodes for an unknown handle")
	}
	if HasNode(bogus, []int64{1}) != nil {
		tst.Fatalf("expected nil result for an unknown handle")
	}
	DestroyGraph(bogus) // must not panic
}
