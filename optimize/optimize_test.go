// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"math"
	"testing"

	"github.com/cpmech/fgraph/graph"
	"github.com/cpmech/gosl/chk"
)

func identity(n int) []float64 {
	m := make([]float64, n*n)
	for i := 0; i < n; i++ {
		m[i*n+i] = 1
	}
	return m
}

func buildTriangle() *graph.Graph {
	g := graph.NewGraph()
	id1, id2, id3 := int64(1), int64(2), int64(3)
	g.AddFactor("TwoPoseSE2", []int64{id1, id2}, []float64{1, 0, 0}, identity(3), -1, 0)
	g.AddFactor("TwoPoseSE2", []int64{id2, id3}, []float64{0, 1, math.Pi / 2}, identity(3), -1, 0)
	g.AddFactor("TwoPoseSE2", []int64{id3, id1}, []float64{-1, 1, -math.Pi / 2}, identity(3), -1, 0)
	g.Fix(id1)
	return g
}

// Scenario A — an SE(2) pose-graph triangle converges to near-zero cost.
func TestOptimizeTriangleConverges(tst *testing.T) {
	g := buildTriangle()
	opts := DefaultOptions()
	summary, _ := Optimize(g, nil, opts, nil)

	if !summary.SolutionUsable {
		tst.Fatalf("expected a usable solution, got termination %v: %s", summary.Termination, summary.Message)
	}
	chk.Scalar(tst, "final_cost", 1e-6, summary.FinalCost, 0)

	st2, _ := g.GetState(2)
	chk.Vector(tst, "node2", 1e-4, st2, []float64{1, 0, 0})

	st3, _ := g.GetState(3)
	chk.Vector(tst, "node3", 1e-4, []float64{st3[0], st3[1]}, []float64{1, 1})
}

// Law 6 — re-optimizing an already-converged graph is a near no-op.
func TestOptimizeIdempotentAtFixedPoint(tst *testing.T) {
	g := buildTriangle()
	opts := DefaultOptions()
	first, _ := Optimize(g, nil, opts, nil)
	if !first.SolutionUsable {
		tst.Fatalf("expected first solve usable")
	}
	second, _ := Optimize(g, nil, opts, nil)
	if !second.SolutionUsable {
		tst.Fatalf("expected second solve usable")
	}
	chk.Scalar(tst, "second_initial_cost", 1e-6, second.InitialCost, first.FinalCost)
	chk.Scalar(tst, "second_final_cost", 1e-6, second.FinalCost, first.FinalCost)
}

// Scenario E — cancellation stops the loop and still returns a usable,
// non-converged summary rather than a failure.
func TestOptimizeCancellation(tst *testing.T) {
	g := buildTriangle()
	opts := DefaultOptions()
	cancel := true
	summary, _ := Optimize(g, nil, opts, &cancel)
	if summary.Termination == Failure {
		tst.Fatalf("expected cancellation to not be reported as a failure, got %v", summary.Termination)
	}
}

// Scenario D — covariance recovery on a pinned, converged graph.
func TestOptimizeCovarianceRecovery(tst *testing.T) {
	g := buildTriangle()
	opts := DefaultOptions()
	opts.Covariance = CovarianceRequest{AllPosesAndPoints: true}
	summary, cov := Optimize(g, nil, opts, nil)
	if !summary.SolutionUsable {
		tst.Fatalf("expected usable solution")
	}
	if cov == nil {
		tst.Fatalf("expected non-nil covariance map")
	}
	if _, ok := cov[2]; !ok {
		tst.Fatalf("expected a covariance block for node 2")
	}
}

// ExpandCovarianceRequest is independently testable without running
// Optimize (SPEC_FULL.md §C.3): pass an explicit candidate id set and check
// the resolved list directly.
func TestExpandCovarianceRequestAllPosesAndPoints(tst *testing.T) {
	g := buildTriangle()
	g.AddFactor("PosePointSE2", []int64{1, 10}, []float64{0, 0}, identity(2), -1, 0)

	all := g.AllVariableIDs()
	got := ExpandCovarianceRequest(g, all, CovarianceRequest{AllPosesAndPoints: true})
	found := map[int64]bool{}
	for _, id := range got {
		found[id] = true
	}
	if !found[1] || !found[2] || !found[3] || !found[10] {
		tst.Fatalf("expected all 3 poses and the point node 10, got %v", got)
	}
}

func TestExpandCovarianceRequestByTypes(tst *testing.T) {
	g := buildTriangle()
	g.AddFactor("PosePointSE2", []int64{1, 10}, []float64{0, 0}, identity(2), -1, 0)

	all := g.AllVariableIDs()
	got := ExpandCovarianceRequest(g, all, CovarianceRequest{Types: []graph.VariableType{graph.PointR2}})
	if len(got) != 1 || got[0] != 10 {
		tst.Fatalf("expected only point node 10 selected by type, got %v", got)
	}
}

func TestExpandCovarianceRequestNoneSelectsNothing(tst *testing.T) {
	g := buildTriangle()
	all := g.AllVariableIDs()
	got := ExpandCovarianceRequest(g, all, CovarianceRequest{None: true})
	if len(got) != 0 {
		tst.Fatalf("expected no ids selected under None, got %v", got)
	}
}

func TestOptimizeLineSearchDoesNotFail(tst *testing.T) {
	g := buildTriangle()
	opts := DefaultOptions()
	opts.Minimizer = LineSearch
	summary, _ := Optimize(g, nil, opts, nil)
	if summary.Termination == Failure {
		tst.Fatalf("expected line-search minimizer to not fail, got %s", summary.Message)
	}
}
