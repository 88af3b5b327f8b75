// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"math"

	"github.com/cpmech/fgraph/graph"
	"github.com/cpmech/fgraph/optimize"
	"github.com/cpmech/gosl/utl"
)

// main builds and solves the SE(2) pose-graph triangle used throughout the
// package tests (three poses, three between-pose edges, one pin), printing
// the optimized states the way the teacher's main.go prints simulation
// results — a small end-to-end smoke run, not a library entry point.
func main() {
	defer func() {
		if err := recover(); err != nil {
			utl.PfRed("ERROR: %v\n", err)
		}
	}()

	verbose := flag.Bool("v", false, "set Options.Verbosity to PerIteration (the optimizer prints nothing itself)")
	flag.Parse()

	utl.PfWhite("\nfgraph demo -- factor-graph nonlinear least squares\n\n")

	g := graph.NewGraph()

	id1, id2, id3 := int64(1), int64(2), int64(3)

	identity3 := []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}

	if _, code := g.AddFactor("TwoPoseSE2", []int64{id1, id2}, []float64{1, 0, 0}, identity3, -1, 0); code != 1 {
		utl.Panic("failed to add factor 1-2")
	}
	if _, code := g.AddFactor("TwoPoseSE2", []int64{id2, id3}, []float64{0, 1, math.Pi / 2}, identity3, -1, 0); code != 1 {
		utl.Panic("failed to add factor 2-3")
	}
	if _, code := g.AddFactor("TwoPoseSE2", []int64{id3, id1}, []float64{-1, 1, -math.Pi / 2}, identity3, -1, 0); code != 1 {
		utl.Panic("failed to add factor 3-1")
	}

	g.Fix(id1)

	opts := optimize.DefaultOptions()
	if *verbose {
		opts.Verbosity = optimize.PerIteration
	}

	summary, _ := optimize.Optimize(g, nil, opts, nil)

	utl.Pf("termination: %v (%s)\n", summary.Termination, summary.Message)
	utl.Pf("initial cost: %v  final cost: %v\n", summary.InitialCost, summary.FinalCost)
	utl.Pf("successful steps: %d  unsuccessful steps: %d\n", summary.SuccessfulSteps, summary.UnsuccessfulSteps)

	for _, id := range []int64{id1, id2, id3} {
		st, _ := g.GetState(id)
		utl.Pf("node %d: %v\n", id, st)
	}
}
