// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import "time"

// TerminationType classifies how an Optimize call ended (spec §4.5 "Summary").
type TerminationType int

const (
	Convergence TerminationType = iota
	NoConvergence
	Failure
)

func (t TerminationType) String() string {
	switch t {
	case Convergence:
		return "CONVERGENCE"
	case NoConvergence:
		return "NO_CONVERGENCE"
	case Failure:
		return "FAILURE"
	}
	return "UNKNOWN"
}

// Summary is the solution summary returned by every Optimize call (spec
// §4.5 and §6 "Solution-info wire format").
type Summary struct {
	InitialCost      float64
	FinalCost        float64
	SuccessfulSteps  int
	UnsuccessfulSteps int
	TotalTime        time.Duration
	Termination      TerminationType
	Message          string
	// SolutionUsable is true iff Termination is Convergence or
	// NoConvergence; false only on a reported Solver failure (spec §7
	// "User-visible behavior of optimize").
	SolutionUsable bool

	OptimizedIDs []int64
	FixedIDs     []int64
}
