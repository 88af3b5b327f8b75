// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package verr implements the per-id validation-result sentinel codes used
// throughout fgraph instead of exceptions. The ABI is array-oriented and
// callers want to know which ids were the problem, not just that "an error"
// happened; see spec §7.
package verr

import (
	"log"

	"github.com/cpmech/gosl/utl"
)

// Sentinel codes interleaved into per-id result sequences.
const (
	Present      = 1  // id exists / type matches
	Absent       = -1 // id does not exist
	TypeMismatch = -2 // id exists but type does not match expectation
	DimMismatch  = -3 // supplied vector has the wrong length, or covariance unavailable
)

// NoRetained flags a marginalization request that would leave no retained variable.
const NoRetained = -2

// FixedWouldMarginalize flags a marginalization request that would marginalize a
// fixed variable; the code is returned on its own, without the offending fixed ids.
const FixedWouldMarginalize = -3

// LogCond logs a formatted message when condition is true and returns it
// unchanged, mirroring the teacher's LogErrCond but without ever treating a
// recoverable condition as fatal: callers use the returned bool purely to
// decide whether to short-circuit, the sentinel code itself carries the
// meaning back to the caller.
func LogCond(condition bool, msg string, prm ...interface{}) (stop bool) {
	if condition {
		log.Printf("WARNING: " + utl.Sf(msg, prm...))
	}
	return condition
}

// Exists reports, per id, whether it is present in the supplied membership
// function, appending a trailing Absent flag if any id was absent.
func Exists(ids []int64, has func(int64) bool) (codes []int64) {
	codes = make([]int64, 0, len(ids)+1)
	anyAbsent := false
	for _, id := range ids {
		if has(id) {
			codes = append(codes, Present)
		} else {
			codes = append(codes, Absent)
			anyAbsent = true
		}
	}
	if anyAbsent {
		codes = append(codes, Absent)
	}
	return codes
}

// TypeMatch reports, per id, whether its type (as returned by typeOf) equals
// expected, appending a trailing TypeMismatch flag if any id mismatched.
// Ids that do not exist are reported as Absent and count toward the
// existence check, consistent with checking existence before type (Open
// Question resolution in SPEC_FULL.md §D).
func TypeMatch(ids []int64, typeOf func(int64) (int, bool), expected []int) (codes []int64) {
	codes = make([]int64, 0, len(ids)+1)
	anyBad := false
	for i, id := range ids {
		t, ok := typeOf(id)
		if !ok {
			codes = append(codes, Absent)
			anyBad = true
			continue
		}
		want := expected[0]
		if i < len(expected) {
			want = expected[i]
		}
		if t == want {
			codes = append(codes, Present)
		} else {
			codes = append(codes, TypeMismatch)
			anyBad = true
		}
	}
	if anyBad {
		codes = append(codes, TypeMismatch)
	}
	return codes
}

// Panic is reserved for genuine programmer errors (invariant violations the
// caller could never have triggered through the public API), never for
// user-recoverable validation failures.
func Panic(msg string, prm ...interface{}) {
	panic(utl.Sf(msg, prm...))
}
