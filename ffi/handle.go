// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ffi is the thin flat-array ABI shim described in spec §6/§9:
// "MATLAB/ROS C ABI with flat-array input/output → keep a thin ABI shim
// isolated from the core; the core API is structured." Every function here
// marshals/unmarshals plain []float64 or []int64 buffers around the
// structured graph.Graph and optimize.Optimize API; it holds no algorithmic
// logic of its own.
//
// Handles are plain int64s indexing a package-level session table, playing
// the role the teacher's global Global.Sim / Global.Dom handle plays for
// one in-process finite-element run, generalized to many concurrently-open
// graphs since this engine is a library, not a single simulation driver.
package ffi

import (
	"sync"

	"github.com/cpmech/fgraph/graph"
)

// session bundles one open graph with the covariance blocks recovered by
// its most recent optimize call, empty when that call requested none or its
// solution was unusable (node_covariance answers queries against this
// cache, per spec §7 "covariance availability").
type session struct {
	mu    sync.Mutex
	g     *graph.Graph
	covar map[int64][][]float64
}

var (
	handlesMu sync.Mutex
	handles   = make(map[int64]*session)
	nextHandle int64 = 1
)

// NewGraph creates an empty graph and returns an opaque handle to it.
func NewGraph() int64 {
	handlesMu.Lock()
	defer handlesMu.Unlock()
	h := nextHandle
	nextHandle++
	handles[h] = &session{g: graph.NewGraph()}
	return h
}

// DestroyGraph releases the graph behind handle. Destroying an unknown or
// already-destroyed handle is a no-op.
func DestroyGraph(handle int64) {
	handlesMu.Lock()
	defer handlesMu.Unlock()
	delete(handles, handle)
}

// lookup resolves a handle to its session, or reports ok=false if the
// handle is unknown (a caller bug, not a recoverable validation failure —
// the ABI layer still returns ok rather than panicking, since a dangling
// handle from a misbehaving caller should never crash the process).
func lookup(handle int64) (*session, bool) {
	handlesMu.Lock()
	s, ok := handles[handle]
	handlesMu.Unlock()
	return s, ok
}
