// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ffi

import "github.com/cpmech/fgraph/verr"

// HasNode answers has_node(ids[]) as a per-id verr code.
func HasNode(handle int64, ids []int64) []int64 {
	s, ok := lookup(handle)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return verr.Exists(ids, s.g.HasNode)
}

// NodeType answers node_type(ids[]) with a string per id ("" for an
// absent id) plus a trailing verr code, mirroring the Exists convention.
func NodeType(handle int64, ids []int64) (names []string, status []int64) {
	s, ok := lookup(handle)
	if !ok {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	names = make([]string, len(ids))
	anyAbsent := false
	for i, id := range ids {
		typ, exists := s.g.NodeType(id)
		if !exists {
			anyAbsent = true
			continue
		}
		names[i] = typ.String()
	}
	if anyAbsent {
		status = []int64{verr.Absent}
	}
	return names, status
}

// GetState answers get_state(handle, ids[], n, out_state, out_len): a flat
// concatenation of each id's state vector, the per-id length (so callers
// can split heterogeneous-dimension blocks back apart), and a trailing
// verr.Absent code only when some id does not exist (its length is 0 and
// it contributes no values); status is empty when every id exists.
func GetState(handle int64, ids []int64) (state []float64, lens []int64, status []int64) {
	s, ok := lookup(handle)
	if !ok {
		return nil, nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	lens = make([]int64, len(ids))
	anyAbsent := false
	for i, id := range ids {
		st, exists := s.g.GetState(id)
		if !exists {
			anyAbsent = true
			continue
		}
		state = append(state, st...)
		lens[i] = int64(len(st))
	}
	if anyAbsent {
		status = []int64{verr.Absent}
	}
	return state, lens, status
}

// SetState answers set_state(handle, ids[], state[], per_state_len[],
// out_status, out_len): values is the flat concatenation of each id's new
// state, sliced back apart using perStateLen. Returns one verr code per
// id (Present on success, Absent for an unknown id, DimMismatch if the
// supplied slice's length does not match the variable's declared dim)
// plus a trailing flag if any per-id code was not Present.
func SetState(handle int64, ids []int64, values []float64, perStateLen []int64) []int64 {
	s, ok := lookup(handle)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	codes := make([]int64, len(ids))
	anyBad := false
	off := 0
	for i, id := range ids {
		n := int(perStateLen[i])
		if off+n > len(values) {
			codes[i] = verr.DimMismatch
			anyBad = true
			continue
		}
		slice := values[off : off+n]
		off += n
		if !s.g.HasNode(id) {
			codes[i] = verr.Absent
			anyBad = true
			continue
		}
		if !s.g.SetState(id, slice) {
			codes[i] = verr.DimMismatch
			anyBad = true
			continue
		}
		codes[i] = verr.Present
	}
	if anyBad {
		codes = append(codes, verr.DimMismatch)
	}
	return codes
}

// Fix answers fix(ids[]) with a per-id verr code (Present on success,
// Absent for an unknown id) plus a trailing flag.
func Fix(handle int64, ids []int64) []int64 { return toggleFixed(handle, ids, true) }

// Free answers free(ids[]), the inverse of Fix.
func Free(handle int64, ids []int64) []int64 { return toggleFixed(handle, ids, false) }

func toggleFixed(handle int64, ids []int64, fixed bool) []int64 {
	s, ok := lookup(handle)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	codes := make([]int64, len(ids))
	anyBad := false
	for i, id := range ids {
		var okOp bool
		if fixed {
			okOp = s.g.Fix(id)
		} else {
			okOp = s.g.Free(id)
		}
		if okOp {
			codes[i] = verr.Present
		} else {
			codes[i] = verr.Absent
			anyBad = true
		}
	}
	if anyBad {
		codes = append(codes, verr.Absent)
	}
	return codes
}

// IsFixed answers is_fixed(ids[]): 1 per id if fixed, 0 if free, verr.Absent
// if the id does not exist, plus a trailing flag if any id was absent.
func IsFixed(handle int64, ids []int64) []int64 {
	s, ok := lookup(handle)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	codes := make([]int64, len(ids))
	anyAbsent := false
	for i, id := range ids {
		fixed, exists := s.g.IsFixed(id)
		if !exists {
			codes[i] = verr.Absent
			anyAbsent = true
			continue
		}
		if fixed {
			codes[i] = 1
		} else {
			codes[i] = 0
		}
	}
	if anyAbsent {
		codes = append(codes, verr.Absent)
	}
	return codes
}

// NodeCovariance answers node_covariance(ids[]): the flat row-major
// concatenation of each requested id's last-recovered covariance block,
// its (square) dimension, and a trailing verr.DimMismatch if any requested
// id had no stored covariance — not requested at the last optimize call,
// or that call's solution was unusable (spec §7 "covariance availability").
func NodeCovariance(handle int64, ids []int64) (blocks []float64, dims []int64, status []int64) {
	s, ok := lookup(handle)
	if !ok {
		return nil, nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dims = make([]int64, len(ids))
	anyMissing := false
	for i, id := range ids {
		block, have := s.covar[id]
		if !have {
			anyMissing = true
			continue
		}
		n := len(block)
		dims[i] = int64(n)
		for _, row := range block {
			blocks = append(blocks, row...)
		}
	}
	if anyMissing {
		status = []int64{verr.DimMismatch}
	}
	return blocks, dims, status
}
