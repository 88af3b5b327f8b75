// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import "github.com/cpmech/gosl/chk"

// initialPoolCapacity reserves a large arena upfront so appends never
// relocate storage while variables exist: solver pointers into the arena
// must stay stable across calls (spec §5 "Resource discipline").
const initialPoolCapacity = 1 << 20 // ~1e6 doubles, mirrors spec §5

// slot records where one variable's state lives in the pool and its schema.
type slot struct {
	offset int
	dim    int
	typ    VariableType
	fixed  bool
	alive  bool
}

// variableRegistry owns variable states in one contiguous, append-only
// pool; ids are mapped to pool offsets. This mirrors the teacher's
// append-only storage discipline (fem/domain.go's equation-numbered Y
// vector) generalized from "equation slots" to "id slots".
type variableRegistry struct {
	pool   []float64
	slots  map[int64]*slot
	offset int // next free offset in pool
}

func newVariableRegistry() *variableRegistry {
	return &variableRegistry{
		pool:  make([]float64, 0, initialPoolCapacity),
		slots: make(map[int64]*slot),
	}
}

// EnsureResult is the outcome of ensureVariable.
type EnsureResult int

const (
	Created EnsureResult = iota
	Existing
	TypeMismatchResult
)

// ensureVariable is idempotent: the first caller wins and sets
// offset+dim+type; subsequent calls must agree on dim and type or fail.
func (r *variableRegistry) ensureVariable(id int64, dim int, typ VariableType, defaultState []float64) EnsureResult {
	if s, ok := r.slots[id]; ok {
		if s.dim != dim || s.typ != typ {
			return TypeMismatchResult
		}
		return Existing
	}
	if len(defaultState) != dim {
		chk.Panic("graph: default_state length %d does not match declared dim %d for type %v", len(defaultState), dim, typ)
	}
	off := r.offset
	r.pool = append(r.pool, defaultState...)
	r.offset += dim
	r.slots[id] = &slot{offset: off, dim: dim, typ: typ, fixed: false, alive: true}
	return Created
}

func (r *variableRegistry) has(id int64) bool {
	s, ok := r.slots[id]
	return ok && s.alive
}

func (r *variableRegistry) typeOf(id int64) (VariableType, bool) {
	s, ok := r.slots[id]
	if !ok || !s.alive {
		return 0, false
	}
	return s.typ, true
}

func (r *variableRegistry) dimOf(id int64) (int, bool) {
	s, ok := r.slots[id]
	if !ok || !s.alive {
		return 0, false
	}
	return s.dim, true
}

// getState returns a copy of the variable's current state.
func (r *variableRegistry) getState(id int64) ([]float64, bool) {
	s, ok := r.slots[id]
	if !ok || !s.alive {
		return nil, false
	}
	out := make([]float64, s.dim)
	copy(out, r.pool[s.offset:s.offset+s.dim])
	return out, true
}

// statePointer returns the live backing slice into the pool (no copy),
// for use by the optimizer, which hands these directly to the Solver.
func (r *variableRegistry) statePointer(id int64) ([]float64, bool) {
	s, ok := r.slots[id]
	if !ok || !s.alive {
		return nil, false
	}
	return r.pool[s.offset : s.offset+s.dim : s.offset+s.dim], true
}

// setState overwrites a variable's state; returns false on dim mismatch or
// unknown id.
func (r *variableRegistry) setState(id int64, values []float64) bool {
	s, ok := r.slots[id]
	if !ok || !s.alive {
		return false
	}
	if len(values) != s.dim {
		return false
	}
	copy(r.pool[s.offset:s.offset+s.dim], values)
	return true
}

func (r *variableRegistry) fix(id int64) bool {
	s, ok := r.slots[id]
	if !ok || !s.alive {
		return false
	}
	s.fixed = true
	return true
}

func (r *variableRegistry) free(id int64) bool {
	s, ok := r.slots[id]
	if !ok || !s.alive {
		return false
	}
	s.fixed = false
	return true
}

func (r *variableRegistry) isFixed(id int64) (bool, bool) {
	s, ok := r.slots[id]
	if !ok || !s.alive {
		return false, false
	}
	return s.fixed, true
}

// remove abandons the slot; the raw pool storage is never compacted
// (spec §4.1 "Storage invariant").
func (r *variableRegistry) remove(id int64) bool {
	s, ok := r.slots[id]
	if !ok || !s.alive {
		return false
	}
	delete(r.slots, id)
	_ = s
	return true
}

// ids returns every currently-alive variable id, in unspecified order.
func (r *variableRegistry) ids() []int64 {
	out := make([]int64, 0, len(r.slots))
	for id := range r.slots {
		out = append(out, id)
	}
	return out
}

func (r *variableRegistry) count() int {
	return len(r.slots)
}
