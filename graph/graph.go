// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import "github.com/cpmech/fgraph/verr"

// Graph owns the bipartite variable/factor graph described in the package
// doc comment: a variableRegistry plus a factor registry, their mutual
// adjacency, and the three secondary indices used by GetNodeIDs.
//
// A Graph is single-threaded: like the teacher's fem.Domain, one instance
// is meant to be driven by one caller at a time (no internal locking).
type Graph struct {
	vars *variableRegistry

	factors      map[int64]Factor
	factorGroup  map[int64]int64
	nextFactorID int64

	// incident[id] is the set of factor ids touching variable id.
	incident map[int64]map[int64]bool

	nodeTypeIndex           map[VariableType]map[int64]bool
	factorTypeNodeTypeIndex map[FactorType]map[VariableType]map[int64]bool
	groupIndex              map[int64]map[FactorType]map[VariableType]map[int64]bool
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		vars:                    newVariableRegistry(),
		factors:                 make(map[int64]Factor),
		factorGroup:             make(map[int64]int64),
		incident:                make(map[int64]map[int64]bool),
		nodeTypeIndex:           make(map[VariableType]map[int64]bool),
		factorTypeNodeTypeIndex: make(map[FactorType]map[VariableType]map[int64]bool),
		groupIndex:              make(map[int64]map[FactorType]map[VariableType]map[int64]bool),
	}
}

// --- variable-level queries, thin wrappers over variableRegistry (spec §4.1) ---

func (g *Graph) HasNode(id int64) bool                      { return g.vars.has(id) }
func (g *Graph) NodeType(id int64) (VariableType, bool)     { return g.vars.typeOf(id) }
func (g *Graph) NodeDim(id int64) (int, bool)                { return g.vars.dimOf(id) }
func (g *Graph) GetState(id int64) ([]float64, bool)        { return g.vars.getState(id) }
func (g *Graph) SetState(id int64, values []float64) bool   { return g.vars.setState(id, values) }
func (g *Graph) Fix(id int64) bool                           { return g.vars.fix(id) }
func (g *Graph) Free(id int64) bool                          { return g.vars.free(id) }
func (g *Graph) IsFixed(id int64) (bool, bool)               { return g.vars.isFixed(id) }
func (g *Graph) NumNodes() int                               { return g.vars.count() }
func (g *Graph) NumFactors() int                             { return len(g.factors) }

// AllVariableIDs returns every live variable id, in unspecified order,
// used by the optimizer's "all" problem-assembly mode (spec §4.5).
func (g *Graph) AllVariableIDs() []int64 { return g.vars.ids() }

// Factor returns the factor registered under factorID, if any.
func (g *Graph) Factor(factorID int64) (Factor, bool) {
	f, ok := g.factors[factorID]
	return f, ok
}

// FactorIDs returns every live factor id, in unspecified order.
func (g *Graph) FactorIDs() []int64 {
	out := make([]int64, 0, len(g.factors))
	for id := range g.factors {
		out = append(out, id)
	}
	return out
}

// FactorResidual re-evaluates factorID's residual at its connected
// variables' current graph state, without perturbing any variable state,
// and returns it — a diagnostic helper mirroring the original's
// getIndividualFactorResidualAssumingStateUnchanged, useful for tests and
// inspection without running a full optimize call. Returns ok=false for
// an unknown factor id.
func (g *Graph) FactorResidual(factorID int64) (residual []float64, ok bool) {
	f, ok := g.factors[factorID]
	if !ok {
		return nil, false
	}
	ids := f.VariableIDs()
	blocks := make(map[int64][]float64, len(ids))
	for _, id := range ids {
		st, _ := g.GetState(id)
		blocks[id] = st
	}
	f.SetJacobianAndResidual(blocks)
	return f.Residual(), true
}

// --- index maintenance (spec §4.2) ---

func (g *Graph) addIncident(varID, factorID int64) {
	m, ok := g.incident[varID]
	if !ok {
		m = make(map[int64]bool)
		g.incident[varID] = m
	}
	m[factorID] = true
}

func (g *Graph) indexAdd(factorID int64, f Factor, groupID int64) {
	ftype := f.FactorType()
	for _, id := range f.VariableIDs() {
		vtype := f.VariableType(id)

		if g.nodeTypeIndex[vtype] == nil {
			g.nodeTypeIndex[vtype] = make(map[int64]bool)
		}
		g.nodeTypeIndex[vtype][id] = true

		if g.factorTypeNodeTypeIndex[ftype] == nil {
			g.factorTypeNodeTypeIndex[ftype] = make(map[VariableType]map[int64]bool)
		}
		if g.factorTypeNodeTypeIndex[ftype][vtype] == nil {
			g.factorTypeNodeTypeIndex[ftype][vtype] = make(map[int64]bool)
		}
		g.factorTypeNodeTypeIndex[ftype][vtype][id] = true

		if g.groupIndex[groupID] == nil {
			g.groupIndex[groupID] = make(map[FactorType]map[VariableType]map[int64]bool)
		}
		if g.groupIndex[groupID][ftype] == nil {
			g.groupIndex[groupID][ftype] = make(map[VariableType]map[int64]bool)
		}
		if g.groupIndex[groupID][ftype][vtype] == nil {
			g.groupIndex[groupID][ftype][vtype] = make(map[int64]bool)
		}
		g.groupIndex[groupID][ftype][vtype][id] = true
	}
}

// indexRemoveDanglingNode prunes id from every index bucket once its
// incident-set has become empty, and prunes any bucket left empty by the
// removal so lookups never see stale empty sets (spec §4.2).
func (g *Graph) indexRemoveDanglingNode(id int64, vtype VariableType) {
	if m, ok := g.nodeTypeIndex[vtype]; ok {
		delete(m, id)
		if len(m) == 0 {
			delete(g.nodeTypeIndex, vtype)
		}
	}
	for ftype, byVtype := range g.factorTypeNodeTypeIndex {
		if m, ok := byVtype[vtype]; ok {
			delete(m, id)
			if len(m) == 0 {
				delete(byVtype, vtype)
			}
		}
		if len(byVtype) == 0 {
			delete(g.factorTypeNodeTypeIndex, ftype)
		}
	}
	for group, byFtype := range g.groupIndex {
		for ftype, byVtype := range byFtype {
			if m, ok := byVtype[vtype]; ok {
				delete(m, id)
				if len(m) == 0 {
					delete(byVtype, vtype)
				}
			}
			if len(byVtype) == 0 {
				delete(byFtype, ftype)
			}
		}
		if len(byFtype) == 0 {
			delete(g.groupIndex, group)
		}
	}
}

// AddFactor validates all connected ids before creating anything, so a
// type/dim mismatch leaves the graph byte-for-byte unchanged (spec §8
// invariant 4, Scenario F). On success it creates any missing variables
// with family-provided defaults, assigns a fresh factor id, and updates
// adjacency and all three indices atomically with the insertion.
func (g *Graph) AddFactor(familyName string, ids []int64, measurement, information []float64, loss float64, groupID int64) (int64, int) {
	f, ok := NewFactor(familyName, ids, measurement, information, loss)
	if !ok {
		return -1, verr.Absent
	}
	for _, id := range f.VariableIDs() {
		if typ, exists := g.vars.typeOf(id); exists {
			if typ != f.VariableType(id) {
				return -1, verr.TypeMismatch
			}
			if dim, _ := g.vars.dimOf(id); dim != f.VariableDim(id) {
				return -1, verr.DimMismatch
			}
		}
	}
	for _, id := range f.VariableIDs() {
		g.vars.ensureVariable(id, f.VariableDim(id), f.VariableType(id), f.DefaultState(id))
	}
	factorID := g.nextFactorID
	g.nextFactorID++
	g.factors[factorID] = f
	g.factorGroup[factorID] = groupID
	for _, id := range f.VariableIDs() {
		g.addIncident(id, factorID)
	}
	g.indexAdd(factorID, f, groupID)
	return factorID, verr.Present
}

// RemoveFactor erases factorID from the registry and all indices, then
// runs dangling-node GC over the variables it touched (spec §4.6).
func (g *Graph) RemoveFactor(factorID int64) bool {
	removed := g.removeFactorNoGC(factorID)
	if !removed {
		return false
	}
	g.collectDangling()
	return true
}

// removeFactorNoGC erases the factor and its index entries but leaves
// dangling-candidate variables in place; callers batching several removals
// call collectDangling once at the end.
func (g *Graph) removeFactorNoGC(factorID int64) bool {
	f, ok := g.factors[factorID]
	if !ok {
		return false
	}
	groupID := g.factorGroup[factorID]
	ftype := f.FactorType()
	for _, id := range f.VariableIDs() {
		vtype := f.VariableType(id)
		if m := g.incident[id]; m != nil {
			delete(m, factorID)
		}
		if byVtype, ok := g.factorTypeNodeTypeIndex[ftype]; ok {
			if m, ok := byVtype[vtype]; ok {
				delete(m, id)
			}
		}
		if byFtype, ok := g.groupIndex[groupID]; ok {
			if byVtype, ok := byFtype[ftype]; ok {
				if m, ok := byVtype[vtype]; ok {
					delete(m, id)
				}
			}
		}
	}
	delete(g.factors, factorID)
	delete(g.factorGroup, factorID)
	return true
}

// collectDangling deletes every variable whose incident-set has become
// empty from the registry and prunes its index entries (spec §4.6).
func (g *Graph) collectDangling() {
	for id, incidentSet := range g.incident {
		if len(incidentSet) > 0 {
			continue
		}
		vtype, ok := g.vars.typeOf(id)
		if !ok {
			delete(g.incident, id)
			continue
		}
		g.vars.remove(id)
		g.indexRemoveDanglingNode(id, vtype)
		delete(g.incident, id)
	}
}

// RemoveNode gathers every factor incident to id, removes them, then
// applies dangling GC; it returns the removed factor ids.
func (g *Graph) RemoveNode(id int64) []int64 {
	incidentSet, ok := g.incident[id]
	if !ok {
		return nil
	}
	removed := make([]int64, 0, len(incidentSet))
	for factorID := range incidentSet {
		removed = append(removed, factorID)
	}
	for _, factorID := range removed {
		g.removeFactorNoGC(factorID)
	}
	g.collectDangling()
	return removed
}

// GetEdge returns the connected node-id tuples of every live factor of the
// given type, for graph introspection/visualization (spec §4.2).
func (g *Graph) GetEdge(ftype FactorType) [][]int64 {
	var out [][]int64
	for _, f := range g.factors {
		if f.FactorType() == ftype {
			out = append(out, append([]int64{}, f.VariableIDs()...))
		}
	}
	return out
}

// GetNodeIDs answers get_node_ids(group, node_type, factor_type) from the
// group index (spec §3 "Indices").
func (g *Graph) GetNodeIDs(groupID int64, nodeType VariableType, factorType FactorType) []int64 {
	byFtype, ok := g.groupIndex[groupID]
	if !ok {
		return nil
	}
	byVtype, ok := byFtype[factorType]
	if !ok {
		return nil
	}
	ids, ok := byVtype[nodeType]
	if !ok {
		return nil
	}
	out := make([]int64, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	return out
}

// IsConnected reports whether the sub-graph induced by seedIDs forms a
// single connected component, using union-find restricted to the same
// factor-inclusion rules as partial optimization (spec §4.2, §4.5) via
// SelectPartialGraph — not the whole graph's adjacency, so two seeds
// bridged only through a non-seed variable (a between-poses factor with
// an unselected pose endpoint, say) are correctly reported disconnected.
func (g *Graph) IsConnected(seedIDs []int64) bool {
	if len(seedIDs) <= 1 {
		return true
	}
	factorIDs, _ := g.SelectPartialGraph(seedIDs)
	uf := newUnionFind()
	for _, id := range seedIDs {
		uf.find(id)
	}
	for _, fid := range factorIDs {
		f, ok := g.factors[fid]
		if !ok {
			continue
		}
		ids := f.VariableIDs()
		for i := 1; i < len(ids); i++ {
			uf.union(ids[0], ids[i])
		}
	}
	root := uf.find(seedIDs[0])
	for _, id := range seedIDs[1:] {
		if uf.find(id) != root {
			return false
		}
	}
	return true
}

// --- tiny union-find, local to connectivity queries ---

type unionFind struct {
	parent map[int64]int64
}

func newUnionFind() *unionFind { return &unionFind{parent: make(map[int64]int64)} }

func (u *unionFind) find(x int64) int64 {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
	}
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int64) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}
