// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package verr

import "testing"

func TestExistsAllPresent(tst *testing.T) {
	has := func(id int64) bool { return true }
	codes := Exists([]int64{1, 2, 3}, has)
	if len(codes) != 3 {
		tst.Fatalf("expected 3 codes, got %d: %v", len(codes), codes)
	}
	for _, c := range codes {
		if c != Present {
			tst.Fatalf("expected all Present, got %v", codes)
		}
	}
}

func TestExistsSomeAbsent(tst *testing.T) {
	present := map[int64]bool{1: true, 3: true}
	codes := Exists([]int64{1, 2, 3}, func(id int64) bool { return present[id] })
	if len(codes) != 4 {
		tst.Fatalf("expected 4 codes (3 + trailing flag), got %d: %v", len(codes), codes)
	}
	if codes[0] != Present || codes[1] != Absent || codes[2] != Present {
		tst.Fatalf("unexpected per-id codes: %v", codes)
	}
	if codes[3] != Absent {
		tst.Fatalf("expected trailing Absent flag, got %v", codes[3])
	}
}

func TestTypeMatch(tst *testing.T) {
	types := map[int64]int{1: 10, 2: 20}
	typeOf := func(id int64) (int, bool) {
		t, ok := types[id]
		return t, ok
	}
	codes := TypeMatch([]int64{1, 2}, typeOf, []int{10, 10})
	if len(codes) != 3 {
		tst.Fatalf("expected 2 per-id codes plus trailing flag, got %v", codes)
	}
	if codes[0] != Present || codes[1] != TypeMismatch || codes[2] != TypeMismatch {
		tst.Fatalf("unexpected codes: %v", codes)
	}
}

func TestTypeMatchAllGood(tst *testing.T) {
	types := map[int64]int{1: 10, 2: 10}
	typeOf := func(id int64) (int, bool) {
		t, ok := types[id]
		return t, ok
	}
	codes := TypeMatch([]int64{1, 2}, typeOf, []int{10, 10})
	if len(codes) != 2 {
		tst.Fatalf("expected no trailing flag on full match, got %v", codes)
	}
}
