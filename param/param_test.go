// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package param

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestIdentityPlusMinus(tst *testing.T) {
	p := For(IdentityN)
	x := []float64{1, 2, 3}
	delta := []float64{0.1, -0.2, 0.3}
	y := p.Plus(x, delta)
	chk.Vector(tst, "y", 1e-15, y, []float64{1.1, 1.8, 3.3})
	back := p.Minus(y, x)
	chk.Vector(tst, "back", 1e-15, back, delta)
}

// smallAngleMinus is what Minus returns for a rotation delta d applied by
// Plus: 2*vec(expQuat(d)), i.e. d scaled by 2*sin(|d|/2)/|d|.
func smallAngleMinus(d []float64) []float64 {
	theta := math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
	k := 2 * math.Sin(theta/2) / theta
	return []float64{k * d[0], k * d[1], k * d[2]}
}

func TestQuaternionRoundTrip(tst *testing.T) {
	p := For(Quaternion)
	q := []float64{0, 0, 0, 1}
	delta := []float64{0.05, -0.1, 0.2}
	q2 := p.Plus(q, delta)
	norm := math.Sqrt(q2[0]*q2[0] + q2[1]*q2[1] + q2[2]*q2[2] + q2[3]*q2[3])
	chk.Scalar(tst, "|q2|", 1e-12, norm, 1)

	back := p.Minus(q2, q)
	chk.Vector(tst, "back", 1e-9, back, smallAngleMinus(delta))
}

func TestQuaternionSmallAngle(tst *testing.T) {
	p := For(Quaternion)
	q := []float64{0, 0, 0, 1}
	tiny := []float64{1e-14, 0, 0}
	q2 := p.Plus(q, tiny)
	norm := math.Sqrt(q2[0]*q2[0] + q2[1]*q2[1] + q2[2]*q2[2] + q2[3]*q2[3])
	chk.Scalar(tst, "|q2|", 1e-9, norm, 1)
}

func TestSE3RoundTrip(tst *testing.T) {
	p := For(SE3)
	x := []float64{1, 2, 3, 0, 0, 0, 1}
	delta := []float64{0.1, 0.2, -0.1, 0.05, -0.02, 0.01}
	y := p.Plus(x, delta)
	back := p.Minus(y, x)
	want := append(append([]float64{}, delta[0:3]...), smallAngleMinus(delta[3:6])...)
	chk.Vector(tst, "back", 1e-9, back, want)
}

func TestSIM3RoundTrip(tst *testing.T) {
	p := For(SIM3)
	x := []float64{0, 0, 0, 0, 0, 0, 1, 1}
	delta := []float64{0.1, -0.1, 0.2, 0.01, 0.02, -0.01, 0.1}
	y := p.Plus(x, delta)
	back := p.Minus(y, x)
	want := append(append([]float64{}, delta[0:3]...), smallAngleMinus(delta[3:6])...)
	want = append(want, delta[6])
	chk.Vector(tst, "back", 1e-8, back, want)
}

func TestRotateByQuatIdentity(tst *testing.T) {
	q := []float64{0, 0, 0, 1}
	v := []float64{1, 2, 3}
	r := RotateByQuat(q, v)
	chk.Vector(tst, "r", 1e-15, r, v)
}

func TestQuatMulConjIsIdentity(tst *testing.T) {
	q := []float64{0.5, 0, 0, 0.8660254037844387}
	id := QuatMul(q, QuatConj(q))
	chk.Vector(tst, "q*conj(q)", 1e-6, id, []float64{0, 0, 0, 1})
}
