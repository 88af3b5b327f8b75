// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package param implements the manifold update rules ("local
// parameterizations") shared by identifier across every variable of the
// same type (spec §4.4). They play the role the teacher's msolid state
// drivers play for a material point: a small, stateless update rule
// applied on top of a stored state vector.
package param

import "math"

// ID identifies a local parameterization shared across all factors
// referencing variables of a given type.
type ID int

const (
	IdentityN ID = iota // x <- x + delta, local size == global size
	Quaternion          // unit quaternion xyzw, global 4, local 3
	SE3                 // t (xyz) + q (xyzw), global 7, local 6
	SIM3                // t + q + scale, global 8, local 7
)

// Parameterization is the manifold update rule for one variable type. A
// Parameterization instance is created lazily on first use within a single
// optimize call and shared among every parameter block of that type within
// the call (spec §4.4); it carries no per-block state of its own.
type Parameterization interface {
	// GlobalSize is the ambient dimension of the stored state vector.
	GlobalSize() int
	// LocalSize is the dimension of the tangent-space delta.
	LocalSize() int
	// Plus computes x_out = x boxplus delta.
	Plus(x, delta []float64) []float64
	// Minus computes the on-manifold delta = x boxminus x0 (used by the
	// marginal factor to compute Δx against its linearization point).
	Minus(x, x0 []float64) []float64
}

// For returns the Parameterization for the given identifier.
func For(id ID) Parameterization {
	switch id {
	case IdentityN:
		return identity{}
	case Quaternion:
		return quaternion{}
	case SE3:
		return se3{}
	case SIM3:
		return sim3{}
	}
	panic("param: unknown parameterization id")
}

// identity implements x <- x + delta for an arbitrary fixed dimension; the
// dimension is inferred from the vectors passed in, so one value serves
// every R^n type (spec table in §4.4 groups R1/R2/R3/R6 under one rule).
type identity struct{}

func (identity) GlobalSize() int { return -1 } // determined per-call from len(x)
func (identity) LocalSize() int  { return -1 }

func (identity) Plus(x, delta []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] + delta[i]
	}
	return out
}

func (identity) Minus(x, x0 []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] - x0[i]
	}
	return out
}

// quaternion implements q <- q ⊗ exp(delta/2) for a unit quaternion stored
// as [x,y,z,w].
type quaternion struct{}

func (quaternion) GlobalSize() int { return 4 }
func (quaternion) LocalSize() int  { return 3 }

func (quaternion) Plus(q, delta []float64) []float64 {
	dq := expQuat(delta)
	return quatMul(q, dq)
}

func (quaternion) Minus(q, q0 []float64) []float64 {
	dq := quatMul(quatConj(q0), q)
	return logQuat(dq)
}

// se3 implements (t,q) <- (t+dt, q ⊗ exp(dr/2)) with state [tx,ty,tz,qx,qy,qz,qw].
type se3 struct{}

func (se3) GlobalSize() int { return 7 }
func (se3) LocalSize() int  { return 6 }

func (se3) Plus(x, delta []float64) []float64 {
	out := make([]float64, 7)
	for i := 0; i < 3; i++ {
		out[i] = x[i] + delta[i]
	}
	dq := expQuat(delta[3:6])
	copy(out[3:7], quatMul(x[3:7], dq))
	return out
}

func (se3) Minus(x, x0 []float64) []float64 {
	out := make([]float64, 6)
	for i := 0; i < 3; i++ {
		out[i] = x[i] - x0[i]
	}
	dq := quatMul(quatConj(x0[3:7]), x[3:7])
	copy(out[3:6], logQuat(dq))
	return out
}

// sim3 implements SE(3) plus an additional log-scale update; state is
// [tx,ty,tz,qx,qy,qz,qw,s].
type sim3 struct{}

func (sim3) GlobalSize() int { return 8 }
func (sim3) LocalSize() int  { return 7 }

func (sim3) Plus(x, delta []float64) []float64 {
	out := make([]float64, 8)
	for i := 0; i < 3; i++ {
		out[i] = x[i] + delta[i]
	}
	dq := expQuat(delta[3:6])
	copy(out[3:7], quatMul(x[3:7], dq))
	out[7] = x[7] * math.Exp(delta[6])
	return out
}

func (sim3) Minus(x, x0 []float64) []float64 {
	out := make([]float64, 7)
	for i := 0; i < 3; i++ {
		out[i] = x[i] - x0[i]
	}
	dq := quatMul(quatConj(x0[3:7]), x[3:7])
	copy(out[3:6], logQuat(dq))
	out[6] = math.Log(x[7] / x0[7])
	return out
}

// QuatMul computes the Hamilton product a⊗b for unit quaternions stored as
// [x,y,z,w]; exported for factor families that need to compose or invert
// relative rotations directly (e.g. between-pose residuals).
func QuatMul(a, b []float64) []float64 { return quatMul(a, b) }

// QuatConj returns the conjugate (== inverse, for unit quaternions) of q.
func QuatConj(q []float64) []float64 { return quatConj(q) }

// RotateByQuat rotates the 3-vector v by the unit quaternion q (xyzw).
func RotateByQuat(q, v []float64) []float64 {
	qv := []float64{v[0], v[1], v[2], 0}
	r := quatMul(quatMul(q, qv), quatConj(q))
	return []float64{r[0], r[1], r[2]}
}

// --- quaternion helpers, xyzw convention throughout ---

func quatMul(a, b []float64) []float64 {
	ax, ay, az, aw := a[0], a[1], a[2], a[3]
	bx, by, bz, bw := b[0], b[1], b[2], b[3]
	return []float64{
		aw*bx + ax*bw + ay*bz - az*by,
		aw*by - ax*bz + ay*bw + az*bx,
		aw*bz + ax*by - ay*bx + az*bw,
		aw*bw - ax*bx - ay*by - az*bz,
	}
}

func quatConj(q []float64) []float64 {
	return []float64{-q[0], -q[1], -q[2], q[3]}
}

// expQuat maps a 3-vector tangent delta to a unit quaternion via the
// small-angle exponential map exp(delta/2).
func expQuat(delta []float64) []float64 {
	theta := math.Sqrt(delta[0]*delta[0] + delta[1]*delta[1] + delta[2]*delta[2])
	if theta < 1e-12 {
		return []float64{delta[0] / 2, delta[1] / 2, delta[2] / 2, 1}
	}
	half := theta / 2
	s := math.Sin(half) / theta
	return []float64{delta[0] * s, delta[1] * s, delta[2] * s, math.Cos(half)}
}

// logQuat returns the 3-vector tangent delta 2*vec(q), choosing the
// representative with non-negative scalar part, matching the convention in
// spec §4.6. It is the small-angle inverse of expQuat: for a rotation of
// angle theta about axis u it returns 2*sin(theta/2)*u rather than theta*u,
// so expQuat(logQuat(q)) == q holds only to first order in theta.
func logQuat(q []float64) []float64 {
	x, y, z, w := q[0], q[1], q[2], q[3]
	if w < 0 {
		x, y, z, w = -x, -y, -z, -w
	}
	return []float64{2 * x, 2 * y, 2 * z}
}
