// math/vecmat.go
// Copyright(c) 2022-2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import gomath "math"

///////////////////////////////////////////////////////////////////////////
// point 2d

// Various useful functions for arithmetic with 2D points/vectors. Track
// directions in the horizontal plane use [0] for world X and [1] for
// world Z. Names are brief in order to avoid clutter when they're used.

// a*s
func Scale2d(a [2]float64, s float64) [2]float64 {
	return [2]float64{s * a[0], s * a[1]}
}

// Length of v
func Length2d(v [2]float64) float64 {
	return gomath.Sqrt(v[0]*v[0] + v[1]*v[1])
}

// Normalizes the given vector; the zero vector is returned unchanged.
func Normalize2d(a [2]float64) [2]float64 {
	l := Length2d(a)
	if l == 0 {
		return a
	}
	return Scale2d(a, 1/l)
}

// Rotate2d rotates v by the angle whose cosine and sine are given.
func Rotate2d(v [2]float64, cos, sin float64) [2]float64 {
	return [2]float64{cos*v[0] - sin*v[1], sin*v[0] + cos*v[1]}
}

// Yaw2d returns the heading of a horizontal direction, measured from +Z
// towards +X.
func Yaw2d(v [2]float64) float64 {
	return gomath.Atan2(v[0], v[1])
}

///////////////////////////////////////////////////////////////////////////
// point 3d

func Add3d(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func Sub3d(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func Scale3d(a [3]float64, s float64) [3]float64 {
	return [3]float64{s * a[0], s * a[1], s * a[2]}
}

func Dot3d(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func Cross3d(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func Length3d(v [3]float64) float64 {
	return gomath.Sqrt(Dot3d(v, v))
}

func Normalize3d(a [3]float64) [3]float64 {
	l := Length3d(a)
	if l == 0 {
		return a
	}
	return Scale3d(a, 1/l)
}

// NormalizeXZ normalizes the horizontal components of v and leaves the
// vertical component alone.
func NormalizeXZ(v [3]float64) [3]float64 {
	t := v[0]*v[0] + v[2]*v[2]
	if t == 0 {
		return v
	}
	t = 1 / gomath.Sqrt(t)
	return [3]float64{v[0] * t, v[1], v[2] * t}
}

// RotatePlane rotates v about the vertical axis.
func RotatePlane(v [3]float64, cos, sin float64) [3]float64 {
	return [3]float64{v[0]*cos - v[2]*sin, v[1], v[0]*sin + v[2]*cos}
}

// RotateAxis rotates v about the unit vector axis (Rodrigues' formula).
func RotateAxis(v, axis [3]float64, cos, sin float64) [3]float64 {
	cf := 1 - cos
	dx, dy, dz := axis[0], axis[1], axis[2]
	x, y, z := v[0], v[1], v[2]
	return [3]float64{
		(cos+cf*dx*dx)*x + (cf*dx*dy-sin*dz)*y + (cf*dx*dz+sin*dy)*z,
		(cf*dx*dy+sin*dz)*x + (cos+cf*dy*dy)*y + (cf*dy*dz-sin*dx)*z,
		(cf*dx*dz-sin*dy)*x + (cf*dy*dz+sin*dx)*y + (cos+cf*dz*dz)*z,
	}
}

var Up3d = [3]float64{0, 1, 0}

// Direction3d lifts a horizontal direction and a pitch (rise over run)
// into a normalized 3D direction.
func Direction3d(dir [2]float64, pitch float64) [3]float64 {
	return Normalize3d([3]float64{dir[0], pitch, dir[1]})
}

// Side3d returns the horizontal vector perpendicular to dir.
func Side3d(dir [2]float64) [3]float64 {
	return [3]float64{dir[1], 0, -dir[0]}
}
