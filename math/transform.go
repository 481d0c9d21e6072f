// math/transform.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import gomath "math"

// Transformation is an orthonormal basis: X points sideways, Y up and Z
// forward along the track.
type Transformation struct {
	X, Y, Z [3]float64
}

var IdentityTransformation = Transformation{
	X: [3]float64{1, 0, 0},
	Y: [3]float64{0, 1, 0},
	Z: [3]float64{0, 0, 1},
}

// MakeTransformation builds the basis obtained by yawing about Y, then
// pitching about the new X and finally rolling about the new Z. Angles
// are in radians.
func MakeTransformation(yaw, pitch, roll float64) Transformation {
	if yaw == 0 && pitch == 0 && roll == 0 {
		return IdentityTransformation
	} else if pitch == 0 && roll == 0 {
		c, s := gomath.Cos(yaw), gomath.Sin(yaw)
		return Transformation{
			X: [3]float64{c, 0, -s},
			Y: [3]float64{0, 1, 0},
			Z: [3]float64{s, 0, c},
		}
	}
	return IdentityTransformation.Rotate(yaw, pitch, roll)
}

// Rotate applies yaw, pitch and roll relative to the axes of t.
func (t Transformation) Rotate(yaw, pitch, roll float64) Transformation {
	s, u, d := t.X, t.Y, t.Z

	cy, sy := gomath.Cos(yaw), gomath.Sin(yaw)
	s = RotateAxis(s, u, cy, sy)
	d = RotateAxis(d, u, cy, sy)

	cp, sp := gomath.Cos(-pitch), gomath.Sin(-pitch)
	u = RotateAxis(u, s, cp, sp)
	d = RotateAxis(d, s, cp, sp)

	cr, sr := gomath.Cos(-roll), gomath.Sin(-roll)
	s = RotateAxis(s, d, cr, sr)
	u = RotateAxis(u, d, cr, sr)

	return Transformation{X: s, Y: u, Z: d}
}

// Apply maps a vector expressed in t's local coordinates to world space.
func (t Transformation) Apply(v [3]float64) [3]float64 {
	return Add3d(Add3d(Scale3d(t.X, v[0]), Scale3d(t.Y, v[1])), Scale3d(t.Z, v[2]))
}

// Compose returns the basis that first applies local and then t.
func (t Transformation) Compose(local Transformation) Transformation {
	return Transformation{X: t.Apply(local.X), Y: t.Apply(local.Y), Z: t.Apply(local.Z)}
}

// Level returns a copy of t whose Y axis is forced to world up.
func (t Transformation) Level() Transformation {
	t.Y = [3]float64{0, 1, 0}
	return t
}

// FromForward builds a basis whose Z axis is the normalized forward
// vector; X is the horizontal perpendicular and Y = Z x X.
func FromForward(forward [3]float64) Transformation {
	z := Normalize3d(forward)
	x := NormalizeXZ([3]float64{z[2], 0, -z[0]})
	return Transformation{X: x, Y: Cross3d(z, x), Z: z}
}
