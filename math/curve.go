// math/curve.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import gomath "math"

// ArcStep integrates a track segment of length d with curve radius r
// (signed, 0 for straight) and pitch p (rise over run). It returns the
// horizontal chord length c, the vertical rise h and the half turn angle
// a. Callers rotate their heading by -a before and after advancing along
// the chord.
func ArcStep(d, r, p float64) (c, h, a float64) {
	switch {
	case r != 0 && p != 0:
		s := d / gomath.Sqrt(1+p*p)
		h = s * p
		b := s / gomath.Abs(r)
		c = gomath.Sqrt(2 * r * r * (1 - gomath.Cos(b)))
		a = 0.5 * Sign(r) * b
	case r != 0:
		b := d / gomath.Abs(r)
		c = gomath.Sqrt(2 * r * r * (1 - gomath.Cos(b)))
		a = 0.5 * Sign(r) * b
	case p != 0:
		c = d / gomath.Sqrt(1+p*p)
		h = c * p
	default:
		c = d
	}
	return
}

// TurnAngle converts a turn ratio into the yaw applied to the heading.
func TurnAngle(turn float64) float64 {
	return -gomath.Atan(turn)
}
