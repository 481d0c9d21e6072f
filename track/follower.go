// track/follower.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package track

import (
	gomath "math"
	"sort"

	"github.com/railsim/bve5c/math"
)

// Pose is the state of the track at a particular track position.
type Pose struct {
	TrackPosition float64
	Element       int

	Position  [3]float64
	Direction [3]float64
	Up        [3]float64
	Side      [3]float64

	CurveRadius float64
	Pitch       float64
	Cant        float64
}

// Follower evaluates the track between element starting positions by
// integrating each element's curve and pitch from its start.
type Follower struct {
	Elements []Element
}

// element returns the index of the element containing tp, clamped to the
// track's extent.
func (f Follower) element(tp float64) int {
	i := sort.Search(len(f.Elements), func(i int) bool {
		return f.Elements[i].StartingTrackPosition > tp
	}) - 1
	return max(i, 0)
}

// At returns the pose at track position tp. Positions before the first
// element or after the last are extrapolated from the nearest element.
func (f Follower) At(tp float64) Pose {
	if len(f.Elements) == 0 {
		return Pose{TrackPosition: tp, Direction: [3]float64{0, 0, 1}, Up: math.Up3d, Side: [3]float64{1, 0, 0}}
	}

	i := f.element(tp)
	el := &f.Elements[i]
	t := tp - el.StartingTrackPosition

	dir := math.Normalize2d([2]float64{el.WorldDirection[0], el.WorldDirection[2]})
	c, h, a := math.ArcStep(t, el.CurveRadius, el.Pitch)
	if t < 0 {
		// ArcStep works with lengths; walk backwards along the same arc.
		c, h, a = math.ArcStep(-t, el.CurveRadius, el.Pitch)
		c, h, a = -c, -h, -a
	}
	ca, sa := gomath.Cos(-a), gomath.Sin(-a)
	dir = math.Rotate2d(dir, ca, sa)
	pos := math.Add3d(el.WorldPosition, [3]float64{dir[0] * c, h, dir[1] * c})
	dir = math.Rotate2d(dir, ca, sa)

	p := Pose{
		TrackPosition: tp,
		Element:       i,
		Position:      pos,
		Direction:     math.Direction3d(dir, el.Pitch),
		Side:          math.Side3d(dir),
		CurveRadius:   el.CurveRadius,
		Pitch:         el.Pitch,
		Cant:          el.CurveCant,
	}
	p.Up = math.Cross3d(p.Direction, p.Side)

	if i+1 < len(f.Elements) && t > 0 {
		next := &f.Elements[i+1]
		if span := next.StartingTrackPosition - el.StartingTrackPosition; span > 0 {
			// Tangents are per metre.
			p.Cant = math.Hermite(t/span, el.CurveCant, el.CurveCantTangent*span, next.CurveCant, next.CurveCantTangent*span)
		}
	}
	return p
}
