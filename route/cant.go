// route/cant.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

import (
	"context"
	gomath "math"

	"github.com/railsim/bve5c/math"
	"github.com/railsim/bve5c/track"
)

// subdivisionLength is the target spacing of the subdivided track.
const subdivisionLength = 5

// propagateCant works backwards from the end of the track so that each
// element's cant reflects its predecessor: an uncanted element takes the
// previous cant, the larger of two cants in the same direction wins and
// cants in opposite directions are averaged.
func propagateCant(els []track.Element) {
	for i := len(els) - 1; i >= 1; i-- {
		cur, prev := els[i].CurveCant, els[i-1].CurveCant
		switch {
		case cur == 0:
			els[i].CurveCant = prev
		case prev == 0:
		case (cur > 0) == (prev > 0):
			if gomath.Abs(prev) > gomath.Abs(cur) {
				els[i].CurveCant = prev
			}
		default:
			els[i].CurveCant = 0.5 * (cur + prev)
		}
	}
}

// computeCantTangents sets the cant tangent of each element, in cant per
// metre, so that cant interpolated with cubic Hermite splines is monotone
// between elements (Fritsch-Carlson).
func computeCantTangents(els []track.Element) {
	n := len(els)
	if n < 2 {
		for i := range els {
			els[i].CurveCantTangent = 0
		}
		return
	}

	deltas := make([]float64, n-1)
	for i := range deltas {
		d := els[i+1].StartingTrackPosition - els[i].StartingTrackPosition
		if d > 0 {
			deltas[i] = (els[i+1].CurveCant - els[i].CurveCant) / d
		}
	}

	tangents := make([]float64, n)
	tangents[0], tangents[n-1] = deltas[0], deltas[n-2]
	for i := 1; i < n-1; i++ {
		tangents[i] = 0.5 * (deltas[i-1] + deltas[i])
	}
	for i, d := range deltas {
		if d == 0 {
			tangents[i], tangents[i+1] = 0, 0
			continue
		}
		a, b := tangents[i]/d, tangents[i+1]/d
		if h := math.Sqr(a) + math.Sqr(b); h > 9 {
			t := 3 / gomath.Sqrt(h)
			tangents[i], tangents[i+1] = t*a*d, t*b*d
		}
	}

	for i := range els {
		els[i].CurveCantTangent = tangents[i]
	}
}

// subdivide samples the track every interval/k metres, where k is the
// number of subdivisionLength pieces that fit in an interval, and returns
// nil when that is fewer than two. The samples follow each element's arc
// and the Hermite-interpolated cant; they carry no events.
func subdivide(ctx context.Context, els []track.Element, interval float64) ([]track.Element, error) {
	k := int(gomath.Floor(interval / subdivisionLength))
	if k < 2 || len(els) == 0 {
		return nil, nil
	}

	f := track.Follower{Elements: els}
	step := interval / float64(k)
	sub := make([]track.Element, 0, len(els)*k)
	for i := range els {
		if i%checkCancelEveryBlock == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		el := &els[i]
		for m := range k {
			pose := f.At(el.StartingTrackPosition + float64(m)*step)
			sub = append(sub, track.Element{
				StartingTrackPosition: pose.TrackPosition,
				WorldPosition:         pose.Position,
				WorldDirection:        pose.Direction,
				WorldUp:               pose.Up,
				WorldSide:             pose.Side,
				CurveRadius:           el.CurveRadius,
				CurveCant:             pose.Cant,
				Pitch:                 el.Pitch,
				AdhesionMultiplier:    el.AdhesionMultiplier,
				Accuracy:              el.Accuracy,
			})
		}
	}
	computeCantTangents(sub)
	return sub, nil
}
