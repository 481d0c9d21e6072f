// route/transition.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

import "github.com/railsim/bve5c/math"

// interpolateTransitions spreads each curve and gradient transition over
// the blocks between the block where it begins and the next block that
// sets a curve (resp. gradient). Curvature, cant and pitch change
// linearly, sampled at the middle of each block. A transition that is
// never closed has no effect.
func interpolateTransitions(blocks []Block) {
	for i := range blocks {
		if blocks[i].CurveTransition {
			if j := nextDefined(blocks, i, func(b *Block) bool { return b.CurveDefined }); j != -1 {
				k0, k1 := curvature(blocks[i].TrackState.CurveRadius), curvature(blocks[j].TrackState.CurveRadius)
				c0, c1 := blocks[i].TrackState.CurveCant, blocks[j].TrackState.CurveCant
				for m := i; m < j; m++ {
					t := (float64(m-i) + 0.5) / float64(j-i)
					ts := &blocks[m].TrackState
					ts.CurveRadius = radius(math.Lerp(t, k0, k1))
					ts.CurveCant = math.Lerp(t, c0, c1)
				}
			}
		}
		if blocks[i].GradientTransition {
			if j := nextDefined(blocks, i, func(b *Block) bool { return b.GradientDefined }); j != -1 {
				p0, p1 := blocks[i].Pitch, blocks[j].Pitch
				for m := i; m < j; m++ {
					t := (float64(m-i) + 0.5) / float64(j-i)
					blocks[m].Pitch = math.Lerp(t, p0, p1)
				}
			}
		}
	}
}

func nextDefined(blocks []Block, i int, defined func(*Block) bool) int {
	for j := i + 1; j < len(blocks); j++ {
		if defined(&blocks[j]) {
			return j
		}
	}
	return -1
}

func curvature(r float64) float64 {
	if r == 0 {
		return 0
	}
	return 1 / r
}

func radius(k float64) float64 {
	if k == 0 {
		return 0
	}
	return 1 / k
}
