// route/block.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

import (
	gomath "math"
	"slices"

	"github.com/brunoga/deep"
	"github.com/railsim/bve5c/track"
)

// Rail is a track laid alongside the primary one, described by its
// offset from the primary track at the start and end of a block.
type Rail struct {
	Key string
	// Start is set while the rail exists; End marks a block in which the
	// rail was repositioned after it started, so its end offset differs
	// from its start offset.
	Start, End     bool
	StartRefreshed bool

	StartX, StartY float64
	EndX, EndY     float64
	// RadiusH and RadiusV are the rail's horizontal and vertical radii
	// relative to the primary track.
	RadiusH, RadiusV float64
}

// TrackState is the curve in effect over a block.
type TrackState struct {
	CurveRadius      float64
	CurveCant        float64
	CurveCantTangent float64
}

// FreeObject is a structure placed at a track position relative to a
// rail.
type FreeObject struct {
	TrackPosition    float64
	Structure        int
	Rail             int
	X, Y, Z          float64
	Yaw, Pitch, Roll float64
	Orientation      track.Orientation
	Span             float64
}

// Crack is a structure stretched to fill the gap between two rails.
type Crack struct {
	TrackPosition float64
	Structure     int
	PrimaryRail   int
	SecondaryRail int
}

// Repeater places one or more structures at a regular interval along a
// rail until it is ended.
type Repeater struct {
	Name string
	// Structures are used in turn, by the index of each repetition
	// counted from TrackPosition.
	Structures       []int
	Rail             int
	X, Y, Z          float64
	Yaw, Pitch, Roll float64
	Orientation      track.Orientation
	Span             float64
	Interval         float64
	// TrackPosition is where the repeater began; repetitions fall at
	// multiples of Interval from it.
	TrackPosition float64
	// End is where the repeater was ended or replaced within the block;
	// +Inf while it runs on into the next block.
	End float64
}

type Limit struct {
	TrackPosition float64
	// Speed and PreviousSpeed are in m/s; +Inf for no limit.
	Speed         float64
	PreviousSpeed float64
}

type StopPoint struct {
	TrackPosition     float64
	Station           int
	ForwardTolerance  float64
	BackwardTolerance float64
	Cars              int
}

type BrightnessSample struct {
	TrackPosition float64
	Value         float64
}

type TrackSound struct {
	TrackPosition float64
	RunSound      int
	FlangeSound   int
}

type BlockSection struct {
	TrackPosition float64
	// Aspects carry the speed limits in effect when the section was
	// declared; -1 marks an aspect number that couldn't be parsed.
	Aspects   []track.AspectSpeed
	Type      track.SectionType
	Invisible bool
}

type BlockSignal struct {
	TrackPosition    float64
	Section          int
	Type             int
	X, Y             float64
	Yaw, Pitch, Roll float64
	ShowObject       bool
	ShowPost         bool
}

// Block accumulates everything the route map says about one
// BlockInterval-long stretch of track. Blocks are created on demand and
// inherit the persistent parts of their predecessor's state.
type Block struct {
	// Background is the background set in this block or -1.
	Background int
	Brightness []BrightnessSample
	Fog        track.Fog
	FogDefined bool
	// Cycle is the ground structure cycle. No map command changes it from
	// its default; it is part of the carried block state only.
	Cycle []int
	// Height is the height of the primary track above the ground; NaN
	// where the route doesn't say. Maps can't set it, so block 0's zero
	// is interpolated everywhere and ground placements sit on the track.
	Height float64

	RunSounds  []TrackSound
	JointNoise bool

	// Rails[0] is the primary track.
	Rails []Rail
	// RailTypes parallels Rails and is carried with them. No map command
	// sets a rail type, so every entry stays 0.
	RailTypes []int
	Objects   []FreeObject
	Cracks    []Crack
	Repeaters []Repeater

	Signals  []BlockSignal
	Sections []BlockSection
	Limits   []Limit
	Stops    []StopPoint

	Station          int
	StationPassAlarm bool

	TrackState TrackState
	Pitch      float64
	Turn       float64
	Accuracy   float64
	Adhesion   float64

	// CurveTransition and GradientTransition mark the start of a
	// transition that ends at the next block whose curve (resp. gradient)
	// is defined.
	CurveTransition    bool
	CurveDefined       bool
	GradientTransition bool
	GradientDefined    bool
}

// newFirstBlock returns block 0, from which every other block inherits.
func newFirstBlock(preview bool) Block {
	b := Block{
		Background: -1,
		Rails:      []Rail{{Start: true}},
		RailTypes:  []int{0},
		Station:    -1,
		Accuracy:   2,
		Adhesion:   1,
	}
	if !preview {
		b.Fog = track.DefaultFog(0)
		b.Cycle = []int{-1}
		b.RunSounds = []TrackSound{{}}
	}
	return b
}

// nextBlock returns the block that follows b before any commands have
// been applied to it.
func nextBlock(prev *Block, preview bool) Block {
	b := Block{
		Background: -1,
		Height:     gomath.NaN(),
		RailTypes:  slices.Clone(prev.RailTypes),
		Rails:      make([]Rail, len(prev.Rails)),
		Pitch:      prev.Pitch,
		Station:    -1,
		TrackState: prev.TrackState,
		Accuracy:   prev.Accuracy,
		Adhesion:   prev.Adhesion,
	}
	for i, r := range prev.Rails {
		b.Rails[i] = Rail{
			Key:     r.Key,
			Start:   r.Start,
			StartX:  r.StartX,
			StartY:  r.StartY,
			EndX:    r.StartX,
			EndY:    r.StartY,
			RadiusH: r.RadiusH,
			RadiusV: r.RadiusV,
		}
	}
	if !preview {
		b.Fog = prev.Fog
		b.Cycle = slices.Clone(prev.Cycle)
		if n := len(prev.RunSounds); n > 0 {
			b.RunSounds = []TrackSound{prev.RunSounds[n-1]}
		}
		for _, r := range prev.Repeaters {
			if gomath.IsInf(r.End, 1) {
				b.Repeaters = append(b.Repeaters, deep.MustCopy(r))
			}
		}
	}
	return b
}

// runningRepeater returns the index of the repeater called name that
// hasn't been ended in b, or -1.
func (b *Block) runningRepeater(name string) int {
	return slices.IndexFunc(b.Repeaters, func(r Repeater) bool {
		return r.Name == name && gomath.IsInf(r.End, 1)
	})
}

// createMissingBlocks makes sure that blocks exist up to and including
// index to. Existing blocks are left alone.
func (p *parser) createMissingBlocks(to int) {
	if len(p.blocks) == 0 {
		p.blocks = append(p.blocks, newFirstBlock(p.opts.PreviewOnly))
	}
	for len(p.blocks) <= to {
		b := nextBlock(&p.blocks[len(p.blocks)-1], p.opts.PreviewOnly)
		p.blocks = append(p.blocks, b)
	}
}

// findRail returns the index of the rail with the given key; the empty
// key names the primary track. -1 is returned if there's no such rail.
func findRail(rails []Rail, key string) int {
	if key == "" {
		return 0
	}
	for i, r := range rails {
		if i > 0 && r.Key == key {
			return i
		}
	}
	return -1
}

// interpolateHeights fills in the heights the route didn't define by
// interpolating linearly between the defined ones; heights before the
// first or after the last definition are held at the nearest one.
func interpolateHeights(blocks []Block) {
	last := -1
	for i := range blocks {
		if gomath.IsNaN(blocks[i].Height) {
			continue
		}
		if last == -1 {
			for j := range i {
				blocks[j].Height = blocks[i].Height
			}
		} else {
			h0, h1 := blocks[last].Height, blocks[i].Height
			for j := last + 1; j < i; j++ {
				t := float64(j-last) / float64(i-last)
				blocks[j].Height = (1-t)*h0 + t*h1
			}
		}
		last = i
	}
	if last == -1 {
		for i := range blocks {
			blocks[i].Height = 0
		}
		return
	}
	for j := last + 1; j < len(blocks); j++ {
		blocks[j].Height = blocks[last].Height
	}
}
