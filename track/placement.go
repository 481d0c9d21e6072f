// track/placement.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package track

import (
	"fmt"
	"log/slog"

	"github.com/railsim/bve5c/math"
)

type PlacementKind int

const (
	// GroundPlacement objects are placed relative to the ground under
	// the primary track.
	GroundPlacement PlacementKind = iota
	// RailPlacement objects follow a rail.
	RailPlacement
	// CrackPlacement objects are stretched between two rails.
	CrackPlacement
	// RepeaterPlacement objects are one block's worth of a repeating
	// structure.
	RepeaterPlacement
	// SignalPlacement objects display a signal's aspects.
	SignalPlacement
)

func (k PlacementKind) String() string {
	return []string{"Ground", "Rail", "Crack", "Repeater", "Signal"}[k]
}

// Orientation selects the basis a rail placement is oriented by.
type Orientation int

const (
	Flat Orientation = iota
	FollowsPitch
	FollowsCant
	FollowsBoth
)

func (o Orientation) String() string {
	return []string{"Flat", "FollowsPitch", "FollowsCant", "FollowsBoth"}[o]
}

// Placement is an instance of a structure in the world. Exactly one of
// Structure, Mesh and Signal refers to what is placed; the others are -1.
type Placement struct {
	Kind      PlacementKind
	Structure int
	Mesh      int
	Signal    int

	Element       int
	Rail          int
	TrackPosition float64

	Position [3]float64
	// Basis orients the object in the world and Local is applied to the
	// object before it.
	Basis math.Transformation
	Local math.Transformation

	// CrackWidths are the distances between the two rails at the start
	// and end of the block.
	CrackWidths [2]float64
	Brightness  float64
}

func (p Placement) String() string {
	return fmt.Sprintf("%s structure %d mesh %d at %.2f rail %d pos %.3f,%.3f,%.3f",
		p.Kind, p.Structure, p.Mesh, p.TrackPosition, p.Rail, p.Position[0], p.Position[1], p.Position[2])
}

func (p Placement) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", p.Kind.String()),
		slog.Int("structure", p.Structure),
		slog.Float64("track_position", p.TrackPosition),
		slog.Int("rail", p.Rail))
}
