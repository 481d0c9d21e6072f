// track/track.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package track holds the compiled form of a route: the continuous
// sequence of track elements with their events, plus the stations,
// signalling sections and object placements that go with them.
package track

import (
	"fmt"
	gomath "math"

	"github.com/railsim/bve5c/math"
)

const (
	// Fog extents used when a route hasn't defined any fog.
	NoFogStart = 800
	NoFogEnd   = 1600
)

// Structure is an entry in the route's object table.
type Structure struct {
	Key string
	// Path is the resolved object file; it is empty if the file could not
	// be found.
	Path string
}

type Fog struct {
	// Start and End bound linear fog; Density is used for exponential
	// fog.
	Start, End    float64
	Color         [3]uint8
	TrackPosition float64
	Density       float64
	Linear        bool
}

// MakeLinearFog returns linear fog between start and end.
func MakeLinearFog(start, end float64, color [3]uint8, tp float64) Fog {
	return Fog{Start: start, End: end, Color: color, TrackPosition: tp, Linear: true}
}

// DefaultFog is the fog in effect before the route defines any.
func DefaultFog(tp float64) Fog {
	return MakeLinearFog(NoFogStart, NoFogEnd, [3]uint8{128, 128, 128}, tp)
}

func (f Fog) String() string {
	if f.Linear {
		return fmt.Sprintf("[%.0f-%.0fm rgb%v]", f.Start, f.End, f.Color)
	}
	return fmt.Sprintf("[density %.4f rgb%v]", f.Density, f.Color)
}

type StopMode int

const (
	AllStop StopMode = iota
	AllPass
	PlayerStop
	PlayerPass
)

func (m StopMode) String() string {
	return []string{"AllStop", "AllPass", "PlayerStop", "PlayerPass"}[m]
}

type StationType int

const (
	NormalStation StationType = iota
	ChangeEndsStation
	TerminalStation
)

func (t StationType) String() string {
	return []string{"Normal", "ChangeEnds", "Terminal"}[t]
}

type SafetySystem int

const (
	SafetyATS SafetySystem = iota
	SafetyATC
)

func (s SafetySystem) String() string {
	if s == SafetyATC {
		return "ATC"
	}
	return "ATS"
}

type Stop struct {
	TrackPosition     float64
	ForwardTolerance  float64
	BackwardTolerance float64
	// Cars is the number of cars the stop applies to; 0 means all.
	Cars int
}

type Station struct {
	Key  string
	Name string

	// Times are in seconds since midnight; negative if unset.
	ArrivalTime   float64
	DepartureTime float64
	JumpTime      float64
	// StopTime is the minimum halt in seconds.
	StopTime   float64
	AlightTime float64

	ForceStopSignal bool
	OpenLeftDoors   bool
	OpenRightDoors  bool
	StopMode        StopMode
	Type            StationType
	SafetySystem    SafetySystem
	PassengerRatio  float64

	DefaultTrackPosition float64
	SoundOrigin          [3]float64
	Stops                []Stop
}

// AspectSpeed is one entry of a section's aspect list.
type AspectSpeed struct {
	Number int
	// Speed is the speed limit associated with the aspect in m/s.
	Speed float64
}

type SectionType int

const (
	// IndexBased sections step through their aspect list by the number
	// of clear sections ahead.
	IndexBased SectionType = iota
	// ValueBased sections pick the aspect whose number is closest to the
	// one ahead.
	ValueBased
)

type Section struct {
	TrackPosition float64
	Aspects       []AspectSpeed
	Type          SectionType
	StationIndex  int
	Invisible     bool
	// Previous and Next link the sections in track order; -1 at the ends.
	Previous, Next int
	CurrentAspect  int
}

// SignalType maps aspect numbers to the structures that display them.
type SignalType struct {
	Key        string
	Numbers    []int
	Structures []int
}

type Signal struct {
	TrackPosition float64
	Section       int
	Type          int
	// X and Y give the lateral and vertical offset from the primary
	// track; Yaw, Pitch and Roll are in radians.
	X, Y             float64
	Yaw, Pitch, Roll float64
	ShowObject       bool
	ShowPost         bool

	// Position is the world position of the signal head and Basis its
	// orientation.
	Position [3]float64
	Basis    math.Transformation
}

type PointOfInterest struct {
	TrackPosition float64
	Offset        [3]float64
	Yaw           float64
	Pitch         float64
	Roll          float64
	Text          string
}

type Atmosphere struct {
	Ambient        [3]uint8
	Diffuse        [3]uint8
	LightDirection [3]float64
}

// DefaultAtmosphere returns the lighting of a route that doesn't set any.
func DefaultAtmosphere() Atmosphere {
	return Atmosphere{
		Ambient:        [3]uint8{160, 160, 160},
		Diffuse:        [3]uint8{160, 160, 160},
		LightDirection: LightDirection(math.Radians(60), math.Radians(-26.565051177078)),
	}
}

// LightDirection converts the elevation theta and azimuth phi (radians)
// of the sun into the direction its light travels.
func LightDirection(theta, phi float64) [3]float64 {
	return [3]float64{
		-gomath.Cos(theta) * gomath.Sin(phi),
		gomath.Sin(theta),
		-gomath.Cos(theta) * gomath.Cos(phi),
	}
}

// Element is a piece of track that starts at StartingTrackPosition and
// continues to the next element's starting position.
type Element struct {
	StartingTrackPosition float64
	WorldPosition         [3]float64
	WorldDirection        [3]float64
	WorldUp               [3]float64
	WorldSide             [3]float64

	// CurveRadius is signed; positive curves to the right.
	CurveRadius      float64
	CurveCant        float64
	CurveCantTangent float64
	Pitch            float64

	AdhesionMultiplier float64
	Accuracy           float64

	Events []Event
}

// AddEvent appends e to the element's event list and returns its index.
func (el *Element) AddEvent(e Event) int {
	el.Events = append(el.Events, e)
	return len(el.Events) - 1
}

// Route is the result of compiling a route map.
type Route struct {
	Comment string
	Image   string

	BlockInterval float64

	Elements []Element
	// Subdivided is a finer sampling of Elements used to render curves
	// and cant smoothly; it has no events. Empty when the block interval
	// is too short to subdivide.
	Subdivided       []Element
	Stations         []Station
	Sections         []Section
	Signals          []Signal
	SignalTypes      []SignalType
	Structures       []Structure
	Placements       []Placement
	Meshes           []Mesh
	PointsOfInterest []PointOfInterest
	// Backgrounds holds the keys of the backgrounds referenced by
	// BackgroundEvents.
	Backgrounds []string

	Atmosphere  Atmosphere
	PreviousFog Fog
	CurrentFog  Fog
	NextFog     Fog
}

// NewRoute returns an empty route with its initial signalling section.
func NewRoute(blockInterval float64) *Route {
	return &Route{
		BlockInterval: blockInterval,
		Sections: []Section{{
			Aspects:      []AspectSpeed{{Number: 0, Speed: 0}, {Number: 4, Speed: gomath.Inf(1)}},
			Type:         IndexBased,
			StationIndex: -1,
			Previous:     -1,
			Next:         -1,
		}},
		Atmosphere:  DefaultAtmosphere(),
		PreviousFog: DefaultFog(0),
		CurrentFog:  DefaultFog(0),
		NextFog:     DefaultFog(0),
	}
}

// AddSection appends s after the last section and links the two.
func (r *Route) AddSection(s Section) int {
	n := len(r.Sections)
	s.Previous, s.Next = n-1, -1
	if n > 0 {
		r.Sections[n-1].Next = n
	}
	r.Sections = append(r.Sections, s)
	return n
}

// Length returns the track position at which the last element ends.
func (r *Route) Length() float64 {
	if len(r.Elements) == 0 {
		return 0
	}
	return r.Elements[len(r.Elements)-1].StartingTrackPosition + r.BlockInterval
}

// StationIndex returns the index of the station with the given key or -1.
func (r *Route) StationIndex(key string) int {
	for i, s := range r.Stations {
		if s.Key == key {
			return i
		}
	}
	return -1
}

// EventCounts tallies the route's events by type.
func (r *Route) EventCounts() map[EventType]int {
	counts := make(map[EventType]int)
	for _, el := range r.Elements {
		for _, e := range el.Events {
			counts[e.Type]++
		}
	}
	return counts
}
