// route/commands.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

import (
	"errors"
	"iter"
	"maps"
	gomath "math"
	"slices"
	"strings"

	"github.com/railsim/bve5c/lists"
	"github.com/railsim/bve5c/math"
	"github.com/railsim/bve5c/script"
	"github.com/railsim/bve5c/track"
)

var ErrCommandExists = errors.New("command already registered")

type command struct {
	Handler func(p *parser, s script.Statement)
	// Full commands only matter for a complete compile and are skipped
	// for previews.
	Full bool
	// NeedsKey commands must be indexed, as in structure[key].put.
	NeedsKey bool
}

// registry maps lowercased command names, with any [key] index removed,
// to their handlers.
type registry struct {
	commands map[string]command
}

func newRegistry() *registry {
	return &registry{commands: make(map[string]command)}
}

func (r *registry) Register(name string, c command) error {
	if _, ok := r.commands[name]; ok {
		return ErrCommandExists
	}
	r.commands[name] = c
	return nil
}

func (r *registry) Get(name string) (command, bool) {
	c, ok := r.commands[name]
	return c, ok
}

func (r *registry) Names() iter.Seq[string] {
	return maps.Keys(r.commands)
}

var commands = makeCommands()

func makeCommands() *registry {
	r := newRegistry()
	add := func(name string, full, key bool, h func(*parser, script.Statement)) {
		if err := r.Register(name, command{Handler: h, Full: full, NeedsKey: key}); err != nil {
			panic(name + ": " + err.Error())
		}
	}

	add("legacy.curve", false, false, (*parser).setCurve)
	add("legacy.pitch", false, false, (*parser).setGradient)
	add("legacy.turn", false, false, legacyTurn)
	add("legacy.fog", true, false, legacyFog)

	add("curve.begin", false, false, (*parser).setCurve)
	add("curve.begincircular", false, false, (*parser).setCurve)
	add("curve.begintransition", false, false, beginCurveTransition)
	add("curve.end", false, false, endCurve)
	add("gradient.begin", false, false, (*parser).setGradient)
	add("gradient.beginconst", false, false, (*parser).setGradient)
	add("gradient.begintransition", false, false, beginGradientTransition)
	add("gradient.end", false, false, endGradient)

	add("structure.put", true, true, putStructure)
	add("structure.put0", true, true, putStructure)
	add("structure.putbetween", true, true, putStructureBetween)

	add("station", false, true, putStation)
	add("station.put", false, true, putStation)

	add("repeater.begin", true, true, beginRepeater)
	add("repeater.begin0", true, true, beginRepeater)
	add("repeater.end", true, true, endRepeater)

	add("speedlimit.begin", true, false, beginSpeedLimit)
	add("speedlimit.end", true, false, endSpeedLimit)

	add("section.begin", true, false, beginSection)
	add("section.beginnew", true, false, beginSection)
	add("section.setspeedlimit", true, false, setSignalSpeeds)
	add("signal", true, true, putSignal)
	add("signal.put", true, true, putSignal)
	add("signal.speedlimit", true, false, setSignalSpeeds)

	add("rollingnoise.change", true, false, changeRunSound)
	add("flangenoise.change", true, false, changeFlangeSound)
	add("jointnoise.play", true, false, playJointNoise)

	add("track.position", true, true, positionRail)
	add("track.x.interpolate", true, true, interpolateRail)
	add("track.y.interpolate", true, true, interpolateRail)

	add("light.ambient", true, false, setAmbientLight)
	add("light.diffuse", true, false, setDiffuseLight)
	add("light.direction", true, false, setLightDirection)

	add("background.change", true, false, changeBackground)
	add("adhesion.change", true, false, changeAdhesion)
	add("irregularity.change", true, false, changeAccuracy)

	add("cabilluminance.set", true, false, setBrightness)
	add("cabilluminance.interpolate", true, false, setBrightness)
	add("fog.set", true, false, setFog)
	add("fog.interpolate", true, false, setFog)

	return r
}

///////////////////////////////////////////////////////////////////////////
// Track geometry

// setCurve handles curve.begin and its aliases: a radius in metres
// (signed, positive to the right) and a cant in millimetres.
func (p *parser) setCurve(s script.Statement) {
	r := s.Float(0, 0, p.e)
	cant := 0.001 * s.Float(1, 0, p.e)
	if p.opts.SignedCant {
		if r != 0 {
			cant *= math.Sign(r)
		}
	} else {
		cant = math.Abs(cant) * math.Sign(r)
	}

	b := p.block()
	b.TrackState = TrackState{CurveRadius: r, CurveCant: cant}
	b.CurveDefined = true
}

func beginCurveTransition(p *parser, s script.Statement) {
	p.block().CurveTransition = true
}

func endCurve(p *parser, s script.Statement) {
	b := p.block()
	b.TrackState = TrackState{}
	b.CurveDefined = true
}

// setGradient takes the gradient in permille.
func (p *parser) setGradient(s script.Statement) {
	b := p.block()
	b.Pitch = 0.001 * s.Float(0, 0, p.e)
	b.GradientDefined = true
}

func beginGradientTransition(p *parser, s script.Statement) {
	p.block().GradientTransition = true
}

func endGradient(p *parser, s script.Statement) {
	b := p.block()
	b.Pitch = 0
	b.GradientDefined = true
}

func legacyTurn(p *parser, s script.Statement) {
	p.block().Turn = s.Float(0, 0, p.e)
}

///////////////////////////////////////////////////////////////////////////
// Rails

// secondaryTrack positions the rail named key at the current block,
// creating it if necessary. NaN arguments leave the corresponding value
// unchanged.
func (p *parser) secondaryTrack(key string, x, y, radiusH, radiusV float64) {
	b := p.block()
	idx := findRail(b.Rails, key)
	if idx == -1 {
		idx = len(b.Rails)
		b.Rails = append(b.Rails, Rail{Key: key})
	}
	for len(b.RailTypes) <= idx {
		b.RailTypes = append(b.RailTypes, 0)
	}

	r := &b.Rails[idx]
	if r.StartRefreshed {
		r.End = true
	}
	r.Start, r.StartRefreshed = true, true
	if !gomath.IsNaN(x) {
		r.StartX = x
	}
	if !r.End {
		r.EndX = r.StartX
	}
	if !gomath.IsNaN(y) {
		r.StartY = y
	}
	if !r.End {
		r.EndY = r.StartY
	}
	if !gomath.IsNaN(radiusH) {
		r.RadiusH = radiusH
	}
	if !gomath.IsNaN(radiusV) {
		r.RadiusV = radiusV
	}
}

func positionRail(p *parser, s script.Statement) {
	if findRail(nil, s.Key) == 0 {
		p.e.Errorf(s.Pos, "%s: the primary track can't be repositioned", s.Name)
		return
	}
	nan := gomath.NaN()
	p.secondaryTrack(s.Key, s.Float(0, nan, p.e), s.Float(1, nan, p.e), s.Float(2, nan, p.e), s.Float(3, nan, p.e))
}

// interpolateRail handles track[key].x.interpolate and
// track[key].y.interpolate. The rail moves to its new offset over the
// preceding block; an omitted offset keeps the current one.
func interpolateRail(p *parser, s script.Statement) {
	if findRail(nil, s.Key) == 0 {
		p.e.Errorf(s.Pos, "%s: the primary track can't be repositioned", s.Name)
		return
	}
	nan := gomath.NaN()
	v := s.Float(0, nan, p.e)
	if s.Name == "track.x.interpolate" {
		p.secondaryTrack(s.Key, v, nan, nan, nan)
	} else {
		p.secondaryTrack(s.Key, nan, v, nan, nan)
	}
}

///////////////////////////////////////////////////////////////////////////
// Structures

func (p *parser) findStructure(s script.Statement, key string) int {
	idx := lists.FindStructure(p.structures, key)
	if idx == -1 {
		p.e.Errorf(s.Pos, "%s: structure %q not found", s.Name, key)
	}
	return idx
}

// putStructure handles
//
//	structure[key].put(rail, x, y, z, rx, ry, rz, tilt, span)
//	structure[key].put0(rail, tilt, span)
func putStructure(p *parser, s script.Statement) {
	st := p.findStructure(s, s.Key)
	if st == -1 {
		return
	}
	rail := p.findOrCreateRail(s.Arg(0), s.Pos)
	if rail == -1 {
		return
	}

	obj := FreeObject{TrackPosition: p.trackPosition, Structure: st, Rail: rail}
	var tilt int
	if s.Name == "structure.put0" {
		tilt = s.Int(1, 0, p.e)
		obj.Span = s.Float(2, 0, p.e)
	} else {
		obj.X = s.Float(1, 0, p.e)
		obj.Y = s.Float(2, 0, p.e)
		obj.Z = s.Float(3, 0, p.e)
		obj.Pitch = math.Radians(s.Float(4, 0, p.e))
		obj.Yaw = math.Radians(s.Float(5, 0, p.e))
		obj.Roll = math.Radians(s.Float(6, 0, p.e))
		tilt = s.Int(7, 0, p.e)
		obj.Span = s.Float(8, 0, p.e)
	}
	if tilt < int(track.Flat) || tilt > int(track.FollowsBoth) {
		p.e.Errorf(s.Pos, "%s: tilt %d must be between 0 and 3", s.Name, tilt)
		tilt = 0
	}
	obj.Orientation = track.Orientation(tilt)

	b := p.block()
	b.Objects = append(b.Objects, obj)
}

// putStructureBetween handles structure[key].putbetween(rail1, rail2,
// flag), which stretches the structure across the gap between two rails.
func putStructureBetween(p *parser, s script.Statement) {
	st := p.findStructure(s, s.Key)
	if st == -1 {
		return
	}
	r1 := p.findOrCreateRail(s.Arg(0), s.Pos)
	r2 := p.findOrCreateRail(s.Arg(1), s.Pos)
	if r1 == -1 || r2 == -1 {
		return
	}
	if r1 == r2 {
		p.e.Warnf(s.Pos, "%s: both ends are on rail %q", s.Name, s.Arg(0))
		return
	}

	b := p.block()
	b.Cracks = append(b.Cracks, Crack{
		TrackPosition: p.trackPosition,
		Structure:     st,
		PrimaryRail:   r1,
		SecondaryRail: r2,
	})
}

// beginRepeater handles
//
//	repeater[key].begin(rail, x, y, z, rx, ry, rz, tilt, span, interval, structure...)
//	repeater[key].begin0(rail, tilt, span, interval, structure...)
//
// Beginning a repeater that is already running replaces it in place when
// both begin at the same track position. Otherwise the old entry is ended
// where the new one begins and stays in the block for the repetitions it
// still owns, so a block may hold several entries with the same name, of
// which only the last one runs.
func beginRepeater(p *parser, s script.Statement) {
	first := 10
	if s.Name == "repeater.begin0" {
		first = 4
	}
	if len(s.Args) <= first {
		p.e.Errorf(s.Pos, "%s: expected at least %d arguments, got %d", s.Name, first+1, len(s.Args))
		return
	}

	rep := Repeater{Name: s.Key, TrackPosition: p.trackPosition, End: gomath.Inf(1)}
	for _, key := range s.Args[first:] {
		if key == "" {
			continue
		}
		if st := p.findStructure(s, key); st != -1 {
			rep.Structures = append(rep.Structures, st)
		}
	}
	if len(rep.Structures) == 0 {
		return
	}

	rep.Rail = p.findOrCreateRail(s.Arg(0), s.Pos)
	if rep.Rail == -1 {
		return
	}
	var tilt int
	if first == 4 {
		tilt = s.Int(1, 0, p.e)
		rep.Span = s.Float(2, 0, p.e)
		rep.Interval = s.Float(3, 0, p.e)
	} else {
		rep.X = s.Float(1, 0, p.e)
		rep.Y = s.Float(2, 0, p.e)
		rep.Z = s.Float(3, 0, p.e)
		rep.Pitch = math.Radians(s.Float(4, 0, p.e))
		rep.Yaw = math.Radians(s.Float(5, 0, p.e))
		rep.Roll = math.Radians(s.Float(6, 0, p.e))
		tilt = s.Int(7, 0, p.e)
		rep.Span = s.Float(8, 0, p.e)
		rep.Interval = s.Float(9, 0, p.e)
	}
	if tilt < int(track.Flat) || tilt > int(track.FollowsBoth) {
		p.e.Errorf(s.Pos, "%s: tilt %d must be between 0 and 3", s.Name, tilt)
		tilt = 0
	}
	rep.Orientation = track.Orientation(tilt)

	// Converted routes use 24.99 to mean one repetition per block.
	if rep.Interval == 24.99 {
		rep.Interval = 25
	}
	if rep.Interval <= 0 {
		p.e.Warnf(s.Pos, "%s: interval %g must be positive", s.Name, rep.Interval)
		return
	}

	b := p.block()
	if i := b.runningRepeater(rep.Name); i != -1 {
		if b.Repeaters[i].TrackPosition == rep.TrackPosition {
			b.Repeaters[i] = rep
			return
		}
		b.Repeaters[i].End = p.trackPosition
	}
	b.Repeaters = append(b.Repeaters, rep)
}

func endRepeater(p *parser, s script.Statement) {
	b := p.block()
	i := b.runningRepeater(s.Key)
	if i == -1 {
		p.e.Warnf(s.Pos, "%s: repeater %q isn't running", s.Name, s.Key)
		return
	}
	b.Repeaters[i].End = p.trackPosition
}

///////////////////////////////////////////////////////////////////////////
// Stations, limits and signals

// putStation handles station[key].put(door, backwardTolerance,
// forwardTolerance); door is negative for the left side and positive for
// the right.
func putStation(p *parser, s script.Statement) {
	idx := p.route.StationIndex(strings.ToLower(s.Key))
	if idx == -1 {
		p.e.Errorf(s.Pos, "%s: station %q not found", s.Name, s.Key)
		return
	}
	door := s.Int(0, 0, p.e)
	back := s.Float(1, 5, p.e)
	if back <= 0 {
		back = 5
	}
	fwd := s.Float(2, 5, p.e)
	if fwd <= 0 {
		fwd = 5
	}

	st := &p.route.Stations[idx]
	st.OpenLeftDoors = door < 0
	st.OpenRightDoors = door > 0

	b := p.block()
	b.Station = idx
	b.StationPassAlarm = st.StopMode != track.AllPass
	b.Stops = append(b.Stops, StopPoint{
		TrackPosition:     p.trackPosition,
		Station:           idx,
		ForwardTolerance:  fwd,
		BackwardTolerance: back,
	})
}

// beginSpeedLimit takes a limit in km/h; zero or less lifts the limit.
func beginSpeedLimit(p *parser, s script.Statement) {
	v := s.Float(0, 0, p.e)
	speed := gomath.Inf(1)
	if v > 0 {
		speed = v * unitOfSpeed
	}
	p.addLimit(speed)
}

func endSpeedLimit(p *parser, s script.Statement) {
	p.addLimit(gomath.Inf(1))
}

func (p *parser) addLimit(speed float64) {
	b := p.block()
	b.Limits = append(b.Limits, Limit{
		TrackPosition: p.trackPosition,
		Speed:         speed,
		PreviousSpeed: p.lastSpeed,
	})
	p.lastSpeed = speed
}

// aspectSpeeds pairs aspect numbers with the signal speed limits
// currently in effect.
func (p *parser) aspectSpeeds(numbers []int) []track.AspectSpeed {
	as := make([]track.AspectSpeed, len(numbers))
	for i, n := range numbers {
		as[i] = track.AspectSpeed{Number: n, Speed: gomath.Inf(1)}
		if n < 0 {
			as[i].Speed = 0
		} else if n < len(p.signalSpeeds) {
			as[i].Speed = p.signalSpeeds[n]
		}
	}
	return as
}

// beginSection handles section.begin(aspect...). Aspects that aren't
// non-negative integers are kept as -1.
func beginSection(p *parser, s script.Statement) {
	if len(s.Args) == 0 {
		p.e.Warnf(s.Pos, "%s: no aspects given", s.Name)
		return
	}
	numbers := make([]int, len(s.Args))
	for i := range s.Args {
		numbers[i] = s.Int(i, -1, p.e)
		if numbers[i] < 0 {
			numbers[i] = -1
		}
	}

	b := p.block()
	b.Sections = append(b.Sections, BlockSection{
		TrackPosition: p.trackPosition,
		Aspects:       p.aspectSpeeds(numbers),
		Type:          track.IndexBased,
	})
	p.currentSection++
}

// setSignalSpeeds replaces the speed limits associated with each aspect
// number for sections declared from here on. Speeds are in km/h; an
// empty or "null" entry means no limit.
func setSignalSpeeds(p *parser, s script.Statement) {
	speeds := make([]float64, len(s.Args))
	for i, a := range s.Args {
		if a == "" || strings.EqualFold(a, "null") {
			speeds[i] = gomath.Inf(1)
		} else {
			speeds[i] = unitOfSpeed * s.Float(i, gomath.Inf(1), p.e)
		}
	}
	p.signalSpeeds = speeds
}

// putSignal handles signal[type].put(section, rail, x, y, rx, ry, rz).
// Every signal begins a value-based section displaying the signal
// type's aspects. A signal with zero lateral offset has no object and
// only drives its section.
func putSignal(p *parser, s script.Statement) {
	typ := lists.FindSignalType(p.signalTypes, s.Key)
	if typ == -1 {
		p.e.Errorf(s.Pos, "%s: signal type %q not found", s.Name, s.Key)
		return
	}
	x := s.Float(2, 0, p.e)
	y := s.Float(3, 0, p.e)
	yaw := math.Radians(s.Float(4, 0, p.e))
	pitch := math.Radians(s.Float(5, 0, p.e))
	roll := math.Radians(s.Float(6, 0, p.e))

	b := p.block()
	b.Sections = append(b.Sections, BlockSection{
		TrackPosition: p.trackPosition,
		Aspects:       p.aspectSpeeds(p.signalTypes[typ].Numbers),
		Type:          track.ValueBased,
		Invisible:     x == 0,
	})
	p.currentSection++

	sig := BlockSignal{
		TrackPosition: p.trackPosition,
		Section:       p.currentSection,
		Type:          typ,
		X:             x,
		Y:             y,
		Yaw:           yaw,
		Pitch:         pitch,
		Roll:          roll,
		ShowObject:    x != 0,
		ShowPost:      x != 0 && y < 0,
	}
	if y < 0 {
		sig.Y = 4.8
	}
	b.Signals = append(b.Signals, sig)
}

///////////////////////////////////////////////////////////////////////////
// Sounds

// soundAt returns the sound sample at the current track position,
// appending one that inherits the previous sample's sounds if there
// isn't one yet.
func (p *parser) soundAt() *TrackSound {
	b := p.block()
	for i := range b.RunSounds {
		if b.RunSounds[i].TrackPosition == p.trackPosition {
			return &b.RunSounds[i]
		}
	}
	ts := TrackSound{TrackPosition: p.trackPosition}
	if n := len(b.RunSounds); n > 0 {
		ts.RunSound, ts.FlangeSound = b.RunSounds[n-1].RunSound, b.RunSounds[n-1].FlangeSound
	}
	b.RunSounds = append(b.RunSounds, ts)
	return &b.RunSounds[len(b.RunSounds)-1]
}

func changeRunSound(p *parser, s script.Statement) {
	idx := s.Int(0, 0, p.e)
	p.soundAt().RunSound = idx
}

func changeFlangeSound(p *parser, s script.Statement) {
	idx := s.Int(0, 0, p.e)
	p.soundAt().FlangeSound = idx
}

func playJointNoise(p *parser, s script.Statement) {
	p.block().JointNoise = true
}

///////////////////////////////////////////////////////////////////////////
// Environment

// color01 reads three 0..1 colour components starting at argument i,
// defaulting each to def.
func (p *parser) color01(s script.Statement, i int, def float64) [3]uint8 {
	var c [3]uint8
	for j := range 3 {
		v := math.Clamp(s.Float(i+j, def, p.e), 0, 1)
		c[j] = uint8(v * 255)
	}
	return c
}

func setAmbientLight(p *parser, s script.Statement) {
	p.route.Atmosphere.Ambient = p.color01(s, 0, 1)
}

func setDiffuseLight(p *parser, s script.Statement) {
	p.route.Atmosphere.Diffuse = p.color01(s, 0, 1)
}

// setLightDirection takes the sun's elevation and azimuth in degrees.
func setLightDirection(p *parser, s script.Statement) {
	theta := s.Float(0, 60, p.e)
	phi := s.Float(1, -26.565051177078, p.e)
	p.route.Atmosphere.LightDirection = track.LightDirection(math.Radians(theta), math.Radians(phi))
}

// changeBackground switches to the background drawn with the named
// structure.
func changeBackground(p *parser, s script.Statement) {
	key := s.Arg(0)
	if lists.FindStructure(p.structures, key) == -1 {
		p.e.Errorf(s.Pos, "%s: structure %q not found", s.Name, key)
		return
	}
	idx := slices.IndexFunc(p.route.Backgrounds, func(k string) bool { return strings.EqualFold(k, key) })
	if idx == -1 {
		idx = len(p.route.Backgrounds)
		p.route.Backgrounds = append(p.route.Backgrounds, key)
	}
	p.block().Background = idx
}

// changeAdhesion takes either a single friction coefficient or the
// three-coefficient form written by older converters; the latter is
// reduced to a multiplier of the default coefficient.
func changeAdhesion(p *parser, s script.Statement) {
	b := p.block()
	switch len(s.Args) {
	case 1:
		c := s.Float(0, gomath.NaN(), p.e)
		if gomath.IsNaN(c) {
			return
		}
		b.Adhesion = gomath.Round(c*100/0.26) / 100
	case 3:
		c0, c1, c2 := s.Float(0, 0, p.e), s.Float(1, 0, p.e), s.Float(2, 0, p.e)
		if c1 != 0 || c0 == 0 || c2 == 0 {
			p.e.Warnf(s.Pos, "%s: unsupported coefficients (%g, %g, %g)", s.Name, c0, c1, c2)
			return
		}
		if c0 == 0.35 && c2 == 0.01 {
			b.Adhesion = 1
			return
		}
		ca := gomath.Round(c0 * 100 / 0.26)
		cb := 1 / (300 * (ca / 100 * 0.259999990463257))
		if gomath.Round(cb*1e8)/1e8 == c2 {
			b.Adhesion = ca / 100
		} else {
			b.Adhesion = (ca + cb) / 2 / 100
		}
	default:
		p.e.Warnf(s.Pos, "%s: expected 1 or 3 arguments, got %d", s.Name, len(s.Args))
	}
}

// changeAccuracy converts the horizontal irregularity of the track into
// the 0-4 accuracy scale.
func changeAccuracy(p *parser, s script.Statement) {
	x := s.Float(0, 0, p.e)
	a := (-1 + gomath.Sqrt(max(0, 1-8*(8-10000*x)))) / 4
	p.block().Accuracy = math.Clamp(a, 0, 4)
}

// setBrightness handles cabilluminance.set, which changes the brightness
// at once, and cabilluminance.interpolate, which fades to it from the
// previous sample.
func setBrightness(p *parser, s script.Statement) {
	v := s.Float(0, gomath.NaN(), p.e)
	if gomath.IsNaN(v) {
		p.e.Errorf(s.Pos, "%s: missing brightness", s.Name)
		return
	}
	b := p.block()
	if s.Name == "cabilluminance.set" {
		b.Brightness = append(b.Brightness,
			BrightnessSample{TrackPosition: p.trackPosition, Value: p.lastBrightness},
			BrightnessSample{TrackPosition: p.trackPosition + 1, Value: v})
	} else {
		b.Brightness = append(b.Brightness, BrightnessSample{TrackPosition: p.trackPosition, Value: v})
	}
	p.lastBrightness = v
}

// setFog handles fog.set and fog.interpolate(density, r, g, b) with
// colour components between 0 and 1. Omitted values keep the fog in
// effect.
func setFog(p *parser, s script.Statement) {
	b := p.block()
	f := b.Fog
	f.TrackPosition = p.trackPosition
	if len(s.Args) > 0 {
		f.Density = max(0, s.Float(0, f.Density, p.e))
		f.Linear = false
	}
	for j := range 3 {
		if s.Arg(1+j) != "" {
			v := math.Clamp(s.Float(1+j, 1, p.e), 0, 1)
			f.Color[j] = uint8(v * 255)
		}
	}
	b.Fog = f
	b.FogDefined = true
}

// legacyFog handles legacy.fog(start, end, r, g, b) with colour
// components between 0 and 255; start >= end turns the fog off.
func legacyFog(p *parser, s script.Statement) {
	start, end := s.Float(0, 0, p.e), s.Float(1, 0, p.e)
	var c [3]uint8
	for j := range 3 {
		c[j] = uint8(math.Clamp(s.Int(2+j, 128, p.e), 0, 255))
	}
	if start >= end {
		start, end = track.NoFogStart, track.NoFogEnd
	}
	b := p.block()
	b.Fog = track.MakeLinearFog(start, end, c, p.trackPosition)
	b.FogDefined = true
}
