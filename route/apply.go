// route/apply.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

import (
	"context"
	gomath "math"

	"github.com/railsim/bve5c/math"
	"github.com/railsim/bve5c/track"
	"github.com/railsim/bve5c/util"
)

const (
	// Blocks between a station's pass alarm and the station itself.
	passAlarmBlocks = 6
	// Reference speed of the joint noise, m/s.
	jointNoiseSpeed = 12.5
	// Brightness of signal heads relative to the cab brightness.
	signalBaseBrightness  = 0.27
	signalCabBrightness   = 0.75
	checkCancelEveryBlock = 16
)

// railFrame is the position and orientation of one rail at the start of a
// block.
type railFrame struct {
	pos [3]float64
	// t follows the rail; level is t with its up axis forced vertical and
	// ground follows the rail's heading with no pitch.
	t, level, ground math.Transformation
}

// expansion holds the running state of apply.
type expansion struct {
	p     *parser
	route *track.Route
	first int

	pos [3]float64
	dir [2]float64

	// Index of the brightness event whose next values are still unknown.
	brightEl, brightEv int
	brightValue        float64
	brightTP           float64

	fogEl, fogEv int
	fog          track.Fog
	// Fog of the two preceding blocks when fog is interpolated per block.
	prevFog, curFog track.Fog

	runSound, flangeSound int

	// A station that holds its departure signal at red until the train
	// stops, waiting for the next section after its stop.
	depStation int
	depTP      float64
	depUsed    map[int]bool

	// Structures whose meshes couldn't be loaded, so they are reported
	// once.
	meshFailed map[int]bool
}

// apply expands the blocks into track elements, events and placements.
func (p *parser) apply(ctx context.Context) error {
	first := max(p.firstUsedBlock, 0)
	if first >= len(p.blocks) {
		first = len(p.blocks) - 1
	}
	r := p.route
	r.Elements = make([]track.Element, len(p.blocks)-first)

	x := &expansion{
		p:           p,
		route:       r,
		first:       first,
		dir:         [2]float64{0, 1},
		brightEl:    -1,
		brightValue: 1,
		brightTP:    float64(first) * p.interval,
		fogEl:       -1,
		depStation:  -1,
		depUsed:     make(map[int]bool),
		meshFailed:  make(map[int]bool),
	}
	if !p.opts.PreviewOnly {
		x.fog = p.blocks[first].Fog
		r.PreviousFog, r.CurrentFog, r.NextFog = x.fog, x.fog, x.fog
		S0 := float64(first) * p.interval
		x.prevFog, x.curFog = track.DefaultFog(S0-p.interval), track.DefaultFog(S0)
	}

	for i := first; i < len(p.blocks); i++ {
		if (i-first)%checkCancelEveryBlock == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		x.block(i)
	}

	x.stationEnds()
	x.defaultPointsOfInterest()
	propagateCant(r.Elements)
	p.validateStations()

	last := &r.Elements[len(r.Elements)-1]
	last.AddEvent(track.Event{Type: track.TrackEndEvent, Delta: p.interval})
	return nil
}

func (x *expansion) block(i int) {
	p, r := x.p, x.route
	b := &p.blocks[i]
	n := i - x.first
	S := float64(i) * p.interval
	preview := p.opts.PreviewOnly

	x.dir = math.Normalize2d(x.dir)
	el := &r.Elements[n]
	el.StartingTrackPosition = S
	el.WorldPosition = x.pos
	el.WorldDirection = math.Direction3d(x.dir, b.Pitch)
	el.WorldSide = math.Side3d(x.dir)
	el.WorldUp = math.Cross3d(el.WorldDirection, el.WorldSide)
	el.AdhesionMultiplier = b.Adhesion
	el.Accuracy = b.Accuracy
	el.CurveRadius = b.TrackState.CurveRadius
	el.CurveCant = b.TrackState.CurveCant
	el.CurveCantTangent = b.TrackState.CurveCantTangent

	if !preview {
		x.background(i, el)
		x.brightness(b, n, S)
		x.fogEvents(i, n, S)
		x.sounds(i, el, S)
	}
	x.station(b, n, S)
	if !preview {
		for _, l := range b.Limits {
			el.AddEvent(track.Event{
				Type:               track.LimitChangeEvent,
				Delta:              l.TrackPosition - S,
				PreviousSpeedLimit: l.PreviousSpeed,
				NextSpeedLimit:     l.Speed,
			})
		}
	}

	if b.Turn != 0 {
		ag := math.TurnAngle(b.Turn)
		c, s := gomath.Cos(ag), gomath.Sin(ag)
		x.dir = math.Rotate2d(x.dir, c, s)
		el.WorldDirection = math.RotatePlane(el.WorldDirection, c, s)
		el.WorldSide = math.RotatePlane(el.WorldSide, c, s)
		el.WorldUp = math.Cross3d(el.WorldDirection, el.WorldSide)
	}
	el.Pitch = b.Pitch

	c, h, a := math.ArcStep(p.interval, b.TrackState.CurveRadius, b.Pitch)
	ca, sa := gomath.Cos(-a), gomath.Sin(-a)
	x.dir = math.Rotate2d(x.dir, ca, sa)

	if !preview {
		for j := range b.Rails {
			if j > 0 && !b.Rails[j].Start {
				continue
			}
			f := x.railFrame(i, j, c, h, a)
			x.cracks(i, j, n, f)
			x.objects(i, j, n, f)
			x.repeaters(i, j, n, f)
			if j == 0 {
				x.signals(b, n, f)
				x.sections(b, el, S)
			}
		}
	}

	x.pos = math.Add3d(x.pos, [3]float64{x.dir[0] * c, h, x.dir[1] * c})
	x.dir = math.Rotate2d(x.dir, ca, sa)
}

///////////////////////////////////////////////////////////////////////////
// Events

// background emits an event in every block that sets a background, even
// when it is already in effect. The previous background is found by
// looking back to the last block that set one.
func (x *expansion) background(i int, el *track.Element) {
	b := &x.p.blocks[i]
	if b.Background < 0 {
		return
	}
	prev := b.Background
	if i > x.first {
		prev = -1
		for k := i - 1; k >= x.first; k-- {
			if x.p.blocks[k].Background >= 0 {
				prev = x.p.blocks[k].Background
				break
			}
		}
		if prev == -1 && len(x.route.Backgrounds) > 0 {
			prev = 0
		}
	}
	if prev < 0 {
		return
	}
	el.AddEvent(track.Event{Type: track.BackgroundEvent, Index: b.Background, PreviousIndex: prev})
}

// brightness emits an event per sample. Each event learns the value and
// distance of the following sample when that one is reached.
func (x *expansion) brightness(b *Block, n int, S float64) {
	els := x.route.Elements
	for _, s := range b.Brightness {
		e := track.Event{
			Type:               track.BrightnessEvent,
			Delta:              s.TrackPosition - S,
			Brightness:         s.Value,
			PreviousBrightness: x.brightValue,
			PreviousDistance:   s.TrackPosition - x.brightTP,
			NextBrightness:     s.Value,
		}
		if x.brightEl >= 0 {
			prev := &els[x.brightEl].Events[x.brightEv]
			prev.NextBrightness = s.Value
			prev.NextDistance = s.TrackPosition - x.brightTP
		}
		x.brightEl, x.brightEv = n, els[n].AddEvent(e)
		x.brightValue, x.brightTP = s.Value, s.TrackPosition
	}
}

// fogEvents emits either a single event wherever the fog is redefined,
// linked to the redefinitions either side, or an event at the start of
// every block interpolating from the previous block's fog, reached at the
// block start, to this block's, reached at its end.
func (x *expansion) fogEvents(i, n int, S float64) {
	p, r := x.p, x.route
	b := &p.blocks[i]
	el := &r.Elements[n]

	if p.opts.FogTransition {
		if !b.FogDefined {
			return
		}
		e := track.Event{
			Type:        track.FogEvent,
			Delta:       max(0, b.Fog.TrackPosition-S),
			PreviousFog: x.fog,
			CurrentFog:  b.Fog,
			NextFog:     b.Fog,
		}
		if x.fogEl >= 0 {
			r.Elements[x.fogEl].Events[x.fogEv].NextFog = b.Fog
		} else {
			r.NextFog = b.Fog
		}
		x.fogEl, x.fogEv = n, el.AddEvent(e)
		x.fog = b.Fog
		return
	}

	next := b.Fog
	next.TrackPosition = S + p.interval
	el.AddEvent(track.Event{Type: track.FogEvent, PreviousFog: x.prevFog, CurrentFog: x.curFog, NextFog: next})
	x.prevFog, x.curFog = x.curFog, next
}

func (x *expansion) sounds(i int, el *track.Element, S float64) {
	b := &x.p.blocks[i]
	for _, s := range b.RunSounds {
		if s.RunSound == x.runSound && s.FlangeSound == x.flangeSound {
			continue
		}
		el.AddEvent(track.Event{
			Type:                track.RailSoundsEvent,
			Delta:               min(0, s.TrackPosition-S),
			PreviousRunSound:    x.runSound,
			PreviousFlangeSound: x.flangeSound,
			RunSound:            s.RunSound,
			FlangeSound:         s.FlangeSound,
		})
		x.runSound, x.flangeSound = s.RunSound, s.FlangeSound
	}
	if b.JointNoise && i < len(x.p.blocks)-1 {
		el.AddEvent(track.Event{Type: track.PointSoundEvent, SoundSpeed: jointNoiseSpeed})
	}
}

// doorOffset is the lateral offset of a station's platform side.
func doorOffset(st *track.Station, d float64) float64 {
	switch {
	case st.OpenLeftDoors && !st.OpenRightDoors:
		return -d
	case st.OpenRightDoors && !st.OpenLeftDoors:
		return d
	default:
		return 0
	}
}

func (x *expansion) station(b *Block, n int, S float64) {
	r := x.route
	el := &r.Elements[n]
	if b.Station >= 0 {
		st := &r.Stations[b.Station]
		el.AddEvent(track.Event{Type: track.StationStartEvent, Index: b.Station})
		st.SoundOrigin = math.Add3d(el.WorldPosition, math.Add3d(
			math.Scale3d(el.WorldSide, doorOffset(st, 5)), math.Scale3d(el.WorldUp, 3)))
		if b.StationPassAlarm {
			if k := n - passAlarmBlocks; k >= 0 {
				r.Elements[k].AddEvent(track.Event{Type: track.StationPassAlarmEvent, Index: b.Station})
			}
		}
	}

	for _, stop := range b.Stops {
		st := &r.Stations[stop.Station]
		st.Stops = append(st.Stops, track.Stop{
			TrackPosition:     stop.TrackPosition,
			ForwardTolerance:  stop.ForwardTolerance,
			BackwardTolerance: stop.BackwardTolerance,
			Cars:              stop.Cars,
		})
		at := math.Add3d(el.WorldPosition, math.Scale3d(el.WorldDirection, stop.TrackPosition-S))
		st.SoundOrigin = math.Add3d(at, math.Add3d(
			math.Scale3d(el.WorldSide, doorOffset(st, 5)), math.Scale3d(el.WorldUp, 2)))

		if st.ForceStopSignal && !x.depUsed[stop.Station] {
			x.depUsed[stop.Station] = true
			x.depStation, x.depTP = stop.Station, stop.TrackPosition
		}
	}
}

// stationEnds marks where each station's platform ends: one block
// interval past the forward tolerance of its last stop.
func (x *expansion) stationEnds() {
	r, interval := x.route, x.p.interval
	for s := range r.Stations {
		st := &r.Stations[s]
		if len(st.Stops) == 0 {
			continue
		}
		stop := st.Stops[len(st.Stops)-1]
		tp := stop.TrackPosition + stop.ForwardTolerance + interval
		k := int(gomath.Floor(tp/interval)) - x.first
		k = math.Clamp(k, 0, len(r.Elements)-1)
		el := &r.Elements[k]
		el.AddEvent(track.Event{Type: track.StationEndEvent, Delta: tp - el.StartingTrackPosition, Index: s})
	}
}

// defaultPointsOfInterest adds one point of interest at the first stop of
// each station, on the platform side.
func (x *expansion) defaultPointsOfInterest() {
	r := x.route
	if len(r.PointsOfInterest) > 0 {
		return
	}
	for s := range r.Stations {
		st := &r.Stations[s]
		if len(st.Stops) == 0 {
			continue
		}
		r.PointsOfInterest = append(r.PointsOfInterest, track.PointOfInterest{
			TrackPosition: st.Stops[0].TrackPosition,
			Offset:        [3]float64{doorOffset(st, 2.5), 2.8, 0},
			Text:          st.Name,
		})
	}
}

///////////////////////////////////////////////////////////////////////////
// Rails

// railFrame computes where rail j of block i starts and how it is
// oriented. Secondary rails point at where the same rail starts in the
// next block, which is predicted by stepping the primary track ahead.
func (x *expansion) railFrame(i, j int, c, h, a float64) railFrame {
	p := x.p
	b := &p.blocks[i]
	dir := x.dir
	yaw := math.Yaw2d(dir)
	ground := math.MakeTransformation(yaw, 0, 0)
	trackT := math.MakeTransformation(yaw, gomath.Atan(b.Pitch), 0)

	if j == 0 {
		return railFrame{pos: x.pos, t: trackT, level: trackT.Level(), ground: ground}
	}

	rail := &b.Rails[j]
	offset := func(pos [3]float64, dir [2]float64, dx, dy float64) [3]float64 {
		return math.Add3d(pos, [3]float64{dir[1] * dx, dy, -dir[0] * dx})
	}
	f := railFrame{pos: offset(x.pos, dir, rail.StartX, rail.StartY), t: trackT, ground: ground}

	if i+1 < len(p.blocks) && j < len(p.blocks[i+1].Rails) {
		nb := &p.blocks[i+1]
		pos2 := math.Add3d(x.pos, [3]float64{dir[0] * c, h, dir[1] * c})
		dir2 := math.Rotate2d(dir, gomath.Cos(-a), gomath.Sin(-a))
		if nb.Turn != 0 {
			ag := math.TurnAngle(nb.Turn)
			dir2 = math.Rotate2d(dir2, gomath.Cos(ag), gomath.Sin(ag))
		}
		_, _, a2 := math.ArcStep(p.interval, nb.TrackState.CurveRadius, nb.Pitch)
		dir2 = math.Rotate2d(dir2, gomath.Cos(-a2), gomath.Sin(-a2))

		x2, y2 := nb.Rails[j].EndX, nb.Rails[j].EndY
		f.t = math.FromForward(math.Sub3d(offset(pos2, dir2, x2, y2), f.pos))

		d := math.Sub3d(offset(pos2, dir2, x2, 0), offset(x.pos, dir, rail.StartX, 0))
		d[1] = 0
		f.ground = math.FromForward(d)
	}
	f.level = f.t.Level()
	return f
}

// basis picks the orientation of an object placed on a rail.
func (f railFrame) basis(o track.Orientation) math.Transformation {
	switch o {
	case track.Flat:
		return f.level
	case track.FollowsCant:
		return f.ground
	default:
		return f.t
	}
}

// at returns the world position of an object offset from the rail's start
// by x to the side, y up and z along the rail.
func (f railFrame) at(x, y, z float64) [3]float64 {
	return math.Add3d(f.pos, f.t.Apply([3]float64{x, y, z}))
}

func (x *expansion) cracks(i, j, n int, f railFrame) {
	p := x.p
	b := &p.blocks[i]
	S := float64(i) * p.interval
	for _, ck := range b.Cracks {
		if ck.PrimaryRail != j {
			continue
		}
		pr, sr := ck.PrimaryRail, ck.SecondaryRail
		if sr >= len(b.Rails) || !b.Rails[sr].Start {
			continue
		}

		startX := func(k int) float64 {
			if k == 0 {
				return 0
			}
			return b.Rails[k].StartX
		}
		endX := startX
		if i+1 < len(p.blocks) {
			nb := &p.blocks[i+1]
			endX = func(k int) float64 {
				if k == 0 || k >= len(nb.Rails) {
					return startX(k)
				}
				return nb.Rails[k].EndX
			}
		}

		d0 := startX(sr) - startX(pr)
		d1 := endX(sr) - endX(pr)
		if d0 == 0 {
			continue
		}
		x.route.Placements = append(x.route.Placements, track.Placement{
			Kind:          track.CrackPlacement,
			Structure:     ck.Structure,
			Mesh:          -1,
			Signal:        -1,
			Element:       n,
			Rail:          pr,
			TrackPosition: ck.TrackPosition,
			Position:      f.at(0, 0, ck.TrackPosition-S),
			Basis:         f.t,
			Local:         math.IdentityTransformation,
			CrackWidths:   [2]float64{d0, d1},
			Brightness:    1,
		})
	}
}

func (x *expansion) objects(i, j, n int, f railFrame) {
	p := x.p
	b := &p.blocks[i]
	S := float64(i) * p.interval
	for _, obj := range b.Objects {
		if obj.Rail != j {
			continue
		}
		pl := track.Placement{
			Kind:          track.RailPlacement,
			Structure:     obj.Structure,
			Mesh:          -1,
			Signal:        -1,
			Element:       n,
			Rail:          j,
			TrackPosition: obj.TrackPosition,
			Position:      f.at(obj.X, obj.Y, obj.TrackPosition-S+obj.Z),
			Basis:         f.basis(obj.Orientation),
			Local:         math.MakeTransformation(obj.Yaw, obj.Pitch, obj.Roll),
			Brightness:    1,
		}
		if j == 0 && obj.Orientation == track.Flat {
			pl.Kind = track.GroundPlacement
			pl.Position[1] -= b.Height
		}
		x.route.Placements = append(x.route.Placements, pl)
	}
}

// repeaters places the repetitions of each repeater on rail j that fall
// within block i. With an ObjectLoader, the block's repetitions are
// merged into a single mesh bent to the block's curve; otherwise each
// repetition is placed by reference.
func (x *expansion) repeaters(i, j, n int, f railFrame) {
	p := x.p
	b := &p.blocks[i]
	S := float64(i) * p.interval
	end := S + p.interval
	loader := p.opts.ObjectLoader

	for _, rep := range b.Repeaters {
		if rep.Rail != j || len(rep.Structures) == 0 {
			continue
		}
		m := max(0, int(gomath.Ceil((S-rep.TrackPosition)/rep.Interval-1e-9)))
		basis := f.basis(rep.Orientation)
		local := math.MakeTransformation(rep.Yaw, rep.Pitch, rep.Roll)

		var merged *track.Mesh
		for ; ; m++ {
			t := rep.TrackPosition + float64(m)*rep.Interval
			if t >= end || t >= rep.End {
				break
			}
			st := rep.Structures[m%len(rep.Structures)]

			if loader != nil && !x.meshFailed[st] {
				proto, err := loader.LoadMesh(p.structures[st])
				if err == nil {
					mesh := proto.Clone()
					for k, v := range mesh.Vertices {
						mesh.Vertices[k] = local.Apply(v)
					}
					mesh.Translate([3]float64{rep.X, rep.Y, t - S + rep.Z})
					if merged == nil {
						merged = mesh
					} else {
						merged.Join(mesh)
					}
					continue
				}
				x.meshFailed[st] = true
				p.e.Warnf(util.Pos{File: p.structures[st].Path}, "repeater %s: %v", rep.Name, err)
				p.lg.Warnf("%s: unable to load repeater mesh: %v", p.structures[st].Key, err)
			}

			x.route.Placements = append(x.route.Placements, track.Placement{
				Kind:          track.RepeaterPlacement,
				Structure:     st,
				Mesh:          -1,
				Signal:        -1,
				Element:       n,
				Rail:          j,
				TrackPosition: t,
				Position:      f.at(rep.X, rep.Y, t-S+rep.Z),
				Basis:         basis,
				Local:         local,
				Brightness:    1,
			})
		}

		if merged == nil {
			continue
		}
		if R := b.TrackState.CurveRadius; R != 0 {
			merged.Bend(R)
			// The frame points along the chord; the mesh starts along the
			// tangent.
			merged.RotateY(-0.5 * p.interval / R)
		}
		x.route.Meshes = append(x.route.Meshes, *merged)
		x.route.Placements = append(x.route.Placements, track.Placement{
			Kind:          track.RepeaterPlacement,
			Structure:     -1,
			Mesh:          len(x.route.Meshes) - 1,
			Signal:        -1,
			Element:       n,
			Rail:          j,
			TrackPosition: S,
			Position:      f.pos,
			Basis:         basis,
			Local:         math.IdentityTransformation,
			Brightness:    1,
		})
	}
}

///////////////////////////////////////////////////////////////////////////
// Signalling

func (x *expansion) signals(b *Block, n int, f railFrame) {
	p, r := x.p, x.route
	S := r.Elements[n].StartingTrackPosition
	for _, bs := range b.Signals {
		sig := track.Signal{
			TrackPosition: bs.TrackPosition,
			Section:       bs.Section,
			Type:          bs.Type,
			X:             bs.X,
			Y:             bs.Y,
			Yaw:           bs.Yaw,
			Pitch:         bs.Pitch,
			Roll:          bs.Roll,
			ShowObject:    bs.ShowObject,
			ShowPost:      bs.ShowPost,
			Position:      f.at(bs.X, bs.Y, bs.TrackPosition-S),
			Basis:         f.level,
		}
		r.Signals = append(r.Signals, sig)
		if !sig.ShowObject {
			continue
		}
		r.Placements = append(r.Placements, track.Placement{
			Kind:          track.SignalPlacement,
			Structure:     -1,
			Mesh:          -1,
			Signal:        len(r.Signals) - 1,
			Element:       n,
			TrackPosition: sig.TrackPosition,
			Position:      sig.Position,
			Basis:         sig.Basis,
			Local:         math.MakeTransformation(sig.Yaw, sig.Pitch, sig.Roll),
			Brightness:    signalBaseBrightness + signalCabBrightness*p.brightness(sig.TrackPosition),
		})
	}
}

func (x *expansion) sections(b *Block, el *track.Element, S float64) {
	r := x.route
	for _, bs := range b.Sections {
		sec := track.Section{
			TrackPosition: bs.TrackPosition,
			Aspects:       bs.Aspects,
			Type:          bs.Type,
			StationIndex:  -1,
			Invisible:     bs.Invisible,
			CurrentAspect: -1,
		}
		if x.depStation >= 0 && bs.TrackPosition >= x.depTP {
			sec.StationIndex = x.depStation
			x.depStation = -1
		}
		m := r.AddSection(sec)
		el.AddEvent(track.Event{
			Type:            track.SectionChangeEvent,
			Delta:           bs.TrackPosition - S,
			PreviousSection: m - 1,
			NextSection:     m,
		})
	}
}
