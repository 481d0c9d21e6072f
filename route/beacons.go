// route/beacons.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

import (
	gomath "math"

	"github.com/railsim/bve5c/math"
	"github.com/railsim/bve5c/track"
)

const (
	maxBeaconSpeed    = 4095
	maxBeaconDistance = 1048575
)

// ATC track status values sent when entering and leaving ATC territory.
const (
	atcEnterStatus   = 0
	atcTrackStatus   = 1
	atcToATSStatus   = 2
	atsTrackStatus   = 3
	atsEndOfATCTrack = 0
)

// PackSpeedLimit encodes a speed limit (m/s, +Inf for none) and the track
// position at which it applies into the data word of an AtcSpeedLimit
// transponder: km/h in the low 12 bits and metres above them.
func PackSpeedLimit(speed, trackPosition float64) int {
	kmh := uint32(gomath.Round(min(maxBeaconSpeed, 3.6*speed)))
	dist := uint32(math.Clamp(gomath.Round(trackPosition), 0, maxBeaconDistance))
	return int(int32(kmh | dist<<12))
}

// insertBeacons adds the transponders that the legacy safety systems
// expect. Station starts and ends switch between ATS and ATC territory
// according to each station's safety system. Every speed limit change is
// announced by a transponder on the first element.
func insertBeacons(r *track.Route) {
	if len(r.Elements) == 0 {
		return
	}
	var limits []track.Event
	atc := false
	for i := range r.Elements {
		el := &r.Elements[i]
		n := len(el.Events)
		for k := range n {
			ev := el.Events[k]
			pair := func(a, b int) {
				for _, data := range []int{a, b} {
					t := track.MakeTransponder(track.AtcTrackStatus, data)
					t.Delta = ev.Delta
					el.AddEvent(t)
				}
			}

			switch ev.Type {
			case track.StationStartEvent:
				sys := r.Stations[ev.Index].SafetySystem
				if !atc && sys == track.SafetyATC {
					pair(atcEnterStatus, atcTrackStatus)
					atc = true
				} else if atc && sys == track.SafetyATS {
					pair(atcToATSStatus, atsTrackStatus)
				}
			case track.StationEndEvent:
				if !atc {
					break
				}
				if r.Stations[ev.Index].SafetySystem == track.SafetyATC {
					pair(atcTrackStatus, atcToATSStatus)
				} else {
					pair(atsTrackStatus, atsEndOfATCTrack)
					atc = false
				}
			case track.LimitChangeEvent:
				t := track.MakeTransponder(track.AtcSpeedLimit,
					PackSpeedLimit(ev.NextSpeedLimit, el.StartingTrackPosition+ev.Delta))
				limits = append(limits, t)
			}
		}
	}
	r.Elements[0].Events = append(r.Elements[0].Events, limits...)
}
