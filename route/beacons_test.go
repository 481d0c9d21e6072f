// route/beacons_test.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

import (
	gomath "math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/railsim/bve5c/track"
)

func TestPackSpeedLimit(t *testing.T) {
	inf := gomath.Inf(1)
	for _, test := range []struct {
		speed, tp float64
		expected  int
	}{
		{25, 10, 90 | 10<<12},
		{inf, 60, 4095 | 60<<12},
		{0, -5, 0},
		{10, 99.6, 36 | 100<<12},
		// The distance fills the top bit, which is the sign of the word.
		{inf, 2e6, -1},
	} {
		if d := PackSpeedLimit(test.speed, test.tp); d != test.expected {
			t.Errorf("(%g, %g): got %d, expected %d", test.speed, test.tp, d, test.expected)
		}
	}
}

func TestInsertBeacons(t *testing.T) {
	r := track.NewRoute(25)
	r.Stations = []track.Station{
		{Key: "a", SafetySystem: track.SafetyATS},
		{Key: "b", SafetySystem: track.SafetyATC},
		{Key: "c", SafetySystem: track.SafetyATS},
	}
	r.Elements = make([]track.Element, 4)
	for i := range r.Elements {
		r.Elements[i].StartingTrackPosition = 25 * float64(i)
	}
	add := func(i int, e track.Event) { r.Elements[i].AddEvent(e) }
	add(0, track.Event{Type: track.StationStartEvent, Index: 0})
	add(0, track.Event{Type: track.StationEndEvent, Index: 0, Delta: 10})
	add(1, track.Event{Type: track.StationStartEvent, Index: 1})
	add(1, track.Event{Type: track.LimitChangeEvent, Delta: 5, NextSpeedLimit: 25})
	add(2, track.Event{Type: track.StationEndEvent, Index: 1, Delta: 3})
	add(2, track.Event{Type: track.StationStartEvent, Index: 2, Delta: 7})
	add(3, track.Event{Type: track.StationEndEvent, Index: 2, Delta: 12})

	insertBeacons(r)

	type beacon struct {
		Element int
		Type    track.TransponderType
		Delta   float64
		Data    int
	}
	var got []beacon
	for i := range r.Elements {
		for _, e := range r.Elements[i].Events {
			if e.Type == track.TransponderEvent {
				got = append(got, beacon{i, e.Transponder, e.Delta, e.TransponderData})
			}
		}
	}
	expected := []beacon{
		{0, track.AtcSpeedLimit, 0, 90 | 30<<12},
		{1, track.AtcTrackStatus, 0, 0},
		{1, track.AtcTrackStatus, 0, 1},
		{2, track.AtcTrackStatus, 3, 1},
		{2, track.AtcTrackStatus, 3, 2},
		{2, track.AtcTrackStatus, 7, 2},
		{2, track.AtcTrackStatus, 7, 3},
		{3, track.AtcTrackStatus, 12, 3},
		{3, track.AtcTrackStatus, 12, 0},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("beacons mismatch:\n%s", diff)
	}

	empty := track.NewRoute(25)
	insertBeacons(empty)
	if len(empty.Elements) != 0 {
		t.Errorf("got %d elements, expected none", len(empty.Elements))
	}
}
