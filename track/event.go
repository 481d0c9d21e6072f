// track/event.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package track

import (
	"fmt"
	"log/slog"
)

type EventType int

const (
	BackgroundEvent EventType = iota
	BrightnessEvent
	FogEvent
	RailSoundsEvent
	PointSoundEvent
	StationStartEvent
	StationEndEvent
	StationPassAlarmEvent
	LimitChangeEvent
	SectionChangeEvent
	TransponderEvent
	TrackEndEvent
	NumEventTypes
)

func (t EventType) String() string {
	return []string{"Background", "Brightness", "Fog", "RailSounds", "PointSound",
		"StationStart", "StationEnd", "StationPassAlarm", "LimitChange", "SectionChange",
		"Transponder", "TrackEnd"}[t]
}

// TransponderType identifies the beacons understood by the legacy
// safety systems. The values are those of the legacy plugin interface.
type TransponderType int

const (
	AtcTrackStatus TransponderType = -16777215
	AtcSpeedLimit  TransponderType = -16777214
)

func (t TransponderType) String() string {
	switch t {
	case AtcTrackStatus:
		return "AtcTrackStatus"
	case AtcSpeedLimit:
		return "AtcSpeedLimit"
	default:
		return fmt.Sprintf("Transponder%d", int(t))
	}
}

// Event is something that happens when a train passes a point on the
// track. Delta is the offset of that point from the starting track
// position of the element that holds the event. Which of the remaining
// fields are meaningful depends on Type.
type Event struct {
	Type  EventType
	Delta float64

	// Index is the background for BackgroundEvent and the station for
	// the station events.
	Index int
	// PreviousIndex is the background in use before a BackgroundEvent.
	PreviousIndex int

	// BrightnessEvent
	Brightness         float64
	PreviousBrightness float64
	PreviousDistance   float64
	NextBrightness     float64
	NextDistance       float64

	// FogEvent
	PreviousFog Fog
	CurrentFog  Fog
	NextFog     Fog

	// RailSoundsEvent
	PreviousRunSound    int
	PreviousFlangeSound int
	RunSound            int
	FlangeSound         int

	// PointSoundEvent; SoundSpeed is the reference speed at which the sound
	// plays at its natural pitch.
	SoundPosition [3]float64
	SoundSpeed    float64

	// LimitChangeEvent; speeds are in m/s, +Inf for no limit.
	PreviousSpeedLimit float64
	NextSpeedLimit     float64

	// SectionChangeEvent
	PreviousSection int
	NextSection     int

	// TransponderEvent
	Transponder     TransponderType
	TransponderData int
	Section         int
}

func (e *Event) String() string {
	switch e.Type {
	case BackgroundEvent:
		return fmt.Sprintf("%s@%.2f: %d -> %d", e.Type, e.Delta, e.PreviousIndex, e.Index)
	case BrightnessEvent:
		return fmt.Sprintf("%s@%.2f: %.3f (previous %.3f over %.1fm, next %.3f over %.1fm)", e.Type, e.Delta,
			e.Brightness, e.PreviousBrightness, e.PreviousDistance, e.NextBrightness, e.NextDistance)
	case FogEvent:
		return fmt.Sprintf("%s@%.2f: %v -> %v -> %v", e.Type, e.Delta, e.PreviousFog, e.CurrentFog, e.NextFog)
	case RailSoundsEvent:
		return fmt.Sprintf("%s@%.2f: run %d -> %d flange %d -> %d", e.Type, e.Delta,
			e.PreviousRunSound, e.RunSound, e.PreviousFlangeSound, e.FlangeSound)
	case StationStartEvent, StationEndEvent:
		return fmt.Sprintf("%s@%.2f: station %d", e.Type, e.Delta, e.Index)
	case LimitChangeEvent:
		return fmt.Sprintf("%s@%.2f: %.2f -> %.2f m/s", e.Type, e.Delta, e.PreviousSpeedLimit, e.NextSpeedLimit)
	case SectionChangeEvent:
		return fmt.Sprintf("%s@%.2f: section %d -> %d", e.Type, e.Delta, e.PreviousSection, e.NextSection)
	case TransponderEvent:
		return fmt.Sprintf("%s@%.2f: %s data %d section %d", e.Type, e.Delta, e.Transponder, e.TransponderData,
			e.Section)
	default:
		return fmt.Sprintf("%s@%.2f", e.Type, e.Delta)
	}
}

func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("type", e.Type.String()), slog.Float64("delta", e.Delta)}
	switch e.Type {
	case BackgroundEvent, StationStartEvent, StationEndEvent:
		attrs = append(attrs, slog.Int("index", e.Index))
	case BrightnessEvent:
		attrs = append(attrs, slog.Float64("brightness", e.Brightness),
			slog.Float64("next_brightness", e.NextBrightness))
	case FogEvent:
		attrs = append(attrs, slog.Float64("fog_start", e.CurrentFog.Start),
			slog.Float64("fog_end", e.CurrentFog.End))
	case RailSoundsEvent:
		attrs = append(attrs, slog.Int("run", e.RunSound), slog.Int("flange", e.FlangeSound))
	case LimitChangeEvent:
		attrs = append(attrs, slog.Float64("previous", e.PreviousSpeedLimit),
			slog.Float64("next", e.NextSpeedLimit))
	case SectionChangeEvent:
		attrs = append(attrs, slog.Int("previous", e.PreviousSection), slog.Int("next", e.NextSection))
	case TransponderEvent:
		attrs = append(attrs, slog.String("transponder", e.Transponder.String()),
			slog.Int("data", e.TransponderData))
	}
	return slog.GroupValue(attrs...)
}

// MakeTransponder returns a transponder event at the start of an element.
func MakeTransponder(typ TransponderType, data int) Event {
	return Event{Type: TransponderEvent, Transponder: typ, TransponderData: data}
}
