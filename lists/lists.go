// lists/lists.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package lists loads the structure, station and signal aspect lists
// that a route map refers to.
package lists

import (
	"fmt"
	"strings"

	"github.com/railsim/bve5c/track"
	"github.com/railsim/bve5c/util"
)

const (
	StructureListHeader = "BveTs Structure List"
	StationListHeader   = "BveTs Station List"
	SignalListHeader    = "BveTs Signal Aspects List"

	MaxStructureListVersion = 1.0
	MaxStationListVersion   = 2.0
	MaxSignalListVersion    = 2.0
)

// Source provides the decoded lines of a text file.
type Source interface {
	ReadLines(path string) ([]string, error)
}

// readList reads the file at path and validates its header, returning
// the lines that follow it.
func readList(path string, src Source, header string, maxVersion float64) ([]string, error) {
	lines, err := src.ReadLines(path)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%s: expected %q: %w", path, header, util.ErrMissingHeader)
	}
	version, hasPrefix, ok := util.ParseVersion(lines[0], header)
	if !hasPrefix {
		return nil, fmt.Errorf("%s: expected %q: %w", path, header, util.ErrMissingHeader)
	} else if !ok {
		return nil, fmt.Errorf("%s: %q has no version: %w", path, header, util.ErrMissingHeader)
	} else if version > maxVersion {
		return nil, fmt.Errorf("%s: %s %.2f: %w", path, header, version, util.ErrUnsupportedVersion)
	}
	return lines[1:], nil
}

// rows calls fn for each non-empty line after the header with the
// line's position in the file.
func rows(path string, lines []string, fn func(pos util.Pos, line string) error) error {
	for i, line := range lines {
		line = strings.TrimSpace(util.StripComment(line))
		if line == "" {
			continue
		}
		if err := fn(util.Pos{File: path, Line: i + 2, Column: 1}, line); err != nil {
			return err
		}
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////
// Structures

// LoadStructureList reads a structure list. Each row associates a key
// with an object file relative to the list; files that don't exist are
// reported and given an empty path so that the placements referring to
// them still resolve.
func LoadStructureList(path string, src Source, e *util.ErrorLogger) ([]track.Structure, error) {
	lines, err := readList(path, src, StructureListHeader, MaxStructureListVersion)
	if err != nil {
		return nil, err
	}

	var structs []track.Structure
	err = rows(path, lines, func(pos util.Pos, line string) error {
		key, file, ok := strings.Cut(line, ",")
		if !ok {
			e.Errorf(pos, "%q: expected key and file name separated by a comma", line)
			return nil
		}
		s := track.Structure{Key: strings.TrimSpace(key)}
		if file = strings.TrimSpace(file); file != "" {
			if p, found := util.ResolvePath(path, file); found {
				s.Path = p
			} else {
				e.Warnf(pos, "%s: structure file for %q not found", file, s.Key)
			}
		}
		structs = append(structs, s)
		return nil
	})
	return structs, err
}

// FindStructure returns the index of the structure with the given key,
// compared case-insensitively, or -1.
func FindStructure(structs []track.Structure, key string) int {
	key = strings.TrimSpace(key)
	for i, s := range structs {
		if strings.EqualFold(s.Key, key) {
			return i
		}
	}
	return -1
}

///////////////////////////////////////////////////////////////////////////
// Stations

type StationListOptions struct {
	// FirstIndex is the number of stations already loaded; it is used to
	// name stations without one.
	FirstIndex int
	// TrackPosition is the track position at which the list was loaded.
	TrackPosition float64
	// Preview skips the fields that only matter when driving the route.
	Preview bool
}

// LoadStationList reads a station list. Rows are
//
//	key, name, arrival, departure, halt, jump, forced red signal, alight, passenger ratio[, safety system]
//
// where only the key is required. Malformed fields are reported and
// replaced by their defaults; an empty key is fatal.
func LoadStationList(path string, src Source, opts StationListOptions, e *util.ErrorLogger) ([]track.Station, error) {
	lines, err := readList(path, src, StationListHeader, MaxStationListVersion)
	if err != nil {
		return nil, err
	}

	var stations []track.Station
	err = rows(path, lines, func(pos util.Pos, line string) error {
		args := strings.Split(line, ",")
		for i := range args {
			args[i] = strings.TrimSpace(args[i])
		}
		arg := func(i int) string {
			if i < len(args) {
				return args[i]
			}
			return ""
		}

		if args[0] == "" {
			return fmt.Errorf("%s: empty station key", pos)
		}
		st := track.Station{
			Key:           strings.ToLower(args[0]),
			Name:          arg(1),
			ArrivalTime:   -1,
			DepartureTime: -1,
			JumpTime:      -1,
			StopTime:      15,
			StopMode:      track.AllStop,
			Type:          track.NormalStation,
			SafetySystem:  track.SafetyATS,

			DefaultTrackPosition: opts.TrackPosition,
		}

		if a := arg(2); strings.EqualFold(a, "p") {
			st.StopMode = track.AllPass
		} else if a != "" {
			if t, ok := util.ParseTime(a); ok {
				st.ArrivalTime = t
			} else {
				e.Errorf(pos, "%s: arrival time %q is invalid", st.Key, a)
			}
		}
		if a := arg(3); strings.EqualFold(a, "t") || a == "=" {
			st.Type = track.TerminalStation
		} else if a != "" {
			if t, ok := util.ParseTime(a); ok {
				st.DepartureTime = t
			} else {
				e.Errorf(pos, "%s: departure time %q is invalid", st.Key, a)
			}
		}
		if a := arg(4); a != "" {
			if v, ok := util.ParseFloat(a); !ok {
				e.Errorf(pos, "%s: stop duration %q is invalid", st.Key, a)
			} else {
				st.StopTime = max(v, 5)
			}
		}
		if a := arg(5); a != "" {
			if t, ok := util.ParseTime(a); ok {
				st.JumpTime = t
			} else {
				e.Errorf(pos, "%s: jump time %q is invalid", st.Key, a)
			}
		}
		if a := arg(6); a != "" {
			if v, ok := util.ParseInt(a); !ok {
				e.Errorf(pos, "%s: forced red signal %q is invalid", st.Key, a)
			} else {
				st.ForceStopSignal = v == 1
			}
		}
		if a := arg(7); a != "" {
			if v, ok := util.ParseFloat(a); !ok {
				e.Errorf(pos, "%s: alight time %q is invalid", st.Key, a)
			} else {
				st.AlightTime = v
			}
		}
		jam := 100.0
		if a := arg(8); a != "" && !opts.Preview {
			if v, ok := util.ParseFloat(a); !ok {
				e.Errorf(pos, "%s: passenger ratio %q is invalid", st.Key, a)
			} else if v < 0 {
				e.Errorf(pos, "%s: passenger ratio %q must not be negative", st.Key, a)
			} else {
				jam = v
			}
		}
		st.PassengerRatio = 0.01 * jam
		switch a := strings.ToLower(arg(9)); a {
		case "", "ats":
		case "atc":
			st.SafetySystem = track.SafetyATC
		default:
			e.Warnf(pos, "%s: unknown safety system %q", st.Key, a)
		}

		if st.Name == "" && st.StopMode == track.AllStop {
			st.Name = fmt.Sprintf("Station %d", opts.FirstIndex+len(stations)+1)
		}
		stations = append(stations, st)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stations, nil
}

///////////////////////////////////////////////////////////////////////////
// Signals

// LoadSignalAspects reads a signal aspect list. Each row names a signal
// type and then gives the structure displayed for each aspect; the
// aspect number is the column the structure appears in.
func LoadSignalAspects(path string, src Source, structs []track.Structure, e *util.ErrorLogger) ([]track.SignalType, error) {
	lines, err := readList(path, src, SignalListHeader, MaxSignalListVersion)
	if err != nil {
		return nil, err
	}

	var types []track.SignalType
	err = rows(path, lines, func(pos util.Pos, line string) error {
		args := strings.Split(line, ",")
		st := track.SignalType{Key: strings.TrimSpace(args[0])}
		if st.Key == "" {
			// Rows without a key give the glow objects of the previous
			// signal, which aren't supported.
			e.Warnf(pos, "signal glow objects are not supported")
			return nil
		}
		for j := 1; j < len(args); j++ {
			key := strings.TrimSpace(args[j])
			if key == "" {
				continue
			}
			idx := FindStructure(structs, key)
			if idx == -1 {
				e.Warnf(pos, "%s: structure %q for aspect %d not found", st.Key, key, j)
			}
			st.Numbers = append(st.Numbers, j)
			st.Structures = append(st.Structures, idx)
		}
		types = append(types, st)
		return nil
	})
	return types, err
}

// FindSignalType returns the index of the signal type with the given key
// or -1.
func FindSignalType(types []track.SignalType, key string) int {
	for i, t := range types {
		if strings.EqualFold(t.Key, key) {
			return i
		}
	}
	return -1
}
