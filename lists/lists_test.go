// lists/lists_test.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package lists

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/railsim/bve5c/track"
	"github.com/railsim/bve5c/util"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadStructureList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "structures.txt")
	writeFile(t, path, "BveTs Structure List 1.00\n"+
		"# rails\n"+
		"Rail, objects/rail.csv\n"+
		"pole,objects/pole.csv # trailing comment\n"+
		"missing, objects/nothere.csv\n"+
		"nocomma\n")
	writeFile(t, filepath.Join(dir, "objects", "rail.csv"), "")
	writeFile(t, filepath.Join(dir, "objects", "pole.csv"), "")

	var e util.ErrorLogger
	structs, err := LoadStructureList(path, util.NewFileCache(8, ""), &e)
	if err != nil {
		t.Fatal(err)
	}

	expected := []track.Structure{
		{Key: "Rail", Path: filepath.Join(dir, "objects", "rail.csv")},
		{Key: "pole", Path: filepath.Join(dir, "objects", "pole.csv")},
		{Key: "missing"},
	}
	if diff := cmp.Diff(expected, structs); diff != "" {
		t.Errorf("structures mismatch (-want +got):\n%s", diff)
	}
	if len(e.Warnings()) != 1 || len(e.Errors()) != 1 {
		t.Errorf("got %d warnings and %d errors, expected 1 of each: %s", len(e.Warnings()), len(e.Errors()), e.String())
	}

	for _, test := range []struct {
		key      string
		expected int
	}{
		{"rail", 0},
		{"POLE", 1},
		{" missing ", 2},
		{"signal", -1},
	} {
		if idx := FindStructure(structs, test.key); idx != test.expected {
			t.Errorf("%q: got %d, expected %d", test.key, idx, test.expected)
		}
	}
}

func TestListHeaders(t *testing.T) {
	dir := t.TempDir()
	for _, test := range []struct {
		contents string
		expected error
	}{
		{"", util.ErrMissingHeader},
		{"Structure List 1.00\n", util.ErrMissingHeader},
		{"BveTs Structure List\n", util.ErrMissingHeader},
		{"BveTs Structure List 2.00\n", util.ErrUnsupportedVersion},
		{"bvets structure list 1.00:utf-8\n", nil},
	} {
		path := filepath.Join(dir, "structures.txt")
		writeFile(t, path, test.contents)
		var e util.ErrorLogger
		_, err := LoadStructureList(path, util.NewFileCache(8, ""), &e)
		if test.expected == nil && err != nil {
			t.Errorf("%q: unexpected error %v", test.contents, err)
		} else if test.expected != nil && !errors.Is(err, test.expected) {
			t.Errorf("%q: got error %v, expected %v", test.contents, err, test.expected)
		}
	}

	var e util.ErrorLogger
	if _, err := LoadStationList(filepath.Join(dir, "nonexistent.txt"), util.NewFileCache(8, ""), StationListOptions{}, &e); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: got %v, expected os.ErrNotExist", err)
	}
}

func TestLoadStationList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stations.txt")
	writeFile(t, path, "BveTs Station List 2.00\n"+
		"Sta1, First, , 10:00:30, 30, , , , \n"+
		"sta2, , P\n"+
		"sta3, Third, 10:05, T, 2, 9:00, 1, 4.5, 150, atc\n"+
		"sta4\n")

	var e util.ErrorLogger
	stations, err := LoadStationList(path, util.NewFileCache(8, ""),
		StationListOptions{FirstIndex: 2, TrackPosition: 100}, &e)
	if err != nil {
		t.Fatal(err)
	}
	if e.HaveErrors() {
		t.Errorf("unexpected errors: %s", e.String())
	}

	base := track.Station{
		ArrivalTime:          -1,
		DepartureTime:        -1,
		JumpTime:             -1,
		StopTime:             15,
		PassengerRatio:       1,
		DefaultTrackPosition: 100,
	}
	sta1 := base
	sta1.Key, sta1.Name = "sta1", "First"
	sta1.DepartureTime = 10*3600 + 30
	sta1.StopTime = 30

	sta2 := base
	sta2.Key = "sta2"
	sta2.StopMode = track.AllPass

	sta3 := base
	sta3.Key, sta3.Name = "sta3", "Third"
	sta3.ArrivalTime = 10*3600 + 5*60
	sta3.Type = track.TerminalStation
	sta3.StopTime = 5
	sta3.JumpTime = 9 * 3600
	sta3.ForceStopSignal = true
	sta3.AlightTime = 4.5
	sta3.PassengerRatio = 1.5
	sta3.SafetySystem = track.SafetyATC

	sta4 := base
	sta4.Key, sta4.Name = "sta4", "Station 6"

	if diff := cmp.Diff([]track.Station{sta1, sta2, sta3, sta4}, stations); diff != "" {
		t.Errorf("stations mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadStationListErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stations.txt")
	writeFile(t, path, "BveTs Station List 2.00\nsta1, A, 25:xx, 10:00, fast, , , , -5, maglev\n")

	var e util.ErrorLogger
	stations, err := LoadStationList(path, util.NewFileCache(8, ""), StationListOptions{}, &e)
	if err != nil {
		t.Fatal(err)
	}
	if len(stations) != 1 {
		t.Fatalf("got %d stations, expected 1", len(stations))
	}
	st := stations[0]
	if st.ArrivalTime != -1 || st.DepartureTime != 36000 || st.StopTime != 15 || st.PassengerRatio != 1 {
		t.Errorf("malformed fields not defaulted: %+v", st)
	}
	if n := len(e.Errors()); n != 3 {
		t.Errorf("got %d errors, expected 3: %s", n, e.String())
	}
	if n := len(e.Warnings()); n != 1 {
		t.Errorf("got %d warnings, expected 1: %s", n, e.String())
	}

	writeFile(t, path, "BveTs Station List 2.00\n, nameless\n")
	if _, err := LoadStationList(path, util.NewFileCache(8, ""), StationListOptions{}, &e); err == nil {
		t.Errorf("expected an error for an empty station key")
	}
}

func TestLoadSignalAspects(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "signals.txt")
	writeFile(t, path, "BveTs Signal Aspects List 2.00\n"+
		"3lamp, sigR, sigY, sigG\n"+
		", glowR, glowY, glowG\n"+
		"repeater, sigR, , unknown\n")
	structs := []track.Structure{{Key: "sigR"}, {Key: "sigY"}, {Key: "sigG"}}

	var e util.ErrorLogger
	types, err := LoadSignalAspects(path, util.NewFileCache(8, ""), structs, &e)
	if err != nil {
		t.Fatal(err)
	}
	expected := []track.SignalType{
		{Key: "3lamp", Numbers: []int{1, 2, 3}, Structures: []int{0, 1, 2}},
		{Key: "repeater", Numbers: []int{1, 3}, Structures: []int{0, -1}},
	}
	if diff := cmp.Diff(expected, types); diff != "" {
		t.Errorf("signal types mismatch (-want +got):\n%s", diff)
	}
	if n := len(e.Warnings()); n != 2 {
		t.Errorf("got %d warnings, expected 2: %s", n, e.String())
	}
	if idx := FindSignalType(types, "REPEATER"); idx != 1 {
		t.Errorf("got signal type %d, expected 1", idx)
	}
}
