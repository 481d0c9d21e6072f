// route/scenario_test.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/railsim/bve5c/util"
)

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "maps", "map.txt"), "BveTs Map 2.00\n")
	path := filepath.Join(dir, "scenario.txt")
	writeFile(t, path, "BveTs Scenario 2.00\nTitle = Test\nROUTE = maps\\map.txt\ncomment = A = B\nImage = 'pic.png'\n")

	sc, err := LoadScenario(path, util.NewFileCache(8, ""))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if sc.RouteMap != filepath.Join(dir, "maps", "map.txt") {
		t.Errorf("got route map %q", sc.RouteMap)
	}
	if sc.Comment != "A = B" {
		t.Errorf("got comment %q, expected %q", sc.Comment, "A = B")
	}
	if sc.Image != filepath.Join(dir, "pic.png") {
		t.Errorf("got image %q", sc.Image)
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	for _, test := range []struct {
		contents string
		expected error
	}{
		{"BveTs Scenario 2.00\nComment = nothing\n", ErrNoRouteMap},
		{"BveTs Scenario 2.00\nRoute = \n", ErrNoRouteMap},
		{"BveTs Scenario 2.00\nRoute = missing.txt\n", ErrRouteMapNotFound},
	} {
		path := filepath.Join(t.TempDir(), "scenario.txt")
		writeFile(t, path, test.contents)
		if _, err := LoadScenario(path, nil); !errors.Is(err, test.expected) {
			t.Errorf("%q: got %v, expected %v", test.contents, err, test.expected)
		}
	}
}

func TestCompile(t *testing.T) {
	path := writeRoute(t, "0;\nstructure['o'].put0('', 1);\n50;\n")
	dir := filepath.Dir(path)
	scenario := filepath.Join(dir, "scenario.txt")
	writeFile(t, scenario, "BveTs Scenario 2.00\nRoute = map.txt\nComment = Short line\n")

	var e util.ErrorLogger
	r, err := Compile(context.Background(), scenario, DefaultOptions(), &e, nil)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if r.Comment != "Short line" || r.Image != "" {
		t.Errorf("got comment %q image %q", r.Comment, r.Image)
	}
	if len(r.Elements) != 3 || len(r.Placements) != 1 {
		t.Errorf("got %d elements and %d placements, expected 3 and 1", len(r.Elements), len(r.Placements))
	}
}

func TestCompileCanceled(t *testing.T) {
	path := writeRoute(t, "0;\n100;\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var e util.ErrorLogger
	_, err := CompileRouteMap(ctx, path, DefaultOptions(), nil, &e, nil)
	if !errors.Is(err, ErrCanceled) || !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, expected ErrCanceled", err)
	}
}

func TestCompileFatalErrors(t *testing.T) {
	for _, test := range []struct {
		name     string
		file     string
		contents string
		expected error
	}{
		{"map version", "map.txt", "BveTs Map 9.00\n0;\n", util.ErrUnsupportedVersion},
		{"structure list version", "structures.txt", "BveTs Structure List 9.00\n", util.ErrUnsupportedVersion},
		{"station list header", "stations.txt", "key, name\n", util.ErrMissingHeader},
	} {
		path := writeRoute(t, "0;\n25;\n")
		writeFile(t, filepath.Join(filepath.Dir(path), test.file), test.contents)

		var e util.ErrorLogger
		if _, err := CompileRouteMap(context.Background(), path, DefaultOptions(), nil, &e, nil); !errors.Is(err, test.expected) {
			t.Errorf("%s: got %v, expected %v", test.name, err, test.expected)
		}
	}
}

func TestCompileRecoverableListErrors(t *testing.T) {
	path := writeRoute(t, "0;\nstation.load('nothere.txt');\n25;\n")
	var e util.ErrorLogger
	r, err := CompileRouteMap(context.Background(), path, DefaultOptions(), nil, &e, nil)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if n := len(e.Errors()); n != 1 {
		t.Errorf("got %d errors, expected 1 for the missing list: %s", n, e.String())
	}
	if len(r.Stations) != 2 {
		t.Errorf("got %d stations, expected the 2 from the list that exists", len(r.Stations))
	}
}
