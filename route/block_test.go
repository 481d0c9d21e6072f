// route/block_test.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

import (
	gomath "math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brunoga/deep"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/railsim/bve5c/script"
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

func near(a, b float64) bool {
	return gomath.Abs(a-b) < 1e-9
}

func statements(src string) []script.Statement {
	var e util.ErrorLogger
	var stmts []script.Statement
	for _, expr := range script.Split("map.txt", strings.Split(src, "\n"), 1) {
		stmts = append(stmts, script.Parse(expr, &e))
	}
	return stmts
}

// run executes the route map commands in src with a fresh parser.
func run(opts Options, structures []track.Structure, src string) (*parser, *util.ErrorLogger) {
	e := &util.ErrorLogger{}
	p := newParser(opts, nil, e, nil)
	p.structures = structures
	for _, s := range statements(src) {
		p.execute(s)
	}
	return p, e
}

func TestBlockCarryOver(t *testing.T) {
	p, e := run(DefaultOptions(), nil, `0;
curve.begin(500, 100);
gradient.begin(10);
adhesion.change(0.26);
irregularity.change(0.001);
track['r'].position(3.5, 1);
legacy.fog(100, 500, 10, 20, 30);
125;`)
	if e.HaveErrors() {
		t.Fatalf("unexpected errors: %s", e.String())
	}
	if len(p.blocks) != 6 {
		t.Fatalf("got %d blocks, expected 6", len(p.blocks))
	}

	last := &p.blocks[5]
	if last.TrackState.CurveRadius != 500 || !near(last.TrackState.CurveCant, 0.1) {
		t.Errorf("got curve %+v, expected radius 500 and cant 0.1", last.TrackState)
	}
	if !near(last.Pitch, 0.01) || last.Adhesion != 1 {
		t.Errorf("got pitch %g adhesion %g, expected 0.01 and 1", last.Pitch, last.Adhesion)
	}
	if len(last.Rails) != 2 || last.Rails[1].Key != "r" || last.Rails[1].StartX != 3.5 || last.Rails[1].StartY != 1 {
		t.Errorf("rail not carried: %+v", last.Rails)
	}
	if diff := cmp.Diff([]int{0, 0}, last.RailTypes); diff != "" {
		t.Errorf("rail types mismatch:\n%s", diff)
	}

	interpolateHeights(p.blocks)
	for i := range p.blocks {
		if p.blocks[i].Height != 0 {
			t.Errorf("block %d: got height %g, expected 0", i, p.blocks[i].Height)
		}
	}

	for j := 2; j < len(p.blocks); j++ {
		a, b := &p.blocks[1], &p.blocks[j]
		if diff := cmp.Diff(a.Rails, b.Rails); diff != "" {
			t.Errorf("block %d: rails differ (-block 1 +block %d):\n%s", j, j, diff)
		}
		if diff := cmp.Diff(a.RailTypes, b.RailTypes); diff != "" {
			t.Errorf("block %d: rail types differ:\n%s", j, diff)
		}
		if diff := cmp.Diff(a.Cycle, b.Cycle); diff != "" {
			t.Errorf("block %d: cycle differs:\n%s", j, diff)
		}
		if a.Pitch != b.Pitch || a.Adhesion != b.Adhesion || a.Accuracy != b.Accuracy || a.Fog != b.Fog ||
			a.TrackState != b.TrackState {
			t.Errorf("block %d: state not carried: got %+v, expected %+v", j, b, a)
		}
	}
}

func TestCreateMissingBlocksIdempotent(t *testing.T) {
	p, _ := run(DefaultOptions(), nil, "0;\ntrack['r'].position(2, 0);\n60;\nrollingnoise.change(3);\n")
	p.createMissingBlocks(5)
	before := deep.MustCopy(p.blocks)

	for _, to := range []int{5, 3, 0, 5} {
		p.createMissingBlocks(to)
		if diff := cmp.Diff(before, p.blocks, cmpopts.EquateNaNs(), cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("createMissingBlocks(%d) changed the blocks:\n%s", to, diff)
		}
	}
}

func TestInterpolateHeights(t *testing.T) {
	nan := gomath.NaN()
	for _, test := range []struct {
		heights  []float64
		expected []float64
	}{
		{[]float64{nan, 2, nan, nan, 8, nan}, []float64{2, 2, 4, 6, 8, 8}},
		{[]float64{0, nan, 1}, []float64{0, 0.5, 1}},
		{[]float64{nan, nan}, []float64{0, 0}},
	} {
		blocks := make([]Block, len(test.heights))
		for i, h := range test.heights {
			blocks[i].Height = h
		}
		interpolateHeights(blocks)
		for i := range blocks {
			if !near(blocks[i].Height, test.expected[i]) {
				t.Errorf("%v: block %d: got %g, expected %g", test.heights, i, blocks[i].Height, test.expected[i])
			}
		}
	}
}

func TestInterpolateTransitions(t *testing.T) {
	p, e := run(DefaultOptions(), nil, `0;
curve.begin(0, 0);
25;
curve.begintransition();
gradient.begintransition();
125;
curve.begin(400, 100);
gradient.begin(20);
150;`)
	if e.HaveErrors() {
		t.Fatalf("unexpected errors: %s", e.String())
	}
	interpolateTransitions(p.blocks)

	for m := 1; m <= 4; m++ {
		tt := (float64(m-1) + 0.5) / 4
		b := &p.blocks[m]
		if r := b.TrackState.CurveRadius; gomath.Abs(r-400/tt) > 1e-6 {
			t.Errorf("block %d: got radius %g, expected %g", m, r, 400/tt)
		}
		if !near(b.TrackState.CurveCant, 0.1*tt) {
			t.Errorf("block %d: got cant %g, expected %g", m, b.TrackState.CurveCant, 0.1*tt)
		}
		if !near(b.Pitch, 0.02*tt) {
			t.Errorf("block %d: got pitch %g, expected %g", m, b.Pitch, 0.02*tt)
		}
	}
	if p.blocks[0].TrackState.CurveRadius != 0 || p.blocks[5].TrackState.CurveRadius != 400 {
		t.Errorf("blocks outside the transition changed: %g, %g", p.blocks[0].TrackState.CurveRadius,
			p.blocks[5].TrackState.CurveRadius)
	}
}

func TestFindRail(t *testing.T) {
	rails := []Rail{{Start: true}, {Key: "a"}, {Key: "b"}}
	for _, test := range []struct {
		key      string
		expected int
	}{
		{"", 0},
		{"a", 1},
		{"b", 2},
		{"c", -1},
	} {
		if idx := findRail(rails, test.key); idx != test.expected {
			t.Errorf("%q: got %d, expected %d", test.key, idx, test.expected)
		}
	}
}
