// track/track_test.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package track

import (
	"bytes"
	gomath "math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/railsim/bve5c/math"
)

func near(a, b float64) bool {
	return gomath.Abs(a-b) < 1e-9
}

func straight(n int, interval float64) []Element {
	els := make([]Element, n)
	for i := range els {
		els[i] = Element{
			StartingTrackPosition: float64(i) * interval,
			WorldPosition:         [3]float64{0, 0, float64(i) * interval},
			WorldDirection:        [3]float64{0, 0, 1},
			WorldSide:             [3]float64{1, 0, 0},
			WorldUp:               [3]float64{0, 1, 0},
		}
	}
	return els
}

func TestFollowerStraight(t *testing.T) {
	f := Follower{Elements: straight(4, 25)}
	for _, tp := range []float64{0, 10, 25, 62.5, 80, 120} {
		p := f.At(tp)
		if !near(p.Position[2], tp) || p.Position[0] != 0 || p.Position[1] != 0 {
			t.Errorf("%g: got position %v, expected (0, 0, %g)", tp, p.Position, tp)
		}
		if p.Up != [3]float64{0, 1, 0} {
			t.Errorf("%g: got up %v", tp, p.Up)
		}
	}
	if p := f.At(-10); !near(p.Position[2], -10) || p.Element != 0 {
		t.Errorf("before the start: got %v in element %d", p.Position, p.Element)
	}
	if p := f.At(60); p.Element != 2 {
		t.Errorf("got element %d, expected 2", p.Element)
	}
}

func TestFollowerCurve(t *testing.T) {
	for _, r := range []float64{300, -800} {
		els := straight(1, 25)
		els[0].CurveRadius = r
		f := Follower{Elements: els}
		center := [3]float64{r, 0, 0}
		for _, tp := range []float64{5, 12.5, 24} {
			p := f.At(tp)
			if d := math.Length3d(math.Sub3d(p.Position, center)); gomath.Abs(d-gomath.Abs(r)) > 1e-6 {
				t.Errorf("r=%g tp=%g: distance from center %g, expected %g", r, tp, d, gomath.Abs(r))
			}
			radial := math.Sub3d(p.Position, center)
			if dot := math.Dot3d(radial, p.Direction); gomath.Abs(dot) > 1e-6 {
				t.Errorf("r=%g tp=%g: direction not tangent to the arc (dot %g)", r, tp, dot)
			}
		}
	}
}

func TestFollowerCant(t *testing.T) {
	els := straight(2, 25)
	els[0].CurveCant, els[1].CurveCant = 0, 0.1
	f := Follower{Elements: els}
	if c := f.At(0).Cant; c != 0 {
		t.Errorf("start: got cant %g, expected 0", c)
	}
	if c := f.At(12.5).Cant; !near(c, 0.05) {
		t.Errorf("middle: got cant %g, expected 0.05", c)
	}
	if c := f.At(40).Cant; c != 0.1 {
		t.Errorf("end: got cant %g, expected 0.1", c)
	}
}

func TestMeshBend(t *testing.T) {
	m := &Mesh{Vertices: [][3]float64{{0, 0, 0}, {1.5, 2, 0}, {0, 0, 10}}}
	m.Bend(200)

	if m.Vertices[0] != [3]float64{0, 0, 0} {
		t.Errorf("origin moved to %v", m.Vertices[0])
	}
	if v := m.Vertices[1]; !near(v[0], 1.5) || v[1] != 2 || !near(v[2], 0) {
		t.Errorf("lateral vertex moved to %v", v)
	}
	// The vertex 10m ahead lies on the arc, turned towards +X.
	v := m.Vertices[2]
	if d := math.Length3d(math.Sub3d(v, [3]float64{200, 0, 0})); !near(d, 200) {
		t.Errorf("bent vertex %v is %g from the center", v, d)
	}
	if v[0] <= 0 {
		t.Errorf("bent vertex %v should turn right", v)
	}

	straight := &Mesh{Vertices: [][3]float64{{1, 2, 3}}}
	straight.Bend(0)
	if straight.Vertices[0] != [3]float64{1, 2, 3} {
		t.Errorf("zero radius bent the mesh: %v", straight.Vertices[0])
	}
}

func TestMeshCloneJoin(t *testing.T) {
	a := &Mesh{Vertices: [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, Faces: [][]int{{0, 1, 2}}}
	b := a.Clone()
	b.Translate([3]float64{0, 0, 5})
	if a.Vertices[0] != [3]float64{0, 0, 0} {
		t.Errorf("Clone shares vertices with the original")
	}

	a.Join(b)
	if len(a.Vertices) != 6 {
		t.Errorf("got %d vertices, expected 6", len(a.Vertices))
	}
	if diff := cmp.Diff([][]int{{0, 1, 2}, {3, 4, 5}}, a.Faces); diff != "" {
		t.Errorf("faces mismatch (-want +got):\n%s", diff)
	}
	lo, hi := a.Bounds()
	if lo != [3]float64{0, 0, 0} || hi != [3]float64{1, 1, 5} {
		t.Errorf("got bounds %v %v", lo, hi)
	}
}

func TestMeshRotateY(t *testing.T) {
	m := &Mesh{Vertices: [][3]float64{{0, 0, 1}}}
	m.RotateY(gomath.Pi / 2)
	if v := m.Vertices[0]; !near(v[0], 1) || !near(v[2], 0) {
		t.Errorf("got %v, expected +Z turned to +X", v)
	}
}

func TestParseCSVMesh(t *testing.T) {
	lines := []string{
		"; a comment",
		"CreateMeshBuilder",
		"AddVertex, 0, 0, 0",
		"AddVertex, 1, 0, 0",
		"AddVertex, 0, 1, 0",
		"AddFace, 0, 1, 2",
		"CreateMeshBuilder",
		"AddVertex, 0, 0, 2",
		"AddVertex, 1, 0, 2",
		"AddVertex, 0, 1, 2",
		"AddFace, 0, 1, 2 ; trailing",
		"SetColor, 255, 0, 0",
	}
	m, err := ParseCSVMesh(lines)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([][]int{{0, 1, 2}, {3, 4, 5}}, m.Faces); diff != "" {
		t.Errorf("faces mismatch (-want +got):\n%s", diff)
	}

	if _, err := ParseCSVMesh([]string{"AddVertex, 0, 0, 0", "AddFace, 0, 1, 2"}); err == nil {
		t.Errorf("expected an error for an out of range face")
	}
}

func TestEventString(t *testing.T) {
	for _, test := range []struct {
		e        Event
		expected string
	}{
		{Event{Type: LimitChangeEvent, Delta: 5, PreviousSpeedLimit: gomath.Inf(1), NextSpeedLimit: 25},
			"LimitChange@5.00: +Inf -> 25.00 m/s"},
		{Event{Type: StationStartEvent, Index: 2}, "StationStart@0.00: station 2"},
		{MakeTransponder(AtcTrackStatus, 1), "Transponder@0.00: AtcTrackStatus data 1 section 0"},
		{Event{Type: TrackEndEvent, Delta: 25}, "TrackEnd@25.00"},
	} {
		if s := test.e.String(); s != test.expected {
			t.Errorf("got %q, expected %q", s, test.expected)
		}
	}
}

func TestAddSection(t *testing.T) {
	r := NewRoute(25)
	a := r.AddSection(Section{TrackPosition: 100})
	b := r.AddSection(Section{TrackPosition: 200})
	if a != 1 || b != 2 {
		t.Fatalf("got indices %d, %d", a, b)
	}
	if r.Sections[0].Next != 1 || r.Sections[1].Previous != 0 || r.Sections[1].Next != 2 || r.Sections[2].Next != -1 {
		t.Errorf("sections not linked: %+v", r.Sections)
	}
}

func TestSaveLoadRoute(t *testing.T) {
	r := NewRoute(25)
	r.Comment = "test route"
	r.Elements = straight(3, 25)
	r.Elements[1].Events = []Event{{Type: LimitChangeEvent, PreviousSpeedLimit: gomath.Inf(1), NextSpeedLimit: 20}}
	r.Stations = []Station{{Key: "a", Name: "A", Stops: []Stop{{TrackPosition: 30, ForwardTolerance: 5}}}}
	r.Structures = []Structure{{Key: "pole", Path: "pole.csv"}}
	r.Meshes = []Mesh{{Vertices: [][3]float64{{1, 2, 3}}}}

	var buf bytes.Buffer
	if err := r.Save(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := LoadRoute(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(r, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
