// track/mesh.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package track

import (
	"fmt"
	gomath "math"
	"strconv"
	"strings"

	"github.com/brunoga/deep"
	"github.com/railsim/bve5c/math"
)

// Mesh is the geometry of an object: vertices in object space (X right,
// Y up, Z forward) and faces given as vertex index lists.
type Mesh struct {
	Vertices [][3]float64
	Faces    [][]int
}

func (m *Mesh) Clone() *Mesh {
	return deep.MustCopy(m)
}

func (m *Mesh) Translate(d [3]float64) {
	for i := range m.Vertices {
		m.Vertices[i] = math.Add3d(m.Vertices[i], d)
	}
}

// RotateY rotates the mesh by a radians about the vertical axis; positive
// angles turn +Z towards +X.
func (m *Mesh) RotateY(a float64) {
	c, s := gomath.Cos(a), gomath.Sin(a)
	for i, v := range m.Vertices {
		m.Vertices[i] = math.RotateAxis(v, math.Up3d, c, s)
	}
}

// Bend wraps the mesh around a horizontal arc of signed radius r, so that
// a vertex z metres ahead ends up z metres along the curve. r == 0 leaves
// the mesh straight.
func (m *Mesh) Bend(r float64) {
	if r == 0 {
		return
	}
	for i, v := range m.Vertices {
		theta := v[2] / r
		d := r - v[0]
		m.Vertices[i] = [3]float64{r - d*gomath.Cos(theta), v[1], d * gomath.Sin(theta)}
	}
}

// Join appends the geometry of o to m.
func (m *Mesh) Join(o *Mesh) {
	base := len(m.Vertices)
	m.Vertices = append(m.Vertices, o.Vertices...)
	for _, f := range o.Faces {
		nf := make([]int, len(f))
		for i, idx := range f {
			nf[i] = idx + base
		}
		m.Faces = append(m.Faces, nf)
	}
}

// Bounds returns the axis-aligned bounding box of the mesh.
func (m *Mesh) Bounds() (lo, hi [3]float64) {
	if len(m.Vertices) == 0 {
		return
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for j := range 3 {
			lo[j] = min(lo[j], v[j])
			hi[j] = max(hi[j], v[j])
		}
	}
	return
}

// ParseCSVMesh reads the vertex and face commands of a CSV object file.
// Each CreateMeshBuilder starts a new group whose face indices are
// relative to the group; everything else in the file is ignored.
func ParseCSVMesh(lines []string) (*Mesh, error) {
	m := &Mesh{}
	base := 0
	for i, line := range lines {
		if c := strings.IndexByte(line, ';'); c != -1 {
			line = line[:c]
		}
		fields := strings.Split(line, ",")
		cmd := strings.ToLower(strings.TrimSpace(fields[0]))
		args := fields[1:]

		switch cmd {
		case "createmeshbuilder":
			base = len(m.Vertices)
		case "addvertex":
			var v [3]float64
			for j := 0; j < 3 && j < len(args); j++ {
				if s := strings.TrimSpace(args[j]); s != "" {
					f, err := strconv.ParseFloat(s, 64)
					if err != nil {
						return nil, fmt.Errorf("line %d: %w", i+1, err)
					}
					v[j] = f
				}
			}
			m.Vertices = append(m.Vertices, v)
		case "addface", "addface2":
			var face []int
			for _, a := range args {
				s := strings.TrimSpace(a)
				if s == "" {
					continue
				}
				idx, err := strconv.Atoi(s)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", i+1, err)
				}
				if base+idx >= len(m.Vertices) || idx < 0 {
					return nil, fmt.Errorf("line %d: vertex %d out of range", i+1, idx)
				}
				face = append(face, base+idx)
			}
			if len(face) >= 3 {
				m.Faces = append(m.Faces, face)
			}
		}
	}
	return m, nil
}
