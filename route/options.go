// route/options.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/railsim/bve5c/track"
	"github.com/railsim/bve5c/util"
)

const DefaultBlockInterval = 25.0

// ObjectLoader supplies the geometry of structures. Compile only needs
// meshes for repeaters, which are bent to follow the track; everything
// else is placed by reference to the structure table.
type ObjectLoader interface {
	LoadMesh(s track.Structure) (*track.Mesh, error)
}

type Options struct {
	// SignedCant takes the sign of curve cant from the command rather than
	// from the direction of the curve.
	SignedCant bool
	// PreviewOnly compiles stations and track geometry but skips
	// structures, signals, sounds and beacons.
	PreviewOnly bool
	// FogTransition emits a single fog event where fog is redefined
	// instead of one per block.
	FogTransition bool
	BlockInterval float64
	// CompatibilityBeacons synthesizes the transponders expected by the
	// legacy ATS/ATC safety systems.
	CompatibilityBeacons bool
	// Encoding forces the text encoding of every file; empty sniffs it
	// per file.
	Encoding string

	ObjectLoader ObjectLoader
}

func DefaultOptions() Options {
	return Options{
		FogTransition:        true,
		BlockInterval:        DefaultBlockInterval,
		CompatibilityBeacons: true,
	}
}

// CSVObjectLoader loads structures written in the CSV object format.
// Prototypes are parsed once and shared; callers must Clone them before
// modifying them.
type CSVObjectLoader struct {
	Files *util.FileCache

	mu     sync.Mutex
	meshes map[string]*track.Mesh
}

func NewCSVObjectLoader(fc *util.FileCache) *CSVObjectLoader {
	return &CSVObjectLoader{Files: fc, meshes: make(map[string]*track.Mesh)}
}

func (l *CSVObjectLoader) LoadMesh(s track.Structure) (*track.Mesh, error) {
	if s.Path == "" {
		return nil, fmt.Errorf("%s: structure has no file", s.Key)
	}
	if ext := strings.ToLower(filepath.Ext(s.Path)); ext != ".csv" {
		return nil, fmt.Errorf("%s: %q objects are not supported", s.Path, ext)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if m, ok := l.meshes[s.Path]; ok {
		return m, nil
	}
	lines, err := l.Files.ReadLines(s.Path)
	if err != nil {
		return nil, err
	}
	m, err := track.ParseCSVMesh(lines)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	l.meshes[s.Path] = m
	return m, nil
}
