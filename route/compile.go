// route/compile.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package route compiles BVE5 scenarios and route maps into the track
// model of package track.
package route

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/railsim/bve5c/lists"
	"github.com/railsim/bve5c/log"
	"github.com/railsim/bve5c/script"
	"github.com/railsim/bve5c/track"
	"github.com/railsim/bve5c/util"
)

// ErrCanceled is returned when the context passed to Compile is done
// before compilation finishes.
var ErrCanceled = fmt.Errorf("Route compilation canceled: %w", context.Canceled)

const (
	checkCancelEveryStatement = 256
	fileCacheSize             = 256
)

// Compile compiles the scenario at path. Recoverable problems with the
// route's files are reported to e; a non-nil error means nothing usable
// could be produced.
func Compile(ctx context.Context, path string, opts Options, e *util.ErrorLogger, lg *log.Logger) (*track.Route, error) {
	files := util.NewFileCache(fileCacheSize, opts.Encoding)
	sc, err := LoadScenario(path, files)
	if err != nil {
		return nil, err
	}
	lg = lg.With("run", uuid.NewString())
	lg.Infof("%s: compiling route map %s", path, sc.RouteMap)

	r, err := CompileRouteMap(ctx, sc.RouteMap, opts, files, e, lg)
	if err != nil {
		return nil, err
	}
	r.Comment, r.Image = sc.Comment, sc.Image
	return r, nil
}

// CompileRouteMap compiles the route map at path. files may be nil.
func CompileRouteMap(ctx context.Context, path string, opts Options, files *util.FileCache, e *util.ErrorLogger,
	lg *log.Logger) (*track.Route, error) {
	if files == nil {
		files = util.NewFileCache(fileCacheSize, opts.Encoding)
	}
	canceled := func(err error) error {
		lg.Warnf("%s: %v", path, err)
		return fmt.Errorf("%w (%w)", ErrCanceled, err)
	}

	exprs, err := script.Load(path, files, e)
	if err != nil {
		return nil, err
	}

	stmts := make([]script.Statement, 0, len(exprs))
	for i, expr := range exprs {
		if i%checkCancelEveryStatement == 0 {
			if err := ctx.Err(); err != nil {
				return nil, canceled(err)
			}
		}
		stmts = append(stmts, script.Parse(expr, e))
	}
	lg.Debugf("%s: %d expressions", path, len(stmts))

	p := newParser(opts, files, e, lg)
	p.mapPath = path
	if err := p.loadLists(stmts); err != nil {
		return nil, err
	}

	for i, s := range stmts {
		if i%checkCancelEveryStatement == 0 {
			if err := ctx.Err(); err != nil {
				return nil, canceled(err)
			}
		}
		p.execute(s)
	}
	p.blocks = slices.Clip(p.blocks)

	interpolateHeights(p.blocks)
	interpolateTransitions(p.blocks)
	if err := p.apply(ctx); err != nil {
		return nil, canceled(err)
	}

	r := p.route
	if !opts.PreviewOnly && opts.CompatibilityBeacons {
		insertBeacons(r)
	}
	computeCantTangents(r.Elements)
	if r.Subdivided, err = subdivide(ctx, r.Elements, p.interval); err != nil {
		return nil, canceled(err)
	}

	lg.Info("compiled route map", "path", path, "blocks", len(p.blocks), "elements", len(r.Elements),
		"stations", len(r.Stations), "sections", len(r.Sections), "placements", len(r.Placements),
		"warnings", len(e.Warnings()), "errors", len(e.Errors()))
	return r, nil
}

// loadLists loads the structure, station and signal lists named by the
// route map before any other command runs, so that commands can refer to
// their entries regardless of where the lists are loaded. Signal lists
// refer to structures and are loaded last.
func (p *parser) loadLists(stmts []script.Statement) error {
	var signalLoads []script.Statement
	tp := 0.0
	for _, s := range stmts {
		if s.Kind == script.KindTrackPosition {
			tp = s.TrackPosition
			continue
		}
		if s.Kind != script.KindCommand {
			continue
		}

		switch s.Name {
		case "structure.load":
			path, ok := p.listPath(s)
			if !ok {
				continue
			}
			structs, err := lists.LoadStructureList(path, p.files, p.e)
			if err := p.listError(s, err); err != nil {
				return err
			}
			p.structures = append(p.structures, structs...)
			p.lg.Debugf("%s: %d structures", path, len(structs))

		case "station.load":
			path, ok := p.listPath(s)
			if !ok {
				continue
			}
			stations, err := lists.LoadStationList(path, p.files, lists.StationListOptions{
				FirstIndex:    len(p.route.Stations),
				TrackPosition: tp,
				Preview:       p.opts.PreviewOnly,
			}, p.e)
			if err := p.listError(s, err); err != nil {
				return err
			}
			p.route.Stations = append(p.route.Stations, stations...)
			p.lg.Debugf("%s: %d stations", path, len(stations))

		case "signal.load":
			if !p.opts.PreviewOnly {
				signalLoads = append(signalLoads, s)
			}
		}
	}

	for _, s := range signalLoads {
		path, ok := p.listPath(s)
		if !ok {
			continue
		}
		types, err := lists.LoadSignalAspects(path, p.files, p.structures, p.e)
		if err := p.listError(s, err); err != nil {
			return err
		}
		p.signalTypes = append(p.signalTypes, types...)
		p.lg.Debugf("%s: %d signal types", path, len(types))
	}

	p.route.Structures = p.structures
	p.route.SignalTypes = p.signalTypes
	return nil
}

func (p *parser) listPath(s script.Statement) (string, bool) {
	if s.Arg(0) == "" {
		p.e.Errorf(s.Pos, "%s: missing file name", s.Name)
		return "", false
	}
	path, ok := util.ResolvePath(s.Pos.File, s.Arg(0))
	if !ok {
		p.e.Errorf(s.Pos, "%s: %s: file not found", s.Name, s.Arg(0))
	}
	return path, ok
}

// listError returns err if the list is unusable; other failures are
// reported and the list is skipped.
func (p *parser) listError(s script.Statement, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, util.ErrMissingHeader) || errors.Is(err, util.ErrUnsupportedVersion) {
		return err
	}
	p.e.Errorf(s.Pos, "%s: %v", s.Name, err)
	return nil
}
