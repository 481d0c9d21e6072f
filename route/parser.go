// route/parser.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

import (
	gomath "math"
	"strings"

	"github.com/railsim/bve5c/log"
	"github.com/railsim/bve5c/script"
	"github.com/railsim/bve5c/track"
	"github.com/railsim/bve5c/util"
)

// unitOfSpeed converts km/h to m/s.
const unitOfSpeed = 0.277777777777778

// defaultSignalSpeeds are the speed limits of the standard Japanese
// aspects, indexed by aspect number.
var defaultSignalSpeeds = []float64{0, 6.94444444444444, 15.2777777777778, 20.8333333333333,
	gomath.Inf(1), gomath.Inf(1)}

// parser holds the state of a compilation: the blocks being filled in by
// the route map's commands and everything the commands refer to.
type parser struct {
	opts     Options
	mapPath  string
	interval float64
	e        *util.ErrorLogger
	lg       *log.Logger
	files    *util.FileCache

	blocks         []Block
	firstUsedBlock int
	trackPosition  float64
	blockIndex     int
	currentSection int
	lastBrightness float64
	lastSpeed      float64
	signalSpeeds   []float64

	structures  []track.Structure
	signalTypes []track.SignalType
	route       *track.Route
}

func newParser(opts Options, files *util.FileCache, e *util.ErrorLogger, lg *log.Logger) *parser {
	if opts.BlockInterval <= 0 {
		opts.BlockInterval = DefaultBlockInterval
	}
	p := &parser{
		opts:           opts,
		interval:       opts.BlockInterval,
		e:              e,
		lg:             lg,
		files:          files,
		firstUsedBlock: -1,
		lastBrightness: 1,
		lastSpeed:      gomath.Inf(1),
		signalSpeeds:   defaultSignalSpeeds,
		route:          track.NewRoute(opts.BlockInterval),
	}
	p.createMissingBlocks(0)
	return p
}

// block returns the block that commands currently apply to.
func (p *parser) block() *Block {
	return &p.blocks[p.blockIndex]
}

// setTrackPosition moves the parser to track position tp, creating the
// blocks up to it.
func (p *parser) setTrackPosition(s script.Statement) {
	if s.TrackPosition < 0 {
		p.e.Warnf(s.Pos, "negative track position %g ignored", s.TrackPosition)
		return
	}
	p.trackPosition = s.TrackPosition
	p.blockIndex = int(gomath.Floor(s.TrackPosition/p.interval + 0.001))
	if p.firstUsedBlock == -1 {
		p.firstUsedBlock = p.blockIndex
	}
	p.createMissingBlocks(p.blockIndex)
}

// execute runs a single statement.
func (p *parser) execute(s script.Statement) {
	switch s.Kind {
	case script.KindTrackPosition:
		p.setTrackPosition(s)
	case script.KindCommand:
		if strings.HasSuffix(s.Name, ".load") {
			// Lists were loaded before any command ran.
			return
		}
		cmd, ok := commands.Get(s.Name)
		if !ok {
			if p.opts.PreviewOnly {
				return
			}
			if alt := util.Suggest(s.Name, commands.Names()); alt != "" {
				p.e.Warnf(s.Pos, "%s: unknown command; did you mean %q?", s.Name, alt)
			} else {
				p.e.Warnf(s.Pos, "%s: unknown command", s.Name)
			}
			return
		}
		if cmd.Full && p.opts.PreviewOnly {
			return
		}
		if cmd.NeedsKey && !s.HasKey {
			p.e.Errorf(s.Pos, "%s: missing [key]", s.Name)
			return
		}
		cmd.Handler(p, s)
	}
}

// findOrCreateRail returns the index of the rail named key in the current block,
// creating the rail at the primary track if it doesn't exist yet.
func (p *parser) findOrCreateRail(key string, pos util.Pos) int {
	if idx := findRail(p.block().Rails, key); idx != -1 {
		return idx
	}
	p.secondaryTrack(key, 0, 0, gomath.NaN(), gomath.NaN())
	idx := findRail(p.block().Rails, key)
	if idx == -1 {
		p.e.Errorf(pos, "%s: unable to create rail", key)
	}
	return idx
}

// brightness returns the cab brightness at track position tp,
// interpolating between the nearest samples on either side.
func (p *parser) brightness(tp float64) float64 {
	tmin, tmax := gomath.Inf(1), gomath.Inf(-1)
	bmin, bmax := 1.0, 1.0
	for i := range p.blocks {
		for _, s := range p.blocks[i].Brightness {
			if s.TrackPosition <= tp {
				tmin, bmin = s.TrackPosition, s.Value
			}
			if s.TrackPosition >= tp && gomath.IsInf(tmax, -1) {
				tmax, bmax = s.TrackPosition, s.Value
			}
		}
	}

	switch {
	case gomath.IsInf(tmin, 1) && gomath.IsInf(tmax, -1):
		return 1
	case gomath.IsInf(tmin, 1):
		return (bmax-1)*tp/tmax + 1
	case gomath.IsInf(tmax, -1):
		return bmin
	case tmin == tmax:
		return 0.5 * (bmin + bmax)
	default:
		t := (tp - tmin) / (tmax - tmin)
		return (1-t)*bmin + t*bmax
	}
}
