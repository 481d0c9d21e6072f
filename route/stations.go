// route/stations.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

import (
	"github.com/railsim/bve5c/track"
	"github.com/railsim/bve5c/util"
)

// validateStations fixes up station data that can't be right once the
// whole route is known. Stations that the train stops at but that have
// no stop are made pass-through; the station after a change-ends station
// must be stopped at; and the last station is the terminal, whether or
// not it has a stop.
func (p *parser) validateStations() {
	st := p.route.Stations
	pos := util.Pos{File: p.mapPath}
	for i := range st {
		if len(st[i].Stops) == 0 && st[i].StopMode != track.AllPass {
			p.e.Warnf(pos, "station %q has no stop point; trains will pass it", st[i].Key)
			st[i].StopMode = track.AllPass
		}
		if st[i].Type == track.ChangeEndsStation {
			if i+1 < len(st) {
				if st[i+1].StopMode != track.AllStop {
					p.e.Warnf(pos, "station %q follows a change of ends at %q and must be stopped at",
						st[i+1].Key, st[i].Key)
					st[i+1].StopMode = track.AllStop
				}
			} else {
				st[i].Type = track.TerminalStation
			}
		}
	}
	if len(st) > 0 {
		st[len(st)-1].Type = track.TerminalStation
	}
}
