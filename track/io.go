// track/io.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package track

import (
	"errors"
	"fmt"
	"io"

	"github.com/railsim/bve5c/util"
)

// RouteFileVersion is bumped whenever the layout of Route changes.
const RouteFileVersion = 1

var ErrRouteFileVersion = errors.New("Compiled route was written by a different version")

type routeFile struct {
	Version int
	Route   *Route
}

// Save writes r to w as zstd-compressed msgpack.
func (r *Route) Save(w io.Writer) error {
	return util.EncodeCompressed(w, routeFile{Version: RouteFileVersion, Route: r})
}

// LoadRoute reads a route written by Save.
func LoadRoute(rd io.Reader) (*Route, error) {
	var f routeFile
	if err := util.DecodeCompressed(rd, &f); err != nil {
		return nil, err
	}
	if f.Version != RouteFileVersion {
		return nil, fmt.Errorf("version %d: %w", f.Version, ErrRouteFileVersion)
	}
	if f.Route == nil {
		return nil, errors.New("compiled route file has no route")
	}
	return f.Route, nil
}
