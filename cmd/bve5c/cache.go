// cmd/bve5c/cache.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/railsim/bve5c/log"
	"github.com/railsim/bve5c/track"
	"github.com/railsim/bve5c/util"
)

// cachedRoute is what the route cache holds for a scenario.
type cachedRoute struct {
	Version     int
	Route       *track.Route
	Diagnostics []util.Diagnostic
}

// routeCacheKey identifies the compiled form of the scenario at path under
// the given configuration; anything that changes the output changes the key.
func routeCacheKey(c Config, path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	s := fmt.Sprintf("%s|%s|%g|%v|%v|%v|%v|%v", path, c.Encoding, c.BlockInterval, c.SignedCant,
		c.PreviewOnly, c.FogTransition, c.CompatibilityBeacons, c.Meshes)
	return fmt.Sprintf("routes/%016x", util.HashString64(s))
}

// newestModTime returns the latest modification time of any file in the
// scenario's directory tree, which is where its route files live.
func newestModTime(path string) (time.Time, error) {
	var newest time.Time
	err := filepath.WalkDir(filepath.Dir(path), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	return newest, err
}

func lookupCachedRoute(c Config, path string, lg *log.Logger) (*track.Route, []util.Diagnostic, bool) {
	key := routeCacheKey(c, path)

	var cr cachedRoute
	stored, err := util.CacheRetrieveObject(key, &cr)
	if err != nil {
		lg.Debugf("%s: no cached route: %v", path, err)
		return nil, nil, false
	}
	if cr.Version != track.RouteFileVersion || cr.Route == nil {
		lg.Debugf("%s: cached route is stale", path)
		return nil, nil, false
	}

	newest, err := newestModTime(path)
	if err != nil || !stored.After(newest) {
		lg.Debugf("%s: route files changed since %s", path, stored)
		return nil, nil, false
	}

	lg.Infof("%s: using cached route %s", path, key)
	return cr.Route, cr.Diagnostics, true
}

func storeCachedRoute(c Config, path string, r *track.Route, diags []util.Diagnostic, lg *log.Logger) {
	key := routeCacheKey(c, path)
	cr := cachedRoute{Version: track.RouteFileVersion, Route: r, Diagnostics: diags}
	if err := util.CacheStoreObject(key, cr); err != nil {
		lg.Warnf("%s: unable to cache route: %v", path, err)
	}
}
