// route/scenario.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/railsim/bve5c/util"
)

var (
	ErrNoRouteMap       = errors.New("Scenario does not name a route map")
	ErrRouteMapNotFound = errors.New("Route map file not found")
)

// Scenario is the subset of a scenario file that describes the route.
type Scenario struct {
	Path    string
	Comment string
	Image   string
	// RouteMap is the resolved path of the route map.
	RouteMap string
}

// LoadScenario reads the "key = value" lines of the scenario file at
// path. Keys are case-insensitive; unknown keys are ignored. The route
// map and image are resolved relative to the scenario's directory.
func LoadScenario(path string, files *util.FileCache) (*Scenario, error) {
	lines, err := files.ReadLines(path)
	if err != nil {
		return nil, err
	}

	sc := &Scenario{Path: path}
	dir := filepath.Dir(path)
	resolve := func(v string) string {
		v = filepath.FromSlash(strings.ReplaceAll(util.TrimQuotes(v), "\\", "/"))
		if filepath.IsAbs(v) {
			return v
		}
		return filepath.Join(dir, v)
	}

	for _, line := range lines {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "comment":
			sc.Comment = value
		case "route":
			if value != "" {
				sc.RouteMap = resolve(value)
			}
		case "image":
			if value != "" {
				sc.Image = resolve(value)
			}
		}
	}

	if sc.RouteMap == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrNoRouteMap)
	}
	if _, err := os.Stat(sc.RouteMap); err != nil {
		return nil, fmt.Errorf("%s: %w", sc.RouteMap, ErrRouteMapNotFound)
	}
	return sc, nil
}
