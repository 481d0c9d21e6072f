// cmd/bve5c/dump.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goforj/godump"
	"github.com/iancoleman/orderedmap"
	"github.com/railsim/bve5c/log"
	"github.com/railsim/bve5c/track"
	"github.com/railsim/bve5c/util"
	"github.com/spf13/cobra"
)

var (
	flagRaw  bool
	flagFrom float64
	flagTo   float64
)

var dumpCmd = &cobra.Command{
	Use:   "dump scenario|compiled-route",
	Short: "Print a summary of a route",
	Long: `dump prints a JSON summary of a route. The argument is either a scenario,
which is compiled first, or a route previously saved by the compile command.
With --raw, the track elements between --from and --to are printed in full.`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	f := dumpCmd.Flags()
	f.BoolVar(&flagRaw, "raw", false, "dump track elements in full")
	f.Float64Var(&flagFrom, "from", 0, "first track position to dump with --raw")
	f.Float64Var(&flagTo, "to", -1, "last track position to dump with --raw (default: the end of the route)")
}

func loadCompiledRoute(fn string) (*track.Route, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return track.LoadRoute(f)
}

func runDump(cmd *cobra.Command, args []string) error {
	c, lg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer lg.CatchAndReportCrash()

	path := args[0]
	var r *track.Route
	if strings.EqualFold(filepath.Ext(path), CompiledRouteExtension) {
		if r, err = loadCompiledRoute(path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	} else {
		res, err := compileScenario(cmd.Context(), c, path, lg)
		util.PrintDiagnostics(cmd.ErrOrStderr(), res.Diagnostics, lg)
		if err != nil {
			return err
		}
		r = res.Route
	}

	if flagRaw {
		dumpElements(cmd.OutOrStdout(), r, flagFrom, flagTo, lg)
		return nil
	}

	b, err := json.MarshalIndent(routeSummary(r), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

// routeSummary returns an overview of r whose keys keep a stable order
// when printed.
func routeSummary(r *track.Route) *orderedmap.OrderedMap {
	m := orderedmap.New()
	m.Set("comment", r.Comment)
	if r.Image != "" {
		m.Set("image", r.Image)
	}
	m.Set("block_interval", r.BlockInterval)
	m.Set("length", r.Length())
	m.Set("elements", len(r.Elements))
	m.Set("subdivided", len(r.Subdivided))
	m.Set("structures", len(r.Structures))
	m.Set("placements", len(r.Placements))
	m.Set("meshes", len(r.Meshes))
	m.Set("sections", len(r.Sections))
	m.Set("signals", len(r.Signals))

	var stations []*orderedmap.OrderedMap
	for _, st := range r.Stations {
		s := orderedmap.New()
		s.Set("key", st.Key)
		s.Set("name", st.Name)
		s.Set("type", st.Type.String())
		s.Set("safety", st.SafetySystem.String())
		stops := make([]float64, len(st.Stops))
		for i, stop := range st.Stops {
			stops[i] = stop.TrackPosition
		}
		s.Set("stops", stops)
		stations = append(stations, s)
	}
	m.Set("stations", stations)

	counts := r.EventCounts()
	events := orderedmap.New()
	for t := range track.NumEventTypes {
		if n := counts[t]; n > 0 {
			events.Set(t.String(), n)
		}
	}
	m.Set("events", events)

	return m
}

// dumpElements writes the elements of r whose starting track positions lie
// in [from, to]; a negative to runs to the end of the route.
func dumpElements(w io.Writer, r *track.Route, from, to float64, lg *log.Logger) {
	for i := range r.Elements {
		el := &r.Elements[i]
		if el.StartingTrackPosition < from {
			continue
		}
		if to >= 0 && el.StartingTrackPosition > to {
			break
		}
		fmt.Fprintf(w, "element %d @ %gm\n", i, el.StartingTrackPosition)
		godump.Fdump(w, el)
		lg.Debug("dumped element", "index", i, "position", el.StartingTrackPosition,
			log.AnyPointerSlice("events", el.Events))
	}
}
