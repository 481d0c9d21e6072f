// cmd/bve5c/compile.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/railsim/bve5c/log"
	"github.com/railsim/bve5c/route"
	"github.com/railsim/bve5c/track"
	"github.com/railsim/bve5c/util"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// CompiledRouteExtension is the extension of the files written by the
// compile command.
const CompiledRouteExtension = ".bve5c"

var flagOutDir string

var compileCmd = &cobra.Command{
	Use:   "compile scenario...",
	Short: "Compile scenarios and save the compiled routes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().StringVarP(&flagOutDir, "out", "o", "", "directory for compiled routes (default: next to each scenario)")
}

// compileResult is the outcome of compiling one scenario.
type compileResult struct {
	Path        string
	Route       *track.Route
	Diagnostics []util.Diagnostic
	Cached      bool
}

func (r compileResult) HaveErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == util.SeverityError {
			return true
		}
	}
	return false
}

// compileScenario compiles the scenario at path, using the route cache
// when it is enabled and still valid.
func compileScenario(ctx context.Context, c Config, path string, lg *log.Logger) (compileResult, error) {
	res := compileResult{Path: path}

	if c.Cache {
		if r, diags, ok := lookupCachedRoute(c, path, lg); ok {
			res.Route, res.Diagnostics, res.Cached = r, diags, true
			return res, nil
		}
	}

	var e util.ErrorLogger
	r, err := route.Compile(ctx, path, c.Options(util.NewFileCache(256, c.Encoding)), &e, lg)
	res.Diagnostics = e.Diagnostics()
	if err != nil {
		return res, err
	}
	res.Route = r

	if c.Cache {
		storeCachedRoute(c, path, r, res.Diagnostics, lg)
	}
	return res, nil
}

// compileAll compiles paths concurrently, at most c.Jobs at a time, and
// calls report for each one as it finishes. report calls are serialized.
// The first compilation that fails outright cancels the rest; its
// diagnostics are written to w.
func compileAll(ctx context.Context, c Config, paths []string, w io.Writer, lg *log.Logger,
	report func(compileResult) error) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(1, c.Jobs))

	var mu sync.Mutex
	for _, path := range paths {
		eg.Go(func() error {
			res, err := compileScenario(ctx, c, path, lg.With("scenario", path))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				util.PrintDiagnostics(w, res.Diagnostics, lg)
				return fmt.Errorf("%s: %w", path, err)
			}
			return report(res)
		})
	}
	err := eg.Wait()

	if c.Cache {
		if cerr := util.CacheCullObjects(c.CacheMaxMB << 20); cerr != nil {
			lg.Warnf("culling route cache: %v", cerr)
		}
	}
	return err
}

// outputPath returns where the compiled form of the scenario at path is
// written.
func outputPath(path, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + CompiledRouteExtension
	if outDir == "" {
		return filepath.Join(filepath.Dir(path), base)
	}
	return filepath.Join(outDir, base)
}

func saveRoute(r *track.Route, fn string) error {
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := r.Save(f); err != nil {
		f.Close()
		os.Remove(fn)
		return err
	}
	return f.Close()
}

func runCompile(cmd *cobra.Command, args []string) error {
	c, lg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer lg.CatchAndReportCrash()

	if flagOutDir != "" {
		if err := os.MkdirAll(flagOutDir, 0o755); err != nil {
			return err
		}
	}

	var failed []string
	err = compileAll(cmd.Context(), c, args, cmd.ErrOrStderr(), lg, func(res compileResult) error {
		util.PrintDiagnostics(cmd.ErrOrStderr(), res.Diagnostics, lg)
		if res.HaveErrors() {
			failed = append(failed, res.Path)
		}

		fn := outputPath(res.Path, flagOutDir)
		if err := saveRoute(res.Route, fn); err != nil {
			return fmt.Errorf("%s: %w", fn, err)
		}
		lg.Info("saved compiled route", "scenario", res.Path, "output", fn, "cached", res.Cached,
			"elements", len(res.Route.Elements))
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", res.Path, fn)
		return nil
	})
	if err != nil {
		if errors.Is(err, route.ErrCanceled) {
			fmt.Fprintln(cmd.ErrOrStderr(), "interrupted")
		}
		return err
	}
	if len(failed) > 0 {
		return fmt.Errorf("%s: compiled with errors", strings.Join(failed, ", "))
	}
	return nil
}
