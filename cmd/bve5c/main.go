// cmd/bve5c/main.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	flagConfig          string
	flagLogLevel        string
	flagLogDir          string
	flagEncoding        string
	flagInterval        float64
	flagSignedCant      bool
	flagPreview         bool
	flagNoFogTransition bool
	flagNoBeacons       bool
	flagMeshes          bool
	flagJobs            int
)

var rootCmd = &cobra.Command{
	Use:   "bve5c",
	Short: "Compile BVE5 scenarios into track models",
	Long: `bve5c compiles BVE5 scenarios and their route maps into a model of the
track: its geometry, the events along it, stations, signalling and the
placement of every structure.`,
	SilenceUsage: true,
}

func main() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagConfig, "config", "c", "", "YAML configuration file")
	pf.StringVar(&flagLogLevel, "loglevel", "info", "logging level: debug, info, warn, error")
	pf.StringVar(&flagLogDir, "logdir", "", "log file directory")
	pf.StringVar(&flagEncoding, "encoding", "", "read every file with this text encoding instead of detecting it")
	pf.Float64Var(&flagInterval, "interval", 25, "block interval in metres")
	pf.BoolVar(&flagSignedCant, "signed-cant", false, "take the sign of cant from the route map rather than the curve")
	pf.BoolVar(&flagPreview, "preview", false, "only compile stations and track geometry")
	pf.BoolVar(&flagNoFogTransition, "no-fog-transition", false, "interpolate fog block by block")
	pf.BoolVar(&flagNoBeacons, "no-beacons", false, "don't add the ATS/ATC compatibility beacons")
	pf.BoolVar(&flagMeshes, "meshes", false, "merge repeated CSV structures into bent meshes")
	pf.IntVarP(&flagJobs, "jobs", "j", 0, "number of scenarios to compile at once (default: number of CPUs)")

	rootCmd.AddCommand(compileCmd, checkCmd, dumpCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
