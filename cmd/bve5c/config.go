// cmd/bve5c/config.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/railsim/bve5c/log"
	"github.com/railsim/bve5c/route"
	"github.com/railsim/bve5c/util"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds the settings that may be given in the configuration file.
// Command-line flags override it.
type Config struct {
	LogLevel string `yaml:"log_level"`
	LogDir   string `yaml:"log_dir"`

	Encoding             string  `yaml:"encoding"`
	BlockInterval        float64 `yaml:"block_interval"`
	SignedCant           bool    `yaml:"signed_cant"`
	PreviewOnly          bool    `yaml:"preview_only"`
	FogTransition        bool    `yaml:"fog_transition"`
	CompatibilityBeacons bool    `yaml:"compatibility_beacons"`
	Meshes               bool    `yaml:"meshes"`

	Jobs       int   `yaml:"jobs"`
	Cache      bool  `yaml:"cache"`
	CacheMaxMB int64 `yaml:"cache_max_mb"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:             "info",
		BlockInterval:        route.DefaultBlockInterval,
		FogTransition:        true,
		CompatibilityBeacons: true,
		Jobs:                 runtime.NumCPU(),
		CacheMaxMB:           256,
	}
}

// loadConfig reads the configuration file at path over the defaults. An
// empty path gives the defaults. Unknown keys are errors so that typos
// don't go unnoticed.
func loadConfig(path string) (Config, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	if c.BlockInterval <= 0 {
		return c, fmt.Errorf("%s: block_interval must be positive", path)
	}
	if c.Jobs <= 0 {
		c.Jobs = runtime.NumCPU()
	}
	return c, nil
}

// applyFlags overrides c with the flags given on the command line.
func (c *Config) applyFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	if fs.Changed("loglevel") {
		c.LogLevel = flagLogLevel
	}
	if fs.Changed("logdir") {
		c.LogDir = flagLogDir
	}
	if fs.Changed("encoding") {
		c.Encoding = flagEncoding
	}
	if fs.Changed("interval") && flagInterval > 0 {
		c.BlockInterval = flagInterval
	}
	if fs.Changed("signed-cant") {
		c.SignedCant = flagSignedCant
	}
	if fs.Changed("preview") {
		c.PreviewOnly = flagPreview
	}
	if fs.Changed("no-fog-transition") {
		c.FogTransition = !flagNoFogTransition
	}
	if fs.Changed("no-beacons") {
		c.CompatibilityBeacons = !flagNoBeacons
	}
	if fs.Changed("meshes") {
		c.Meshes = flagMeshes
	}
	if fs.Changed("jobs") && flagJobs > 0 {
		c.Jobs = flagJobs
	}
}

// Options returns the compiler options that c describes. files is used
// to read structure meshes when Meshes is set.
func (c Config) Options(files *util.FileCache) route.Options {
	opts := route.Options{
		SignedCant:           c.SignedCant,
		PreviewOnly:          c.PreviewOnly,
		FogTransition:        c.FogTransition,
		BlockInterval:        c.BlockInterval,
		CompatibilityBeacons: c.CompatibilityBeacons,
		Encoding:             c.Encoding,
	}
	if c.Meshes {
		opts.ObjectLoader = route.NewCSVObjectLoader(files)
	}
	return opts
}

// setup loads the configuration for cmd and starts logging.
func setup(cmd *cobra.Command) (Config, *log.Logger, error) {
	c, err := loadConfig(flagConfig)
	if err != nil {
		return c, nil, err
	}
	c.applyFlags(cmd)
	lg := log.New(c.LogLevel, c.LogDir)
	lg.Info("configuration", "config", flagConfig, "interval", c.BlockInterval, "preview", c.PreviewOnly,
		"jobs", c.Jobs, "cache", c.Cache)
	return c, lg, nil
}
