// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package config loads the voxdoc tool configuration (voxdoc.hcl).
package config

import (
	"github.com/zclconf/go-cty/cty"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "voxdoc.hcl"

// Config is the top-level structure for a voxdoc run.
type Config struct {
	// Module root to scan.
	// @default: "."
	ModuleRoot string `hcl:"module_root,optional"`
	// @enum: debug, info, warn, error
	// @default: "info"
	LogLevel string `hcl:"log_level,optional"`
	// @enum: text, json
	// @default: "text"
	LogFormat string `hcl:"log_format,optional"`
	// Prometheus textfile written after each run. Empty disables it.
	MetricsFile string `hcl:"metrics_file,optional"`
	// SQLite database receiving a snapshot of each run. Empty disables it.
	Store string `hcl:"store,optional"`
	// Age after which stored runs are pruned, as a Go duration such as
	// "720h". Empty keeps every run.
	StoreRetention string `hcl:"store_retention,optional"`
	// Parameter defaults keyed "<entity>::<parameter>". Values are
	// rendered as Puppet literals and replace code and Hiera defaults.
	DefaultOverrides cty.Value `hcl:"default_overrides,optional"`

	Source *SourceConfig `hcl:"source,block"`
	Hiera  *HieraConfig  `hcl:"hiera,block"`
	Output *OutputConfig `hcl:"output,block"`
}

// SourceConfig selects the files to process, relative to the module root.
type SourceConfig struct {
	Include []string `hcl:"include,optional"`
	Exclude []string `hcl:"exclude,optional"`
}

// HieraConfig controls default resolution from the module's Hiera data.
type HieraConfig struct {
	Enabled *bool `hcl:"enabled,optional"`
}

// OutputConfig controls the generated document.
type OutputConfig struct {
	// @enum: json, yaml
	Format string `hcl:"format,optional"`
	// Empty writes to stdout.
	Path string `hcl:"path,optional"`
}

// Default include and exclude patterns.
var (
	DefaultInclude = []string{
		"manifests/**.pp",
		"types/**.pp",
		"plans/**.pp",
		"lib/puppet/type/**.rb",
		"tasks/*.json",
	}
	DefaultExclude = []string{"spec/**", "vendor/**"}
)

// Default returns a configuration with every setting at its default.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.ModuleRoot == "" {
		c.ModuleRoot = "."
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.Source == nil {
		c.Source = &SourceConfig{}
	}
	if len(c.Source.Include) == 0 {
		c.Source.Include = append([]string(nil), DefaultInclude...)
	}
	if c.Source.Exclude == nil {
		c.Source.Exclude = append([]string(nil), DefaultExclude...)
	}
	if c.Hiera == nil {
		c.Hiera = &HieraConfig{}
	}
	if c.Hiera.Enabled == nil {
		enabled := true
		c.Hiera.Enabled = &enabled
	}
	if c.Output == nil {
		c.Output = &OutputConfig{}
	}
	if c.Output.Format == "" {
		c.Output.Format = "json"
	}
}

// HieraEnabled reports whether Hiera lookups are on.
func (c *Config) HieraEnabled() bool {
	return c.Hiera == nil || c.Hiera.Enabled == nil || *c.Hiera.Enabled
}
