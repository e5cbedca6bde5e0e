// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package hiera resolves parameter defaults from a module's Hiera data.
//
// Only the module-level hiera.yaml and its first static hierarchy layer
// are consulted. Layers whose path interpolates facts or other variables
// (%{...}) cannot be evaluated without a node and are skipped.
package hiera

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"grimm.is/voxdoc/internal/canon"
	"grimm.is/voxdoc/internal/errors"
	"grimm.is/voxdoc/internal/logging"
	"grimm.is/voxdoc/internal/ordered"
)

const (
	// ConfigFile is the module-level Hiera configuration file name.
	ConfigFile = "hiera.yaml"

	// DefaultDatadir is used when neither the entry nor defaults set one.
	DefaultDatadir = "data"
)

// Config is a parsed hiera.yaml (version 5 layout).
type Config struct {
	Version   int              `yaml:"version"`
	Defaults  Defaults         `yaml:"defaults"`
	Hierarchy []HierarchyEntry `yaml:"hierarchy"`
}

// Defaults holds the hierarchy-wide settings.
type Defaults struct {
	Datadir string `yaml:"datadir"`
}

// HierarchyEntry is one layer of the lookup hierarchy.
type HierarchyEntry struct {
	Name    string   `yaml:"name"`
	Path    string   `yaml:"path"`
	Paths   []string `yaml:"paths"`
	Datadir string   `yaml:"datadir"`
}

// dataPath returns the entry's data file path, if it has one.
func (e HierarchyEntry) dataPath() (string, bool) {
	if e.Path != "" {
		return e.Path, true
	}
	if len(e.Paths) > 0 {
		return e.Paths[0], true
	}
	return "", false
}

// Static reports whether none of the entry's paths interpolate variables.
func (e HierarchyEntry) Static() bool {
	if e.Path != "" {
		return !strings.Contains(e.Path, "%{")
	}
	if len(e.Paths) == 0 {
		return false
	}
	for _, p := range e.Paths {
		if strings.Contains(p, "%{") {
			return false
		}
	}
	return true
}

// LoadConfig reads <root>/hiera.yaml. A missing or empty file returns a nil
// config and no error; an unreadable or malformed file returns a nil
// config and a KindConfig error.
func LoadConfig(root string) (*Config, error) {
	path := filepath.Join(root, ConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.At(errors.Wrapf(err, errors.KindConfig, "failed to read %s", ConfigFile), path, 0)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, errors.At(errors.Wrapf(err, errors.KindConfig, "failed to parse %s", ConfigFile), path, 0)
	}
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return nil, errors.At(errors.Errorf(errors.KindConfig, "failed to parse %s: not a mapping", ConfigFile), path, 0)
	}

	var cfg Config
	if err := node.Content[0].Decode(&cfg); err != nil {
		return nil, errors.At(errors.Wrapf(err, errors.KindConfig, "failed to parse %s", ConfigFile), path, 0)
	}
	return &cfg, nil
}

// FirstStaticLayer returns the data file of the first hierarchy entry
// without interpolations.
func (c *Config) FirstStaticLayer(root string) (string, bool) {
	if c == nil {
		return "", false
	}
	for _, entry := range c.Hierarchy {
		if !entry.Static() {
			continue
		}
		p, ok := entry.dataPath()
		if !ok {
			continue
		}
		datadir := entry.Datadir
		if datadir == "" {
			datadir = c.Defaults.Datadir
		}
		if datadir == "" {
			datadir = DefaultDatadir
		}
		return filepath.Join(root, datadir, p), true
	}
	return "", false
}

// LoadData reads a YAML data file. A missing file returns nil and no error.
func LoadData(path string) (*ordered.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.At(errors.Wrapf(err, errors.KindConfig, "failed to read %s", filepath.Base(path)), path, 0)
	}
	m := ordered.New()
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, errors.At(errors.Wrapf(err, errors.KindConfig, "failed to parse %s", filepath.Base(path)), path, 0)
	}
	return m, nil
}

// Resolver looks up parameter defaults for one module.
type Resolver struct {
	config *Config
	data   *ordered.Map
}

// New loads the module's Hiera configuration and common data. Load
// failures leave the resolver disabled or without data and are returned
// for the caller to report.
func New(root string, logger *logging.Logger) (*Resolver, []error) {
	if logger == nil {
		logger = logging.WithComponent("hiera")
	}
	r := &Resolver{}

	var errs []error
	cfg, err := LoadConfig(root)
	if err != nil {
		return r, append(errs, err)
	}
	if cfg == nil {
		logger.Debug("no hiera configuration", "root", root)
		return r, nil
	}
	r.config = cfg

	path, ok := cfg.FirstStaticLayer(root)
	if !ok {
		logger.Debug("no static hierarchy layer")
		return r, nil
	}
	data, err := LoadData(path)
	if err != nil {
		return r, append(errs, err)
	}
	r.data = data
	if data != nil {
		logger.Debug("loaded hiera data", "file", path, "keys", data.Len())
	}
	return r, nil
}

// NewFromData builds an enabled resolver over already-decoded data.
func NewFromData(cfg *Config, data *ordered.Map) *Resolver {
	return &Resolver{config: cfg, data: data}
}

// Enabled reports whether the module has a usable hiera.yaml.
func (r *Resolver) Enabled() bool {
	return r != nil && r.config != nil
}

// DefaultFor returns the canonical Puppet literal stored under
// "<class>::<param>" in the first static layer.
func (r *Resolver) DefaultFor(class, param string) (string, bool) {
	if !r.Enabled() || r.data == nil {
		return "", false
	}
	v, ok := r.data.Get(class + "::" + param)
	if !ok {
		return "", false
	}
	return canon.Render(v), true
}
