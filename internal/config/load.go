// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"grimm.is/voxdoc/internal/errors"
)

// LoadFile loads a config file (HCL or HCL-flavored JSON) and applies
// defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.At(errors.Wrap(err, errors.KindConfig, "failed to read config file"), path, 0)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return LoadJSON(data, path)
	}
	return LoadHCL(data, path)
}

// LoadHCL loads config from HCL native syntax.
func LoadHCL(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	return decode(file, diags, filename)
}

// LoadJSON loads config from the JSON variant of HCL.
func LoadJSON(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseJSON(data, filename)
	return decode(file, diags, filename)
}

func decode(file *hcl.File, diags hcl.Diagnostics, filename string) (*Config, error) {
	if diags.HasErrors() {
		return nil, diagError(diags, "failed to parse config", filename)
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, diagError(diags, "failed to decode config", filename)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

func diagError(diags hcl.Diagnostics, msg, filename string) error {
	err := errors.At(errors.Wrap(diags, errors.KindConfig, msg), filename, 0)
	for _, d := range diags {
		if d.Severity == hcl.DiagError && d.Subject != nil {
			return errors.At(err, "", d.Subject.Start.Line)
		}
	}
	return err
}
