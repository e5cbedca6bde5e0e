// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"grimm.is/voxdoc/internal/errors"
)

// GenerateHCL renders cfg in HCL native syntax.
func GenerateHCL(cfg *Config) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	body.SetAttributeValue("module_root", cty.StringVal(cfg.ModuleRoot))
	body.SetAttributeValue("log_level", cty.StringVal(cfg.LogLevel))
	body.SetAttributeValue("log_format", cty.StringVal(cfg.LogFormat))
	if cfg.MetricsFile != "" {
		body.SetAttributeValue("metrics_file", cty.StringVal(cfg.MetricsFile))
	}
	if cfg.Store != "" {
		body.SetAttributeValue("store", cty.StringVal(cfg.Store))
	}
	if cfg.StoreRetention != "" {
		body.SetAttributeValue("store_retention", cty.StringVal(cfg.StoreRetention))
	}
	if !cfg.DefaultOverrides.IsNull() {
		body.SetAttributeValue("default_overrides", cfg.DefaultOverrides)
	}

	if cfg.Source != nil {
		body.AppendNewline()
		src := body.AppendNewBlock("source", nil).Body()
		src.SetAttributeValue("include", stringList(cfg.Source.Include))
		src.SetAttributeValue("exclude", stringList(cfg.Source.Exclude))
	}

	body.AppendNewline()
	body.AppendNewBlock("hiera", nil).Body().SetAttributeValue("enabled", cty.BoolVal(cfg.HieraEnabled()))

	if cfg.Output != nil {
		body.AppendNewline()
		out := body.AppendNewBlock("output", nil).Body()
		out.SetAttributeValue("format", cty.StringVal(cfg.Output.Format))
		out.SetAttributeValue("path", cty.StringVal(cfg.Output.Path))
	}

	return hclwrite.Format(f.Bytes())
}

func stringList(items []string) cty.Value {
	if len(items) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, 0, len(items))
	for _, s := range items {
		vals = append(vals, cty.StringVal(s))
	}
	return cty.ListVal(vals)
}

// WriteDefault writes a starter configuration to path. An existing file is
// never overwritten.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.At(errors.New(errors.KindConflict, "config file already exists"), path, 0)
	}
	cfg := Default()
	cfg.Output.Path = "REFERENCE.json"
	return WriteFileAtomic(path, GenerateHCL(cfg), 0o644)
}

// WriteFileAtomic writes data to a temporary file next to filename and
// renames it into place.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.At(errors.Wrap(err, errors.KindIO, "failed to create directory"), filename, 0)
	}

	tempFile := filename + ".tmp"
	if err := os.WriteFile(tempFile, data, perm); err != nil {
		return errors.At(errors.Wrap(err, errors.KindIO, "failed to write temporary file"), filename, 0)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return errors.At(errors.Wrap(err, errors.KindIO, "failed to rename file"), filename, 0)
	}
	return nil
}
