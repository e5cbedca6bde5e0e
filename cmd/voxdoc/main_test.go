// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/voxdoc/internal/store"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newModule(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "manifests", "init.pp"), `# Runs the circus.
#
# @param tent_size
#   How big the tent is.
class circus (
  String $tent_size = 'small',
) {
}
`)
	writeFile(t, filepath.Join(root, "tasks", "backup.json"), `{"description": "Backs up the circus."}`)
	return root
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append(args, "-log-level", "error"), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestInitWritesConfigOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxdoc.hcl")

	code, _, stderr := runCLI(t, "-init", "-config", path)
	require.Equal(t, exitOK, code, stderr)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "REFERENCE.json")

	code, _, stderr = runCLI(t, "-init", "-config", path)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "already exists")
}

func TestGenerateToStdout(t *testing.T) {
	root := newModule(t)

	code, stdout, stderr := runCLI(t, "-root", root, "-output", "-")
	require.Equal(t, exitOK, code, stderr)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	classes := doc["puppet_classes"].([]any)
	require.Len(t, classes, 1)
	assert.Equal(t, "circus", classes[0].(map[string]any)["name"])
	assert.Contains(t, doc, "puppet_tasks")
}

func TestGenerateYAML(t *testing.T) {
	root := newModule(t)

	code, stdout, stderr := runCLI(t, "-root", root, "-output", "-", "-format", "yaml")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "puppet_classes:\n")
	assert.Contains(t, stdout, "name: circus")
}

func TestCheckDetectsDrift(t *testing.T) {
	root := newModule(t)
	out := filepath.Join(t.TempDir(), "REFERENCE.json")

	code, _, stderr := runCLI(t, "-root", root, "-output", out)
	require.Equal(t, exitOK, code, stderr)

	code, _, stderr = runCLI(t, "-root", root, "-output", out, "-check")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stderr, "up to date")

	writeFile(t, filepath.Join(root, "manifests", "init.pp"), "# Changed.\nclass circus {\n}\n")
	code, stdout, stderr := runCLI(t, "-root", root, "-output", out, "-check")
	assert.Equal(t, exitDrift, code)
	assert.Contains(t, stderr, "out of date")
	assert.Contains(t, stdout, "Changed.")
}

func TestCheckNeedsOutputPath(t *testing.T) {
	code, _, stderr := runCLI(t, "-root", newModule(t), "-output", "-", "-check")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "-check needs an output path")
}

func TestInvalidFlags(t *testing.T) {
	tests := map[string][]string{
		"format":    {"-format", "xml"},
		"log level": {"-log-level", "loud"},
		"root":      {"-root", filepath.Join(t.TempDir(), "missing")},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), append([]string{"-output", "-"}, args...), &stdout, &stderr)
			assert.Equal(t, exitFailure, code)
			assert.Contains(t, stderr.String(), "Error")
		})
	}
}

func TestConfigFileWiresMetricsAndStore(t *testing.T) {
	root := newModule(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "REFERENCE.json")
	prom := filepath.Join(dir, "voxdoc.prom")
	db := filepath.Join(dir, "voxdoc.db")

	cfgPath := filepath.Join(dir, "voxdoc.hcl")
	writeFile(t, cfgPath, fmt.Sprintf(`
module_root  = %q
metrics_file = %q
store        = %q
default_overrides = {
  "circus::tent_size" = "huge"
}

output {
  path = %q
}
`, root, prom, db, out))

	code, _, stderr := runCLI(t, "-config", cfgPath)
	require.Equal(t, exitOK, code, stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tent_size": "'huge'"`)

	metrics, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `voxdoc_entities{group="puppet_classes"} 1`)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	runs, err := st.Runs(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].Entities)
}

func TestStoreRetentionPrunesOldRuns(t *testing.T) {
	root := newModule(t)
	dir := t.TempDir()
	db := filepath.Join(dir, "voxdoc.db")

	st, err := store.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.RecordRun(context.Background(), store.Run{
		ID: "last-year", StartedAt: time.Now().AddDate(-1, 0, 0), Root: root,
	}, nil))
	require.NoError(t, st.Close())

	cfgPath := filepath.Join(dir, "voxdoc.hcl")
	writeFile(t, cfgPath, fmt.Sprintf(`
module_root     = %q
store           = %q
store_retention = "720h"
`, root, db))

	code, _, stderr := runCLI(t, "-config", cfgPath, "-output", "-")
	require.Equal(t, exitOK, code, stderr)

	st, err = store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	runs, err := st.Runs(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.NotEqual(t, "last-year", runs[0].ID)
}
