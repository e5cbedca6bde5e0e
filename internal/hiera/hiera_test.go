// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package hiera

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/voxdoc/internal/errors"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const commonConfig = `version: 5
defaults:
  datadir: data
  data_hash: yaml_data
hierarchy:
  - name: "Common defaults"
    path: "common.yaml"
`

func TestLoadConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ConfigFile, commonConfig)

	cfg, err := LoadConfig(root)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 5, cfg.Version)
	assert.Equal(t, "data", cfg.Defaults.Datadir)
	require.Len(t, cfg.Hierarchy, 1)
	assert.Equal(t, "Common defaults", cfg.Hierarchy[0].Name)
}

func TestLoadConfigMissing(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	assert.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadConfigMalformed(t *testing.T) {
	tests := map[string]string{
		"syntax":      "version: 5\nhierarchy: [\n",
		"not mapping": "- version\n- 5\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, root, ConfigFile, content)

			cfg, err := LoadConfig(root)
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Equal(t, errors.KindConfig, errors.GetKind(err))
		})
	}
}

func TestFirstStaticLayer(t *testing.T) {
	root := "/mod"
	tests := []struct {
		name   string
		config string
		want   string
	}{
		{
			name:   "static layer",
			config: commonConfig,
			want:   filepath.Join(root, "data", "common.yaml"),
		},
		{
			name: "interpolated layers first",
			config: `version: 5
defaults:
  datadir: data
hierarchy:
  - name: "Per-node data"
    path: "nodes/%{facts.hostname}.yaml"
  - name: "Per-environment data"
    path: "env/%{facts.environment}.yaml"
  - name: "Common defaults"
    path: "common.yaml"
`,
			want: filepath.Join(root, "data", "common.yaml"),
		},
		{
			name: "only interpolated",
			config: `version: 5
hierarchy:
  - name: "Per-node data"
    path: "nodes/%{facts.hostname}.yaml"
  - name: "Per-environment data"
    path: "env/%{environment}.yaml"
`,
		},
		{
			name: "custom datadir",
			config: `version: 5
defaults:
  datadir: hieradata
hierarchy:
  - name: "Common"
    path: "common.yaml"
`,
			want: filepath.Join(root, "hieradata", "common.yaml"),
		},
		{
			name: "paths list",
			config: `version: 5
hierarchy:
  - name: "Multiple paths"
    paths:
      - "first.yaml"
      - "second.yaml"
`,
			want: filepath.Join(root, "data", "first.yaml"),
		},
		{
			name: "paths with interpolation",
			config: `version: 5
hierarchy:
  - name: "Mixed"
    paths: ["static.yaml", "os/%{facts.os.family}.yaml"]
  - name: "Common"
    path: "common.yaml"
`,
			want: filepath.Join(root, "data", "common.yaml"),
		},
		{
			name: "entry datadir",
			config: `version: 5
defaults:
  datadir: data
hierarchy:
  - name: "Common"
    datadir: other
    path: "common.yaml"
`,
			want: filepath.Join(root, "other", "common.yaml"),
		},
		{
			name:   "empty hierarchy",
			config: "version: 5\nhierarchy: []\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, ConfigFile, tt.config)
			cfg, err := LoadConfig(dir)
			require.NoError(t, err)

			got, ok := cfg.FirstStaticLayer(root)
			if tt.want == "" {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadData(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "data/test.yaml", "key1: value1\nkey2: 42\n")
	writeFile(t, root, "data/invalid.yaml", "invalid: yaml: content: [")

	data, err := LoadData(filepath.Join(root, "data", "test.yaml"))
	require.NoError(t, err)
	v, _ := data.Get("key1")
	assert.Equal(t, "value1", v)
	v, _ = data.Get("key2")
	assert.Equal(t, 42, v)

	data, err = LoadData(filepath.Join(root, "nonexistent.yaml"))
	assert.NoError(t, err)
	assert.Nil(t, data)

	data, err = LoadData(filepath.Join(root, "data", "invalid.yaml"))
	assert.Nil(t, data)
	require.Error(t, err)
	assert.Equal(t, errors.KindConfig, errors.GetKind(err))
}

func circusModule(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, ConfigFile, commonConfig)
	writeFile(t, root, "data/common.yaml", `circus::tent_size: 'large'
circus::location: '/opt/circus-ground'
circus::season: '2025'
circus::ringmaster: 'Giovanni'
circus::has_animals: false
circus::performers: {}
circus::insurance_policy: ~
circus::acts: [juggling, trapeze]
circus::ticket_prices: &prices
  adult: 25
  child: 12.5
circus::opening_day: 2020-01-01
circus::matinee_prices:
  <<: *prices
  child: 8
`)
	return root
}

func TestDefaultFor(t *testing.T) {
	r, errs := New(circusModule(t), nil)
	require.Empty(t, errs)
	require.True(t, r.Enabled())

	tests := []struct {
		param string
		want  string
	}{
		{"tent_size", "'large'"},
		{"location", "'/opt/circus-ground'"},
		{"season", "'2025'"},
		{"ringmaster", "'Giovanni'"},
		{"has_animals", "false"},
		{"performers", "{}"},
		{"insurance_policy", "undef"},
		{"acts", "['juggling', 'trapeze']"},
		{"ticket_prices", "{ 'adult' => 25, 'child' => 12.5 }"},
		{"opening_day", "'2020-01-01'"},
		{"matinee_prices", "{ 'adult' => 25, 'child' => 8 }"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			got, ok := r.DefaultFor("circus", tt.param)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := r.DefaultFor("circus", "nonexistent")
	assert.False(t, ok)
	_, ok = r.DefaultFor("wrong_module", "tent_size")
	assert.False(t, ok)
}

func TestResolverDisabled(t *testing.T) {
	r, errs := New(t.TempDir(), nil)
	assert.Empty(t, errs)
	assert.False(t, r.Enabled())
	_, ok := r.DefaultFor("circus", "tent_size")
	assert.False(t, ok)
}

func TestResolverMalformedConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ConfigFile, "version: [\n")

	r, errs := New(root, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, errors.KindConfig, errors.GetKind(errs[0]))
	assert.False(t, r.Enabled())
}

func TestResolverMalformedData(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ConfigFile, commonConfig)
	writeFile(t, root, "data/common.yaml", "circus::tent_size: [\n")

	r, errs := New(root, nil)
	require.Len(t, errs, 1)
	assert.True(t, r.Enabled())
	_, ok := r.DefaultFor("circus", "tent_size")
	assert.False(t, ok)
}
