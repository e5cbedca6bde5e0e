// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package registry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"grimm.is/voxdoc/internal/ordered"
)

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func mustGet(t *testing.T, m *ordered.Map, key string) any {
	t.Helper()
	v, ok := m.Get(key)
	require.True(t, ok, "missing key %q", key)
	return v
}
