// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package handler

import (
	"gopkg.in/yaml.v3"
)

func yamlUnmarshal(src string, out any) error {
	return yaml.Unmarshal([]byte(src), out)
}
