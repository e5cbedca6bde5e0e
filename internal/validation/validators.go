// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package validation

import (
	"path/filepath"
	"regexp"
	"strings"

	"grimm.is/voxdoc/internal/errors"
)

// Puppet name validation
var (
	// Class, defined type and plan names: lowercase segments joined by ::
	qualifiedNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*(::[a-z][a-z0-9_]*)*$`)

	// Data type alias names: capitalized segments joined by ::
	typeNameRegex = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]*(::[A-Z][A-Za-z0-9_]*)*$`)

	// Parameter names as written after the $ sigil
	parameterNameRegex = regexp.MustCompile(`^[a-z_][A-Za-z0-9_]*$`)

	// Task and resource type names: a single lowercase segment
	simpleNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// ValidateQualifiedName validates a class, defined type or plan name.
func ValidateQualifiedName(name string) error {
	if name == "" {
		return errors.New(errors.KindValidation, "name cannot be empty")
	}
	if !qualifiedNameRegex.MatchString(name) {
		return errors.Errorf(errors.KindValidation, "invalid name: %s (must be lowercase segments separated by ::)", name)
	}
	return nil
}

// ValidateTypeName validates a data type alias name.
func ValidateTypeName(name string) error {
	if name == "" {
		return errors.New(errors.KindValidation, "type name cannot be empty")
	}
	if !typeNameRegex.MatchString(name) {
		return errors.Errorf(errors.KindValidation, "invalid type name: %s (each segment must start with an uppercase letter)", name)
	}
	return nil
}

// ValidateParameterName validates a parameter name without its $ sigil.
func ValidateParameterName(name string) error {
	if name == "" {
		return errors.New(errors.KindValidation, "parameter name cannot be empty")
	}
	if !parameterNameRegex.MatchString(name) {
		return errors.Errorf(errors.KindValidation, "invalid parameter name: %s", name)
	}
	return nil
}

// ValidateSimpleName validates a task or resource type name.
func ValidateSimpleName(name string) error {
	if name == "" {
		return errors.New(errors.KindValidation, "name cannot be empty")
	}
	if !simpleNameRegex.MatchString(name) {
		return errors.Errorf(errors.KindValidation, "invalid name: %s (must be lowercase alphanumeric with _)", name)
	}
	return nil
}

// ValidatePath validates a path relative to the module root. Absolute paths
// are only accepted inside allowedDirs.
func ValidatePath(path string, allowedDirs []string) error {
	if path == "" {
		return errors.New(errors.KindValidation, "path cannot be empty")
	}

	cleanPath := filepath.Clean(path)

	if filepath.IsAbs(cleanPath) {
		allowed := false
		for _, allowedDir := range allowedDirs {
			if strings.HasPrefix(cleanPath, filepath.Clean(allowedDir)) {
				allowed = true
				break
			}
		}
		if !allowed {
			return errors.Errorf(errors.KindValidation, "path not in allowed directories: %s", cleanPath)
		}
	}

	if strings.Contains(path, "\x00") {
		return errors.New(errors.KindValidation, "null byte in path")
	}

	return nil
}

// ValidateAllowlist checks if a value is in an allowed list
func ValidateAllowlist(field, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return errors.Errorf(errors.KindValidation, "invalid %s: %s (must be one of: %s)", field, value, strings.Join(allowed, ", "))
}
