// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"grimm.is/voxdoc/internal/canon"
	"grimm.is/voxdoc/internal/errors"
	"grimm.is/voxdoc/internal/validation"
)

// Allowed enumeration values.
var (
	LogLevels     = []string{"debug", "info", "warn", "error"}
	LogFormats    = []string{"text", "json"}
	OutputFormats = []string{"json", "yaml"}
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Err returns the collection as a KindConfig error, or nil when empty.
func (e ValidationErrors) Err() error {
	if !e.HasErrors() {
		return nil
	}
	return errors.Wrap(e, errors.KindConfig, "invalid configuration")
}

// Validate validates the entire configuration.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	check := func(field string, err error) {
		if err != nil {
			errs = append(errs, ValidationError{Field: field, Message: err.Error()})
		}
	}

	check("log_level", validation.ValidateAllowlist("log_level", c.LogLevel, LogLevels))
	check("log_format", validation.ValidateAllowlist("log_format", c.LogFormat, LogFormats))

	if c.Output != nil {
		check("output.format", validation.ValidateAllowlist("format", c.Output.Format, OutputFormats))
		if c.Output.Path != "" {
			check("output.path", validation.ValidatePath(c.Output.Path, []string{"/"}))
		}
	}

	if c.StoreRetention != "" {
		if _, err := c.Retention(); err != nil {
			check("store_retention", err)
		}
	}

	if c.Source != nil {
		errs = append(errs, validatePatterns("source.include", c.Source.Include)...)
		errs = append(errs, validatePatterns("source.exclude", c.Source.Exclude)...)
	}

	errs = append(errs, c.validateOverrides()...)
	return errs
}

// Retention returns store_retention as a duration; zero keeps every run.
func (c *Config) Retention() (time.Duration, error) {
	if c.StoreRetention == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.StoreRetention)
	if err != nil {
		return 0, errors.Wrapf(err, errors.KindConfig, "invalid duration %q", c.StoreRetention)
	}
	if d < 0 {
		return 0, errors.Errorf(errors.KindConfig, "duration %q must not be negative", c.StoreRetention)
	}
	return d, nil
}

func validatePatterns(field string, patterns []string) ValidationErrors {
	var errs ValidationErrors
	for i, p := range patterns {
		if _, err := glob.Compile(p, '/'); err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: fmt.Sprintf("invalid pattern %q: %v", p, err),
			})
		}
	}
	return errs
}

func (c *Config) validateOverrides() ValidationErrors {
	v := c.DefaultOverrides
	if v.IsNull() {
		return nil
	}
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return ValidationErrors{{Field: "default_overrides", Message: "must be a map of \"<entity>::<parameter>\" to value"}}
	}

	var errs ValidationErrors
	for key := range v.AsValueMap() {
		i := strings.LastIndex(key, "::")
		if i <= 0 || i+2 >= len(key) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("default_overrides[%q]", key),
				Message: "key must have the form <entity>::<parameter>",
			})
			continue
		}
		if err := validation.ValidateParameterName(key[i+2:]); err != nil {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("default_overrides[%q]", key), Message: err.Error()})
		}
	}
	return errs
}

// Overrides returns default_overrides rendered as Puppet literals.
func (c *Config) Overrides() (map[string]string, error) {
	v := c.DefaultOverrides
	if v.IsNull() {
		return nil, nil
	}
	if !v.Type().IsObjectType() && !v.Type().IsMapType() {
		return nil, errors.New(errors.KindConfig, "default_overrides must be a map")
	}

	out := make(map[string]string)
	for key, val := range v.AsValueMap() {
		native, err := canon.FromCty(val)
		if err != nil {
			return nil, errors.Attr(errors.Wrapf(err, errors.KindConfig, "invalid override %q", key), "parameter", key)
		}
		out[key] = canon.Render(native)
	}
	return out, nil
}
