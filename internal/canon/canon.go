// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package canon renders decoded configuration values as Puppet literals.
//
// The output mirrors the format Puppet code defaults are written in, so a
// default resolved from Hiera reads the same as one taken from a manifest:
//
//	""                    undef
//	"large"               'large'
//	42, 3.14              42, 3.14
//	true                  true
//	nil                   undef
//	{"k": "v"}            { 'k' => 'v' }
//	["a", "b"]            ['a', 'b']
//
// Arrays carry no padding inside the brackets while hashes do. Both match
// the code-default format and must not be normalized.
package canon

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"grimm.is/voxdoc/internal/ordered"
)

// Undef is the Puppet literal for an absent value.
const Undef = "undef"

// Render converts v to its Puppet literal form.
func Render(v any) string {
	switch val := v.(type) {
	case nil:
		return Undef
	case string:
		if val == "" {
			return Undef
		}
		return quote(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.FormatInt(int64(val), 10)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return formatFloat(float64(val))
	case float64:
		return formatFloat(val)
	case *ordered.Map:
		if val == nil {
			return Undef
		}
		keys := val.Keys()
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			item, _ := val.Get(k)
			pairs = append(pairs, pair(k, item))
		}
		return renderHash(pairs)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, pair(k, val[k]))
		}
		return renderHash(pairs)
	case []any:
		elems := make([]string, 0, len(val))
		for _, item := range val {
			elems = append(elems, Render(item))
		}
		return renderArray(elems)
	case cty.Value:
		native, err := FromCty(val)
		if err != nil {
			return quote(val.GoString())
		}
		return Render(native)
	}

	return renderReflect(v)
}

// renderReflect handles typed slices and maps that did not come through a
// generic decoder, such as []string or map[string]int.
func renderReflect(v any) string {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Undef
		}
		elems := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elems = append(elems, Render(rv.Index(i).Interface()))
		}
		return renderArray(elems)
	case reflect.Map:
		if rv.IsNil() {
			return Undef
		}
		type kv struct {
			key string
			val any
		}
		entries := make([]kv, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			entries = append(entries, kv{key: fmt.Sprint(iter.Key().Interface()), val: iter.Value().Interface()})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
		pairs := make([]string, 0, len(entries))
		for _, e := range entries {
			pairs = append(pairs, pair(e.key, e.val))
		}
		return renderHash(pairs)
	case reflect.Pointer:
		if rv.IsNil() {
			return Undef
		}
		return Render(rv.Elem().Interface())
	}
	return quote(fmt.Sprint(v))
}

func quote(s string) string {
	return "'" + s + "'"
}

func pair(key string, v any) string {
	return quote(key) + " => " + Render(v)
}

func renderHash(pairs []string) string {
	if len(pairs) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(pairs, ", ") + " }"
}

func renderArray(elems []string) string {
	if len(elems) == 0 {
		return "[]"
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

// formatFloat follows the float literal style of Hiera's YAML loader:
// integral values keep a ".0" and very large or small magnitudes switch to
// exponent form.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		if !strings.Contains(mant, ".") {
			mant += ".0"
		}
		return mant + "e" + exp
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
