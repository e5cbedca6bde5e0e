// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package errors

import (
	"errors"
	"os"
	"testing"
)

func TestError(t *testing.T) {
	err := New(KindParse, "unexpected token")
	if err.Error() != "unexpected token" {
		t.Errorf("expected 'unexpected token', got '%s'", err.Error())
	}

	wrapped := Wrap(err, KindIO, "failed to read manifest")
	if wrapped.Error() != "failed to read manifest: unexpected token" {
		t.Errorf("expected 'failed to read manifest: unexpected token', got '%s'", wrapped.Error())
	}

	if Wrap(nil, KindIO, "nothing") != nil {
		t.Error("expected Wrap(nil) to be nil")
	}
}

func TestGetKind(t *testing.T) {
	err := New(KindConfig, "bad hiera.yaml")
	if GetKind(err) != KindConfig {
		t.Errorf("expected KindConfig, got %v", GetKind(err))
	}

	wrapped := Wrap(err, KindInternal, "failed")
	if GetKind(wrapped) != KindInternal {
		t.Errorf("expected KindInternal, got %v", GetKind(wrapped))
	}

	if GetKind(errors.New("std error")) != KindUnknown {
		t.Errorf("expected KindUnknown, got %v", GetKind(errors.New("std error")))
	}
}

func TestAttributes(t *testing.T) {
	err := New(KindParse, "unterminated string")
	err = Attr(err, "file", "manifests/init.pp")
	err = Attr(err, "line", 12)

	attrs := GetAttributes(err)
	if attrs["file"] != "manifests/init.pp" {
		t.Errorf("expected manifests/init.pp, got %v", attrs["file"])
	}
	if attrs["line"] != 12 {
		t.Errorf("expected 12, got %v", attrs["line"])
	}

	wrapped := Wrap(err, KindIO, "failed")
	wrapped = Attr(wrapped, "entity", "circus")

	allAttrs := GetAttributes(wrapped)
	if allAttrs["file"] != "manifests/init.pp" || allAttrs["entity"] != "circus" {
		t.Errorf("missing attributes: %v", allAttrs)
	}
}

func TestIsThroughWrap(t *testing.T) {
	err := Wrap(os.ErrNotExist, KindIO, "failed to open hiera.yaml")
	if !Is(err, os.ErrNotExist) {
		t.Error("expected wrapped error to match os.ErrNotExist")
	}

	var e *Error
	if !As(err, &e) || e.Kind != KindIO {
		t.Errorf("expected *Error with KindIO, got %v", err)
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindParse:      "parse",
		KindConfig:     "config",
		KindValidation: "validation",
		KindConflict:   "conflict",
		KindUnknown:    "unknown",
	}
	for kind, want := range cases {
		if kind.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, kind.String(), want)
		}
	}
}

func TestAtAndLocation(t *testing.T) {
	err := At(New(KindParse, "missing 'end'"), "", 7)
	err = At(Wrap(err, KindParse, "failed to parse"), "lib/puppet/type/tent.rb", 0)

	file, line := Location(err)
	if file != "lib/puppet/type/tent.rb" || line != 7 {
		t.Errorf("expected lib/puppet/type/tent.rb:7, got %s:%d", file, line)
	}

	if _, ok := GetAttributes(err)[AttrLine]; !ok {
		t.Error("expected line attribute to be set")
	}

	plain := errors.New("plain")
	if At(plain, "", 0) != plain {
		t.Error("expected At without a location to return err unchanged")
	}
	if file, line := Location(plain); file != "" || line != 0 {
		t.Errorf("expected no location, got %s:%d", file, line)
	}
	if At(nil, "init.pp", 3) != nil {
		t.Error("expected At(nil) to be nil")
	}
}
