// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package puppet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/voxdoc/internal/errors"
	"grimm.is/voxdoc/internal/statement"
)

const circusClass = `# Copyright header that is not documentation.

# Manages the circus.
#
# @summary Installs a circus
#
# @param tent_size
#   The tent size.
class circus (
  Enum['small', 'large'] $tent_size = 'small',
  Optional[Array[String]] $acts = undef,
  Hash $options = { 'clowns' => 3, 'lions' => [1, 2] },
  $owner,
) inherits circus::params {
  $msg = "tent is ${tent_size} with ${ {'a' => 'b'}['a'] }"
  file { '/etc/circus.conf':
    content => @("EOT"),
      size=${tent_size}
      class fake { }
      | EOT
  }

  # A nested helper.
  class helper {
    notify { 'hi': }
  }
}
`

func parse(t *testing.T, src, file string) []statement.Statement {
	t.Helper()
	stmts, err := New().Parse([]byte(src), file)
	require.NoError(t, err)
	return stmts
}

func TestParseClass(t *testing.T) {
	stmts := parse(t, circusClass, "manifests/init.pp")
	require.Len(t, stmts, 2)

	c := stmts[0]
	assert.Equal(t, statement.KindClass, c.Kind)
	assert.Equal(t, "circus", c.Name)
	assert.Equal(t, "circus::params", c.ParentClass)
	assert.Equal(t, "manifests/init.pp", c.File)
	assert.Equal(t, 9, c.Line)
	assert.Equal(t, "Manages the circus.", c.Docstring.Text)
	assert.Len(t, c.Docstring.TagsNamed("param"), 1)

	require.Len(t, c.Parameters, 4)
	assert.Equal(t, "tent_size", c.Parameters[0].Name)
	assert.Equal(t, "Enum['small', 'large']", c.Parameters[0].Type)
	require.NotNil(t, c.Parameters[0].Default)
	assert.Equal(t, "'small'", *c.Parameters[0].Default)

	assert.Equal(t, "acts", c.Parameters[1].Name)
	assert.Equal(t, "Optional[Array[String]]", c.Parameters[1].Type)
	assert.Equal(t, "undef", *c.Parameters[1].Default)

	assert.Equal(t, "{ 'clowns' => 3, 'lions' => [1, 2] }", *c.Parameters[2].Default)

	assert.Equal(t, "owner", c.Parameters[3].Name)
	assert.Empty(t, c.Parameters[3].Type)
	assert.Nil(t, c.Parameters[3].Default)

	assert.Contains(t, c.Source, "class circus (")
	assert.Contains(t, c.Source, "notify { 'hi': }")

	nested := stmts[1]
	assert.Equal(t, statement.KindClass, nested.Kind)
	assert.Equal(t, "circus::helper", nested.Name)
	assert.Equal(t, "A nested helper.", nested.Docstring.Text)
}

func TestParseDefinedTypeAndPlan(t *testing.T) {
	src := `# A ring.
define circus::ring (String $act, Integer $order = 1) {
}

plan circus::deploy(TargetSpec $targets, Boolean $noop = false) {
  run_task('circus::backup', $targets)
}
`
	stmts := parse(t, src, "manifests/ring.pp")
	require.Len(t, stmts, 2)

	assert.Equal(t, statement.KindDefinedType, stmts[0].Kind)
	assert.Equal(t, "circus::ring", stmts[0].Name)
	assert.Equal(t, "A ring.", stmts[0].Docstring.Text)
	require.Len(t, stmts[0].Parameters, 2)
	assert.Equal(t, "1", *stmts[0].Parameters[1].Default)

	assert.Equal(t, statement.KindPlan, stmts[1].Kind)
	assert.Equal(t, "circus::deploy", stmts[1].Name)
	assert.Equal(t, "false", *stmts[1].Parameters[1].Default)
	assert.True(t, stmts[1].Docstring.IsEmpty())
}

func TestParseTypeAlias(t *testing.T) {
	src := `# Tent sizes.
type Circus::Size = Enum['small', 'large']
type Circus::Plain = String
`
	stmts := parse(t, src, "types/size.pp")
	require.Len(t, stmts, 2)
	assert.Equal(t, statement.KindDataTypeAlias, stmts[0].Kind)
	assert.Equal(t, "Circus::Size", stmts[0].Name)
	assert.Equal(t, "Enum['small', 'large']", stmts[0].AliasOf)
	assert.Equal(t, "Tent sizes.", stmts[0].Docstring.Text)
	assert.Equal(t, "String", stmts[1].AliasOf)
}

func TestParseIgnoresNonDeclarations(t *testing.T) {
	src := `class { 'circus': tent_size => 'large' }
file { '/tmp/x': type => 'file', mode => 8 / 2 }
$plan = 'x'
`
	assert.Empty(t, parse(t, src, "manifests/site.pp"))
}

func TestParseTrailingCommentIsNotDocstring(t *testing.T) {
	src := `$x = 1 # not docs
class circus::clown {}
`
	stmts := parse(t, src, "manifests/clown.pp")
	require.Len(t, stmts, 1)
	assert.True(t, stmts[0].Docstring.IsEmpty())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"unterminated string", "class a {\n  $x = 'oops\n}\n", 2},
		{"unclosed brace", "class a {\n  notify { 'x': }\n", 1},
		{"mismatched bracket", "class a (\n  $x = [1, 2}\n) {}\n", 2},
		{"unterminated heredoc", "class a {\n  $x = @(END)\n  text\n}\n", 2},
		{"unterminated block comment", "/* never\nclass a {}\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, err := New().Parse([]byte(tt.src), "manifests/bad.pp")
			require.Error(t, err)
			assert.Nil(t, stmts)
			assert.Equal(t, errors.KindParse, errors.GetKind(err))
			attrs := errors.GetAttributes(err)
			assert.Equal(t, "manifests/bad.pp", attrs["file"])
			assert.Equal(t, tt.line, attrs["line"])
		})
	}
}

func TestRegexAndDivision(t *testing.T) {
	src := `class a {
  if $facts['os'] =~ /^(Debian|Ubuntu)\}/ { $y = 4 / 2 }
}
`
	stmts := parse(t, src, "manifests/a.pp")
	require.Len(t, stmts, 1)
	assert.Equal(t, "a", stmts[0].Name)
}
