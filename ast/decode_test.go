package ast

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/G-USI/wirecrab/wcerrors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const streetlightsYAML = `
asyncapi: 3.0.0
info:
  title: Streetlights API
  version: 1.0.0
servers:
  mosquitto:
    host: test.mosquitto.org
    protocol: mqtt
channels:
  lightMeasured:
    address: smartylighting/streetlights/1/0/event/{streetlightId}/lighting/measured
    messages:
      lightMeasured:
        $ref: '#/components/messages/lightMeasured'
components:
  messages:
    lightMeasured:
      payload:
        type: object
        properties:
          lumens:
            type: integer
            minimum: 0
`

func TestParseYAML(t *testing.T) {
	v, err := Parse([]byte(streetlightsYAML))
	require.NoError(t, err)

	obj, ok := v.(*Object)
	require.True(t, ok, "expected *Object, got %T", v)
	assert.Equal(t, []string{"asyncapi", "info", "servers", "channels", "components"}, obj.Keys())

	version, ok := obj.Get("asyncapi")
	require.True(t, ok)
	assert.Equal(t, String("3.0.0"), version)

	want := map[string]any{
		"payload": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"lumens": map[string]any{"type": "integer", "minimum": int64(0)},
			},
		},
	}
	components, _ := obj.Get("components")
	messages, _ := components.(*Object).Get("messages")
	msg, _ := messages.(*Object).Get("lightMeasured")
	if diff := cmp.Diff(want, ToAny(msg)); diff != "" {
		t.Errorf("lightMeasured mismatch (-want +got):\n%s", diff)
	}
}

func TestParseJSON(t *testing.T) {
	v, err := Parse([]byte(`{"servers": [{"protocol": "amqp"}, {"protocol": "http"}], "n": 1.5, "ok": true, "none": null}`))
	require.NoError(t, err)

	want := map[string]any{
		"servers": []any{
			map[string]any{"protocol": "amqp"},
			map[string]any{"protocol": "http"},
		},
		"n":    1.5,
		"ok":   true,
		"none": nil,
	}
	if diff := cmp.Diff(want, ToAny(v)); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestParseScalars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{"empty document", "", Null{}},
		{"null", "~", Null{}},
		{"bool", "true", Bool(true)},
		{"int", "42", Int(42)},
		{"negative int", "-7", Int(-7)},
		{"float", "2.5", Float(2.5)},
		{"whole float equals int", "3.0", Int(3)},
		{"string", "hello", String("hello")},
		{"quoted number stays string", `"42"`, String("42")},
		{"timestamp stays text", "2001-12-14", String("2001-12-14")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, v), "want %#v, got %#v", tt.want, v)
		})
	}
}

func TestParseNonStringKeys(t *testing.T) {
	v, err := Parse([]byte("responses:\n  200:\n    description: OK\n  true: yes\n"))
	require.NoError(t, err)

	responses, _ := v.(*Object).Get("responses")
	assert.Equal(t, []string{"200", "true"}, responses.(*Object).Keys())
}

func TestParseDuplicateKey(t *testing.T) {
	_, err := ParseSource("dup.yaml", []byte("asyncapi: 3.1.0\nasyncapi: 2.0.0\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, wcerrors.ErrParse)

	var parseErr *wcerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "dup.yaml", parseErr.Path)
	assert.Equal(t, 2, parseErr.Line)
	assert.Contains(t, parseErr.Message, "asyncapi")
}

func TestParseInvalidSyntax(t *testing.T) {
	inputs := []string{
		"key: [unclosed",
		"\"a\": \"unterminated",
		"a: b: c",
	}
	for _, input := range inputs {
		_, err := Parse([]byte(input))
		assert.ErrorIs(t, err, wcerrors.ErrParse, "input %q", input)
	}
}

func TestParseAnchorsAndMerge(t *testing.T) {
	src := `
defaults: &defaults
  protocol: mqtt
  port: 1883
production:
  <<: *defaults
  port: 8883
copy: *defaults
`
	v, err := Parse([]byte(src))
	require.NoError(t, err)

	want := map[string]any{
		"defaults":   map[string]any{"protocol": "mqtt", "port": int64(1883)},
		"production": map[string]any{"protocol": "mqtt", "port": int64(8883)},
		"copy":       map[string]any{"protocol": "mqtt", "port": int64(1883)},
	}
	if diff := cmp.Diff(want, ToAny(v)); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}

	// Aliases share the decoded value.
	obj := v.(*Object)
	a, _ := obj.Get("defaults")
	b, _ := obj.Get("copy")
	assert.Same(t, a.(*Object), b.(*Object))
}

// aliasChain builds levels anchored sequences, each holding width aliases to
// the one before it. The text stays small while the expanded tree grows as
// width^levels.
func aliasChain(levels, width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "l0: &l0 [%s]\n", strings.TrimSuffix(strings.Repeat("x, ", width), ", "))
	for i := 1; i < levels; i++ {
		fmt.Fprintf(&b, "l%d: &l%d [%s]\n", i, i, strings.TrimSuffix(strings.Repeat(fmt.Sprintf("*l%d, ", i-1), width), ", "))
	}
	return b.String()
}

func TestParseExcessiveAliasing(t *testing.T) {
	src := aliasChain(8, 10)
	require.Less(t, len(src), 500)

	_, err := ParseSource("bomb.yaml", []byte(src))
	require.Error(t, err)
	assert.ErrorIs(t, err, wcerrors.ErrResourceLimit)

	var limitErr *wcerrors.ResourceLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, "alias_expansion", limitErr.ResourceType)
	assert.Contains(t, err.Error(), "excessive aliasing")
}

func TestParseModerateAliasing(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"short chain", aliasChain(3, 10)},
		{
			name: "shared schema",
			src:  "schema: &s {type: string, format: email}\nfields: [" + strings.TrimSuffix(strings.Repeat("*s, ", 300), ", ") + "]\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			assert.NoError(t, err)
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o600))

	v, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": int64(1)}, ToAny(v))

	_, err = ParseFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, wcerrors.ErrIO)
}
