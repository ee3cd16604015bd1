package resolver

import (
	"testing"

	"github.com/G-USI/wirecrab/ast"
	"github.com/G-USI/wirecrab/pointer"
	"github.com/G-USI/wirecrab/wcerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serversDoc = `{"servers": [{"protocol":"amqp"},{"protocol":"http"}], "info": {"title": "x", "tags": []}}`

func mustParseDoc(t *testing.T, src string) ast.Value {
	t.Helper()
	doc, err := ast.Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

func TestTraverse(t *testing.T) {
	doc := mustParseDoc(t, serversDoc)

	tests := []struct {
		name string
		ptr  string
		want any
	}{
		{"root", "#/", ast.ToAny(doc)},
		{"first server", "#/servers/0", map[string]any{"protocol": "amqp"}},
		{"second server", "#/servers/1", map[string]any{"protocol": "http"}},
		{"scalar target", "#/servers/1/protocol", "http"},
		{"empty array target", "#/info/tags", []any{}},
		{"leading zeros", "#/servers/01", map[string]any{"protocol": "http"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Traverse(doc, pointer.MustParse(tt.ptr))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ast.ToAny(got))
		})
	}
}

func TestTraverseErrors(t *testing.T) {
	doc := mustParseDoc(t, serversDoc)

	tests := []struct {
		name     string
		ptr      string
		kind     wcerrors.TraversalKind
		sentinel error
		segment  string
	}{
		{"index out of bounds", "#/servers/5", wcerrors.IndexOutOfBounds, wcerrors.ErrIndexOutOfBounds, "5"},
		{"index equal to length", "#/servers/2", wcerrors.IndexOutOfBounds, wcerrors.ErrIndexOutOfBounds, "2"},
		{"non-numeric index", "#/servers/x", wcerrors.InvalidIndex, wcerrors.ErrInvalidIndex, "x"},
		{"negative index", "#/servers/-1", wcerrors.InvalidIndex, wcerrors.ErrInvalidIndex, "-1"},
		{"missing key", "#/channels", wcerrors.KeyNotFound, wcerrors.ErrKeyNotFound, "channels"},
		{"into scalar", "#/info/title/x", wcerrors.NotTraversable, wcerrors.ErrNotTraversable, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Traverse(doc, pointer.MustParse(tt.ptr))
			require.Error(t, err)
			assert.ErrorIs(t, err, wcerrors.ErrTraversal)
			assert.ErrorIs(t, err, tt.sentinel)

			var te *wcerrors.TraversalError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.kind, te.Kind)
			assert.Equal(t, tt.segment, te.Segment)
			assert.Equal(t, tt.ptr, te.Pointer)
		})
	}
}

func TestTraverseEscapedKeys(t *testing.T) {
	doc := mustParseDoc(t, `{"paths": {"/pets": {"get": 1}}, "a~b": 2}`)

	got, err := Traverse(doc, pointer.MustParse("#/paths/~1pets/get"))
	require.NoError(t, err)
	assert.Equal(t, ast.Int(1), got)

	got, err = Traverse(doc, pointer.MustParse("#/a~0b"))
	require.NoError(t, err)
	assert.Equal(t, ast.Int(2), got)
}
