package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDereferenceTool_Content(t *testing.T) {
	specCache.reset()
	input := dereferenceInput{Spec: specInput{Content: testSpecYAML}}

	result, output, err := handleDereference(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	require.Nil(t, result)

	assert.Equal(t, "yaml", output.Format)
	assert.NotContains(t, output.Document, "$ref")
	assert.Contains(t, output.Document, "lumens")
	// Two refs under channels plus the payload ref under components.
	assert.Equal(t, 3, output.RefsExpanded)
	assert.Equal(t, 1, output.DocumentsLoaded)
}

func TestDereferenceTool_JSONOutput(t *testing.T) {
	specCache.reset()
	input := dereferenceInput{
		Spec:   specInput{Content: `{"a": {"$ref": "#/b"}, "b": {"value": 1}}`},
		Format: "json",
	}

	_, output, err := handleDereference(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	assert.Equal(t, "json", output.Format)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(output.Document), &got))
	assert.Equal(t, map[string]any{
		"a": map[string]any{"value": float64(1)},
		"b": map[string]any{"value": float64(1)},
	}, got)
}

func TestDereferenceTool_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   dereferenceInput
		message string
	}{
		{
			name:    "circular",
			input:   dereferenceInput{Spec: specInput{Content: `{"a": {"$ref": "#/b"}, "b": {"$ref": "#/a"}}`}},
			message: "circular reference",
		},
		{
			name:    "missing target",
			input:   dereferenceInput{Spec: specInput{Content: `{"a": {"$ref": "#/nope"}}`}},
			message: "key not found",
		},
		{
			name:    "bad format",
			input:   dereferenceInput{Spec: specInput{Content: `{"a": 1}`}, Format: "toml"},
			message: "invalid format",
		},
		{
			name:    "no input",
			input:   dereferenceInput{},
			message: "exactly one of file, url, or content",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specCache.reset()
			result, _, err := handleDereference(context.Background(), &mcp.CallToolRequest{}, tt.input)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.True(t, result.IsError)
			require.Len(t, result.Content, 1)
			text := result.Content[0].(*mcp.TextContent).Text
			assert.Contains(t, text, tt.message)
		})
	}
}

func TestDereferenceTool_FileWithExternalRefs(t *testing.T) {
	specCache.reset()
	dir := t.TempDir()
	root := writeSpec(t, dir, "asyncapi.json", `{"servers": {"prod": {"$ref": "servers/prod.json"}}}`)
	writeSpec(t, dir, "servers/prod.json", `{"host": "broker.internal", "protocol": "amqp", "security": {"$ref": "security.json"}}`)
	writeSpec(t, dir, "servers/security.json", `{"type": "userPassword"}`)

	_, output, err := handleDereference(context.Background(), &mcp.CallToolRequest{}, dereferenceInput{
		Spec:   specInput{File: root},
		Rebase: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "json", output.Format)
	assert.Equal(t, 3, output.DocumentsLoaded)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(output.Document), &got))
	assert.Equal(t, map[string]any{
		"servers": map[string]any{"prod": map[string]any{
			"host":     "broker.internal",
			"protocol": "amqp",
			"security": map[string]any{"type": "userPassword"},
		}},
	}, got)
}

func TestDereferenceTool_ReloadsChangedExternalFile(t *testing.T) {
	specCache.reset()
	dir := t.TempDir()
	root := writeSpec(t, dir, "asyncapi.yaml", "info:\n  $ref: 'info.yaml'\n")
	info := writeSpec(t, dir, "info.yaml", "title: Before\n")
	input := dereferenceInput{Spec: specInput{File: root}}

	_, output, err := handleDereference(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	assert.Contains(t, output.Document, "title: Before")

	require.NoError(t, os.WriteFile(info, []byte("title: After\n"), 0o600))
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(info, later, later))

	_, output, err = handleDereference(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	assert.Contains(t, output.Document, "title: After")
	assert.Equal(t, 1, specCache.len())
}

func TestDereferenceTool_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/asyncapi.yaml":
			_, _ = w.Write([]byte("info:\n  $ref: 'info.yaml'\n"))
		case "/info.yaml":
			_, _ = w.Write([]byte("title: Remote\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	t.Run("private addresses are blocked by default", func(t *testing.T) {
		specCache.reset()
		result, _, err := handleDereference(context.Background(), &mcp.CallToolRequest{}, dereferenceInput{
			Spec: specInput{URL: srv.URL + "/asyncapi.yaml"},
		})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.IsError)
	})

	t.Run("allowed when configured", func(t *testing.T) {
		specCache.reset()
		withConfig(t, func(c *serverConfig) { c.AllowPrivateIPs = true })

		result, output, err := handleDereference(context.Background(), &mcp.CallToolRequest{}, dereferenceInput{
			Spec: specInput{URL: srv.URL + "/asyncapi.yaml"},
		})
		require.NoError(t, err)
		require.Nil(t, result)
		assert.Contains(t, output.Document, "title: Remote")
	})
}

func TestSanitizeError(t *testing.T) {
	assert.Empty(t, sanitizeError(nil))

	msg := sanitizeError(errString("failed to read file /home/alice/specs/api.yaml: no such file"))
	assert.Equal(t, "failed to read file <path>: no such file", msg)

	msg = sanitizeError(errString("failed to read file C:\\Users\\alice\\api.yaml: denied"))
	assert.Equal(t, "failed to read file <path>: denied", msg)
}

type errString string

func (e errString) Error() string { return string(e) }
