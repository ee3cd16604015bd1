package mcpserver

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRefTool(t *testing.T) {
	tests := []struct {
		name     string
		input    resolveRefInput
		kind     string
		contains []string
		excludes []string
	}{
		{
			name:     "object target",
			input:    resolveRefInput{Spec: specInput{Content: testSpecYAML}, Ref: "#/components/schemas/lightMeasuredPayload"},
			kind:     "object",
			contains: []string{"lumens", "integer"},
		},
		{
			name:     "scalar target",
			input:    resolveRefInput{Spec: specInput{Content: testSpecYAML}, Ref: "#/info/title"},
			kind:     "string",
			contains: []string{"Streetlights"},
		},
		{
			name:     "unexpanded keeps refs",
			input:    resolveRefInput{Spec: specInput{Content: testSpecYAML}, Ref: "#/components/messages/lightMeasured"},
			kind:     "object",
			contains: []string{"$ref"},
		},
		{
			name:     "expanded replaces refs",
			input:    resolveRefInput{Spec: specInput{Content: testSpecYAML}, Ref: "#/components/messages/lightMeasured", Expand: true},
			kind:     "object",
			contains: []string{"lumens"},
			excludes: []string{"$ref"},
		},
		{
			name:     "json format",
			input:    resolveRefInput{Spec: specInput{Content: testSpecYAML}, Ref: "#/info", Format: "json"},
			kind:     "object",
			contains: []string{`"title": "Streetlights"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specCache.reset()
			result, output, err := handleResolveRef(context.Background(), &mcp.CallToolRequest{}, tt.input)
			require.NoError(t, err)
			require.Nil(t, result)
			assert.Equal(t, tt.input.Ref, output.Ref)
			assert.Equal(t, tt.kind, output.Kind)
			for _, s := range tt.contains {
				assert.Contains(t, output.Value, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, output.Value, s)
			}
		})
	}
}

func TestResolveRefTool_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   resolveRefInput
		message string
	}{
		{"missing ref", resolveRefInput{Spec: specInput{Content: testSpecYAML}}, "ref is required"},
		{"invalid pointer", resolveRefInput{Spec: specInput{Content: testSpecYAML}, Ref: "#info"}, "invalid pointer"},
		{"out of bounds", resolveRefInput{Spec: specInput{Content: `{"servers": [1]}`}, Ref: "#/servers/3"}, "index out of bounds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specCache.reset()
			result, _, err := handleResolveRef(context.Background(), &mcp.CallToolRequest{}, tt.input)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.True(t, result.IsError)
			assert.Contains(t, result.Content[0].(*mcp.TextContent).Text, tt.message)
		})
	}
}

func TestResolveRefTool_SharesSessionCache(t *testing.T) {
	specCache.reset()
	input := resolveRefInput{Spec: specInput{Content: testSpecYAML}, Ref: "#/info/title"}

	_, _, err := handleResolveRef(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	_, _, err = handleResolveRef(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)

	session, err := input.Spec.resolve(cfg.RebaseExternalRefs)
	require.NoError(t, err)
	stats := session.resolver.Stats()
	assert.Equal(t, 1, stats.SubtreeCacheHits)
	assert.Equal(t, 1, stats.CachedSubtrees)
}
