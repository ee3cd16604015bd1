package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type dereferenceInput struct {
	Spec   specInput `json:"spec"             jsonschema:"The document to dereference"`
	Format string    `json:"format,omitempty" jsonschema:"Output format: json or yaml (default: same as input)"`
	Rebase bool      `json:"rebase,omitempty" jsonschema:"Resolve refs inside external documents against those documents (always on when WIRECRAB_REBASE_EXTERNAL_REFS is set)"`
}

type dereferenceOutput struct {
	Format          string `json:"format"`
	Document        string `json:"document"`
	RefsExpanded    int    `json:"refs_expanded"`
	DocumentsLoaded int    `json:"documents_loaded"`
}

func handleDereference(_ context.Context, _ *mcp.CallToolRequest, input dereferenceInput) (*mcp.CallToolResult, dereferenceOutput, error) {
	session, err := input.Spec.resolve(cfg.RebaseExternalRefs || input.Rebase)
	if err != nil {
		return errResult(err), dereferenceOutput{}, nil
	}

	doc, err := session.dereference()
	if err != nil {
		return errResult(err), dereferenceOutput{}, nil
	}

	format := input.Format
	if format == "" {
		format = session.format
	}
	text, err := marshalValue(doc, format)
	if err != nil {
		return errResult(err), dereferenceOutput{}, nil
	}

	stats := session.resolver.Stats()
	return nil, dereferenceOutput{
		Format:          format,
		Document:        text,
		RefsExpanded:    stats.RefsExpanded,
		DocumentsLoaded: stats.CachedDocuments,
	}, nil
}
