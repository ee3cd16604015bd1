package mcpserver

import (
	"context"
	"errors"

	"github.com/G-USI/wirecrab/ast"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type resolveRefInput struct {
	Spec   specInput `json:"spec"             jsonschema:"The document the reference is relative to"`
	Ref    string    `json:"ref"              jsonschema:"Reference string, e.g. #/components/schemas/User or common.yaml#/messages/Ping"`
	Expand bool      `json:"expand,omitempty" jsonschema:"Also dereference any $ref inside the resolved value"`
	Format string    `json:"format,omitempty" jsonschema:"Output format: json or yaml (default: same as input)"`
}

type resolveRefOutput struct {
	Ref    string `json:"ref"`
	Kind   string `json:"kind"`
	Format string `json:"format"`
	Value  string `json:"value"`
}

func handleResolveRef(_ context.Context, _ *mcp.CallToolRequest, input resolveRefInput) (*mcp.CallToolResult, resolveRefOutput, error) {
	if input.Ref == "" {
		return errResult(errors.New("ref is required")), resolveRefOutput{}, nil
	}

	session, err := input.Spec.resolve(cfg.RebaseExternalRefs)
	if err != nil {
		return errResult(err), resolveRefOutput{}, nil
	}

	v, err := session.resolveRef(input.Ref)
	if err != nil {
		return errResult(err), resolveRefOutput{}, nil
	}
	if input.Expand {
		v, err = session.resolver.Expand(v, session.base)
		if err != nil {
			return errResult(err), resolveRefOutput{}, nil
		}
	}

	format := input.Format
	if format == "" {
		format = session.format
	}
	text, err := marshalValue(v, format)
	if err != nil {
		return errResult(err), resolveRefOutput{}, nil
	}

	return nil, resolveRefOutput{
		Ref:    input.Ref,
		Kind:   ast.KindOf(v).String(),
		Format: format,
		Value:  text,
	}, nil
}
