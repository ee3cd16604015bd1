// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes wirecrab's $ref dereferencing as MCP tools over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/G-USI/wirecrab"
	"github.com/G-USI/wirecrab/ast"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `wirecrab MCP server: dereferences $ref pointers in YAML/JSON specifications (AsyncAPI, OpenAPI, JSON Schema).

Configuration: All defaults are configurable via WIRECRAB_* environment variables set in your MCP client config.

Key settings:
- WIRECRAB_CACHE_FILE_TTL (default: 15m): cache TTL for local file specs
- WIRECRAB_CACHE_URL_TTL (default: 5m): cache TTL for URL-fetched specs
- WIRECRAB_CACHE_ENABLED (default: true): disable spec caching entirely
- WIRECRAB_MAX_REF_DEPTH (default: 100): maximum nesting of $ref chains
- WIRECRAB_MAX_INLINE_SIZE / WIRECRAB_MAX_FILE_SIZE (default: 10MB): size limits for inline content and loaded documents (bytes, or KB/MB/GB)
- WIRECRAB_REBASE_EXTERNAL_REFS (default: false): resolve refs inside external documents against those documents
- WIRECRAB_ALLOW_PRIVATE_IPS (default: false): allow fetching from private networks

Caching: Each distinct input keeps one resolver, so repeated calls reuse loaded documents and resolved refs. File entries are keyed by path and mtime and are rebuilt when the root file or any local file it references changes. URL entries use a shorter TTL, and changes to fetched documents show up only after it expires. Expired entries are swept every WIRECRAB_CACHE_SWEEP_INTERVAL (default: 1m).`

// Run serves the wirecrab tools on stdin/stdout until the client hangs up or
// ctx is cancelled.
func Run(ctx context.Context) error {
	if cfg.CacheEnabled {
		specCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}
	slog.Debug("starting MCP server",
		"version", wirecrab.Version(),
		"cache", cfg.CacheEnabled,
		"max_ref_depth", cfg.MaxRefDepth,
		"allow_private_ips", cfg.AllowPrivateIPs)

	server := mcp.NewServer(
		&mcp.Implementation{Name: "wirecrab", Version: wirecrab.Version()},
		&mcp.ServerOptions{Instructions: serverInstructions},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "dereference",
		Description: "Dereference a YAML or JSON specification: every $ref is replaced by the value it points to, " +
			"producing one self-contained document. Local refs (#/components/...), relative files and URLs are supported. " +
			"Circular references are reported as errors. Use rebase=true when external documents contain refs relative to themselves.",
	}, handleDereference)

	mcp.AddTool(server, &mcp.Tool{
		Name: "resolve_ref",
		Description: "Resolve a single reference string (e.g. '#/components/schemas/User' or 'common.yaml#/messages/Ping') " +
			"against a specification and return the value it points to. Set expand=true to also dereference any $ref inside the result.",
	}, handleResolveRef)
}

// encoders maps the format names tools accept to order-preserving encoders.
var encoders = map[string]func(ast.Value) ([]byte, error){
	"json": func(v ast.Value) ([]byte, error) { return ast.MarshalJSONIndent(v, "", "  ") },
	"yaml": ast.MarshalYAML,
}

func marshalValue(v ast.Value, format string) (string, error) {
	enc, ok := encoders[format]
	if !ok {
		return "", fmt.Errorf("invalid format %q; valid values: json, yaml", format)
	}
	data, err := enc(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Absolute paths in error text are replaced before it reaches the client.
var (
	unixPathPattern    = regexp.MustCompile(`/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*`)
	windowsPathPattern = regexp.MustCompile(`\b[A-Za-z]:\\[^\s:"']*`)
)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := unixPathPattern.ReplaceAllString(err.Error(), "<path>")
	return windowsPathPattern.ReplaceAllString(msg, "<path>")
}

func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
