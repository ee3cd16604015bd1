package commands

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"

	"github.com/G-USI/wirecrab/internal/mcpserver"
)

// HandleMCP starts the MCP server on stdin/stdout and blocks until the client
// disconnects or the process is interrupted.
func HandleMCP(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.Usage = func() {
		output := fs.Output()
		Writef(output, "Usage: wirecrab mcp\n\n")
		Writef(output, "Serve the dereference and resolve_ref tools over MCP on stdio.\n")
		Writef(output, "\nEnvironment:\n")
		Writef(output, "  WIRECRAB_CACHE_ENABLED, WIRECRAB_CACHE_MAX_SIZE, WIRECRAB_CACHE_*_TTL\n")
		Writef(output, "  WIRECRAB_MAX_INLINE_SIZE, WIRECRAB_MAX_FILE_SIZE, WIRECRAB_MAX_REF_DEPTH\n")
		Writef(output, "  WIRECRAB_REBASE_EXTERNAL_REFS, WIRECRAB_ALLOW_PRIVATE_IPS\n")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return mcpserver.Run(ctx)
}
