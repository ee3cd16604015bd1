package main

import (
	"fmt"
	"os"

	"github.com/G-USI/wirecrab"
	"github.com/G-USI/wirecrab/cmd/wirecrab/commands"
)

// commandNames lists the sub-commands offered as typo suggestions.
var commandNames = []string{"dereference", "resolve", "mcp", "version", "help"}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "version", "-v", "--version":
		fmt.Printf("wirecrab v%s\n", wirecrab.Version())
		if len(args) > 0 && args[0] == "--long" {
			fmt.Println(wirecrab.BuildInfo())
		}
		return
	case "help", "-h", "--help":
		printUsage()
		return
	case "dereference", "deref":
		err = commands.HandleDereference(args)
	case "resolve":
		err = commands.HandleResolve(args)
	case "mcp":
		err = commands.HandleMCP(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		if s := suggestCommand(command); s != "" {
			fmt.Fprintf(os.Stderr, "Did you mean '%s'?\n", s)
		}
		fmt.Fprintln(os.Stderr)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// suggestCommand returns the known command closest to input, or "" when
// nothing is within an edit distance of two.
func suggestCommand(input string) string {
	best, bestDist := "", 3
	for _, name := range commandNames {
		if d := editDistance(input, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// editDistance is the Levenshtein distance between a and b.
func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func printUsage() {
	fmt.Println(`wirecrab - $ref dereferencing for AsyncAPI and JSON/YAML documents

Usage:
  wirecrab <command> [options]

Commands:
  dereference Replace every $ref in one or more documents with its target
  resolve     Print the value a single $ref points to
  mcp         Serve the dereference tools over MCP (stdio)
  version     Show version information
  help        Show this help message

Examples:
  wirecrab dereference asyncapi.yaml
  wirecrab dereference -f json -o bundled.json asyncapi.yaml
  wirecrab resolve asyncapi.yaml '#/components/schemas/User'
  wirecrab dereference https://example.com/specs/asyncapi.yaml

Run 'wirecrab <command> --help' for more information on a command.`)
}
