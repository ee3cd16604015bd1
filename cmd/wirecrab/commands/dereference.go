package commands

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/G-USI/wirecrab/ast"
	"github.com/G-USI/wirecrab/internal/cliutil"
	"github.com/G-USI/wirecrab/internal/fileutil"
	"github.com/G-USI/wirecrab/resolver"
	"golang.org/x/sync/errgroup"
)

// DereferenceFlags contains flags for the dereference command
type DereferenceFlags struct {
	Format   string
	Output   string
	Rebase   bool
	MaxDepth int
	Quiet    bool
	Verbose  bool
}

// SetupDereferenceFlags creates and configures a FlagSet for the dereference command.
// Returns the FlagSet and a DereferenceFlags struct with bound flag variables.
func SetupDereferenceFlags() (*flag.FlagSet, *DereferenceFlags) {
	fs := flag.NewFlagSet("dereference", flag.ContinueOnError)
	flags := &DereferenceFlags{}

	fs.StringVar(&flags.Format, "format", "", "output format: json or yaml (default: same as the first input)")
	fs.StringVar(&flags.Format, "f", "", "output format (shorthand)")
	fs.StringVar(&flags.Output, "output", "", "write the result to a file instead of stdout")
	fs.StringVar(&flags.Output, "o", "", "output file (shorthand)")
	fs.BoolVar(&flags.Rebase, "rebase", false, "resolve refs inside external documents against that document's location")
	fs.IntVar(&flags.MaxDepth, "max-depth", resolver.DefaultMaxRefDepth, "maximum depth of nested $ref chains")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: no summary on stderr")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: no summary on stderr")
	fs.BoolVar(&flags.Verbose, "verbose", false, "log document loads and reference resolution to stderr")

	fs.Usage = func() {
		output := fs.Output()
		Writef(output, "Usage: wirecrab dereference [flags] <file|url|->...\n\n")
		Writef(output, "Replace every $ref in a document with the value it points to.\n\n")
		Writef(output, "Flags:\n")
		fs.PrintDefaults()
		Writef(output, "\nExamples:\n")
		Writef(output, "  wirecrab dereference asyncapi.yaml\n")
		Writef(output, "  wirecrab dereference -f json -o bundled.json asyncapi.yaml\n")
		Writef(output, "  wirecrab dereference --rebase https://example.com/specs/asyncapi.yaml\n")
		Writef(output, "  cat asyncapi.yaml | wirecrab dereference -q -\n")
		Writef(output, "\nSeveral inputs are dereferenced concurrently and share one document cache.\n")
		Writef(output, "\nExit Codes:\n")
		Writef(output, "  0    All documents dereferenced\n")
		Writef(output, "  1    A document could not be read, parsed, or resolved\n")
	}

	return fs, flags
}

// HandleDereference executes the dereference command
func HandleDereference(args []string) error {
	fs, flags := SetupDereferenceFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("dereference command requires at least one file path, URL, or '-' for stdin")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	inputs := fs.Args()
	stdinCount := 0
	for _, in := range inputs {
		if in == StdinFilePath {
			stdinCount++
		}
	}
	if stdinCount > 1 {
		return fmt.Errorf("stdin ('-') may only be given once")
	}

	var outputPath string
	if flags.Output != "" {
		if len(inputs) > 1 {
			return fmt.Errorf("--output requires exactly one input")
		}
		outputPath = filepath.Clean(flags.Output)
		if err := ValidateOutputPath(outputPath, inputs); err != nil {
			return err
		}
		if err := RejectSymlinkOutput(outputPath); err != nil {
			return err
		}
	}

	r, err := resolver.New(
		resolver.WithLogger(newLogger(flags.Verbose)),
		resolver.WithMaxRefDepth(flags.MaxDepth),
		resolver.WithRebaseExternalRefs(flags.Rebase),
	)
	if err != nil {
		return err
	}

	start := time.Now()
	results := make([]ast.Value, len(inputs))
	var g errgroup.Group
	for i, in := range inputs {
		g.Go(func() error {
			v, err := dereferenceInput(r, in)
			if err != nil {
				return fmt.Errorf("dereferencing %s: %w", FormatSpecPath(in), err)
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	format := flags.Format
	if format == "" {
		format = DetectFormat(inputs[0])
	}

	var buf bytes.Buffer
	for i, v := range results {
		data, err := MarshalValue(v, format)
		if err != nil {
			return err
		}
		if i > 0 && format == FormatYAML {
			buf.WriteString("---\n")
		}
		buf.Write(data)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, buf.Bytes(), fileutil.OutputMode); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
	} else if _, err := stdout.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if !flags.Quiet && cliutil.IsTerminal(stderr) {
		writeSummary(len(inputs), r.Stats(), elapsed)
	}
	return nil
}

func dereferenceInput(r *resolver.Resolver, in string) (ast.Value, error) {
	if in != StdinFilePath {
		return r.ExpandFile(in)
	}
	base, err := readStdin(r)
	if err != nil {
		return nil, err
	}
	doc, err := r.Document(resolver.FileLocation(base))
	if err != nil {
		return nil, err
	}
	return r.Expand(doc, base)
}

func writeSummary(inputs int, stats resolver.Stats, elapsed time.Duration) {
	Writef(stderr, "Dereferenced %s: %s expanded, %s loaded in %v\n",
		cliutil.Count(inputs, "document", "documents"),
		cliutil.Count(stats.RefsExpanded, "reference", "references"),
		cliutil.Count(stats.DocumentsLoaded, "document", "documents"),
		elapsed.Round(time.Millisecond))
}
