// Package commands provides CLI command handlers for wirecrab.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/G-USI/wirecrab/ast"
	"github.com/G-USI/wirecrab/internal/cliutil"
	"github.com/G-USI/wirecrab/resolver"
)

// Output format constants
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// Streams used by the handlers. Tests replace them.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Writef writes formatted output to the writer.
func Writef(w io.Writer, format string, args ...any) {
	cliutil.Writef(w, format, args...)
}

// ValidateOutputFormat validates an output format and returns an error if invalid.
// An empty format means "same as the input".
func ValidateOutputFormat(format string) error {
	if format != "" && format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s", format, FormatJSON, FormatYAML)
	}
	return nil
}

// DetectFormat picks the output format for a document read from path when
// none was requested: JSON for .json files, YAML otherwise.
func DetectFormat(path string) string {
	if strings.EqualFold(filepath.Ext(stripQuery(path)), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

func stripQuery(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		return path[:i]
	}
	return path
}

// MarshalValue encodes v in format, preserving member order.
func MarshalValue(v ast.Value, format string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = ast.MarshalJSONIndent(v, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case FormatYAML:
		data, err = ast.MarshalYAML(v)
	default:
		return nil, fmt.Errorf("invalid format for structured output: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("marshaling to %s: %w", format, err)
	}
	return data, nil
}

// ValidateOutputPath checks that writing to outputPath will not clobber one
// of the inputs and warns when it replaces an existing file.
func ValidateOutputPath(outputPath string, inputPaths []string) error {
	absOutputPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	for _, inputPath := range inputPaths {
		if inputPath == StdinFilePath || resolver.ParseLocation(inputPath).IsURL() {
			continue
		}
		absInputPath, err := filepath.Abs(inputPath)
		if err != nil {
			return fmt.Errorf("invalid input path %s: %w", inputPath, err)
		}
		if absOutputPath == absInputPath {
			return fmt.Errorf("output file %s would overwrite input file %s", outputPath, inputPath)
		}
	}

	if _, err := os.Stat(outputPath); err == nil {
		Writef(stderr, "Warning: output file %s already exists and will be overwritten\n", outputPath)
	}
	return nil
}

// RejectSymlinkOutput returns an error if the output path is a symlink.
func RejectSymlinkOutput(cleanedPath string) error {
	info, err := os.Lstat(cleanedPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("commands: checking output path: %w", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("commands: refusing to write to symlink: %s", cleanedPath)
	}
	return nil
}

// FormatSpecPath returns a display-friendly path for a document argument.
func FormatSpecPath(specPath string) string {
	if specPath == StdinFilePath {
		return "<stdin>"
	}
	return specPath
}

// newLogger returns the resolver logger for the --verbose flag. Debug records
// go to stderr as text; without the flag nothing is logged.
func newLogger(verbose bool) resolver.Logger {
	if !verbose {
		return resolver.NopLogger{}
	}
	h := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	return resolver.NewSlogAdapter(slog.New(h))
}

// readStdin parses stdin and registers it with r under a location in the
// working directory, so relative references resolve against it. It returns
// the location string to expand from.
func readStdin(r *resolver.Resolver) (string, error) {
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	doc, err := ast.ParseSource("<stdin>", data)
	if err != nil {
		return "", err
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	loc := resolver.FileLocation(filepath.Join(wd, "<stdin>"))
	r.AddDocument(loc, doc)
	return loc.String(), nil
}
