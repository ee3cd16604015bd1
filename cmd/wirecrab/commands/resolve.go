package commands

import (
	"errors"
	"flag"
	"fmt"

	"github.com/G-USI/wirecrab/resolver"
)

// ResolveFlags contains flags for the resolve command
type ResolveFlags struct {
	Format  string
	Expand  bool
	Verbose bool
}

// SetupResolveFlags creates and configures a FlagSet for the resolve command.
// Returns the FlagSet and a ResolveFlags struct with bound flag variables.
func SetupResolveFlags() (*flag.FlagSet, *ResolveFlags) {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	flags := &ResolveFlags{}

	fs.StringVar(&flags.Format, "format", "", "output format: json or yaml (default: same as the input)")
	fs.StringVar(&flags.Format, "f", "", "output format (shorthand)")
	fs.BoolVar(&flags.Expand, "expand", false, "also replace $refs inside the resolved value")
	fs.BoolVar(&flags.Verbose, "verbose", false, "log document loads and reference resolution to stderr")

	fs.Usage = func() {
		output := fs.Output()
		Writef(output, "Usage: wirecrab resolve [flags] <file|url|-> <ref>\n\n")
		Writef(output, "Print the value a single $ref points to, relative to a document.\n\n")
		Writef(output, "Flags:\n")
		fs.PrintDefaults()
		Writef(output, "\nExamples:\n")
		Writef(output, "  wirecrab resolve asyncapi.yaml '#/components/schemas/User'\n")
		Writef(output, "  wirecrab resolve asyncapi.yaml 'schemas/user.yaml#/properties/email'\n")
		Writef(output, "  wirecrab resolve --expand -f json asyncapi.yaml '#/channels/userSignedUp'\n")
	}

	return fs, flags
}

// HandleResolve executes the resolve command
func HandleResolve(args []string) error {
	fs, flags := SetupResolveFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("resolve command requires a document and a reference")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	specPath, ref := fs.Arg(0), fs.Arg(1)

	r, err := resolver.New(resolver.WithLogger(newLogger(flags.Verbose)))
	if err != nil {
		return err
	}

	base := resolver.ParseLocation(specPath).String()
	if specPath == StdinFilePath {
		if base, err = readStdin(r); err != nil {
			return err
		}
	}

	v, err := r.ResolveRef(base, ref)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", ref, err)
	}
	if flags.Expand {
		if v, err = r.Expand(v, base); err != nil {
			return fmt.Errorf("expanding %s: %w", ref, err)
		}
	}

	format := flags.Format
	if format == "" {
		format = DetectFormat(specPath)
	}
	data, err := MarshalValue(v, format)
	if err != nil {
		return err
	}
	if _, err := stdout.Write(data); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
