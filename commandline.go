// FILE: config-builder/commandline.go
package configbuilder

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/pflag"
)

// commandLineFlagSet declares one flag per distinct cli option of descs.
// A name shared by several fields must be declared identically.
func commandLineFlagSet(name string, descs []FieldDescriptor) (*pflag.FlagSet, []string, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	declared := make(map[string]OptionSpec)
	var required []string

	for _, fd := range descs {
		for _, d := range fd.Directives {
			if d.Kind != KindCommandLine {
				continue
			}

			if prev, ok := declared[d.Key]; ok {
				if prev.HasArg != d.Option.HasArg || prev.Short != d.Option.Short {
					return nil, nil, fmt.Errorf("%w: option %q is declared with conflicting parameters on %s",
						ErrMalformedDirective, d.Key, fd.Name)
				}
				continue
			}
			if d.Option.Short != "" && fs.ShorthandLookup(d.Option.Short) != nil {
				return nil, nil, fmt.Errorf("%w: short option -%s of %q is already in use",
					ErrMalformedDirective, d.Option.Short, d.Key)
			}

			if d.Option.HasArg {
				fs.StringP(d.Key, d.Option.Short, "", d.Option.Description)
			} else {
				fs.BoolP(d.Key, d.Option.Short, false, d.Option.Description)
			}
			declared[d.Key] = d.Option
			if d.Option.Required {
				required = append(required, d.Key)
			}
		}
	}

	return fs, required, nil
}

// parseCommandLine returns the options given in args, keyed by long name.
// Switches given without a value read as "true". Positional arguments are ignored.
func parseCommandLine(descs []FieldDescriptor, args []string) (map[string]string, error) {
	fs, required, err := commandLineFlagSet("config", descs)
	if err != nil {
		return nil, err
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, ErrHelpRequested
		}
		return nil, fmt.Errorf("%w: %w", ErrCommandLine, err)
	}

	var missing []string
	for _, name := range required {
		if !fs.Changed(name) {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, fmt.Errorf("%w: %v", ErrMissingOption, missing)
	}

	values := make(map[string]string)
	fs.Visit(func(f *pflag.Flag) {
		values[f.Name] = f.Value.String()
	})
	return values, nil
}

// commandLineUsage renders the option table for descs.
func commandLineUsage(descs []FieldDescriptor) (string, error) {
	fs, _, err := commandLineFlagSet("config", descs)
	if err != nil {
		return "", err
	}
	return fs.FlagUsages(), nil
}
