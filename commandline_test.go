// FILE: config-builder/commandline_test.go
package configbuilder

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliConfig struct {
	Port     int    `cli:"port,short=p,arg,desc=listen port" default:"8080"`
	Verbose  bool   `cli:"verbose,short=v,desc=verbose output" default:"false"`
	Language string `cli:"language,arg,required,desc=display language"`
	Mirror   int    `cli:"port,short=p,arg" property:"mirror.port"`
}

func cliDescriptors(t *testing.T) []FieldDescriptor {
	t.Helper()
	descs, err := DescribeType(reflect.TypeFor[cliConfig]())
	require.NoError(t, err)
	return descs
}

func TestParseCommandLine(t *testing.T) {
	descs := cliDescriptors(t)

	t.Run("LongShortAndSwitches", func(t *testing.T) {
		values, err := parseCommandLine(descs, []string{"-p", "9090", "--language=de-DE", "-v", "positional"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"port":     "9090",
			"language": "de-DE",
			"verbose":  "true",
		}, values)
	})

	t.Run("OnlyGivenOptionsAreReported", func(t *testing.T) {
		values, err := parseCommandLine(descs, []string{"--language", "en"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"language": "en"}, values)
	})

	t.Run("MissingRequiredOption", func(t *testing.T) {
		_, err := parseCommandLine(descs, []string{"--port", "1"})
		assert.True(t, errors.Is(err, ErrMissingOption))
		assert.ErrorContains(t, err, "--language")
	})

	t.Run("HelpRequested", func(t *testing.T) {
		for _, arg := range []string{"-h", "--help"} {
			_, err := parseCommandLine(descs, []string{arg})
			assert.True(t, errors.Is(err, ErrHelpRequested), arg)
		}
	})

	t.Run("UnknownOption", func(t *testing.T) {
		_, err := parseCommandLine(descs, []string{"--language", "en", "--color"})
		assert.True(t, errors.Is(err, ErrCommandLine))
	})

	t.Run("MissingArgument", func(t *testing.T) {
		_, err := parseCommandLine(descs, []string{"--language"})
		assert.True(t, errors.Is(err, ErrCommandLine))
	})
}

func TestCommandLineFlagSetConflicts(t *testing.T) {
	t.Run("SameNameDifferentArity", func(t *testing.T) {
		type cfg struct {
			A string `cli:"mode,arg"`
			B bool   `cli:"mode"`
		}
		descs, err := DescribeType(reflect.TypeFor[cfg]())
		require.NoError(t, err)

		_, _, err = commandLineFlagSet("test", descs)
		assert.True(t, errors.Is(err, ErrMalformedDirective))
	})

	t.Run("ShortInUse", func(t *testing.T) {
		type cfg struct {
			A string `cli:"alpha,short=a,arg"`
			B string `cli:"apple,short=a,arg"`
		}
		descs, err := DescribeType(reflect.TypeFor[cfg]())
		require.NoError(t, err)

		_, _, err = commandLineFlagSet("test", descs)
		assert.True(t, errors.Is(err, ErrMalformedDirective))
	})
}

func TestCommandLineUsage(t *testing.T) {
	usage, err := commandLineUsage(cliDescriptors(t))
	require.NoError(t, err)
	assert.Contains(t, usage, "-p, --port string")
	assert.Contains(t, usage, "listen port")
	assert.Contains(t, usage, "-v, --verbose")
	assert.Contains(t, usage, "--language string")
}
