// FILE: config-builder/extract.go
package configbuilder

import (
	"fmt"
	"maps"
	"strings"
)

// Outcome is the result of one extraction attempt. The zero value is absence,
// which differs from a present empty string.
type Outcome struct {
	Value   string
	Kind    Kind
	Present bool
}

// Absent returns the outcome of a source that has no value for a field.
func Absent() Outcome { return Outcome{} }

// Found returns a present outcome read from a source of the given kind.
func Found(kind Kind, value string) Outcome {
	return Outcome{Value: value, Kind: kind, Present: true}
}

// Strategy pulls a raw string for a directive out of a build context.
// A missing value is reported as Absent, never as an error; errors are reserved
// for malformed directive parameters. Implementations must be stateless.
type Strategy interface {
	Extract(d Directive, ctx *BuildContext) (Outcome, error)
}

// StrategyFunc adapts a plain function to Strategy.
type StrategyFunc func(d Directive, ctx *BuildContext) (Outcome, error)

func (f StrategyFunc) Extract(d Directive, ctx *BuildContext) (Outcome, error) {
	return f(d, ctx)
}

// Strategies maps directive kinds to the strategy that serves them.
type Strategies map[Kind]Strategy

var builtinStrategies = Strategies{
	KindProperty:       StrategyFunc(extractProperty),
	KindCommandLine:    StrategyFunc(extractCommandLine),
	KindSystemProperty: StrategyFunc(extractSystemProperty),
	KindEnv:            StrategyFunc(extractEnv),
	KindDefault:        StrategyFunc(extractDefault),
}

// DefaultStrategies returns a copy of the built-in strategy registry.
func DefaultStrategies() Strategies {
	return maps.Clone(builtinStrategies)
}

func extractProperty(d Directive, ctx *BuildContext) (Outcome, error) {
	if d.Key == "" {
		return Absent(), fmt.Errorf("%w: empty property key", ErrMalformedDirective)
	}
	if v, ok := ctx.Properties[d.Key]; ok {
		return Found(KindProperty, v), nil
	}
	return Absent(), nil
}

func extractCommandLine(d Directive, ctx *BuildContext) (Outcome, error) {
	if !isValidOptionName(d.Key) {
		return Absent(), fmt.Errorf("%w: invalid option name %q", ErrMalformedDirective, d.Key)
	}
	if v, ok := ctx.CommandLine[d.Key]; ok {
		return Found(KindCommandLine, v), nil
	}
	return Absent(), nil
}

func extractSystemProperty(d Directive, ctx *BuildContext) (Outcome, error) {
	if d.Key == "" {
		return Absent(), fmt.Errorf("%w: empty system property key", ErrMalformedDirective)
	}
	if v, ok := ctx.SystemProperties[d.Key]; ok {
		return Found(KindSystemProperty, v), nil
	}
	return Absent(), nil
}

func extractEnv(d Directive, ctx *BuildContext) (Outcome, error) {
	if d.Key == "" || strings.ContainsAny(d.Key, "=\x00") {
		return Absent(), fmt.Errorf("%w: invalid environment variable name %q", ErrMalformedDirective, d.Key)
	}
	// A variable set to the empty string is present
	if v, ok := ctx.lookupEnv(d.Key); ok {
		return Found(KindEnv, v), nil
	}
	return Absent(), nil
}

func extractDefault(d Directive, _ *BuildContext) (Outcome, error) {
	return Found(KindDefault, d.Key), nil
}
