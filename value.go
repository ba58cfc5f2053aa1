// FILE: config-builder/value.go
package configbuilder

import (
	"fmt"
)

// valueExtractor resolves the typed value of one field.
type valueExtractor struct {
	strategies   Strategies
	transformers Transformers
	messages     *ErrorMessages
}

// extract tries the field's directives in trial order and transforms the first
// present outcome. Directives after the first present outcome are not evaluated.
// A nil value with a nil error means no source had a value.
func (e *valueExtractor) extract(fd FieldDescriptor, ctx *BuildContext) (any, Outcome, error) {
	selected := Absent()

	for _, d := range fd.ordered(ctx.Order) {
		strategy, ok := e.strategies[d.Kind]
		if !ok {
			return nil, selected, e.extractionError(fd, d, fmt.Errorf("%w for kind %s", ErrNoStrategy, d.Kind))
		}

		outcome, err := strategy.Extract(d, ctx)
		if err != nil {
			return nil, selected, e.extractionError(fd, d, err)
		}
		if outcome.Present {
			selected = outcome
			break
		}
	}

	if !selected.Present {
		return nil, selected, nil
	}

	value, err := e.transform(fd, selected.Value)
	if err != nil {
		return nil, selected, err
	}
	return value, selected, nil
}

// transform runs the field's custom steps in order, then the built-in conversion.
func (e *valueExtractor) transform(fd FieldDescriptor, raw string) (any, error) {
	var value any = raw

	for _, name := range fd.Transformers {
		t, ok := e.transformers[name]
		if !ok {
			return nil, e.transformationError(fd, raw, fmt.Errorf("%w %q", ErrUnknownTransformer, name))
		}

		out, err := t.Transform(value)
		if err != nil {
			return nil, e.transformationError(fd, raw, fmt.Errorf("transformer %q: %w", name, err))
		}
		if out == nil {
			return nil, nil
		}
		value = out
	}

	converted, err := convertValue(value, fd.Type)
	if err != nil {
		return nil, e.transformationError(fd, raw, err)
	}
	return converted, nil
}

func (e *valueExtractor) extractionError(fd FieldDescriptor, d Directive, cause error) *ExtractionError {
	raw := d.Kind.String() + ":" + d.Key
	return &ExtractionError{newFailure(e.messages, FailureExtraction, fd.Name, fd.Type.String(), raw, cause)}
}

func (e *valueExtractor) transformationError(fd FieldDescriptor, raw string, cause error) *TransformationError {
	return &TransformationError{newFailure(e.messages, FailureTransformation, fd.Name, fd.Type.String(), raw, cause)}
}
