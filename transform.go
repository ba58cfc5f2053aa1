// FILE: config-builder/transform.go
package configbuilder

import (
	"fmt"
	"maps"
	"strings"

	"golang.org/x/text/language"
)

// Transformer converts a value produced by the previous step of a chain.
// Implementations must be stateless and safe for concurrent use.
type Transformer interface {
	Transform(value any) (any, error)
}

// TransformerFunc adapts a plain function to Transformer.
type TransformerFunc func(value any) (any, error)

func (f TransformerFunc) Transform(value any) (any, error) { return f(value) }

// NewTransformer wraps a typed conversion. The step fails with ErrTransformerInput
// when the previous step produced something other than S.
func NewTransformer[S, D any](fn func(S) (D, error)) Transformer {
	return TransformerFunc(func(value any) (any, error) {
		in, ok := value.(S)
		if !ok {
			return nil, fmt.Errorf("%w: want %s, got %T", ErrTransformerInput, typeName[S](), value)
		}
		return fn(in)
	})
}

func typeName[S any]() string {
	var zero *S
	return fmt.Sprintf("%T", zero)[1:]
}

// Transformers maps the names used in `transform` tags to their implementation.
type Transformers map[string]Transformer

var builtinTransformers = Transformers{
	"trim": NewTransformer(func(s string) (string, error) {
		return strings.TrimSpace(s), nil
	}),
	"lower": NewTransformer(func(s string) (string, error) {
		return strings.ToLower(s), nil
	}),
	"upper": NewTransformer(func(s string) (string, error) {
		return strings.ToUpper(s), nil
	}),
	"split": NewTransformer(func(s string) ([]string, error) {
		if s == "" {
			return []string{}, nil
		}
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}),
	"locale": NewTransformer(func(s string) (language.Tag, error) {
		tag, err := parseLocale(s)
		if err != nil {
			return language.Und, err
		}
		return *tag, nil
	}),
}

// DefaultTransformers returns a copy of the built-in transformer registry.
func DefaultTransformers() Transformers {
	return maps.Clone(builtinTransformers)
}
