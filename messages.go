// FILE: config-builder/messages.go
package configbuilder

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"
	"text/template"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/Masterminds/sprig/v3"
)

// FailureKind names a pipeline failure and selects its message template.
type FailureKind string

const (
	FailureDescriptor     FailureKind = "descriptor"
	FailureExtraction     FailureKind = "extraction"
	FailureTransformation FailureKind = "transformation"
	FailureConstruction   FailureKind = "construction"
	FailureAssignment     FailureKind = "assignment"
	FailureMissingValue   FailureKind = "missing_value"
	FailureValidation     FailureKind = "validation"
	// FailureViolation renders a single constraint violation
	FailureViolation FailureKind = "violation"
)

//go:embed messages.toml
var defaultMessagesTOML []byte

// MessageData is the value message templates are executed against.
type MessageData struct {
	Kind  FailureKind
	Field string
	Type  string
	Raw   string
	Rule  string
	Param string
}

// ErrorMessages renders human-readable diagnostics from a template table.
// It is immutable after creation and safe for concurrent use.
type ErrorMessages struct {
	templates map[FailureKind]*template.Template
}

// NewErrorMessages parses the default template table and merges overrides over
// it; an override wins on key collision.
func NewErrorMessages(overrides map[string]string) (*ErrorMessages, error) {
	table := make(map[string]string)
	if err := toml.Unmarshal(defaultMessagesTOML, &table); err != nil {
		return nil, fmt.Errorf("failed to parse default error messages: %w", err)
	}

	if len(overrides) > 0 {
		if err := mergo.Merge(&table, overrides, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge error message overrides: %w", err)
		}
	}

	m := &ErrorMessages{templates: make(map[FailureKind]*template.Template, len(table))}
	for key, text := range table {
		tmpl, err := template.New(key).Option("missingkey=error").Funcs(sprig.TxtFuncMap()).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse error message template %q: %w", key, err)
		}
		m.templates[FailureKind(key)] = tmpl
	}
	return m, nil
}

var defaultErrorMessages = sync.OnceValue(func() *ErrorMessages {
	m, err := NewErrorMessages(nil)
	if err != nil {
		panic(fmt.Sprintf("embedded error messages are invalid: %v", err))
	}
	return m
})

// DefaultErrorMessages returns the shared table built from the embedded defaults.
func DefaultErrorMessages() *ErrorMessages {
	return defaultErrorMessages()
}

// GetErrorMessage renders the template for kind. Unknown kinds and failing
// templates fall back to a generic message.
func (m *ErrorMessages) GetErrorMessage(kind FailureKind, fieldName, fieldType, rawValue string) string {
	return m.Render(MessageData{Kind: kind, Field: fieldName, Type: fieldType, Raw: rawValue})
}

// Render executes the template selected by data.Kind.
func (m *ErrorMessages) Render(data MessageData) string {
	if m != nil {
		if tmpl, ok := m.templates[data.Kind]; ok {
			var buf bytes.Buffer
			if err := tmpl.Execute(&buf, data); err == nil {
				return buf.String()
			}
		}
	}
	return genericMessage(data)
}

func genericMessage(data MessageData) string {
	return fmt.Sprintf("%s failure on field %q of type %s with value %q", data.Kind, data.Field, data.Type, data.Raw)
}
