package configbuilder

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrHelpRequested is returned by Build when the command line asks for usage help.
	ErrHelpRequested = errors.New("command line help requested")
	// ErrCommandLine wraps failures of the command-line parser
	ErrCommandLine = errors.New("invalid command line")
	// ErrMissingOption reports required command-line options that were not given
	ErrMissingOption = errors.New("missing required command-line option")
	// ErrMalformedDirective is wrapped by strategies rejecting directive parameters
	ErrMalformedDirective = errors.New("malformed directive")
	// ErrNoStrategy reports a directive kind with no registered strategy
	ErrNoStrategy = errors.New("no extraction strategy registered")
	// ErrUnknownTransformer reports a transformer name missing from the registry
	ErrUnknownTransformer = errors.New("unknown transformer")
	// ErrTransformerInput reports a transformer step receiving an unexpected type
	ErrTransformerInput = errors.New("unexpected transformer input type")
	// ErrNoConstructor reports that no constructor accepts the given arguments
	ErrNoConstructor = errors.New("no matching constructor")
	// ErrAmbiguousConstructor reports that several constructors accept the given arguments
	ErrAmbiguousConstructor = errors.New("ambiguous constructor")
	// ErrMissingValue reports a non-nillable field for which no source had a value
	ErrMissingValue = errors.New("no value resolved")
	// ErrNilInstance is returned by Merge when given a nil instance
	ErrNilInstance = errors.New("instance to merge into is nil")
)

// Failure is the payload shared by the pipeline's typed errors.
// Msg is rendered from the error message table when the failure is created.
type Failure struct {
	Kind  FailureKind
	Field string
	Type  string
	Raw   string
	Msg   string
	Err   error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return f.Msg
	}
	return f.Msg + ": " + f.Err.Error()
}

func (f *Failure) Unwrap() error { return f.Err }

// DescriptorError reports malformed field metadata found during introspection.
type DescriptorError struct{ Failure }

// ExtractionError reports malformed directive parameters. A missing value is never one.
type ExtractionError struct{ Failure }

// TransformationError reports a raw value that cannot become the field's type.
type TransformationError struct{ Failure }

// ConstructionError reports that no single constructor could produce the instance.
type ConstructionError struct{ Failure }

// AssignmentError wraps the first failure met while setting fields.
type AssignmentError struct{ Failure }

// ValidationError carries every constraint violation of a populated instance.
type ValidationError struct {
	Failure
	Violations Violations
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	for _, field := range e.Violations.Fields() {
		for _, msg := range e.Violations[field] {
			b.WriteString("; ")
			b.WriteString(msg)
		}
	}
	return b.String()
}

func newFailure(m *ErrorMessages, kind FailureKind, field, typ, raw string, cause error) Failure {
	return Failure{
		Kind:  kind,
		Field: field,
		Type:  typ,
		Raw:   raw,
		Msg:   m.GetErrorMessage(kind, field, typ, raw),
		Err:   cause,
	}
}

func newDescriptorError(m *ErrorMessages, field, typ, raw string, cause error) *DescriptorError {
	return &DescriptorError{newFailure(m, FailureDescriptor, field, typ, raw, cause)}
}

// Violations maps field paths to the messages of the constraints they violate.
type Violations map[string][]string

// Add records a violation message for field.
func (v Violations) Add(field, msg string) {
	v[field] = append(v[field], msg)
}

// Fields returns the violated field paths in sorted order.
func (v Violations) Fields() []string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Len returns the total number of violation messages.
func (v Violations) Len() int {
	n := 0
	for _, msgs := range v {
		n += len(msgs)
	}
	return n
}
