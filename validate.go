// FILE: config-builder/validate.go
package configbuilder

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Violation is one broken constraint reported by a ConstraintValidator.
// When Message is empty it is rendered from the "violation" message template.
type Violation struct {
	Field   string
	Rule    string
	Param   string
	Value   string
	Message string
}

// ConstraintValidator checks a populated instance and reports every violation.
// An error is returned only when the engine itself cannot run.
type ConstraintValidator interface {
	Validate(instance any) ([]Violation, error)
}

// SelfValidator may be implemented by config types with checks beyond tags.
type SelfValidator interface {
	Validate() error
}

// InstanceField is the violation key used for errors from SelfValidator.
const InstanceField = "*"

// StructValidator is the default ConstraintValidator, driven by `validate` tags.
type StructValidator struct {
	validate *validator.Validate
}

// NewStructValidator creates a validator using go-playground/validator rules.
func NewStructValidator() *StructValidator {
	return &StructValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterValidation adds a custom rule usable in `validate` tags.
func (v *StructValidator) RegisterValidation(tag string, fn validator.Func) error {
	return v.validate.RegisterValidation(tag, fn)
}

func (v *StructValidator) Validate(instance any) ([]Violation, error) {
	var violations []Violation

	if err := v.validate.Struct(instance); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("constraint validation could not run: %w", err)
		}
		for _, fe := range fieldErrs {
			violations = append(violations, Violation{
				Field: fieldPath(fe),
				Rule:  fe.Tag(),
				Param: fe.Param(),
				Value: formatValue(fe.Value()),
			})
		}
	}

	if self, ok := instance.(SelfValidator); ok {
		if err := self.Validate(); err != nil {
			violations = append(violations, Violation{Field: InstanceField, Message: err.Error()})
		}
	}

	return violations, nil
}

// fieldPath strips the root type name so paths match FieldDescriptor.Name.
func fieldPath(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func formatValue(v any) string {
	if v == nil {
		return "<nil>"
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return "<nil>"
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	}
	return fmt.Sprintf("%v", rv.Interface())
}

// configValidator turns the engine's findings into a single aggregated failure.
type configValidator struct {
	engine   ConstraintValidator
	messages *ErrorMessages
}

func (c *configValidator) validate(instance any) error {
	if c.engine == nil {
		return nil
	}

	found, err := c.engine.Validate(instance)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return nil
	}

	violations := make(Violations)
	for _, v := range found {
		msg := v.Message
		if msg == "" {
			msg = c.messages.Render(MessageData{
				Kind:  FailureViolation,
				Field: v.Field,
				Raw:   v.Value,
				Rule:  v.Rule,
				Param: v.Param,
			})
		}
		violations.Add(v.Field, msg)
	}

	typ := reflect.TypeOf(instance)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return &ValidationError{
		Failure:    newFailure(c.messages, FailureValidation, "", typ.String(), strconv.Itoa(violations.Len()), nil),
		Violations: violations,
	}
}
