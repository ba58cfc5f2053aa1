// FILE: config-builder/setter.go
package configbuilder

import (
	"fmt"
	"reflect"

	"github.com/charmbracelet/log"
)

// fieldSetter assigns extracted values to the described fields of an instance.
type fieldSetter struct {
	extractor *valueExtractor
	messages  *ErrorMessages
	logger    *log.Logger
}

// setFields assigns every described field, overwriting constructor-set values.
func (s *fieldSetter) setFields(instance reflect.Value, descs []FieldDescriptor, ctx *BuildContext) error {
	return s.apply(instance, descs, ctx, false)
}

// setEmptyFields assigns only fields still holding their zero value.
func (s *fieldSetter) setEmptyFields(instance reflect.Value, descs []FieldDescriptor, ctx *BuildContext) error {
	return s.apply(instance, descs, ctx, true)
}

// apply stops at the first failing field.
func (s *fieldSetter) apply(instance reflect.Value, descs []FieldDescriptor, ctx *BuildContext, onlyEmpty bool) error {
	for _, fd := range descs {
		field := instance.FieldByIndex(fd.Index)

		if onlyEmpty && !field.IsZero() {
			s.logger.Debug("field already set, keeping value", "field", fd.Name, "type", fd.Type)
			continue
		}

		value, outcome, err := s.extractor.extract(fd, ctx)
		if err != nil {
			return s.assignmentError(FailureAssignment, fd, outcome, err)
		}

		if value == nil {
			if onlyEmpty {
				continue
			}
			if !isNillable(fd.Type.Kind()) {
				return s.assignmentError(FailureMissingValue, fd, outcome, ErrMissingValue)
			}
			field.Set(reflect.Zero(fd.Type))
			s.logger.Debug("set field", "field", fd.Name, "type", fd.Type, "value_type", "nil")
			continue
		}

		rv := reflect.ValueOf(value)
		if !rv.Type().AssignableTo(fd.Type) {
			return s.assignmentError(FailureAssignment, fd, outcome,
				fmt.Errorf("value of type %s is not assignable to %s", rv.Type(), fd.Type))
		}
		field.Set(rv)
		s.logger.Debug("set field", "field", fd.Name, "type", fd.Type, "value_type", rv.Type(), "source", outcome.Kind)
	}
	return nil
}

func (s *fieldSetter) assignmentError(kind FailureKind, fd FieldDescriptor, outcome Outcome, cause error) *AssignmentError {
	raw := "<absent>"
	if outcome.Present {
		raw = outcome.Value
	}
	return &AssignmentError{newFailure(s.messages, kind, fd.Name, fd.Type.String(), raw, cause)}
}
