package configbuilder

import (
	"fmt"
	"reflect"
	"strings"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// checkConstructor verifies that fn is a function returning T or *T,
// optionally followed by an error.
func checkConstructor(fn any, target reflect.Type) error {
	ft := reflect.TypeOf(fn)
	if ft == nil || ft.Kind() != reflect.Func {
		return fmt.Errorf("constructor must be a function, got %T", fn)
	}
	if ft.NumOut() < 1 || ft.NumOut() > 2 {
		return fmt.Errorf("constructor %s must return %s or *%s, optionally with an error", ft, target, target)
	}
	if out := ft.Out(0); out != target && out != reflect.PointerTo(target) {
		return fmt.Errorf("constructor %s returns %s, want %s or *%s", ft, out, target, target)
	}
	if ft.NumOut() == 2 && ft.Out(1) != errorType {
		return fmt.Errorf("second result of constructor %s must be error", ft)
	}
	return nil
}

// acceptsArgs reports whether the parameters of ft accept args, in order.
// A nil argument matches any nillable parameter.
func acceptsArgs(ft reflect.Type, args []any) bool {
	n := ft.NumIn()
	if ft.IsVariadic() {
		if len(args) < n-1 {
			return false
		}
	} else if len(args) != n {
		return false
	}

	for i, arg := range args {
		pt := paramType(ft, i)
		if arg == nil {
			if !isNillable(pt.Kind()) {
				return false
			}
			continue
		}
		if !reflect.TypeOf(arg).AssignableTo(pt) {
			return false
		}
	}
	return true
}

func paramType(ft reflect.Type, i int) reflect.Type {
	if ft.IsVariadic() && i >= ft.NumIn()-1 {
		return ft.In(ft.NumIn() - 1).Elem()
	}
	return ft.In(i)
}

// construct selects the single constructor accepting args and calls it.
// With no registered constructors, new(T) serves as the nullary one.
func construct[T any](constructors []any, args []any, m *ErrorMessages) (*T, error) {
	target := reflect.TypeFor[T]()
	fail := func(cause error) error {
		return &ConstructionError{newFailure(m, FailureConstruction, "", target.String(), describeArgs(args), cause)}
	}

	if len(constructors) == 0 {
		if len(args) > 0 {
			return nil, fail(fmt.Errorf("%w: no constructors registered for %d argument(s)", ErrNoConstructor, len(args)))
		}
		return new(T), nil
	}

	var matches []reflect.Value
	for _, c := range constructors {
		if err := checkConstructor(c, target); err != nil {
			return nil, fail(err)
		}
		fn := reflect.ValueOf(c)
		if acceptsArgs(fn.Type(), args) {
			matches = append(matches, fn)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fail(ErrNoConstructor)
	case 1:
	default:
		return nil, fail(fmt.Errorf("%w: %d constructors accept the arguments", ErrAmbiguousConstructor, len(matches)))
	}

	fn := matches[0]
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			in[i] = reflect.Zero(paramType(fn.Type(), i))
			continue
		}
		in[i] = reflect.ValueOf(arg)
	}

	out, err := callConstructor(fn, in)
	if err != nil {
		return nil, fail(err)
	}
	if len(out) == 2 && !out[1].IsNil() {
		return nil, fail(out[1].Interface().(error))
	}

	result := out[0]
	if result.Kind() == reflect.Ptr {
		if result.IsNil() {
			return nil, fail(fmt.Errorf("constructor returned a nil *%s", target))
		}
		return result.Interface().(*T), nil
	}
	instance := new(T)
	reflect.ValueOf(instance).Elem().Set(result)
	return instance, nil
}

func callConstructor(fn reflect.Value, in []reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("constructor panicked: %v", r)
		}
	}()
	return fn.Call(in), nil
}

func describeArgs(args []any) string {
	types := make([]string, len(args))
	for i, arg := range args {
		types[i] = fmt.Sprintf("%T", arg)
	}
	return strings.Join(types, ", ")
}
