// FILE: config-builder/descriptor.go
package configbuilder

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// Kind identifies the source a directive reads its raw value from.
type Kind int

const (
	// KindProperty reads from the loaded properties table
	KindProperty Kind = iota
	// KindCommandLine reads from parsed command-line options
	KindCommandLine
	// KindSystemProperty reads from the system property table
	KindSystemProperty
	// KindEnv reads from environment variables
	KindEnv
	// KindDefault yields a static value declared on the field
	KindDefault
)

// kindNames doubles as the struct tag key of each kind.
var kindNames = [...]string{
	KindProperty:       "property",
	KindCommandLine:    "cli",
	KindSystemProperty: "sysprop",
	KindEnv:            "env",
	KindDefault:        "default",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// ParseKind returns the Kind named by s ("property", "cli", "sysprop", "env" or "default").
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown directive kind %q", s)
}

// transformTag lists custom transformer names applied to a field's raw value.
const transformTag = "transform"

// OptionSpec holds the parameters of a command-line directive.
type OptionSpec struct {
	Short       string
	Description string
	HasArg      bool
	Required    bool
}

// Directive declares one value source for a field.
// Key is the property key, option name, system property, variable name,
// or the literal default value, depending on Kind.
type Directive struct {
	Kind   Kind
	Key    string
	Option OptionSpec
}

// FieldDescriptor is the static extraction plan for one struct field.
type FieldDescriptor struct {
	Name         string // dotted path from the root struct, e.g. "Server.Port"
	Index        []int
	Type         reflect.Type
	Directives   []Directive // declaration order
	Transformers []string
}

// Default returns the field's static default directive, if it declares one.
func (fd FieldDescriptor) Default() (Directive, bool) {
	for _, d := range fd.Directives {
		if d.Kind == KindDefault {
			return d, true
		}
	}
	return Directive{}, false
}

// ordered returns the directives in trial order.
// Without an override the declaration order is kept and the default moves last.
// With an override directives are stably ranked by kind; same-kind directives
// keep declaration order, unlisted kinds follow the listed ones, and the default
// stays last unless the override ranks it explicitly.
func (fd FieldDescriptor) ordered(order []Kind) []Directive {
	out := make([]Directive, 0, len(fd.Directives))
	if len(order) == 0 {
		var defaults []Directive
		for _, d := range fd.Directives {
			if d.Kind == KindDefault {
				defaults = append(defaults, d)
				continue
			}
			out = append(out, d)
		}
		return append(out, defaults...)
	}

	rank := func(k Kind) int {
		if i := slices.Index(order, k); i >= 0 {
			return i
		}
		if k == KindDefault {
			return len(order) + 1
		}
		return len(order)
	}

	out = append(out, fd.Directives...)
	slices.SortStableFunc(out, func(a, b Directive) int {
		return rank(a.Kind) - rank(b.Kind)
	})
	return out
}

var descriptorCache sync.Map // reflect.Type -> []FieldDescriptor

// DescribeType returns the descriptors of every field of t that carries at least
// one directive. Results are cached for the process lifetime; concurrent first
// calls for the same type may both compute, and one result wins.
// The returned slice is shared and must not be modified.
func DescribeType(t reflect.Type) ([]FieldDescriptor, error) {
	if t == nil {
		return nil, newDescriptorError(defaultErrorMessages(), "", "<nil>", "", fmt.Errorf("cannot describe nil type"))
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, newDescriptorError(defaultErrorMessages(), "", t.String(), "", fmt.Errorf("config type must be a struct, got %s", t.Kind()))
	}

	if cached, ok := descriptorCache.Load(t); ok {
		return cached.([]FieldDescriptor), nil
	}

	descs, err := describeFields(t, nil, "")
	if err != nil {
		return nil, err
	}

	actual, _ := descriptorCache.LoadOrStore(t, descs)
	return actual.([]FieldDescriptor), nil
}

// describeFields walks t recursively, descending into untagged struct fields.
func describeFields(t reflect.Type, index []int, prefix string) ([]FieldDescriptor, error) {
	var descs []FieldDescriptor

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		path := prefix + field.Name
		fieldIndex := append(append([]int(nil), index...), i)

		directives, transformers, err := parseFieldTag(field.Tag)
		if err != nil {
			return nil, newDescriptorError(defaultErrorMessages(), path, field.Type.String(), string(field.Tag), err)
		}

		if len(directives) == 0 {
			if len(transformers) > 0 {
				return nil, newDescriptorError(defaultErrorMessages(), path, field.Type.String(), string(field.Tag),
					fmt.Errorf("transformers declared without any value directive"))
			}
			// Descend into plain nested structs so their fields can carry directives
			if field.IsExported() && field.Type.Kind() == reflect.Struct && !isLeafStruct(field.Type) {
				nested, err := describeFields(field.Type, fieldIndex, path+".")
				if err != nil {
					return nil, err
				}
				descs = append(descs, nested...)
			}
			// A nil pointer leaves nowhere to assign nested fields
			if elem := field.Type; elem.Kind() == reflect.Ptr && elem.Elem().Kind() == reflect.Struct &&
				!isLeafStruct(elem.Elem()) && containsDirectives(elem.Elem(), make(map[reflect.Type]bool)) {
				return nil, newDescriptorError(defaultErrorMessages(), path, field.Type.String(), string(field.Tag),
					fmt.Errorf("directives below pointer field cannot be assigned, use a %s value", elem.Elem()))
			}
			continue
		}

		if !field.IsExported() {
			return nil, newDescriptorError(defaultErrorMessages(), path, field.Type.String(), string(field.Tag),
				fmt.Errorf("directives on unexported field cannot be assigned"))
		}

		// A switch yields "true", which only a bool or a transformer chain can take
		if len(transformers) == 0 && indirectType(field.Type).Kind() != reflect.Bool {
			for _, d := range directives {
				if d.Kind == KindCommandLine && !d.Option.HasArg {
					return nil, newDescriptorError(defaultErrorMessages(), path, field.Type.String(), string(field.Tag),
						fmt.Errorf("command-line switch %q needs a bool field or the arg parameter", d.Key))
				}
			}
		}

		descs = append(descs, FieldDescriptor{
			Name:         path,
			Index:        fieldIndex,
			Type:         field.Type,
			Directives:   directives,
			Transformers: transformers,
		})
	}

	return descs, nil
}

// containsDirectives reports whether t, or a struct nested in it, declares any tag directive.
func containsDirectives(t reflect.Type, seen map[reflect.Type]bool) bool {
	if seen[t] {
		return false
	}
	seen[t] = true

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		directives, transformers, err := parseFieldTag(field.Tag)
		if err != nil || len(directives) > 0 || len(transformers) > 0 {
			return true
		}
		if nested := indirectType(field.Type); nested.Kind() == reflect.Struct && !isLeafStruct(nested) &&
			containsDirectives(nested, seen) {
			return true
		}
	}
	return false
}

// isLeafStruct reports struct types that are decoded as values rather than walked.
func isLeafStruct(t reflect.Type) bool {
	return t.PkgPath() == "time" || t.PkgPath() == "net/url" || t.PkgPath() == "golang.org/x/text/language"
}

// parseFieldTag extracts directives from a struct tag in textual key order.
func parseFieldTag(tag reflect.StructTag) ([]Directive, []string, error) {
	var directives []Directive
	var transformers []string
	seen := make(map[string]bool)

	for _, key := range tagKeys(tag) {
		value, _ := tag.Lookup(key)

		if key == transformTag || isDirectiveKey(key) {
			// Lookup only ever sees the first of repeated keys
			if seen[key] {
				return nil, nil, fmt.Errorf("duplicate %s directive", key)
			}
			seen[key] = true
		}

		if key == transformTag {
			for _, name := range strings.Split(value, ",") {
				name = strings.TrimSpace(name)
				if name == "" {
					return nil, nil, fmt.Errorf("empty transformer name in %q", value)
				}
				transformers = append(transformers, name)
			}
			continue
		}

		kind, err := ParseKind(key)
		if err != nil {
			continue // foreign tag, e.g. json or validate
		}

		switch kind {
		case KindDefault:
			// An empty default is a legitimate value
			directives = append(directives, Directive{Kind: KindDefault, Key: value})

		case KindCommandLine:
			d, err := parseOptionTag(value)
			if err != nil {
				return nil, nil, err
			}
			directives = append(directives, d)

		default:
			if strings.TrimSpace(value) == "" {
				return nil, nil, fmt.Errorf("%s directive requires a key", kind)
			}
			directives = append(directives, Directive{Kind: kind, Key: value})
		}
	}

	return directives, transformers, nil
}

func isDirectiveKey(key string) bool {
	_, err := ParseKind(key)
	return err == nil
}

// parseOptionTag parses `cli:"name[,short=x][,desc=text][,arg][,required]"`.
func parseOptionTag(value string) (Directive, error) {
	parts := strings.Split(value, ",")
	name := strings.TrimSpace(parts[0])
	if !isValidOptionName(name) {
		return Directive{}, fmt.Errorf("invalid command-line option name %q", name)
	}

	d := Directive{Kind: KindCommandLine, Key: name}
	for _, part := range parts[1:] {
		k, v, hasValue := strings.Cut(strings.TrimSpace(part), "=")
		switch {
		case k == "arg" && !hasValue:
			d.Option.HasArg = true
		case k == "required" && !hasValue:
			d.Option.Required = true
		case k == "short" && hasValue:
			if len(v) != 1 || !isValidOptionName(v) {
				return Directive{}, fmt.Errorf("short option for %q must be a single letter or digit, got %q", name, v)
			}
			d.Option.Short = v
		case k == "desc" && hasValue:
			d.Option.Description = v
		default:
			return Directive{}, fmt.Errorf("unknown parameter %q for command-line option %q", part, name)
		}
	}
	return d, nil
}

// isValidOptionName accepts letters, digits, '-', '_' and '.', not starting with '-'.
func isValidOptionName(s string) bool {
	if s == "" || s[0] == '-' {
		return false
	}
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !(isLetter || isDigit || r == '-' || r == '_' || r == '.') {
			return false
		}
	}
	return true
}

// tagKeys returns the keys of a conventional struct tag in the order they appear.
// The scan follows the grammar used by reflect.StructTag.Lookup.
func tagKeys(tag reflect.StructTag) []string {
	var keys []string
	for tag != "" {
		// Skip leading space
		i := 0
		for i < len(tag) && tag[i] == ' ' {
			i++
		}
		tag = tag[i:]
		if tag == "" {
			break
		}

		i = 0
		for i < len(tag) && tag[i] > ' ' && tag[i] != ':' && tag[i] != '"' && tag[i] != 0x7f {
			i++
		}
		if i == 0 || i+1 >= len(tag) || tag[i] != ':' || tag[i+1] != '"' {
			break
		}
		name := string(tag[:i])
		tag = tag[i+1:]

		// Scan quoted string to find value
		i = 1
		for i < len(tag) && tag[i] != '"' {
			if tag[i] == '\\' {
				i++
			}
			i++
		}
		if i >= len(tag) {
			break
		}
		tag = tag[i+1:]

		keys = append(keys, name)
	}
	return keys
}
