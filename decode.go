// FILE: config-builder/decode.go
package configbuilder

import (
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/xhit/go-str2duration/v2"
	"golang.org/x/text/language"
)

// convertValue is the built-in conversion step closing every transformer chain.
// It turns value into exactly the target type, or fails.
func convertValue(value any, target reflect.Type) (any, error) {
	if value == nil {
		return nil, nil
	}
	if reflect.TypeOf(value).AssignableTo(target) {
		return value, nil
	}

	if target.Kind() == reflect.Ptr {
		elem, err := convertValue(value, target.Elem())
		if err != nil {
			return nil, err
		}
		ptr := reflect.New(target.Elem())
		ptr.Elem().Set(reflect.ValueOf(elem))
		return ptr.Interface(), nil
	}

	// Weak decoding would read "" as zero; absence and emptiness stay distinct
	if s, ok := value.(string); ok && s == "" && isScalarKind(indirectType(target).Kind()) {
		return nil, fmt.Errorf("empty string is not a valid %s", target)
	}

	out := reflect.New(target)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out.Interface(),
		WeaklyTypedInput: true,
		DecodeHook:       decodeHook(),
	})
	if err != nil {
		return nil, fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(value); err != nil {
		return nil, err
	}
	return out.Elem().Interface(), nil
}

// decodeHook composes the string parsers for the supported value types
// with mapstructure's standard hooks.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		stringParserHook(parseIP),
		stringParserHook(parseCIDR),
		stringParserHook(url.Parse),
		stringParserHook(parseLocale),
		stringParserHook(parseDuration),

		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}

// stringParserHook converts strings into V or *V with parse and leaves every
// other conversion to the next hook.
func stringParserHook[V any](parse func(string) (*V, error)) mapstructure.DecodeHookFunc {
	target := reflect.TypeFor[V]()
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || indirectType(to) != target {
			return data, nil
		}
		v, err := parse(data.(string))
		if err != nil {
			return nil, err
		}
		if to.Kind() == reflect.Ptr {
			return v, nil
		}
		return *v, nil
	}
}

// Upper bounds on textual lengths, IPv6 with zone and CIDR suffix included.
const (
	maxIPLength   = 45
	maxCIDRLength = 49
)

func parseIP(s string) (*net.IP, error) {
	if len(s) > maxIPLength {
		return nil, fmt.Errorf("IP address too long: %d bytes", len(s))
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, fmt.Errorf("invalid IP address %q", s)
	}
	return &ip, nil
}

func parseCIDR(s string) (*net.IPNet, error) {
	if len(s) > maxCIDRLength {
		return nil, fmt.Errorf("CIDR too long: %d bytes", len(s))
	}
	_, ipnet, err := net.ParseCIDR(s)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR %q: %w", s, err)
	}
	return ipnet, nil
}

// parseDuration extends time.ParseDuration with the units "d" and "w".
func parseDuration(s string) (*time.Duration, error) {
	d, err := str2duration.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parseLocale accepts both "de-DE" and the POSIX style "de_DE".
func parseLocale(s string) (*language.Tag, error) {
	tag, err := language.Parse(normalizeLocale(s))
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", s, err)
	}
	return &tag, nil
}

func indirectType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isNillable(k reflect.Kind) bool {
	switch k {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return true
	}
	return false
}
