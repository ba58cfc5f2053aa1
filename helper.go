// File: config-builder/helper.go
package configbuilder

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/v2"
)

// documentProvider is a koanf.Provider adapter for an already decoded document.
type documentProvider map[string]any

func (d documentProvider) Read() (map[string]any, error) {
	return d, nil
}

func (d documentProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("ReadBytes not implemented")
}

// flattenDocument converts a nested document into property text keyed by
// dot-notation paths, e.g. {"db": {"port": 5432}} becomes "db.port" = "5432".
func flattenDocument(nested map[string]any) (map[string]string, error) {
	k := koanf.New(".")
	if err := k.Load(documentProvider(nested), nil); err != nil {
		return nil, err
	}

	keys := k.Keys()
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		out[key] = stringifyValue(k.Get(key))
	}
	return out, nil
}

// stringifyValue renders a decoded file value the way it would be written in a
// properties file. Lists become comma-separated.
func stringifyValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case time.Time:
		return v.Format(time.RFC3339)
	case map[string]any:
		// Empty tables are kept as keys by the flattener
		return ""
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = stringifyValue(item)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}
