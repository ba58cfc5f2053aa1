// FILE: config-builder/loader.go
package configbuilder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/magiconair/properties"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Suffixes selects the variant files tried next to each base file.
type Suffixes struct {
	// Extra suffixes, e.g. "local" for "app.local.properties"
	Extra []string
	// HostNames adds the full and the short host name as suffixes
	HostNames bool
}

// PropertyLoaderOptions configures where properties files are looked up
type PropertyLoaderOptions struct {
	// BaseNames are file names without suffix and extension
	BaseNames []string
	// Locations are the directories searched, in increasing precedence
	Locations []string
	Suffixes  Suffixes
	// Extensions select the file format, without the leading dot
	Extensions []string
}

// DefaultPropertyLoaderOptions returns the standard loader options.
// No base names are set, so nothing is loaded until some are configured.
func DefaultPropertyLoaderOptions() PropertyLoaderOptions {
	return PropertyLoaderOptions{
		Locations:  []string{"."},
		Extensions: []string{"properties"},
	}
}

// hostname is replaced in tests
var hostname = os.Hostname

// PropertyLoader reads and merges properties files into a flat key table.
type PropertyLoader struct {
	fs     afero.Fs
	opts   PropertyLoaderOptions
	logger *log.Logger
}

// NewPropertyLoader creates a loader reading from fs. A nil fs means the OS filesystem.
func NewPropertyLoader(fs afero.Fs, opts PropertyLoaderOptions, logger *log.Logger) *PropertyLoader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = defaultLogger()
	}
	return &PropertyLoader{fs: fs, opts: opts, logger: logger}
}

// WithBaseNames returns a copy of the loader searching for other base names.
func (l *PropertyLoader) WithBaseNames(names ...string) *PropertyLoader {
	c := *l
	c.opts.BaseNames = names
	return &c
}

// Load reads every candidate file that exists. Later files override keys of
// earlier ones. Missing files are skipped; unreadable or malformed ones are
// reported together.
func (l *PropertyLoader) Load() (map[string]string, error) {
	table := make(map[string]string)
	var loadErrors []error

	for _, path := range l.candidates() {
		exists, err := afero.Exists(l.fs, path)
		if err != nil {
			loadErrors = append(loadErrors, fmt.Errorf("failed to stat properties file '%s': %w", path, err))
			continue
		}
		if !exists {
			l.logger.Debug("properties file not found, skipping", "path", path)
			continue
		}

		props, err := l.readFile(path)
		if err != nil {
			loadErrors = append(loadErrors, err)
			continue
		}
		if err := mergo.Merge(&table, props, mergo.WithOverride); err != nil {
			loadErrors = append(loadErrors, fmt.Errorf("failed to merge properties file '%s': %w", path, err))
			continue
		}
		l.logger.Debug("properties file loaded", "path", path, "keys", len(props))
	}

	if len(loadErrors) > 0 {
		return nil, errors.Join(loadErrors...)
	}
	return table, nil
}

// candidates lists file paths in load order: location, base name, suffix, extension.
func (l *PropertyLoader) candidates() []string {
	var paths []string
	suffixes := l.suffixes()

	for _, location := range l.opts.Locations {
		for _, base := range l.opts.BaseNames {
			for _, suffix := range suffixes {
				name := base
				if suffix != "" {
					name += "." + suffix
				}
				for _, ext := range l.opts.Extensions {
					paths = append(paths, filepath.Join(location, name+"."+strings.TrimPrefix(ext, ".")))
				}
			}
		}
	}
	return paths
}

func (l *PropertyLoader) suffixes() []string {
	suffixes := []string{""}
	suffixes = append(suffixes, l.opts.Suffixes.Extra...)

	if l.opts.Suffixes.HostNames {
		host, err := hostname()
		if err != nil {
			l.logger.Warn("host name unavailable, skipping host suffixes", "error", err)
			return suffixes
		}
		if short, _, found := strings.Cut(host, "."); found && short != "" {
			suffixes = append(suffixes, short)
		}
		suffixes = append(suffixes, host)
	}
	return suffixes
}

// readFile parses one properties file into a flat table.
func (l *PropertyLoader) readFile(path string) (map[string]string, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read properties file '%s': %w", path, err)
	}

	format := detectFileFormat(path)
	switch format {
	case "properties":
		// Values are taken literally; "${...}" stays as written
		loader := properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
		props, err := loader.LoadBytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse properties file '%s': %w", path, err)
		}
		return props.Map(), nil
	case "env":
		props, err := godotenv.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse env file '%s': %w", path, err)
		}
		return props, nil
	}

	nested := make(map[string]any)
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &nested); err != nil {
			return nil, fmt.Errorf("failed to parse TOML properties file '%s': %w", path, err)
		}
	case "json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Preserve number precision
		if err := decoder.Decode(&nested); err != nil {
			return nil, fmt.Errorf("failed to parse JSON properties file '%s': %w", path, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &nested); err != nil {
			return nil, fmt.Errorf("failed to parse YAML properties file '%s': %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported properties file format for '%s'", path)
	}

	props, err := flattenDocument(nested)
	if err != nil {
		return nil, fmt.Errorf("failed to flatten properties file '%s': %w", path, err)
	}
	return props, nil
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".properties":
		return "properties"
	case ".env":
		return "env"
	case ".toml", ".tml":
		return "toml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}
