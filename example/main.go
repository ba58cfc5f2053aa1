// FILE: config-builder/example/main.go
package main

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/spf13/afero"

	configbuilder "github.com/SashaKalko/config-builder"
)

// DatabaseConfig shows constructor injection, properties files, a custom
// transformer and merging into an instance that is already partly filled.
type DatabaseConfig struct {
	Name     string
	URL      *url.URL `property:"db.url" env:"APP_DB_URL"`
	User     string   `property:"db.user" transform:"trim,lower" default:"postgres"`
	Password string   `env:"APP_DB_PASSWORD" property:"db.password" transform:"unquote" validate:"required"`
	MaxConns int      `property:"db.max_conns" default:"10" validate:"min=1,max=100"`
}

func (DatabaseConfig) PropertiesFiles() []string    { return []string{"app"} }
func (DatabaseConfig) PropertyLocations() []string  { return []string{"/etc/app", "/home/app"} }
func (DatabaseConfig) PropertyExtensions() []string { return []string{"properties", "yaml"} }
func (DatabaseConfig) ErrorMessageFile() string     { return "messages" }

func NewDatabaseConfig(name string) (*DatabaseConfig, error) {
	if name == "" {
		return nil, errors.New("database name is required")
	}
	return &DatabaseConfig{Name: name}, nil
}

func main() {
	fs := afero.NewMemMapFs()
	writeFile(fs, "/etc/app/app.properties", "db.url=postgres://db.internal:5432/orders\ndb.user=  ADMIN \n")
	writeFile(fs, "/home/app/app.yaml", "db:\n  max_conns: 25\n  password: '\"s3cret\"'\n")
	writeFile(fs, "/etc/app/messages.properties", "missing_value={{.Field}} must be configured\n")

	builder := configbuilder.NewBuilder[DatabaseConfig]().
		WithArgs(nil).
		WithFs(fs).
		WithConstructor(NewDatabaseConfig).
		WithTransformer("unquote", configbuilder.NewTransformer(func(s string) (string, error) {
			return strings.Trim(s, `"`), nil
		}))

	// PART 1: build a new instance through the registered constructor
	cfg, err := builder.Build("orders")
	if err != nil {
		log.Fatalf("build failed: %v", err)
	}
	fmt.Printf("built:  name=%s url=%s user=%s max_conns=%d\n", cfg.Name, cfg.URL, cfg.User, cfg.MaxConns)

	// PART 2: a constructor that rejects its arguments aborts the build
	if _, err := builder.Build(""); err != nil {
		var cerr *configbuilder.ConstructionError
		if errors.As(err, &cerr) {
			fmt.Printf("construction failed as expected: %v\n", err)
		}
	}

	// PART 3: merge keeps values that are already set
	existing := &DatabaseConfig{Name: "reports", MaxConns: 3}
	merged, err := builder.Merge(existing)
	if err != nil {
		log.Fatalf("merge failed: %v", err)
	}
	fmt.Printf("merged: name=%s user=%s max_conns=%d\n", merged.Name, merged.User, merged.MaxConns)

	// PART 4: validation reports every violation at once, rendered with the
	// templates of messages.properties
	broken := afero.NewMemMapFs()
	writeFile(broken, "/etc/app/app.properties", "db.max_conns=500\n")
	writeFile(broken, "/etc/app/messages.properties", "violation={{.Field}} breaks rule {{.Rule}}\n")

	_, err = configbuilder.NewBuilder[DatabaseConfig]().
		WithArgs(nil).
		WithFs(broken).
		WithConstructor(NewDatabaseConfig).
		WithTransformer("unquote", configbuilder.TransformerFunc(func(v any) (any, error) { return v, nil })).
		WithLookupEnv(func(key string) (string, bool) {
			if key == "APP_DB_PASSWORD" {
				return "", true
			}
			return "", false
		}).
		Build("orders")
	var verr *configbuilder.ValidationError
	if errors.As(err, &verr) {
		for _, field := range verr.Violations.Fields() {
			fmt.Printf("violation on %s: %v\n", field, verr.Violations[field])
		}
	}
}

func writeFile(fs afero.Fs, path, content string) {
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", path, err)
	}
}
