// FILE: config-builder/loader_test.go
package configbuilder

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func TestPropertyLoader(t *testing.T) {
	t.Run("PropertiesFormat", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeTestFile(t, fs, "/conf/app.properties", "# comment\n! also a comment\napp.port=9090\napp.name = api\napp.mode: strict\n")

		loader := NewPropertyLoader(fs, PropertyLoaderOptions{
			BaseNames:  []string{"app"},
			Locations:  []string{"/conf"},
			Extensions: []string{"properties"},
		}, nil)

		props, err := loader.Load()
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"app.port": "9090",
			"app.name": "api",
			"app.mode": "strict",
		}, props)
	})

	t.Run("PropertiesValuesAreNotExpanded", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeTestFile(t, fs, "/conf/app.properties",
			"db.password=abc$HOME_X\ndb.url=${DB_HOST}:5432\nmsg.missing={{ $f := .Field }}{{ $f }} is \"unset\"\n")

		loader := NewPropertyLoader(fs, PropertyLoaderOptions{
			BaseNames:  []string{"app"},
			Locations:  []string{"/conf"},
			Extensions: []string{"properties"},
		}, nil)

		props, err := loader.Load()
		require.NoError(t, err)
		assert.Equal(t, "abc$HOME_X", props["db.password"])
		assert.Equal(t, "${DB_HOST}:5432", props["db.url"])
		assert.Equal(t, `{{ $f := .Field }}{{ $f }} is "unset"`, props["msg.missing"])
	})

	t.Run("EnvFormat", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeTestFile(t, fs, "/conf/app.env", "APP_PORT=9090\nexport APP_MODE=\"strict\"\n")

		loader := NewPropertyLoader(fs, PropertyLoaderOptions{
			BaseNames:  []string{"app"},
			Locations:  []string{"/conf"},
			Extensions: []string{"env"},
		}, nil)

		props, err := loader.Load()
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"APP_PORT": "9090", "APP_MODE": "strict"}, props)
	})

	t.Run("StructuredFormatsAreFlattened", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeTestFile(t, fs, "/conf/app.toml", "[server]\nport = 8443\nhosts = [\"a\", \"b\"]\n")
		writeTestFile(t, fs, "/conf/app.yaml", "server:\n  tls: true\n  limits:\n    rate: 2.5\n")
		writeTestFile(t, fs, "/conf/app.json", `{"server": {"id": 12345678901234567890}}`)

		loader := NewPropertyLoader(fs, PropertyLoaderOptions{
			BaseNames:  []string{"app"},
			Locations:  []string{"/conf"},
			Extensions: []string{"toml", "yaml", "json"},
		}, nil)

		props, err := loader.Load()
		require.NoError(t, err)
		assert.Equal(t, "8443", props["server.port"])
		assert.Equal(t, "a,b", props["server.hosts"])
		assert.Equal(t, "true", props["server.tls"])
		assert.Equal(t, "2.5", props["server.limits.rate"])
		assert.Equal(t, "12345678901234567890", props["server.id"])
	})

	t.Run("LaterFilesOverride", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeTestFile(t, fs, "/etc/app/app.properties", "a=etc\nb=etc\nc=etc\n")
		writeTestFile(t, fs, "/etc/app/app.local.properties", "b=local\n")
		writeTestFile(t, fs, "/home/app/app.properties", "c=home\n")

		loader := NewPropertyLoader(fs, PropertyLoaderOptions{
			BaseNames:  []string{"app"},
			Locations:  []string{"/etc/app", "/home/app"},
			Suffixes:   Suffixes{Extra: []string{"local"}},
			Extensions: []string{"properties"},
		}, nil)

		props, err := loader.Load()
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"a": "etc", "b": "local", "c": "home"}, props)
	})

	t.Run("HostNameSuffixes", func(t *testing.T) {
		original := hostname
		hostname = func() (string, error) { return "web1.example.com", nil }
		t.Cleanup(func() { hostname = original })

		fs := afero.NewMemMapFs()
		writeTestFile(t, fs, "/conf/app.web1.properties", "who=short\nwhere=short\n")
		writeTestFile(t, fs, "/conf/app.web1.example.com.properties", "who=full\n")

		loader := NewPropertyLoader(fs, PropertyLoaderOptions{
			BaseNames:  []string{"app"},
			Locations:  []string{"/conf"},
			Suffixes:   Suffixes{HostNames: true},
			Extensions: []string{"properties"},
		}, nil)

		props, err := loader.Load()
		require.NoError(t, err)
		assert.Equal(t, "full", props["who"])
		assert.Equal(t, "short", props["where"])
	})

	t.Run("HostNameFailureIsLogged", func(t *testing.T) {
		original := hostname
		hostname = func() (string, error) { return "", errors.New("no uts namespace") }
		t.Cleanup(func() { hostname = original })

		var buf bytes.Buffer
		loader := NewPropertyLoader(afero.NewMemMapFs(), PropertyLoaderOptions{
			BaseNames:  []string{"app"},
			Locations:  []string{"/conf"},
			Suffixes:   Suffixes{HostNames: true},
			Extensions: []string{"properties"},
		}, log.New(&buf))

		props, err := loader.Load()
		require.NoError(t, err)
		assert.Empty(t, props)
		assert.Contains(t, buf.String(), "host name unavailable")
	})

	t.Run("MissingFilesAreSkipped", func(t *testing.T) {
		loader := NewPropertyLoader(afero.NewMemMapFs(), PropertyLoaderOptions{
			BaseNames:  []string{"absent"},
			Locations:  []string{"/nowhere"},
			Extensions: []string{"properties", "yaml"},
		}, nil)

		props, err := loader.Load()
		require.NoError(t, err)
		assert.Empty(t, props)
	})

	t.Run("MalformedFilesAreReportedTogether", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeTestFile(t, fs, "/conf/app.toml", "[server\nport=")
		writeTestFile(t, fs, "/conf/app.json", "{not json")

		loader := NewPropertyLoader(fs, PropertyLoaderOptions{
			BaseNames:  []string{"app"},
			Locations:  []string{"/conf"},
			Extensions: []string{"toml", "json"},
		}, nil)

		_, err := loader.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "app.toml")
		assert.Contains(t, err.Error(), "app.json")
	})

	t.Run("UnsupportedExtension", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeTestFile(t, fs, "/conf/app.ini", "a=1")

		loader := NewPropertyLoader(fs, PropertyLoaderOptions{
			BaseNames:  []string{"app"},
			Locations:  []string{"/conf"},
			Extensions: []string{"ini"},
		}, nil)

		_, err := loader.Load()
		assert.ErrorContains(t, err, "unsupported properties file format")
	})

	t.Run("WithBaseNamesCopies", func(t *testing.T) {
		loader := NewPropertyLoader(afero.NewMemMapFs(), DefaultPropertyLoaderOptions(), nil)
		other := loader.WithBaseNames("messages")

		assert.Empty(t, loader.opts.BaseNames)
		assert.Equal(t, []string{"messages"}, other.opts.BaseNames)
	})
}

func TestPropertyLoaderCandidates(t *testing.T) {
	loader := NewPropertyLoader(afero.NewMemMapFs(), PropertyLoaderOptions{
		BaseNames:  []string{"app", "db"},
		Locations:  []string{"/a", "/b"},
		Suffixes:   Suffixes{Extra: []string{"dev"}},
		Extensions: []string{"properties", ".yaml"},
	}, nil)

	want := []string{
		"/a/app.properties", "/a/app.yaml", "/a/app.dev.properties", "/a/app.dev.yaml",
		"/a/db.properties", "/a/db.yaml", "/a/db.dev.properties", "/a/db.dev.yaml",
		"/b/app.properties", "/b/app.yaml", "/b/app.dev.properties", "/b/app.dev.yaml",
		"/b/db.properties", "/b/db.yaml", "/b/db.dev.properties", "/b/db.dev.yaml",
	}
	for i := range want {
		want[i] = filepath.FromSlash(want[i])
	}
	assert.Equal(t, want, loader.candidates())
}

func TestDetectFileFormat(t *testing.T) {
	assert.Equal(t, "properties", detectFileFormat("app.properties"))
	assert.Equal(t, "env", detectFileFormat(".env"))
	assert.Equal(t, "toml", detectFileFormat("APP.TOML"))
	assert.Equal(t, "yaml", detectFileFormat("app.yml"))
	assert.Equal(t, "json", detectFileFormat("app.json"))
	assert.Equal(t, "", detectFileFormat("app.conf"))
}

func TestFlattenDocument(t *testing.T) {
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	props, err := flattenDocument(map[string]any{
		"db": map[string]any{
			"port":    int64(5432),
			"replica": map[string]any{"host": "r1"},
		},
		"started": started,
		"empty":   map[string]any{},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"db.port":         "5432",
		"db.replica.host": "r1",
		"started":         "2024-05-01T12:00:00Z",
		"empty":           "",
	}, props)
}
