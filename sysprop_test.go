// FILE: config-builder/sysprop_test.go
package configbuilder

import (
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemProperties(t *testing.T) {
	props := SystemProperties()

	assert.Equal(t, runtime.GOOS, props["os.name"])
	assert.Equal(t, runtime.GOARCH, props["os.arch"])
	assert.Equal(t, string(os.PathSeparator), props["file.separator"])
	assert.Equal(t, string(os.PathListSeparator), props["path.separator"])
	assert.NotEmpty(t, props["user.language"])

	t.Run("ReturnsACopy", func(t *testing.T) {
		props["os.name"] = "plan9"
		assert.Equal(t, runtime.GOOS, SystemProperties()["os.name"])
	})
}

func TestLocaleFromEnv(t *testing.T) {
	lookup := func(env map[string]string) func(string) (string, bool) {
		return func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		}
	}

	tests := []struct {
		name        string
		env         map[string]string
		wantLang    string
		wantCountry string
	}{
		{"LangWithRegion", map[string]string{"LANG": "de_DE.UTF-8"}, "de", "DE"},
		{"LanguageOnly", map[string]string{"LANG": "fr"}, "fr", ""},
		{"LCAllWins", map[string]string{"LC_ALL": "pt_BR", "LANG": "en_US"}, "pt", "BR"},
		{"EmptyVarsSkipped", map[string]string{"LC_ALL": "", "LC_MESSAGES": "ja_JP.eucJP"}, "ja", "JP"},
		{"POSIXLocale", map[string]string{"LANG": "C"}, "en", ""},
		{"Unset", map[string]string{}, "en", ""},
		{"Invalid", map[string]string{"LANG": "!!"}, "en", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang, country := localeFromEnv(lookup(tt.env))
			assert.Equal(t, tt.wantLang, lang)
			assert.Equal(t, tt.wantCountry, country)
		})
	}
}

func TestNormalizeLocale(t *testing.T) {
	assert.Equal(t, "de-DE", normalizeLocale("de_DE.UTF-8"))
	assert.Equal(t, "de-DE", normalizeLocale(" de_DE@euro "))
	assert.Equal(t, "en", normalizeLocale("POSIX"))
	assert.Equal(t, "sr-Latn-RS", normalizeLocale("sr_Latn_RS"))
}
