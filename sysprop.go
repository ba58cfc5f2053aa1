// FILE: config-builder/sysprop.go
package configbuilder

import (
	"maps"
	"os"
	"os/user"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// localeEnvVars are checked in POSIX precedence order.
var localeEnvVars = []string{"LC_ALL", "LC_MESSAGES", "LANG"}

var systemProperties = sync.OnceValue(func() map[string]string {
	props := map[string]string{
		"os.name":        runtime.GOOS,
		"os.arch":        runtime.GOARCH,
		"file.separator": string(os.PathSeparator),
		"path.separator": string(os.PathListSeparator),
		"line.separator": "\n",
	}
	if runtime.GOOS == "windows" {
		props["line.separator"] = "\r\n"
	}

	if u, err := user.Current(); err == nil {
		props["user.name"] = u.Username
	}
	if home, err := os.UserHomeDir(); err == nil {
		props["user.home"] = home
	}
	if wd, err := os.Getwd(); err == nil {
		props["user.dir"] = wd
	}

	lang, country := localeFromEnv(os.LookupEnv)
	props["user.language"] = lang
	if country != "" {
		props["user.country"] = country
	}
	return props
})

// SystemProperties returns a copy of the process-wide property table.
// The table is computed once, on first use.
func SystemProperties() map[string]string {
	return maps.Clone(systemProperties())
}

// localeFromEnv derives language and country from the first non-empty locale
// variable. It falls back to "en" with no country.
func localeFromEnv(lookup func(string) (string, bool)) (lang, country string) {
	for _, name := range localeEnvVars {
		v, ok := lookup(name)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		tag, err := language.Parse(normalizeLocale(v))
		if err != nil {
			break
		}
		base, _ := tag.Base()
		lang = base.String()
		if region, conf := tag.Region(); conf == language.Exact {
			country = region.String()
		}
		return lang, country
	}
	return "en", ""
}

// normalizeLocale turns POSIX locale names such as "de_DE.UTF-8@euro" into BCP 47.
func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	if s == "C" || s == "POSIX" {
		return "en"
	}
	return strings.ReplaceAll(s, "_", "-")
}
