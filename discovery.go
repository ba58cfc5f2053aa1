// FILE: config-builder/discovery.go
package configbuilder

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DiscoveryOptions configures the search for properties file locations
type DiscoveryOptions struct {
	// AppName is the directory name used below the XDG config directories
	AppName string

	// Custom search paths, after the XDG ones
	Paths []string

	// Environment variable naming one more directory, searched last
	EnvVar string

	// Whether to search in XDG config directories
	UseXDG bool

	// Whether to search in current directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns sensible defaults
func DefaultDiscoveryOptions(appName string) DiscoveryOptions {
	return DiscoveryOptions{
		AppName:       appName,
		EnvVar:        strings.ToUpper(strings.ReplaceAll(appName, "-", "_")) + "_CONFIG_DIR",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// DiscoverLocations returns directories in increasing precedence, suitable as
// PropertyLoaderOptions.Locations: system XDG dirs, the user XDG dir, custom
// paths, the current directory, then the directory named by EnvVar.
// Directories are not checked for existence; the loader skips missing files.
func DiscoverLocations(opts DiscoveryOptions) []string {
	var locations []string

	if opts.UseXDG && opts.AppName != "" {
		locations = append(locations, xdgConfigPaths(opts.AppName)...)
	}
	locations = append(locations, opts.Paths...)

	if opts.UseCurrentDir {
		locations = append(locations, ".")
	}

	if opts.EnvVar != "" {
		if dir := os.Getenv(opts.EnvVar); dir != "" {
			locations = append(locations, dir)
		}
	}

	return slices.Compact(locations)
}

// xdgConfigPaths returns the system config dirs, least important first,
// followed by the user config dir.
func xdgConfigPaths(appName string) []string {
	systemDirs := []string{"/etc/xdg", "/etc"}
	if v := os.Getenv("XDG_CONFIG_DIRS"); v != "" {
		systemDirs = filepath.SplitList(v)
	}

	var paths []string
	for _, dir := range slices.Backward(systemDirs) {
		paths = append(paths, filepath.Join(dir, appName))
	}

	userDir := os.Getenv("XDG_CONFIG_HOME")
	if userDir == "" {
		if home := os.Getenv("HOME"); home != "" {
			userDir = filepath.Join(home, ".config")
		}
	}
	if userDir != "" {
		paths = append(paths, filepath.Join(userDir, appName))
	}
	return paths
}
