package configbuilder

import "os"

// BuildContext holds the inputs of a single build invocation.
// It is owned by that invocation and must not be shared across builds.
type BuildContext struct {
	// Properties is the merged properties table, last loaded file wins
	Properties map[string]string
	// CommandLine maps option names to the values given on the command line
	CommandLine map[string]string
	// SystemProperties is the system property table
	SystemProperties map[string]string
	// Order optionally overrides per-field directive order by kind
	Order []Kind
	// LookupEnv resolves environment variables; nil means os.LookupEnv
	LookupEnv func(key string) (string, bool)
}

func (c *BuildContext) lookupEnv(key string) (string, bool) {
	if c.LookupEnv == nil {
		return os.LookupEnv(key)
	}
	return c.LookupEnv(key)
}
