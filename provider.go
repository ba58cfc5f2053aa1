// FILE: config-builder/provider.go
package configbuilder

// Optional interfaces a config type may implement to configure its own build.
// They are consulted once, when the Builder is created, on a zero *T.

// PropertiesFilesProvider names the properties files' base names.
type PropertiesFilesProvider interface {
	PropertiesFiles() []string
}

// PropertyLocationsProvider names the directories searched for properties files.
type PropertyLocationsProvider interface {
	PropertyLocations() []string
}

// PropertySuffixesProvider selects the variant files tried for each base name.
type PropertySuffixesProvider interface {
	PropertySuffixes() Suffixes
}

// PropertyExtensionProvider names the file extensions tried for each base name.
type PropertyExtensionProvider interface {
	PropertyExtensions() []string
}

// LoadingOrderProvider overrides the per-field directive order by kind.
type LoadingOrderProvider interface {
	LoadingOrder() []Kind
}

// ErrorMessageFileProvider names a properties file whose entries override
// the default error message templates.
type ErrorMessageFileProvider interface {
	ErrorMessageFile() string
}

// applyProviders reads class-level settings from the optional interfaces of instance.
func applyProviders(instance any, opts *PropertyLoaderOptions, order *[]Kind, messageFile *string) {
	if p, ok := instance.(PropertiesFilesProvider); ok {
		opts.BaseNames = p.PropertiesFiles()
	}
	if p, ok := instance.(PropertyLocationsProvider); ok {
		opts.Locations = p.PropertyLocations()
	}
	if p, ok := instance.(PropertySuffixesProvider); ok {
		opts.Suffixes = p.PropertySuffixes()
	}
	if p, ok := instance.(PropertyExtensionProvider); ok {
		opts.Extensions = p.PropertyExtensions()
	}
	if p, ok := instance.(LoadingOrderProvider); ok {
		*order = p.LoadingOrder()
	}
	if p, ok := instance.(ErrorMessageFileProvider); ok {
		*messageFile = p.ErrorMessageFile()
	}
}
