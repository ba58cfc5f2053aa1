// File: config-builder/doc.go

// Package configbuilder populates configuration structs from declarative field
// tags. Each field lists the sources it may be read from: properties files,
// command-line options, system properties, environment variables and a static
// default. The first source that has a value wins; the raw text is then run
// through the field's transformer chain and converted to the field's type.
//
// Directives:
//
//	property:"app.port"                  key of the merged properties files
//	cli:"port,short=p,arg,desc=text"     command-line option; without arg it is a switch
//	sysprop:"user.language"              system property, see SystemProperties
//	env:"APP_PORT"                       environment variable
//	default:"8080"                       static default, always tried last
//	transform:"trim,locale"              named transformers applied before conversion
//
// Sources are tried in the order their tags appear, with the default last.
// WithLoadingOrder or a LoadingOrderProvider replaces that order by kind.
//
// Quick Start:
//
//	type Config struct {
//	    Port     int          `property:"app.port" env:"APP_PORT" default:"8080" validate:"min=1"`
//	    Language language.Tag `cli:"language,arg" sysprop:"user.language" transform:"locale"`
//	}
//
//	func (Config) PropertiesFiles() []string { return []string{"app"} }
//
//	cfg, err := configbuilder.NewBuilder[Config]().Build()
//	if errors.Is(err, configbuilder.ErrHelpRequested) {
//	    // print usage with PrintCommandLineHelp
//	}
//
// Build creates a new instance, through a registered constructor when one
// accepts the given arguments, and assigns every described field. Merge fills
// only the fields of an existing instance that still hold their zero value.
// Both validate the result with go-playground/validator `validate` tags and an
// optional Validate() error method, and report all violations together.
//
// A field left without any value fails at once with an AssignmentError when its
// type has no nil value. Declare a required field as a pointer, e.g. *string
// with `validate:"required"`, so its absence is reported as a violation
// together with the others:
//
//	type Config struct {
//	    Name *string `env:"APP_NAME" validate:"required"`
//	    Port *int    `env:"APP_PORT" validate:"required,min=1"`
//	}
//
// Failures are typed: DescriptorError, ExtractionError, TransformationError,
// ConstructionError, AssignmentError and ValidationError. Their messages come
// from an embedded template table that an ErrorMessageFileProvider can override.
//
// Thread Safety:
// Descriptors are computed once per type and shared. A Builder may run several
// Build and Merge calls concurrently once it is configured.
package configbuilder
