// File: config-builder/builder.go
package configbuilder

import (
	"fmt"
	"io"
	"maps"
	"os"
	"reflect"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// Builder provides a fluent interface for building configuration instances of T.
// Its With methods must not be called concurrently with Build or Merge; several
// Build and Merge calls may run concurrently.
type Builder[T any] struct {
	descs        []FieldDescriptor
	args         []string
	loaderOpts   PropertyLoaderOptions
	fs           afero.Fs
	order        []Kind
	messageFile  string
	strategies   Strategies
	transformers Transformers
	constructors []any
	validator    ConstraintValidator
	sysProps     map[string]string
	lookupEnv    func(string) (string, bool)
	logger       *log.Logger
	err          error
}

// NewBuilder creates a builder for T, which must be a struct type.
// Command-line arguments default to os.Args[1:].
func NewBuilder[T any]() *Builder[T] {
	b := &Builder[T]{
		args:         os.Args[1:],
		loaderOpts:   DefaultPropertyLoaderOptions(),
		fs:           afero.NewOsFs(),
		strategies:   DefaultStrategies(),
		transformers: DefaultTransformers(),
		validator:    NewStructValidator(),
		sysProps:     make(map[string]string),
		logger:       defaultLogger(),
	}

	descs, err := DescribeType(reflect.TypeFor[T]())
	if err != nil {
		b.err = err
		return b
	}
	b.descs = descs

	if _, _, err := commandLineFlagSet("config", descs); err != nil {
		b.err = newDescriptorError(defaultErrorMessages(), "", reflect.TypeFor[T]().String(), "", err)
		return b
	}

	applyProviders(any(new(T)), &b.loaderOpts, &b.order, &b.messageFile)
	return b
}

// defaultLogger writes warnings and errors to stderr.
func defaultLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:  log.WarnLevel,
		Prefix: "configbuilder",
	})
}

// WithArgs sets the command-line arguments, without the program name
func (b *Builder[T]) WithArgs(args []string) *Builder[T] {
	b.args = args
	return b
}

// WithCommandLineArgs is the variadic form of WithArgs
func (b *Builder[T]) WithCommandLineArgs(args ...string) *Builder[T] {
	return b.WithArgs(args)
}

// WithPropertiesFiles replaces the base names of the properties files to load
func (b *Builder[T]) WithPropertiesFiles(names ...string) *Builder[T] {
	b.loaderOpts.BaseNames = names
	return b
}

// WithLoadingOrder overrides the directive order of every field by kind.
// Kinds not listed are tried after the listed ones; the default stays last
// unless listed.
func (b *Builder[T]) WithLoadingOrder(kinds ...Kind) *Builder[T] {
	b.order = kinds
	return b
}

// WithTransformer registers a named transformer for use in `transform` tags
func (b *Builder[T]) WithTransformer(name string, t Transformer) *Builder[T] {
	if name == "" {
		b.err = fmt.Errorf("transformer name must not be empty")
		return b
	}
	if t != nil {
		b.transformers[name] = t
	}
	return b
}

// WithStrategy replaces the extraction strategy for a directive kind
func (b *Builder[T]) WithStrategy(kind Kind, s Strategy) *Builder[T] {
	if s != nil {
		b.strategies[kind] = s
	}
	return b
}

// WithConstructor registers functions creating T or *T, optionally returning
// an error. Build selects the single constructor accepting its arguments.
func (b *Builder[T]) WithConstructor(fns ...any) *Builder[T] {
	for _, fn := range fns {
		if err := checkConstructor(fn, reflect.TypeFor[T]()); err != nil {
			b.err = &ConstructionError{newFailure(defaultErrorMessages(), FailureConstruction, "",
				reflect.TypeFor[T]().String(), "", err)}
			return b
		}
		b.constructors = append(b.constructors, fn)
	}
	return b
}

// WithValidator replaces the constraint-validation engine
func (b *Builder[T]) WithValidator(v ConstraintValidator) *Builder[T] {
	if v != nil {
		b.validator = v
	}
	return b
}

// WithLogger sets the logger used for debug tracing of the build
func (b *Builder[T]) WithLogger(logger *log.Logger) *Builder[T] {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// WithFs sets the filesystem properties files are read from
func (b *Builder[T]) WithFs(fs afero.Fs) *Builder[T] {
	if fs != nil {
		b.fs = fs
	}
	return b
}

// WithSystemProperty adds or replaces an entry of the system property table
func (b *Builder[T]) WithSystemProperty(key, value string) *Builder[T] {
	b.sysProps[key] = value
	return b
}

// WithLookupEnv replaces the environment lookup, mainly for tests
func (b *Builder[T]) WithLookupEnv(fn func(string) (string, bool)) *Builder[T] {
	b.lookupEnv = fn
	return b
}

// Build constructs a new T from args, assigns every described field and
// validates the result. A help request on the command line yields ErrHelpRequested.
func (b *Builder[T]) Build(args ...any) (*T, error) {
	if err := b.check(); err != nil {
		return nil, err
	}

	ctx, messages, err := b.prepare()
	if err != nil {
		return nil, err
	}

	instance, err := construct[T](b.constructors, args, messages)
	if err != nil {
		return nil, err
	}

	if err := b.setter(messages).setFields(reflect.ValueOf(instance).Elem(), b.descs, ctx); err != nil {
		return nil, err
	}

	if err := (&configValidator{engine: b.validator, messages: messages}).validate(instance); err != nil {
		return nil, err
	}

	b.logger.Debug("configuration built", "type", reflect.TypeFor[T](), "fields", len(b.descs))
	return instance, nil
}

// Merge fills the fields of existing that still hold their zero value and
// validates the result. Values already set are never overwritten. Required
// command-line options are still checked, even for fields already set.
func (b *Builder[T]) Merge(existing *T) (*T, error) {
	if existing == nil {
		return nil, ErrNilInstance
	}
	if err := b.check(); err != nil {
		return nil, err
	}

	ctx, messages, err := b.prepare()
	if err != nil {
		return nil, err
	}

	if err := b.setter(messages).setEmptyFields(reflect.ValueOf(existing).Elem(), b.descs, ctx); err != nil {
		return nil, err
	}

	if err := (&configValidator{engine: b.validator, messages: messages}).validate(existing); err != nil {
		return nil, err
	}

	b.logger.Debug("configuration merged", "type", reflect.TypeFor[T](), "fields", len(b.descs))
	return existing, nil
}

// MustBuild is like Build but panics on error
func (b *Builder[T]) MustBuild(args ...any) *T {
	instance, err := b.Build(args...)
	if err != nil {
		panic(fmt.Sprintf("config build failed: %v", err))
	}
	return instance
}

// PrintCommandLineHelp writes the usage of every command-line option of T
func (b *Builder[T]) PrintCommandLineHelp(w io.Writer) error {
	if b.err != nil {
		return b.err
	}
	usage, err := commandLineUsage(b.descs)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Usage of %s:\n%s", reflect.TypeFor[T]().Name(), usage)
	return err
}

// check reports builder errors and transformer names missing from the registry.
func (b *Builder[T]) check() error {
	if b.err != nil {
		return b.err
	}
	for _, fd := range b.descs {
		for _, name := range fd.Transformers {
			if _, ok := b.transformers[name]; !ok {
				return newDescriptorError(defaultErrorMessages(), fd.Name, fd.Type.String(), name,
					fmt.Errorf("%w %q", ErrUnknownTransformer, name))
			}
		}
	}
	return nil
}

// prepare gathers the per-invocation inputs: command line, properties,
// system properties and the error message table.
func (b *Builder[T]) prepare() (*BuildContext, *ErrorMessages, error) {
	cli, err := parseCommandLine(b.descs, b.args)
	if err != nil {
		return nil, nil, err
	}

	loader := NewPropertyLoader(b.fs, b.loaderOpts, b.logger)
	props, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load properties: %w", err)
	}

	messages := DefaultErrorMessages()
	if b.messageFile != "" {
		overrides, err := loader.WithBaseNames(b.messageFile).Load()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load error messages: %w", err)
		}
		if messages, err = NewErrorMessages(overrides); err != nil {
			return nil, nil, err
		}
	}

	sysProps := SystemProperties()
	maps.Copy(sysProps, b.sysProps)

	ctx := &BuildContext{
		Properties:       props,
		CommandLine:      cli,
		SystemProperties: sysProps,
		Order:            b.order,
		LookupEnv:        b.lookupEnv,
	}
	return ctx, messages, nil
}

func (b *Builder[T]) setter(messages *ErrorMessages) *fieldSetter {
	return &fieldSetter{
		extractor: &valueExtractor{
			strategies:   b.strategies,
			transformers: b.transformers,
			messages:     messages,
		},
		messages: messages,
		logger:   b.logger,
	}
}
