// FILE: cmd/main.go
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	configbuilder "github.com/SashaKalko/config-builder"
)

// serverConfig is walked as a nested struct, its fields become Server.Host and Server.Port.
type serverConfig struct {
	Host string `json:"host" yaml:"host" cli:"host,short=H,arg,desc=listen address" property:"server.host" env:"DEMO_HOST" default:"localhost"`
	Port int    `json:"port" yaml:"port" cli:"port,short=p,arg,desc=listen port" env:"DEMO_PORT" property:"server.port" default:"8080" validate:"min=1,max=65535"`
}

type demoConfig struct {
	Server    serverConfig    `json:"server" yaml:"server"`
	Language  language.Tag    `json:"language" yaml:"language" cli:"language,short=l,arg,desc=display language" sysprop:"user.language" transform:"trim,locale" default:"en"`
	Timeout   time.Duration   `json:"timeout" yaml:"timeout" property:"timeout" env:"DEMO_TIMEOUT" default:"30s" validate:"gt=0"`
	Retention time.Duration   `json:"retention" yaml:"retention" property:"retention" default:"1w"`
	Tags      []string        `json:"tags,omitempty" yaml:"tags,omitempty" property:"tags" env:"DEMO_TAGS" transform:"split"`
	LogLevel  string          `json:"log_level" yaml:"log_level" cli:"log-level,arg,desc=debug|info|warn|error" env:"DEMO_LOG_LEVEL" default:"warn" validate:"oneof=debug info warn error"`
	Output    string          `json:"output" yaml:"output" cli:"output,short=o,arg,desc=json or yaml" default:"yaml" validate:"oneof=json yaml"`
	MinClient *semver.Version `json:"min_client,omitempty" yaml:"min_client,omitempty" property:"client.min_version" env:"DEMO_MIN_CLIENT"`
}

func (demoConfig) PropertiesFiles() []string { return []string{"demo"} }

func (demoConfig) PropertyLocations() []string {
	return configbuilder.DiscoverLocations(configbuilder.DefaultDiscoveryOptions("config-demo"))
}

func (demoConfig) PropertySuffixes() configbuilder.Suffixes {
	return configbuilder.Suffixes{Extra: []string{"local"}, HostNames: true}
}

func (demoConfig) PropertyExtensions() []string { return []string{"properties", "toml", "yaml"} }

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           log.WarnLevel,
		Prefix:          "demo",
	})

	root := &cobra.Command{
		Use:   "config-demo [options]",
		Short: "Build a configuration from properties files, command line, environment and defaults",
		// Options are declared on demoConfig and parsed by the builder
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			builder := configbuilder.NewBuilder[demoConfig]().
				WithArgs(args).
				WithLogger(logger)

			cfg, err := builder.Build()
			if errors.Is(err, configbuilder.ErrHelpRequested) {
				fmt.Fprintln(cmd.OutOrStdout(), cmd.Short)
				return builder.PrintCommandLineHelp(cmd.OutOrStdout())
			}
			if err != nil {
				return err
			}

			level, err := log.ParseLevel(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			logger.SetLevel(level)
			logger.Info("configuration built", "language", cfg.Language, "port", cfg.Server.Port)

			return printConfig(cmd, cfg)
		},
	}

	if err := root.Execute(); err != nil {
		logger.Error("config-demo failed", "error", err)
		os.Exit(1)
	}
}

func printConfig(cmd *cobra.Command, cfg *demoConfig) error {
	var (
		out []byte
		err error
	)
	switch cfg.Output {
	case "json":
		out, err = json.MarshalIndent(cfg, "", "  ")
		out = append(out, '\n')
	default:
		out, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
