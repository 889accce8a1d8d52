package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-printtmpl/pkg/printtmpl"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "printtmpl",
		Short: "Validate, render and preview XML print templates",
		Long: `printtmpl works with XML print templates: documents made of variables,
loops, conditions and styles that render to printable HTML and CSS.

Configuration is read from --config (YAML) and PRINTTMPL_* environment
variables, which override the file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error, off")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output command results in JSON format")

	cmd.AddCommand(
		newValidateCmd(opts),
		newRenderCmd(opts),
		newPreviewCmd(opts),
		newEntitiesCmd(opts),
		newVersionCmd(opts),
	)
	return cmd
}

func (o *rootOptions) loadConfig() (*printtmpl.Config, error) {
	var config *printtmpl.Config
	if o.configPath != "" {
		loaded, err := printtmpl.LoadConfigFile(o.configPath)
		if err != nil {
			return nil, err
		}
		config = loaded
	} else {
		config = printtmpl.ConfigFromEnvironment()
	}

	if o.logLevel != "" {
		config.LogLevel = o.logLevel
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// newEngine builds an engine from the loaded configuration, logging to the
// command's stderr.
func (o *rootOptions) newEngine(cmd *cobra.Command, extra ...printtmpl.Option) (*printtmpl.Engine, error) {
	config, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	options := []printtmpl.Option{
		printtmpl.WithConfig(config),
		printtmpl.WithLogger(printtmpl.NewLoggerFromConfig(cmd.ErrOrStderr(), config)),
	}
	return printtmpl.NewWithOptions(append(options, extra...)...), nil
}

func readTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}
	return string(data), nil
}
