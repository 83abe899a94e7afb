// Package cli wires the funcstudy commands: serve, study and tui.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/njchilds90/funcstudy/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	LogFormat  string

	// Config is loaded by the root command before any subcommand runs.
	Config config.Config
}

var ValidLogFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the funcstudy CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "funcstudy",
		Short: "Study a real function of x",
		Long: `funcstudy studies a function of one variable x: range, limits at ±∞,
derivative and critical points, variation table, convexity, asymptotes
and a plot over [-zoom, zoom], with a PDF export.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format (text|json), overrides the config")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewStudyCommand(opts))
	cmd.AddCommand(NewTUICommand(opts))

	return cmd
}

// setup loads the config, applies the global flags and installs the
// default logger on stderr.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.LogFormat != "" {
		if !isValidLogFormat(o.LogFormat) {
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid log format %q: must be one of %v", o.LogFormat, ValidLogFormats))
		}
		cfg.Log.Format = o.LogFormat
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}
	o.Config = cfg
	slog.SetDefault(cfg.Log.NewLogger(cmd.ErrOrStderr()))
	return nil
}

func isValidLogFormat(format string) bool {
	for _, f := range ValidLogFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return GetExitCode(err)
}
