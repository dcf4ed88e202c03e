package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"introspect/internal/config"
	"introspect/internal/logging"
	"introspect/internal/pipeline"
)

// options holds the flags shared by every command.
type options struct {
	configFile   string
	verbosity    int
	jsonLogs     bool
	namespace    string
	template     string
	includeTypes []string
	excludeTypes []string
	skipStd      bool

	log *zap.SugaredLogger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "introspect [flags] <input>... <output>",
		Short: "Generate a C++ reflection header from declaration manifests",
		Long: `Generate a C++ reflection header from declaration manifests.

Inputs are manifest files (YAML, JSON or TOML) or directories holding them.
The last argument is the header to write; its directory must exist.

Exit codes:
  1 - Usage error
  2 - An input could not be found or parsed
  3 - The output directory is missing or not writable

Examples:
  introspect shapes.yaml reflect.hpp
  introspect -c introspect.yaml manifests/ include/reflect.hpp
  introspect -X 'detail::' -vv shapes.yaml reflect.hpp`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(opts.verbosity, opts.jsonLogs)
			if err != nil {
				return errors.Wrap(err, "initializing logger")
			}
			opts.log = log
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.pipeline()
			if err != nil {
				return err
			}
			inputs, output := splitArgs(args)
			res, err := p.Run(inputs, output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %d records, %d enums, %d rejected\n",
				output, len(res.Records), len(res.Enums), len(res.Rejected))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Config file (YAML/JSON/TOML)")
	flags.CountVarP(&opts.verbosity, "verbose", "v", "Increase output verbosity (-v, -vv)")
	flags.BoolVar(&opts.jsonLogs, "json-logs", false, "Write logs as JSON")
	flags.StringVar(&opts.namespace, "namespace", "", "Namespace wrapping the generated code")
	flags.StringVarP(&opts.template, "template", "t", "", "Replacement header template")
	flags.StringSliceVarP(&opts.includeTypes, "types", "T", nil, "Only reflect these qualified names (comma-separated)")
	flags.StringSliceVarP(&opts.excludeTypes, "exclude", "X", nil, "Do not reflect these qualified names; a trailing :: selects a namespace")
	flags.BoolVar(&opts.skipStd, "skip-std", false, "Do not reflect std and reserved namespaces")

	root.AddCommand(newCheckCmd(opts), newWatchCmd(opts))
	return root
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check <input>... <output>",
		Short: "Check that the header is up to date",
		Long: `Generate the header in memory and compare it with the existing file.

Exit codes:
  0 - The header is up to date
  1 - The header is missing or differs
  2 - An input could not be found or parsed`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.pipeline()
			if err != nil {
				return err
			}
			inputs, output := splitArgs(args)
			upToDate, _, err := p.Check(inputs, output)
			if err != nil {
				return err
			}
			if !upToDate {
				return errors.WithHint(errors.Wrap(errOutOfDate, output),
					"run introspect with the same arguments to regenerate it")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date\n", output)
			return nil
		},
	}
}

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <input>... <output>",
		Short: "Regenerate the header whenever an input changes",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.pipeline()
			if err != nil {
				return err
			}
			inputs, output := splitArgs(args)
			if err := pipeline.CheckOutput(output); err != nil {
				return err
			}
			w, err := p.NewWatcher(inputs, output)
			if err != nil {
				return err
			}
			w.OnRun = func(res *pipeline.Result, err error) {
				if err == nil {
					opts.log.Infow("Header regenerated", "path", output, "records", len(res.Records))
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			opts.log.Infow("Watching inputs", "inputs", inputs, "output", output)
			return w.Run(ctx)
		},
	}
}

// pipeline loads the configuration and applies flag overrides.
func (o *options) pipeline() (*pipeline.Pipeline, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg, o.log), nil
}

func (o *options) config() (*config.Config, error) {
	cfg := config.New()
	if o.configFile != "" {
		if err := cfg.LoadFile(o.configFile); err != nil {
			return nil, errors.Wrap(err, "loading config")
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		o.log.Warnw("Ignoring .env file", "error", err)
	}

	if o.namespace != "" {
		cfg.Options.Namespace = o.namespace
	}
	if o.template != "" {
		cfg.Options.Template = o.template
	}
	if len(o.includeTypes) > 0 {
		cfg.Options.IncludeTypes = o.includeTypes
	}
	if len(o.excludeTypes) > 0 {
		cfg.Options.ExcludeTypes = append(cfg.Options.ExcludeTypes, o.excludeTypes...)
	}
	if o.skipStd {
		cfg.Options.SkipStd = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitArgs(args []string) (inputs []string, output string) {
	return args[:len(args)-1], args[len(args)-1]
}
