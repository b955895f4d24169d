package main

import (
	"encoding/json"
	"strings"

	"github.com/Station-Manager/ctxlog"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	context    []string
	noColor    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "ctxlog",
		Short:         "Inspect and exercise the ctxlog logging configuration",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "settings file (yaml or json); defaults to the environment")
	cmd.PersistentFlags().StringSliceVar(&opts.context, "context", nil, "instance context segments")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable ANSI colours")

	cmd.AddCommand(newStatusCmd(opts), newEmitCmd(opts))
	return cmd
}

// withService runs fn against an initialised service and always closes it,
// so queued remote forwards get a chance to finish before exit.
func withService(cmd *cobra.Command, opts *rootOptions, fn func(*ctxlog.Service) error) error {
	var provider ctxlog.Provider = ctxlog.EnvProvider{}
	if opts.configPath != "" {
		fp, err := ctxlog.NewFileProvider(opts.configPath)
		if err != nil {
			return err
		}
		provider = fp
	}

	cfg := ctxlog.DefaultConfig()
	cfg.NoColor = opts.noColor
	svc := &ctxlog.Service{
		Config:   &cfg,
		Provider: provider,
		Stdout:   cmd.OutOrStdout(),
		Stderr:   cmd.ErrOrStderr(),
	}
	if err := svc.Initialize(); err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	return fn(svc)
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print a sample line at every severity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, opts, func(svc *ctxlog.Service) error {
				svc.New(opts.context...).Status()
				return nil
			})
		},
	}
}

func newEmitCmd(opts *rootOptions) *cobra.Command {
	var (
		level    string
		callCtx  []string
		params   string
		template []string
	)

	cmd := &cobra.Command{
		Use:   "emit <message>",
		Short: "Log a single message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sev, err := ctxlog.ParseSeverity(level)
			if err != nil {
				return err
			}

			var logOpts []ctxlog.Option
			if len(callCtx) > 0 {
				logOpts = append(logOpts, ctxlog.WithContext(callCtx...))
			}
			if params != "" {
				var v any
				dec := json.NewDecoder(strings.NewReader(params))
				dec.UseNumber()
				if err := dec.Decode(&v); err != nil {
					return err
				}
				logOpts = append(logOpts, ctxlog.WithParams(v))
			}

			return withService(cmd, opts, func(svc *ctxlog.Service) error {
				log := svc.New(opts.context...)
				if len(template) > 0 {
					emitArgs(log, sev, args[0], template)
					return nil
				}
				log.Emit(sev, args[0], logOpts...)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&level, "level", "info", "severity: verbose, debug, info, warn, error or 1-5")
	cmd.Flags().StringSliceVar(&callCtx, "call-context", nil, "per-call context segments")
	cmd.Flags().StringVar(&params, "params", "", "JSON value printed next to the line")
	cmd.Flags().StringSliceVar(&template, "arg", nil, "positional values substituted into {0}, {1}, ...")
	cmd.MarkFlagsMutuallyExclusive("params", "arg")
	return cmd
}

func emitArgs(log *ctxlog.Logger, sev ctxlog.Severity, message string, values []string) {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	switch sev {
	case ctxlog.SeverityError:
		log.ErrorArgs(message, args...)
	case ctxlog.SeverityWarn:
		log.WarnArgs(message, args...)
	case ctxlog.SeverityDebug:
		log.DebugArgs(message, args...)
	case ctxlog.SeverityVerbose:
		log.VerboseArgs(message, args...)
	default:
		log.InfoArgs(message, args...)
	}
}
