package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"codearena/internal/cli/app"
	"codearena/internal/cli/command"
	"codearena/internal/cli/config"
	"codearena/internal/cli/repl"
	"codearena/pkg/utils/contextkey"
	"codearena/pkg/utils/logger"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "~/.codearena/config.yaml"

type rootOptions struct {
	configPath string
	baseURL    string
	timeout    time.Duration
	statePath  string
	logLevel   string

	app *app.App
}

func newRootCmd() (*cobra.Command, *rootOptions) {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "arena",
		Short:         "Practice coding problems against the codearena backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	flags.StringVar(&opts.baseURL, "base", "", "Override API base URL")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Override HTTP timeout (e.g. 10s)")
	flags.StringVar(&opts.statePath, "state", "", "Override session state path")
	flags.StringVar(&opts.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	registry := command.Registry()
	root.AddCommand(
		newProblemCmd(opts, registry),
		newSubmitCmd(opts, registry),
		newChatCmd(opts, registry),
		newReplCmd(opts, registry),
	)
	return root, opts
}

// execute runs the command tree and always releases what setup opened,
// including when a command fails.
func execute(ctx context.Context, root *cobra.Command, opts *rootOptions) error {
	defer opts.teardown()
	return root.ExecuteContext(ctx)
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	if o.timeout > 0 {
		cfg.Timeout = o.timeout
	}
	if o.statePath != "" {
		cfg.StatePath = o.statePath
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := logger.Init(cfg.Log); err != nil {
		return fmt.Errorf("init logger failed: %w", err)
	}

	a, err := app.New(cfg, os.Stdout)
	if err != nil {
		return err
	}
	o.app = a

	ctx := context.WithValue(cmd.Context(), contextkey.SessionID, uuid.NewString())
	ctx = context.WithValue(ctx, contextkey.UserID, a.State().UserID)
	cmd.SetContext(ctx)
	return nil
}

func (o *rootOptions) teardown() {
	if o.app != nil {
		_ = o.app.Close()
		o.app = nil
	}
	_ = logger.Sync()
}

// run binds params to a registry command, checks required fields and executes it.
func (o *rootOptions) run(cmd *cobra.Command, registry map[string]command.Command, key string, params command.Params) error {
	target, ok := registry[key]
	if !ok {
		return fmt.Errorf("unknown command: %s", key)
	}
	if missing := target.Missing(params); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, f := range missing {
			names = append(names, f.Name)
		}
		return fmt.Errorf("missing required %s", strings.Join(names, ", "))
	}
	return target.Run(cmd.Context(), o.app, params)
}

func newReplCmd(opts *rootOptions, registry map[string]command.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return repl.New(opts.app, registry).Run(cmd.Context())
		},
	}
}
