package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flexigpt/coderunner-go"
	"github.com/flexigpt/coderunner-go/fsexecutor"
	"github.com/flexigpt/coderunner-go/internal/config"
	"github.com/flexigpt/coderunner-go/spec"
)

const envPrefix = "CODERUNNER"

// app carries the resolved configuration from the root command to its subcommands.
type app struct {
	v      *viper.Viper
	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "coderunner",
		Short: "Repair and run Python scripts pasted as chat messages",
		Long: `coderunner takes Python source that lost its line breaks or indentation
(for example after being pasted into a chat), restores its layout, asks for
every input() value and then runs it with a time limit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (YAML)")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (text, json)")
	pf.Duration("timeout", 0, "execution time limit (default 25s)")
	pf.StringSlice("interpreter", nil, "interpreter command line (default python3)")
	pf.String("work-root", "", "directory for run directories (default system temp)")
	pf.Bool("no-reindent", false, "leave repaired lines flush left")
	for _, name := range []string{"config", "log-level", "log-format", "timeout", "interpreter", "work-root", "no-reindent"} {
		_ = a.v.BindPFlag(name, pf.Lookup(name))
	}
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		newChatCmd(a),
		newRunCmd(a),
		newFixCmd(a),
		newBatchCmd(a),
		newToolsCmd(a),
	)
	return root
}

// load reads the config file and applies flag and CODERUNNER_* overrides.
func (a *app) load(logOut io.Writer) error {
	cfg, err := config.Load(a.v.GetString("config"))
	if err != nil {
		return err
	}

	if s := a.v.GetString("log-level"); s != "" {
		cfg.Log.Level = s
	}
	if s := a.v.GetString("log-format"); s != "" {
		cfg.Log.Format = s
	}
	if d := a.v.GetDuration("timeout"); d > 0 {
		cfg.Executor.Timeout = d
	}
	if argv := a.v.GetStringSlice("interpreter"); len(argv) > 0 {
		cfg.Executor.Interpreter = argv
	}
	if s := a.v.GetString("work-root"); s != "" {
		cfg.Executor.WorkRoot = s
	}
	if a.v.GetBool("no-reindent") {
		cfg.Engine.Reindent = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	hopts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		a.logger = slog.New(slog.NewJSONHandler(logOut, hopts))
	} else {
		a.logger = slog.New(slog.NewTextHandler(logOut, hopts))
	}
	a.cfg = cfg
	a.logger.Debug("config resolved", "file", a.v.GetString("config"), "timeout", cfg.Executor.Timeout)
	return nil
}

func (a *app) executor() (*fsexecutor.Executor, error) {
	opts := []fsexecutor.Option{
		fsexecutor.WithLogger(a.logger),
		fsexecutor.WithInterpreter(a.cfg.Executor.Interpreter...),
		fsexecutor.WithTimeout(a.cfg.Executor.Timeout),
	}
	if a.cfg.Executor.WorkRoot != "" {
		opts = append(opts, fsexecutor.WithWorkRoot(a.cfg.Executor.WorkRoot))
	}
	return fsexecutor.New(opts...)
}

// engine builds an Engine from the resolved config. extra options are
// applied last.
func (a *app) engine(sender spec.Sender, extra ...coderunner.Option) (*coderunner.Engine, error) {
	x, err := a.executor()
	if err != nil {
		return nil, fmt.Errorf("executor: %w", err)
	}
	opts := []coderunner.Option{
		coderunner.WithLogger(a.logger),
		coderunner.WithExecutor(x),
		coderunner.WithDialect(a.cfg.Dialect),
		coderunner.WithFallbackPrompt(a.cfg.Engine.FallbackPrompt),
		coderunner.WithReindent(a.cfg.Engine.Reindent),
		coderunner.WithSessionTTL(a.cfg.Engine.SessionTTL),
		coderunner.WithMaxSessions(a.cfg.Engine.MaxSessions),
		coderunner.WithResultFormatter(coderunner.PlainResult),
	}
	if sender != nil {
		opts = append(opts, coderunner.WithSender(sender))
	}
	return coderunner.New(append(opts, extra...)...)
}
