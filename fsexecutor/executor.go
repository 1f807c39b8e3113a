// Package fsexecutor runs finalized scripts in a throwaway directory through
// llmtools-go/exectool.
//
// Each run gets its own directory under the work root holding the script,
// the stdin file and a small runner script that feeds stdin to the
// interpreter. The directory is removed when the run ends.
package fsexecutor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flexigpt/llmtools-go/exectool"
	"github.com/google/uuid"

	"github.com/flexigpt/coderunner-go/internal/pathutil"
	"github.com/flexigpt/coderunner-go/spec"
)

const (
	DefaultTimeout    = 25 * time.Second
	DefaultScriptName = "main.py"

	stdinFileName = "stdin.txt"
)

type Executor struct {
	logger *slog.Logger

	interpreter []string
	scriptName  string
	timeout     time.Duration
	workRoot    string

	execPolicy      exectool.ExecutionPolicy
	runScriptPolicy exectool.RunScriptPolicy
}

type Option func(*Executor) error

func WithLogger(l *slog.Logger) Option {
	return func(x *Executor) error {
		x.logger = l
		return nil
	}
}

// WithInterpreter sets the interpreter command line, e.g. ("python3", "-u").
// The script path is appended as the last argument.
func WithInterpreter(argv ...string) Option {
	return func(x *Executor) error {
		out := make([]string, 0, len(argv))
		for _, a := range argv {
			if a = strings.TrimSpace(a); a != "" {
				out = append(out, a)
			}
		}
		if len(out) == 0 {
			return fmt.Errorf("%w: empty interpreter", spec.ErrInvalidArgument)
		}
		x.interpreter = out
		return nil
	}
}

// WithScriptName sets the file name the script is written to (default main.py).
func WithScriptName(name string) Option {
	return func(x *Executor) error {
		name = strings.TrimSpace(name)
		if name == "" || name != filepath.Base(name) {
			return fmt.Errorf("%w: script name must be a plain file name: %q", spec.ErrInvalidArgument, name)
		}
		x.scriptName = name
		return nil
	}
}

// WithTimeout sets the wall-clock budget of one run.
func WithTimeout(d time.Duration) Option {
	return func(x *Executor) error {
		if d <= 0 {
			return fmt.Errorf("%w: timeout must be positive", spec.ErrInvalidArgument)
		}
		x.timeout = d
		return nil
	}
}

// WithWorkRoot sets the directory under which run directories are created
// (default os.TempDir()).
func WithWorkRoot(dir string) Option {
	return func(x *Executor) error {
		x.workRoot = dir
		return nil
	}
}

// WithExecutionPolicy configures the exectool execution policy (output caps, process limits).
func WithExecutionPolicy(policy exectool.ExecutionPolicy) Option {
	return func(x *Executor) error {
		x.execPolicy = policy
		return nil
	}
}

// WithRunScriptPolicy configures exectool's RunScriptPolicy. Allowed
// extensions are always narrowed to the runner script.
func WithRunScriptPolicy(policy exectool.RunScriptPolicy) Option {
	return func(x *Executor) error {
		// Normalize/clone now to avoid sharing maps/slices with caller.
		norm, err := exectool.NormalizeRunScriptPolicy(policy)
		if err != nil {
			return err
		}
		x.runScriptPolicy = norm
		return nil
	}
}

func New(opts ...Option) (*Executor, error) {
	x := &Executor{
		logger:          slog.Default(),
		interpreter:     DefaultInterpreter(),
		scriptName:      DefaultScriptName,
		timeout:         DefaultTimeout,
		workRoot:        os.TempDir(),
		execPolicy:      exectool.DefaultExecutionPolicy(),
		runScriptPolicy: exectool.DefaultRunScriptPolicy(),
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(x); err != nil {
			return nil, err
		}
	}
	if x.logger == nil {
		x.logger = slog.Default()
	}

	x.runScriptPolicy.AllowedExtensions = []string{filepath.Ext(runnerName())}
	norm, err := exectool.NormalizeRunScriptPolicy(x.runScriptPolicy)
	if err != nil {
		return nil, err
	}
	x.runScriptPolicy = norm
	return x, nil
}

// Execute writes the script and its stdin into a fresh run directory and
// runs it under the configured timeout.
func (x *Executor) Execute(ctx context.Context, script string, inputs []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	root, err := pathutil.CanonicalDir(x.workRoot)
	if err != nil {
		return "", fmt.Errorf("work root: %w", err)
	}
	runID := uuid.Must(uuid.NewV7()).String()
	dir := filepath.Join(root, "run-"+runID)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			x.logger.Warn("remove run dir", "dir", dir, "err", err)
		}
	}()
	// exectool refuses symlinked roots; resolve after creation.
	if dir, err = pathutil.CanonicalDir(dir); err != nil {
		return "", fmt.Errorf("run dir: %w", err)
	}

	runner := runnerName()
	files := map[string]string{
		x.scriptName:  script,
		stdinFileName: StdinPayload(inputs),
		runner:        x.runnerBody(),
	}
	for name, body := range files {
		p, err := pathutil.JoinUnderRoot(dir, name)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			return "", fmt.Errorf("write %s: %w", name, err)
		}
	}

	et, err := exectool.NewExecTool(
		exectool.WithAllowedRoots([]string{dir}),
		exectool.WithWorkBaseDir(dir),
		exectool.WithExecutionPolicy(x.execPolicy),
		exectool.WithRunScriptPolicy(x.runScriptPolicy),
	)
	if err != nil {
		return "", err
	}

	runCtx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	start := time.Now()
	res, err := et.RunScript(runCtx, exectool.RunScriptArgs{Path: runner})
	deadlineHit := errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil

	log := x.logger.With("run", runID, "duration", time.Since(start), "inputs", len(inputs))
	switch {
	case deadlineHit:
		log.Info("script timed out", "timeout", x.timeout)
		return spec.TimeoutResult, nil
	case err != nil:
		if cerr := ctx.Err(); cerr != nil {
			return "", cerr
		}
		return "", fmt.Errorf("run script: %w", err)
	case res == nil:
		return "", errors.New("runscript returned nil result")
	case res.TimedOut:
		log.Info("script timed out", "timeout", x.timeout)
		return spec.TimeoutResult, nil
	}

	log.Debug("script finished", "exitCode", res.ExitCode)
	return RenderResult(res.Stdout, res.Stderr), nil
}

// StdinPayload joins inputs one per line with a trailing line break.
func StdinPayload(inputs []string) string {
	return strings.Join(inputs, "\n") + "\n"
}

// RenderResult concatenates stdout and stderr; a blank result becomes spec.NoOutputResult.
func RenderResult(stdout, stderr string) string {
	out := stdout + stderr
	if strings.TrimSpace(out) == "" {
		return spec.NoOutputResult
	}
	return out
}

func (x *Executor) runnerBody() string {
	if pathutil.IsWindows() {
		return pathutil.PowerShellRunWithStdin(x.interpreter, x.scriptName, stdinFileName) + "\r\n"
	}
	return "#!/bin/sh\n" + pathutil.POSIXRunWithStdin(x.interpreter, x.scriptName, stdinFileName) + "\n"
}

func runnerName() string {
	if pathutil.IsWindows() {
		return "run.ps1"
	}
	return "run.sh"
}

// DefaultInterpreter returns the interpreter used when none is configured.
func DefaultInterpreter() []string {
	if pathutil.IsWindows() {
		return []string{"python"}
	}
	return []string{"python3"}
}
