// Package config loads the coderunner YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flexigpt/coderunner-go/fsexecutor"
	"github.com/flexigpt/coderunner-go/internal/session"
	"github.com/flexigpt/coderunner-go/spec"
)

type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Dialect  spec.Dialect   `yaml:"dialect"`
	Executor ExecutorConfig `yaml:"executor"`
	Log      LogConfig      `yaml:"log"`
}

type EngineConfig struct {
	SessionTTL     time.Duration `yaml:"sessionTTL"`
	MaxSessions    int           `yaml:"maxSessions"`
	FallbackPrompt string        `yaml:"fallbackPrompt"`
	Reindent       bool          `yaml:"reindent"`
}

type ExecutorConfig struct {
	Interpreter []string      `yaml:"interpreter"`
	Timeout     time.Duration `yaml:"timeout"`
	// Empty means os.TempDir().
	WorkRoot string `yaml:"workRoot"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

func Default() Config {
	return Config{
		Engine: EngineConfig{
			SessionTTL:     session.DefaultTTL,
			MaxSessions:    session.DefaultMaxSessions,
			FallbackPrompt: spec.FallbackPrompt,
			Reindent:       true,
		},
		Dialect: spec.DefaultDialect(),
		Executor: ExecutorConfig{
			Interpreter: fsexecutor.DefaultInterpreter(),
			Timeout:     fsexecutor.DefaultTimeout,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over Default. Keys missing from the file keep their
// defaults; an empty path returns Default unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Engine.SessionTTL < 0 {
		errs = append(errs, errors.New("engine.sessionTTL must not be negative"))
	}
	if c.Engine.MaxSessions < 0 {
		errs = append(errs, errors.New("engine.maxSessions must not be negative"))
	}
	if len(c.Dialect.ReadCalls) == 0 {
		errs = append(errs, errors.New("dialect.readCalls must not be empty"))
	}
	if len(c.Executor.Interpreter) == 0 {
		errs = append(errs, errors.New("executor.interpreter must not be empty"))
	}
	if c.Executor.Timeout <= 0 {
		errs = append(errs, errors.New("executor.timeout must be positive"))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want text or json", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", spec.ErrInvalidArgument, errors.Join(errs...))
	}
	return nil
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
