package coderunner

import (
	"log/slog"
	"slices"
	"time"

	"github.com/flexigpt/coderunner-go/spec"
)

type engineOptions struct {
	logger *slog.Logger

	executor spec.Executor
	sender   spec.Sender

	dialect        spec.Dialect
	fallbackPrompt string
	reindent       bool
	formatResult   func(string) string

	sessionTTL  time.Duration
	maxSessions int
	now         func() time.Time
}

type Option func(*engineOptions) error

func WithLogger(l *slog.Logger) Option {
	return func(o *engineOptions) error {
		o.logger = l
		return nil
	}
}

// WithExecutor sets the execution collaborator. Required.
func WithExecutor(x spec.Executor) Option {
	return func(o *engineOptions) error {
		o.executor = x
		return nil
	}
}

// WithSender sets the transport used to deliver prompts and results.
// Required for OnIncoming, Submit and ProvideAnswer.
func WithSender(s spec.Sender) Option {
	return func(o *engineOptions) error {
		o.sender = s
		return nil
	}
}

// WithDialect replaces the guest-language constructs (default spec.DefaultDialect).
func WithDialect(d spec.Dialect) Option {
	return func(o *engineOptions) error {
		o.dialect = spec.Dialect{
			ReadCalls:     slices.Clone(d.ReadCalls),
			OutputCalls:   slices.Clone(d.OutputCalls),
			BlockKeywords: slices.Clone(d.BlockKeywords),
		}
		return nil
	}
}

// WithFallbackPrompt sets the question used for read calls without a literal prompt.
func WithFallbackPrompt(p string) Option {
	return func(o *engineOptions) error {
		o.fallbackPrompt = p
		return nil
	}
}

// WithReindent toggles indentation reconstruction. When off, repaired lines
// are left flush left.
func WithReindent(enabled bool) Option {
	return func(o *engineOptions) error {
		o.reindent = enabled
		return nil
	}
}

// WithResultFormatter wraps execution results before they are sent
// (default FencedResult).
func WithResultFormatter(f func(string) string) Option {
	return func(o *engineOptions) error {
		o.formatResult = f
		return nil
	}
}

// WithSessionTTL sets how long an idle collecting session survives. 0 disables expiry.
func WithSessionTTL(ttl time.Duration) Option {
	return func(o *engineOptions) error {
		o.sessionTTL = ttl
		return nil
	}
}

// WithMaxSessions caps the number of concurrently collecting conversations;
// the least recently used session is evicted first. 0 disables the cap.
func WithMaxSessions(maxSessions int) Option {
	return func(o *engineOptions) error {
		o.maxSessions = maxSessions
		return nil
	}
}

func withClock(now func() time.Time) Option {
	return func(o *engineOptions) error {
		o.now = now
		return nil
	}
}

// FencedResult wraps a result in a fenced code block for Markdown transports.
func FencedResult(out string) string {
	return "```\n" + out + "\n```"
}

// PlainResult returns the result unchanged.
func PlainResult(out string) string { return out }
