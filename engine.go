// Package coderunner repairs scripts pasted into a conversation, asks the
// user for every value the script reads interactively, and runs the script
// once all answers are in.
//
// An Engine is transport agnostic: a chat bot, a polling loop or a terminal
// driver calls OnIncoming for every user message and receives replies
// through the configured spec.Sender. Execution is delegated to a
// spec.Executor (see package fsexecutor).
package coderunner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/flexigpt/llmtools-go"

	"github.com/flexigpt/coderunner-go/internal/prompts"
	"github.com/flexigpt/coderunner-go/internal/repair"
	"github.com/flexigpt/coderunner-go/internal/session"
	"github.com/flexigpt/coderunner-go/runnertool"
	"github.com/flexigpt/coderunner-go/spec"
)

type Engine struct {
	logger *slog.Logger

	executor spec.Executor
	sender   spec.Sender

	dialect        spec.Dialect
	fallbackPrompt string
	reindent       bool
	formatResult   func(string) string

	sessions *session.Store
	locks    keyLocks
}

func New(opts ...Option) (*Engine, error) {
	o := engineOptions{
		logger:         slog.Default(),
		dialect:        spec.DefaultDialect(),
		fallbackPrompt: spec.FallbackPrompt,
		reindent:       true,
		formatResult:   FencedResult,
		sessionTTL:     session.DefaultTTL,
		maxSessions:    session.DefaultMaxSessions,
		now:            time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	if o.executor == nil {
		return nil, spec.ErrNilExecutor
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.formatResult == nil {
		o.formatResult = PlainResult
	}
	if len(o.dialect.ReadCalls) == 0 {
		return nil, fmt.Errorf("%w: dialect needs at least one read call", spec.ErrInvalidArgument)
	}

	return &Engine{
		logger:         o.logger,
		executor:       o.executor,
		sender:         o.sender,
		dialect:        o.dialect,
		fallbackPrompt: o.fallbackPrompt,
		reindent:       o.reindent,
		formatResult:   o.formatResult,
		sessions: session.NewStore(session.StoreConfig{
			TTL:         o.sessionTTL,
			MaxSessions: o.maxSessions,
			Now:         o.now,
		}),
	}, nil
}

// Prepare runs the text-repair pipeline and extracts the prompts.
func (e *Engine) Prepare(text string) spec.PreparedScript {
	script := repair.Fix(text, e.dialect, e.reindent)
	return spec.PreparedScript{
		Script:  script,
		Prompts: prompts.Extract(script, e.dialect.ReadCalls, e.fallbackPrompt),
	}
}

// OnIncoming is the single entry point for transports. While key is
// collecting answers every message is an answer; otherwise the message is a
// new script.
func (e *Engine) OnIncoming(ctx context.Context, key spec.ConversationKey, text string) error {
	if err := e.check(ctx, key); err != nil {
		return err
	}
	unlock := e.locks.lock(key)
	defer unlock()

	if _, ok := e.sessions.Peek(key); ok {
		return e.provideAnswerLocked(ctx, key, text)
	}
	return e.submitLocked(ctx, key, text)
}

// Submit starts a new script for key. It fails with spec.ErrSessionActive
// while key is still collecting answers.
func (e *Engine) Submit(ctx context.Context, key spec.ConversationKey, text string) error {
	if err := e.check(ctx, key); err != nil {
		return err
	}
	unlock := e.locks.lock(key)
	defer unlock()
	return e.submitLocked(ctx, key, text)
}

// ProvideAnswer records the next answer for key. It fails with
// spec.ErrSessionNotFound when key is not collecting.
func (e *Engine) ProvideAnswer(ctx context.Context, key spec.ConversationKey, text string) error {
	if err := e.check(ctx, key); err != nil {
		return err
	}
	unlock := e.locks.lock(key)
	defer unlock()
	return e.provideAnswerLocked(ctx, key, text)
}

// Collecting reports whether key has a session awaiting answers. Like State
// and Session it does not count as activity for session expiry.
func (e *Engine) Collecting(key spec.ConversationKey) bool {
	s, ok := e.sessions.Peek(key)
	return ok && s.Awaiting()
}

// State returns the protocol state of key.
func (e *Engine) State(key spec.ConversationKey) spec.SessionState {
	if e.Collecting(key) {
		return spec.SessionStateCollecting
	}
	return spec.SessionStateIdle
}

// Session returns a snapshot of the collecting session for key.
func (e *Engine) Session(key spec.ConversationKey) (spec.SessionInfo, bool) {
	s, ok := e.sessions.Peek(key)
	if !ok {
		return spec.SessionInfo{}, false
	}
	return s.Info(), true
}

// Cancel abandons the collecting session for key without running it.
func (e *Engine) Cancel(key spec.ConversationKey) bool {
	unlock := e.locks.lock(key)
	defer unlock()

	if _, ok := e.sessions.Peek(key); !ok {
		return false
	}
	e.sessions.Delete(key)
	e.logger.Info("session cancelled", "key", key)
	return true
}

// SweepExpired drops sessions idle for longer than the session TTL.
func (e *Engine) SweepExpired() int {
	n := e.sessions.Sweep()
	if n > 0 {
		e.logger.Info("expired sessions swept", "count", n)
	}
	return n
}

// RegisterTools registers the code.run / code.fix tools into an existing llmtools-go Registry.
func (e *Engine) RegisterTools(reg *llmtools.Registry) error {
	return runnertool.Register(reg, e)
}

// NewToolsRegistry returns a new llmtools-go Registry containing only the engine tools.
func (e *Engine) NewToolsRegistry(opts ...llmtools.RegistryOption) (*llmtools.Registry, error) {
	return runnertool.NewRegistry(e, opts...)
}

func (e *Engine) submitLocked(ctx context.Context, key spec.ConversationKey, text string) error {
	if s, ok := e.sessions.Peek(key); ok && s.Awaiting() {
		return fmt.Errorf("%w: %s", spec.ErrSessionActive, key)
	}
	if e.sender == nil {
		return spec.ErrNilSender
	}

	p := e.Prepare(text)
	log := e.logger.With("key", key)

	if len(p.Prompts) == 0 {
		log.Info("script has no prompts, executing")
		e.executeAndReply(ctx, key, p.Script, nil)
		return nil
	}

	s, err := e.sessions.Create(key, p.Script, p.Prompts)
	if err != nil {
		return err
	}
	log.Info("session started", "session", s.ID(), "prompts", len(p.Prompts))
	e.send(ctx, key, p.Prompts[0])
	return nil
}

func (e *Engine) provideAnswerLocked(ctx context.Context, key spec.ConversationKey, text string) error {
	if e.sender == nil {
		return spec.ErrNilSender
	}
	s, ok := e.sessions.Get(key)
	if !ok {
		return fmt.Errorf("%w: %s", spec.ErrSessionNotFound, key)
	}

	answers, done, err := s.Answer(text)
	if err != nil {
		return err
	}
	if !done {
		next, _ := s.NextPrompt()
		e.send(ctx, key, next)
		return nil
	}

	// Complete: the session is gone before the script runs.
	e.sessions.Delete(key)
	e.logger.Info("session complete", "key", key, "session", s.ID(), "answers", len(answers))
	e.executeAndReply(ctx, key, s.Script(), answers)
	return nil
}

func (e *Engine) executeAndReply(ctx context.Context, key spec.ConversationKey, script string, inputs []string) {
	start := time.Now()
	out, err := e.executor.Execute(ctx, script, inputs)
	if err != nil {
		e.logger.Error("execution failed", "key", key, "duration", time.Since(start), "err", err)
		out = "Execution failed: " + err.Error()
	} else {
		e.logger.Info("execution finished", "key", key, "duration", time.Since(start))
	}
	e.send(ctx, key, e.formatResult(out))
}

// send is fire-and-forget: delivery errors are logged, never returned.
func (e *Engine) send(ctx context.Context, key spec.ConversationKey, text string) {
	if err := e.sender.Send(ctx, key, text); err != nil {
		e.logger.Warn("send failed", "key", key, "err", err)
	}
}

func (e *Engine) check(ctx context.Context, key spec.ConversationKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(string(key)) == "" {
		return fmt.Errorf("%w: empty conversation key", spec.ErrInvalidArgument)
	}
	return nil
}

// Run prepares args.Code and executes it in one step, answering the
// prompts with args.Inputs. It implements spec.Runner for the LLM tools.
func (e *Engine) Run(ctx context.Context, args spec.RunArgs) (spec.RunResult, error) {
	if err := ctx.Err(); err != nil {
		return spec.RunResult{}, err
	}
	if strings.TrimSpace(args.Code) == "" {
		return spec.RunResult{}, spec.ErrEmptyScript
	}

	p := e.Prepare(args.Code)
	if len(args.Inputs) < len(p.Prompts) {
		return spec.RunResult{}, errors.Join(
			spec.ErrMissingInputs,
			fmt.Errorf("script asks %d prompts, got %d inputs", len(p.Prompts), len(args.Inputs)),
		)
	}

	out, err := e.executor.Execute(ctx, p.Script, args.Inputs)
	if err != nil {
		return spec.RunResult{}, err
	}
	return spec.RunResult{Script: p.Script, Prompts: p.Prompts, Output: out}, nil
}

// Fix prepares args.Code without running it.
func (e *Engine) Fix(ctx context.Context, args spec.FixArgs) (spec.FixResult, error) {
	if err := ctx.Err(); err != nil {
		return spec.FixResult{}, err
	}
	if strings.TrimSpace(args.Code) == "" {
		return spec.FixResult{}, spec.ErrEmptyScript
	}
	p := e.Prepare(args.Code)
	return spec.FixResult{Script: p.Script, Prompts: p.Prompts}, nil
}
