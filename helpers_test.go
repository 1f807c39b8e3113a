package coderunner

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/flexigpt/coderunner-go/spec"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type execCall struct {
	Script string
	Inputs []string
}

// recordingExecutor records calls and answers with out (or err).
type recordingExecutor struct {
	mu    sync.Mutex
	calls []execCall
	out   string
	err   error
}

func (x *recordingExecutor) Execute(_ context.Context, script string, inputs []string) (string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.calls = append(x.calls, execCall{Script: script, Inputs: append([]string{}, inputs...)})
	return x.out, x.err
}

func (x *recordingExecutor) Calls() []execCall {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]execCall(nil), x.calls...)
}

// recordingSender collects messages per conversation.
type recordingSender struct {
	mu  sync.Mutex
	got map[spec.ConversationKey][]string
	err error
}

func (s *recordingSender) Send(_ context.Context, key spec.ConversationKey, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.got == nil {
		s.got = map[spec.ConversationKey][]string{}
	}
	s.got[key] = append(s.got[key], text)
	return s.err
}

func (s *recordingSender) Messages(key spec.ConversationKey) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.got[key]...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *recordingExecutor, *recordingSender) {
	t.Helper()

	x := &recordingExecutor{out: "done"}
	s := &recordingSender{}
	base := []Option{
		WithLogger(discardLogger()),
		WithExecutor(x),
		WithSender(s),
		WithResultFormatter(PlainResult),
	}
	e, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e, x, s
}
