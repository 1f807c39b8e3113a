package integration

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"testing"

	"github.com/flexigpt/coderunner-go/spec"
)

type chatLog struct {
	mu  sync.Mutex
	msg map[spec.ConversationKey][]string
}

func (c *chatLog) Send(_ context.Context, key spec.ConversationKey, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.msg == nil {
		c.msg = map[spec.ConversationKey][]string{}
	}
	c.msg[key] = append(c.msg[key], text)
	return nil
}

func (c *chatLog) Last(key spec.ConversationKey) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.msg[key]
	if len(m) == 0 {
		return ""
	}
	return m[len(m)-1]
}

func (c *chatLog) All(key spec.ConversationKey) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.msg[key]...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// requirePython skips unless process execution tests are enabled and
// python3 is on PATH.
func requirePython(t *testing.T) {
	t.Helper()
	if os.Getenv("CODERUNNER_EXEC_TESTS") == "" {
		t.Skip("set CODERUNNER_EXEC_TESTS=1 to run scripts")
	}
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not on PATH")
	}
}
