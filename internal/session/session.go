package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flexigpt/coderunner-go/spec"
)

type SessionConfig struct {
	ID      string
	Key     spec.ConversationKey
	Script  string
	Prompts []string
	Now     time.Time

	// Clock stamps answers; defaults to time.Now.
	Clock func() time.Time

	// Touch refreshes the session in its store; called on every answer.
	Touch func()
}

// Session collects the answers for one script in one conversation.
//
// Invariants: 0 <= len(answers) <= required, and while awaiting the next
// prompt to deliver is prompts[len(answers)].
type Session struct {
	id  string
	key spec.ConversationKey

	mu sync.Mutex

	script    string
	prompts   []string
	answers   []string
	createdAt time.Time
	lastUsed  time.Time

	clock  func() time.Time
	touch  func()
	closed atomic.Bool
}

func newSession(cfg SessionConfig) (*Session, error) {
	if len(cfg.Prompts) == 0 {
		return nil, fmt.Errorf("%w: session needs at least one prompt", spec.ErrInvalidArgument)
	}
	touch := cfg.Touch
	if touch == nil {
		touch = func() {}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Session{
		id:        cfg.ID,
		key:       cfg.Key,
		script:    cfg.Script,
		prompts:   append([]string(nil), cfg.Prompts...),
		answers:   make([]string, 0, len(cfg.Prompts)),
		createdAt: cfg.Now,
		lastUsed:  cfg.Now,
		clock:     clock,
		touch:     touch,
	}, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) Key() spec.ConversationKey { return s.key }

func (s *Session) Script() string { return s.script }

func (s *Session) Required() int { return len(s.prompts) }

// Awaiting reports whether the session still expects answers.
func (s *Session) Awaiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed.Load() && len(s.answers) < len(s.prompts)
}

// NextPrompt returns prompts[len(answers)] while the session is awaiting.
func (s *Session) NextPrompt() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() || len(s.answers) >= len(s.prompts) {
		return "", false
	}
	return s.prompts[len(s.answers)], true
}

// Answer appends one answer verbatim. done is true once every prompt has
// an answer; answers then holds the full ordered list.
func (s *Session) Answer(text string) (answers []string, done bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil, false, errors.Join(spec.ErrSessionNotFound, errors.New("session closed"))
	}
	if len(s.answers) >= len(s.prompts) {
		return nil, false, fmt.Errorf("%w: all %d answers already collected", spec.ErrInvalidArgument, len(s.prompts))
	}

	s.answers = append(s.answers, text)
	s.lastUsed = s.clock()
	s.touch()

	done = len(s.answers) == len(s.prompts)
	return append([]string(nil), s.answers...), done, nil
}

// Info returns a snapshot of the session.
func (s *Session) Info() spec.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return spec.SessionInfo{
		ID:         s.id,
		Key:        s.key,
		Script:     s.script,
		Prompts:    append([]string(nil), s.prompts...),
		Answers:    append([]string(nil), s.answers...),
		Required:   len(s.prompts),
		Awaiting:   !s.closed.Load() && len(s.answers) < len(s.prompts),
		CreatedAt:  s.createdAt,
		LastUsedAt: s.lastUsed,
	}
}
