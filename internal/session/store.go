// Package session holds the per-conversation input-collection sessions.
//
// A Store owns at most one Session per conversation key. Sessions expire
// after a TTL of inactivity and the least recently used ones are evicted
// when the store is full; expiry is checked lazily on every store call and
// by Sweep.
package session

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flexigpt/coderunner-go/spec"
)

const (
	DefaultTTL         = 24 * time.Hour
	DefaultMaxSessions = 4096
)

type StoreConfig struct {
	// TTL <= 0 disables expiry.
	TTL time.Duration

	// MaxSessions <= 0 disables the capacity limit.
	MaxSessions int

	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

type Store struct {
	mu sync.Mutex

	ttl         time.Duration
	maxSessions int
	now         func() time.Time

	lru *list.List                            // front=MRU
	m   map[spec.ConversationKey]*list.Element // key -> element(Value=*item)
}

type item struct {
	s        *Session
	lastUsed time.Time
}

func NewStore(cfg StoreConfig) *Store {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		ttl:         cfg.TTL,
		maxSessions: cfg.MaxSessions,
		now:         now,
		lru:         list.New(),
		m:           map[spec.ConversationKey]*list.Element{},
	}
}

// Create stores a new session for key. It fails with spec.ErrSessionActive
// when key already has one: an in-progress session is never overwritten.
func (st *Store) Create(key spec.ConversationKey, script string, prompts []string) (*Session, error) {
	now := st.now()

	st.mu.Lock()
	defer st.mu.Unlock()

	st.evictExpiredLocked(now)

	if e := st.m[key]; e != nil {
		return nil, fmt.Errorf("%w: %s", spec.ErrSessionActive, key)
	}

	s, err := newSession(SessionConfig{
		ID:      uuid.Must(uuid.NewV7()).String(),
		Key:     key,
		Script:  script,
		Prompts: prompts,
		Now:     now,
		Clock:   st.now,
		Touch:   func() { st.touch(key) },
	})
	if err != nil {
		return nil, err
	}

	e := st.lru.PushFront(&item{s: s, lastUsed: now})
	st.m[key] = e

	st.evictOverLimitLocked()
	return s, nil
}

func (st *Store) Get(key spec.ConversationKey) (*Session, bool) {
	now := st.now()

	st.mu.Lock()
	defer st.mu.Unlock()

	st.evictExpiredLocked(now)

	e := st.m[key]
	if e == nil {
		return nil, false
	}
	it, _ := e.Value.(*item)
	if it == nil || it.s == nil || it.s.closed.Load() {
		st.deleteElemLocked(e)
		return nil, false
	}

	it.lastUsed = now
	st.lru.MoveToFront(e)
	return it.s, true
}

// Peek returns the session for key without refreshing its TTL or LRU
// position. Expired sessions are still evicted.
func (st *Store) Peek(key spec.ConversationKey) (*Session, bool) {
	now := st.now()

	st.mu.Lock()
	defer st.mu.Unlock()

	st.evictExpiredLocked(now)

	e := st.m[key]
	if e == nil {
		return nil, false
	}
	it, _ := e.Value.(*item)
	if it == nil || it.s == nil || it.s.closed.Load() {
		st.deleteElemLocked(e)
		return nil, false
	}
	return it.s, true
}

// Delete removes the session for key. The removed session is closed and
// rejects further answers.
func (st *Store) Delete(key spec.ConversationKey) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if e := st.m[key]; e != nil {
		st.deleteElemLocked(e)
	}
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.lru.Len()
}

// Sweep evicts expired sessions and returns how many were removed.
func (st *Store) Sweep() int {
	now := st.now()

	st.mu.Lock()
	defer st.mu.Unlock()

	before := st.lru.Len()
	st.evictExpiredLocked(now)
	return before - st.lru.Len()
}

func (st *Store) evictExpiredLocked(now time.Time) {
	if st.ttl <= 0 {
		return
	}
	for e := st.lru.Back(); e != nil; {
		prev := e.Prev()
		it, ok := e.Value.(*item)
		if !ok || it == nil || it.s == nil {
			st.deleteElemLocked(e)
			e = prev
			continue
		}
		if now.Sub(it.lastUsed) <= st.ttl {
			break
		}
		st.deleteElemLocked(e)
		e = prev
	}
}

func (st *Store) evictOverLimitLocked() {
	if st.maxSessions <= 0 {
		return
	}
	for st.lru.Len() > st.maxSessions {
		e := st.lru.Back()
		if e == nil {
			return
		}
		st.deleteElemLocked(e)
	}
}

func (st *Store) deleteElemLocked(e *list.Element) {
	it, _ := e.Value.(*item)
	if it != nil && it.s != nil {
		delete(st.m, it.s.key)
		it.s.closed.Store(true)
	}
	st.lru.Remove(e)
}

// touch updates lastUsed and MRU position for an existing session.
func (st *Store) touch(key spec.ConversationKey) {
	now := st.now()
	st.mu.Lock()
	defer st.mu.Unlock()

	e := st.m[key]
	if e == nil {
		return
	}
	it, _ := e.Value.(*item)
	if it == nil || it.s == nil || it.s.closed.Load() {
		st.deleteElemLocked(e)
		return
	}
	it.lastUsed = now
	st.lru.MoveToFront(e)
}
