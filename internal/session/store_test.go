package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/flexigpt/coderunner-go/spec"
)

func TestStore_TTLEviction(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	st := NewStore(StoreConfig{TTL: time.Minute, MaxSessions: 100, Now: clk.Now})

	if _, err := st.Create("chat", "x = input()", []string{"Enter value:"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, ok := st.Get("chat"); !ok {
		t.Fatalf("expected session to exist immediately")
	}

	clk.Advance(30 * time.Second)
	if _, ok := st.Get("chat"); !ok {
		t.Fatalf("expected session to survive within TTL")
	}

	clk.Advance(61 * time.Second)
	if _, ok := st.Get("chat"); ok {
		t.Fatalf("expected session to be expired/evicted")
	}
	if st.Len() != 0 {
		t.Fatalf("Len = %d, want 0", st.Len())
	}
}

func TestStore_AnswerRefreshesTTL(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	st := NewStore(StoreConfig{TTL: time.Minute, Now: clk.Now})

	s, err := st.Create("chat", "", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for range 2 {
		clk.Advance(50 * time.Second)
		if _, _, err := s.Answer("x"); err != nil {
			t.Fatalf("Answer: %v", err)
		}
	}
	if n := st.Sweep(); n != 0 {
		t.Fatalf("Sweep removed %d, want 0", n)
	}
	if got := s.Info().LastUsedAt; !got.Equal(clk.Now()) {
		t.Fatalf("LastUsedAt = %v, want %v", got, clk.Now())
	}
}

func TestStore_PeekDoesNotRefresh(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	st := NewStore(StoreConfig{TTL: time.Minute, MaxSessions: 2, Now: clk.Now})

	for _, k := range []spec.ConversationKey{"old", "new"} {
		if _, err := st.Create(k, "", []string{"q"}); err != nil {
			t.Fatalf("Create(%s): %v", k, err)
		}
	}
	// Peeking the oldest session must not save it from LRU eviction.
	if _, ok := st.Peek("old"); !ok {
		t.Fatalf("expected old session")
	}
	if _, err := st.Create("third", "", []string{"q"}); err != nil {
		t.Fatalf("Create(third): %v", err)
	}
	if _, ok := st.Peek("old"); ok {
		t.Fatalf("old session survived eviction after Peek")
	}

	// Nor from expiry.
	for range 2 {
		clk.Advance(30 * time.Second)
		if _, ok := st.Peek("new"); !ok {
			t.Fatalf("session expired within TTL")
		}
	}
	clk.Advance(time.Second)
	if _, ok := st.Peek("new"); ok {
		t.Fatalf("expected session to expire despite Peek")
	}
	if st.Len() != 0 {
		t.Fatalf("Len = %d, want 0", st.Len())
	}
}

func TestStore_MaxSessionsAndLRU(t *testing.T) {
	t.Parallel()

	st := NewStore(StoreConfig{TTL: 10 * time.Second, MaxSessions: 2})

	for _, k := range []spec.ConversationKey{"s1", "s2"} {
		if _, err := st.Create(k, "", []string{"p"}); err != nil {
			t.Fatalf("Create %s: %v", k, err)
		}
	}

	// Touch s1 to make it MRU; s2 becomes LRU.
	if _, ok := st.Get("s1"); !ok {
		t.Fatalf("expected s1 to exist")
	}
	s2, _ := st.Get("s2")
	if _, ok := st.Get("s1"); !ok {
		t.Fatalf("expected s1 to exist")
	}

	if _, err := st.Create("s3", "", []string{"p"}); err != nil {
		t.Fatalf("Create s3: %v", err)
	}

	if _, ok := st.Get("s2"); ok {
		t.Fatalf("expected s2 evicted as LRU")
	}
	if _, ok := st.Get("s1"); !ok {
		t.Fatalf("expected s1 retained as MRU")
	}
	if _, ok := st.Get("s3"); !ok {
		t.Fatalf("expected s3 exists")
	}

	// An evicted session is closed.
	if _, _, err := s2.Answer("late"); !errors.Is(err, spec.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for evicted session, got %v", err)
	}
}

func TestStore_CreateRejectsActiveKey(t *testing.T) {
	t.Parallel()

	st := NewStore(StoreConfig{})
	first, err := st.Create("chat", "one", []string{"p"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := st.Create("chat", "two", []string{"q"}); !errors.Is(err, spec.ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}
	got, ok := st.Get("chat")
	if !ok || got != first || got.Script() != "one" {
		t.Fatalf("in-progress session was replaced")
	}

	st.Delete("chat")
	if _, err := st.Create("chat", "two", []string{"q"}); err != nil {
		t.Fatalf("Create after Delete: %v", err)
	}
}

func TestStore_CreateRejectsNoPrompts(t *testing.T) {
	t.Parallel()

	st := NewStore(StoreConfig{})
	if _, err := st.Create("chat", "print(1)", nil); !errors.Is(err, spec.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if st.Len() != 0 {
		t.Fatalf("Len = %d, want 0", st.Len())
	}
}

func TestStore_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	st := NewStore(StoreConfig{})
	a, _ := st.Create("a", "", []string{"pa"})
	b, _ := st.Create("b", "", []string{"pb1", "pb2"})

	if _, done, _ := a.Answer("1"); !done {
		t.Fatalf("expected a complete")
	}
	if p, _ := b.NextPrompt(); p != "pb1" {
		t.Fatalf("b.NextPrompt = %q, want pb1", p)
	}
	if a.ID() == b.ID() {
		t.Fatalf("session ids must be unique")
	}
}

func TestStore_ConcurrentCreateSingleWinner(t *testing.T) {
	t.Parallel()

	st := NewStore(StoreConfig{})
	const n = 32

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.Create("shared", fmt.Sprint(i), []string{"p"})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			if !errors.Is(err, spec.ErrSessionActive) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("wins = %d, want 1", wins)
	}
}

func TestStore_SweepDisabledTTL(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	st := NewStore(StoreConfig{TTL: 0, Now: clk.Now})
	if _, err := st.Create("chat", "", []string{"p"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	clk.Advance(1000 * time.Hour)
	if n := st.Sweep(); n != 0 {
		t.Fatalf("Sweep removed %d, want 0", n)
	}
}
