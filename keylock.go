package coderunner

import (
	"sync"

	"github.com/flexigpt/coderunner-go/spec"
)

// keyLocks serializes work per conversation key. Entries are reference
// counted and dropped once nobody holds or waits for them.
type keyLocks struct {
	mu sync.Mutex
	m  map[spec.ConversationKey]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func (l *keyLocks) lock(key spec.ConversationKey) (unlock func()) {
	l.mu.Lock()
	if l.m == nil {
		l.m = map[spec.ConversationKey]*keyLock{}
	}
	kl := l.m[key]
	if kl == nil {
		kl = &keyLock{}
		l.m[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()
	return func() {
		kl.mu.Unlock()

		l.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(l.m, key)
		}
		l.mu.Unlock()
	}
}

func (l *keyLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
