package services

import (
	"sort"
	"sync"
)

// accountLocks serializes work per account id inside one process. Entries
// are reference counted and dropped once nobody holds or waits on them.
type accountLocks struct {
	mu    sync.Mutex
	locks map[string]*accountLock
}

type accountLock struct {
	sync.Mutex
	refs int
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[string]*accountLock)}
}

// Lock acquires every distinct id in sorted order and returns the release
// function.
func (l *accountLocks) Lock(ids ...string) func() {
	keys := uniqueSorted(ids)
	held := make([]*accountLock, 0, len(keys))
	for _, key := range keys {
		lock := l.acquire(key)
		lock.Lock()
		held = append(held, lock)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
			l.release(keys[i])
		}
	}
}

func (l *accountLocks) acquire(key string) *accountLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &accountLock{}
		l.locks[key] = lock
	}
	lock.refs++
	return lock
}

func (l *accountLocks) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[key]
	if !ok {
		return
	}
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, key)
	}
}

func (l *accountLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys
}
