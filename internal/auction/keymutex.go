package auction

import "sync"

// keyMutex hands out one mutex per string key.  The engine uses it to
// serialize the check-then-write path per (auction, player) and the wallet
// funding per tournament, while unrelated keys proceed concurrently.
// Mutexes are created lazily and kept for the life of the process; the key
// space (auctions × players of active tournaments) is small enough that no
// eviction is needed.
type keyMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyMutex() *keyMutex {
	return &keyMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use.
func (k *keyMutex) Lock(key string) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
}

// Unlock releases the mutex for key.  The key must currently be locked.
func (k *keyMutex) Unlock(key string) {
	k.mu.Lock()
	m := k.locks[key]
	k.mu.Unlock()
	if m != nil {
		m.Unlock()
	}
}
