// Package keyring rotates between multiple API key pairs for signed
// requests. Secrets never appear in the String form.
package keyring

import (
	"fmt"
	"sync"
	"time"
)

// Key is one API key pair with rotation bookkeeping.
type Key struct {
	ID         string
	APIKey     string
	SecretKey  string
	Disabled   bool
	LastUsed   time.Time
	ErrorCount int
}

// Strategy selects when the ring advances to the next key.
type Strategy int

const (
	// RoundRobin rotates only when Rotate is called explicitly.
	RoundRobin Strategy = iota
	// RotateOnError advances after any request error.
	RotateOnError
)

// Ring holds the key set and the rotation cursor.
type Ring struct {
	mu       sync.RWMutex
	keys     []Key
	current  int
	strategy Strategy
}

// New creates a Ring over a copy of keys.
func New(keys []Key, strategy Strategy) *Ring {
	copied := make([]Key, len(keys))
	copy(copied, keys)
	return &Ring{keys: copied, strategy: strategy}
}

// Current returns the active key. The second return is false when every key
// is disabled or the ring is empty.
func (r *Ring) Current() (Key, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.keys) == 0 {
		return Key{}, false
	}
	for i := 0; i < len(r.keys); i++ {
		idx := (r.current + i) % len(r.keys)
		if !r.keys[idx].Disabled {
			return r.keys[idx], true
		}
	}
	return Key{}, false
}

// Rotate advances to the next enabled key.
func (r *Ring) Rotate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rotateLocked()
}

func (r *Ring) rotateLocked() {
	if len(r.keys) == 0 {
		return
	}
	start := r.current
	for {
		r.current = (r.current + 1) % len(r.keys)
		if !r.keys[r.current].Disabled || r.current == start {
			return
		}
	}
}

// OnError records a failure against the active key and rotates when the
// strategy calls for it.
func (r *Ring) OnError() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.keys) == 0 {
		return
	}
	r.keys[r.current].ErrorCount++
	if r.strategy == RotateOnError {
		r.rotateLocked()
	}
}

// MarkUsed stamps the active key's last-used time.
func (r *Ring) MarkUsed() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.keys) == 0 {
		return
	}
	r.keys[r.current].LastUsed = time.Now()
}

// Disable takes the key with the given id out of rotation.
func (r *Ring) Disable(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.keys {
		if r.keys[i].ID == id {
			r.keys[i].Disabled = true
			return
		}
	}
}

// Enable returns the key with the given id to rotation and clears its error
// count.
func (r *Ring) Enable(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.keys {
		if r.keys[i].ID == id {
			r.keys[i].Disabled = false
			r.keys[i].ErrorCount = 0
			return
		}
	}
}

// Len returns the number of keys in the ring.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys)
}

// String returns a masked description safe for logging.
func (k Key) String() string {
	return fmt.Sprintf("Key{ID:%s, APIKey:%s}", k.ID, mask(k.APIKey))
}

func mask(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
