// Package cache provides the response cache for listing and statistics views
// and the invalidation hub mutation handlers signal after writes.
package cache

import (
	"fmt"
	"sync"
	"time"
)

// Named views a mutation can invalidate.
const (
	ViewDashboard  = "dashboard"
	ViewExpenses   = "expenses"
	ViewCategories = "categories"
)

// Views caches serialized responses per (user, view). Invalidation bumps a
// generation counter per (user, view) pair instead of scanning for keys;
// superseded entries simply age out of the LRU. Invalidate is fire-and-forget
// and never consulted for correctness.
type Views struct {
	data *LRU[[]byte]

	mu   sync.Mutex
	gens map[string]uint64
}

func NewViews(maxSize int, ttl time.Duration) *Views {
	return &Views{
		data: NewLRU[[]byte](maxSize, ttl),
		gens: make(map[string]uint64),
	}
}

func (v *Views) gen(userID int64, view string) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gens[fmt.Sprintf("%d:%s", userID, view)]
}

func (v *Views) key(userID int64, view, suffix string) string {
	return fmt.Sprintf("%s:%d:%d:%s", view, userID, v.gen(userID, view), suffix)
}

// Get returns the cached response body for a view variant, if current.
func (v *Views) Get(userID int64, view, suffix string) ([]byte, bool) {
	return v.data.Get(v.key(userID, view, suffix))
}

// Set stores a response body for a view variant.
func (v *Views) Set(userID int64, view, suffix string, body []byte) {
	v.data.Set(v.key(userID, view, suffix), body)
}

// Invalidate marks the named views stale for one user.
func (v *Views) Invalidate(userID int64, views ...string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, view := range views {
		v.gens[fmt.Sprintf("%d:%s", userID, view)]++
	}
}
