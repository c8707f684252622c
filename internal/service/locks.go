package service

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// productLocks serializes the resolve-then-append sequence per product.
// Concurrent writers for the same product would otherwise both read the same
// carry-forward and lose a decrement.
type productLocks struct {
	mu sync.Mutex
	m  map[uuid.UUID]*sync.Mutex
}

func newProductLocks() *productLocks {
	return &productLocks{m: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *productLocks) get(id uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	mu, ok := l.m[id]
	if !ok {
		mu = &sync.Mutex{}
		l.m[id] = mu
	}
	return mu
}

// lock acquires the mutex of every listed product in sorted order — a fixed
// acquisition order so two multi-line sales can never deadlock — and returns
// the matching unlock function. Duplicate ids are locked once.
func (l *productLocks) lock(ids ...uuid.UUID) func() {
	seen := make(map[uuid.UUID]bool, len(ids))
	distinct := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			distinct = append(distinct, id)
		}
	}
	sort.Slice(distinct, func(i, j int) bool {
		return distinct[i].String() < distinct[j].String()
	})

	locked := make([]*sync.Mutex, 0, len(distinct))
	for _, id := range distinct {
		mu := l.get(id)
		mu.Lock()
		locked = append(locked, mu)
	}
	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].Unlock()
		}
	}
}
