package store

import (
	"errors"
	"sync"
)

// ErrNotFound is returned when no record carries the requested id
var ErrNotFound = errors.New("record not found")

// Ledger is an ordered, mutex-guarded list of records keyed by id.
// Records are copied on the way in and out so callers never share state with the ledger.
type Ledger[T any] struct {
	mu    sync.RWMutex
	items []T
	key   func(T) string
	clone func(T) T
}

// NewLedger creates an empty ledger
func NewLedger[T any](key func(T) string, clone func(T) T) *Ledger[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Ledger[T]{key: key, clone: clone}
}

// Prepend puts the records in front of the ledger, keeping their relative order
func (l *Ledger[T]) Prepend(items ...T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	head := make([]T, 0, len(items)+len(l.items))
	for _, item := range items {
		head = append(head, l.clone(item))
	}
	l.items = append(head, l.items...)
}

// Append adds the records at the end of the ledger
func (l *Ledger[T]) Append(items ...T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, item := range items {
		l.items = append(l.items, l.clone(item))
	}
}

// Replace swaps the whole content of the ledger
func (l *Ledger[T]) Replace(items []T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = make([]T, 0, len(items))
	for _, item := range items {
		l.items = append(l.items, l.clone(item))
	}
}

// Get returns the record with the given id
func (l *Ledger[T]) Get(id string) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i := l.indexOf(id); i >= 0 {
		return l.clone(l.items[i]), true
	}
	var zero T
	return zero, false
}

// Update applies fn to a copy of the record and commits it only when fn returns nil
func (l *Ledger[T]) Update(id string, fn func(item *T) error) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var zero T
	i := l.indexOf(id)
	if i < 0 {
		return zero, ErrNotFound
	}

	draft := l.clone(l.items[i])
	if err := fn(&draft); err != nil {
		return zero, err
	}
	l.items[i] = draft
	return l.clone(draft), nil
}

// UpdateWhere applies fn to every matching record and returns the updated copies
func (l *Ledger[T]) UpdateWhere(match func(T) bool, fn func(item *T) bool) []T {
	l.mu.Lock()
	defer l.mu.Unlock()

	var changed []T
	for i := range l.items {
		if !match(l.items[i]) {
			continue
		}
		if fn(&l.items[i]) {
			changed = append(changed, l.clone(l.items[i]))
		}
	}
	return changed
}

// List returns a copy of every record in ledger order
func (l *Ledger[T]) List() []T {
	return l.Filter(func(T) bool { return true })
}

// Filter returns copies of the matching records in ledger order
func (l *Ledger[T]) Filter(match func(T) bool) []T {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]T, 0, len(l.items))
	for _, item := range l.items {
		if match(item) {
			out = append(out, l.clone(item))
		}
	}
	return out
}

// Len returns the number of records
func (l *Ledger[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

func (l *Ledger[T]) indexOf(id string) int {
	for i, item := range l.items {
		if l.key(item) == id {
			return i
		}
	}
	return -1
}
