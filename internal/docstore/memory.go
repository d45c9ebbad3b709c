package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
)

type memEntry[T any] struct {
	doc T
	seq int64
}

// Memory is an in-memory Store. Documents go through the same JSON encoding
// as the postgres collection on the way in and out, so callers never share
// state with the collection.
type Memory[T any] struct {
	mu      sync.RWMutex
	nextSeq int64
	docs    map[string]memEntry[T]
}

func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{docs: make(map[string]memEntry[T])}
}

var _ Store[struct{}] = (*Memory[struct{}])(nil)

func (m *Memory[T]) Insert(ctx context.Context, id string, doc T) error {
	cp, err := clone(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; ok {
		return ErrExists
	}
	m.nextSeq++
	m.docs[id] = memEntry[T]{doc: cp, seq: m.nextSeq}
	return nil
}

func (m *Memory[T]) Get(ctx context.Context, id string) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.docs[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return clone(e.doc)
}

func (m *Memory[T]) List(ctx context.Context) ([]T, error) {
	m.mu.RLock()
	entries := make([]memEntry[T], 0, len(m.docs))
	for _, e := range m.docs {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	// newest first
	slices.SortFunc(entries, func(a, b memEntry[T]) int {
		switch {
		case a.seq > b.seq:
			return -1
		case a.seq < b.seq:
			return 1
		}
		return 0
	})
	out := make([]T, len(entries))
	for i, e := range entries {
		doc, err := clone(e.doc)
		if err != nil {
			return nil, err
		}
		out[i] = doc
	}
	return out, nil
}

func (m *Memory[T]) Replace(ctx context.Context, id string, doc T) error {
	cp, err := clone(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	e.doc = cp
	m.docs[id] = e
	return nil
}

func (m *Memory[T]) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return false, nil
	}
	delete(m.docs, id)
	return true, nil
}

func clone[T any](doc T) (T, error) {
	var out T
	raw, err := json.Marshal(doc)
	if err != nil {
		return out, fmt.Errorf("encode document: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}
