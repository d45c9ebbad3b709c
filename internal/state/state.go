// Package state holds the admin console's cached entity lists. Each list is
// an observable Store driven by a pure reducer; controllers issue API intents
// and re-fetch after every write.
package state

import (
	"slices"
	"sync"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusErrored Status = "errored"
)

// ListState is the cached view of one entity collection.
type ListState[T any] struct {
	Status  Status
	Loading bool
	Items   []T
	Err     error
}

type ActionKind int

const (
	FetchStarted ActionKind = iota
	FetchSucceeded
	FetchFailed
)

type Action[T any] struct {
	Kind  ActionKind
	Items []T
	Err   error
}

func Started[T any]() Action[T]            { return Action[T]{Kind: FetchStarted} }
func Succeeded[T any](items []T) Action[T] { return Action[T]{Kind: FetchSucceeded, Items: items} }
func Failed[T any](err error) Action[T]    { return Action[T]{Kind: FetchFailed, Err: err} }

// Reduce returns the state after a. It never mutates s.
//
//	FetchStarted    any     -> loading, items kept
//	FetchSucceeded  loading -> loaded, items replaced, error cleared
//	FetchFailed     loading -> errored, error set, items kept
func Reduce[T any](s ListState[T], a Action[T]) ListState[T] {
	next := ListState[T]{Status: s.Status, Loading: s.Loading, Items: s.Items, Err: s.Err}
	switch a.Kind {
	case FetchStarted:
		next.Status = StatusLoading
		next.Loading = true
	case FetchSucceeded:
		next.Status = StatusLoaded
		next.Loading = false
		next.Items = slices.Clone(a.Items)
		if next.Items == nil {
			next.Items = []T{}
		}
		next.Err = nil
	case FetchFailed:
		next.Status = StatusErrored
		next.Loading = false
		next.Err = a.Err
	}
	return next
}

// Store is a mutex-guarded ListState with subscribers. Subscribers run
// outside the lock, in registration order, after every dispatch.
type Store[T any] struct {
	mu    sync.Mutex
	state ListState[T]
	subs  []subscriber[T]
	next  int
}

type subscriber[T any] struct {
	id int
	fn func(ListState[T])
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{state: ListState[T]{Status: StatusIdle}}
}

// State returns a snapshot; its Items slice is a copy.
func (s *Store[T]) State() ListState[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.state)
}

func (s *Store[T]) Dispatch(a Action[T]) ListState[T] {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	st := s.state
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(snapshot(st))
	}
	return snapshot(st)
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store[T]) Subscribe(fn func(ListState[T])) (unsubscribe func()) {
	s.mu.Lock()
	s.next++
	id := s.next
	s.subs = append(s.subs, subscriber[T]{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.subs = slices.DeleteFunc(s.subs, func(sub subscriber[T]) bool { return sub.id == id })
		})
	}
}

func snapshot[T any](s ListState[T]) ListState[T] {
	s.Items = slices.Clone(s.Items)
	return s
}
