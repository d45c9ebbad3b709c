package assets

import (
	"context"
	"strings"
	"sync"
)

// Stub keeps objects in memory and serves them under BaseURL. It backs
// development runs and tests.
type Stub struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]Object
}

type Object struct {
	Data        []byte
	ContentType string
}

func NewStub(baseURL string) *Stub {
	if baseURL == "" {
		baseURL = "https://storage.example.com"
	}
	return &Stub{BaseURL: strings.TrimRight(baseURL, "/"), objects: map[string]Object{}}
}

func (s *Stub) Put(_ context.Context, key string, data []byte, contentType string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	cp := make([]byte, len(data))
	copy(cp, data)

	s.mu.Lock()
	s.objects[key] = Object{Data: cp, ContentType: contentType}
	s.mu.Unlock()
	return s.BaseURL + "/" + key, nil
}

func (s *Stub) Get(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[key]
	return o, ok
}

func (s *Stub) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
