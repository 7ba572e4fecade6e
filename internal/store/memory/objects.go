package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ayush/devconnector/internal/store"
)

type object struct {
	data        []byte
	contentType string
}

// ObjectStore is an in-process stand-in for MinioStore.
type ObjectStore struct {
	mu      sync.RWMutex
	objects map[string]object
}

func NewObjectStore() *ObjectStore {
	return &ObjectStore{objects: make(map[string]object)}
}

func (s *ObjectStore) Put(_ context.Context, key string, data io.Reader, _ int64, contentType string) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("memory put %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = object{data: b, contentType: contentType}
	return nil
}

func (s *ObjectStore) Open(_ context.Context, key string) (io.ReadCloser, string, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, "", 0, store.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.contentType, int64(len(obj.data)), nil
}

func (s *ObjectStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Counter is an in-process fixed-window counter used when Redis is not
// configured.
type Counter struct {
	mu      sync.Mutex
	now     func() time.Time
	windows map[string]window
}

type window struct {
	count   int64
	expires time.Time
}

func NewCounter() *Counter {
	return &Counter{now: time.Now, windows: make(map[string]window)}
}

func (c *Counter) Incr(_ context.Context, key string, d time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	w := c.windows[key]
	if now.After(w.expires) {
		w = window{expires: now.Add(d)}
	}
	w.count++
	c.windows[key] = w
	return w.count, nil
}
