package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// MemoryBlobStore keeps uploads in memory under memory:// URLs
type MemoryBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// FailUploads makes every Upload return an error
	FailUploads bool
}

// NewMemoryBlobStore creates an empty blob store
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{objects: make(map[string][]byte)}
}

// Upload stores the body and returns its URL
func (m *MemoryBlobStore) Upload(ctx context.Context, upload Upload) (string, error) {
	if m.FailUploads {
		return "", errors.New("blob store unavailable")
	}
	data, err := io.ReadAll(upload.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	url := "memory://" + ObjectName(upload, time.Now())
	for i := 1; ; i++ {
		if _, taken := m.objects[url]; !taken {
			break
		}
		url = fmt.Sprintf("memory://%s~%d", ObjectName(upload, time.Now()), i)
	}
	m.objects[url] = data
	return url, nil
}

// Delete removes an object. Missing objects are ignored.
func (m *MemoryBlobStore) Delete(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, url)
	return nil
}

// SignedURL returns url with an expiry query for stored objects
func (m *MemoryBlobStore) SignedURL(url string, expiration time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[url]; !ok {
		return "", fmt.Errorf("object %s: %w", url, ErrNotFound)
	}
	return fmt.Sprintf("%s?expires=%d", url, time.Now().Add(expiration).Unix()), nil
}

// Get returns a stored object
func (m *MemoryBlobStore) Get(url string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[url]
	return data, ok
}

// Len returns the number of stored objects
func (m *MemoryBlobStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
