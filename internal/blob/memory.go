package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps objects in process memory. Used by tests and the CLI
// dry-run mode.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string][]byte),
	}
}

func objectKey(container, name string) string {
	return container + "/" + name
}

func (m *MemoryStore) Upload(ctx context.Context, container, name string, r io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.objects[objectKey(container, name)] = data
	m.mu.Unlock()

	return objectKey(container, name), nil
}

func (m *MemoryStore) Download(ctx context.Context, container, name string) (io.ReadCloser, error) {
	m.mu.RLock()
	data, ok := m.objects[objectKey(container, name)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrObjectNotFound
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemoryStore) Delete(ctx context.Context, container, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := objectKey(container, name)
	if _, ok := m.objects[key]; !ok {
		return false, nil
	}

	delete(m.objects, key)
	return true, nil
}

func (m *MemoryStore) Exists(ctx context.Context, container, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.objects[objectKey(container, name)]
	return ok, nil
}

func (m *MemoryStore) PresignGet(ctx context.Context, container, name string, expiry time.Duration) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.objects[objectKey(container, name)]; !ok {
		return "", ErrObjectNotFound
	}

	expires := time.Now().Add(expiry).UTC()
	return fmt.Sprintf("memory://%s/%s?expires=%d", container, name, expires.Unix()), nil
}
