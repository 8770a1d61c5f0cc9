package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

// MemoryStore keeps objects in process. Used by tests and local development
// with STORAGE_BACKEND=memory.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]memoryObject
	// FailDeletes makes Delete return an error, to exercise best-effort cleanup.
	FailDeletes bool
}

type memoryObject struct {
	data        []byte
	contentType string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

func (m *MemoryStore) Upload(_ context.Context, objectName string, reader io.Reader, _ int64, contentType string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectName] = memoryObject{data: buf.Bytes(), contentType: contentType}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, objectName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDeletes {
		return fmt.Errorf("delete %s: backend unavailable", objectName)
	}
	delete(m.objects, objectName)
	return nil
}

func (m *MemoryStore) PresignedGetURL(_ context.Context, objectName string, expiry time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[objectName]; !ok {
		return "", ErrObjectNotFound
	}
	return fmt.Sprintf("memory://%s?expires=%d", objectName, int(expiry.Seconds())), nil
}

func (m *MemoryStore) EnsureBucket(context.Context) error {
	return nil
}

// Object returns a stored object's bytes and content type.
func (m *MemoryStore) Object(objectName string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[objectName]
	return obj.data, obj.contentType, ok
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
