package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

// ErrObjectNotFound is returned by the in-memory client for unknown keys.
var ErrObjectNotFound = errors.New("storage: object not found")

// Object is a stored blob with its content type
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryClient keeps objects in memory. Used when no bucket is configured and
// in tests.
type MemoryClient struct {
	mu      sync.RWMutex
	objects map[string]Object
}

// NewMemoryClient creates an empty in-memory store
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{objects: make(map[string]Object)}
}

func objectKey(bucket, key string) string {
	return bucket + "/" + key
}

func (c *MemoryClient) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects[objectKey(bucket, key)] = Object{Data: data, ContentType: contentType}
	return nil
}

func (c *MemoryClient) Download(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, ok := c.Get(bucket, key)
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.Data)), nil
}

func (c *MemoryClient) Delete(ctx context.Context, bucket, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, objectKey(bucket, key))
	return nil
}

func (c *MemoryClient) GetPresignedURL(ctx context.Context, bucket, key string, expiration time.Duration) (string, error) {
	if _, ok := c.Get(bucket, key); !ok {
		return "", ErrObjectNotFound
	}
	return "memory://" + objectKey(bucket, key), nil
}

// Get returns a stored object
func (c *MemoryClient) Get(bucket, key string) (Object, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	obj, ok := c.objects[objectKey(bucket, key)]
	return obj, ok
}

// Keys lists the stored object keys as bucket/key
func (c *MemoryClient) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.objects))
	for k := range c.objects {
		keys = append(keys, k)
	}
	return keys
}
