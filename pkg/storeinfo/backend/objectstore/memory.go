package objectstore

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-memory provider. Buckets are created on first use.
type Memory struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
}

// NewMemory creates an empty in-memory provider
func NewMemory() *Memory {
	return &Memory{buckets: make(map[string]map[string][]byte)}
}

// Put stores data under bucket/key
func (m *Memory) Put(bucket, key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	objects, ok := m.buckets[bucket]
	if !ok {
		objects = make(map[string][]byte)
		m.buckets[bucket] = objects
	}
	objects[key] = append([]byte(nil), data...)
}

func (m *Memory) Bucket(ctx context.Context, loc Location) (Bucket, error) {
	return &memoryBucket{m: m, name: loc.Bucket}, nil
}

type memoryBucket struct {
	m    *Memory
	name string
}

func (b *memoryBucket) List(ctx context.Context, prefix string) ([]Object, error) {
	b.m.mu.RLock()
	defer b.m.mu.RUnlock()
	var out []Object
	for key, data := range b.m.buckets[b.name] {
		if strings.HasPrefix(key, prefix) {
			out = append(out, Object{Key: key, Size: int64(len(data))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (b *memoryBucket) Stat(ctx context.Context, key string) (*Object, error) {
	b.m.mu.RLock()
	defer b.m.mu.RUnlock()
	data, ok := b.m.buckets[b.name][key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return &Object{Key: key, Size: int64(len(data))}, nil
}

func (b *memoryBucket) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	b.m.mu.RLock()
	defer b.m.mu.RUnlock()
	data, ok := b.m.buckets[b.name][key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
