package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/tymbaca/sharedkeys/pkg/caller"
	"github.com/tymbaca/sharedkeys/pkg/tracer"
)

// Storage keeps exported results in memory. Keys of a bucket are returned
// in the order they were first appended.
type Storage struct {
	mu   sync.RWMutex
	data map[itemKey][]string
	keys map[string][]string
}

type itemKey struct {
	bucket string
	key    string
}

func New() *Storage {
	return &Storage{
		data: make(map[itemKey][]string, 1000),
		keys: make(map[string][]string),
	}
}

func (st *Storage) Get(ctx context.Context, bucket string, key string) ([]string, error) {
	_, span := tracer.Start(ctx, caller.Name())
	defer span.End()

	st.mu.RLock()
	defer st.mu.RUnlock()

	return slices.Clone(st.data[itemKey{bucket: bucket, key: key}]), nil
}

func (st *Storage) GetKeys(ctx context.Context, bucket string) ([]string, error) {
	_, span := tracer.Start(ctx, caller.Name())
	defer span.End()

	st.mu.RLock()
	defer st.mu.RUnlock()

	return slices.Clone(st.keys[bucket]), nil
}

func (st *Storage) Append(ctx context.Context, bucket string, key string, vals []string) error {
	_, span := tracer.Start(ctx, caller.Name())
	defer span.End()

	st.mu.Lock()
	defer st.mu.Unlock()

	k := itemKey{bucket: bucket, key: key}
	if _, ok := st.data[k]; !ok {
		st.keys[bucket] = append(st.keys[bucket], key)
	}
	st.data[k] = append(st.data[k], vals...)

	return nil
}
