package memory

import (
	"context"
	"maps"
	"path"
	"sync"
	"time"

	"github.com/w-h-a/vecstore/kv"
)

type value struct {
	data      []byte
	expiresAt time.Time
}

func (v value) expired() bool {
	return !v.expiresAt.IsZero() && time.Now().After(v.expiresAt)
}

type memoryKV struct {
	options kv.Options
	values  map[string]value
	hashes  map[string]map[string]string
	sets    map[string]map[string]struct{}
	mtx     sync.RWMutex
}

func (m *memoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	v, ok := m.values[key]
	if !ok || v.expired() {
		return nil, nil
	}

	cpy := make([]byte, len(v.data))
	copy(cpy, v.data)

	return cpy, nil
}

func (m *memoryKV) Set(ctx context.Context, key string, data []byte) error {
	return m.SetEx(ctx, key, 0, data)
}

func (m *memoryKV) SetEx(ctx context.Context, key string, ttl time.Duration, data []byte) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	cpy := make([]byte, len(data))
	copy(cpy, data)

	v := value{data: cpy}
	if ttl > 0 {
		v.expiresAt = time.Now().Add(ttl)
	}

	m.values[key] = v

	return nil
}

func (m *memoryKV) Delete(ctx context.Context, key string) (bool, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	_, hadValue := m.values[key]
	_, hadHash := m.hashes[key]
	_, hadSet := m.sets[key]

	delete(m.values, key)
	delete(m.hashes, key)
	delete(m.sets, key)

	return hadValue || hadHash || hadSet, nil
}

func (m *memoryKV) HSet(ctx context.Context, key string, fields map[string]string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	hash, ok := m.hashes[key]
	if !ok {
		hash = map[string]string{}
		m.hashes[key] = hash
	}

	maps.Copy(hash, fields)

	return nil
}

func (m *memoryKV) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	out := map[string]string{}
	maps.Copy(out, m.hashes[key])

	return out, nil
}

func (m *memoryKV) SAdd(ctx context.Context, key string, members ...string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	set, ok := m.sets[key]
	if !ok {
		set = map[string]struct{}{}
		m.sets[key] = set
	}

	for _, member := range members {
		set[member] = struct{}{}
	}

	return nil
}

func (m *memoryKV) SRem(ctx context.Context, key string, members ...string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	set, ok := m.sets[key]
	if !ok {
		return nil
	}

	for _, member := range members {
		delete(set, member)
	}

	if len(set) == 0 {
		delete(m.sets, key)
	}

	return nil
}

func (m *memoryKV) SMembers(ctx context.Context, key string) ([]string, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	set, ok := m.sets[key]
	if !ok {
		return nil, nil
	}

	members := make([]string, 0, len(set))
	for member := range set {
		members = append(members, member)
	}

	return members, nil
}

func (m *memoryKV) Exists(ctx context.Context, key string) (bool, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	if v, ok := m.values[key]; ok && !v.expired() {
		return true, nil
	}
	if _, ok := m.hashes[key]; ok {
		return true, nil
	}
	if _, ok := m.sets[key]; ok {
		return true, nil
	}

	return false, nil
}

func (m *memoryKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	var keys []string

	match := func(key string) {
		if ok, err := path.Match(pattern, key); err == nil && ok {
			keys = append(keys, key)
		}
	}

	for key, v := range m.values {
		if !v.expired() {
			match(key)
		}
	}
	for key := range m.hashes {
		match(key)
	}
	for key := range m.sets {
		match(key)
	}

	return keys, nil
}

func (m *memoryKV) Close() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.values = map[string]value{}
	m.hashes = map[string]map[string]string{}
	m.sets = map[string]map[string]struct{}{}

	return nil
}

// NewKV returns an in-process store suitable for tests and offline runs.
func NewKV(opts ...kv.Option) kv.KV {
	options := kv.NewOptions(opts...)

	return &memoryKV{
		options: options,
		values:  map[string]value{},
		hashes:  map[string]map[string]string{},
		sets:    map[string]map[string]struct{}{},
	}
}
