package store

import (
	"bytes"
	"sort"
	"sync"
)

// MemStore is an in-memory Store, useful for tests and for replicas
// that don't need durability across restarts. §6.5 is explicit that
// the core is agnostic to whether the backend is on-disk or memory;
// MemStore is the memory case.
type MemStore struct {
	mu      sync.Mutex
	buckets map[string]*memBucket
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{buckets: make(map[string]*memBucket)}
}

func (s *MemStore) Update(fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make(map[string]*memBucket, len(s.buckets))
	for name, b := range s.buckets {
		data := make(map[string][]byte, len(b.data))
		for k, v := range b.data {
			data[k] = v
		}
		snapshot[name] = &memBucket{data: data, seq: b.seq}
	}
	if err := fn(memTx{s}); err != nil {
		s.buckets = snapshot
		return err
	}
	return nil
}

func (s *MemStore) View(fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(memTx{s})
}

func (s *MemStore) Close() error {
	return nil
}

type memTx struct {
	s *MemStore
}

func (t memTx) Bucket(name string) (Bucket, error) {
	b, ok := t.s.buckets[name]
	if !ok {
		b = &memBucket{data: make(map[string][]byte)}
		t.s.buckets[name] = b
	}
	return b, nil
}

type memBucket struct {
	data map[string][]byte
	seq  uint64
}

func (b *memBucket) Get(key []byte) []byte {
	v, ok := b.data[string(key)]
	if !ok {
		return nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

func (b *memBucket) Put(key, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	b.data[string(key)] = v
	return nil
}

func (b *memBucket) Delete(key []byte) error {
	delete(b.data, string(key))
	return nil
}

func (b *memBucket) sortedKeys() []string {
	keys := make([]string, 0, len(b.data))
	for k := range b.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (b *memBucket) ForEach(fn func(key, value []byte) error) error {
	for _, k := range b.sortedKeys() {
		if err := fn([]byte(k), b.data[k]); err != nil {
			return err
		}
	}
	return nil
}

func (b *memBucket) Cursor() Cursor {
	return &memCursor{b: b, keys: b.sortedKeys(), pos: -1}
}

func (b *memBucket) NextSequence() (uint64, error) {
	b.seq++
	return b.seq, nil
}

type memCursor struct {
	b    *memBucket
	keys []string
	pos  int
}

func (c *memCursor) at(i int) (key, value []byte) {
	if i < 0 || i >= len(c.keys) {
		return nil, nil
	}
	c.pos = i
	k := c.keys[i]
	return []byte(k), c.b.data[k]
}

func (c *memCursor) First() (key, value []byte) {
	return c.at(0)
}

func (c *memCursor) Next() (key, value []byte) {
	return c.at(c.pos + 1)
}

func (c *memCursor) Last() (key, value []byte) {
	return c.at(len(c.keys) - 1)
}

func (c *memCursor) Seek(seek []byte) (key, value []byte) {
	i := sort.Search(len(c.keys), func(i int) bool {
		return bytes.Compare([]byte(c.keys[i]), seek) >= 0
	})
	return c.at(i)
}
