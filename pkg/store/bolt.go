package store

import (
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

// BoltStore is a Store backed by a single bbolt file. Buckets are
// created on first use inside a transaction, so the set of buckets a
// replica needs never has to be declared up front.
type BoltStore struct {
	db *bolt.DB
}

// Open opens (creating if necessary) a bbolt-backed Store at
// <dataDir>/<name>.db.
func Open(dataDir, name string) (*BoltStore, error) {
	path := filepath.Join(dataDir, name+".db")
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Update(fn func(tx Tx) error) error {
	return s.db.Update(func(btx *bolt.Tx) error {
		return fn(boltTx{btx})
	})
}

func (s *BoltStore) View(fn func(tx Tx) error) error {
	return s.db.View(func(btx *bolt.Tx) error {
		return fn(boltTx{btx})
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

type boltTx struct {
	tx *bolt.Tx
}

// Bucket returns the named bucket, creating it if the transaction is
// writable. A read-only transaction can't create a bucket, so on a
// View it looks the bucket up instead; if the bucket has never been
// created, b is nil and boltBucket treats that as empty rather than
// calling CreateBucketIfNotExists, which bbolt rejects on a read-only
// tx regardless of whether the bucket already exists.
func (t boltTx) Bucket(name string) (Bucket, error) {
	if !t.tx.Writable() {
		return boltBucket{t.tx.Bucket([]byte(name))}, nil
	}
	b, err := t.tx.CreateBucketIfNotExists([]byte(name))
	if err != nil {
		return nil, fmt.Errorf("store: create bucket %s: %w", name, err)
	}
	return boltBucket{b}, nil
}

type boltBucket struct {
	b *bolt.Bucket
}

func (b boltBucket) Get(key []byte) []byte {
	if b.b == nil {
		return nil
	}
	return b.b.Get(key)
}

func (b boltBucket) Put(key, value []byte) error {
	return b.b.Put(key, value)
}

func (b boltBucket) Delete(key []byte) error {
	if b.b == nil {
		return nil
	}
	return b.b.Delete(key)
}

func (b boltBucket) ForEach(fn func(key, value []byte) error) error {
	if b.b == nil {
		return nil
	}
	return b.b.ForEach(fn)
}

func (b boltBucket) Cursor() Cursor {
	if b.b == nil {
		return boltCursor{nil}
	}
	return boltCursor{b.b.Cursor()}
}

func (b boltBucket) NextSequence() (uint64, error) {
	return b.b.NextSequence()
}

type boltCursor struct {
	c *bolt.Cursor
}

func (c boltCursor) First() (key, value []byte) {
	if c.c == nil {
		return nil, nil
	}
	return c.c.First()
}

func (c boltCursor) Next() (key, value []byte) {
	if c.c == nil {
		return nil, nil
	}
	return c.c.Next()
}

func (c boltCursor) Last() (key, value []byte) {
	if c.c == nil {
		return nil, nil
	}
	return c.c.Last()
}

func (c boltCursor) Seek(seek []byte) (key, value []byte) {
	if c.c == nil {
		return nil, nil
	}
	return c.c.Seek(seek)
}
