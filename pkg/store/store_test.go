package store

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withStores(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("mem", func(t *testing.T) {
		fn(t, NewMemStore())
	})
	t.Run("bolt", func(t *testing.T) {
		dir, err := os.MkdirTemp("", "burrow-store-test")
		require.NoError(t, err)
		t.Cleanup(func() { os.RemoveAll(dir) })

		s, err := Open(dir, "test")
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })

		fn(t, s)
	})
}

func TestPutGetDelete(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		err := s.Update(func(tx Tx) error {
			b, err := tx.Bucket("docs")
			require.NoError(t, err)
			return b.Put([]byte("a"), []byte("1"))
		})
		require.NoError(t, err)

		var got []byte
		err = s.View(func(tx Tx) error {
			b, err := tx.Bucket("docs")
			require.NoError(t, err)
			got = b.Get([]byte("a"))
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []byte("1"), got)

		err = s.Update(func(tx Tx) error {
			b, err := tx.Bucket("docs")
			require.NoError(t, err)
			return b.Delete([]byte("a"))
		})
		require.NoError(t, err)

		err = s.View(func(tx Tx) error {
			b, err := tx.Bucket("docs")
			require.NoError(t, err)
			got = b.Get([]byte("a"))
			return nil
		})
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestUpdateRollsBackOnError(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		sentinel := assert.AnError
		err := s.Update(func(tx Tx) error {
			b, err := tx.Bucket("docs")
			require.NoError(t, err)
			require.NoError(t, b.Put([]byte("a"), []byte("1")))
			return sentinel
		})
		assert.ErrorIs(t, err, sentinel)

		err = s.View(func(tx Tx) error {
			b, err := tx.Bucket("docs")
			require.NoError(t, err)
			assert.Nil(t, b.Get([]byte("a")))
			return nil
		})
		require.NoError(t, err)
	})
}

func TestNextSequenceMonotonic(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		var seqs []uint64
		err := s.Update(func(tx Tx) error {
			b, err := tx.Bucket("log")
			require.NoError(t, err)
			for i := 0; i < 3; i++ {
				seq, err := b.NextSequence()
				require.NoError(t, err)
				seqs = append(seqs, seq)
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []uint64{1, 2, 3}, seqs)
	})
}

func TestForEachOrderedByKey(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		err := s.Update(func(tx Tx) error {
			b, err := tx.Bucket("docs")
			require.NoError(t, err)
			for _, k := range []string{"c", "a", "b"} {
				if err := b.Put([]byte(k), []byte(k)); err != nil {
					return err
				}
			}
			return nil
		})
		require.NoError(t, err)

		var keys []string
		err = s.View(func(tx Tx) error {
			b, err := tx.Bucket("docs")
			require.NoError(t, err)
			return b.ForEach(func(k, v []byte) error {
				keys = append(keys, string(k))
				return nil
			})
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, keys)
	})
}

func TestCursorSeek(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		err := s.Update(func(tx Tx) error {
			b, err := tx.Bucket("docs")
			require.NoError(t, err)
			for _, k := range []string{"a", "c", "e"} {
				if err := b.Put([]byte(k), []byte(k)); err != nil {
					return err
				}
			}
			return nil
		})
		require.NoError(t, err)

		err = s.View(func(tx Tx) error {
			b, err := tx.Bucket("docs")
			require.NoError(t, err)
			c := b.Cursor()

			k, _ := c.First()
			assert.Equal(t, []byte("a"), k)

			k, _ = c.Seek([]byte("b"))
			assert.Equal(t, []byte("c"), k)

			k, _ = c.Last()
			assert.Equal(t, []byte("e"), k)
			return nil
		})
		require.NoError(t, err)
	})
}
