package kv

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/oneconcern/strata/pkg/errors"
	"github.com/oneconcern/strata/pkg/kv/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStores(t *testing.T) map[string]Store {
	stores := make(map[string]Store)
	for _, backend := range []Backend{Badger, Pebble} {
		mem, err := Open(backend, WithInMemory(true))
		require.NoError(t, err)
		stores[string(backend)+"-mem"] = mem

		disk, err := Open(backend, WithPath(t.TempDir()), WithSync(true))
		require.NoError(t, err)
		stores[string(backend)+"-disk"] = disk
	}
	return stores
}

func TestStore(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			defer func() {
				require.NoError(t, store.Close())
			}()

			_, err := store.Get([]byte("missing"))
			assert.True(t, errors.Is(err, status.ErrNotFound))
			found, err := store.Exists([]byte("missing"))
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, store.Set([]byte("a"), []byte("1")))
			require.NoError(t, store.SetIfNotExists([]byte("a"), []byte("2")))
			require.NoError(t, store.SetIfNotExists([]byte("b"), []byte("3")))

			value, err := store.Get([]byte("a"))
			require.NoError(t, err)
			assert.Equal(t, []byte("1"), value)
			value, err = store.Get([]byte("b"))
			require.NoError(t, err)
			assert.Equal(t, []byte("3"), value)

			require.NoError(t, store.Delete([]byte("b")))
			require.NoError(t, store.Delete([]byte("b")))
			found, err = store.Exists([]byte("b"))
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, store.SetAll(
				Pair{Key: []byte("a"), Value: []byte("4")},
				Pair{Key: []byte("c"), Value: []byte("5")},
			))
			value, err = store.Get([]byte("a"))
			require.NoError(t, err)
			assert.Equal(t, []byte("4"), value)
			value, err = store.Get([]byte("c"))
			require.NoError(t, err)
			assert.Equal(t, []byte("5"), value)
			require.NoError(t, store.SetAll())
		})
	}
}

func TestPrefix(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			defer func() {
				require.NoError(t, store.Close())
			}()

			for i := 10; i >= 0; i-- {
				require.NoError(t, store.Set([]byte(fmt.Sprintf("log/m/%03d", i)), []byte(fmt.Sprint(i))))
			}
			require.NoError(t, store.Set([]byte("log/n/000"), []byte("x")))
			require.NoError(t, store.Set([]byte("head/m"), []byte("10")))

			iterator := store.Prefix([]byte("log/m/"))
			var keys []string
			for iterator.Next() {
				key, value, err := iterator.Item()
				require.NoError(t, err)
				n, err := strconv.Atoi(string(value))
				require.NoError(t, err)
				assert.Equal(t, fmt.Sprintf("log/m/%03d", n), string(key))
				keys = append(keys, string(key))
			}
			require.NoError(t, iterator.Close())

			require.Len(t, keys, 11)
			assert.Equal(t, "log/m/000", keys[0])
			assert.Equal(t, "log/m/010", keys[10])

			empty := store.Prefix([]byte("none/"))
			assert.False(t, empty.Next())
			require.NoError(t, empty.Close())
		})
	}
}

func TestPrefixEnd(t *testing.T) {
	assert.Equal(t, []byte("log0"), prefixEnd([]byte("log/")))
	assert.Equal(t, []byte{0x01}, prefixEnd([]byte{0x00, 0xff}))
	assert.Nil(t, prefixEnd([]byte{0xff, 0xff}))
}

func TestOpen(t *testing.T) {
	_, err := Open("rocks")
	assert.True(t, errors.Is(err, status.ErrUnknownBackend))

	size, err := ParseSize("64MB")
	require.NoError(t, err)
	assert.Equal(t, int64(64<<20), size)
	assert.Equal(t, "1KiB", HumanSize(1024))
}
