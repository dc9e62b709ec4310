// Copyright © 2018 One Concern

package kv

import (
	"errors"
	"os"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/oneconcern/strata/pkg/kv/status"
)

type (
	// kvPebble provides a KV store implementation based on cockroachdb/pebble
	kvPebble struct {
		*pebble.DB
		writeOptions *pebble.WriteOptions
		cache        *pebble.Cache
	}

	kvPebbleIterator struct {
		isFirst  bool
		iterator *pebble.Iterator
		err      error
	}
)

var _ Store = &kvPebble{}

func openPebble(o options) (*kvPebble, error) {
	options := new(pebble.Options)
	options.Cache = pebble.NewCache(o.cacheSize)
	options.MemTableSize = uint64(o.memTableSize)
	options.Logger = pebbleLogger{SugaredLogger: o.l.Sugar()}

	pth := o.path
	if o.inMemory {
		options.FS = vfs.NewMem()
		pth = ""
	} else if err := os.MkdirAll(pth, 0700); err != nil {
		options.Cache.Unref()
		return nil, status.ErrOpen.Wrap(err)
	}
	options.EnsureDefaults()

	db, err := pebble.Open(pth, options)
	if err != nil {
		options.Cache.Unref()
		return nil, status.ErrOpen.Wrap(err)
	}

	return &kvPebble{
		DB:           db,
		writeOptions: &pebble.WriteOptions{Sync: o.sync},
		cache:        options.Cache,
	}, nil
}

func (kv *kvPebble) Close() error {
	err := kv.DB.Close()
	kv.cache.Unref()

	return err
}

func (kv *kvPebble) Size() uint64 {
	m := kv.DB.Metrics()

	return m.DiskSpaceUsage()
}

func (kv *kvPebble) Prefix(prefix []byte) Iterator {
	iterator, err := kv.DB.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixEnd(prefix),
	})

	return &kvPebbleIterator{
		isFirst:  true,
		iterator: iterator,
		err:      err,
	}
}

func (kv *kvPebble) Get(key []byte) ([]byte, error) {
	val, closer, err := kv.DB.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, status.ErrNotFound.WrapMessage(string(key))
		}

		return nil, err
	}
	defer func() {
		_ = closer.Close()
	}()

	dest := make([]byte, len(val))
	copy(dest, val)

	return dest, nil
}

func (kv *kvPebble) Exists(key []byte) (bool, error) {
	_, closer, err := kv.DB.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}

		return false, err
	}

	_ = closer.Close()

	return true, nil
}

func (kv *kvPebble) Set(key, value []byte) error {
	return kv.DB.Set(key, value, kv.writeOptions)
}

// SetIfNotExists is not atomic with respect to concurrent writers of the same key
func (kv *kvPebble) SetIfNotExists(key, value []byte) error {
	found, err := kv.Exists(key)
	if err != nil {
		return err
	}

	if found {
		return nil
	}

	return kv.DB.Set(key, value, kv.writeOptions)
}

func (kv *kvPebble) SetAll(pairs ...Pair) error {
	batch := kv.DB.NewBatch()
	defer func() {
		_ = batch.Close()
	}()

	for _, pair := range pairs {
		if err := batch.Set(pair.Key, pair.Value, nil); err != nil {
			return err
		}
	}
	return batch.Commit(kv.writeOptions)
}

func (kv *kvPebble) Delete(key []byte) error {
	return kv.DB.Delete(key, kv.writeOptions)
}

func (i *kvPebbleIterator) Next() bool {
	if i.err != nil {
		return false
	}

	if i.isFirst {
		i.isFirst = false

		return i.iterator.First()
	}

	return i.iterator.Next()
}

func (i *kvPebbleIterator) Item() ([]byte, []byte, error) {
	if i.err != nil {
		return nil, nil, i.err
	}

	k, v := i.iterator.Key(), i.iterator.Value()

	key := make([]byte, len(k))
	copy(key, k)
	value := make([]byte, len(v))
	copy(value, v)

	return key, value, nil
}

func (i *kvPebbleIterator) Close() error {
	if i.iterator == nil {
		return i.err
	}

	return i.iterator.Close()
}
