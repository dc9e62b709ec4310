// Copyright © 2018 One Concern

package kv

import (
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dgraph-io/badger/v3"
	"github.com/oneconcern/strata/pkg/errors"
	"github.com/oneconcern/strata/pkg/kv/status"
	"go.uber.org/zap"
)

type (
	// kvBadger provides a KV store implementation based on dgraph-io/badger/v3
	kvBadger struct {
		*badger.DB
	}

	kvBadgerIterator struct {
		isFirst  bool
		prefix   []byte
		txn      *badger.Txn
		iterator *badger.Iterator
	}

	// badgerLogger routes badger logs to zap
	badgerLogger struct {
		*zap.SugaredLogger
	}
)

var _ Store = &kvBadger{}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}

func openBadger(o options) (*kvBadger, error) {
	var opts badger.Options
	if o.inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(o.path, 0700); err != nil {
			return nil, status.ErrOpen.Wrap(err)
		}
		opts = badger.DefaultOptions(o.path)
	}

	db, err := badger.Open(
		opts.
			WithLogger(badgerLogger{SugaredLogger: o.l.Sugar()}).
			WithLoggingLevel(badger.WARNING).
			WithBlockCacheSize(o.cacheSize).
			WithMemTableSize(o.memTableSize).
			WithValueLogFileSize(o.memTableSize*4).
			WithSyncWrites(o.sync),
	)
	if err != nil {
		return nil, status.ErrOpen.Wrap(err)
	}
	return &kvBadger{DB: db}, nil
}

func (kv *kvBadger) Size() uint64 {
	lsmSize, logSize := kv.DB.Size()
	return uint64(lsmSize + logSize)
}

func (kv *kvBadger) Prefix(prefix []byte) Iterator {
	txn := kv.DB.NewTransaction(false)
	iterator := txn.NewIterator(badger.IteratorOptions{
		PrefetchSize:   100,
		PrefetchValues: true,
		Prefix:         prefix,
	})

	return &kvBadgerIterator{
		isFirst:  true,
		prefix:   prefix,
		txn:      txn,
		iterator: iterator,
	}
}

func (kv *kvBadger) Get(key []byte) ([]byte, error) {
	var value []byte
	err := kv.DB.View(func(txn *badger.Txn) error {
		item, e := txn.Get(key)
		if e != nil {
			return e
		}
		value, e = item.ValueCopy(nil)

		return e
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, status.ErrNotFound.WrapMessage(string(key))
	}

	return value, err
}

func (kv *kvBadger) Exists(key []byte) (bool, error) {
	err := kv.DB.View(func(txn *badger.Txn) error {
		_, e := txn.Get(key)

		return e
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// update retries a transaction on conflicts
func (kv *kvBadger) update(fn func(*badger.Txn) error) error {
	return backoff.Retry(func() error {
		err := kv.DB.Update(fn)
		if err != nil && !errors.Is(err, badger.ErrConflict) {
			return backoff.Permanent(err)
		}

		return err
	},
		backoff.WithMaxRetries(backoff.NewConstantBackOff(10*time.Millisecond), 100),
	)
}

func (kv *kvBadger) Set(key, value []byte) error {
	return kv.update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (kv *kvBadger) SetIfNotExists(key, value []byte) error {
	return kv.update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil
		}

		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return txn.Set(key, value)
	})
}

func (kv *kvBadger) SetAll(pairs ...Pair) error {
	return kv.update(func(txn *badger.Txn) error {
		for _, pair := range pairs {
			if err := txn.Set(pair.Key, pair.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (kv *kvBadger) Delete(key []byte) error {
	return kv.update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (i *kvBadgerIterator) Next() bool {
	if i.isFirst {
		i.iterator.Seek(i.prefix)
		i.isFirst = false

		return i.iterator.ValidForPrefix(i.prefix)
	}

	i.iterator.Next()

	return i.iterator.ValidForPrefix(i.prefix)
}

func (i *kvBadgerIterator) Item() ([]byte, []byte, error) {
	key := i.iterator.Item().KeyCopy(nil)
	val, err := i.iterator.Item().ValueCopy(nil)

	return key, val, err
}

func (i *kvBadgerIterator) Close() error {
	i.iterator.Close()
	i.txn.Discard()

	return nil
}
