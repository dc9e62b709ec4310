// Copyright © 2018 One Concern

package kv

import (
	"github.com/docker/go-units"
	"go.uber.org/zap"
)

type options struct {
	path         string
	inMemory     bool
	cacheSize    int64
	memTableSize int64
	sync         bool
	l            *zap.Logger
}

func defaultOptions() options {
	return options{
		cacheSize:    64 * units.MiB,
		memTableSize: 16 * units.MiB,
		l:            zap.NewNop(),
	}
}

// Option is a functor to open a store with some options
type Option func(*options)

// WithPath sets the directory holding the store
func WithPath(pth string) Option {
	return func(o *options) {
		o.path = pth
	}
}

// WithInMemory keeps the store in memory. Nothing is persisted.
func WithInMemory(enabled bool) Option {
	return func(o *options) {
		o.inMemory = enabled
	}
}

// WithCacheSize sets the size in bytes of the block cache
func WithCacheSize(size int64) Option {
	return func(o *options) {
		if size > 0 {
			o.cacheSize = size
		}
	}
}

// WithMemTableSize sets the size in bytes of in-memory tables
func WithMemTableSize(size int64) Option {
	return func(o *options) {
		if size > 0 {
			o.memTableSize = size
		}
	}
}

// WithSync flushes every write to disk before acknowledging it
func WithSync(enabled bool) Option {
	return func(o *options) {
		o.sync = enabled
	}
}

// Logger injects a logger for the backend's own logs
func Logger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.l = l
		}
	}
}

// ParseSize parses a human readable size such as "64MB" or "1GiB" into bytes
func ParseSize(s string) (int64, error) {
	return units.RAMInBytes(s)
}

// HumanSize renders a size in bytes
func HumanSize(size uint64) string {
	return units.BytesSize(float64(size))
}
