// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package tilecache keeps recently drawn tile bitmaps in memory.
package tilecache

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-tinylfu"
)

// Key names one tile of one open archive.
type Key struct {
	Archive uint64
	Ref     uint32
}

func hasher(k Key) uint64 {
	var b [12]byte
	binary.LittleEndian.PutUint64(b[:], k.Archive)
	binary.LittleEndian.PutUint32(b[8:], k.Ref)
	return xxhash.Sum64(b[:])
}

// A Cache is safe for concurrent use by multiple goroutines.
// A nil *Cache caches nothing.
type Cache struct {
	mu  sync.Mutex
	lfu *tinylfu.T[Key, []byte]
}

// New returns a cache holding up to n bitmaps, or nil if n is not positive.
func New(n int) *Cache {
	if n <= 0 {
		return nil
	}
	return &Cache{lfu: tinylfu.New[Key, []byte](n, n*10, hasher)}
}

// Get returns the cached bitmap, which the caller must not modify.
func (c *Cache) Get(k Key) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lfu.Get(k)
}

func (c *Cache) Add(k Key, b []byte) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lfu.Add(k, b)
}
