// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package tilecache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHit(t *testing.T) {
	c := New(64)
	k := Key{Archive: 7, Ref: 3}
	_, ok := c.Get(k)
	assert.False(t, ok)

	c.Add(k, []byte{1, 2, 3})
	b, ok := c.Get(k)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, b)

	_, ok = c.Get(Key{Archive: 8, Ref: 3})
	assert.False(t, ok)
}

func TestDisabled(t *testing.T) {
	c := New(0)
	assert.Nil(t, c)
	c.Add(Key{}, []byte{1})
	_, ok := c.Get(Key{})
	assert.False(t, ok)
}

func TestHasherSpreadsKeys(t *testing.T) {
	assert.NotEqual(t, hasher(Key{Archive: 1, Ref: 0}), hasher(Key{Archive: 0, Ref: 1}))
	assert.Equal(t, hasher(Key{Archive: 5, Ref: 9}), hasher(Key{Archive: 5, Ref: 9}))
}

func TestWideRefs(t *testing.T) {
	c := New(64)
	c.Add(Key{Archive: 1, Ref: 0}, []byte{0})
	c.Add(Key{Archive: 1, Ref: 0x10000}, []byte{1})

	b, ok := c.Get(Key{Archive: 1, Ref: 0})
	require.True(t, ok)
	assert.Equal(t, []byte{0}, b)
	b, ok = c.Get(Key{Archive: 1, Ref: 0x10000})
	require.True(t, ok)
	assert.Equal(t, []byte{1}, b)
	assert.NotEqual(t, hasher(Key{Archive: 1, Ref: 0}), hasher(Key{Archive: 1, Ref: 0x10000}))
}

func TestConcurrent(t *testing.T) {
	c := New(16)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				k := Key{Archive: uint64(g), Ref: uint32(i % 40)}
				if b, ok := c.Get(k); ok {
					assert.Equal(t, byte(k.Ref), b[0])
					continue
				}
				c.Add(k, []byte{byte(k.Ref)})
			}
		}()
	}
	wg.Wait()
}
