// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package resource

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/elliotnunn/deskadv/internal/chunk"
	"github.com/elliotnunn/deskadv/internal/tilecache"
)

const (
	TileSide   = chunk.TileSide
	TileBitmap = chunk.TileBitmap
)

func (s *Store) tileOffset(ref int) int64 {
	return s.tileBase + int64(ref)*chunk.TileStride
}

// TileData returns a copy of the 32x32 palette-indexed bitmap of a tile,
// or nil if ref is out of range.
func (s *Store) TileData(ref int) []byte {
	if ref < 0 || ref >= s.tileCount {
		s.log.Warn("tileOutOfRange", "tile", ref, "count", s.tileCount)
		return nil
	}
	key := tilecache.Key{Archive: s.cacheKey, Ref: uint32(ref)}
	if b, ok := s.cache.Get(key); ok {
		return bytes.Clone(b)
	}

	b := make([]byte, chunk.TileBitmap)
	if _, err := s.r.ReadAt(b, s.tileOffset(ref)+4); err != nil && err != io.EOF {
		s.log.Warn("tileReadError", "tile", ref, "err", err)
		return nil
	}
	s.cache.Add(key, bytes.Clone(b))
	return b
}

// TileFlags returns one of the two 16-bit flag words that precede a tile's bitmap,
// or zero if either argument is out of range.
func (s *Store) TileFlags(ref int, which int) uint16 {
	if ref < 0 || ref >= s.tileCount || which < 0 || which > 1 {
		s.log.Warn("tileOutOfRange", "tile", ref, "flags", which, "count", s.tileCount)
		return 0
	}
	var b [2]byte
	if _, err := s.r.ReadAt(b[:], s.tileOffset(ref)+2*int64(which)); err != nil && err != io.EOF {
		s.log.Warn("tileReadError", "tile", ref, "err", err)
		return 0
	}
	return binary.LittleEndian.Uint16(b[:])
}

// SetupData returns the 288x288 palette-indexed startup screen, or nil if the archive has none.
func (s *Store) SetupData() []byte {
	if s.setup.Size == 0 {
		return nil
	}
	b := make([]byte, s.setup.Size)
	if _, err := s.r.ReadAt(b, s.setup.Offset); err != nil && err != io.EOF {
		s.log.Warn("setupReadError", "err", err)
		return nil
	}
	return b
}
