// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package resource reads the resource archive of a desktop adventure game,
// DESKTOP.DAW for Indy or YODESK.DTA for Yoda.
//
// Everything except the tile bitmaps and the setup screen is decoded into memory by [Load].
// Those two stay on disk and are read on demand through the retained [io.ReaderAt],
// so a Store must be closed when no longer needed.
package resource

import (
	"io"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/elliotnunn/deskadv/internal/chunk"
	"github.com/elliotnunn/deskadv/internal/fileid"
	"github.com/elliotnunn/deskadv/internal/tilecache"
)

type (
	Zone      = chunk.Zone
	Name      = chunk.Name
	Puzzle    = chunk.Puzzle
	Character = chunk.Character
	Variant   = chunk.Variant
)

const (
	Indy = chunk.Indy
	Yoda = chunk.Yoda
)

// ErrFormat is matched by every error caused by a malformed archive.
var ErrFormat = chunk.ErrFormat

type Options struct {
	Variant       Variant
	Logger        *slog.Logger // default slog.Default()
	TileCacheSize int          // bitmaps kept in memory, zero to disable
}

// A Store is the decoded content of one archive.
// It is immutable once loaded, and safe for concurrent use by multiple goroutines.
type Store struct {
	variant Variant
	version uint32
	size    int64
	log     *slog.Logger

	idOnce sync.Once
	id     fileid.ID

	zones       []Zone
	zoneNames   []Name
	tileNames   []Name
	sounds      []string
	actionNames []chunk.ZoneActionNames
	puzzleNames []string
	puzzles     []Puzzle
	characters  []Character

	r         io.ReaderAt
	tileBase  int64
	tileCount int
	setup     chunk.Setup
	cache     *tilecache.Cache
	cacheKey  uint64

	closer    io.Closer
	closeOnce sync.Once
	closeErr  error
}

func (s *Store) Variant() Variant { return s.variant }
func (s *Store) Version() uint32  { return s.version }

// stores numbers the loaded stores, to tell their cached tiles apart.
var stores atomic.Uint64

// ID fingerprints the archive file, or its content if it has no file.
// Hashing the content is put off until the first call.
func (s *Store) ID() fileid.ID {
	s.idOnce.Do(func() {
		id, err := fileid.Content(s.r, s.size)
		if err != nil {
			s.log.Warn("archiveIDError", "err", err)
		}
		s.id = id
	})
	return s.id
}

func (s *Store) ZoneCount() int { return len(s.zones) }

// Zone returns a copy of a zone that the caller may modify, or nil if i is out of range.
func (s *Store) Zone(i int) *Zone {
	if i < 0 || i >= len(s.zones) {
		s.log.Warn("zoneOutOfRange", "zone", i, "count", len(s.zones))
		return nil
	}
	z := s.zones[i]
	for l := range z.Layers {
		z.Layers[l] = slices.Clone(z.Layers[l])
	}
	return &z
}

// ZoneName returns the name of a zone, if it has one.
func (s *Store) ZoneName(id uint16) (string, bool) {
	return lookup(s.zoneNames, id)
}

func (s *Store) TileCount() int { return s.tileCount }

// TileName returns the name of a tile, if it has one. Most tiles have none.
func (s *Store) TileName(ref uint16) (string, bool) {
	return lookup(s.tileNames, ref)
}

func lookup(names []Name, id uint16) (string, bool) {
	for _, n := range names {
		if n.ID == id {
			return n.Name, true
		}
	}
	return "", false
}

// FindTiles returns the named tiles whose names match a doublestar glob pattern.
func (s *Store) FindTiles(pattern string) ([]Name, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}
	var found []Name
	for _, n := range s.tileNames {
		if ok, _ := doublestar.Match(pattern, n.Name); ok {
			found = append(found, n)
		}
	}
	return found, nil
}

func (s *Store) SoundCount() int { return len(s.sounds) }

// SoundFilename returns false if ref is out of range.
func (s *Store) SoundFilename(ref int) (string, bool) {
	if ref < 0 || ref >= len(s.sounds) {
		s.log.Warn("soundOutOfRange", "sound", ref, "count", len(s.sounds))
		return "", false
	}
	return s.sounds[ref], true
}

// ActionNames returns the named actions of a zone.
func (s *Store) ActionNames(zone uint16) []Name {
	for _, z := range s.actionNames {
		if z.Zone == zone {
			return z.Names
		}
	}
	return nil
}

func (s *Store) PuzzleNames() []string   { return s.puzzleNames }
func (s *Store) Puzzles() []Puzzle       { return s.puzzles }
func (s *Store) Characters() []Character { return s.characters }

// Close releases the archive. Calls after the first return the first result.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.closer != nil {
			s.closeErr = s.closer.Close()
		}
		s.log.Debug("archiveClosed", "size", s.size)
	})
	return s.closeErr
}

// TileNames returns every named tile in archive order.
func (s *Store) TileNames() []Name { return s.tileNames }
