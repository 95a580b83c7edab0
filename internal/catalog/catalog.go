// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package catalog remembers the contents of archives that have been loaded,
// so they can be looked up later without the archive file.
//
// Every key starts with the archive's fileid.ID and a kind byte:
//
//	ID 'm'          meta
//	ID 'z' u16      zone
//	ID 't' u16      tile name
//	ID 's' u16      sound filename
package catalog

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/pebble/v2"
	"github.com/cockroachdb/pebble/v2/vfs"

	"github.com/elliotnunn/deskadv/internal/fileid"
	"github.com/elliotnunn/deskadv/resource"
)

var ErrNotFound = errors.New("not in catalog")

const (
	kindMeta  = 'm'
	kindZone  = 'z'
	kindTile  = 't'
	kindSound = 's'
)

type Options struct {
	FS     vfs.FS // default the operating system
	Logger *slog.Logger
}

type Catalog struct {
	db  *pebble.DB
	log *slog.Logger
}

// Meta summarises one archive.
type Meta struct {
	Variant resource.Variant
	Version uint32
	Zones   int
	Tiles   int
	Sounds  int
}

func Open(dir string, opts Options) (*Catalog, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("subsystem", "catalog")

	db, err := pebble.Open(dir, &pebble.Options{
		FS:     opts.FS,
		Logger: pebbleLogger{log},
	})
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", dir, err)
	}
	return &Catalog{db: db, log: log}, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

func key(id fileid.ID, kind byte, n ...uint16) []byte {
	k := append(id[:], kind)
	for _, x := range n {
		k = binary.BigEndian.AppendUint16(k, x)
	}
	return k
}

// span returns the bounds of every key of one kind.
func span(id fileid.ID, kind byte) (lo, hi []byte) {
	return key(id, kind), key(id, kind+1)
}

// Record replaces whatever the catalog holds for the store's archive.
func (c *Catalog) Record(s *resource.Store) error {
	id := s.ID()
	b := c.db.NewBatch()
	defer b.Close()

	next := id
	for i := len(next) - 1; i >= 0; i-- {
		next[i]++
		if next[i] != 0 {
			break
		}
	}
	if err := b.DeleteRange(id[:], next[:], nil); err != nil {
		return err
	}

	meta := Meta{
		Variant: s.Variant(),
		Version: s.Version(),
		Zones:   s.ZoneCount(),
		Tiles:   s.TileCount(),
		Sounds:  s.SoundCount(),
	}
	if err := b.Set(key(id, kindMeta), meta.marshal(), nil); err != nil {
		return err
	}
	for i := range s.ZoneCount() {
		if err := b.Set(key(id, kindZone, uint16(i)), marshalZone(s.Zone(i)), nil); err != nil {
			return err
		}
	}
	for _, n := range s.TileNames() {
		if err := b.Set(key(id, kindTile, n.ID), []byte(n.Name), nil); err != nil {
			return err
		}
	}
	for i := range s.SoundCount() {
		name, _ := s.SoundFilename(i)
		if err := b.Set(key(id, kindSound, uint16(i)), []byte(name), nil); err != nil {
			return err
		}
	}

	if err := b.Commit(pebble.Sync); err != nil {
		return err
	}
	c.log.Debug("archiveRecorded", "id", id, "zones", meta.Zones, "tileNames", len(s.TileNames()))
	return nil
}

func (c *Catalog) get(k []byte) ([]byte, error) {
	v, closer, err := c.db.Get(k)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), v...), nil
}

func (c *Catalog) Has(id fileid.ID) (bool, error) {
	_, err := c.get(key(id, kindMeta))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (c *Catalog) Meta(id fileid.ID) (Meta, error) {
	v, err := c.get(key(id, kindMeta))
	if err != nil {
		return Meta{}, err
	}
	var m Meta
	return m, m.unmarshal(v)
}

func (c *Catalog) Zone(id fileid.ID, i int) (resource.Zone, error) {
	if i < 0 || i > 0xffff {
		return resource.Zone{}, ErrNotFound
	}
	v, err := c.get(key(id, kindZone, uint16(i)))
	if err != nil {
		return resource.Zone{}, err
	}
	return unmarshalZone(v)
}

func (c *Catalog) TileName(id fileid.ID, ref uint16) (string, error) {
	v, err := c.get(key(id, kindTile, ref))
	return string(v), err
}

// Sounds returns the sound filenames in order.
func (c *Catalog) Sounds(id fileid.ID) ([]string, error) {
	lo, hi := span(id, kindSound)
	it, err := c.db.NewIter(&pebble.IterOptions{LowerBound: lo, UpperBound: hi})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var names []string
	for it.First(); it.Valid(); it.Next() {
		v, err := it.ValueAndErr()
		if err != nil {
			return nil, err
		}
		names = append(names, string(v))
	}
	return names, it.Error()
}
