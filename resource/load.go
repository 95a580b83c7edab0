// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package resource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/elliotnunn/deskadv/internal/chunk"
	"github.com/elliotnunn/deskadv/internal/cursor"
	"github.com/elliotnunn/deskadv/internal/fileid"
	"github.com/elliotnunn/deskadv/internal/tilecache"
	"github.com/therootcompany/xz"
)

// Load decodes an archive of the given size.
// The Store keeps reading tiles from r, which must outlive it.
//
// A malformed archive returns an error matching [ErrFormat].
// If ctx is cancelled the load stops early and returns ctx.Err().
func Load(ctx context.Context, r io.ReaderAt, size int64, opts Options) (*Store, error) {
	return load(ctx, r, size, opts, nil, nil)
}

const xzMagic = "\xfd7zXZ\x00"

// Open loads an archive file, which may be xz-compressed.
// Failing to open or read the file is not a format error.
func Open(ctx context.Context, name string, opts Options) (*Store, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	inf, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	var magic [len(xzMagic)]byte
	n, _ := f.ReadAt(magic[:], 0)
	if string(magic[:n]) == xzMagic {
		defer f.Close()
		data, err := decompress(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return Load(ctx, bytes.NewReader(data), int64(len(data)), opts)
	}

	var idp *fileid.ID
	if id, err := fileid.Of(f); err == nil {
		idp = &id
	} else {
		logger(opts).Debug("fileIDError", "name", name, "err", err)
	}

	advise(f, adviceSequential)
	s, err := load(ctx, f, inf.Size(), opts, idp, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	advise(f, adviceRandom)
	return s, nil
}

func decompress(r io.ReaderAt) ([]byte, error) {
	zr, err := xz.NewReader(io.NewSectionReader(r, 0, 1<<62), xz.DefaultDictMax)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(zr)
}

func logger(opts Options) *slog.Logger {
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}
	return l.With("subsystem", "resource")
}

// load falls back to hashing the content for the ID when id is nil.
func load(ctx context.Context, r io.ReaderAt, size int64, opts Options, id *fileid.ID, closer io.Closer) (*Store, error) {
	s := &Store{
		variant:  opts.Variant,
		size:     size,
		log:      logger(opts),
		r:        r,
		cache:    tilecache.New(opts.TileCacheSize),
		cacheKey: stores.Add(1),
		closer:   closer,
	}
	if id != nil {
		s.idOnce.Do(func() { s.id = *id })
	}
	s.log.Debug("archiveLoading", "size", size, "variant", opts.Variant)

	c := cursor.New(r, size, 0)
	st := chunk.State{Ctx: ctx, Variant: opts.Variant, Log: s.log}
	for {
		if err := ctx.Err(); err != nil {
			s.log.Debug("archiveLoadCancelled", "offset", c.Pos())
			return nil, err
		}
		ch, err := chunk.Decode(c, st)
		if err != nil {
			s.log.Debug("archiveLoadFailed", "offset", c.Pos(), "err", err)
			return nil, err
		}

		switch ch := ch.(type) {
		case *chunk.Version:
			s.version = ch.Number
		case *chunk.Setup:
			s.setup = *ch
		case *chunk.Sounds:
			s.sounds = ch.Names
		case *chunk.Tiles:
			s.tileBase, s.tileCount = ch.Offset, int(ch.Count)
		case *chunk.Names:
			if ch.Tag() == chunk.TNAM {
				s.tileNames = ch.Entries
			} else {
				s.zoneNames = ch.Entries
			}
		case *chunk.ActionNames:
			s.actionNames = ch.Zones
		case *chunk.PuzzleNames:
			s.puzzleNames = ch.Names
		case *chunk.Puzzles:
			s.puzzles = ch.Puzzles
		case *chunk.Characters:
			s.characters = ch.Characters
		case *chunk.Zones:
			for _, b := range ch.Bodies {
				s.zones = append(s.zones, b.Zone)
			}
			st.Zones = len(s.zones)
		case *chunk.End:
			s.log.Debug("archiveLoaded", "version", s.version,
				"zones", len(s.zones), "tiles", s.tileCount, "sounds", len(s.sounds))
			return s, nil
		}
	}
}
