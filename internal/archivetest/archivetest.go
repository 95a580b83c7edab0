// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package archivetest assembles small synthetic archives for tests.
package archivetest

import (
	"bytes"
	"encoding/binary"

	"github.com/elliotnunn/deskadv/internal/chunk"
	"github.com/elliotnunn/deskadv/internal/hotspot"
	"github.com/elliotnunn/deskadv/internal/script"
)

type Builder struct {
	Variant chunk.Variant
	buf     bytes.Buffer
}

func New(v chunk.Variant) *Builder { return &Builder{Variant: v} }

func (b *Builder) Bytes() []byte { return b.buf.Bytes() }
func (b *Builder) Len() int      { return b.buf.Len() }

func (b *Builder) Tag(t chunk.Tag) *Builder {
	binary.Write(&b.buf, binary.BigEndian, uint32(t))
	return b
}

func (b *Builder) U16(v ...uint16) *Builder {
	binary.Write(&b.buf, binary.LittleEndian, v)
	return b
}

func (b *Builder) U32(v ...uint32) *Builder {
	binary.Write(&b.buf, binary.LittleEndian, v)
	return b
}

func (b *Builder) Raw(p []byte) *Builder {
	b.buf.Write(p)
	return b
}

// Name writes s padded with NULs to the given width.
func (b *Builder) Name(s string, width int) *Builder {
	p := make([]byte, width)
	copy(p, s)
	return b.Raw(p)
}

func (b *Builder) Version(v uint32) *Builder { return b.Tag(chunk.VERS).U32(v) }

func (b *Builder) End() *Builder { return b.Tag(chunk.ENDF) }

func (b *Builder) Setup(p []byte) *Builder {
	return b.Tag(chunk.STUP).U32(uint32(len(p))).Raw(p)
}

func (b *Builder) Sounds(names ...string) *Builder {
	size := 2
	for _, n := range names {
		size += 2 + len(n) + 1
	}
	b.Tag(chunk.SNDS).U32(uint32(size)).U16(uint16(-int16(len(names))))
	for _, n := range names {
		b.U16(uint16(len(n) + 1)).Raw(append([]byte(n), 0))
	}
	return b
}

// Tiles writes one tile per bitmap, each with its flags word.
func (b *Builder) Tiles(flags []uint32, bitmaps [][]byte) *Builder {
	b.Tag(chunk.TILE).U32(uint32(len(bitmaps) * chunk.TileStride))
	for i, bm := range bitmaps {
		p := make([]byte, chunk.TileBitmap)
		copy(p, bm)
		b.U32(flags[i]).Raw(p)
	}
	return b
}

// Names writes a TNAM or ZNAM table in the builder's name width.
func (b *Builder) Names(t chunk.Tag, entries ...chunk.Name) *Builder {
	w := b.Variant.NameWidth()
	b.Tag(t).U32(uint32(len(entries)*(2+w) + 2))
	for _, e := range entries {
		b.U16(e.ID).Name(e.Name, w)
	}
	return b.U16(0xffff)
}

func (b *Builder) Record(r script.Record) *Builder {
	b.U16(r.Opcode).U16(r.Args[:]...).U16(uint16(len(r.Text)))
	return b.Raw(r.Text)
}

func (b *Builder) Action(a chunk.Action) *Builder {
	b.Tag(chunk.IACT).U32(a.Size).U16(uint16(len(a.Conditions)))
	for _, r := range a.Conditions {
		b.Record(r)
	}
	b.U16(uint16(len(a.Instructions)))
	for _, r := range a.Instructions {
		b.Record(r)
	}
	return b
}

func (b *Builder) Hotspot(h hotspot.Hotspot) *Builder {
	return b.U32(h.Type).U16(h.Arg1, h.Arg2, h.X, h.Y)
}

// ZoneBody writes an IZON chunk. The trailing Yoda sub-chunks are written empty
// apart from the given hotspots and actions.
func (b *Builder) ZoneBody(z chunk.Zone, hotspots []hotspot.Hotspot, actions []chunk.Action) *Builder {
	b.Tag(chunk.IZON).U32(0).U16(z.Width, z.Height).U32(z.Type)
	if b.Variant == chunk.Yoda {
		b.U16(0xffff, z.Planet)
	}
	for i := range int(z.Width) * int(z.Height) {
		b.U16(z.Layers[0][i], z.Layers[1][i], z.Layers[2][i])
	}
	if b.Variant != chunk.Yoda {
		return b
	}
	b.U16(uint16(len(hotspots)))
	for _, h := range hotspots {
		b.Hotspot(h)
	}
	b.Tag(chunk.IZAX).U32(16).U16(0, 0, 0, 0)
	b.Tag(chunk.IZX2).U32(10).U16(0)
	b.Tag(chunk.IZX3).U32(10).U16(0)
	b.Tag(chunk.IZX4).U32(10).U16(0)
	b.U16(uint16(len(actions)))
	for _, a := range actions {
		b.Action(a)
	}
	return b
}

// Zones writes a ZONE chunk with no hotspots or actions.
func (b *Builder) Zones(zones ...chunk.Zone) *Builder {
	b.Tag(chunk.ZONE)
	if b.Variant != chunk.Yoda {
		b.U32(0)
	}
	b.U16(uint16(len(zones)))
	for i, z := range zones {
		if b.Variant == chunk.Yoda {
			b.U16(z.Planet).U32(0).U16(uint16(i))
		}
		b.ZoneBody(z, nil, nil)
	}
	return b
}

// Filled returns a zone whose layer l holds base[l]+i at index i.
func Filled(w, h uint16, base [3]uint16) chunk.Zone {
	z := chunk.Zone{Width: w, Height: h}
	for l := range z.Layers {
		z.Layers[l] = make([]uint16, int(w)*int(h))
		for i := range z.Layers[l] {
			z.Layers[l][i] = base[l] + uint16(i)
		}
	}
	return z
}
