// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package chunk

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/elliotnunn/deskadv/internal/cursor"
	"github.com/elliotnunn/deskadv/internal/hotspot"
	"github.com/elliotnunn/deskadv/internal/script"
)

// State is everything a decoder may consult besides the cursor.
// It is passed by value and never modified by a decoder.
type State struct {
	Ctx     context.Context // polled before every loop iteration
	Variant Variant
	Zones   int // announced by the last ZONE chunk, sizes the ZAUX family
	Log     *slog.Logger
}

type decoder struct {
	c   *cursor.Cursor
	st  State
	log *slog.Logger
	tag Tag // innermost, for error reports
}

type decodeFunc func(d *decoder) Chunk

var decoders map[Tag]decodeFunc

// nested tags are only valid inside the chunk that announces them.
var nested = map[Tag]bool{
	IZON: true, IZAX: true, IZX2: true, IZX3: true, IZX4: true,
	IACT: true, IPUZ: true, ICHA: true,
}

func init() {
	decoders = map[Tag]decodeFunc{
		VERS: (*decoder).version,
		STUP: (*decoder).setup,
		SNDS: (*decoder).sounds,
		TILE: (*decoder).tiles,
		TNAM: (*decoder).names,
		ZNAM: (*decoder).names,
		ANAM: (*decoder).actionNames,
		PNAM: (*decoder).puzzleNames,
		PUZ2: (*decoder).puzzles,
		IPUZ: (*decoder).puzzle,
		ZONE: (*decoder).zones,
		IZON: (*decoder).zoneBody,
		IZAX: (*decoder).zoneAux,
		IZX2: (*decoder).zoneList,
		IZX3: (*decoder).zoneList,
		IZX4: (*decoder).zoneFlag,
		IACT: (*decoder).action,
		HTSP: (*decoder).hotspots,
		ACTN: (*decoder).actions,
		CHAR: (*decoder).characters,
		ICHA: (*decoder).character,
		CHWP: (*decoder).indexed,
		CAUX: (*decoder).indexed,
		ZAUX: (*decoder).zoneTable,
		ZAX2: (*decoder).zoneTable,
		ZAX3: (*decoder).zoneTable,
		ZAX4: (*decoder).zoneTable,
		ENDF: (*decoder).end,
	}
}

// Decode reads one chunk, including any chunks nested inside it,
// and leaves the cursor just past it.
//
// A violation of the archive layout returns a *FormatError matching ErrFormat.
// Cancelling st.Ctx returns the context's error.
func Decode(c *cursor.Cursor, st State) (ch Chunk, err error) {
	if st.Ctx == nil {
		st.Ctx = context.Background()
	}
	if st.Log == nil {
		st.Log = slog.Default()
	}
	d := &decoder{c: c, st: st, log: st.Log}

	defer func() {
		switch r := recover().(type) {
		case nil:
		case *FormatError:
			ch, err = nil, r
		case *cursor.ShortError:
			ch, err = nil, &FormatError{Off: r.Off, Tag: d.tag, Msg: "truncated", Err: r}
		case interrupted:
			ch, err = nil, r.err
		default:
			panic(r)
		}
	}()
	return d.next(), nil
}

func (d *decoder) next() Chunk {
	at := d.c.Pos()
	t := Tag(d.c.U32BE())
	fn, ok := decoders[t]
	if !ok {
		d.log.Debug("unknownTag", "tag", t, "offset", at)
		d.failAt(at, "unknown tag %s", t)
	}
	if d.tag == 0 && nested[t] {
		d.failAt(at, "%s chunk outside its parent", t)
	}
	outer := d.tag
	d.tag = t
	ch := fn(d)
	d.tag = outer
	return ch
}

// expect decodes a nested chunk that must carry the given tag.
func (d *decoder) expect(want Tag) Chunk {
	at := d.c.Pos()
	t := Tag(d.c.U32BE())
	if t != want {
		d.failAt(at, "expected %s, found %s", want, t)
	}
	d.c.Seek(at)
	return d.next()
}

func (d *decoder) poll() {
	if err := d.st.Ctx.Err(); err != nil {
		panic(interrupted{err})
	}
}

func (d *decoder) fail(format string, args ...any) {
	d.failAt(d.c.Pos(), format, args...)
}

func (d *decoder) failAt(off int64, format string, args ...any) {
	panic(&FormatError{Off: off, Tag: d.tag, Msg: fmt.Sprintf(format, args...)})
}

func (d *decoder) yoda() bool { return d.st.Variant == Yoda }

// loop calls fn with each 16-bit id until the 0xffff sentinel, which is consumed.
func (d *decoder) loop(fn func(id uint16)) {
	for {
		d.poll()
		id := d.c.U16()
		if id == sentinel {
			return
		}
		fn(id)
	}
}

func (d *decoder) repeat(n int, fn func(i int)) {
	for i := range n {
		d.poll()
		fn(i)
	}
}

func (d *decoder) version() Chunk {
	v := &Version{Number: d.c.U32()}
	d.log.Debug("version", "version", v.Number)
	if v.Number != 0x200 {
		d.log.Warn("unsupportedVersion", "version", v.Number)
	}
	return v
}

func (d *decoder) setup() Chunk {
	size := d.c.U32()
	d.log.Debug("chunk", "tag", STUP, "size", size)
	if size != SetupSize {
		d.fail("setup screen is %d bytes, want %d", size, SetupSize)
	}
	s := &Setup{Offset: d.c.Pos(), Size: int64(size)}
	d.c.Skip(s.Size)
	return s
}

func (d *decoder) sounds() Chunk {
	size := int64(d.c.U32())
	count := -int(d.c.I16())
	d.log.Debug("chunk", "tag", SNDS, "size", size, "sounds", count)
	left := size - 2

	s := &Sounds{}
	d.repeat(count, func(int) {
		n := d.c.U16()
		left -= 2 + int64(n)
		name := cutNUL(d.c.Bytes(int(n)))
		if int(n) != len(name)+1 {
			d.log.Warn("soundNameLength", "declared", n, "actual", len(name)+1)
		}
		s.Names = append(s.Names, decodeName(name))
		d.log.Debug("sound", "name", s.Names[len(s.Names)-1])
	})
	if left != 0 {
		d.fail("sound list overran its size by %d bytes", -left)
	}
	return s
}

func (d *decoder) tiles() Chunk {
	size := d.c.U32()
	count := size / TileStride
	d.log.Debug("chunk", "tag", TILE, "size", size, "tiles", count)
	if count*TileStride != size {
		d.fail("tile data of %d bytes is not a whole number of %d-byte tiles", size, TileStride)
	}
	t := &Tiles{Offset: d.c.Pos(), Count: count}
	d.repeat(int(count), func(i int) {
		lo, hi := d.c.U16(), d.c.U16()
		d.log.Debug("tile", "index", i, "flags", [2]uint16{lo, hi})
		d.c.Skip(TileBitmap)
	})
	return t
}

func (d *decoder) names() Chunk {
	size := d.c.U32()
	d.log.Debug("chunk", "tag", d.tag, "size", size)
	n := &Names{tag: d.tag}
	d.loop(func(id uint16) {
		name := d.fixedName(d.st.Variant.NameWidth())
		d.log.Debug("name", "id", id, "name", name)
		n.Entries = append(n.Entries, Name{ID: id, Name: name})
	})
	return n
}

func (d *decoder) actionNames() Chunk {
	size := d.c.U32()
	d.log.Debug("chunk", "tag", ANAM, "size", size)
	a := &ActionNames{}
	d.loop(func(zone uint16) {
		z := ZoneActionNames{Zone: zone}
		d.loop(func(id uint16) {
			name := d.fixedName(d.st.Variant.NameWidth())
			d.log.Debug("actionName", "zone", zone, "id", id, "name", name)
			z.Names = append(z.Names, Name{ID: id, Name: name})
		})
		a.Zones = append(a.Zones, z)
	})
	return a
}

func (d *decoder) puzzleNames() Chunk {
	size := d.c.U32()
	count := d.c.U16()
	d.log.Debug("chunk", "tag", PNAM, "size", size, "puzzles", count)
	p := &PuzzleNames{}
	d.repeat(int(count), func(int) {
		p.Names = append(p.Names, d.fixedName(16))
	})
	return p
}

func (d *decoder) puzzles() Chunk {
	size := d.c.U32()
	d.log.Debug("chunk", "tag", PUZ2, "size", size)
	p := &Puzzles{}
	d.loop(func(id uint16) {
		pz := d.expect(IPUZ).(*Puzzle)
		pz.ID = id
		p.Puzzles = append(p.Puzzles, *pz)
	})
	return p
}

func (d *decoder) puzzle() Chunk {
	p := &Puzzle{Size: d.c.U32()}
	p.Header[0] = d.c.U32()
	p.Header[1] = d.c.U32()
	if d.yoda() {
		p.Header[2] = d.c.U32()
	}
	p.Flags = d.c.U16()
	for i := range p.Strings {
		n := d.c.U16()
		p.Strings[i] = decodeName(d.c.Bytes(int(n)))
	}
	p.Trailer[0] = d.c.U16()
	if d.yoda() {
		p.Trailer[1] = d.c.U16()
	}
	d.log.Debug("puzzle", "size", p.Size, "header", p.Header, "flags", p.Flags, "trailer", p.Trailer)
	return p
}

func (d *decoder) zones() Chunk {
	if !d.yoda() {
		size := d.c.U32()
		d.log.Debug("chunk", "tag", ZONE, "size", size)
	}
	count := d.c.U16()
	d.log.Debug("zones", "count", count)

	z := &Zones{}
	d.repeat(int(count), func(i int) {
		if d.yoda() {
			planet := d.c.U16()
			size := d.c.U32()
			id := d.c.U16()
			if int(id) != i {
				d.fail("zone %d is numbered %d", i, id)
			}
			d.log.Debug("zoneHeader", "zone", id, "planet", planet, "size", size)
		}
		z.Bodies = append(z.Bodies, *d.expect(IZON).(*ZoneBody))
	})
	return z
}

func validSide(n uint16) bool { return n == 9 || n == 18 }

func (d *decoder) zoneBody() Chunk {
	size := d.c.U32()
	b := &ZoneBody{}
	z := &b.Zone
	z.Width, z.Height = d.c.U16(), d.c.U16()
	if !validSide(z.Width) || !validSide(z.Height) {
		d.fail("zone is %dx%d, sides must be 9 or 18", z.Width, z.Height)
	}
	z.Type = d.c.U32()
	var padding uint16
	if d.yoda() {
		padding = d.c.U16()
		z.Planet = d.c.U16()
	}
	d.log.Debug("zone", "size", size, "width", z.Width, "height", z.Height,
		"type", z.Type, "padding", padding, "planet", z.Planet)

	n := int(z.Width) * int(z.Height)
	for l := range z.Layers {
		z.Layers[l] = make([]uint16, n)
	}
	for i := range n {
		for l := range z.Layers {
			z.Layers[l][i] = d.c.U16()
		}
	}

	if !d.yoda() {
		return b
	}

	count := d.c.U16()
	d.log.Debug("hotspots", "count", count)
	d.repeat(int(count), func(int) {
		h := hotspot.Read(d.c)
		d.log.Debug("hotspot", "hotspot", h)
		b.Hotspots = append(b.Hotspots, h)
	})

	b.Aux = d.expect(IZAX).(*ZoneAux)
	b.Aux2 = d.expect(IZX2).(*ZoneList)
	b.Aux3 = d.expect(IZX3).(*ZoneList)
	b.Aux4 = d.expect(IZX4).(*ZoneFlag)

	count = d.c.U16()
	d.log.Debug("actions", "count", count)
	d.repeat(int(count), func(int) {
		b.Actions = append(b.Actions, *d.expect(IACT).(*Action))
	})
	return b
}

// skipRest skips the remainder of a chunk whose size counts from its tag.
func (d *decoder) skipRest(size uint32) {
	if size < 8 {
		d.fail("chunk size %d is smaller than its header", size)
	}
	d.c.Skip(int64(size) - 8)
}

func (d *decoder) zoneAux() Chunk {
	a := &ZoneAux{Size: d.c.U32()}
	if !d.yoda() {
		d.skipRest(a.Size)
		return a
	}
	a.Unknown = d.c.U16()
	d.log.Debug("zoneAux", "size", a.Size, "unknown", a.Unknown)

	d.repeat(int(d.c.U16()), func(int) {
		var r AuxRecord
		for i := range r.Fields {
			r.Fields[i] = d.c.U16()
		}
		r.Value = d.c.U32()
		copy(r.Data[:], d.c.Bytes(len(r.Data)))
		d.log.Debug("zoneAuxRecord", "fields", r.Fields, "value", r.Value)
		a.Records = append(a.Records, r)
	})
	d.repeat(int(d.c.U16()), func(int) { a.ListA = append(a.ListA, d.c.U16()) })
	d.repeat(int(d.c.U16()), func(int) { a.ListB = append(a.ListB, d.c.U16()) })
	return a
}

func (d *decoder) zoneList() Chunk {
	l := &ZoneList{tag: d.tag, Size: d.c.U32()}
	if !d.yoda() {
		d.skipRest(l.Size)
		return l
	}
	d.repeat(int(d.c.U16()), func(int) { l.IDs = append(l.IDs, d.c.U16()) })
	d.log.Debug("zoneList", "tag", d.tag, "size", l.Size, "ids", l.IDs)
	return l
}

func (d *decoder) zoneFlag() Chunk {
	f := &ZoneFlag{Size: d.c.U32(), Value: d.c.U16()}
	d.log.Debug("zoneFlag", "size", f.Size, "value", f.Value)
	return f
}

var zoneTableEntry = map[Tag]Tag{ZAUX: IZAX, ZAX2: IZX2, ZAX3: IZX3, ZAX4: IZX4}

func (d *decoder) zoneTable() Chunk {
	size := d.c.U32()
	d.log.Debug("chunk", "tag", d.tag, "size", size, "zones", d.st.Zones)
	t := &ZoneTable{tag: d.tag}
	want := zoneTableEntry[d.tag]
	d.repeat(d.st.Zones, func(int) {
		t.Entries = append(t.Entries, d.expect(want))
	})
	return t
}

func (d *decoder) action() Chunk {
	a := &Action{Size: d.c.U32()}
	count := d.c.U16()
	d.log.Debug("action", "size", a.Size, "conditions", count)
	d.repeat(int(count), func(int) {
		r := script.Read(d.c)
		d.log.Debug("condition", "op", script.Condition(r.Opcode), "record", r)
		if !r.Valid() {
			d.fail("condition opcode %#x out of range", r.Opcode)
		}
		a.Conditions = append(a.Conditions, r)
	})
	count = d.c.U16()
	d.log.Debug("action", "instructions", count)
	d.repeat(int(count), func(int) {
		r := script.Read(d.c)
		d.log.Debug("instruction", "op", script.Instruction(r.Opcode), "record", r)
		if !r.Valid() {
			d.fail("instruction opcode %#x out of range", r.Opcode)
		}
		a.Instructions = append(a.Instructions, r)
	})
	return a
}

func (d *decoder) hotspots() Chunk {
	size := d.c.U32()
	d.log.Debug("chunk", "tag", HTSP, "size", size)
	h := &Hotspots{}
	d.loop(func(zone uint16) {
		count := d.c.U16()
		d.log.Debug("zoneHotspots", "zone", zone, "count", count)
		z := ZoneHotspots{Zone: zone}
		d.repeat(int(count), func(int) {
			z.Hotspots = append(z.Hotspots, hotspot.Read(d.c))
		})
		h.Zones = append(h.Zones, z)
	})
	return h
}

func (d *decoder) actions() Chunk {
	size := d.c.U32()
	d.log.Debug("chunk", "tag", ACTN, "size", size)
	a := &Actions{}
	d.loop(func(zone uint16) {
		count := d.c.U16()
		d.log.Debug("zoneActions", "zone", zone, "count", count)
		z := ZoneActions{Zone: zone}
		d.repeat(int(count), func(int) {
			z.Actions = append(z.Actions, *d.expect(IACT).(*Action))
		})
		a.Zones = append(a.Zones, z)
	})
	return a
}

func (d *decoder) characters() Chunk {
	size := d.c.U32()
	d.log.Debug("chunk", "tag", CHAR, "size", size)
	c := &Characters{}
	d.loop(func(index uint16) {
		ch := d.expect(ICHA).(*Character)
		ch.Index = index
		c.Characters = append(c.Characters, *ch)
	})
	return c
}

func (d *decoder) character() Chunk {
	size := int64(d.c.U32())
	raw := d.c.CString()
	unknown := size - int64(len(raw)+1) - 2*int64(len(Character{}.Frames))
	if unknown < 0 {
		d.fail("character of %d bytes cannot hold its name and frames", size)
	}
	d.c.Skip(unknown)

	ch := &Character{Name: decodeName(raw)}
	for i := range ch.Frames {
		ch.Frames[i] = d.c.U16()
	}
	d.log.Debug("character", "name", ch.Name, "size", size)
	return ch
}

func (d *decoder) indexed() Chunk {
	size := d.c.U32()
	d.log.Debug("chunk", "tag", d.tag, "size", size)
	width := 2
	if d.tag == CHWP {
		width = 4
	}
	x := &Indexed{tag: d.tag}
	d.loop(func(index uint16) {
		x.Entries = append(x.Entries, IndexedEntry{Index: index, Data: d.c.Bytes(width)})
	})
	return x
}

func (d *decoder) end() Chunk {
	d.log.Debug("endOfFile")
	return &End{}
}
