// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package chunk decodes the tagged chunks of a DAW or DTA resource archive.
//
// The archive has no table of contents. Every chunk starts with a Tag,
// and only the Tag says how long the rest of the chunk is,
// so each decoder must consume its chunk exactly.
// Several chunks contain further tagged chunks, which are decoded recursively.
package chunk

import (
	"github.com/elliotnunn/deskadv/internal/hotspot"
	"github.com/elliotnunn/deskadv/internal/script"
)

// A Chunk is the decoded value of one tagged chunk.
// The concrete type depends on the Tag.
type Chunk interface {
	Tag() Tag
}

const (
	TileSide   = 32
	TileBitmap = TileSide * TileSide
	TileStride = 4 + TileBitmap // leading flags, then the bitmap

	SetupSize = TileSide * TileSide * 9 * 9

	sentinel = 0xffff
)

type Version struct {
	Number uint32
}

// Setup is the opaque startup screen, left on disk.
type Setup struct {
	Offset, Size int64
}

type Sounds struct {
	Names []string
}

// Tiles locates the tile records, which stay on disk.
type Tiles struct {
	Offset int64
	Count  uint32
}

type Name struct {
	ID   uint16
	Name string
}

// Names is a TNAM or ZNAM table.
type Names struct {
	tag     Tag
	Entries []Name
}

type ActionNames struct {
	Zones []ZoneActionNames
}

type ZoneActionNames struct {
	Zone  uint16
	Names []Name
}

type PuzzleNames struct {
	Names []string
}

type Puzzles struct {
	Puzzles []Puzzle
}

// Puzzle is an IPUZ record. Only the strings are understood.
type Puzzle struct {
	ID      uint16
	Size    uint32
	Header  [3]uint32 // the third is Yoda only
	Flags   uint16
	Strings [5]string
	Trailer [2]uint16 // the second is Yoda only
}

// A Zone is one screen of the game map as three parallel tile layers.
// Each layer holds Width*Height tile references in row-major order.
type Zone struct {
	Width, Height uint16
	Type          uint32
	Planet        uint16 // Yoda only
	Layers        [3][]uint16
}

// Tile returns the tile reference at x, y of a layer.
func (z *Zone) Tile(layer, x, y int) uint16 {
	return z.Layers[layer][y*int(z.Width)+x]
}

type Zones struct {
	Bodies []ZoneBody
}

// ZoneBody is an IZON chunk. Everything beside the Zone is only present in Yoda archives.
type ZoneBody struct {
	Zone     Zone
	Hotspots []hotspot.Hotspot
	Aux      *ZoneAux
	Aux2     *ZoneList
	Aux3     *ZoneList
	Aux4     *ZoneFlag
	Actions  []Action
}

// ZoneAux is an IZAX chunk. Indy archives are skipped by size.
type ZoneAux struct {
	Size    uint32
	Unknown uint16
	Records []AuxRecord
	ListA   []uint16
	ListB   []uint16
}

type AuxRecord struct {
	Fields [4]uint16
	Value  uint32
	Data   [32]byte
}

// ZoneList is an IZX2 or IZX3 chunk. Indy archives are skipped by size.
type ZoneList struct {
	tag  Tag
	Size uint32
	IDs  []uint16
}

// ZoneFlag is an IZX4 chunk.
type ZoneFlag struct {
	Size  uint32
	Value uint16
}

// ZoneTable is a ZAUX, ZAX2, ZAX3 or ZAX4 chunk holding one entry per zone.
type ZoneTable struct {
	tag     Tag
	Entries []Chunk
}

// Action is an IACT chunk.
type Action struct {
	Size         uint32
	Conditions   []script.Record
	Instructions []script.Record
}

type Hotspots struct {
	Zones []ZoneHotspots
}

type ZoneHotspots struct {
	Zone     uint16
	Hotspots []hotspot.Hotspot
}

type Actions struct {
	Zones []ZoneActions
}

type ZoneActions struct {
	Zone    uint16
	Actions []Action
}

type Characters struct {
	Characters []Character
}

// Character is an ICHA chunk. Frames are tile references, three sets of eight.
type Character struct {
	Index  uint16
	Name   string
	Frames [24]uint16
}

// Indexed is a CHWP or CAUX table of small opaque records.
type Indexed struct {
	tag     Tag
	Entries []IndexedEntry
}

type IndexedEntry struct {
	Index uint16
	Data  []byte
}

type End struct{}

func (*Version) Tag() Tag     { return VERS }
func (*Setup) Tag() Tag       { return STUP }
func (*Sounds) Tag() Tag      { return SNDS }
func (*Tiles) Tag() Tag       { return TILE }
func (n *Names) Tag() Tag     { return n.tag }
func (*ActionNames) Tag() Tag { return ANAM }
func (*PuzzleNames) Tag() Tag { return PNAM }
func (*Puzzles) Tag() Tag     { return PUZ2 }
func (*Puzzle) Tag() Tag      { return IPUZ }
func (*Zones) Tag() Tag       { return ZONE }
func (*ZoneBody) Tag() Tag    { return IZON }
func (*ZoneAux) Tag() Tag     { return IZAX }
func (l *ZoneList) Tag() Tag  { return l.tag }
func (*ZoneFlag) Tag() Tag    { return IZX4 }
func (t *ZoneTable) Tag() Tag { return t.tag }
func (*Action) Tag() Tag      { return IACT }
func (*Hotspots) Tag() Tag    { return HTSP }
func (*Actions) Tag() Tag     { return ACTN }
func (*Characters) Tag() Tag  { return CHAR }
func (*Character) Tag() Tag   { return ICHA }
func (i *Indexed) Tag() Tag   { return i.tag }
func (*End) Tag() Tag         { return ENDF }
