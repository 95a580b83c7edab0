// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package chunk_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elliotnunn/deskadv/internal/archivetest"
	"github.com/elliotnunn/deskadv/internal/chunk"
	"github.com/elliotnunn/deskadv/internal/cursor"
	"github.com/elliotnunn/deskadv/internal/hotspot"
	"github.com/elliotnunn/deskadv/internal/script"
)

func decode(t *testing.T, v chunk.Variant, data []byte, zones int) (chunk.Chunk, *cursor.Cursor, error) {
	t.Helper()
	c := cursor.New(bytes.NewReader(data), int64(len(data)), 0)
	ch, err := chunk.Decode(c, chunk.State{Variant: v, Zones: zones})
	return ch, c, err
}

func requireFormatError(t *testing.T, err error) *chunk.FormatError {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, chunk.ErrFormat)
	var fe *chunk.FormatError
	require.ErrorAs(t, err, &fe)
	return fe
}

func TestTagString(t *testing.T) {
	assert.Equal(t, "IZON", chunk.IZON.String())
	assert.Equal(t, "ZAX4", chunk.ZAX4.String())
	assert.Equal(t, "0x00000001", chunk.Tag(1).String())
}

func TestParseVariant(t *testing.T) {
	v, err := chunk.ParseVariant("Yoda")
	require.NoError(t, err)
	assert.Equal(t, chunk.Yoda, v)
	v, err = chunk.ParseVariant("daw")
	require.NoError(t, err)
	assert.Equal(t, chunk.Indy, v)
	_, err = chunk.ParseVariant("zelda")
	assert.Error(t, err)
}

func TestZoneRoundTrip(t *testing.T) {
	for _, v := range []chunk.Variant{chunk.Indy, chunk.Yoda} {
		t.Run(v.String(), func(t *testing.T) {
			want := archivetest.Filled(9, 18, [3]uint16{0x100, 0x200, 0x300})
			want.Type = 3
			data := archivetest.New(v).Zones(want).Bytes()

			ch, c, err := decode(t, v, data, 0)
			require.NoError(t, err)
			zones, ok := ch.(*chunk.Zones)
			require.True(t, ok, "got %T", ch)
			require.Len(t, zones.Bodies, 1)

			got := zones.Bodies[0].Zone
			assert.Equal(t, uint16(9), got.Width)
			assert.Equal(t, uint16(18), got.Height)
			assert.Equal(t, uint32(3), got.Type)
			for l := range got.Layers {
				assert.Len(t, got.Layers[l], 9*18)
				assert.Equal(t, want.Layers[l], got.Layers[l], "layer %d", l)
			}
			assert.Equal(t, uint16(0x200+9*2+4), got.Tile(1, 4, 2))
			assert.Equal(t, int64(len(data)), c.Pos())
		})
	}
}

func TestZoneBadWidth(t *testing.T) {
	z := archivetest.Filled(9, 9, [3]uint16{})
	z.Width = 7
	z.Layers = [3][]uint16{make([]uint16, 63), make([]uint16, 63), make([]uint16, 63)}
	data := archivetest.New(chunk.Indy).Zones(z).Bytes()

	ch, _, err := decode(t, chunk.Indy, data, 0)
	assert.Nil(t, ch)
	fe := requireFormatError(t, err)
	assert.Equal(t, chunk.IZON, fe.Tag)
}

func TestZoneMisnumbered(t *testing.T) {
	z := archivetest.Filled(9, 9, [3]uint16{})
	b := archivetest.New(chunk.Yoda)
	b.Tag(chunk.ZONE).U16(1).U16(0).U32(0).U16(5).ZoneBody(z, nil, nil)

	_, _, err := decode(t, chunk.Yoda, b.Bytes(), 0)
	requireFormatError(t, err)
}

func TestYodaZoneExtras(t *testing.T) {
	z := archivetest.Filled(18, 18, [3]uint16{1, 2, 3})
	z.Planet = 2
	spots := []hotspot.Hotspot{{Type: 9, Arg1: 1, Arg2: 0x457, X: 3, Y: 4}}
	acts := []chunk.Action{{
		Conditions:   []script.Record{{Opcode: uint16(script.ZoneEntered)}},
		Instructions: []script.Record{{Opcode: uint16(script.SpeakHero), Text: []byte("Hello")}},
	}}
	b := archivetest.New(chunk.Yoda)
	b.Tag(chunk.ZONE).U16(1).U16(2).U32(0).U16(0).ZoneBody(z, spots, acts)
	data := b.Bytes()

	ch, c, err := decode(t, chunk.Yoda, data, 0)
	require.NoError(t, err)
	body := ch.(*chunk.Zones).Bodies[0]
	assert.Equal(t, uint16(2), body.Zone.Planet)
	assert.Equal(t, spots, body.Hotspots)
	require.Len(t, body.Actions, 1)
	assert.Equal(t, acts[0].Conditions, body.Actions[0].Conditions)
	assert.Equal(t, []byte("Hello"), body.Actions[0].Instructions[0].Text)
	require.NotNil(t, body.Aux)
	assert.Equal(t, chunk.IZX3, body.Aux3.Tag())
	assert.Equal(t, int64(len(data)), c.Pos())
}

func TestYodaZoneMissingAux(t *testing.T) {
	z := archivetest.Filled(9, 9, [3]uint16{})
	b := archivetest.New(chunk.Yoda)
	b.Tag(chunk.ZONE).U16(1).U16(0).U32(0).U16(0)
	b.Tag(chunk.IZON).U32(0).U16(9, 9).U32(0).U16(0xffff, 0)
	for i := range 81 {
		b.U16(z.Layers[0][i], z.Layers[1][i], z.Layers[2][i])
	}
	b.U16(0) // hotspots
	b.Tag(chunk.IZX2).U32(10).U16(0)
	b.Raw(make([]byte, 64))

	_, _, err := decode(t, chunk.Yoda, b.Bytes(), 0)
	fe := requireFormatError(t, err)
	assert.Contains(t, fe.Msg, "expected IZAX")
}

func TestActionOpcodeOutOfRange(t *testing.T) {
	for _, a := range []chunk.Action{
		{Conditions: []script.Record{{Opcode: 0x30}}},
		{Instructions: []script.Record{{Opcode: script.OpcodeLimit}}},
	} {
		b := archivetest.New(chunk.Yoda)
		b.Tag(chunk.ACTN).U32(0).U16(0, 1).Action(a).U16(0xffff)
		_, _, err := decode(t, chunk.Yoda, b.Bytes(), 0)
		fe := requireFormatError(t, err)
		assert.Equal(t, chunk.IACT, fe.Tag)
	}
}

func TestActions(t *testing.T) {
	a := chunk.Action{
		Size:       42,
		Conditions: []script.Record{{Opcode: 0x25, Args: [5]uint16{1, 2, 3, 4, 5}}},
	}
	b := archivetest.New(chunk.Indy)
	b.Tag(chunk.ACTN).U32(0).U16(7, 1).Action(a).U16(0xffff)

	ch, c, err := decode(t, chunk.Indy, b.Bytes(), 0)
	require.NoError(t, err)
	acts := ch.(*chunk.Actions)
	require.Len(t, acts.Zones, 1)
	assert.Equal(t, uint16(7), acts.Zones[0].Zone)
	assert.Equal(t, []chunk.Action{a}, acts.Zones[0].Actions)
	assert.Equal(t, int64(b.Len()), c.Pos())
}

func TestNamesSentinel(t *testing.T) {
	b := archivetest.New(chunk.Yoda)
	b.Tag(chunk.TNAM).U32(0)
	b.U16(4).Name("Bench", 24)
	b.U16(0x30).Name("Blaster\x00junk", 24)
	b.U16(0xffff)
	b.U16(0x1234) // beyond the table

	ch, c, err := decode(t, chunk.Yoda, b.Bytes(), 0)
	require.NoError(t, err)
	names := ch.(*chunk.Names)
	assert.Equal(t, chunk.TNAM, names.Tag())
	assert.Equal(t, []chunk.Name{{ID: 4, Name: "Bench"}, {ID: 0x30, Name: "Blaster"}}, names.Entries)
	assert.Equal(t, int64(b.Len()-2), c.Pos())
}

func TestNameWidthByVariant(t *testing.T) {
	entry := chunk.Name{ID: 0x1f, Name: "Whip"}
	var got []string
	for _, v := range []chunk.Variant{chunk.Indy, chunk.Yoda} {
		data := archivetest.New(v).Names(chunk.ZNAM, entry).Bytes()
		ch, c, err := decode(t, v, data, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(4+4+2+v.NameWidth()+2), c.Pos())
		got = append(got, ch.(*chunk.Names).Entries[0].Name)
	}
	assert.Equal(t, []string{"Whip", "Whip"}, got)
	assert.Equal(t, 16, chunk.Indy.NameWidth())
	assert.Equal(t, 24, chunk.Yoda.NameWidth())
}

func TestNameCodePage(t *testing.T) {
	b := archivetest.New(chunk.Indy)
	b.Tag(chunk.TNAM).U32(0).U16(1).Name("Caf\xe9", 16).U16(0xffff)
	ch, _, err := decode(t, chunk.Indy, b.Bytes(), 0)
	require.NoError(t, err)
	assert.Equal(t, "Café", ch.(*chunk.Names).Entries[0].Name)
}

func TestActionNames(t *testing.T) {
	b := archivetest.New(chunk.Indy)
	b.Tag(chunk.ANAM).U32(0)
	b.U16(3).U16(0).Name("Open door", 16).U16(1).Name("Talk", 16).U16(0xffff)
	b.U16(5).U16(0xffff)
	b.U16(0xffff)

	ch, c, err := decode(t, chunk.Indy, b.Bytes(), 0)
	require.NoError(t, err)
	a := ch.(*chunk.ActionNames)
	require.Len(t, a.Zones, 2)
	assert.Equal(t, uint16(3), a.Zones[0].Zone)
	assert.Equal(t, []chunk.Name{{ID: 0, Name: "Open door"}, {ID: 1, Name: "Talk"}}, a.Zones[0].Names)
	assert.Empty(t, a.Zones[1].Names)
	assert.Equal(t, int64(b.Len()), c.Pos())
}

func TestSounds(t *testing.T) {
	data := archivetest.New(chunk.Indy).Sounds("WHIP.WAV", "SNAKE.WAV").Bytes()
	ch, c, err := decode(t, chunk.Indy, data, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"WHIP.WAV", "SNAKE.WAV"}, ch.(*chunk.Sounds).Names)
	assert.Equal(t, int64(len(data)), c.Pos())
}

func TestSoundsOverrun(t *testing.T) {
	b := archivetest.New(chunk.Indy)
	b.Tag(chunk.SNDS).U32(4).U16(0xffff).U16(2).Raw([]byte("A\x00"))
	_, _, err := decode(t, chunk.Indy, b.Bytes(), 0)
	requireFormatError(t, err)
}

func TestTiles(t *testing.T) {
	bitmaps := [][]byte{bytes.Repeat([]byte{1}, 1024), bytes.Repeat([]byte{2}, 1024)}
	b := archivetest.New(chunk.Indy).Version(0x200).Tiles([]uint32{0x10, 0x20}, bitmaps)
	data := b.Bytes()

	ch, c, err := decode(t, chunk.Indy, data, 0)
	require.NoError(t, err)
	assert.Equal(t, &chunk.Version{Number: 0x200}, ch)

	ch, err = chunk.Decode(c, chunk.State{})
	require.NoError(t, err)
	tiles := ch.(*chunk.Tiles)
	assert.Equal(t, uint32(2), tiles.Count)
	assert.Equal(t, int64(16), tiles.Offset)
	assert.Equal(t, int64(len(data)), c.Pos())
}

func TestTilesBadSize(t *testing.T) {
	b := archivetest.New(chunk.Indy)
	b.Tag(chunk.TILE).U32(chunk.TileStride + 1).Raw(make([]byte, chunk.TileStride+1))
	_, _, err := decode(t, chunk.Indy, b.Bytes(), 0)
	requireFormatError(t, err)
}

func TestSetup(t *testing.T) {
	data := archivetest.New(chunk.Indy).Setup(make([]byte, chunk.SetupSize)).End().Bytes()
	ch, c, err := decode(t, chunk.Indy, data, 0)
	require.NoError(t, err)
	assert.Equal(t, &chunk.Setup{Offset: 8, Size: chunk.SetupSize}, ch)
	ch, err = chunk.Decode(c, chunk.State{})
	require.NoError(t, err)
	assert.Equal(t, chunk.ENDF, ch.Tag())

	bad := archivetest.New(chunk.Indy).Setup(make([]byte, 100)).Bytes()
	_, _, err = decode(t, chunk.Indy, bad, 0)
	requireFormatError(t, err)
}

func TestPuzzles(t *testing.T) {
	for _, v := range []chunk.Variant{chunk.Indy, chunk.Yoda} {
		b := archivetest.New(v)
		b.Tag(chunk.PUZ2).U32(0).U16(9)
		b.Tag(chunk.IPUZ).U32(0).U32(1, 2)
		if v == chunk.Yoda {
			b.U32(3)
		}
		b.U16(4)
		for _, s := range []string{"Find the idol", "", "", "", "Thanks!"} {
			b.U16(uint16(len(s))).Raw([]byte(s))
		}
		b.U16(5)
		if v == chunk.Yoda {
			b.U16(6)
		}
		b.U16(0xffff)

		ch, c, err := decode(t, v, b.Bytes(), 0)
		require.NoError(t, err, v)
		p := ch.(*chunk.Puzzles).Puzzles
		require.Len(t, p, 1)
		assert.Equal(t, uint16(9), p[0].ID)
		assert.Equal(t, "Find the idol", p[0].Strings[0])
		assert.Equal(t, "Thanks!", p[0].Strings[4])
		assert.Equal(t, uint16(5), p[0].Trailer[0])
		assert.Equal(t, int64(b.Len()), c.Pos(), v)
	}
}

func TestPuzzleNames(t *testing.T) {
	b := archivetest.New(chunk.Yoda)
	b.Tag(chunk.PNAM).U32(0).U16(2).Name("Lantern", 16).Name("Key", 16)
	ch, _, err := decode(t, chunk.Yoda, b.Bytes(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lantern", "Key"}, ch.(*chunk.PuzzleNames).Names)
}

func TestHotspots(t *testing.T) {
	h := hotspot.Hotspot{Type: 2, Arg1: 0xffff, Arg2: 12, X: 8, Y: 1}
	b := archivetest.New(chunk.Indy)
	b.Tag(chunk.HTSP).U32(0).U16(4, 1).Hotspot(h).U16(0xffff)
	ch, c, err := decode(t, chunk.Indy, b.Bytes(), 0)
	require.NoError(t, err)
	assert.Equal(t, []chunk.ZoneHotspots{{Zone: 4, Hotspots: []hotspot.Hotspot{h}}}, ch.(*chunk.Hotspots).Zones)
	assert.Equal(t, int64(b.Len()), c.Pos())
}

func TestCharacters(t *testing.T) {
	frames := make([]uint16, 24)
	for i := range frames {
		frames[i] = uint16(0x300 + i)
	}
	b := archivetest.New(chunk.Yoda)
	b.Tag(chunk.CHAR).U32(0).U16(0)
	b.Tag(chunk.ICHA).U32(uint32(len("Luke")+1+10+48)).Raw([]byte("Luke\x00")).Raw(make([]byte, 10)).U16(frames...)
	b.U16(0xffff)
	b.Tag(chunk.CHWP).U32(0).U16(0).Raw([]byte{1, 2, 3, 4}).U16(0xffff)
	b.Tag(chunk.CAUX).U32(0).U16(0).Raw([]byte{5, 6}).U16(0xffff)
	data := b.Bytes()

	ch, c, err := decode(t, chunk.Yoda, data, 0)
	require.NoError(t, err)
	chars := ch.(*chunk.Characters).Characters
	require.Len(t, chars, 1)
	assert.Equal(t, "Luke", chars[0].Name)
	assert.Equal(t, uint16(0x300), chars[0].Frames[0])
	assert.Equal(t, uint16(0x317), chars[0].Frames[23])

	ch, err = chunk.Decode(c, chunk.State{Variant: chunk.Yoda})
	require.NoError(t, err)
	assert.Equal(t, chunk.CHWP, ch.Tag())
	assert.Equal(t, []byte{1, 2, 3, 4}, ch.(*chunk.Indexed).Entries[0].Data)

	ch, err = chunk.Decode(c, chunk.State{Variant: chunk.Yoda})
	require.NoError(t, err)
	assert.Equal(t, chunk.CAUX, ch.Tag())
	assert.Equal(t, []byte{5, 6}, ch.(*chunk.Indexed).Entries[0].Data)
	assert.Equal(t, int64(len(data)), c.Pos())
}

func TestCharacterTooSmall(t *testing.T) {
	b := archivetest.New(chunk.Yoda)
	b.Tag(chunk.CHAR).U32(0).U16(0)
	b.Tag(chunk.ICHA).U32(10).Raw([]byte("Luke\x00")).Raw(make([]byte, 64))
	_, _, err := decode(t, chunk.Yoda, b.Bytes(), 0)
	fe := requireFormatError(t, err)
	assert.Equal(t, chunk.ICHA, fe.Tag)
}

func TestZoneTable(t *testing.T) {
	b := archivetest.New(chunk.Indy)
	b.Tag(chunk.ZAUX).U32(0)
	b.Tag(chunk.IZAX).U32(20).Raw(make([]byte, 12))
	b.Tag(chunk.IZAX).U32(8)
	b.Tag(chunk.ZAX4).U32(0)
	b.Tag(chunk.IZX4).U32(10).U16(1)
	b.Tag(chunk.IZX4).U32(10).U16(0)
	data := b.Bytes()

	ch, c, err := decode(t, chunk.Indy, data, 2)
	require.NoError(t, err)
	table := ch.(*chunk.ZoneTable)
	assert.Equal(t, chunk.ZAUX, table.Tag())
	assert.Len(t, table.Entries, 2)

	ch, err = chunk.Decode(c, chunk.State{Variant: chunk.Indy, Zones: 2})
	require.NoError(t, err)
	assert.Equal(t, &chunk.ZoneFlag{Size: 10, Value: 1}, ch.(*chunk.ZoneTable).Entries[0])
	assert.Equal(t, int64(len(data)), c.Pos())
}

func TestZoneTableWrongEntry(t *testing.T) {
	b := archivetest.New(chunk.Indy)
	b.Tag(chunk.ZAX2).U32(0)
	b.Tag(chunk.IZX3).U32(10).U16(0)
	_, _, err := decode(t, chunk.Indy, b.Bytes(), 1)
	requireFormatError(t, err)
}

func TestUnknownTag(t *testing.T) {
	data := archivetest.New(chunk.Indy).Raw([]byte("WHAT")).U32(0).Bytes()
	_, _, err := decode(t, chunk.Indy, data, 0)
	fe := requireFormatError(t, err)
	assert.Equal(t, int64(0), fe.Off)
	assert.Contains(t, fe.Error(), "unknown tag WHAT")
}

func TestTruncated(t *testing.T) {
	data := archivetest.New(chunk.Indy).Zones(archivetest.Filled(9, 9, [3]uint16{})).Bytes()
	_, _, err := decode(t, chunk.Indy, data[:len(data)-1], 0)
	requireFormatError(t, err)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	data := archivetest.New(chunk.Indy).Zones(archivetest.Filled(9, 9, [3]uint16{})).Bytes()
	c := cursor.New(bytes.NewReader(data), int64(len(data)), 0)
	_, err := chunk.Decode(c, chunk.State{Ctx: ctx})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, chunk.ErrFormat)
}

func TestNestedTagAtTopLevel(t *testing.T) {
	for _, tag := range []chunk.Tag{
		chunk.IZON, chunk.IZAX, chunk.IZX2, chunk.IZX3, chunk.IZX4,
		chunk.IACT, chunk.IPUZ, chunk.ICHA,
	} {
		t.Run(tag.String(), func(t *testing.T) {
			data := archivetest.New(chunk.Yoda).Tag(tag).U32(10).U16(0).Bytes()
			ch, _, err := decode(t, chunk.Yoda, data, 0)
			assert.Nil(t, ch)
			fe := requireFormatError(t, err)
			assert.Equal(t, int64(0), fe.Off)
			assert.Contains(t, fe.Msg, "outside its parent")
		})
	}
}
