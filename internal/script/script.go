// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package script reads the condition and instruction records of an IACT action.
package script

import (
	"fmt"

	"github.com/elliotnunn/deskadv/internal/cursor"
)

// OpcodeLimit bounds every condition and instruction opcode.
const OpcodeLimit = 0x26

// A Record is one condition or instruction.
// Text is kept exactly as stored, including any trailing NULs.
type Record struct {
	Opcode uint16
	Args   [5]uint16
	Text   []byte
}

// Read decodes a record at the cursor: opcode, five arguments,
// then a length-prefixed text that may be empty.
func Read(c *cursor.Cursor) Record {
	var r Record
	r.Opcode = c.U16()
	for i := range r.Args {
		r.Args[i] = c.U16()
	}
	if n := c.U16(); n != 0 {
		r.Text = c.Bytes(int(n))
	}
	return r
}

func (r Record) Valid() bool { return r.Opcode < OpcodeLimit }

func (r Record) String() string {
	s := fmt.Sprintf("%04x(%04x, %04x, %04x, %04x, %04x)", r.Opcode,
		r.Args[0], r.Args[1], r.Args[2], r.Args[3], r.Args[4])
	if len(r.Text) > 0 {
		s += fmt.Sprintf(" %q", r.Text)
	}
	return s
}

// Condition is the opcode of a record found in the condition list.
type Condition uint16

const (
	ZoneNotInitialized Condition = 0x00
	ZoneEntered        Condition = 0x01
	Bump               Condition = 0x02
	PlaceItem          Condition = 0x03
	StandingOn         Condition = 0x04
	CounterIs          Condition = 0x05
	RandomIs           Condition = 0x06
	RandomIsNot        Condition = 0x07 // guessed
	TileIs             Condition = 0x08
	EnterByPlane       Condition = 0x09
	TileAtIs           Condition = 0x0a
	TileAt             Condition = 0x0b
	HasItem            Condition = 0x0d
	RequiredItem       Condition = 0x0e
	Ending             Condition = 0x0f
	HealthIsLessThan   Condition = 0x13
	HealthIsMoreThan   Condition = 0x14
	PlaceItemIsNot     Condition = 0x17
	HeroIsAt           Condition = 0x18
	GamesWonIsExactly  Condition = 0x1c
	CounterIsNot       Condition = 0x1f
	GamesWonBiggerThan Condition = 0x23
)

var conditionNames = map[Condition]string{
	ZoneNotInitialized: "ZoneNotInitialized",
	ZoneEntered:        "ZoneEntered",
	Bump:               "Bump",
	PlaceItem:          "PlaceItem",
	StandingOn:         "StandingOn",
	CounterIs:          "CounterIs",
	RandomIs:           "RandomIs",
	RandomIsNot:        "RandomIsNot",
	TileIs:             "TileIs",
	EnterByPlane:       "EnterByPlane",
	TileAtIs:           "TileAtIs",
	TileAt:             "TileAt",
	HasItem:            "HasItem",
	RequiredItem:       "RequiredItem",
	Ending:             "Ending",
	HealthIsLessThan:   "HealthIsLessThan",
	HealthIsMoreThan:   "HealthIsMoreThan",
	PlaceItemIsNot:     "PlaceItemIsNot",
	HeroIsAt:           "HeroIsAt",
	GamesWonIsExactly:  "GamesWonIsExactly",
	CounterIsNot:       "CounterIsNot",
	GamesWonBiggerThan: "GamesWonBiggerThan",
}

func (c Condition) String() string {
	if s, ok := conditionNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Condition(0x%02x)", uint16(c))
}

// Instruction is the opcode of a record found in the instruction list.
type Instruction uint16

const (
	PlaceTile           Instruction = 0x00
	RemoveTile          Instruction = 0x01
	MoveTile            Instruction = 0x02
	DrawTile            Instruction = 0x03
	SpeakHero           Instruction = 0x04
	SpeakNPC            Instruction = 0x05
	SetTileNeedsDisplay Instruction = 0x06
	SetRectNeedsDisplay Instruction = 0x07
	Wait                Instruction = 0x08
	Redraw              Instruction = 0x09
	PlaySound           Instruction = 0x0a
	RollDice            Instruction = 0x0c
	SetCounter          Instruction = 0x0d
	HideHero            Instruction = 0x10
	ShowHero            Instruction = 0x11
	SetHero             Instruction = 0x12
	DisableAction       Instruction = 0x14
	DisableHotspot      Instruction = 0x15
	EnableHotspot       Instruction = 0x16
	DropItem            Instruction = 0x1b
	AddItem             Instruction = 0x1c
	RemoveItem          Instruction = 0x1d
	ChangeZone          Instruction = 0x21
	SetRandom           Instruction = 0x24
	AddHealth           Instruction = 0x25
)

var instructionNames = map[Instruction]string{
	PlaceTile:           "PlaceTile",
	RemoveTile:          "RemoveTile",
	MoveTile:            "MoveTile",
	DrawTile:            "DrawTile",
	SpeakHero:           "SpeakHero",
	SpeakNPC:            "SpeakNPC",
	SetTileNeedsDisplay: "SetTileNeedsDisplay",
	SetRectNeedsDisplay: "SetRectNeedsDisplay",
	Wait:                "Wait",
	Redraw:              "Redraw",
	PlaySound:           "PlaySound",
	RollDice:            "RollDice",
	SetCounter:          "SetCounter",
	HideHero:            "HideHero",
	ShowHero:            "ShowHero",
	SetHero:             "SetHero",
	DisableAction:       "DisableAction",
	DisableHotspot:      "DisableHotspot",
	EnableHotspot:       "EnableHotspot",
	DropItem:            "DropItem",
	AddItem:             "AddItem",
	RemoveItem:          "RemoveItem",
	ChangeZone:          "ChangeZone",
	SetRandom:           "SetRandom",
	AddHealth:           "AddHealth",
}

func (i Instruction) String() string {
	if s, ok := instructionNames[i]; ok {
		return s
	}
	return fmt.Sprintf("Instruction(0x%02x)", uint16(i))
}
