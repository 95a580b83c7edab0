// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package hotspot reads the interactive regions attached to a zone.
package hotspot

import (
	"fmt"

	"github.com/elliotnunn/deskadv/internal/cursor"
)

type Hotspot struct {
	Type       uint32
	Arg1, Arg2 uint16
	X, Y       uint16
}

// Read decodes a hotspot in its stored field order: type, arg1, arg2, x, y.
func Read(c *cursor.Cursor) Hotspot {
	var h Hotspot
	h.Type = c.U32()
	h.Arg1 = c.U16()
	h.Arg2 = c.U16()
	h.X = c.U16()
	h.Y = c.U16()
	return h
}

func (h Hotspot) String() string {
	return fmt.Sprintf("type %#x at (%d,%d) args %04x %04x", h.Type, h.X, h.Y, h.Arg1, h.Arg2)
}

// Older readers of the format grouped the first sixteen type codes into classes.
// That table was written against a different field order, (type, x, y, arg1, arg2),
// so whether the classes still mean anything is unknown.
var legacyClasses = [16]uint8{0, 0, 0, 1, 1, 2, 3, 3, 3, 4, 7, 7, 5, 7, 6, 6}

// LegacyClass reports the historical class of the hotspot type, if it has one.
func (h Hotspot) LegacyClass() (uint8, bool) {
	if h.Type >= uint32(len(legacyClasses)) {
		return 0, false
	}
	return legacyClasses[h.Type], true
}
