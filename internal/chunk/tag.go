// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package chunk

import (
	"fmt"
	"strings"
)

// A Tag is the big-endian four character code in front of every chunk.
type Tag uint32

const (
	VERS Tag = 'V'<<24 | 'E'<<16 | 'R'<<8 | 'S'
	STUP Tag = 'S'<<24 | 'T'<<16 | 'U'<<8 | 'P'
	SNDS Tag = 'S'<<24 | 'N'<<16 | 'D'<<8 | 'S'
	TILE Tag = 'T'<<24 | 'I'<<16 | 'L'<<8 | 'E'
	ZONE Tag = 'Z'<<24 | 'O'<<16 | 'N'<<8 | 'E'
	IZON Tag = 'I'<<24 | 'Z'<<16 | 'O'<<8 | 'N'
	IZAX Tag = 'I'<<24 | 'Z'<<16 | 'A'<<8 | 'X'
	IZX2 Tag = 'I'<<24 | 'Z'<<16 | 'X'<<8 | '2'
	IZX3 Tag = 'I'<<24 | 'Z'<<16 | 'X'<<8 | '3'
	IZX4 Tag = 'I'<<24 | 'Z'<<16 | 'X'<<8 | '4'
	IACT Tag = 'I'<<24 | 'A'<<16 | 'C'<<8 | 'T'
	PUZ2 Tag = 'P'<<24 | 'U'<<16 | 'Z'<<8 | '2'
	IPUZ Tag = 'I'<<24 | 'P'<<16 | 'U'<<8 | 'Z'
	CHAR Tag = 'C'<<24 | 'H'<<16 | 'A'<<8 | 'R'
	ICHA Tag = 'I'<<24 | 'C'<<16 | 'H'<<8 | 'A'
	CHWP Tag = 'C'<<24 | 'H'<<16 | 'W'<<8 | 'P'
	CAUX Tag = 'C'<<24 | 'A'<<16 | 'U'<<8 | 'X'
	ZAUX Tag = 'Z'<<24 | 'A'<<16 | 'U'<<8 | 'X'
	ZAX2 Tag = 'Z'<<24 | 'A'<<16 | 'X'<<8 | '2'
	ZAX3 Tag = 'Z'<<24 | 'A'<<16 | 'X'<<8 | '3'
	ZAX4 Tag = 'Z'<<24 | 'A'<<16 | 'X'<<8 | '4'
	HTSP Tag = 'H'<<24 | 'T'<<16 | 'S'<<8 | 'P'
	ACTN Tag = 'A'<<24 | 'C'<<16 | 'T'<<8 | 'N'
	ANAM Tag = 'A'<<24 | 'N'<<16 | 'A'<<8 | 'M'
	PNAM Tag = 'P'<<24 | 'N'<<16 | 'A'<<8 | 'M'
	TNAM Tag = 'T'<<24 | 'N'<<16 | 'A'<<8 | 'M'
	ZNAM Tag = 'Z'<<24 | 'N'<<16 | 'A'<<8 | 'M'
	ENDF Tag = 'E'<<24 | 'N'<<16 | 'D'<<8 | 'F'
)

func (t Tag) String() string {
	b := [4]byte{byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t)}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08x", uint32(t))
		}
	}
	return string(b[:])
}

// Variant selects between the two dialects of the archive format.
// It never changes while an archive is being read.
type Variant uint8

const (
	Indy Variant = iota // DESKTOP.DAW
	Yoda                // YODESK.DTA
)

// NameWidth is the size of the fixed name fields in TNAM, ZNAM and ANAM.
func (v Variant) NameWidth() int {
	if v == Yoda {
		return 24
	}
	return 16
}

func (v Variant) String() string {
	switch v {
	case Indy:
		return "indy"
	case Yoda:
		return "yoda"
	}
	return fmt.Sprintf("Variant(%d)", uint8(v))
}

func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(s) {
	case "indy", "daw":
		return Indy, nil
	case "yoda", "dta":
		return Yoda, nil
	}
	return 0, fmt.Errorf("unknown game variant %q", s)
}
