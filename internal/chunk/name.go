// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package chunk

import (
	"bytes"

	"golang.org/x/text/encoding/charmap"
)

// The games shipped for Windows 3.1, so their text is in the ANSI code page.
var ansi = charmap.Windows1252

// fixedName reads a NUL-padded name field of the given width.
func (d *decoder) fixedName(width int) string {
	return decodeName(cutNUL(d.c.Bytes(width)))
}

func cutNUL(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return b[:i]
	}
	return b
}

func decodeName(b []byte) string {
	s, err := ansi.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}
