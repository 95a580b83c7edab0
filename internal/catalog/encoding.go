// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package catalog

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	"github.com/elliotnunn/deskadv/resource"
)

var ErrCorrupt = errors.New("corrupt catalog value")

func (m Meta) marshal() []byte {
	b := []byte{byte(m.Variant)}
	b = binary.LittleEndian.AppendUint32(b, m.Version)
	b = binary.LittleEndian.AppendUint32(b, uint32(m.Zones))
	b = binary.LittleEndian.AppendUint32(b, uint32(m.Tiles))
	b = binary.LittleEndian.AppendUint32(b, uint32(m.Sounds))
	return b
}

func (m *Meta) unmarshal(b []byte) error {
	if len(b) != 17 {
		return ErrCorrupt
	}
	m.Variant = resource.Variant(b[0])
	m.Version = binary.LittleEndian.Uint32(b[1:])
	m.Zones = int(binary.LittleEndian.Uint32(b[5:]))
	m.Tiles = int(binary.LittleEndian.Uint32(b[9:]))
	m.Sounds = int(binary.LittleEndian.Uint32(b[13:]))
	return nil
}

// A zone is stored as width, height, type, planet, then the layers one after the other.
func marshalZone(z *resource.Zone) []byte {
	b := binary.LittleEndian.AppendUint16(nil, z.Width)
	b = binary.LittleEndian.AppendUint16(b, z.Height)
	b = binary.LittleEndian.AppendUint32(b, z.Type)
	b = binary.LittleEndian.AppendUint16(b, z.Planet)
	for _, l := range z.Layers {
		for _, t := range l {
			b = binary.LittleEndian.AppendUint16(b, t)
		}
	}
	return b
}

func unmarshalZone(b []byte) (resource.Zone, error) {
	var z resource.Zone
	if len(b) < 10 {
		return z, ErrCorrupt
	}
	z.Width = binary.LittleEndian.Uint16(b)
	z.Height = binary.LittleEndian.Uint16(b[2:])
	z.Type = binary.LittleEndian.Uint32(b[4:])
	z.Planet = binary.LittleEndian.Uint16(b[8:])
	b = b[10:]

	n := int(z.Width) * int(z.Height)
	if len(b) != 2*n*len(z.Layers) {
		return z, ErrCorrupt
	}
	for l := range z.Layers {
		z.Layers[l] = make([]uint16, n)
		for i := range n {
			z.Layers[l][i] = binary.LittleEndian.Uint16(b)
			b = b[2:]
		}
	}
	return z, nil
}

// pebbleLogger sends the database's own messages to slog.
type pebbleLogger struct{ log *slog.Logger }

func (l pebbleLogger) Infof(format string, args ...any) {
	l.log.Debug("pebble", "msg", fmt.Sprintf(format, args...))
}

func (l pebbleLogger) Errorf(format string, args ...any) {
	l.log.Error("pebble", "msg", fmt.Sprintf(format, args...))
}

func (l pebbleLogger) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.log.Error("pebbleFatal", "msg", msg)
	panic(msg)
}
