// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package fileid fingerprints archives so that a catalog can recognise them again.
package fileid

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"

	"github.com/cespare/xxhash/v2"
)

// ID = (64 bits of a file key) + (32 bits of hash).
// For a file on disk the key is the inode number,
// otherwise it is the length of the content.
type ID [12]byte

var ErrNotOS = errors.New("not an operating system file")

func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Content fingerprints the bytes themselves, for archives with no file behind them.
func Content(r io.ReaderAt, size int64) (ID, error) {
	var h xxhash.Digest
	h.Reset()
	_, err := io.Copy(&h, io.NewSectionReader(r, 0, size))
	if err != nil {
		return ID{}, err
	}
	var id ID
	binary.BigEndian.PutUint64(id[:], uint64(size))
	binary.BigEndian.PutUint32(id[8:], uint32(h.Sum64()))
	return id, nil
}
