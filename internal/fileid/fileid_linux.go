// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package fileid

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sys/unix"
)

// Of identifies an open file by its inode, birth time, modification time and name,
// so that an archive replaced on disk gets a new ID.
func Of(f *os.File) (ID, error) {
	conn, err := f.SyscallConn()
	if err != nil {
		return ID{}, err
	}

	var stat unix.Statx_t
	var inerr error
	err = conn.Control(func(fd uintptr) {
		inerr = unix.Statx(int(fd), "",
			unix.AT_EMPTY_PATH|unix.AT_STATX_FORCE_SYNC,
			unix.STATX_BTIME|unix.STATX_MTIME|unix.STATX_INO|unix.STATX_SIZE,
			&stat)
	})
	if err != nil {
		return ID{}, err
	} else if inerr != nil {
		return ID{}, inerr
	}

	var id ID
	binary.BigEndian.PutUint64(id[:], stat.Ino)
	var h xxhash.Digest
	h.Reset()
	binary.Write(&h, binary.BigEndian, stat.Btime.Sec)
	binary.Write(&h, binary.BigEndian, stat.Btime.Nsec)
	binary.Write(&h, binary.BigEndian, stat.Mtime.Sec)
	binary.Write(&h, binary.BigEndian, stat.Mtime.Nsec)
	binary.Write(&h, binary.BigEndian, stat.Size)
	h.WriteString(filepath.Base(f.Name()))
	binary.BigEndian.PutUint32(id[8:], uint32(h.Sum64()))
	return id, nil
}
