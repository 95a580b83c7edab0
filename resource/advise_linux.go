// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package resource

import (
	"os"

	"golang.org/x/sys/unix"
)

const (
	adviceSequential = unix.FADV_SEQUENTIAL
	adviceRandom     = unix.FADV_RANDOM
)

// advise tells the kernel how the archive is about to be read.
// Decoding walks the file once, then tiles are fetched in no particular order.
func advise(f *os.File, advice int) {
	conn, err := f.SyscallConn()
	if err != nil {
		return
	}
	conn.Control(func(fd uintptr) {
		unix.Fadvise(int(fd), 0, 0, advice)
	})
}
