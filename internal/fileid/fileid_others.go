// Copyright (c) Elliot Nunn
// Licensed under the MIT license

//go:build !linux

package fileid

import "os"

// Of falls back to hashing the whole file.
func Of(f *os.File) (ID, error) {
	inf, err := f.Stat()
	if err != nil {
		return ID{}, err
	}
	if !inf.Mode().IsRegular() {
		return ID{}, ErrNotOS
	}
	return Content(f, inf.Size())
}
