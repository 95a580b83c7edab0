// Copyright (c) Elliot Nunn
// Licensed under the MIT license

//go:build !linux

package resource

import "os"

const (
	adviceSequential = iota
	adviceRandom
)

func advise(f *os.File, advice int) {}
