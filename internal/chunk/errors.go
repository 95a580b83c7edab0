// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package chunk

import (
	"errors"
	"fmt"
)

var ErrFormat = errors.New("not a valid resource archive")

// A FormatError means the cursor no longer agrees with the archive layout,
// so nothing after Off can be trusted.
type FormatError struct {
	Off int64
	Tag Tag // innermost chunk being decoded, zero before the first tag
	Msg string
	Err error
}

func (e *FormatError) Error() string {
	where := fmt.Sprintf("offset %#x", e.Off)
	if e.Tag != 0 {
		where = e.Tag.String() + " chunk, " + where
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", where, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", where, e.Msg)
}

func (e *FormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFormat}
	}
	return []error{ErrFormat, e.Err}
}

// interrupted carries a cancelled context out of a deep decoder.
type interrupted struct{ err error }
