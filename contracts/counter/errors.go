// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package counter

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrOverflow     = errors.New("count overflow")
)
