// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import "errors"

var (
	// ErrStore marks any failure to load, decode, encode or save a
	// persisted record. It is never retried.
	ErrStore    = errors.New("store error")
	ErrReadOnly = errors.New("state is read only")

	ErrInvalidPermission = errors.New("invalid permission")
)
