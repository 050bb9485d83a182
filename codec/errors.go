// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "errors"

var (
	ErrNoVariant       = errors.New("message has no variant")
	ErrTooManyVariants = errors.New("message has more than one variant")
	ErrUnknownVariant  = errors.New("unknown message variant")
	ErrTrailingData    = errors.New("trailing data after message")
	ErrEmptyPayload    = errors.New("empty payload")
)
