// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import "errors"

var (
	ErrDuplicateCode    = errors.New("code already registered")
	ErrUnknownCode      = errors.New("unknown code")
	ErrUnknownContract  = errors.New("unknown contract")
	ErrInvalidSender    = errors.New("invalid sender")
	ErrMessageTooLarge  = errors.New("message too large")
	ErrLabelTooLong     = errors.New("label too long")
	ErrMaxDepth         = errors.New("forwarded call depth exceeded")
	ErrForwardingFailed = errors.New("forwarded message failed")
)
