// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

import "github.com/ava-labs/avalanchego/utils/units"

const (
	Name    = "hypercw"
	Version = "v0.1.0"

	// HRP is the bech32 human readable part of addresses derived by the host.
	HRP = "hypercw"

	// MaxMessageSize bounds any raw instantiate/execute/query payload.
	MaxMessageSize = units.MiB
	// MaxForwardDepth bounds how deep forwarded contract calls may nest.
	MaxForwardDepth = 8
	// MaxLabelLen bounds instance labels.
	MaxLabelLen = 128

	Uint64Len = 8
)
