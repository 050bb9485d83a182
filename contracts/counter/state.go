// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package counter

import (
	"context"

	"github.com/ava-labs/hypercw/state"
)

// State is the single record a counter instance keeps. Owner is fixed at
// instantiation and PollCount is carried but never changed.
type State struct {
	Count     int32
	Owner     string
	PollCount int32
}

var stateItem = state.NewItem[State]("state")

func LoadState(ctx context.Context, im state.Immutable) (State, error) {
	return stateItem.Load(ctx, im)
}
