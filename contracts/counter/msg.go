// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package counter

type InstantiateMsg struct {
	Count int32 `json:"count"`
}

// ExecuteMsg is a tagged union. Exactly one field is set.
type ExecuteMsg struct {
	Increment *Increment `json:"increment,omitempty"`
	Decrement *Decrement `json:"decrement,omitempty"`
	Reset     *Reset     `json:"reset,omitempty"`
}

type Increment struct{}

type Decrement struct{}

type Reset struct {
	Count int32 `json:"count"`
}

type QueryMsg struct {
	GetCount *GetCount `json:"get_count,omitempty"`
}

type GetCount struct{}

type CountResponse struct {
	Count int32 `json:"count"`
}
