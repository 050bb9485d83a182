// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package adminlist

import "github.com/ava-labs/hypercw/runtime"

type InstantiateMsg struct {
	Admins  []string `json:"admins"`
	Mutable bool     `json:"mutable"`
}

// ExecuteMsg is a tagged union. Exactly one field is set.
type ExecuteMsg struct {
	Execute      *ExecuteMsgs  `json:"execute,omitempty"`
	Freeze       *Freeze       `json:"freeze,omitempty"`
	UpdateAdmins *UpdateAdmins `json:"update_admins,omitempty"`
}

// ExecuteMsgs forwards [Msgs] verbatim, in order, if the caller is an admin.
type ExecuteMsgs struct {
	Msgs []runtime.CosmosMsg `json:"msgs"`
}

type Freeze struct{}

type UpdateAdmins struct {
	Admins []string `json:"admins"`
}

type QueryMsg struct {
	AdminList  *AdminListQuery `json:"admin_list,omitempty"`
	CanExecute *CanExecute     `json:"can_execute,omitempty"`
}

type AdminListQuery struct{}

// CanExecute asks whether [Sender] could forward [Msg]. The message is not
// inspected.
type CanExecute struct {
	Sender string            `json:"sender"`
	Msg    runtime.CosmosMsg `json:"msg"`
}

type AdminListResponse struct {
	Admins  []string `json:"admins"`
	Mutable bool     `json:"mutable"`
}

type CanExecuteResponse struct {
	CanExecute bool `json:"can_execute"`
}
