// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package adminlist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ava-labs/hypercw/address"
	"github.com/ava-labs/hypercw/codec"
	"github.com/ava-labs/hypercw/runtime"
)

const (
	ContractName    = "crates.io:cw1-whitelist"
	ContractVersion = "0.1.0"
)

var _ runtime.Contract = Contract{}

// Contract adapts the admin-list entry points to raw JSON messages.
type Contract struct{}

func (Contract) Instantiate(ctx context.Context, deps runtime.Deps, env runtime.Env, info runtime.MessageInfo, raw []byte) (*runtime.Response, error) {
	var msg InstantiateMsg
	if err := codec.UnmarshalStrict(raw, &msg); err != nil {
		return nil, err
	}
	return Instantiate(ctx, deps, env, info, msg)
}

func (Contract) Execute(ctx context.Context, deps runtime.Deps, env runtime.Env, info runtime.MessageInfo, raw []byte) (*runtime.Response, error) {
	var msg ExecuteMsg
	if err := codec.UnmarshalVariant(raw, &msg); err != nil {
		return nil, err
	}
	return Execute(ctx, deps, env, info, msg)
}

func (Contract) Query(ctx context.Context, deps runtime.Deps, env runtime.Env, raw []byte) ([]byte, error) {
	var msg QueryMsg
	if err := codec.UnmarshalVariant(raw, &msg); err != nil {
		return nil, err
	}
	return Query(ctx, deps, env, msg)
}

func Instantiate(ctx context.Context, deps runtime.Deps, _ runtime.Env, _ runtime.MessageInfo, msg InstantiateMsg) (*runtime.Response, error) {
	admins, err := validateAll(deps.API, msg.Admins)
	if err != nil {
		return nil, err
	}
	if err := runtime.SetContractVersion(ctx, deps.Storage, ContractName, ContractVersion); err != nil {
		return nil, err
	}
	if err := SaveAdminList(ctx, deps.Storage, NewAdminList(admins, msg.Mutable)); err != nil {
		return nil, err
	}
	return runtime.NewResponse(), nil
}

// validateAll returns the canonical form of every identity, failing on the
// first malformed one.
func validateAll(api address.Validator, admins []string) ([]string, error) {
	out := make([]string, 0, len(admins))
	for _, admin := range admins {
		addr, err := api.AddrValidate(admin)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, admin, err)
		}
		out = append(out, addr)
	}
	return out, nil
}

func Execute(ctx context.Context, deps runtime.Deps, env runtime.Env, info runtime.MessageInfo, msg ExecuteMsg) (*runtime.Response, error) {
	switch {
	case msg.Execute != nil:
		return ExecuteExecute(ctx, deps, env, info, msg.Execute.Msgs)
	case msg.Freeze != nil:
		return ExecuteFreeze(ctx, deps, env, info)
	case msg.UpdateAdmins != nil:
		return ExecuteUpdateAdmins(ctx, deps, env, info, msg.UpdateAdmins.Admins)
	default:
		return nil, codec.ErrNoVariant
	}
}

func ExecuteExecute(ctx context.Context, deps runtime.Deps, _ runtime.Env, info runtime.MessageInfo, msgs []runtime.CosmosMsg) (*runtime.Response, error) {
	can, err := canExecute(ctx, deps, info.Sender)
	if err != nil {
		return nil, err
	}
	if !can {
		return nil, ErrUnauthorized
	}
	return runtime.NewResponse().
		AddMessages(msgs).
		AddAttribute("action", "execute"), nil
}

func ExecuteFreeze(ctx context.Context, deps runtime.Deps, _ runtime.Env, info runtime.MessageInfo) (*runtime.Response, error) {
	cfg, err := LoadAdminList(ctx, deps.Storage)
	if err != nil {
		return nil, err
	}
	if !cfg.CanModify(info.Sender) {
		return nil, ErrUnauthorized
	}
	cfg.Freeze()
	if err := SaveAdminList(ctx, deps.Storage, cfg); err != nil {
		return nil, err
	}
	return runtime.NewResponse().AddAttribute("action", "freeze"), nil
}

func ExecuteUpdateAdmins(ctx context.Context, deps runtime.Deps, _ runtime.Env, info runtime.MessageInfo, admins []string) (*runtime.Response, error) {
	cfg, err := LoadAdminList(ctx, deps.Storage)
	if err != nil {
		return nil, err
	}
	if !cfg.CanModify(info.Sender) {
		return nil, ErrUnauthorized
	}
	validated, err := validateAll(deps.API, admins)
	if err != nil {
		return nil, err
	}
	cfg.replaceAdmins(validated)
	if err := SaveAdminList(ctx, deps.Storage, cfg); err != nil {
		return nil, err
	}
	return runtime.NewResponse().AddAttribute("action", "update_admins"), nil
}

func canExecute(ctx context.Context, deps runtime.Deps, sender string) (bool, error) {
	cfg, err := LoadAdminList(ctx, deps.Storage)
	if err != nil {
		return false, err
	}
	return cfg.CanExecute(sender), nil
}

func Query(ctx context.Context, deps runtime.Deps, _ runtime.Env, msg QueryMsg) ([]byte, error) {
	switch {
	case msg.AdminList != nil:
		res, err := QueryAdminList(ctx, deps)
		if err != nil {
			return nil, err
		}
		return json.Marshal(res)
	case msg.CanExecute != nil:
		res, err := QueryCanExecute(ctx, deps, msg.CanExecute.Sender, msg.CanExecute.Msg)
		if err != nil {
			return nil, err
		}
		return json.Marshal(res)
	default:
		return nil, codec.ErrNoVariant
	}
}

func QueryAdminList(ctx context.Context, deps runtime.Deps) (AdminListResponse, error) {
	cfg, err := LoadAdminList(ctx, deps.Storage)
	if err != nil {
		return AdminListResponse{}, err
	}
	return AdminListResponse{
		Admins:  cfg.Admins(),
		Mutable: cfg.IsMutable(),
	}, nil
}

// QueryCanExecute answers for [sender] alone. Every message kind gets the
// same answer.
func QueryCanExecute(ctx context.Context, deps runtime.Deps, sender string, _ runtime.CosmosMsg) (CanExecuteResponse, error) {
	can, err := canExecute(ctx, deps, sender)
	if err != nil {
		return CanExecuteResponse{}, err
	}
	return CanExecuteResponse{CanExecute: can}, nil
}
