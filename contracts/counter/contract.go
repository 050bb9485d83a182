// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package counter

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/ava-labs/hypercw/codec"
	"github.com/ava-labs/hypercw/runtime"
)

const (
	ContractName    = "crates.io:counter-wba"
	ContractVersion = "0.1.0"
)

var _ runtime.Contract = Contract{}

// Contract adapts the counter entry points to raw JSON messages.
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

func Instantiate(ctx context.Context, deps runtime.Deps, _ runtime.Env, info runtime.MessageInfo, msg InstantiateMsg) (*runtime.Response, error) {
	s := State{
		Count:     msg.Count,
		Owner:     info.Sender,
		PollCount: 0,
	}
	if err := runtime.SetContractVersion(ctx, deps.Storage, ContractName, ContractVersion); err != nil {
		return nil, err
	}
	if err := stateItem.Save(ctx, deps.Storage, s); err != nil {
		return nil, err
	}
	return runtime.NewResponse().
		AddAttribute("method", "instantiate").
		AddAttribute("owner", info.Sender).
		AddAttribute("count", strconv.FormatInt(int64(msg.Count), 10)), nil
}

func Execute(ctx context.Context, deps runtime.Deps, _ runtime.Env, info runtime.MessageInfo, msg ExecuteMsg) (*runtime.Response, error) {
	switch {
	case msg.Increment != nil:
		return TryIncrement(ctx, deps)
	case msg.Decrement != nil:
		return TryDecrement(ctx, deps)
	case msg.Reset != nil:
		return TryReset(ctx, deps, info, msg.Reset.Count)
	default:
		return nil, codec.ErrNoVariant
	}
}

func TryIncrement(ctx context.Context, deps runtime.Deps) (*runtime.Response, error) {
	_, err := stateItem.Update(ctx, deps.Storage, func(s State) (State, error) {
		if s.Count == math.MaxInt32 {
			return s, fmt.Errorf("%w: increment past %d", ErrOverflow, s.Count)
		}
		s.Count++
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewResponse().AddAttribute("method", "try_increment"), nil
}

func TryDecrement(ctx context.Context, deps runtime.Deps) (*runtime.Response, error) {
	_, err := stateItem.Update(ctx, deps.Storage, func(s State) (State, error) {
		if s.Count == math.MinInt32 {
			return s, fmt.Errorf("%w: decrement past %d", ErrOverflow, s.Count)
		}
		s.Count--
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewResponse().AddAttribute("method", "try_decrement"), nil
}

// TryReset sets the count to [count]. Only the owner may reset.
func TryReset(ctx context.Context, deps runtime.Deps, info runtime.MessageInfo, count int32) (*runtime.Response, error) {
	_, err := stateItem.Update(ctx, deps.Storage, func(s State) (State, error) {
		if info.Sender != s.Owner {
			return s, ErrUnauthorized
		}
		s.Count = count
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewResponse().AddAttribute("method", "reset"), nil
}

func Query(ctx context.Context, deps runtime.Deps, _ runtime.Env, msg QueryMsg) ([]byte, error) {
	switch {
	case msg.GetCount != nil:
		res, err := QueryCount(ctx, deps)
		if err != nil {
			return nil, err
		}
		return json.Marshal(res)
	default:
		return nil, codec.ErrNoVariant
	}
}

func QueryCount(ctx context.Context, deps runtime.Deps) (CountResponse, error) {
	s, err := stateItem.Load(ctx, deps.Storage)
	if err != nil {
		return CountResponse{}, err
	}
	return CountResponse{Count: s.Count}, nil
}
