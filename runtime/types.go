// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"time"

	"github.com/ava-labs/hypercw/address"
	"github.com/ava-labs/hypercw/state"
)

// Env describes where and when a call runs.
type Env struct {
	BlockHeight     uint64    `json:"block_height"`
	BlockTime       time.Time `json:"block_time"`
	ContractAddress string    `json:"contract_address"`
}

// MessageInfo carries the authenticated caller of a call.
type MessageInfo struct {
	Sender string `json:"sender"`
}

// Deps are the host services handed to a contract for a single call.
// Storage is the contract's own record space.
type Deps struct {
	Storage state.Mutable
	API     address.Validator
}

// Contract is the entry point set every contract module exposes to the host.
// Messages arrive as raw JSON and decoding is left to the contract.
type Contract interface {
	Instantiate(ctx context.Context, deps Deps, env Env, info MessageInfo, msg []byte) (*Response, error)
	Execute(ctx context.Context, deps Deps, env Env, info MessageInfo, msg []byte) (*Response, error)
	Query(ctx context.Context, deps Deps, env Env, msg []byte) ([]byte, error)
}

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SubMsg is a forwarded operation emitted by a contract.
type SubMsg struct {
	ID  uint64    `json:"id"`
	Msg CosmosMsg `json:"msg"`
}

func NewSubMsg(msg CosmosMsg) SubMsg {
	return SubMsg{Msg: msg}
}

// Response is the result of a successful instantiate or execute. Messages
// are handed to the host in order after the contract returns.
type Response struct {
	Messages   []SubMsg    `json:"messages"`
	Attributes []Attribute `json:"attributes"`
}

func NewResponse() *Response {
	return &Response{
		Messages:   []SubMsg{},
		Attributes: []Attribute{},
	}
}

func (r *Response) AddAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

func (r *Response) AddMessage(msg CosmosMsg) *Response {
	r.Messages = append(r.Messages, NewSubMsg(msg))
	return r
}

func (r *Response) AddMessages(msgs []CosmosMsg) *Response {
	for _, msg := range msgs {
		r.AddMessage(msg)
	}
	return r
}

// Attribute returns the value of the first attribute named [key].
func (r *Response) Attribute(key string) (string, bool) {
	for _, a := range r.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}
