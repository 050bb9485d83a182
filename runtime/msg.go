// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/ava-labs/hypercw/codec"
)

var ErrInvalidCosmosMsg = errors.New("invalid forwarded message")

// CosmosMsg is an opaque forwarded operation. The host and the contracts
// carry it verbatim; only the downstream executor interprets it.
type CosmosMsg []byte

func (m CosmosMsg) MarshalJSON() ([]byte, error) {
	if len(m) == 0 {
		return []byte("null"), nil
	}
	return m, nil
}

func (m *CosmosMsg) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*m = nil
		return nil
	}
	*m = append(CosmosMsg(nil), b...)
	return nil
}

// Kind returns the top-level variant ("bank", "wasm", ...). It is used for
// routing and labels only.
func (m CosmosMsg) Kind() string {
	kind, err := codec.VariantName(m)
	if err != nil {
		return "unknown"
	}
	return kind
}

// WasmExecute returns the inner execute call when [m] targets a contract.
func (m CosmosMsg) WasmExecute() (*WasmExecute, bool) {
	var env envelope
	if err := json.Unmarshal(m, &env); err != nil {
		return nil, false
	}
	if env.Wasm == nil || env.Wasm.Execute == nil {
		return nil, false
	}
	return env.Wasm.Execute, true
}

type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

func NewCoin(amount uint64, denom string) Coin {
	return Coin{Denom: denom, Amount: strconv.FormatUint(amount, 10)}
}

func Coins(amount uint64, denom string) []Coin {
	return []Coin{NewCoin(amount, denom)}
}

type envelope struct {
	Bank    *BankMsg    `json:"bank,omitempty"`
	Staking *StakingMsg `json:"staking,omitempty"`
	Wasm    *WasmMsg    `json:"wasm,omitempty"`
}

type BankMsg struct {
	Send *BankSend `json:"send,omitempty"`
}

type BankSend struct {
	ToAddress string `json:"to_address"`
	Amount    []Coin `json:"amount"`
}

type StakingMsg struct {
	Delegate *StakingDelegate `json:"delegate,omitempty"`
}

type StakingDelegate struct {
	Validator string `json:"validator"`
	Amount    Coin   `json:"amount"`
}

type WasmMsg struct {
	Execute *WasmExecute `json:"execute,omitempty"`
}

type WasmExecute struct {
	ContractAddr string `json:"contract_addr"`
	// Msg is the raw JSON execute message for the target contract.
	Msg   []byte `json:"msg"`
	Funds []Coin `json:"funds"`
}

func NewBankSend(to string, amount []Coin) CosmosMsg {
	return mustEncode(envelope{Bank: &BankMsg{Send: &BankSend{ToAddress: to, Amount: amount}}})
}

func NewStakingDelegate(validator string, amount Coin) CosmosMsg {
	return mustEncode(envelope{Staking: &StakingMsg{Delegate: &StakingDelegate{Validator: validator, Amount: amount}}})
}

// NewWasmExecute wraps [msg] (any JSON encodable execute message) into a
// forwarded call to [contract].
func NewWasmExecute(contract string, msg any, funds []Coin) (CosmosMsg, error) {
	inner, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	if funds == nil {
		funds = []Coin{}
	}
	return mustEncode(envelope{Wasm: &WasmMsg{Execute: &WasmExecute{
		ContractAddr: contract,
		Msg:          inner,
		Funds:        funds,
	}}}), nil
}

func mustEncode(v any) CosmosMsg {
	b, err := json.Marshal(v)
	if err != nil {
		// only called with types that always encode
		panic(err)
	}
	return b
}
