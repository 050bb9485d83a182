// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"

	"github.com/ava-labs/hypercw/state"
)

// ContractVersion is stamped into a contract's space at instantiation so
// later migrations can tell which code wrote the state.
type ContractVersion struct {
	Contract string `json:"contract"`
	Version  string `json:"version"`
}

var contractInfo = state.NewItem[ContractVersion]("contract_info")

func SetContractVersion(ctx context.Context, mu state.Mutable, name string, version string) error {
	return contractInfo.Save(ctx, mu, ContractVersion{Contract: name, Version: version})
}

func GetContractVersion(ctx context.Context, im state.Immutable) (ContractVersion, error) {
	return contractInfo.Load(ctx, im)
}
