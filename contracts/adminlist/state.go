// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package adminlist

import (
	"context"

	"golang.org/x/exp/slices"

	"github.com/ava-labs/hypercw/state"
)

// Mutability is whether an [AdminList] roster may still change. The zero
// value is Frozen.
type Mutability uint8

const (
	Frozen Mutability = iota
	Mutable
)

func MutabilityOf(mutable bool) Mutability {
	if mutable {
		return Mutable
	}
	return Frozen
}

func (m Mutability) IsMutable() bool {
	return m == Mutable
}

func (m Mutability) String() string {
	if m == Mutable {
		return "mutable"
	}
	return "frozen"
}

// AdminList is the roster of identities allowed to forward messages through
// the contract. Once frozen it can never be made mutable again; there is no
// method that moves it back.
type AdminList struct {
	admins     []string
	mutability Mutability
}

func NewAdminList(admins []string, mutable bool) *AdminList {
	return &AdminList{
		admins:     slices.Clone(admins),
		mutability: MutabilityOf(mutable),
	}
}

// Admins returns a copy of the roster in stored order.
func (a *AdminList) Admins() []string {
	out := make([]string, len(a.admins))
	copy(out, a.admins)
	return out
}

func (a *AdminList) Mutability() Mutability {
	return a.mutability
}

func (a *AdminList) IsMutable() bool {
	return a.mutability.IsMutable()
}

func (a *AdminList) IsAdmin(addr string) bool {
	return slices.Contains(a.admins, addr)
}

// CanModify reports whether [addr] may freeze or replace the roster.
func (a *AdminList) CanModify(addr string) bool {
	return a.IsMutable() && a.IsAdmin(addr)
}

// CanExecute ignores mutability. A frozen list still forwards for its
// admins.
func (a *AdminList) CanExecute(addr string) bool {
	return a.IsAdmin(addr)
}

func (a *AdminList) Freeze() {
	a.mutability = Frozen
}

// replaceAdmins swaps the roster wholesale. Callers check [CanModify] first.
func (a *AdminList) replaceAdmins(admins []string) {
	a.admins = slices.Clone(admins)
}

// record is the persisted form of an [AdminList].
type record struct {
	Admins  []string
	Mutable bool
}

var adminListItem = state.NewItem[record]("admin_list")

func LoadAdminList(ctx context.Context, im state.Immutable) (*AdminList, error) {
	r, err := adminListItem.Load(ctx, im)
	if err != nil {
		return nil, err
	}
	return NewAdminList(r.Admins, r.Mutable), nil
}

func SaveAdminList(ctx context.Context, mu state.Mutable, a *AdminList) error {
	return adminListItem.Save(ctx, mu, record{
		Admins:  a.Admins(),
		Mutable: a.IsMutable(),
	})
}
