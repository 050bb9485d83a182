// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package adminlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/hypercw/contracts/contracttest"
)

func TestMutability(t *testing.T) {
	require := require.New(t)

	var zero Mutability
	require.Equal(Frozen, zero)
	require.False(zero.IsMutable())
	require.Equal(Mutable, MutabilityOf(true))
	require.Equal(Frozen, MutabilityOf(false))
	require.Equal("mutable", Mutable.String())
	require.Equal("frozen", Frozen.String())
}

func TestPermissions(t *testing.T) {
	tests := []struct {
		name       string
		list       *AdminList
		addr       string
		isAdmin    bool
		canModify  bool
		canExecute bool
	}{
		{
			name:       "admin of mutable list",
			list:       NewAdminList([]string{"bob", "carl"}, true),
			addr:       "bob",
			isAdmin:    true,
			canModify:  true,
			canExecute: true,
		},
		{
			name:       "admin of frozen list",
			list:       NewAdminList([]string{"bob", "carl"}, false),
			addr:       "carl",
			isAdmin:    true,
			canModify:  false,
			canExecute: true,
		},
		{
			name: "outsider of mutable list",
			list: NewAdminList([]string{"bob", "carl"}, true),
			addr: "dave",
		},
		{
			name: "outsider of frozen list",
			list: NewAdminList([]string{"bob", "carl"}, false),
			addr: "dave",
		},
		{
			name: "empty list",
			list: NewAdminList(nil, true),
			addr: "bob",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			require.Equal(tt.isAdmin, tt.list.IsAdmin(tt.addr))
			require.Equal(tt.canModify, tt.list.CanModify(tt.addr))
			require.Equal(tt.canExecute, tt.list.CanExecute(tt.addr))
		})
	}
}

func TestFreezeIsPermanent(t *testing.T) {
	require := require.New(t)

	list := NewAdminList([]string{"alice"}, true)
	require.True(list.CanModify("alice"))
	list.Freeze()
	require.False(list.IsMutable())
	require.False(list.CanModify("alice"))
	list.Freeze()
	require.Equal(Frozen, list.Mutability())
	require.True(list.CanExecute("alice"))
}

func TestAdminsIsACopy(t *testing.T) {
	require := require.New(t)

	admins := []string{"alice", "bob"}
	list := NewAdminList(admins, true)
	admins[0] = "mallory"
	require.True(list.IsAdmin("alice"))

	out := list.Admins()
	out[1] = "mallory"
	require.Equal([]string{"alice", "bob"}, list.Admins())
}

func TestSaveLoad(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	store := contracttest.NewInMemoryStore()

	list := NewAdminList([]string{"carl", "alice", "carl"}, false)
	require.NoError(SaveAdminList(ctx, store, list))

	loaded, err := LoadAdminList(ctx, store)
	require.NoError(err)
	require.Equal([]string{"carl", "alice", "carl"}, loaded.Admins())
	require.Equal(Frozen, loaded.Mutability())
}
