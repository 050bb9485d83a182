// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package address

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBech32RoundTrip(t *testing.T) {
	require := require.New(t)
	v := NewBech32("hypercw")

	for _, size := range []int{20, 32} {
		addr, err := v.Encode(bytes.Repeat([]byte{0xab}, size))
		require.NoError(err)
		require.True(strings.HasPrefix(addr, "hypercw1"))

		got, err := v.AddrValidate(addr)
		require.NoError(err)
		require.Equal(addr, got)
	}
}

func TestBech32Rejects(t *testing.T) {
	v := NewBech32("hypercw")
	valid, err := v.Encode(bytes.Repeat([]byte{0x01}, 32))
	require.NoError(t, err)
	other, err := NewBech32("cosmos").Encode(bytes.Repeat([]byte{0x01}, 20))
	require.NoError(t, err)
	short, err := v.Encode([]byte{1, 2, 3})
	require.NoError(t, err)
	flip := "q"
	if strings.HasSuffix(valid, flip) {
		flip = "p"
	}

	tests := []struct {
		name  string
		input string
		err   error
	}{
		{name: "empty", input: "", err: ErrEmpty},
		{name: "uppercase", input: strings.ToUpper(valid), err: ErrNotNormalized},
		{name: "garbage", input: "alice", err: ErrBadEncoding},
		{name: "bad checksum", input: valid[:len(valid)-1] + flip, err: ErrBadEncoding},
		{name: "wrong prefix", input: other, err: ErrWrongPrefix},
		{name: "short payload", input: short, err: ErrInvalidLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.AddrValidate(tt.input)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestMock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
	}{
		{name: "plain name", input: "alice"},
		{name: "bech32 looking", input: "hypercw1qyqszqgpqyqszqgpqyqszqgpqyqszqgp"},
		{name: "empty", input: "", err: ErrEmpty},
		{name: "too short", input: "ab", err: ErrInvalidLength},
		{name: "too long", input: strings.Repeat("a", MockMaxLen+1), err: ErrInvalidLength},
		{name: "whitespace", input: "some contract", err: ErrInvalidChar},
		{name: "uppercase", input: "Alice", err: ErrNotNormalized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			got, err := Mock{}.AddrValidate(tt.input)
			require.ErrorIs(err, tt.err)
			if tt.err == nil {
				require.Equal(tt.input, got)
			}
		})
	}
}
