// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type record struct {
	Count int32
	Owner string
}

func TestMarshal(t *testing.T) {
	require := require.New(t)

	b, err := Marshal(record{Count: -7, Owner: "alice"})
	require.NoError(err)
	// i32 little endian, then u32 length prefixed string
	require.Equal([]byte{0xf9, 0xff, 0xff, 0xff, 5, 0, 0, 0, 'a', 'l', 'i', 'c', 'e'}, b)

	r, err := Unmarshal[record](b)
	require.NoError(err)
	require.Equal(record{Count: -7, Owner: "alice"}, r)

	_, err = Unmarshal[record](nil)
	require.ErrorIs(err, ErrEmptyPayload)
}

type msg struct {
	Increment *struct{} `json:"increment,omitempty"`
	Reset     *struct {
		Count int32 `json:"count"`
	} `json:"reset,omitempty"`
}

func TestUnmarshalVariant(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:  "unit variant",
			input: `{"increment":{}}`,
		},
		{
			name:  "variant with fields",
			input: `{"reset":{"count":3}}`,
		},
		{
			name:    "no variant",
			input:   `{}`,
			wantErr: ErrNoVariant,
		},
		{
			name:    "two variants",
			input:   `{"increment":{},"reset":{"count":1}}`,
			wantErr: ErrTooManyVariants,
		},
		{
			name:    "unknown variant",
			input:   `{"decrement":{}}`,
			wantErr: ErrUnknownVariant,
		},
		{
			name:    "unknown field",
			input:   `{"reset":{"count":1,"extra":true}}`,
			wantErr: ErrUnknownVariant,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m msg
			require.ErrorIs(t, UnmarshalVariant([]byte(tt.input), &m), tt.wantErr)
		})
	}
}

func TestUnmarshalStrictTrailingData(t *testing.T) {
	var m msg
	require.ErrorIs(t, UnmarshalStrict([]byte(`{"increment":{}} {}`), &m), ErrTrailingData)
}

func TestVariantName(t *testing.T) {
	require := require.New(t)

	name, err := VariantName([]byte(`{"bank":{"send":{}}}`))
	require.NoError(err)
	require.Equal("bank", name)

	_, err = VariantName([]byte(`{"bank":{},"wasm":{}}`))
	require.ErrorIs(err, ErrTooManyVariants)

	_, err = VariantName([]byte(`{}`))
	require.ErrorIs(err, ErrNoVariant)
}
