// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package prompt

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsers(t *testing.T) {
	tests := []struct {
		name        string
		parse       func(string) error
		input       string
		expectedErr error
	}{
		{
			name:  "string in range",
			parse: discard(boundedString(1, 4)),
			input: "abc",
		},
		{
			name:        "string empty",
			parse:       discard(boundedString(1, 4)),
			input:       "",
			expectedErr: ErrInputEmpty,
		},
		{
			name:        "string too long",
			parse:       discard(boundedString(1, 4)),
			input:       "abcde",
			expectedErr: ErrInputTooLarge,
		},
		{
			name:  "json object",
			parse: discard(parseJSON),
			input: `{"increment":{}}`,
		},
		{
			name:        "json empty",
			parse:       discard(parseJSON),
			input:       "",
			expectedErr: ErrInputEmpty,
		},
		{
			name:        "json malformed",
			parse:       discard(parseJSON),
			input:       `{"increment":`,
			expectedErr: ErrInvalidJSON,
		},
		{
			name:  "int at max",
			parse: discard(positiveInt(10)),
			input: "10",
		},
		{
			name:        "int zero",
			parse:       discard(positiveInt(10)),
			input:       "0",
			expectedErr: ErrIndexOutOfRange,
		},
		{
			name:        "int not a number",
			parse:       discard(positiveInt(10)),
			input:       "ten",
			expectedErr: strconv.ErrSyntax,
		},
		{
			name:  "index first",
			parse: discard(index(2)),
			input: "0",
		},
		{
			name:        "index past end",
			parse:       discard(index(2)),
			input:       "2",
			expectedErr: ErrIndexOutOfRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.parse(tt.input), tt.expectedErr)
		})
	}
}

func TestSelectCodeWithoutPrompt(t *testing.T) {
	require := require.New(t)

	_, err := SelectCode("code", nil)
	require.ErrorIs(err, ErrInvalidChoice)

	code, err := SelectCode("code", []string{"counter"})
	require.NoError(err)
	require.Equal("counter", code)
}

func discard[T any](parse func(string) (T, error)) func(string) error {
	return func(input string) error {
		_, err := parse(input)
		return err
	}
}
