// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"bytes"

	"github.com/near/borsh-go"
)

// Marshal encodes [value] with borsh. Persisted records use this encoding so
// their layout is fixed by field order rather than by names.
func Marshal[T any](value T) ([]byte, error) {
	b := &bytes.Buffer{}
	if err := borsh.NewEncoder(b).Encode(value); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Unmarshal decodes a borsh encoded [T].
func Unmarshal[T any](data []byte) (T, error) {
	var result T
	if len(data) == 0 {
		return result, ErrEmptyPayload
	}
	err := borsh.Deserialize(&result, data)
	return result, err
}
