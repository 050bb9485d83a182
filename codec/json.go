// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// UnmarshalVariant decodes a tagged-union message of the form
// {"variant_name": {...}} into [v], a struct of optional pointer fields.
// Exactly one variant must be present and unknown fields are rejected.
func UnmarshalVariant(data []byte, v any) error {
	var variants map[string]json.RawMessage
	if err := json.Unmarshal(data, &variants); err != nil {
		return err
	}
	switch len(variants) {
	case 0:
		return ErrNoVariant
	case 1:
	default:
		return ErrTooManyVariants
	}
	if err := UnmarshalStrict(data, v); err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownVariant, err)
	}
	return nil
}

// UnmarshalStrict decodes a single JSON value into [v], rejecting unknown
// fields and trailing data.
func UnmarshalStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return ErrTrailingData
	}
	return nil
}

// VariantName returns the single top-level key of a tagged-union message.
func VariantName(data []byte) (string, error) {
	var variants map[string]json.RawMessage
	if err := json.Unmarshal(data, &variants); err != nil {
		return "", err
	}
	switch len(variants) {
	case 0:
		return "", ErrNoVariant
	case 1:
		for k := range variants {
			return k, nil
		}
	}
	return "", ErrTooManyVariants
}
