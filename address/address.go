// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package address

//go:generate go run go.uber.org/mock/mockgen -package=runtimemock -destination=../runtime/runtimemock/validator.go -mock_names=Validator=MockValidator . Validator

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	// MockMinLen and MockMaxLen bound identities accepted by [Mock].
	MockMinLen = 3
	MockMaxLen = 90
)

var (
	ErrEmpty         = errors.New("address is empty")
	ErrNotNormalized = errors.New("address is not normalized")
	ErrInvalidLength = errors.New("invalid address length")
	ErrInvalidChar   = errors.New("invalid address character")
	ErrWrongPrefix   = errors.New("wrong address prefix")
	ErrBadEncoding   = errors.New("bad address encoding")
)

// Validator checks that a caller supplied identity string is well formed
// and returns its canonical form.
type Validator interface {
	AddrValidate(input string) (string, error)
}

var (
	_ Validator = (*Bech32)(nil)
	_ Validator = Mock{}
)

// Bech32 accepts lowercase bech32 addresses with a fixed human readable part
// and a 20 or 32 byte payload.
type Bech32 struct {
	HRP string
}

func NewBech32(hrp string) *Bech32 {
	return &Bech32{HRP: hrp}
}

func (b *Bech32) AddrValidate(input string) (string, error) {
	if input == "" {
		return "", ErrEmpty
	}
	if input != strings.ToLower(input) {
		return "", fmt.Errorf("%w: %q", ErrNotNormalized, input)
	}
	hrp, data, err := bech32.Decode(input)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBadEncoding, err)
	}
	if hrp != b.HRP {
		return "", fmt.Errorf("%w: got %q, expected %q", ErrWrongPrefix, hrp, b.HRP)
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBadEncoding, err)
	}
	if l := len(payload); l != 20 && l != 32 {
		return "", fmt.Errorf("%w: %d byte payload", ErrInvalidLength, l)
	}
	return input, nil
}

// Encode returns the bech32 address of [payload] under [b.HRP].
func (b *Bech32) Encode(payload []byte) (string, error) {
	data, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(b.HRP, data)
}

// Mock accepts any lowercase identity without whitespace whose length is
// within [MockMinLen, MockMaxLen]. Tests and local simulations use it so
// plain names like "alice" are valid callers.
type Mock struct{}

func (Mock) AddrValidate(input string) (string, error) {
	if input == "" {
		return "", ErrEmpty
	}
	if l := len(input); l < MockMinLen || l > MockMaxLen {
		return "", fmt.Errorf("%w: %d", ErrInvalidLength, l)
	}
	for _, r := range input {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return "", fmt.Errorf("%w: %q", ErrInvalidChar, r)
		}
	}
	if input != strings.ToLower(input) {
		return "", fmt.Errorf("%w: %q", ErrNotNormalized, input)
	}
	return input, nil
}
