// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package prompt asks for values the CLI was not given as flags.
package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/ava-labs/hypercw/address"
	"github.com/ava-labs/hypercw/utils"
)

var (
	ErrInputEmpty      = errors.New("input is empty")
	ErrInputTooLarge   = errors.New("input is too large")
	ErrInvalidChoice   = errors.New("invalid choice")
	ErrIndexOutOfRange = errors.New("index out-of-range")
	ErrInvalidJSON     = errors.New("input is not valid JSON")
)

// ask re-prompts until [parse] accepts the trimmed input.
func ask[T any](label string, parse func(string) (T, error)) (T, error) {
	p := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			_, err := parse(strings.TrimSpace(input))
			return err
		},
	}
	input, err := p.Run()
	if err != nil {
		var zero T
		return zero, err
	}
	return parse(strings.TrimSpace(input))
}

// Address returns the canonical form of an identity [validator] accepts.
func Address(label string, validator address.Validator) (string, error) {
	return ask(label, validator.AddrValidate)
}

func String(label string, minLen int, maxLen int) (string, error) {
	return ask(label, boundedString(minLen, maxLen))
}

// Message reads a single JSON document.
func Message(label string) (json.RawMessage, error) {
	return ask(label, parseJSON)
}

// Int reads a value in [1, maxValue].
func Int(label string, maxValue int) (int, error) {
	return ask(label, positiveInt(maxValue))
}

// SelectCode lists [codes] and returns the chosen one. A single code is
// picked without asking.
func SelectCode(label string, codes []string) (string, error) {
	switch len(codes) {
	case 0:
		return "", ErrInvalidChoice
	case 1:
		utils.Outf("{{yellow}}%s:{{/}} %s [auto-selected]\n", label, codes[0])
		return codes[0], nil
	}
	utils.Outf("{{cyan}}available codes:{{/}} %d\n", len(codes))
	for i, code := range codes {
		utils.Outf("%d) {{cyan}}code:{{/}} %s\n", i, code)
	}
	index, err := ask(label, index(len(codes)))
	if err != nil {
		return "", err
	}
	return codes[index], nil
}

func boundedString(minLen int, maxLen int) func(string) (string, error) {
	return func(input string) (string, error) {
		switch {
		case len(input) < minLen:
			return "", ErrInputEmpty
		case len(input) > maxLen:
			return "", ErrInputTooLarge
		}
		return input, nil
	}
}

func parseJSON(input string) (json.RawMessage, error) {
	if input == "" {
		return nil, ErrInputEmpty
	}
	if !json.Valid([]byte(input)) {
		return nil, ErrInvalidJSON
	}
	return json.RawMessage(input), nil
}

func positiveInt(maxValue int) func(string) (int, error) {
	return func(input string) (int, error) {
		if input == "" {
			return 0, ErrInputEmpty
		}
		v, err := strconv.Atoi(input)
		if err != nil {
			return 0, err
		}
		if v <= 0 || v > maxValue {
			return 0, fmt.Errorf("%w: %d not in [1, %d]", ErrIndexOutOfRange, v, maxValue)
		}
		return v, nil
	}
}

func index(n int) func(string) (int, error) {
	return func(input string) (int, error) {
		if input == "" {
			return 0, ErrInputEmpty
		}
		i, err := strconv.Atoi(input)
		if err != nil {
			return 0, err
		}
		if i < 0 || i >= n {
			return 0, ErrIndexOutOfRange
		}
		return i, nil
	}
}
