// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

const (
	Read     Permissions = 1
	Allocate             = 1<<1 | Read
	Write                = 1<<2 | Read

	None Permissions = 0
	All              = Read | Allocate | Write
)

// Keys maps a raw state key to the permissions a call needed on it.
type Keys map[string]Permissions

// Permissions is a bitset of Read/Allocate/Write.
type Permissions byte

// Add unions [permission] into the permissions already recorded for [name].
func (k Keys) Add(name string, permission Permissions) {
	k[name] |= permission
}

// Has returns true if [p] has all the permissions that are contained in require
func (p Permissions) Has(require Permissions) bool {
	return require&^p == 0
}

func (p Permissions) String() string {
	if p == None {
		return "none"
	}
	var parts []string
	if p.Has(Read) {
		parts = append(parts, "read")
	}
	if p.Has(Allocate) {
		parts = append(parts, "allocate")
	}
	if p.Has(Write) {
		parts = append(parts, "write")
	}
	return strings.Join(parts, "|")
}

func ParsePermissions(s string) (Permissions, error) {
	p := None
	if s == "none" {
		return p, nil
	}
	for _, part := range strings.Split(s, "|") {
		switch part {
		case "read":
			p |= Read
		case "allocate":
			p |= Allocate
		case "write":
			p |= Write
		default:
			return None, fmt.Errorf("%w: %q", ErrInvalidPermission, part)
		}
	}
	return p, nil
}

type keyEntry struct {
	Key        string `json:"key"`
	Permission string `json:"permission"`
}

// MarshalJSON renders keys as hex with readable permissions, sorted by key.
func (k Keys) MarshalJSON() ([]byte, error) {
	entries := make([]keyEntry, 0, len(k))
	for name, p := range k {
		entries = append(entries, keyEntry{Key: hex.EncodeToString([]byte(name)), Permission: p.String()})
	}
	slices.SortFunc(entries, func(a, b keyEntry) int { return strings.Compare(a.Key, b.Key) })
	return json.Marshal(entries)
}

func (k *Keys) UnmarshalJSON(b []byte) error {
	var entries []keyEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return err
	}
	keys := make(Keys, len(entries))
	for _, e := range entries {
		name, err := hex.DecodeString(e.Key)
		if err != nil {
			return err
		}
		p, err := ParsePermissions(e.Permission)
		if err != nil {
			return err
		}
		keys.Add(string(name), p)
	}
	*k = keys
	return nil
}
