// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"encoding/json"
	"errors"

	"gopkg.in/yaml.v2"
)

var ErrInvalidFormat = errors.New("document is neither JSON nor YAML")

// UnmarshalDocument decodes a JSON or YAML object into [v]. JSON is tried
// first since every JSON document is also YAML.
func UnmarshalDocument(bytes []byte, v any) error {
	switch {
	case isJSON(bytes):
		return json.Unmarshal(bytes, v)
	case isYAML(bytes):
		return yaml.UnmarshalStrict(bytes, v)
	default:
		return ErrInvalidFormat
	}
}

func isJSON(b []byte) bool {
	var js map[string]interface{}
	return json.Unmarshal(b, &js) == nil
}

func isYAML(b []byte) bool {
	var y map[string]interface{}
	return yaml.Unmarshal(b, &y) == nil
}
