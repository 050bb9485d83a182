// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package simulator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ava-labs/hypercw/utils"
)

var (
	ErrInvalidPlan     = errors.New("invalid plan")
	ErrInvalidStep     = errors.New("invalid step")
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	ErrUnknownStepRef  = errors.New("unknown step reference")
	ErrAssertion       = errors.New("assertion failed")
)

type Plan struct {
	// The name of the plan.
	Name string `json:"name" yaml:"name"`
	// A description of the plan.
	Description string `json:"description" yaml:"description"`
	// Default sender for steps that do not name one.
	Sender string `json:"sender" yaml:"sender"`
	// Steps to perform during simulation.
	Steps []Step `json:"steps" yaml:"steps"`
}

type Step struct {
	// Description of the step.
	Description string `json:"description" yaml:"description"`
	// The host operation to call. (required)
	Endpoint Endpoint `json:"endpoint" yaml:"endpoint"`
	// Code to instantiate.
	Code string `json:"code,omitempty" yaml:"code,omitempty"`
	// Label of the new instance.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	// Target of the call: an address or step_N, the instance created by
	// step N.
	Contract string `json:"contract,omitempty" yaml:"contract,omitempty"`
	// Caller of the step. Defaults to the plan's sender.
	Sender string `json:"sender,omitempty" yaml:"sender,omitempty"`
	// Message passed to the contract. (required)
	Msg Document `json:"msg" yaml:"msg"`
	// Assertions against this step.
	Require *Require `json:"require,omitempty" yaml:"require,omitempty"`
}

type Endpoint string

const (
	// Create a new contract instance.
	InstantiateEndpoint Endpoint = "instantiate"
	// Run a state changing call.
	ExecuteEndpoint Endpoint = "execute"
	// Run an execute without committing it.
	SimulateEndpoint Endpoint = "simulate"
	// Make a read-only call.
	QueryEndpoint Endpoint = "query"
)

type Require struct {
	// Substring of the error the step must fail with.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	// Attributes the response must carry.
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	// Number of forwarded messages in the response.
	Messages *int `json:"messages,omitempty" yaml:"messages,omitempty"`
	// Expected query result, compared as JSON.
	Result *Document `json:"result,omitempty" yaml:"result,omitempty"`
}

// Document is a message written inline in a plan. In YAML plans it is a
// YAML value that is converted to JSON.
type Document json.RawMessage

func (d Document) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

func (d *Document) UnmarshalJSON(b []byte) error {
	*d = append((*d)[:0], b...)
	return nil
}

func (d *Document) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}
	b, err := json.Marshal(toJSONValue(v))
	if err != nil {
		return err
	}
	*d = b
	return nil
}

// toJSONValue rewrites the map[interface{}]interface{} values yaml.v2
// produces into maps encoding/json accepts.
func toJSONValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = toJSONValue(e)
		}
		return m
	case []interface{}:
		for i, e := range t {
			t[i] = toJSONValue(e)
		}
		return t
	default:
		return t
	}
}

// Equal compares two documents as JSON values.
func (d Document) Equal(other []byte) bool {
	var a, b interface{}
	if err := json.Unmarshal(d, &a); err != nil {
		return false
	}
	if err := json.Unmarshal(other, &b); err != nil {
		return false
	}
	ab, _ := json.Marshal(a)
	bb, _ := json.Marshal(b)
	return bytes.Equal(ab, bb)
}

func UnmarshalPlan(b []byte) (*Plan, error) {
	var p Plan
	if err := utils.UnmarshalDocument(b, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	return &p, nil
}

// Verify checks that every step names what its endpoint needs.
func (p *Plan) Verify() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPlan, "no steps found")
	}
	for i, step := range p.Steps {
		if len(step.Msg) == 0 {
			return fmt.Errorf("%w %d: missing msg", ErrInvalidStep, i)
		}
		sender := step.Sender
		if sender == "" {
			sender = p.Sender
		}
		switch step.Endpoint {
		case InstantiateEndpoint:
			if step.Code == "" {
				return fmt.Errorf("%w %d: missing code", ErrInvalidStep, i)
			}
			if sender == "" {
				return fmt.Errorf("%w %d: missing sender", ErrInvalidStep, i)
			}
		case ExecuteEndpoint, SimulateEndpoint:
			if step.Contract == "" {
				return fmt.Errorf("%w %d: missing contract", ErrInvalidStep, i)
			}
			if sender == "" {
				return fmt.Errorf("%w %d: missing sender", ErrInvalidStep, i)
			}
		case QueryEndpoint:
			if step.Contract == "" {
				return fmt.Errorf("%w %d: missing contract", ErrInvalidStep, i)
			}
		default:
			return fmt.Errorf("%w %d: %w: %q", ErrInvalidStep, i, ErrInvalidEndpoint, step.Endpoint)
		}
	}
	return nil
}
