// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"

	"github.com/ava-labs/hypercw/api"
	"github.com/ava-labs/hypercw/runtime"
	"github.com/ava-labs/hypercw/state"
)

type Response struct {
	// The index of the step that generated this response.
	ID int `json:"id"`
	// Address of the instance created by an instantiate step.
	Address    string              `json:"address,omitempty"`
	Attributes []runtime.Attribute `json:"attributes,omitempty"`
	Messages   []runtime.SubMsg    `json:"messages,omitempty"`
	Result     json.RawMessage     `json:"result,omitempty"`
	Keys       state.Keys          `json:"keys,omitempty"`
	Error      string              `json:"error,omitempty"`
}

func (r *Response) attribute(key string) (string, bool) {
	for _, a := range r.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Simulator runs plans against a runtime. Instances created by a plan can be
// referred to by later steps as step_N.
type Simulator struct {
	log logging.Logger
	rt  api.Runtime

	instances map[string]string
}

func New(log logging.Logger, rt api.Runtime) *Simulator {
	return &Simulator{
		log:       log,
		rt:        rt,
		instances: make(map[string]string),
	}
}

// Run executes every step of [plan], writing one JSON response per line to
// [out]. It stops at the first failed assertion. A step that errors without
// an error assertion is a failed assertion.
func (s *Simulator) Run(ctx context.Context, plan *Plan, out io.Writer) ([]*Response, error) {
	if err := plan.Verify(); err != nil {
		return nil, err
	}
	s.log.Info("simulation",
		zap.String("plan", plan.Name),
		zap.String("description", plan.Description),
	)

	enc := json.NewEncoder(out)
	responses := make([]*Response, 0, len(plan.Steps))
	for i, step := range plan.Steps {
		s.log.Info("simulation",
			zap.Int("step", i),
			zap.String("description", step.Description),
			zap.String("endpoint", string(step.Endpoint)),
		)

		if step.Sender == "" {
			step.Sender = plan.Sender
		}
		resp := &Response{ID: i}
		if err := s.runStep(ctx, i, step, resp); err != nil {
			resp.Error = err.Error()
		}
		responses = append(responses, resp)
		if err := enc.Encode(resp); err != nil {
			return responses, err
		}
		if err := check(step.Require, resp); err != nil {
			return responses, fmt.Errorf("step %d: %w", i, err)
		}
	}
	return responses, nil
}

func (s *Simulator) resolve(ref string) (string, error) {
	if !strings.HasPrefix(ref, "step_") {
		return ref, nil
	}
	addr, ok := s.instances[ref]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownStepRef, ref)
	}
	return addr, nil
}

func (s *Simulator) runStep(ctx context.Context, i int, step Step, resp *Response) error {
	if step.Endpoint == InstantiateEndpoint {
		addr, r, err := s.rt.Instantiate(ctx, step.Code, step.Sender, step.Label, step.Msg)
		if err != nil {
			return err
		}
		s.instances[fmt.Sprintf("step_%d", i)] = addr
		resp.Address = addr
		resp.Attributes = r.Attributes
		resp.Messages = r.Messages
		return nil
	}

	contract, err := s.resolve(step.Contract)
	if err != nil {
		return err
	}
	switch step.Endpoint {
	case ExecuteEndpoint:
		r, err := s.rt.Execute(ctx, contract, step.Sender, step.Msg)
		if err != nil {
			return err
		}
		resp.Attributes = r.Attributes
		resp.Messages = r.Messages
	case SimulateEndpoint:
		r, keys, err := s.rt.Simulate(ctx, contract, step.Sender, step.Msg)
		resp.Keys = keys
		if err != nil {
			return err
		}
		resp.Attributes = r.Attributes
		resp.Messages = r.Messages
	case QueryEndpoint:
		result, err := s.rt.Query(ctx, contract, step.Msg)
		if err != nil {
			return err
		}
		resp.Result = result
	default:
		return fmt.Errorf("%w: %q", ErrInvalidEndpoint, step.Endpoint)
	}
	return nil
}

func check(req *Require, resp *Response) error {
	if req == nil || req.Error == "" {
		if resp.Error != "" {
			return fmt.Errorf("%w: unexpected error: %s", ErrAssertion, resp.Error)
		}
	}
	if req == nil {
		return nil
	}
	if req.Error != "" && !strings.Contains(resp.Error, req.Error) {
		return fmt.Errorf("%w: expected error %q, got %q", ErrAssertion, req.Error, resp.Error)
	}
	for k, v := range req.Attributes {
		got, ok := resp.attribute(k)
		if !ok || got != v {
			return fmt.Errorf("%w: attribute %s: expected %q, got %q", ErrAssertion, k, v, got)
		}
	}
	if req.Messages != nil && *req.Messages != len(resp.Messages) {
		return fmt.Errorf("%w: expected %d messages, got %d", ErrAssertion, *req.Messages, len(resp.Messages))
	}
	if req.Result != nil && !req.Result.Equal(resp.Result) {
		return fmt.Errorf("%w: expected result %s, got %s", ErrAssertion, *req.Result, resp.Result)
	}
	return nil
}
