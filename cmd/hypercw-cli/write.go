// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ava-labs/hypercw/cli/prompt"
	"github.com/ava-labs/hypercw/consts"
	"github.com/ava-labs/hypercw/runtime"
	"github.com/ava-labs/hypercw/state"
)

var instantiateCmd = &cobra.Command{
	Use:   "instantiate [code] [msg]",
	Short: "Create a new contract instance",
	Long:  "Create a contract instance. The code is prompted for when omitted, as is the JSON message.",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		code := messageArg(args, 0)
		if code == "" {
			codes, err := client.Codes(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get codes: %w", err)
			}
			code, err = prompt.SelectCode("code", codes)
			if err != nil {
				return err
			}
		}
		msg, err := decodeMessage("instantiate msg", messageArg(args, 1))
		if err != nil {
			return err
		}
		sender, err := getSender(cmd)
		if err != nil {
			return err
		}
		label, err := cmd.Flags().GetString("label")
		if err != nil {
			return err
		}
		if label == "" {
			label, err = prompt.String("label", 1, consts.MaxLabelLen)
			if err != nil {
				return err
			}
		}

		addr, resp, err := client.Instantiate(cmd.Context(), code, sender, label, msg)
		if err != nil {
			return fmt.Errorf("failed to instantiate: %w", err)
		}
		return printValue(cmd, callResponse{Address: addr, Response: resp})
	},
}

var executeCmd = &cobra.Command{
	Use:   "execute [address] [msg]",
	Short: "Execute a message against a contract",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		msg, err := decodeMessage("execute msg", messageArg(args, 1))
		if err != nil {
			return err
		}
		sender, err := getSender(cmd)
		if err != nil {
			return err
		}
		resp, err := client.Execute(cmd.Context(), args[0], sender, msg)
		if err != nil {
			return fmt.Errorf("failed to execute: %w", err)
		}
		return printValue(cmd, callResponse{Address: args[0], Response: resp})
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate [address] [msg]",
	Short: "Execute a message without committing it and report the keys it touches",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		msg, err := decodeMessage("execute msg", messageArg(args, 1))
		if err != nil {
			return err
		}
		sender, err := getSender(cmd)
		if err != nil {
			return err
		}
		resp, keys, reason, err := client.Simulate(cmd.Context(), args[0], sender, msg)
		if err != nil {
			return fmt.Errorf("failed to simulate: %w", err)
		}
		return printValue(cmd, callResponse{Address: args[0], Response: resp, Keys: keys, Error: reason})
	},
}

type callResponse struct {
	Address  string            `json:"address"`
	Response *runtime.Response `json:"response,omitempty"`
	Keys     state.Keys        `json:"keys,omitempty"`
	Error    string            `json:"error,omitempty"`
}

func (r callResponse) String() string {
	var b strings.Builder
	if r.Error != "" {
		fmt.Fprintf(&b, "❌ Call failed: %s\n", r.Error)
	} else {
		b.WriteString("✅ Call successful\n")
	}
	fmt.Fprintf(&b, "Contract: %s\n", r.Address)
	if r.Response != nil {
		for _, attr := range r.Response.Attributes {
			fmt.Fprintf(&b, "  %s=%s\n", attr.Key, attr.Value)
		}
		for i, m := range r.Response.Messages {
			fmt.Fprintf(&b, "  msg[%d] %s: %s\n", i, m.Msg.Kind(), string(m.Msg))
		}
	}
	for key, perm := range r.Keys {
		fmt.Fprintf(&b, "  key %x %s\n", key, perm)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func init() {
	instantiateCmd.Flags().String("label", "", "Label of the new instance")
	rootCmd.AddCommand(
		instantiateCmd,
		executeCmd,
		simulateCmd,
	)
}
