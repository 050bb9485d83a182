// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ava-labs/hypercw/api/jsonrpc"
	"github.com/ava-labs/hypercw/runtime"
	"github.com/ava-labs/hypercw/utils"
)

func newClient(cmd *cobra.Command) (*jsonrpc.JSONRPCClient, error) {
	endpoint, err := getConfigValue(cmd, "endpoint", true)
	if err != nil {
		return nil, fmt.Errorf("failed to get endpoint: %w", err)
	}
	return jsonrpc.NewJSONRPCClient(endpoint), nil
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the node is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		ok, err := client.Ping(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to ping: %w", err)
		}
		return printValue(cmd, pingResponse{Success: ok})
	},
}

type pingResponse struct {
	Success bool `json:"success"`
}

func (r pingResponse) String() string {
	if r.Success {
		return "✅ node is up"
	}
	return "❌ node did not respond"
}

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "List the contract codes the node can instantiate",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		codes, err := client.Codes(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get codes: %w", err)
		}
		return printValue(cmd, codesResponse{Codes: codes})
	},
}

type codesResponse struct {
	Codes []string `json:"codes"`
}

func (r codesResponse) String() string {
	return strings.Join(r.Codes, "\n")
}

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "List instantiated contracts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		instances, err := client.Contracts(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get contracts: %w", err)
		}
		return printValue(cmd, contractsResponse{Contracts: instances})
	},
}

type contractsResponse struct {
	Contracts []runtime.Instance `json:"contracts"`
}

func (r contractsResponse) String() string {
	return strings.Join(utils.Map(func(inst runtime.Instance) string {
		return fmt.Sprintf("%s code=%s label=%q creator=%s height=%d", inst.Address, inst.Code, inst.Label, inst.Creator, inst.Height)
	}, r.Contracts), "\n")
}

var contractCmd = &cobra.Command{
	Use:   "contract [address]",
	Short: "Show an instance and its stored version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		inst, version, err := client.Contract(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get contract: %w", err)
		}
		return printValue(cmd, contractResponse{Instance: inst, Version: version})
	},
}

type contractResponse struct {
	Instance runtime.Instance        `json:"instance"`
	Version  runtime.ContractVersion `json:"version"`
}

func (r contractResponse) String() string {
	return fmt.Sprintf(
		"address: %s\ncode: %s\nlabel: %s\ncreator: %s\nheight: %d\nversion: %s@%s",
		r.Instance.Address,
		r.Instance.Code,
		r.Instance.Label,
		r.Instance.Creator,
		r.Instance.Height,
		r.Version.Contract,
		r.Version.Version,
	)
}

var queryCmd = &cobra.Command{
	Use:   "query [address] [msg]",
	Short: "Run a read-only query against a contract",
	Long:  "Run a query. The message is inline JSON or a path to a JSON file; when omitted it is prompted for.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		msg, err := decodeMessage("query msg", messageArg(args, 1))
		if err != nil {
			return err
		}
		data, err := client.Query(cmd.Context(), args[0], msg)
		if err != nil {
			return fmt.Errorf("failed to query: %w", err)
		}
		return printValue(cmd, queryResponse{Result: data})
	},
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

func (r queryResponse) String() string {
	return "✅ Query successful:\nResult: " + string(r.Result)
}

var forwardedCmd = &cobra.Command{
	Use:   "forwarded",
	Short: "List the most recent messages handed to the downstream executor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		msgs, err := client.Forwarded(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get forwarded messages: %w", err)
		}
		return printValue(cmd, forwardedResponse{Messages: msgs})
	},
}

type forwardedResponse struct {
	Messages []runtime.Dispatched `json:"messages"`
}

func (r forwardedResponse) String() string {
	var b strings.Builder
	for _, m := range r.Messages {
		fmt.Fprintf(&b, "height=%d sender=%s kind=%s msg=%s\n", m.Height, m.Sender, m.Kind, string(m.Msg))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func init() {
	rootCmd.AddCommand(
		pingCmd,
		codesCmd,
		contractsCmd,
		contractCmd,
		queryCmd,
		forwardedCmd,
	)
}
