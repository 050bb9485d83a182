// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ava-labs/hypercw/address"
	"github.com/ava-labs/hypercw/consts"
)

var senderCmd = &cobra.Command{
	Use:   "sender",
	Short: "Manage the default sender",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sender, err := getConfigValue(cmd, "sender", true)
		if err != nil {
			return fmt.Errorf("failed to get sender: %w", err)
		}
		return printValue(cmd, valueResponse{Key: "sender", Value: sender})
	},
}

var senderSetCmd = &cobra.Command{
	Use:   "set [address]",
	Short: "Set the default sender address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := address.NewBech32(consts.HRP).AddrValidate(args[0])
		if err != nil {
			return err
		}
		if err := setConfigValue("sender", sender); err != nil {
			return fmt.Errorf("failed to update config: %w", err)
		}
		return printValue(cmd, valueResponse{Key: "sender", Value: sender, Set: true})
	},
}

func init() {
	rootCmd.AddCommand(senderCmd)
	senderCmd.AddCommand(senderSetCmd)
}
