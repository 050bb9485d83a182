// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var endpointCmd = &cobra.Command{
	Use:   "endpoint",
	Short: "Manage endpoint",
	RunE: func(cmd *cobra.Command, _ []string) error {
		endpoint, err := getConfigValue(cmd, "endpoint", true)
		if err != nil {
			return fmt.Errorf("failed to get endpoint: %w", err)
		}
		return printValue(cmd, valueResponse{Key: "endpoint", Value: endpoint})
	},
}

var endpointSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the endpoint URL",
	RunE: func(cmd *cobra.Command, _ []string) error {
		endpoint, err := cmd.Flags().GetString("endpoint")
		if err != nil {
			return fmt.Errorf("failed to get endpoint flag: %w", err)
		}
		if endpoint == "" {
			return errors.New("endpoint is required")
		}
		if err := setConfigValue("endpoint", endpoint); err != nil {
			return fmt.Errorf("failed to update config: %w", err)
		}
		return printValue(cmd, valueResponse{Key: "endpoint", Value: endpoint, Set: true})
	},
}

type valueResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Set   bool   `json:"set,omitempty"`
}

func (r valueResponse) String() string {
	if r.Set {
		return fmt.Sprintf("%s set to: %s", r.Key, r.Value)
	}
	return r.Value
}

func init() {
	rootCmd.AddCommand(endpointCmd)
	endpointCmd.AddCommand(endpointSetCmd)
	endpointSetCmd.Flags().String("endpoint", "", "Endpoint URL to set")

	if err := endpointSetCmd.MarkFlagRequired("endpoint"); err != nil {
		log.Fatalf("failed to mark endpoint flag as required: %s", err)
	}
}
