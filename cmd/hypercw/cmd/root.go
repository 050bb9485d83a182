// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ava-labs/hypercw/config"
)

func NewRootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "hypercw",
		Short: "Contract host for the counter and admin-list contracts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cobra.EnablePrefixMatching = true
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.DisableAutoGenTag = true
	cmd.SilenceUsage = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a JSON or YAML config file")

	load := func() (config.Config, error) {
		return config.Load(configPath)
	}
	cmd.AddCommand(
		newServeCmd(load),
		newSimulateCmd(load),
		newVersionCmd(),
	)
	return cmd
}
