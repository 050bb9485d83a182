// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/hypercw/config"
	"github.com/ava-labs/hypercw/node"
)

func newServeCmd(load func() (config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the contract host and its API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			n, err := node.New(cfg)
			if err != nil {
				return err
			}
			runErr := n.Run(cmd.Context())
			n.Logger().Info("node stopped", zap.Error(runErr))
			if err := n.Close(); err != nil && runErr == nil {
				runErr = err
			}
			return runErr
		},
	}
}
