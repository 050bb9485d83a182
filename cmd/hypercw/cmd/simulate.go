// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"io"
	"os"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/spf13/cobra"

	"github.com/ava-labs/hypercw/config"
	"github.com/ava-labs/hypercw/consts"
	"github.com/ava-labs/hypercw/logger"
	"github.com/ava-labs/hypercw/node"
	"github.com/ava-labs/hypercw/runtime"
	"github.com/ava-labs/hypercw/simulator"
	"github.com/ava-labs/hypercw/state"
	"github.com/ava-labs/hypercw/trace"
)

func newSimulateCmd(load func() (config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate [path]",
		Short: "Run a simulation plan against a fresh in-memory host",
		Long:  "Run a JSON or YAML simulation plan. Use - to read the plan from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			var planBytes []byte
			if args[0] == "-" {
				planBytes, err = io.ReadAll(cmd.InOrStdin())
			} else {
				planBytes, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}
			plan, err := simulator.UnmarshalPlan(planBytes)
			if err != nil {
				return err
			}

			logConfig, err := cfg.Log.Parse()
			if err != nil {
				return err
			}
			// Responses go to stdout so logs must not.
			logConfig.DisableWriterDisplaying = true
			logFactory := logger.NewFactory(logConfig)
			defer logFactory.Close()
			log, err := logFactory.Make(consts.Name + "-simulator")
			if err != nil {
				return err
			}
			tracer, err := trace.New(&trace.Config{Enabled: false})
			if err != nil {
				return err
			}
			validator, err := cfg.AddressValidator()
			if err != nil {
				return err
			}
			rt, err := runtime.New(log, tracer, state.NewDatabaseMutable(memdb.New()), validator, cfg.Runtime)
			if err != nil {
				return err
			}
			if err := node.RegisterContracts(rt); err != nil {
				return err
			}

			_, err = simulator.New(log, rt).Run(cmd.Context(), plan, cmd.OutOrStdout())
			return err
		},
	}
}
