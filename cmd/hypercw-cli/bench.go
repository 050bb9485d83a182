// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/neilotoole/errgroup"
	"github.com/spf13/cobra"

	"github.com/ava-labs/hypercw/cli/prompt"
	"github.com/ava-labs/hypercw/contracts/counter"
)

const maxBenchCalls = 1_000_000

var errCountMismatch = errors.New("count mismatch")

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Instantiate a counter and drive concurrent increments against it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		calls, err := cmd.Flags().GetInt("calls")
		if err != nil {
			return err
		}
		if calls <= 0 {
			calls, err = prompt.Int("calls", maxBenchCalls)
			if err != nil {
				return err
			}
		}
		workers, err := cmd.Flags().GetInt("workers")
		if err != nil {
			return err
		}
		sender, err := getSender(cmd)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		initMsg, err := json.Marshal(counter.InstantiateMsg{Count: 0})
		if err != nil {
			return err
		}
		addr, _, err := client.Instantiate(ctx, counter.ContractName, sender, fmt.Sprintf("bench-%d", time.Now().UnixNano()), initMsg)
		if err != nil {
			return fmt.Errorf("failed to instantiate: %w", err)
		}
		incMsg, err := json.Marshal(counter.ExecuteMsg{Increment: &counter.Increment{}})
		if err != nil {
			return err
		}

		start := time.Now()
		g, gctx := errgroup.WithContextN(ctx, workers, workers*4)
		for i := 0; i < calls; i++ {
			g.Go(func() error {
				_, err := client.Execute(gctx, addr, sender, incMsg)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("failed to execute: %w", err)
		}
		elapsed := time.Since(start)

		queryMsg, err := json.Marshal(counter.QueryMsg{GetCount: &counter.GetCount{}})
		if err != nil {
			return err
		}
		raw, err := client.Query(ctx, addr, queryMsg)
		if err != nil {
			return fmt.Errorf("failed to query: %w", err)
		}
		var count counter.CountResponse
		if err := json.Unmarshal(raw, &count); err != nil {
			return err
		}
		if int(count.Count) != calls {
			return fmt.Errorf("%w: expected %d, got %d", errCountMismatch, calls, count.Count)
		}
		return printValue(cmd, benchResponse{
			Contract: addr,
			Calls:    calls,
			Workers:  workers,
			Elapsed:  elapsed,
			PerSec:   float64(calls) / elapsed.Seconds(),
		})
	},
}

type benchResponse struct {
	Contract string        `json:"contract"`
	Calls    int           `json:"calls"`
	Workers  int           `json:"workers"`
	Elapsed  time.Duration `json:"elapsed"`
	PerSec   float64       `json:"perSec"`
}

func (r benchResponse) String() string {
	return fmt.Sprintf(
		"✅ %d increments on %s with %d workers in %s (%.1f/s)",
		r.Calls,
		r.Contract,
		r.Workers,
		r.Elapsed,
		r.PerSec,
	)
}

func init() {
	benchCmd.Flags().Int("calls", 1000, "Number of increments to send (0 to prompt)")
	benchCmd.Flags().Int("workers", runtime.NumCPU(), "Number of concurrent callers")
	rootCmd.AddCommand(benchCmd)
}
