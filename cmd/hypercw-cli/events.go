// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/spf13/cobra"

	"github.com/ava-labs/hypercw/api/ws"
	"github.com/ava-labs/hypercw/runtime"
	"github.com/ava-labs/hypercw/utils"
)

var eventsCmd = &cobra.Command{
	Use:   "events [address]",
	Short: "Stream execution events, optionally for a single contract",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint, err := getConfigValue(cmd, "endpoint", true)
		if err != nil {
			return fmt.Errorf("failed to get endpoint: %w", err)
		}
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}
		client, err := ws.NewWebSocketClient(endpoint, 10*time.Second, 128, units.MiB)
		if err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		defer client.Close()
		host, port, err := utils.HostPort(endpoint)
		if err != nil {
			return err
		}
		utils.Outf("{{cyan}}connected to:{{/}} %s:%s\n", host, port)

		contract := messageArg(args, 0)
		if err := client.Subscribe(contract); err != nil {
			return fmt.Errorf("failed to subscribe: %w", err)
		}
		if contract == "" {
			utils.Outf("{{yellow}}listening for all events{{/}}\n")
		} else {
			utils.Outf("{{yellow}}listening for events from:{{/}} %s\n", contract)
		}

		for received := 0; limit <= 0 || received < limit; received++ {
			event, err := client.ListenEvent(cmd.Context())
			if err != nil {
				if errors.Is(err, cmd.Context().Err()) {
					return nil
				}
				return err
			}
			if err := printValue(cmd, eventResponse{event}); err != nil {
				return err
			}
		}
		return nil
	},
}

type eventResponse struct {
	*runtime.Event
}

func (r eventResponse) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "height=%d contract=%s sender=%s id=%s", r.Height, r.Contract, r.Sender, r.ID)
	for _, attr := range r.Attributes {
		fmt.Fprintf(&b, " %s=%s", attr.Key, attr.Value)
	}
	if len(r.Messages) > 0 {
		fmt.Fprintf(&b, " forwarded=%d", len(r.Messages))
	}
	return b.String()
}

func init() {
	eventsCmd.Flags().Int("limit", 0, "Stop after this many events (0 streams until interrupted)")
	rootCmd.AddCommand(eventsCmd)
}
