// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

//go:generate go run go.uber.org/mock/mockgen -package=runtimemock -destination=runtimemock/executor.go -mock_names=Executor=MockExecutor . Executor

import (
	"context"

	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"

	"github.com/ava-labs/hypercw/utils"
)

// Executor is the downstream collaborator that carries out forwarded
// messages the host cannot route to a local contract (bank transfers,
// staking, ...).
type Executor interface {
	Execute(ctx context.Context, env Env, sender string, msg CosmosMsg) error
}

var _ Executor = (*Outbox)(nil)

// Dispatched is a forwarded message accepted by the [Outbox].
type Dispatched struct {
	Height uint64    `json:"height"`
	Sender string    `json:"sender"`
	Kind   string    `json:"kind"`
	Msg    CosmosMsg `json:"msg"`
}

// Outbox is the default [Executor]. It accepts every message and keeps the
// most recent ones in a bounded buffer for inspection.
type Outbox struct {
	log  logging.Logger
	msgs *utils.BoundedBuffer[Dispatched]
}

func NewOutbox(log logging.Logger, size int) (*Outbox, error) {
	msgs, err := utils.NewBoundedBuffer(size, func(d Dispatched) {
		log.Debug("dropping forwarded message from outbox",
			zap.Uint64("height", d.Height),
			zap.String("kind", d.Kind),
		)
	})
	if err != nil {
		return nil, err
	}
	return &Outbox{log: log, msgs: msgs}, nil
}

func (o *Outbox) Execute(_ context.Context, env Env, sender string, msg CosmosMsg) error {
	d := Dispatched{
		Height: env.BlockHeight,
		Sender: sender,
		Kind:   msg.Kind(),
		Msg:    msg,
	}
	o.log.Info("forwarded message",
		zap.Uint64("height", d.Height),
		zap.String("sender", sender),
		zap.String("kind", d.Kind),
	)
	o.msgs.Insert(d)
	return nil
}

// Messages returns a copy of the buffered messages, oldest first.
func (o *Outbox) Messages() []Dispatched {
	return o.msgs.Items()
}
