// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"time"

	"github.com/google/uuid"
)

const (
	InstantiateEvent = "instantiate"
	ExecuteEvent     = "execute"
)

// Event is published after every committed instantiate or execute.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Contract   string      `json:"contract"`
	Sender     string      `json:"sender"`
	Height     uint64      `json:"height"`
	Time       time.Time   `json:"time"`
	Attributes []Attribute `json:"attributes"`
	Messages   []SubMsg    `json:"messages"`
}

func newEvent(typ string, env Env, sender string, resp *Response) *Event {
	return &Event{
		ID:         uuid.NewString(),
		Type:       typ,
		Contract:   env.ContractAddress,
		Sender:     sender,
		Height:     env.BlockHeight,
		Time:       env.BlockTime,
		Attributes: resp.Attributes,
		Messages:   resp.Messages,
	}
}

// Publisher receives committed events. Publish must not block.
type Publisher interface {
	Publish(*Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(*Event) {}
