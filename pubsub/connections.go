// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"sync"

	"github.com/ava-labs/avalanchego/utils/set"
)

// Connections is a concurrent set of connections.
type Connections struct {
	lock  sync.RWMutex
	conns set.Set[*Connection]
}

func NewConnections(conns ...*Connection) *Connections {
	c := &Connections{}
	c.conns.Add(conns...)
	return c
}

// Union returns a new set holding the members of every set in [all].
func Union(all ...*Connections) *Connections {
	u := NewConnections()
	for _, c := range all {
		if c != nil {
			u.conns.Add(c.Conns()...)
		}
	}
	return u
}

func (c *Connections) Conns() []*Connection {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.conns.List()
}

func (c *Connections) Has(conn *Connection) bool {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.conns.Contains(conn)
}

// Add is a no-op for members already present.
func (c *Connections) Add(conns ...*Connection) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.conns.Add(conns...)
}

// Remove removes [conns] and returns how many members are left.
func (c *Connections) Remove(conns ...*Connection) int {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.conns.Remove(conns...)
	return c.conns.Len()
}

func (c *Connections) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.conns.Len()
}
