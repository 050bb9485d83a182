// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ws

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/hypercw/address"
	"github.com/ava-labs/hypercw/contracts/counter"
	"github.com/ava-labs/hypercw/pubsub"
	"github.com/ava-labs/hypercw/runtime"
	"github.com/ava-labs/hypercw/state"
	"github.com/ava-labs/hypercw/trace"
)

func newFeed(t *testing.T) (*runtime.Runtime, *WebSocketServer, string) {
	require := require.New(t)

	tracer, err := trace.New(&trace.Config{Enabled: false})
	require.NoError(err)
	w, handler := NewWebSocketServer(logging.NoLog{}, tracer, NewDefaultConfig())
	rt, err := runtime.New(
		logging.NoLog{},
		tracer,
		state.MutableStorage{},
		address.Mock{},
		runtime.NewDefaultConfig(),
		runtime.WithPublisher(w),
	)
	require.NoError(err)
	require.NoError(rt.Register(counter.ContractName, counter.Contract{}))

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return rt, w, srv.URL
}

func (w *WebSocketServer) listeners(contract string) int {
	w.l.Lock()
	defer w.l.Unlock()

	if contract == "" {
		return w.eventListeners.Len()
	}
	c, ok := w.contractListeners[contract]
	if !ok {
		return 0
	}
	return c.Len()
}

func instantiateCounter(ctx context.Context, t *testing.T, rt *runtime.Runtime, label string) string {
	addr, _, err := rt.Instantiate(ctx, counter.ContractName, "alice", label, []byte(`{"count":1}`))
	require.NoError(t, err)
	return addr
}

func TestEventFeed(t *testing.T) {
	require := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rt, w, uri := newFeed(t)
	counterA := instantiateCounter(ctx, t, rt, "a")
	counterB := instantiateCounter(ctx, t, rt, "b")

	cli, err := NewWebSocketClient(uri, time.Second, 16, 1<<20)
	require.NoError(err)
	defer cli.Close()
	require.NoError(cli.Subscribe(counterB))
	require.Eventually(func() bool { return w.listeners(counterB) == 1 }, 5*time.Second, 10*time.Millisecond)

	_, err = rt.Execute(ctx, counterA, "bob", []byte(`{"increment":{}}`))
	require.NoError(err)
	_, err = rt.Execute(ctx, counterB, "bob", []byte(`{"decrement":{}}`))
	require.NoError(err)

	event, err := cli.ListenEvent(ctx)
	require.NoError(err)
	require.Equal(runtime.ExecuteEvent, event.Type)
	require.Equal(counterB, event.Contract)
	require.Equal("bob", event.Sender)
	require.Equal([]runtime.Attribute{{Key: "method", Value: "try_decrement"}}, event.Attributes)
	require.NotEmpty(event.ID)
}

func TestEventFeedAll(t *testing.T) {
	require := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rt, w, uri := newFeed(t)

	cli, err := NewWebSocketClient(uri, time.Second, 16, 1<<20)
	require.NoError(err)
	defer cli.Close()
	require.NoError(cli.Subscribe(""))
	require.Eventually(func() bool { return w.listeners("") == 1 }, 5*time.Second, 10*time.Millisecond)

	addr := instantiateCounter(ctx, t, rt, "a")
	_, err = rt.Execute(ctx, addr, "bob", []byte(`{"increment":{}}`))
	require.NoError(err)
	// A failed call publishes nothing.
	_, err = rt.Execute(ctx, addr, "bob", []byte(`{"reset":{"count":0}}`))
	require.ErrorIs(err, counter.ErrUnauthorized)

	for _, typ := range []string{runtime.InstantiateEvent, runtime.ExecuteEvent} {
		event, err := cli.ListenEvent(ctx)
		require.NoError(err)
		require.Equal(typ, event.Type)
		require.Equal(addr, event.Contract)
	}
}

func TestInactiveListenersAreDropped(t *testing.T) {
	require := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rt, w, uri := newFeed(t)
	addr := instantiateCounter(ctx, t, rt, "a")

	cli, err := NewWebSocketClient(uri, time.Second, 16, 1<<20)
	require.NoError(err)
	require.NoError(cli.Subscribe(addr))
	require.Eventually(func() bool { return w.listeners(addr) == 1 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(cli.Close())
	require.Eventually(func() bool { return w.s.Len() == 0 }, 5*time.Second, 10*time.Millisecond)

	_, err = rt.Execute(ctx, addr, "bob", []byte(`{"increment":{}}`))
	require.NoError(err)
	require.Zero(w.listeners(addr))

	_, err = cli.ListenEvent(ctx)
	require.ErrorIs(err, ErrClientClosed)
}

func TestBadSubscriptionIsIgnored(t *testing.T) {
	require := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rt, w, uri := newFeed(t)
	addr := instantiateCounter(ctx, t, rt, "a")

	cli, err := NewWebSocketClient(uri, time.Second, 16, 1<<20)
	require.NoError(err)
	defer cli.Close()

	batch, err := pubsub.CreateBatchMessage([][]byte{
		[]byte(`"nope"`),
		[]byte(`{"contract":7}`),
	})
	require.NoError(err)
	cli.writeL.Lock()
	err = cli.conn.WriteMessage(websocket.TextMessage, batch)
	cli.writeL.Unlock()
	require.NoError(err)

	// The connection survives and later subscriptions still register.
	require.NoError(cli.Subscribe(addr))
	require.Eventually(func() bool { return w.listeners(addr) == 1 }, 5*time.Second, 10*time.Millisecond)
	require.Zero(w.listeners(""))
	require.Equal(1, w.s.Len())

	_, err = rt.Execute(ctx, addr, "bob", []byte(`{"increment":{}}`))
	require.NoError(err)
	event, err := cli.ListenEvent(ctx)
	require.NoError(err)
	require.Equal(addr, event.Contract)
}
