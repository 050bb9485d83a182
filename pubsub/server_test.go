// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	u := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = resp.Body.Close()
		_ = conn.Close()
	})
	return conn
}

func readBatch(t *testing.T, conn *websocket.Conn) [][]byte {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	msgs, err := ParseBatchMessage(1<<20, frame)
	require.NoError(t, err)
	return msgs
}

// TestServerPublish attaches a connection, publishes to it and checks the
// connection is dropped from the server once the peer goes away.
func TestServerPublish(t *testing.T) {
	require := require.New(t)

	server := New(logging.NoLog{}, NewDefaultServerConfig(), nil)
	srv := httptest.NewServer(server)
	defer srv.Close()

	webCon := dial(t, srv)
	require.Eventually(func() bool { return server.Len() == 1 }, time.Second, 10*time.Millisecond)

	inactive := server.Publish([]byte(`"dummy_msg"`), server.conns)
	require.Empty(inactive)
	require.Equal([][]byte{[]byte(`"dummy_msg"`)}, readBatch(t, webCon))

	require.NoError(webCon.Close())
	require.Eventually(func() bool { return server.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestServerPublishSpecific(t *testing.T) {
	require := require.New(t)

	server := New(logging.NoLog{}, NewDefaultServerConfig(), nil)
	srv := httptest.NewServer(server)
	defer srv.Close()

	webCon1 := dial(t, srv)
	require.Eventually(func() bool { return server.Len() == 1 }, time.Second, 10*time.Millisecond)
	first := server.conns.Conns()[0]
	webCon2 := dial(t, srv)
	require.Eventually(func() bool { return server.Len() == 2 }, time.Second, 10*time.Millisecond)

	to := NewConnections()
	to.Add(first)
	require.Empty(server.Publish([]byte(`1`), to))
	require.Equal([][]byte{[]byte(`1`)}, readBatch(t, webCon1))

	require.NoError(webCon2.SetReadDeadline(time.Now().Add(100 * time.Millisecond)))
	_, _, err := webCon2.ReadMessage()
	require.Error(err)
}

func TestServerCallback(t *testing.T) {
	require := require.New(t)

	received := make(chan []byte, 2)
	server := New(logging.NoLog{}, NewDefaultServerConfig(), func(msg []byte, _ *Connection) {
		received <- msg
	})
	srv := httptest.NewServer(server)
	defer srv.Close()

	webCon := dial(t, srv)
	batch, err := CreateBatchMessage([][]byte{[]byte(`{"a":1}`), []byte(`[2]`)})
	require.NoError(err)
	require.NoError(webCon.WriteMessage(websocket.TextMessage, batch))

	for _, want := range []string{`{"a":1}`, `[2]`} {
		select {
		case msg := <-received:
			require.JSONEq(want, string(msg))
		case <-time.After(5 * time.Second):
			require.FailNow("callback not invoked")
		}
	}
}

func TestPublishReportsInactive(t *testing.T) {
	require := require.New(t)

	server := New(logging.NoLog{}, NewDefaultServerConfig(), nil)
	srv := httptest.NewServer(server)
	defer srv.Close()

	webCon := dial(t, srv)
	require.Eventually(func() bool { return server.Len() == 1 }, time.Second, 10*time.Millisecond)
	to := NewConnections()
	to.Add(server.conns.Conns()[0])

	require.NoError(webCon.Close())
	require.Eventually(func() bool { return server.Len() == 0 }, time.Second, 10*time.Millisecond)
	require.Len(server.Publish([]byte(`1`), to), 1)
}

func TestMessageBuffer(t *testing.T) {
	require := require.New(t)

	mb := NewMessageBuffer(logging.NoLog{}, 8, 8, time.Hour)
	require.ErrorIs(mb.Send([]byte("123456789")), ErrMessageTooLarge)

	require.NoError(mb.Send([]byte(`"abc"`)))
	// Exceeding the batch size flushes what is pending.
	require.NoError(mb.Send([]byte(`"def"`)))
	require.Equal(`["abc"]`, string(<-mb.Queue))

	require.NoError(mb.Close())
	require.Equal(`["def"]`, string(<-mb.Queue))
	_, ok := <-mb.Queue
	require.False(ok)

	require.ErrorIs(mb.Send([]byte(`1`)), ErrClosed)
	require.ErrorIs(mb.Close(), ErrClosed)
}

func TestMessageBufferDropsWhenQueueFull(t *testing.T) {
	require := require.New(t)

	mb := NewMessageBuffer(logging.NoLog{}, 1, 8, time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(mb.Send([]byte(`"aaa"`)))
	}
	// The second batch found the queue full.
	require.Equal(uint64(1), mb.Dropped())
	require.Equal(`["aaa"]`, string(<-mb.Queue))

	require.NoError(mb.Close())
	require.Equal(`["aaa"]`, string(<-mb.Queue))
}

func TestMessageBufferBatchesUpToMaxSize(t *testing.T) {
	require := require.New(t)

	mb := NewMessageBuffer(logging.NoLog{}, 4, 7, time.Hour)
	require.NoError(mb.Send([]byte(`1`)))
	require.NoError(mb.Send([]byte(`2`)))
	require.NoError(mb.Send([]byte(`3`)))
	require.NoError(mb.Send([]byte(`4`)))
	require.Equal(`[1,2,3]`, string(<-mb.Queue))
	require.NoError(mb.Close())
	require.Equal(`[4]`, string(<-mb.Queue))
}

func TestParseBatchMessage(t *testing.T) {
	require := require.New(t)

	_, err := ParseBatchMessage(4, []byte(`[1,2,3]`))
	require.ErrorIs(err, ErrMessageTooLarge)

	_, err = ParseBatchMessage(64, []byte(`not json`))
	require.ErrorIs(err, ErrBadBatch)

	msgs, err := ParseBatchMessage(64, []byte(`[1, "x"]`))
	require.NoError(err)
	require.Equal([][]byte{[]byte(`1`), []byte(`"x"`)}, msgs)
}

func TestConnectionsUnion(t *testing.T) {
	require := require.New(t)

	a, b, c := &Connection{}, &Connection{}, &Connection{}
	x := NewConnections(a, b)
	y := NewConnections(b, c)

	u := Union(x, nil, y)
	require.Equal(3, u.Len())
	require.True(u.Has(c))

	require.Equal(1, x.Remove(a))
	require.False(x.Has(a))
	require.Equal(3, u.Len())
	require.Zero(y.Remove(b, c))
}
