// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ava-labs/hypercw/address"
	"github.com/ava-labs/hypercw/consts"
	"github.com/ava-labs/hypercw/runtime"
	"github.com/ava-labs/hypercw/runtime/runtimemock"
	"github.com/ava-labs/hypercw/state"
	"github.com/ava-labs/hypercw/trace"
)

const (
	alice = "alice"
	bob   = "bob"
)

var (
	errBoom = errors.New("boom")

	valueItem  = state.NewItem[string]("value")
	senderItem = state.NewItem[string]("sender")
)

// probe stores a value, remembers its last caller and forwards whatever it is
// told to.
type probe struct{}

type probeMsg struct {
	Set     *string             `json:"set,omitempty"`
	Forward []runtime.CosmosMsg `json:"forward,omitempty"`
	Fail    bool                `json:"fail,omitempty"`
}

type probeState struct {
	Value  string `json:"value"`
	Sender string `json:"sender"`
}

func (probe) Instantiate(ctx context.Context, deps runtime.Deps, _ runtime.Env, info runtime.MessageInfo, raw []byte) (*runtime.Response, error) {
	if err := runtime.SetContractVersion(ctx, deps.Storage, "crates.io:probe", "0.1.0"); err != nil {
		return nil, err
	}
	return probe{}.Execute(ctx, deps, runtime.Env{}, info, raw)
}

func (probe) Execute(ctx context.Context, deps runtime.Deps, _ runtime.Env, info runtime.MessageInfo, raw []byte) (*runtime.Response, error) {
	var msg probeMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, err
	}
	if err := senderItem.Save(ctx, deps.Storage, info.Sender); err != nil {
		return nil, err
	}
	if msg.Set != nil {
		if err := valueItem.Save(ctx, deps.Storage, *msg.Set); err != nil {
			return nil, err
		}
	}
	if msg.Fail {
		return nil, errBoom
	}
	return runtime.NewResponse().
		AddAttribute("action", "probe").
		AddMessages(msg.Forward), nil
}

func (probe) Query(ctx context.Context, deps runtime.Deps, _ runtime.Env, _ []byte) ([]byte, error) {
	value, _, err := valueItem.MayLoad(ctx, deps.Storage)
	if err != nil {
		return nil, err
	}
	sender, _, err := senderItem.MayLoad(ctx, deps.Storage)
	if err != nil {
		return nil, err
	}
	return json.Marshal(probeState{Value: value, Sender: sender})
}

type capture struct {
	l      sync.Mutex
	events []*runtime.Event
}

func (c *capture) Publish(e *runtime.Event) {
	c.l.Lock()
	defer c.l.Unlock()
	c.events = append(c.events, e)
}

func newRuntime(t *testing.T, cfg runtime.Config, opts ...runtime.Option) (*runtime.Runtime, state.MutableStorage) {
	require := require.New(t)

	tracer, err := trace.New(&trace.Config{Enabled: false})
	require.NoError(err)
	db := state.MutableStorage{}
	rt, err := runtime.New(logging.NoLog{}, tracer, db, address.Mock{}, cfg, opts...)
	require.NoError(err)
	require.NoError(rt.Register("probe", probe{}))
	return rt, db
}

func set(v string) probeMsg {
	return probeMsg{Set: &v}
}

func encode(t *testing.T, v any) []byte {
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func query(t *testing.T, rt *runtime.Runtime, contract string) probeState {
	require := require.New(t)

	raw, err := rt.Query(context.Background(), contract, []byte(`{}`))
	require.NoError(err)
	var s probeState
	require.NoError(json.Unmarshal(raw, &s))
	return s
}

func TestRegister(t *testing.T) {
	require := require.New(t)

	rt, _ := newRuntime(t, runtime.NewDefaultConfig())
	require.ErrorIs(rt.Register("probe", probe{}), runtime.ErrDuplicateCode)
	require.NoError(rt.Register("another", probe{}))
	require.Equal([]string{"another", "probe"}, rt.Codes())
}

func TestInstantiate(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	rt, _ := newRuntime(t, runtime.NewDefaultConfig())
	first, resp, err := rt.Instantiate(ctx, "probe", alice, "first", encode(t, set("a")))
	require.NoError(err)
	value, ok := resp.Attribute("action")
	require.True(ok)
	require.Equal("probe", value)

	second, _, err := rt.Instantiate(ctx, "probe", bob, "first", encode(t, set("b")))
	require.NoError(err)
	require.NotEqual(first, second)

	// Derived addresses are valid for the configured prefix.
	bech := address.NewBech32(consts.HRP)
	for _, addr := range []string{first, second} {
		_, err := bech.AddrValidate(addr)
		require.NoError(err)
	}

	require.Equal(probeState{Value: "a", Sender: alice}, query(t, rt, first))
	require.Equal(probeState{Value: "b", Sender: bob}, query(t, rt, second))

	instances, err := rt.Instances(ctx)
	require.NoError(err)
	require.Len(instances, 2)
	require.Equal(first, instances[0].Address)
	require.Equal(alice, instances[0].Creator)
	require.Equal("probe", instances[0].Code)
	require.Equal(second, instances[1].Address)
	require.Equal(bob, instances[1].Creator)

	version, err := rt.ContractVersion(ctx, first)
	require.NoError(err)
	require.Equal(runtime.ContractVersion{Contract: "crates.io:probe", Version: "0.1.0"}, version)
}

func TestInstantiateRejects(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		sender string
		label  string
		msg    []byte
		err    error
	}{
		{
			name:   "unknown code",
			code:   "missing",
			sender: alice,
			msg:    []byte(`{}`),
			err:    runtime.ErrUnknownCode,
		},
		{
			name:   "invalid sender",
			code:   "probe",
			sender: "A",
			msg:    []byte(`{}`),
			err:    runtime.ErrInvalidSender,
		},
		{
			name:   "label too long",
			code:   "probe",
			sender: alice,
			label:  strings.Repeat("x", consts.MaxLabelLen+1),
			msg:    []byte(`{}`),
			err:    runtime.ErrLabelTooLong,
		},
		{
			name:   "message too large",
			code:   "probe",
			sender: alice,
			msg:    make([]byte, consts.MaxMessageSize+1),
			err:    runtime.ErrMessageTooLarge,
		},
		{
			name:   "contract error",
			code:   "probe",
			sender: alice,
			msg:    []byte(`{"fail":true}`),
			err:    errBoom,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			rt, db := newRuntime(t, runtime.NewDefaultConfig())
			_, _, err := rt.Instantiate(context.Background(), tt.code, tt.sender, tt.label, tt.msg)
			require.ErrorIs(err, tt.err)
			require.Empty(db)

			instances, err := rt.Instances(context.Background())
			require.NoError(err)
			require.Empty(instances)
		})
	}
}

func TestExecuteFailureLeavesNoWrites(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	rt, db := newRuntime(t, runtime.NewDefaultConfig())
	contract, _, err := rt.Instantiate(ctx, "probe", alice, "", encode(t, set("a")))
	require.NoError(err)

	before := make(map[string]string, len(db))
	for k, v := range db {
		before[k] = string(v)
	}

	v := "b"
	_, err = rt.Execute(ctx, contract, bob, encode(t, probeMsg{Set: &v, Fail: true}))
	require.ErrorIs(err, errBoom)

	after := make(map[string]string, len(db))
	for k, v := range db {
		after[k] = string(v)
	}
	require.Equal(before, after)
	require.Equal(probeState{Value: "a", Sender: alice}, query(t, rt, contract))
}

func TestExecuteUnknownContract(t *testing.T) {
	require := require.New(t)

	rt, _ := newRuntime(t, runtime.NewDefaultConfig())
	_, err := rt.Execute(context.Background(), "nobody", alice, []byte(`{}`))
	require.ErrorIs(err, runtime.ErrUnknownContract)
	_, err = rt.Query(context.Background(), "nobody", []byte(`{}`))
	require.ErrorIs(err, runtime.ErrUnknownContract)
}

func TestForwarding(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	executor := runtimemock.NewMockExecutor(ctrl)
	events := &capture{}
	rt, _ := newRuntime(t, runtime.NewDefaultConfig(),
		runtime.WithExecutor(executor),
		runtime.WithPublisher(events),
	)
	forwarder, _, err := rt.Instantiate(ctx, "probe", alice, "forwarder", []byte(`{}`))
	require.NoError(err)
	target, _, err := rt.Instantiate(ctx, "probe", alice, "target", []byte(`{}`))
	require.NoError(err)

	send := runtime.NewBankSend(bob, runtime.Coins(10, "uatom"))
	call, err := runtime.NewWasmExecute(target, set("forwarded"), nil)
	require.NoError(err)

	executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), forwarder, send).
		Return(nil).
		Times(1)

	resp, err := rt.Execute(ctx, forwarder, bob, encode(t, probeMsg{Forward: []runtime.CosmosMsg{send, call}}))
	require.NoError(err)
	require.Len(resp.Messages, 2)
	require.Equal("bank", resp.Messages[0].Msg.Kind())
	require.Equal("wasm", resp.Messages[1].Msg.Kind())

	// The target saw the forwarding contract as its caller.
	require.Equal(probeState{Value: "forwarded", Sender: forwarder}, query(t, rt, target))

	require.Len(events.events, 3)
	last := events.events[2]
	require.Equal(runtime.ExecuteEvent, last.Type)
	require.Equal(forwarder, last.Contract)
	require.Equal(bob, last.Sender)
	require.NotEmpty(last.ID)
}

func TestForwardingFailureReverts(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	executor := runtimemock.NewMockExecutor(ctrl)
	rt, _ := newRuntime(t, runtime.NewDefaultConfig(), runtime.WithExecutor(executor))
	forwarder, _, err := rt.Instantiate(ctx, "probe", alice, "forwarder", encode(t, set("before")))
	require.NoError(err)
	target, _, err := rt.Instantiate(ctx, "probe", alice, "target", encode(t, set("before")))
	require.NoError(err)

	call, err := runtime.NewWasmExecute(target, set("after"), nil)
	require.NoError(err)
	send := runtime.NewBankSend(bob, runtime.Coins(1, "uatom"))

	executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), forwarder, send).
		Return(errBoom).
		Times(1)

	v := "after"
	_, err = rt.Execute(ctx, forwarder, bob, encode(t, probeMsg{Set: &v, Forward: []runtime.CosmosMsg{call, send}}))
	require.ErrorIs(err, runtime.ErrForwardingFailed)
	require.ErrorIs(err, errBoom)

	require.Equal(probeState{Value: "before", Sender: alice}, query(t, rt, forwarder))
	require.Equal(probeState{Value: "before", Sender: alice}, query(t, rt, target))
}

func TestForwardedContractErrorReverts(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	rt, _ := newRuntime(t, runtime.NewDefaultConfig())
	forwarder, _, err := rt.Instantiate(ctx, "probe", alice, "forwarder", encode(t, set("before")))
	require.NoError(err)
	target, _, err := rt.Instantiate(ctx, "probe", alice, "target", encode(t, set("before")))
	require.NoError(err)

	call, err := runtime.NewWasmExecute(target, probeMsg{Fail: true}, nil)
	require.NoError(err)
	v := "after"
	_, err = rt.Execute(ctx, forwarder, bob, encode(t, probeMsg{Set: &v, Forward: []runtime.CosmosMsg{call}}))
	require.ErrorIs(err, errBoom)
	require.Equal(probeState{Value: "before", Sender: alice}, query(t, rt, forwarder))
}

func TestMaxForwardDepth(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	cfg := runtime.NewDefaultConfig()
	cfg.MaxForwardDepth = 1
	rt, _ := newRuntime(t, cfg)

	var contracts []string
	for _, label := range []string{"a", "b", "c"} {
		addr, _, err := rt.Instantiate(ctx, "probe", alice, label, []byte(`{}`))
		require.NoError(err)
		contracts = append(contracts, addr)
	}

	// b -> c is one hop and allowed.
	toC, err := runtime.NewWasmExecute(contracts[2], set("c"), nil)
	require.NoError(err)
	_, err = rt.Execute(ctx, contracts[1], bob, encode(t, probeMsg{Forward: []runtime.CosmosMsg{toC}}))
	require.NoError(err)

	// a -> b -> c is two.
	toB, err := runtime.NewWasmExecute(contracts[1], probeMsg{Forward: []runtime.CosmosMsg{toC}}, nil)
	require.NoError(err)
	_, err = rt.Execute(ctx, contracts[0], bob, encode(t, probeMsg{Forward: []runtime.CosmosMsg{toB}}))
	require.ErrorIs(err, runtime.ErrMaxDepth)
}

func TestWasmExecuteToUnknownContractIsForwarded(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	rt, _ := newRuntime(t, runtime.NewDefaultConfig())
	forwarder, _, err := rt.Instantiate(ctx, "probe", alice, "", []byte(`{}`))
	require.NoError(err)

	call, err := runtime.NewWasmExecute("remote", set("x"), runtime.Coins(5, "uatom"))
	require.NoError(err)
	_, err = rt.Execute(ctx, forwarder, bob, encode(t, probeMsg{Forward: []runtime.CosmosMsg{call}}))
	require.NoError(err)

	outbox, ok := rt.Executor().(*runtime.Outbox)
	require.True(ok)
	msgs := outbox.Messages()
	require.Len(msgs, 1)
	require.Equal(forwarder, msgs[0].Sender)
	require.Equal("wasm", msgs[0].Kind)
	require.Equal(call, msgs[0].Msg)
}

func TestSimulate(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	rt, db := newRuntime(t, runtime.NewDefaultConfig())
	contract, _, err := rt.Instantiate(ctx, "probe", alice, "", encode(t, set("a")))
	require.NoError(err)
	size := len(db)

	resp, keys, err := rt.Simulate(ctx, contract, bob, encode(t, set("b")))
	require.NoError(err)
	require.NotNil(resp)
	require.NotEmpty(keys)
	for _, perm := range keys {
		require.True(perm.Has(state.Read) || perm.Has(state.Write))
	}

	require.Len(db, size)
	require.Equal(probeState{Value: "a", Sender: alice}, query(t, rt, contract))
}

func TestHeightAdvancesPerCall(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	now := time.Unix(1_700_000_000, 0)
	events := &capture{}
	rt, _ := newRuntime(t, runtime.NewDefaultConfig(),
		runtime.WithPublisher(events),
		runtime.WithClock(func() time.Time { return now }),
	)
	contract, _, err := rt.Instantiate(ctx, "probe", alice, "", []byte(`{}`))
	require.NoError(err)
	_, err = rt.Execute(ctx, contract, bob, []byte(`{}`))
	require.NoError(err)
	// Failed calls do not consume a height.
	_, err = rt.Execute(ctx, contract, bob, []byte(`{"fail":true}`))
	require.ErrorIs(err, errBoom)
	_, err = rt.Execute(ctx, contract, bob, []byte(`{}`))
	require.NoError(err)

	require.Len(events.events, 3)
	for i, e := range events.events {
		require.Equal(uint64(i+1), e.Height)
		require.Equal(now, e.Time)
	}
}
