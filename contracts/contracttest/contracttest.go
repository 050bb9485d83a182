// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contracttest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/hypercw/address"
	"github.com/ava-labs/hypercw/runtime"
	"github.com/ava-labs/hypercw/state"
)

const (
	ContractAddress = "cosmos2contract"
	BlockHeight     = 12_345
)

var (
	_ state.Mutable = (*InMemoryStore)(nil)

	BlockTime = time.Unix(1_571_797_419, 879_305_533).UTC()
)

// InMemoryStore is an in-memory implementation of `state.Mutable`
type InMemoryStore struct {
	Storage map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		Storage: make(map[string][]byte),
	}
}

func (i *InMemoryStore) GetValue(_ context.Context, key []byte) ([]byte, error) {
	val, ok := i.Storage[string(key)]
	if !ok {
		return nil, database.ErrNotFound
	}
	return val, nil
}

func (i *InMemoryStore) Insert(_ context.Context, key []byte, value []byte) error {
	i.Storage[string(key)] = value
	return nil
}

func (i *InMemoryStore) Remove(_ context.Context, key []byte) error {
	delete(i.Storage, string(key))
	return nil
}

// Snapshot copies the current contents so tests can check a failed call
// wrote nothing.
func (i *InMemoryStore) Snapshot() map[string]string {
	out := make(map[string]string, len(i.Storage))
	for k, v := range i.Storage {
		out[k] = string(v)
	}
	return out
}

// NewDeps returns dependencies backed by a fresh [InMemoryStore] and the
// permissive [address.Mock] validator.
func NewDeps() runtime.Deps {
	return runtime.Deps{
		Storage: NewInMemoryStore(),
		API:     address.Mock{},
	}
}

// Env is a fixed environment for calls made outside of a [runtime.Runtime].
func Env() runtime.Env {
	return runtime.Env{
		BlockHeight:     BlockHeight,
		BlockTime:       BlockTime,
		ContractAddress: ContractAddress,
	}
}

func Info(sender string) runtime.MessageInfo {
	return runtime.MessageInfo{Sender: sender}
}

// Encode JSON encodes [msg], failing the test on error.
func Encode(t testing.TB, msg any) []byte {
	b, err := json.Marshal(msg)
	require.NoError(t, err)
	return b
}

// Instantiate calls the instantiate entry point of [c] and requires it to
// succeed.
func Instantiate(ctx context.Context, t testing.TB, c runtime.Contract, deps runtime.Deps, sender string, msg any) *runtime.Response {
	resp, err := c.Instantiate(ctx, deps, Env(), Info(sender), Encode(t, msg))
	require.NoError(t, err)
	return resp
}

// Query calls the query entry point of [c] and decodes the result into T.
func Query[T any](ctx context.Context, t testing.TB, c runtime.Contract, deps runtime.Deps, msg any) T {
	var out T
	raw, err := c.Query(ctx, deps, Env(), Encode(t, msg))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

// ExecuteTest is a single parameterized test. It calls Execute on the contract with the passed
// message and checks that all assertions pass.
type ExecuteTest struct {
	Name string

	Contract runtime.Contract
	Deps     runtime.Deps
	Sender   string
	// Msg is JSON encoded before the call.
	Msg any

	// ExpectedResponse is compared when set.
	ExpectedResponse *runtime.Response
	ExpectedErr      error

	Assertion func(context.Context, *testing.T, runtime.Deps)
}

// Run executes the [ExecuteTest] and make sure all assertions pass.
func (test *ExecuteTest) Run(ctx context.Context, t *testing.T) {
	t.Run(test.Name, func(t *testing.T) {
		require := require.New(t)

		resp, err := test.Contract.Execute(ctx, test.Deps, Env(), Info(test.Sender), Encode(t, test.Msg))

		require.ErrorIs(err, test.ExpectedErr)
		if test.ExpectedErr != nil {
			require.Nil(resp)
		}
		if test.ExpectedResponse != nil {
			require.Equal(test.ExpectedResponse, resp)
		}

		if test.Assertion != nil {
			test.Assertion(ctx, t, test.Deps)
		}
	})
}

// ExecuteBenchmark is a parameterized benchmark. To avoid using shared state between runs, new
// dependencies are created for each iteration using the provided `CreateDeps` function.
type ExecuteBenchmark struct {
	Name string

	Contract   runtime.Contract
	CreateDeps func() runtime.Deps
	Sender     string
	Msg        any

	Assertion func(context.Context, *testing.B, runtime.Deps)
}

// Run executes the [ExecuteBenchmark] and make sure all the benchmark assertions pass.
func (test *ExecuteBenchmark) Run(ctx context.Context, b *testing.B) {
	require := require.New(b)

	msg := Encode(b, test.Msg)
	deps := make([]runtime.Deps, b.N)
	for i := 0; i < b.N; i++ {
		deps[i] = test.CreateDeps()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := test.Contract.Execute(ctx, deps[i], Env(), Info(test.Sender), msg)
		require.NoError(err)
	}

	b.StopTimer()
	if test.Assertion != nil {
		for i := 0; i < b.N; i++ {
			test.Assertion(ctx, b, deps[i])
		}
	}
}
