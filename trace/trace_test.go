// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDisabledTracer(t *testing.T) {
	require := require.New(t)

	tracer, err := New(&Config{Enabled: false, SampleRate: 7})
	require.NoError(err)

	ctx, span := tracer.Start(context.Background(), "test")
	require.NotNil(ctx)
	require.False(span.SpanContext().IsValid())
	span.End()
	require.NoError(tracer.Close())
}

func TestEnabledTracer(t *testing.T) {
	require := require.New(t)

	c := NewDefaultConfig()
	c.Enabled = true
	tracer, err := New(&c)
	require.NoError(err)

	_, span := tracer.Start(context.Background(), "test")
	require.True(span.SpanContext().IsValid())
	span.End()
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectedErr error
	}{
		{
			name:   "disabled ignores rate",
			config: Config{SampleRate: -1},
		},
		{
			name:   "never sample",
			config: Config{Enabled: true},
		},
		{
			name:        "negative rate",
			config:      Config{Enabled: true, SampleRate: -0.1},
			expectedErr: ErrInvalidSampleRate,
		},
		{
			name:        "rate above one",
			config:      Config{Enabled: true, SampleRate: 1.5},
			expectedErr: ErrInvalidSampleRate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.config.Validate(), tt.expectedErr)
		})
	}
}

func TestCallAttributesAndFailure(t *testing.T) {
	require := require.New(t)

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	_, span := tracer.Start(context.Background(), "Runtime.Execute", Call("", "contract1", "alice"))
	errBoom := errors.New("boom")
	require.ErrorIs(Fail(span, errBoom), errBoom)
	span.End()

	_, span = tracer.Start(context.Background(), "Runtime.Query", Call("counter", "contract1", ""))
	require.NoError(Fail(span, nil))
	span.End()

	ended := recorder.Ended()
	require.Len(ended, 2)

	failed := ended[0]
	require.Equal(codes.Error, failed.Status().Code)
	require.Equal("boom", failed.Status().Description)
	require.Len(failed.Attributes(), 2)
	require.Equal("contract", string(failed.Attributes()[0].Key))
	require.Equal("alice", failed.Attributes()[1].Value.AsString())
	require.Len(failed.Events(), 1)

	ok := ended[1]
	require.Equal(codes.Unset, ok.Status().Code)
	require.Len(ok.Attributes(), 2)
	require.Equal("counter", ok.Attributes()[0].Value.AsString())
}
