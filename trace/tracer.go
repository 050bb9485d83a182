// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/trace"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	DefaultEndpoint = "http://localhost:9411/api/v2/spans"
	DefaultName     = "hypercw"

	exportTimeout = 10 * time.Second
	// Longer than [exportTimeout] so a pending batch can still be flushed.
	shutdownTimeout = 15 * time.Second
)

var ErrInvalidSampleRate = errors.New("sample rate must be within [0, 1]")

// Config selects whether spans are exported and where to.
type Config struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Fraction of root spans kept. Children follow their parent's decision.
	SampleRate float64 `json:"sampleRate" yaml:"sampleRate"`

	// Zipkin collector URL.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// ServiceName is reported as the zipkin service and names the tracer.
	ServiceName string `json:"serviceName" yaml:"serviceName"`
	Version     string `json:"version" yaml:"version"`
}

func NewDefaultConfig() Config {
	return Config{
		SampleRate:  1,
		Endpoint:    DefaultEndpoint,
		ServiceName: DefaultName,
	}
}

func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("%w: %f", ErrInvalidSampleRate, c.SampleRate)
	}
	return nil
}

type exportingTracer struct {
	oteltrace.Tracer

	provider *sdktrace.TracerProvider
}

// Close flushes buffered spans and stops the exporter.
func (t *exportingTracer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return t.provider.Shutdown(ctx)
}

// New returns a tracer that exports to zipkin, or one that drops every span
// when tracing is disabled.
func New(c *Config) (trace.Tracer, error) {
	name := c.ServiceName
	if name == "" {
		name = DefaultName
	}
	if !c.Enabled {
		return newNoOp(name), nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	exporter, err := zipkin.New(endpoint)
	if err != nil {
		return nil, fmt.Errorf("zipkin exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(name),
		attribute.String("service.version", c.Version),
	)
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithExportTimeout(exportTimeout)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.SampleRate))),
	)
	return &exportingTracer{
		Tracer:   provider.Tracer(name),
		provider: provider,
	}, nil
}

// Call labels a runtime span. Empty values are left off.
func Call(code, contract, sender string) oteltrace.SpanStartEventOption {
	attrs := make([]attribute.KeyValue, 0, 3)
	for _, kv := range [][2]string{
		{"code", code},
		{"contract", contract},
		{"sender", sender},
	} {
		if kv[1] != "" {
			attrs = append(attrs, attribute.String(kv[0], kv[1]))
		}
	}
	return oteltrace.WithAttributes(attrs...)
}

// Fail marks [span] as failed with [err] and returns [err] unchanged.
func Fail(span oteltrace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
