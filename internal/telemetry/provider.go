// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ActiveSessions is the OTel meter instrument for interactive session
// concurrency, the one metric the matcher exposes through the OTel metrics
// bridge rather than a plain promauto gauge, so it rides the same
// Prometheus registry as the rest of the service's metrics once Init has
// run.
var ActiveSessions metric.Int64UpDownCounter

func init() {
	var err error
	ActiveSessions, err = otel.Meter("matcher").Int64UpDownCounter(
		"matcher_interaction_active_sessions",
		metric.WithDescription("Number of InteractiveMatch sessions currently open"),
	)
	if err != nil {
		panic(fmt.Errorf("telemetry: register active sessions instrument: %w", err))
	}
}

// Init wires the process-wide TracerProvider and MeterProvider: spans
// started from Tracer are tagged with the given service name and resource
// attributes, and every OTel metric instrument (ActiveSessions included)
// is exported through the Prometheus exporter alongside the promauto
// metrics already registered on the default registry.
//
// The returned shutdown func must be called during graceful shutdown; it
// flushes and releases both providers.
func Init(serviceName string) (shutdown func(context.Context) error, err error) {
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	promExporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("telemetry: build prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExporter),
	)
	otel.SetMeterProvider(mp)

	return func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("telemetry: shutdown tracer provider: %w", err)
		}
		if err := mp.Shutdown(ctx); err != nil {
			return fmt.Errorf("telemetry: shutdown meter provider: %w", err)
		}
		return nil
	}, nil
}
