// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry holds the matcher's Prometheus metrics and OTel tracer,
// one package-level set registered at import time rather than threaded
// through every constructor, matching the teacher's prefilter metrics idiom.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

// Tracer is the single OTel tracer every matcher span is started from.
var Tracer = otel.Tracer("matcher")

var (
	// MatchLatency tracks end-to-end MatchQuery handling time.
	MatchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "matcher",
		Subsystem: "match",
		Name:      "latency_seconds",
		Help:      "MatchQuery handling latency, normalize through result processing",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	// MatchDedupCount tracks how many rows a query's raw search produced
	// before endpoint deduplication collapsed them.
	MatchDedupCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "matcher",
		Subsystem: "match",
		Name:      "pre_dedup_row_count",
		Help:      "Number of candidate rows seen before dedup-by-endpoint",
		Buckets:   []float64{1, 2, 3, 5, 8, 13},
	})

	// MatchResultTotal counts MatchQuery outcomes by whether a match
	// survived filtering.
	MatchResultTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matcher",
		Subsystem: "match",
		Name:      "result_total",
		Help:      "Total MatchQuery calls by outcome",
	}, []string{"outcome"})

	// InteractionOutcomeTotal counts how interactive dialogue sessions end.
	InteractionOutcomeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matcher",
		Subsystem: "interaction",
		Name:      "outcome_total",
		Help:      "Total interactive sessions by terminal outcome",
	}, []string{"outcome"})

	// IndexBuildLatency tracks full Pattern Index rebuild time.
	IndexBuildLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "matcher",
		Subsystem: "index",
		Name:      "build_latency_seconds",
		Help:      "Pattern Index rebuild latency",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	// IndexBuildRows tracks how many pattern rows a build wrote.
	IndexBuildRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "matcher",
		Subsystem: "index",
		Name:      "build_row_count",
		Help:      "Number of pattern rows written by a Pattern Index build",
		Buckets:   []float64{10, 50, 100, 250, 500, 1000, 5000},
	})
)
