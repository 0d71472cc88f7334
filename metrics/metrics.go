/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package metrics holds the engine's Prometheus collectors. None of
// this belongs to the response-emission domain proper, but ambient
// observability is carried the way the rest of the example fleet
// instruments its hot paths with client_golang.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// BodyBytesWritten counts body bytes the pipeline has handed to
	// the sink's write queue, labeled by outcome.
	BodyBytesWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "respond_body_bytes_written_total",
		Help: "Body bytes queued for write by the response-emission engine.",
	}, []string{"outcome"})

	// WriteStalls counts PipeBody iterations that had to drive the
	// socket because a read was not immediately ready.
	WriteStalls = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "respond_write_stalls_total",
		Help: "Number of read-stall branches taken while piping a response body.",
	})

	// ThroughputViolations counts responses terminated by the
	// minimum-throughput policy.
	ThroughputViolations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "respond_throughput_violations_total",
		Help: "Responses whose connection was closed for falling below writeMinThroughput.",
	})

	// HeadBytes observes the serialized size of each response head.
	HeadBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "respond_head_bytes",
		Help:    "Size in bytes of the serialized response head (status line + headers + Set-Cookie lines).",
		Buckets: prometheus.ExponentialBuckets(32, 2, 10),
	})
)

// MustRegister registers every collector in this package against reg.
// Call once at server startup.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(BodyBytesWritten, WriteStalls, ThroughputViolations, HeadBytes)
}
