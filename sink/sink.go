/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package sink defines the narrow TcpConnection contract the body
// pipeline drives, plus a real net.Conn-backed implementation and an
// in-memory fake used by tests.
package sink

import (
	"context"
	"errors"
)

// Marker is a sentinel queued alongside real body bytes, honored by
// the transport on flush instead of being written as data.
type Marker int

const (
	// TLSCloseNotify requests a TLS close_notify alert before the
	// underlying socket is closed.
	TLSCloseNotify Marker = iota
	// TCPFin requests a half-close (FIN) of the write side.
	TCPFin
)

// ErrWriteTimeout is the I/O error AwaitWritable returns when a write could not complete within the configured
// writeTimeout; the pipeline folds this into a connErr.
var ErrWriteTimeout = errors.New("sink: write timeout")

// TcpConnection is the narrow contract the body pipeline drives. It
// is owned by exactly one in-flight response at a time; its write
// queue is shared with the framing terminators the pipeline appends
// for the connection's last response.
type TcpConnection interface {
	// QueueWrite enqueues buf for later flushing and
	// returns the total number of bytes now queued. The connection
	// takes ownership of buf.
	QueueWrite(buf []byte) int64

	// QueueMarker enqueues a sentinel marker honored by the
	// transport when it is reached during a flush.
	QueueMarker(m Marker) int64

	// Write flushes as much of the queue as the OS accepts without
	// blocking for long, and returns the number of bytes still
	// queued afterward. A non-nil error indicates a genuine I/O
	// failure, not merely "would block".
	Write() (remaining int64, err error)

	// AwaitWritable blocks until the connection can accept more
	// bytes or ctx is done, whichever comes first. ctx carries the
	// writeTimeout deadline; a context deadline exceeded is reported
	// as ErrWriteTimeout.
	AwaitWritable(ctx context.Context) error

	// GetWriteQueueSize reports the current queued byte count.
	GetWriteQueueSize() int64

	// Close releases the underlying transport. Idempotent.
	Close() error
}
