/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package pipeline implements BodyPipeline: the asynchronous state
// machine that couples a source.ByteSource with a sink.TcpConnection,
// enforcing framing against a declared body length and a minimum
// write-throughput policy. It is the heart of the engine.
//
// Concurrency model: the original design is a single-threaded,
// cooperative event loop with exactly two suspension points (await
// read, await writable), resumed by a tagged Goto. Go has no native
// coroutine-suspend primitive matching that shape, so Run executes on
// its own goroutine and blocks at precisely those two points using
// channel receives / select - an enum-dispatched loop driven by state
// transitions. Everything else about the state machine (the state
// names, the transition table, the error taxonomy) is carried over
// unchanged.
package pipeline

import (
	"time"

	"github.com/basalt-io/respond/sink"
	"github.com/basalt-io/respond/source"
)

// state names the BodyPipeline's resumption points, mirroring the
// original design's Goto tags.
type state int

const (
	stateStartWrite state = iota
	statePipeBody
	stateDrainMark
	stateToFlushAll
	stateFlushAll
	stateBodyErr
	stateConnErr
	stateEnd
)

// Config is the per-response configuration snapshot BodyPipeline
// consults: outbound buffer high watermark, minimum throughput, and
// the write-await timeout. See config.EngineConfig for the
// server-wide defaults these are drawn from.
type Config struct {
	HighMark      int64
	MinThroughput int64 // bytes/sec, 0 disables the check
	WriteTimeout  time.Duration
}

// Outcome is BodyPipeline's terminal report. Both BodyError and
// ConnError may be set (a benign body error followed by a connection
// error during the subsequent flush), per the state machine's End state.
type Outcome struct {
	BodyError error
	ConnError error

	HeadLength   int64
	BodyTotal    int64
	WrittenTotal int64

	// IsLast reflects the final lifecycle decision: it starts as
	// Input.IsLast but is forced true the moment either error slot
	// is set: a corrupted stream can't be reused.
	IsLast bool
}

// OK reports whether the pipeline ended with neither error slot set.
func (o Outcome) OK() bool {
	return o.BodyError == nil && o.ConnError == nil
}

// Input bundles everything Run needs for one response emission.
type Input struct {
	Conn sink.TcpConnection

	// Head is the already-serialized response head (wire.HeadSerializer's
	// output); it rides into the write queue at StartWrite.
	Head []byte

	Source source.ByteSource

	// DeclaredBodyLength is the entity's advertised length, or -1 if
	// unknown (a negative value means the length is unknown).
	DeclaredBodyLength int64

	// IsLast marks this as the final response on the connection;
	// ConnectionLifecycle terminators are appended before the final
	// flush when true.
	IsLast bool

	Cfg Config
}
