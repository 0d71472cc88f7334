/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package source defines the narrow ByteSource contract consumed by
// the body pipeline and two reference implementations of it.
//
// ByteSource.Read is the Go-channel analog of a
// read() -> Future<Buffer|EOF|Error> contract: it returns immediately
// with a channel that fires exactly once when the read completes, the
// same shape finishAsyncByteRead.Read used around transferWriter's
// ByteReadCh (finish_async_byte_read.go) to bridge a background byte
// read into a blocking call.
package source

// Result is what a pending read resolves to. Exactly one of Buf
// (possibly empty), EOF, or Err is meaningful: EOF true means the
// source is exhausted; Err non-nil means the read failed; otherwise
// Buf holds the bytes produced by this read.
type Result struct {
	Buf []byte
	EOF bool
	Err error
}

// ByteSource is an asynchronous producer of body byte buffers,
// terminating with EOF or an error. It is owned by exactly one
// BodyPipeline at a time.
type ByteSource interface {
	// Read starts a read and returns a channel that receives exactly
	// one Result. Reads never carry a timeout; the caller may wait
	// on the channel arbitrarily long. Callers must not call Read
	// again until the previous read's channel has fired, and must
	// not call Read after Close.
	Read() <-chan Result

	// Close is idempotent. It may be called with a read still
	// pending: implementations cancel that read (e.g. by closing the
	// underlying transport so a blocked Read returns) and wait for it
	// to finish before Close returns, so a caller never needs its own
	// synchronization with a pending Read() channel.
	Close() error
}
