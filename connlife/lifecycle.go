/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package connlife decides, per response, whether it is the last
// response the engine will emit on a connection before it is closed.
//
// Grounded on the closeAfterReply bookkeeping spread across
// response_server.go (initial "true until proven otherwise" default)
// and chunkWriter.writeHeader (chunk_writer.go, the HTTP/1.0
// keep-alive and "Connection: close" rules) - condensed here into a
// single pure decision function instead of mutable state threaded
// through a response object, since this engine only ever emits one
// response's isLast and does not itself read request bodies.
package connlife

import "github.com/basalt-io/respond/hdr"

// Decision captures everything that feeds the isLast determination
// for one response.
type Decision struct {
	// RequestParseFailed means the request line/headers could not be
	// parsed; the stream is in an unknown state and must be closed.
	RequestParseFailed bool

	// RequestMinorVersion is the parsed request's HTTP minor version
	// (0 or 1); ignored when RequestParseFailed is true.
	RequestMinorVersion int

	// RequestConnectionClose is true when the request carried an
	// explicit "Connection: close".
	RequestConnectionClose bool
	// RequestConnectionKeepAlive is true when an HTTP/1.0 request
	// carried an explicit "Connection: keep-alive".
	RequestConnectionKeepAlive bool

	// ResponseHeaders is consulted for an explicit "Connection:
	// close" set by the handler/caller.
	ResponseHeaders hdr.Header

	// ServerShuttingDown means keep-alives are disabled server-wide.
	ServerShuttingDown bool

	// ForceLast is a per-request hint (e.g. a handler explicitly
	// requested connection closure) that always wins.
	ForceLast bool
}

// Decide reports whether this response is the last one the engine
// will emit on the connection.
func Decide(d Decision) bool {
	if d.ForceLast || d.ServerShuttingDown {
		return true
	}
	if d.RequestParseFailed {
		return true
	}
	if v, ok := d.ResponseHeaders.Get(hdr.Connection); ok && hdr.TrimString(v) == "close" {
		return true
	}
	if d.RequestConnectionClose {
		return true
	}
	if d.RequestMinorVersion == 0 && !d.RequestConnectionKeepAlive {
		// HTTP/1.0 defaults to non-persistent unless the client
		// opted in with "Connection: keep-alive".
		return true
	}
	return false
}
