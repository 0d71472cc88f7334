/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package sink

import (
	"context"
	"net"
	"sync"
	"time"
)

// closeWriter is implemented by *net.TCPConn; half-closing the write
// side lets the client observe EOF while we still drain whatever it
// sends afterward. Grounded on closeWriter/closeWriteAndWait
// (conn.go).
type closeWriter interface {
	CloseWrite() error
}

type queuedItem struct {
	buf    []byte
	marker Marker
	isMark bool
}

// NetConn adapts a net.Conn to TcpConnection. Go's net.Conn has no
// native non-blocking write; NetConn approximates "flush what the OS
// accepts without blocking" by setting a write deadline writeWindow
// in the future before each Write attempt: the kernel takes what fits
// in its send buffer, the deadline fires shortly after the buffer is
// full, the partial write already landed is kept and the rest stays
// queued. (A deadline of exactly "now" would not work: net.Conn
// treats it as already expired and writes nothing.)
type NetConn struct {
	conn net.Conn

	mu       sync.Mutex
	queue    []queuedItem
	queueLen int64
	closed   bool
}

// NewNetConn wraps conn as a TcpConnection.
func NewNetConn(conn net.Conn) *NetConn {
	return &NetConn{conn: conn}
}

func (c *NetConn) QueueWrite(buf []byte) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, queuedItem{buf: buf})
	c.queueLen += int64(len(buf))
	return c.queueLen
}

func (c *NetConn) QueueMarker(m Marker) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, queuedItem{marker: m, isMark: true})
	return c.queueLen
}

func (c *NetConn) GetWriteQueueSize() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queueLen
}

// writeWindow is how long Write lets the underlying write wait for
// the kernel's send buffer to drain before giving up on this attempt.
const writeWindow = time.Millisecond

// Write attempts a non-blocking-ish flush: it sets the write deadline
// writeWindow ahead so the underlying Write call returns shortly after
// the kernel's send buffer is full instead of blocking for the client
// to drain it. drain swallows that specific would-block timeout rather
// than surfacing it as a connection error.
func (c *NetConn) Write() (int64, error) {
	return c.drain(time.Now().Add(writeWindow), true)
}

// AwaitWritable blocks (bounded by ctx's deadline) attempting to
// drain the queue with a real, patient write deadline, so the caller
// observes genuine backpressure relief instead of an instant
// would-block timeout.
func (c *NetConn) AwaitWritable(ctx context.Context) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(30 * time.Second)
	}
	remaining, err := c.drain(deadline, false)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return ErrWriteTimeout
		}
		return err
	}
	if remaining > 0 {
		// Deadline reached with bytes still queued but no error
		// surfaced (e.g. a marker-only drain); treat as timeout.
		select {
		case <-ctx.Done():
			return ErrWriteTimeout
		default:
		}
	}
	return nil
}

// drain flushes as much of the queue as deadline allows. When
// swallowTimeout is set (the Write() caller's short writeWindow
// deadline), a write that times out mid-flight means "stop here, the
// rest stays queued" rather than a connection failure, and is not
// surfaced through outErr. AwaitWritable passes swallowTimeout false
// because its own deadline is a real bounded wait: a timeout there
// means the client genuinely isn't draining and is translated to
// ErrWriteTimeout by the caller.
func (c *NetConn) drain(deadline time.Time, swallowTimeout bool) (int64, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, nil
	}
	queue := c.queue
	c.mu.Unlock()

	c.conn.SetWriteDeadline(deadline)

	consumed := 0
	var outErr error
loop:
	for i := range queue {
		item := queue[i]
		if item.isMark {
			if err := c.honorMarker(item.marker); err != nil {
				outErr = err
				break loop
			}
			consumed++
			continue
		}
		n, err := c.conn.Write(item.buf)
		if n > 0 {
			item.buf = item.buf[n:]
			queue[i] = item
		}
		if err != nil {
			if swallowTimeout {
				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					break loop
				}
			}
			outErr = err
			break loop
		}
		if len(item.buf) == 0 {
			consumed++
		} else {
			break loop
		}
	}

	c.mu.Lock()
	c.queue = queue[consumed:]
	c.queueLen = 0
	for _, item := range c.queue {
		c.queueLen += int64(len(item.buf))
	}
	remaining := c.queueLen
	c.mu.Unlock()

	return remaining, outErr
}

func (c *NetConn) honorMarker(m Marker) error {
	switch m {
	case TLSCloseNotify:
		// TLS close_notify is emitted by the record layer's own
		// Close for a *tls.Conn; a plain net.Conn has no
		// close_notify concept, so this is a no-op here and the
		// actual alert rides on the Close call the connection's
		// owner makes afterward.
		return nil
	case TCPFin:
		if cw, ok := c.conn.(closeWriter); ok {
			return cw.CloseWrite()
		}
		return nil
	}
	return nil
}

func (c *NetConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return c.conn.Close()
}
