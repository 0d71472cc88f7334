/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package source

import (
	"sync"
)

// bytesSource serves a single in-memory buffer as one Read, then
// reports EOF on the next. It never blocks.
type bytesSource struct {
	mu     sync.Mutex
	buf    []byte
	served bool
	closed bool
}

// FromBytes returns a ByteSource that yields buf in a single Read
// call and reports EOF thereafter. Intended for tests and for small,
// fully-buffered entities (a rendered error page, a JSON payload
// already in memory).
func FromBytes(buf []byte) ByteSource {
	return &bytesSource{buf: buf}
}

func (s *bytesSource) Read() <-chan Result {
	ch := make(chan Result, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		ch <- Result{Err: errClosed}
		close(ch)
		return ch
	}
	if s.served {
		ch <- Result{EOF: true}
	} else {
		s.served = true
		ch <- Result{Buf: s.buf}
	}
	close(ch)
	return ch
}

func (s *bytesSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
