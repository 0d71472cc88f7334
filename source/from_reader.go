/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package source

import (
	"errors"
	"io"
	"sync"
)

var errClosed = errors.New("source: read after close")

// readerSource wraps a blocking io.ReadCloser (a file, a pipe backed
// by a slow upstream) and runs each Read on its own goroutine so the
// blocking call never stalls the pipeline's owning goroutine; the
// pipeline only ever waits on the returned channel or a cancellation
// context: reads never carry their own timeout, but pipeline teardown
// can still cancel the wait.
//
// Close cancels an in-flight read rather than requiring the caller to
// drain it first: it closes r, which for the realistic ReadClosers
// this wraps (files, pipes, net.Conn) makes the goroutine's blocked
// Read return promptly, and then waits on wg for that goroutine to
// actually exit before returning.
//
// Grounded on body.Read/Close's pairing (body.go): EOF is sticky
// (hasSawEOF) and Close is idempotent.
type readerSource struct {
	r io.ReadCloser

	bufSize int

	mu     sync.Mutex
	sawEOF bool
	closed bool
	wg     sync.WaitGroup
}

// FromReader returns a ByteSource reading up to bufSize bytes at a
// time from r. r.Close is called exactly once, the first time Close
// is invoked.
func FromReader(r io.ReadCloser, bufSize int) ByteSource {
	if bufSize <= 0 {
		bufSize = 32 * 1024
	}
	return &readerSource{r: r, bufSize: bufSize}
}

func (s *readerSource) Read() <-chan Result {
	ch := make(chan Result, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ch <- Result{Err: errClosed}
		close(ch)
		return ch
	}
	if s.sawEOF {
		s.mu.Unlock()
		ch <- Result{EOF: true}
		close(ch)
		return ch
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		buf := make([]byte, s.bufSize)
		n, err := s.r.Read(buf)

		switch {
		case err == io.EOF:
			s.mu.Lock()
			s.sawEOF = true
			s.mu.Unlock()
			if n > 0 {
				ch <- Result{Buf: buf[:n]}
			} else {
				ch <- Result{EOF: true}
			}
		case err != nil:
			ch <- Result{Err: err}
		default:
			ch <- Result{Buf: buf[:n]}
		}
		close(ch)
	}()

	return ch
}

func (s *readerSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	err := s.r.Close()
	s.wg.Wait()
	return err
}
