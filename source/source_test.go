/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package source

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBytesYieldsOnceThenEOF(t *testing.T) {
	s := FromBytes([]byte("hello"))

	r1 := <-s.Read()
	require.NoError(t, r1.Err)
	assert.Equal(t, "hello", string(r1.Buf))
	assert.False(t, r1.EOF)

	r2 := <-s.Read()
	assert.True(t, r2.EOF)
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestFromReaderDrainsUntilEOF(t *testing.T) {
	rc := io.NopCloser(bytes.NewBufferString("abcdef"))
	s := FromReader(rc, 3)

	var got []byte
	for {
		res := <-s.Read()
		require.NoError(t, res.Err)
		if res.EOF {
			break
		}
		got = append(got, res.Buf...)
	}
	assert.Equal(t, "abcdef", string(got))
	assert.NoError(t, s.Close())
}

type closeCountingReader struct {
	closes int
}

func (c *closeCountingReader) Read(p []byte) (int, error) { return 0, io.EOF }
func (c *closeCountingReader) Close() error                { c.closes++; return nil }

func TestFromReaderCloseIsIdempotent(t *testing.T) {
	cr := &closeCountingReader{}
	s := FromReader(cr, 0)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, cr.closes)
}

// blockingReader blocks Read until Close is called, simulating a
// slow upstream whose read never resolves on its own.
type blockingReader struct {
	closed chan struct{}
}

func (b *blockingReader) Read(p []byte) (int, error) {
	<-b.closed
	return 0, io.ErrClosedPipe
}

func (b *blockingReader) Close() error {
	select {
	case <-b.closed:
	default:
		close(b.closed)
	}
	return nil
}

func TestFromReaderCloseCancelsPendingRead(t *testing.T) {
	br := &blockingReader{closed: make(chan struct{})}
	s := FromReader(br, 0)

	ch := s.Read()

	closeErr := make(chan error, 1)
	go func() { closeErr <- s.Close() }()

	select {
	case err := <-closeErr:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Close did not return after cancelling the pending read")
	}

	select {
	case res := <-ch:
		assert.Error(t, res.Err)
	case <-time.After(time.Second):
		t.Fatal("pending read's channel never fired")
	}
}
