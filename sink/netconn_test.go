/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package sink

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// net.Pipe is unbuffered: every Write blocks until a matching Read,
// so it reliably reproduces the "nobody is draining yet" case Write's
// short write deadline is meant to approximate.

func TestNetConnWriteSwallowsImmediateDeadlineTimeout(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	c := NewNetConn(client)
	c.QueueWrite([]byte("hello"))

	remaining, err := c.Write()
	require.NoError(t, err, "a would-block timeout on Write's short deadline must not surface as a connection error")
	assert.EqualValues(t, 5, remaining)
}

func TestNetConnAwaitWritableDrainsOnceReaderAppears(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	c := NewNetConn(client)
	c.QueueWrite([]byte("hello"))

	go func() {
		buf := make([]byte, 5)
		server.Read(buf)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.AwaitWritable(ctx))
	assert.EqualValues(t, 0, c.GetWriteQueueSize())
}

func TestNetConnAwaitWritableTimesOutWhenNeverDrained(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	c := NewNetConn(client)
	c.QueueWrite([]byte("hello"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := c.AwaitWritable(ctx)
	assert.ErrorIs(t, err, ErrWriteTimeout)
}

func TestNetConnCloseIsIdempotent(t *testing.T) {
	client, _ := net.Pipe()
	c := NewNetConn(client)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}
