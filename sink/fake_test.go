/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeConnQueueAndWrite(t *testing.T) {
	f := NewFake()
	n := f.QueueWrite([]byte("hello"))
	assert.EqualValues(t, 5, n)

	remaining, err := f.Write()
	require.NoError(t, err)
	assert.EqualValues(t, 0, remaining)
	assert.Equal(t, "hello", string(f.Sent))
}

func TestFakeConnThrottledWriteLeavesRemainder(t *testing.T) {
	f := NewFake()
	f.BytesPerWrite = 2
	f.QueueWrite([]byte("hello"))

	remaining, err := f.Write()
	require.NoError(t, err)
	assert.EqualValues(t, 3, remaining)
	assert.Equal(t, "he", string(f.Sent))

	remaining, err = f.Write()
	require.NoError(t, err)
	assert.EqualValues(t, 1, remaining)
	assert.Equal(t, "hell", string(f.Sent))
}

func TestFakeConnMarkerOrder(t *testing.T) {
	f := NewFake()
	f.QueueWrite([]byte("x"))
	f.QueueMarker(TLSCloseNotify)
	f.QueueMarker(TCPFin)

	_, err := f.Write()
	require.NoError(t, err)
	assert.Equal(t, []Marker{TLSCloseNotify, TCPFin}, f.MarkersSent)
}

func TestFakeConnSurfacesWriteError(t *testing.T) {
	f := NewFake()
	f.QueueWrite([]byte("x"))
	f.FailWith = errors.New("boom")

	_, err := f.Write()
	assert.Error(t, err)
}

func TestFakeConnAwaitWritableHonorsContextDone(t *testing.T) {
	f := NewFake()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := f.AwaitWritable(ctx)
	assert.ErrorIs(t, err, ErrWriteTimeout)
}
