/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package connlife

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/basalt-io/respond/hdr"
)

func TestDecideDefaultHTTP11KeepsAlive(t *testing.T) {
	got := Decide(Decision{RequestMinorVersion: 1, ResponseHeaders: hdr.New()})
	assert.False(t, got)
}

func TestDecideHTTP10WithoutKeepAliveCloses(t *testing.T) {
	got := Decide(Decision{RequestMinorVersion: 0, ResponseHeaders: hdr.New()})
	assert.True(t, got)
}

func TestDecideHTTP10WithKeepAliveHeaderStaysOpen(t *testing.T) {
	got := Decide(Decision{RequestMinorVersion: 0, RequestConnectionKeepAlive: true, ResponseHeaders: hdr.New()})
	assert.False(t, got)
}

func TestDecideExplicitResponseConnectionClose(t *testing.T) {
	h := hdr.New()
	h.Set("Connection", "close")
	got := Decide(Decision{RequestMinorVersion: 1, ResponseHeaders: h})
	assert.True(t, got)
}

func TestDecideRequestParseFailureCloses(t *testing.T) {
	got := Decide(Decision{RequestParseFailed: true, ResponseHeaders: hdr.New()})
	assert.True(t, got)
}

func TestDecideServerShuttingDownCloses(t *testing.T) {
	got := Decide(Decision{RequestMinorVersion: 1, ServerShuttingDown: true, ResponseHeaders: hdr.New()})
	assert.True(t, got)
}
