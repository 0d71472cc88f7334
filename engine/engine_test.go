/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basalt-io/respond/connlife"
	"github.com/basalt-io/respond/pipeline"
	"github.com/basalt-io/respond/respond"
	"github.com/basalt-io/respond/sink"
	"github.com/basalt-io/respond/source"
)

func testCfg() pipeline.Config {
	return pipeline.Config{HighMark: 16 * 1024, MinThroughput: 1024, WriteTimeout: 2 * time.Second}
}

// S5: a slow client whose throughput never drops below the floor
// still receives the full body, even though every write stalls.
func TestScenarioSlowClientBelowHighMark(t *testing.T) {
	conn := sink.NewFake()
	conn.BytesPerWrite = 4

	resp := respond.New().Status(200)
	require.NoError(t, resp.Header("X-Test", strPtr("s5")))

	e := New(testCfg(), nil)
	out, corrID := e.Emit(context.Background(), resp, Request{
		Conn:               conn,
		DeclaredBodyLength: 11,
		Source:             source.FromBytes([]byte("hello world")),
		HTTPMinorVersion:   1,
		Lifecycle:          connlife.Decision{RequestMinorVersion: 1, ForceLast: true},
	})

	require.True(t, out.OK())
	assert.NotEmpty(t, corrID)
	assert.EqualValues(t, 11, out.BodyTotal)
	assert.Contains(t, string(conn.Sent), "hello world")
	assert.Equal(t, []sink.Marker{sink.TLSCloseNotify, sink.TCPFin}, conn.MarkersSent)
}

// S6: setting a second cookie with the same (name, domain, path)
// identity replaces the first in place rather than appending a
// duplicate Set-Cookie line.
func TestScenarioCookieReplace(t *testing.T) {
	conn := sink.NewFake()

	resp := respond.New().Status(200)
	resp.Cookie(respond.Cookie{Name: "session", Value: "old", Path: "/"})
	resp.Cookie(respond.Cookie{Name: "session", Value: "new", Path: "/"})

	e := New(testCfg(), nil)
	out, _ := e.Emit(context.Background(), resp, Request{
		Conn:               conn,
		DeclaredBodyLength: -1,
		HTTPMinorVersion:   1,
		Lifecycle:          connlife.Decision{RequestMinorVersion: 1, RequestConnectionKeepAlive: true},
	})

	require.True(t, out.OK())
	require.Len(t, resp.Cookies(), 1)
	assert.Equal(t, "new", resp.Cookies()[0].Value)
	assert.Contains(t, string(conn.Sent), "session=new")
	assert.NotContains(t, string(conn.Sent), "session=old")
	assert.False(t, out.IsLast, "keep-alive HTTP/1.1 response is not the connection's last")
}

func TestEmitHonorsForceLastTerminators(t *testing.T) {
	conn := sink.NewFake()
	resp := respond.New().Status(204)

	e := New(testCfg(), nil)
	out, _ := e.Emit(context.Background(), resp, Request{
		Conn:               conn,
		DeclaredBodyLength: -1,
		HTTPMinorVersion:   1,
		Lifecycle:          connlife.Decision{ForceLast: true},
	})

	require.True(t, out.OK())
	assert.True(t, out.IsLast)
	assert.Equal(t, []sink.Marker{sink.TLSCloseNotify, sink.TCPFin}, conn.MarkersSent)
}

func strPtr(s string) *string { return &s }
