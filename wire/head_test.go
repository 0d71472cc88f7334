/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basalt-io/respond/hdr"
)

func TestHeadSerializerMinimal(t *testing.T) {
	var buf bytes.Buffer
	h := hdr.New()
	_, err := HeadSerializer(&buf, 200, h, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 200 OK\r\n\r\n", buf.String())
}

func TestHeadSerializerOrderAndCookies(t *testing.T) {
	var buf bytes.Buffer
	h := hdr.New()
	h.Set("Content-Type", "text/plain")
	h.Set("X-Request-Id", "abc")
	_, err := HeadSerializer(&buf, 404, h, []string{"a=1", "b=2"}, 1)
	require.NoError(t, err)

	want := "HTTP/1.1 404 Not Found\r\n" +
		"Content-Type: text/plain\r\n" +
		"X-Request-Id: abc\r\n" +
		"Set-Cookie: a=1\r\n" +
		"Set-Cookie: b=2\r\n" +
		"\r\n"
	assert.Equal(t, want, buf.String())
}

func TestHeadSerializerUnknownMinorDefaultsTo11(t *testing.T) {
	var buf bytes.Buffer
	_, err := HeadSerializer(&buf, 200, hdr.New(), nil, -1)
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 200 OK\r\n\r\n", buf.String())
}

func TestHeadSerializerSkipsEmptyCookieLines(t *testing.T) {
	var buf bytes.Buffer
	_, err := HeadSerializer(&buf, 200, hdr.New(), []string{""}, 1)
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 200 OK\r\n\r\n", buf.String())
}
