/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package wire serializes a ResponseValue snapshot into the HTTP/1.x
// head byte block. It is a pure function: no I/O, no state. Grounded
// on chunkWriter.writeHeader (chunk_writer.go), which formatted
// status line + headers onto a bufio.Writer; here the target is any
// io.Writer and the header map is the rewritten insertion-ordered
// hdr.Header rather than the original's sorted one.
package wire

import (
	"fmt"
	"io"

	"github.com/basalt-io/respond/hdr"
	"github.com/basalt-io/respond/status"
)

// HeadSerializer writes the status line, headers, Set-Cookie lines
// and the terminating blank line for one response onto w. It assumes
// every header name/value and cookie line has already been validated
// upstream (respond.ResponseValue's mutators); it performs no
// escaping of its own.
//
// httpMinor selects "HTTP/1.0" or "HTTP/1.1"; any value other than 0
// or 1 (e.g. a request-parse failure left the minor version
// unknown) defaults to 1.
func HeadSerializer(w io.Writer, statusCode int, headers hdr.Header, setCookieLines []string, httpMinor int) (int, error) {
	if httpMinor != 0 {
		httpMinor = 1
	}

	written := 0

	n, err := fmt.Fprintf(w, "HTTP/1.%d %03d %s\r\n", httpMinor, statusCode, status.Text(statusCode))
	written += n
	if err != nil {
		return written, err
	}

	var headerErr error
	headers.ForEach(func(k, v string) {
		if headerErr != nil {
			return
		}
		n, err := fmt.Fprintf(w, "%s: %s\r\n", k, v)
		written += n
		headerErr = err
	})
	if headerErr != nil {
		return written, headerErr
	}

	for _, line := range setCookieLines {
		if line == "" {
			continue
		}
		n, err := fmt.Fprintf(w, "%s: %s\r\n", hdr.SetCookieHeader, line)
		written += n
		if err != nil {
			return written, err
		}
	}

	n, err = io.WriteString(w, "\r\n")
	written += n
	return written, err
}
