/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package hdr

import "io"

const (
	toLower = 'a' - 'A'

	// Headers
	Accept           = "Accept"
	AcceptEncoding   = "Accept-Encoding"
	CacheControl     = "Cache-Control"
	Connection       = "Connection"
	ContentEncoding  = "Content-Encoding"
	ContentLength    = "Content-Length"
	ContentType      = "Content-Type"
	Date             = "Date"
	Etag             = "Etag"
	Expires          = "Expires"
	LastModified     = "Last-Modified"
	Location         = "Location"
	ServerHeader     = "Server"
	SetCookieHeader  = "Set-Cookie"
	TransferEncoding = "Transfer-Encoding"
	Trailer          = "Trailer"
	UserAgent        = "User-Agent"

	// TimeFormat is the time format used when generating times in HTTP
	// headers. It is like time.RFC1123 but hard-codes GMT as the time
	// zone. The time being formatted must be in UTC for Format to
	// generate the correct result.
	TimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"
)

var (
	// commonHeader interns common header strings, the same trick the
	// teacher package uses to avoid allocating a fresh string for every
	// canonicalized well-known header name.
	commonHeader = make(map[string]string)

	// isTokenTable is a copy of net/http/lex.go's isTokenTable.
	// See https://httpwg.github.io/specs/rfc7230.html#rule.token.separators
	isTokenTable = [127]bool{
		'0': true, '1': true, '2': true, '3': true, '4': true, '5': true, '6': true, '7': true,
		'8': true, '9': true,

		'a': true, 'b': true, 'c': true, 'd': true, 'e': true, 'f': true, 'g': true, 'h': true,
		'i': true, 'j': true, 'k': true, 'l': true, 'm': true, 'n': true, 'o': true, 'p': true,
		'q': true, 'r': true, 's': true, 't': true, 'u': true, 'v': true, 'w': true, 'x': true,
		'y': true, 'z': true,

		'A': true, 'B': true, 'C': true, 'D': true, 'E': true, 'F': true, 'G': true, 'H': true,
		'I': true, 'J': true, 'K': true, 'L': true, 'M': true, 'N': true, 'O': true, 'P': true,
		'Q': true, 'R': true, 'S': true, 'T': true, 'U': true, 'V': true, 'W': true, 'X': true,
		'Y': true, 'Z': true,

		'!':  true,
		'#':  true,
		'$':  true,
		'%':  true,
		'&':  true,
		'\'': true,
		'*':  true,
		'+':  true,
		'-':  true,
		'.':  true,
		'^':  true,
		'_':  true,
		'`':  true,
		'|':  true,
		'~':  true,
	}
)

type (
	// Header is a case-insensitive, single-valued, insertion-ordered
	// header map. Unlike the net/http-derived Header (a
	// map[string][]string serialized in sorted-key order via
	// headerSorter), ResponseValue headers are single-valued and must
	// round-trip on the wire in the exact order they were inserted:
	// header-map order on the wire equals insertion order. Set-Cookie
	// and the framing headers never live here; see the respond package.
	Header struct {
		keys []string          // canonical keys, insertion order
		vals map[string]string // canonical key -> value
	}

	// writeStringer lets Write avoid an extra copy when the destination
	// already implements io.StringWriter, the same trick net/http's
	// header writer uses.
	writeStringer interface {
		WriteString(string) (int, error)
	}

	stringWriter struct {
		w io.Writer
	}
)
