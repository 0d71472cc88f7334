/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package respond

import "bytes"

// sniffLen is how many leading bytes DetectContentType inspects - the
// matchers below never look further into data than this.
const sniffLen = 512

type sig interface {
	// match returns a Content-Type or "" given data truncated to
	// sniffLen and the offset of the first non-whitespace byte.
	match(data []byte, firstNonWS int) string
}

type exactSig struct {
	sig []byte
	ct  string
}

func (e *exactSig) match(data []byte, firstNonWS int) string {
	if len(data) >= len(e.sig) && bytes.Equal(data[:len(e.sig)], e.sig) {
		return e.ct
	}
	return ""
}

type maskedSig struct {
	mask, pat []byte
	skipWS    bool
	ct        string
}

func (m *maskedSig) match(data []byte, firstNonWS int) string {
	if m.skipWS {
		data = data[firstNonWS:]
	}
	if len(data) < len(m.pat) {
		return ""
	}
	for i, pb := range m.pat {
		masked := data[i] & m.mask[i]
		if masked != pb {
			return ""
		}
	}
	return m.ct
}

type textSig struct{}

func (textSig) match(data []byte, firstNonWS int) string {
	for _, b := range data[firstNonWS:] {
		switch {
		case b <= 0x08,
			b == 0x0B,
			0x0E <= b && b <= 0x1A,
			0x1C <= b && b <= 0x1F:
			return ""
		}
	}
	return "text/plain; charset=utf-8"
}

// sniffSignatures is a reduced signature table (html, xml, the common
// image formats, pdf, gzip, plain text) in the same match-in-order
// shape as the original sniffer; it is not the complete IANA list,
// but it covers the formats an Entity body is realistically served
// with when the caller hasn't set Content-Type.
var sniffSignatures = []sig{
	&maskedSig{
		mask:   []byte("\xFF\xFF\xFF\xFF\xFF"),
		pat:    []byte("<html"),
		skipWS: true,
		ct:     "text/html; charset=utf-8",
	},
	&maskedSig{
		mask:   []byte("\xFF\xFF\xFF\xFF\xFF"),
		pat:    []byte("<?xml"),
		skipWS: true,
		ct:     "text/xml; charset=utf-8",
	},
	&exactSig{sig: []byte("%PDF-"), ct: "application/pdf"},
	&exactSig{sig: []byte("\x1F\x8B\x08"), ct: "application/x-gzip"},
	&exactSig{sig: []byte("GIF87a"), ct: "image/gif"},
	&exactSig{sig: []byte("GIF89a"), ct: "image/gif"},
	&exactSig{sig: []byte("\x89PNG\r\n\x1A\n"), ct: "image/png"},
	&exactSig{sig: []byte("\xFF\xD8\xFF"), ct: "image/jpeg"},
	textSig{},
}

// DetectContentType implements the same algorithm the original
// net/http sniffer does: scan the signature table in order against
// the first sniffLen bytes, returning the first match, or the
// catch-all "application/octet-stream" if nothing matches. Entity
// uses this only when the caller leaves ContentType empty.
func DetectContentType(data []byte) string {
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	firstNonWS := 0
	for ; firstNonWS < len(data) && isWS(data[firstNonWS]); firstNonWS++ {
	}
	for _, s := range sniffSignatures {
		if ct := s.match(data, firstNonWS); ct != "" {
			return ct
		}
	}
	return "application/octet-stream"
}

func isWS(b byte) bool {
	switch b {
	case '\t', '\n', '\x0c', '\r', ' ':
		return true
	}
	return false
}
