/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package respond

import (
	"strings"
	"time"

	"github.com/basalt-io/respond/source"
)

// Entity describes a response body: its content-type, optional
// declared length, cache-relevant metadata, and a factory that
// produces a fresh source.ByteSource per emission (the same entity
// descriptor may be reused across several responses, e.g. a cached
// file body served to many clients).
//
// Entity itself is treated as an immutable value once attached to a
// ResponseValue; per-response overrides are staged through the
// overlay mutators on ResponseValue instead of mutating the Entity.
type Entity struct {
	ContentType string

	// Length is the declared body length in bytes, or -1 when
	// unknown (the pipeline then frames on EOF alone).
	Length int64

	LastModified time.Time
	Expires      time.Time

	// Etag, when non-empty, must already be a quoted-string (e.g.
	// `"abc123"`); EtagIsWeak prefixes the wire value with "W/".
	Etag       string
	EtagIsWeak bool

	// Open produces a fresh ByteSource for one emission. Called at
	// most once per response the entity is attached to.
	Open func() source.ByteSource
}

// EffectiveContentType returns ContentType if set, otherwise the
// result of sniffing peek (the entity body's leading bytes) via
// DetectContentType. Callers that want auto-detection for an entity
// with no declared type peek the body source before attaching the
// Entity to a ResponseValue.
func (e Entity) EffectiveContentType(peek []byte) string {
	if e.ContentType != "" {
		return e.ContentType
	}
	return DetectContentType(peek)
}

func (e Entity) validate() error {
	if e.Etag != "" && !isQuotedString(e.Etag) {
		return &BadEtagError{Value: e.Etag}
	}
	return nil
}

func isQuotedString(s string) bool {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return false
	}
	inner := s[1 : len(s)-1]
	return strings.IndexByte(inner, '"') == -1 && strings.IndexAny(inner, "\r\n") == -1
}

// etagWire returns the wire-form ETag value, with the W/ weak-marker
// prefix applied when EtagIsWeak is set.
func (e Entity) etagWire() string {
	if e.Etag == "" {
		return ""
	}
	if e.EtagIsWeak {
		return "W/" + e.Etag
	}
	return e.Etag
}
