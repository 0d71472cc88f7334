/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package hdr

import (
	"io"
)

// New returns an empty Header ready for use.
func New() Header {
	return Header{vals: make(map[string]string)}
}

// Set sets the header entry associated with key to value, canonicalizing
// key first. If key was already present its value is overwritten in
// place; the key keeps its original position in iteration order (it is
// not moved to the end), mirroring the cookie-identity-replace semantics
// used elsewhere in this module.
func (h *Header) Set(key, value string) {
	if h.vals == nil {
		h.vals = make(map[string]string)
	}
	key = CanonicalHeaderKey(key)
	if _, ok := h.vals[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.vals[key] = value
}

// Del removes the header entry associated with key, if any.
func (h *Header) Del(key string) {
	key = CanonicalHeaderKey(key)
	if _, ok := h.vals[key]; !ok {
		return
	}
	delete(h.vals, key)
	for i, k := range h.keys {
		if k == key {
			h.keys = append(h.keys[:i], h.keys[i+1:]...)
			break
		}
	}
}

// Get returns the value associated with key (canonicalized), and whether
// it was present.
func (h Header) Get(key string) (string, bool) {
	if h.vals == nil {
		return "", false
	}
	v, ok := h.vals[CanonicalHeaderKey(key)]
	return v, ok
}

// Has reports whether key (canonicalized) is present.
func (h Header) Has(key string) bool {
	_, ok := h.Get(key)
	return ok
}

// Len returns the number of header entries.
func (h Header) Len() int {
	return len(h.keys)
}

// ForEach calls fn once per header entry, in insertion order.
func (h Header) ForEach(fn func(key, value string)) {
	for _, k := range h.keys {
		fn(k, h.vals[k])
	}
}

// Clone returns an independent deep copy of h; mutating the copy never
// affects h and vice versa, which is what ResponseValue's copy-constructor
// relies on.
func (h Header) Clone() Header {
	h2 := Header{
		keys: make([]string, len(h.keys)),
		vals: make(map[string]string, len(h.vals)),
	}
	copy(h2.keys, h.keys)
	for k, v := range h.vals {
		h2.vals[k] = v
	}
	return h2
}

// Write writes the header in wire format, one "Key: value\r\n" line per
// entry, in insertion order. The caller is responsible for having
// validated every name/value pair beforehand (see ValidHeaderFieldName /
// ValidHeaderFieldValue) — Write performs no escaping, matching the
// HeadSerializer's "assumes pre-validated input" contract.
func (h Header) Write(w io.Writer) error {
	ws, ok := w.(writeStringer)
	if !ok {
		ws = stringWriter{w}
	}
	for _, k := range h.keys {
		for _, s := range []string{k, ": ", h.vals[k], "\r\n"} {
			if _, err := ws.WriteString(s); err != nil {
				return err
			}
		}
	}
	return nil
}
