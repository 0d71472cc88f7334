/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package hdr

import (
	"bytes"
	"testing"
)

func TestHeaderInsertionOrderPreserved(t *testing.T) {
	h := New()
	h.Set("X-B", "2")
	h.Set("X-A", "1")
	h.Set("X-C", "3")

	var got []string
	h.ForEach(func(k, v string) { got = append(got, k+"="+v) })

	want := []string{"X-B=2", "X-A=1", "X-C=3"}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("position %d: got %q want %q (full: %v)", i, got[i], w, got)
		}
	}
}

func TestHeaderSetReplacesInPlace(t *testing.T) {
	h := New()
	h.Set("X-A", "1")
	h.Set("X-B", "2")
	h.Set("X-A", "updated")

	if h.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", h.Len())
	}
	var got []string
	h.ForEach(func(k, v string) { got = append(got, k+"="+v) })
	want := []string{"X-A=updated", "X-B=2"}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("position %d: got %q want %q", i, got[i], w)
		}
	}
}

func TestHeaderSetThenDelRoundTrip(t *testing.T) {
	h1 := New()
	h1.Set("X-A", "1")
	h1.Del("X-A")

	h2 := New()

	var buf1, buf2 bytes.Buffer
	if err := h1.Write(&buf1); err != nil {
		t.Fatal(err)
	}
	if err := h2.Write(&buf2); err != nil {
		t.Fatal(err)
	}
	if buf1.String() != buf2.String() {
		t.Fatalf("set-then-del should equal never-set: %q != %q", buf1.String(), buf2.String())
	}
}

func TestHeaderClone(t *testing.T) {
	h := New()
	h.Set("X-A", "1")
	clone := h.Clone()
	clone.Set("X-A", "2")
	clone.Set("X-B", "3")

	if v, _ := h.Get("X-A"); v != "1" {
		t.Fatalf("mutating clone affected original: %q", v)
	}
	if h.Has("X-B") {
		t.Fatalf("mutating clone added key to original")
	}
}

func TestHeaderWriteOrderAndFormat(t *testing.T) {
	h := New()
	h.Set("Content-Type", "text/plain")
	h.Set("X-Request-Id", "abc")

	var buf bytes.Buffer
	if err := h.Write(&buf); err != nil {
		t.Fatal(err)
	}
	want := "Content-Type: text/plain\r\nX-Request-Id: abc\r\n"
	if buf.String() != want {
		t.Fatalf("got %q want %q", buf.String(), want)
	}
}

func TestCanonicalHeaderKey(t *testing.T) {
	cases := map[string]string{
		"content-type":    "Content-Type",
		"X-REQUEST-ID":    "X-Request-Id",
		"already-Correct": "Already-Correct",
	}
	for in, want := range cases {
		if got := CanonicalHeaderKey(in); got != want {
			t.Errorf("CanonicalHeaderKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidHeaderFieldNameAndValue(t *testing.T) {
	if !ValidHeaderFieldName("X-Custom-Header") {
		t.Error("expected valid token to pass")
	}
	if ValidHeaderFieldName("") {
		t.Error("expected empty name to fail")
	}
	if ValidHeaderFieldName("bad name") {
		t.Error("expected space in name to fail")
	}
	if !ValidHeaderFieldValue("plain value") {
		t.Error("expected plain value to pass")
	}
	if ValidHeaderFieldValue("bad\r\nvalue") {
		t.Error("expected CRLF in value to fail")
	}
	if ValidHeaderFieldValue("bad\x00value") {
		t.Error("expected NUL in value to fail")
	}
}
