/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package status

import "testing"

func TestText(t *testing.T) {
	cases := map[int]string{
		200: "OK",
		404: "Not Found",
		204: "No Content",
		999: "",
	}
	for code, want := range cases {
		if got := Text(code); got != want {
			t.Errorf("Text(%d) = %q, want %q", code, got, want)
		}
	}
}

func TestBodyAllowed(t *testing.T) {
	cases := map[int]bool{
		100: false,
		204: false,
		304: false,
		200: true,
		404: true,
	}
	for code, want := range cases {
		if got := BodyAllowed(code); got != want {
			t.Errorf("BodyAllowed(%d) = %v, want %v", code, got, want)
		}
	}
}
