/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package respond

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectContentTypeHTML(t *testing.T) {
	assert.Equal(t, "text/html; charset=utf-8", DetectContentType([]byte("  <html><body>hi</body></html>")))
}

func TestDetectContentTypePNG(t *testing.T) {
	sig := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n', 0, 0, 0}
	assert.Equal(t, "image/png", DetectContentType(sig))
}

func TestDetectContentTypePlainText(t *testing.T) {
	assert.Equal(t, "text/plain; charset=utf-8", DetectContentType([]byte("just some text")))
}

func TestDetectContentTypeFallsBackToOctetStream(t *testing.T) {
	assert.Equal(t, "application/octet-stream", DetectContentType([]byte{0x00, 0x01, 0x02}))
}

func TestEntityEffectiveContentTypePrefersDeclared(t *testing.T) {
	e := Entity{ContentType: "application/json"}
	assert.Equal(t, "application/json", e.EffectiveContentType([]byte("<html>")))
}

func TestEntityEffectiveContentTypeSniffsWhenUnset(t *testing.T) {
	e := Entity{}
	assert.Equal(t, "text/html; charset=utf-8", e.EffectiveContentType([]byte("<html>")))
}
