/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package respond

import (
	"strconv"
	"strings"
	"time"

	"github.com/basalt-io/respond/hdr"
)

// Cookie is a single Set-Cookie entry. Identity for replace-in-place
// purposes is the triple (Name, Domain, Path), per RFC 6265.
//
// Grounded on cli.Cookie (cli/types_cookie.go) and its
// wire String() method (cli/cookie.go); request-side fields the
// teacher carries (RawExpires, Raw, Unparsed) are dropped since this
// engine only emits cookies, never parses them.
type Cookie struct {
	Name  string
	Value string

	Path     string
	Domain   string
	Expires  time.Time
	MaxAge   int
	Secure   bool
	HttpOnly bool
}

func (c Cookie) identity() cookieIdentity {
	return cookieIdentity{name: c.Name, domain: c.Domain, path: c.Path}
}

type cookieIdentity struct {
	name, domain, path string
}

// String serializes c as a Set-Cookie line value (everything after
// "Set-Cookie: "). It returns the empty string if c.Name is not a
// valid cookie-name token.
func (c Cookie) String() string {
	if !isCookieNameValid(c.Name) {
		return ""
	}
	var b strings.Builder
	b.WriteString(sanitizeCookieValuePair(c.Name, c.Value))

	if len(c.Path) > 0 {
		b.WriteString("; Path=")
		b.WriteString(sanitizeCookiePath(c.Path))
	}
	if len(c.Domain) > 0 {
		if validCookieDomain(c.Domain) {
			d := c.Domain
			if d[0] == '.' {
				d = d[1:]
			}
			b.WriteString("; Domain=")
			b.WriteString(d)
		}
	}
	if validCookieExpires(c.Expires) {
		b.WriteString("; Expires=")
		b.WriteString(c.Expires.UTC().Format(hdr.TimeFormat))
	}
	if c.MaxAge > 0 {
		b.WriteString("; Max-Age=")
		b.WriteString(strconv.Itoa(c.MaxAge))
	} else if c.MaxAge < 0 {
		b.WriteString("; Max-Age=0")
	}
	if c.HttpOnly {
		b.WriteString("; HttpOnly")
	}
	if c.Secure {
		b.WriteString("; Secure")
	}
	return b.String()
}

func sanitizeCookieValuePair(name, value string) string {
	return name + "=" + sanitizeCookieValue(value)
}

func isCookieNameValid(name string) bool {
	if name == "" {
		return false
	}
	return strings.IndexFunc(name, func(r rune) bool { return !hdr.IsTokenRune(r) }) == -1
}

func validCookieValueByte(b byte) bool {
	return 0x20 <= b && b < 0x7f && b != '"' && b != ';' && b != '\\'
}

func sanitizeCookieValue(v string) string {
	v = sanitizeOrWarn(v, validCookieValueByte)
	if len(v) == 0 {
		return v
	}
	if strings.IndexByte(v, ' ') >= 0 || strings.IndexByte(v, ',') >= 0 {
		return `"` + v + `"`
	}
	return v
}

func sanitizeCookiePath(v string) string {
	return sanitizeOrWarn(v, validCookiePathByte)
}

func validCookiePathByte(b byte) bool {
	return 0x20 <= b && b < 0x7f && b != ';'
}

func sanitizeOrWarn(v string, valid func(byte) bool) string {
	ok := true
	for i := 0; i < len(v); i++ {
		if valid(v[i]) {
			continue
		}
		ok = false
		break
	}
	if ok {
		return v
	}
	buf := make([]byte, 0, len(v))
	for i := 0; i < len(v); i++ {
		if b := v[i]; valid(b) {
			buf = append(buf, b)
		}
	}
	return string(buf)
}

func validCookieDomain(v string) bool {
	if isCookieDomainName(v) {
		return true
	}
	return len(v) > 0 && v[0] == '[' && v[len(v)-1] == ']'
}

func isCookieDomainName(s string) bool {
	if len(s) == 0 {
		return false
	}
	if len(s) > 255 {
		return false
	}

	if s[0] == '.' {
		s = s[1:]
	}
	last := byte('.')
	ok := false
	partlen := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		default:
			return false
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_':
			ok = true
			partlen++
		case '0' <= c && c <= '9':
			partlen++
		case c == '-':
			if last == '.' {
				return false
			}
			partlen++
		case c == '.':
			if last == '.' || last == '-' {
				return false
			}
			if partlen > 63 || partlen == 0 {
				return false
			}
			partlen = 0
		}
		last = c
	}
	if last == '-' || partlen > 63 {
		return false
	}
	return ok
}

func validCookieExpires(t time.Time) bool {
	return t.Year() >= 1601
}
