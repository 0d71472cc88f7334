/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package respond holds the response-emission engine's root data
// model: ResponseValue, Cookie and Entity. It is the Go-native
// generalization of response_server.go's "response"
// struct (a server-side ResponseWriter implementation) reduced to
// plain, pre-emission data: no socket, no flushing, no
// WriteHeader/Write state machine here - those concerns live in wire
// and pipeline.
package respond

import (
	"strconv"
	"time"

	"github.com/basalt-io/respond/hdr"
	"github.com/basalt-io/respond/status"
)

// reservedHeader names an engine-owned header never accepted through
// the Header mutator: framing is computed by whatever prepared the
// entity (spec: "the engine does not add or overwrite them"),
// Set-Cookie is derived from the cookie list, and the five
// entity-owned headers are reserved for the attached Entity
// (EffectiveHeaders derives all of them except Content-Encoding,
// which Entity has no field for).
var reservedHeader = map[string]bool{
	hdr.SetCookieHeader:  true,
	hdr.ContentLength:    true,
	hdr.TransferEncoding: true,
	hdr.ContentType:      true,
	hdr.ContentEncoding:  true,
	hdr.Etag:             true,
	hdr.LastModified:     true,
	hdr.Expires:          true,
}

// ResponseValue is an in-memory, mutable record of everything needed
// to emit one HTTP/1.x response: status line, headers, cookies and
// an optional entity. It is built up via the chainable mutators
// below, then handed to the engine, which treats it as frozen from
// the moment emission begins.
type ResponseValue struct {
	httpVersion string
	status      int

	headers hdr.Header
	cookies []Cookie

	entity      *Entity
	entityOver  entityOverlay
	hasEntity   bool
}

// entityOverlay stages per-response overrides of Entity fields
// without mutating the (possibly shared, possibly reused) Entity
// descriptor itself. A zero-value field means "delegate to the
// underlying entity".
type entityOverlay struct {
	lastModified   *time.Time
	expires        *time.Time
	etag           *string
	etagIsWeak     *bool
}

// New returns a ResponseValue defaulting to HTTP/1.1 and status 200,
// no headers, no cookies, no entity.
func New() *ResponseValue {
	return &ResponseValue{
		httpVersion: "1.1",
		status:      200,
		headers:     hdr.New(),
	}
}

// Status sets the response status code and returns the receiver for
// chaining.
func (r *ResponseValue) Status(code int) *ResponseValue {
	r.status = code
	return r
}

// StatusCode returns the currently staged status code.
func (r *ResponseValue) StatusCode() int { return r.status }

// HTTPVersion returns the "major.minor" version string, e.g. "1.1".
func (r *ResponseValue) HTTPVersion() string { return r.httpVersion }

// SetHTTPVersion overrides the default "1.1". The engine does not
// read this field: the status line's version comes from
// engine.Request.HTTPMinorVersion (see the open question in DESIGN.md
// about version mirroring).
func (r *ResponseValue) SetHTTPVersion(v string) *ResponseValue {
	r.httpVersion = v
	return r
}

// Header sets or removes a header. value == nil removes the header
// (a no-op if absent). Returns a *BadHeaderError if name or value is
// not wire-legal, or if name is an engine-owned header (Set-Cookie,
// framing headers, or an entity-owned header).
func (r *ResponseValue) Header(name string, value *string) error {
	canon := hdr.CanonicalHeaderKey(name)
	if reservedHeader[canon] {
		return &BadHeaderError{Name: name, Why: "header is owned by the engine or the entity, not settable directly"}
	}
	if !hdr.ValidHeaderFieldName(name) {
		return &BadHeaderError{Name: name, Why: "not a legal header field name (RFC 7230 token)"}
	}
	if value == nil {
		r.headers.Del(canon)
		return nil
	}
	if !hdr.ValidHeaderFieldValue(*value) {
		return &BadHeaderError{Name: name, Value: *value, Why: "contains a control character other than HTAB"}
	}
	r.headers.Set(canon, *value)
	return nil
}

// Headers returns the header set as built so far. Callers must treat
// it as read-only; ForEach/Clone are the supported access patterns.
func (r *ResponseValue) Headers() hdr.Header { return r.headers }

// Cookie adds c to the cookie list, replacing in place any existing
// cookie sharing c's (Name, Domain, Path) identity (position
// preserved, list length unchanged in the replace case).
func (r *ResponseValue) Cookie(c Cookie) *ResponseValue {
	id := c.identity()
	for i := range r.cookies {
		if r.cookies[i].identity() == id {
			r.cookies[i] = c
			return r
		}
	}
	r.cookies = append(r.cookies, c)
	return r
}

// Cookies returns the cookie list in insertion (wire) order.
func (r *ResponseValue) Cookies() []Cookie { return r.cookies }

// EffectiveHeaders returns the full header set the engine serializes:
// the staged headers plus the entity-owned ones (Content-Type,
// Content-Length, ETag, Last-Modified, Expires) derived from the
// effective Entity, when one is attached. The engine never mutates
// the staged headers themselves with entity data; this method builds
// a fresh, combined copy on demand.
func (r *ResponseValue) EffectiveHeaders() hdr.Header {
	h := r.headers.Clone()
	e := r.Entity()
	if e == nil || !status.BodyAllowed(r.status) {
		return h
	}
	if e.ContentType != "" {
		h.Set(hdr.ContentType, e.ContentType)
	}
	if e.Length >= 0 {
		h.Set(hdr.ContentLength, strconv.FormatInt(e.Length, 10))
	}
	if w := e.etagWire(); w != "" {
		h.Set(hdr.Etag, w)
	}
	if !e.LastModified.IsZero() {
		h.Set(hdr.LastModified, e.LastModified.UTC().Format(hdr.TimeFormat))
	}
	if !e.Expires.IsZero() {
		h.Set(hdr.Expires, e.Expires.UTC().Format(hdr.TimeFormat))
	}
	return h
}

// HeadersSetCookie derives the wire-serialized Set-Cookie lines, one
// per cookie, in cookie-list order. Invalid cookie names yield an
// empty line, which callers should skip.
func (r *ResponseValue) HeadersSetCookie() []string {
	lines := make([]string, 0, len(r.cookies))
	for _, c := range r.cookies {
		lines = append(lines, c.String())
	}
	return lines
}

// SetEntity attaches e as the response body descriptor, discarding
// any staged entity-metadata overlay from earlier
// EntityLastModified/EntityExpires/EntityEtag/EntityEtagIsWeak calls.
// Passing nil clears the entity entirely (e.g. for a 204 or 304).
//
// Returns an *EntityNotAllowedError if the currently staged status
// forbids a body (1xx, 204, 304): CONNECT+2xx is a per-request
// exception status.BodyAllowed doesn't know about, so a caller
// emitting a CONNECT response must not attach an entity regardless of
// what this returns. EffectiveHeaders also strips entity-owned
// headers if Status is changed to a forbidding code after a
// successful SetEntity.
func (r *ResponseValue) SetEntity(e *Entity) error {
	if e != nil {
		if err := e.validate(); err != nil {
			return err
		}
		if !status.BodyAllowed(r.status) {
			return &EntityNotAllowedError{Status: r.status}
		}
	}
	r.entity = e
	r.hasEntity = e != nil
	r.entityOver = entityOverlay{}
	return nil
}

// HasEntity reports whether an entity is currently staged.
func (r *ResponseValue) HasEntity() bool { return r.hasEntity }

// Entity returns the effective entity after applying any staged
// overlay fields, or nil if no entity is attached.
func (r *ResponseValue) Entity() *Entity {
	if !r.hasEntity {
		return nil
	}
	eff := *r.entity
	if r.entityOver.lastModified != nil {
		eff.LastModified = *r.entityOver.lastModified
	}
	if r.entityOver.expires != nil {
		eff.Expires = *r.entityOver.expires
	}
	if r.entityOver.etag != nil {
		eff.Etag = *r.entityOver.etag
	}
	if r.entityOver.etagIsWeak != nil {
		eff.EtagIsWeak = *r.entityOver.etagIsWeak
	}
	return &eff
}

// EntityLastModified stages a Last-Modified override on the attached
// entity. Returns ErrNoEntity if no entity is attached.
func (r *ResponseValue) EntityLastModified(t time.Time) error {
	if !r.hasEntity {
		return ErrNoEntity
	}
	r.entityOver.lastModified = &t
	return nil
}

// EntityExpires stages an Expires override. Returns ErrNoEntity if no
// entity is attached.
func (r *ResponseValue) EntityExpires(t time.Time) error {
	if !r.hasEntity {
		return ErrNoEntity
	}
	r.entityOver.expires = &t
	return nil
}

// EntityEtag stages an ETag override, validated as an RFC 7232
// quoted-string. Returns ErrNoEntity if no entity is attached.
func (r *ResponseValue) EntityEtag(etag string) error {
	if !r.hasEntity {
		return ErrNoEntity
	}
	if !isQuotedString(etag) {
		return &BadEtagError{Value: etag}
	}
	r.entityOver.etag = &etag
	return nil
}

// EntityEtagIsWeak stages the weak-validator flag. Returns
// ErrNoEntity if no entity is attached.
func (r *ResponseValue) EntityEtagIsWeak(weak bool) error {
	if !r.hasEntity {
		return ErrNoEntity
	}
	r.entityOver.etagIsWeak = &weak
	return nil
}

// Clone returns an independent copy: fresh header map and cookie
// list, but the entity is shared by reference (entities are treated
// as immutable descriptions). httpVersion and
// status are copied by value.
func (r *ResponseValue) Clone() *ResponseValue {
	clone := &ResponseValue{
		httpVersion: r.httpVersion,
		status:      r.status,
		headers:     r.headers.Clone(),
		entity:      r.entity,
		entityOver:  r.entityOver,
		hasEntity:   r.hasEntity,
	}
	clone.cookies = make([]Cookie, len(r.cookies))
	copy(clone.cookies, r.cookies)
	return clone
}
