/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package engine is the façade that wires HeadSerializer, BodyPipeline
// and the ConnectionLifecycle adapter into the single data flow
// this module describes: caller hands the engine (ResponseValue,
// bodySource, declaredBodyLength, lifecycle inputs, httpMinorVersion);
// the engine decides isLast, serializes and queues the head, runs the
// pipeline, and reports a structured outcome.
package engine

import (
	"bytes"
	"context"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/basalt-io/respond/connlife"
	"github.com/basalt-io/respond/pipeline"
	"github.com/basalt-io/respond/respond"
	"github.com/basalt-io/respond/sink"
	"github.com/basalt-io/respond/source"
	"github.com/basalt-io/respond/wire"
)

// Engine emits responses onto connections. It is safe for concurrent
// use; each Emit call runs its own pipeline.Run on a goroutine of its
// own and blocks until it completes. Every in-flight Run shares the
// engine's shutdown signal: Stop cancels the context that Run's
// pending-read and AwaitWritable waits are bounded by.
type Engine struct {
	cfg      pipeline.Config
	log      *zap.Logger
	shutdown chan struct{}
}

// New returns an Engine using cfg for every pipeline it runs. log may
// be nil, in which case pipeline logging is suppressed.
func New(cfg pipeline.Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{cfg: cfg, log: log, shutdown: make(chan struct{})}
}

// Stop signals every Emit call currently blocked on a write to give up
// as soon as its next AwaitWritable wakes. Safe to call once; a second
// call panics, matching the close-twice behavior of the channel it
// guards.
func (e *Engine) Stop() { close(e.shutdown) }

// Request bundles the inputs Emit needs beyond the ResponseValue
// itself: the body source, its declared length, the connection to
// write to, and the lifecycle inputs feeding connlife.Decide.
type Request struct {
	Conn sink.TcpConnection

	DeclaredBodyLength int64
	Source             source.ByteSource

	HTTPMinorVersion int
	Lifecycle        connlife.Decision
}

// Emit serializes resp's head, decides whether this is the
// connection's last response, and drives the body pipeline to
// completion. The returned Outcome is BodyPipeline's terminal report;
// a correlation ID (also present in every log line this call emits)
// is returned alongside it for the caller to thread through its own
// logging.
func (e *Engine) Emit(ctx context.Context, resp *respond.ResponseValue, req Request) (pipeline.Outcome, string) {
	corrID := uuid.NewString()
	log := e.log.With(zap.String("corr_id", corrID))

	effHeaders := resp.EffectiveHeaders()
	req.Lifecycle.ResponseHeaders = effHeaders
	isLast := connlife.Decide(req.Lifecycle)

	var head bytes.Buffer
	headLen, err := wire.HeadSerializer(&head, resp.StatusCode(), effHeaders, resp.HeadersSetCookie(), req.HTTPMinorVersion)
	if err != nil {
		log.Error("head serialization failed", zap.Error(err))
		return pipeline.Outcome{ConnError: err, IsLast: true}, corrID
	}
	log.Debug("emitting response", zap.Int("status", resp.StatusCode()), zap.Int("head_bytes", headLen), zap.Bool("is_last", isLast))

	src, declaredLen := req.Source, req.DeclaredBodyLength
	if src == nil {
		if ent := resp.Entity(); ent != nil && ent.Open != nil {
			src, declaredLen = ent.Open(), ent.Length
		} else {
			src, declaredLen = source.FromBytes(nil), 0
		}
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	g, _ := errgroup.WithContext(ctx)
	var out pipeline.Outcome
	g.Go(func() error {
		defer cancelRun()
		out = pipeline.Run(runCtx, pipeline.Input{
			Conn:               req.Conn,
			Head:               head.Bytes(),
			Source:             src,
			DeclaredBodyLength: declaredLen,
			IsLast:             isLast,
			Cfg:                e.cfg,
		}, log, corrID)
		return out.ConnError
	})
	g.Go(func() error {
		select {
		case <-e.shutdown:
			cancelRun()
			return context.Canceled
		case <-runCtx.Done():
			return nil
		}
	})
	runErr := g.Wait()

	if !out.OK() {
		log.Warn("response ended with error",
			zap.Error(multierr.Combine(out.BodyError, out.ConnError)),
			zap.Bool("shutdown_requested", runErr == context.Canceled))
	}
	return out, corrID
}
