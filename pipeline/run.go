/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/basalt-io/respond/metrics"
	"github.com/basalt-io/respond/sink"
	"github.com/basalt-io/respond/source"
)

// ProgrammingError marks a source read failure as a "programming
// logic" class error: the pipeline aborts immediately
// without flushing queued terminators, rather than treating it as
// benign I/O. Source implementations wrap a read error in this type
// when the failure indicates a handler bug rather than a transient
// I/O fault.
type ProgrammingError struct {
	Err error
}

func (e *ProgrammingError) Error() string { return e.Err.Error() }
func (e *ProgrammingError) Unwrap() error { return e.Err }

type runner struct {
	in     Input
	log    *zap.Logger
	corrID string

	writeT0       time.Time
	readStallTime time.Duration

	queuedTotal int64 // every byte ever handed to conn.QueueWrite (markers are not counted)
	bodyTotal   int64
	headLength  int64

	pendingRead <-chan source.Result
	sourceClosed bool

	bodyErr error
	connErr error
}

// Run drives BodyPipeline to completion for one response and returns
// its terminal Outcome. It blocks the calling goroutine for the
// lifetime of the response; callers that want concurrency across
// connections run Run on a per-connection goroutine (see engine).
func Run(ctx context.Context, in Input, log *zap.Logger, corrID string) Outcome {
	r := &runner{in: in, log: log, corrID: corrID}
	st := stateStartWrite
	for st != stateEnd {
		st = r.step(ctx, st)
	}
	return r.outcome()
}

func (r *runner) step(ctx context.Context, st state) state {
	switch st {
	case stateStartWrite:
		return r.doStartWrite()
	case statePipeBody:
		return r.doPipeBody(ctx)
	case stateDrainMark:
		return r.doDrainMark(ctx)
	case stateToFlushAll:
		return r.doToFlushAll()
	case stateFlushAll:
		return r.doFlushAll(ctx)
	case stateBodyErr:
		return r.doBodyErr()
	case stateConnErr:
		return r.doConnErr()
	default:
		return stateEnd
	}
}

func (r *runner) doStartWrite() state {
	r.writeT0 = time.Now()
	r.headLength = int64(len(r.in.Head))
	r.in.Conn.QueueWrite(r.in.Head)
	r.queuedTotal = r.headLength
	metrics.HeadBytes.Observe(float64(r.headLength))
	return statePipeBody
}

func (r *runner) doPipeBody(ctx context.Context) state {
	var ch <-chan source.Result
	if r.pendingRead != nil {
		ch = r.pendingRead
		r.pendingRead = nil
	} else {
		ch = r.in.Source.Read()
	}

	select {
	case res := <-ch:
		return r.handleReadResult(res)
	default:
	}

	// Read stall branch: drive the socket while the read is pending.
	r.pendingRead = ch
	metrics.WriteStalls.Inc()
	remaining, err := r.in.Conn.Write()
	if err != nil {
		r.connErr = err
		return stateConnErr
	}
	if viol := r.checkThroughput(remaining); viol != nil {
		r.connErr = viol
		return stateConnErr
	}

	if remaining == 0 {
		stallStart := time.Now()
		var res source.Result
		select {
		case res = <-r.pendingRead:
		case <-ctx.Done():
			r.readStallTime += time.Since(stallStart)
			r.connErr = ctx.Err()
			return stateConnErr
		}
		r.pendingRead = nil
		r.readStallTime += time.Since(stallStart)
		return r.handleReadResult(res)
	}

	awaitCtx, cancel := context.WithTimeout(ctx, r.in.Cfg.WriteTimeout)
	defer cancel()
	if err := r.in.Conn.AwaitWritable(awaitCtx); err != nil {
		r.connErr = err
		return stateConnErr
	}
	remaining = r.in.Conn.GetWriteQueueSize()
	if viol := r.checkThroughput(remaining); viol != nil {
		r.connErr = viol
		return stateConnErr
	}
	return statePipeBody
}

func (r *runner) handleReadResult(res source.Result) state {
	if res.Err != nil {
		r.bodyErr = res.Err
		return stateBodyErr
	}
	if res.EOF {
		declared := r.in.DeclaredBodyLength
		if declared > 0 && r.bodyTotal < declared {
			r.bodyErr = &ShortBodyError{Declared: declared, Got: r.bodyTotal}
			return stateBodyErr
		}
		r.closeSource()
		return stateToFlushAll
	}

	declared := r.in.DeclaredBodyLength
	buf := res.Buf
	if declared >= 0 && r.bodyTotal+int64(len(buf)) > declared {
		// Over-run: queue only up to the declared length and drop
		// the extra bytes on the floor: the pipeline must not send
		// extras past the declared length.
		allowed := declared - r.bodyTotal
		if allowed < 0 {
			allowed = 0
		}
		buf = buf[:allowed]
		r.bodyTotal += int64(len(buf))
		r.queuedTotal += int64(len(buf))
		if len(buf) > 0 {
			r.in.Conn.QueueWrite(buf)
		}
		r.bodyErr = &OverrunError{Declared: declared}
		return stateBodyErr
	}

	r.bodyTotal += int64(len(buf))
	r.queuedTotal += int64(len(buf))
	r.in.Conn.QueueWrite(buf)

	if declared >= 0 && r.bodyTotal == declared {
		r.closeSource()
		return stateToFlushAll
	}

	if r.in.Conn.GetWriteQueueSize() > r.in.Cfg.HighMark {
		return stateDrainMark
	}
	return statePipeBody
}

func (r *runner) doDrainMark(ctx context.Context) state {
	remaining, err := r.in.Conn.Write()
	if err != nil {
		r.connErr = err
		return stateConnErr
	}
	if viol := r.checkThroughput(remaining); viol != nil {
		r.connErr = viol
		return stateConnErr
	}
	if remaining > r.in.Cfg.HighMark {
		awaitCtx, cancel := context.WithTimeout(ctx, r.in.Cfg.WriteTimeout)
		defer cancel()
		if err := r.in.Conn.AwaitWritable(awaitCtx); err != nil {
			r.connErr = err
			return stateConnErr
		}
		return stateDrainMark
	}
	return statePipeBody
}

func (r *runner) doToFlushAll() state {
	if r.in.IsLast {
		r.in.Conn.QueueMarker(sink.TLSCloseNotify)
		r.in.Conn.QueueMarker(sink.TCPFin)
	}
	return stateFlushAll
}

func (r *runner) doFlushAll(ctx context.Context) state {
	remaining, err := r.in.Conn.Write()
	if err != nil {
		r.connErr = err
		return stateConnErr
	}
	if viol := r.checkThroughput(remaining); viol != nil {
		r.connErr = viol
		return stateConnErr
	}
	if remaining > 0 {
		awaitCtx, cancel := context.WithTimeout(ctx, r.in.Cfg.WriteTimeout)
		defer cancel()
		if err := r.in.Conn.AwaitWritable(awaitCtx); err != nil {
			r.connErr = err
			return stateConnErr
		}
		return stateFlushAll
	}
	return stateEnd
}

func (r *runner) doBodyErr() state {
	r.closeSource()
	r.in.IsLast = true
	if r.log != nil {
		r.log.Warn("body error", zap.String("corr_id", r.corrID), zap.Error(r.bodyErr))
	}
	var pe *ProgrammingError
	if as(r.bodyErr, &pe) {
		return stateEnd
	}
	return stateToFlushAll
}

func (r *runner) doConnErr() state {
	r.closeSource()
	r.in.IsLast = true
	if r.log != nil {
		r.log.Warn("connection error", zap.String("corr_id", r.corrID), zap.Error(r.connErr))
	}
	return stateEnd
}

// closeSource closes the body source exactly once. A read may still
// be pending (r.pendingRead != nil) when this is called from the
// error paths; ByteSource.Close is defined to cancel that read and
// wait for it rather than requiring the caller to drain it first, so
// it's dropped here unread rather than awaited.
func (r *runner) closeSource() {
	if r.sourceClosed {
		return
	}
	r.sourceClosed = true
	r.pendingRead = nil
	if err := r.in.Source.Close(); err != nil && r.log != nil {
		r.log.Debug("source close error", zap.String("corr_id", r.corrID), zap.Error(err))
	}
}

// checkThroughput applies the 10s-warmup minimum-throughput policy.
// remaining is the queue size observed immediately after the write
// attempt that triggered this check: evaluated on every connection
// write that leaves bytes queued.
func (r *runner) checkThroughput(remaining int64) error {
	if remaining <= 0 || r.in.Cfg.MinThroughput <= 0 {
		return nil
	}
	timeSpent := time.Since(r.writeT0) - r.readStallTime
	if timeSpent <= 10*time.Second {
		return nil
	}
	writtenTotal := r.queuedTotal - remaining
	timeSpentMs := timeSpent.Milliseconds()
	if writtenTotal < r.in.Cfg.MinThroughput*timeSpentMs/1000 {
		metrics.ThroughputViolations.Inc()
		return &ThroughputError{
			WrittenTotal:  writtenTotal,
			MinThroughput: r.in.Cfg.MinThroughput,
			TimeSpent:     timeSpentMs,
		}
	}
	return nil
}

func (r *runner) outcome() Outcome {
	remaining := r.in.Conn.GetWriteQueueSize()
	label := "ok"
	switch {
	case r.connErr != nil:
		label = "conn_error"
	case r.bodyErr != nil:
		label = "body_error"
	}
	metrics.BodyBytesWritten.WithLabelValues(label).Add(float64(r.bodyTotal))
	return Outcome{
		BodyError:    r.bodyErr,
		ConnError:    r.connErr,
		HeadLength:   r.headLength,
		BodyTotal:    r.bodyTotal,
		WrittenTotal: r.queuedTotal - remaining,
		IsLast:       r.in.IsLast,
	}
}

// as is a tiny errors.As wrapper kept local so callers don't need to
// import errors just for this one check.
func as(err error, target **ProgrammingError) bool {
	for err != nil {
		if pe, ok := err.(*ProgrammingError); ok {
			*target = pe
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
