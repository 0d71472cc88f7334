/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Command respond-demo runs the response-emission engine over a raw
// TCP listener. It does not parse requests; every accepted connection
// gets the same canned response, set by flag, so the demo can be
// driven with nothing more than nc or curl --http1.1.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/basalt-io/respond/config"
	"github.com/basalt-io/respond/connlife"
	"github.com/basalt-io/respond/engine"
	"github.com/basalt-io/respond/metrics"
	"github.com/basalt-io/respond/pipeline"
	"github.com/basalt-io/respond/respond"
	"github.com/basalt-io/respond/sink"
	"github.com/basalt-io/respond/source"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr       string
		configPath string
		body       string
		forceClose bool
	)

	cmd := &cobra.Command{
		Use:   "respond-demo",
		Short: "Serve a canned HTTP/1.x response off a raw TCP listener",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(addr, configPath, body, forceClose)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&configPath, "config", "", "optional config file (RESPOND_ env vars take precedence over it)")
	cmd.Flags().StringVar(&body, "body", "hello from respond-demo\n", "response body text")
	cmd.Flags().BoolVar(&forceClose, "close", false, "close every connection after one response")

	return cmd
}

func run(addr, configPath, body string, forceClose bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync()

	reg := prometheus.NewRegistry()
	metrics.MustRegister(reg)

	eng := engine.New(pipeline.Config{
		HighMark:      cfg.OutboundBufferSize,
		MinThroughput: cfg.WriteMinThroughput,
		WriteTimeout:  cfg.WriteTimeout,
	}, log)
	defer eng.Stop()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	defer ln.Close()
	log.Info("respond-demo listening", zap.String("addr", addr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				log.Info("respond-demo shutting down")
				printMetricsSnapshot(reg)
				return nil
			default:
				return fmt.Errorf("accept: %w", err)
			}
		}
		go serveOne(eng, conn, body, forceClose)
	}
}

// printMetricsSnapshot prints the engine's collected counters to
// stderr at shutdown, reading them via prometheus/client_golang's
// testutil helpers rather than walking the registry's Gather output
// by hand.
func printMetricsSnapshot(reg *prometheus.Registry) {
	n, err := testutil.GatherAndCount(reg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "metrics snapshot: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "metrics snapshot (%d metrics):\n", n)
	fmt.Fprintf(os.Stderr, "  body_bytes_written{outcome=ok}: %.0f\n", testutil.ToFloat64(metrics.BodyBytesWritten.WithLabelValues("ok")))
	fmt.Fprintf(os.Stderr, "  write_stalls_total:             %.0f\n", testutil.ToFloat64(metrics.WriteStalls))
	fmt.Fprintf(os.Stderr, "  throughput_violations_total:    %.0f\n", testutil.ToFloat64(metrics.ThroughputViolations))
}

func serveOne(eng *engine.Engine, conn net.Conn, body string, forceClose bool) {
	defer conn.Close()

	// No request parser: read once (up to 4 KiB) and discard whatever
	// that read returns, then emit the canned response.
	buf := make([]byte, 4096)
	_, _ = conn.Read(buf)

	resp := respond.New().Status(200)
	_ = resp.SetEntity(&respond.Entity{ContentType: "text/plain; charset=utf-8", Length: int64(len(body))})

	out, corrID := eng.Emit(context.Background(), resp, engine.Request{
		Conn:               sink.NewNetConn(conn),
		DeclaredBodyLength: int64(len(body)),
		Source:             source.FromBytes([]byte(body)),
		HTTPMinorVersion:   1,
		Lifecycle: connlife.Decision{
			RequestMinorVersion: 1,
			ForceLast:           forceClose,
		},
	})
	if !out.OK() {
		fmt.Fprintf(os.Stderr, "corr_id=%s body_error=%v conn_error=%v\n", corrID, out.BodyError, out.ConnError)
	}
}

func strPtr(s string) *string { return &s }
