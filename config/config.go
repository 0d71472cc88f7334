/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package config loads the engine's per-server configuration via
// Viper, the way the rest of the example fleet (aws-karpenter-provider-aws,
// moby) wires its own settings: environment variables with a
// documented prefix, an optional config file, and hard-coded
// defaults matching the engine's documented write-throughput policy.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "RESPOND"

// EngineConfig is the engine's per-server configuration block.
type EngineConfig struct {
	// OutboundBufferSize is the write-queue high watermark, in
	// bytes. Default 16 KiB.
	OutboundBufferSize int64 `mapstructure:"outbound_buffer_size"`

	// WriteMinThroughput is the minimum observed client download
	// rate, in bytes/sec, enforced after a 10s warmup. Default 1024.
	WriteMinThroughput int64 `mapstructure:"write_min_throughput"`

	// WriteTimeout bounds a single awaitWritable call. Default 30s.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Default returns the engine's documented defaults.
func Default() EngineConfig {
	return EngineConfig{
		OutboundBufferSize: 16 * 1024,
		WriteMinThroughput: 1024,
		WriteTimeout:       30 * time.Second,
	}
}

// Load reads configuration from environment variables prefixed
// RESPOND_ (e.g. RESPOND_OUTBOUND_BUFFER_SIZE) and from a config file
// at path (ignored if empty or not found), with the environment
// variables taking precedence over the file, falling back to
// Default() for anything unset.
func Load(path string) (EngineConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("outbound_buffer_size", def.OutboundBufferSize)
	v.SetDefault("write_min_throughput", def.WriteMinThroughput)
	v.SetDefault("write_timeout", def.WriteTimeout)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return EngineConfig{}, err
			}
		}
	}

	var cfg EngineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}
