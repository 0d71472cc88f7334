/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesSpecDefaults(t *testing.T) {
	d := Default()
	assert.EqualValues(t, 16*1024, d.OutboundBufferSize)
	assert.EqualValues(t, 1024, d.WriteMinThroughput)
	assert.Equal(t, 30*time.Second, d.WriteTimeout)
}

func TestLoadWithNoFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RESPOND_OUTBOUND_BUFFER_SIZE", "8192")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.EqualValues(t, 8192, cfg.OutboundBufferSize)
}
