/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package pipeline

import "fmt"

// ShortBodyError reports that the source reported EOF before
// DeclaredBodyLength bytes were produced.
type ShortBodyError struct {
	Declared int64
	Got      int64
}

func (e *ShortBodyError) Error() string {
	return fmt.Sprintf("pipeline: short body: declared %d, got %d before EOF", e.Declared, e.Got)
}

// OverrunError reports that the source produced more bytes than
// DeclaredBodyLength.
type OverrunError struct {
	Declared int64
}

func (e *OverrunError) Error() string {
	return fmt.Sprintf("pipeline: body over-run past declared length %d", e.Declared)
}

// ThroughputError is the synthesized I/O error raised when the
// client's observed download rate falls below MinThroughput after
// the warmup window.
type ThroughputError struct {
	WrittenTotal  int64
	MinThroughput int64
	TimeSpent     int64 // milliseconds
}

func (e *ThroughputError) Error() string {
	return fmt.Sprintf("pipeline: client too slow: wrote %d bytes in %dms, want >= %d B/s", e.WrittenTotal, e.TimeSpent, e.MinThroughput)
}
