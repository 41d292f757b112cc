// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package command

import "time"

// MetricsRecorder tracks metrics for a single dispatch.
type MetricsRecorder struct {
	startTime time.Time
	op        string
	status    string
}

// NewMetricsRecorder initializes a recorder starting at start.
func NewMetricsRecorder(start time.Time) *MetricsRecorder {
	return &MetricsRecorder{startTime: start}
}

// SetOp sets the op label.
func (m *MetricsRecorder) SetOp(op string) {
	m.op = op
}

// SetStatus sets the outcome label.
func (m *MetricsRecorder) SetStatus(status string) {
	m.status = status
}

// Record writes the collected metrics if the op is known.
func (m *MetricsRecorder) Record() {
	if m.op == "" {
		return
	}

	RecordCommandExecution(m.op, m.status)
	RecordCommandDuration(m.op, time.Since(m.startTime))
}
