// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package command

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status label values other than error kinds.
const (
	StatusSuccess   = "success"
	StatusUnknownOp = "unknown_op"
)

// CommandExecutions counts dispatches by op and outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var CommandExecutions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "agora_command_total",
		Help: "Total number of dispatched commands",
	},
	[]string{"op", "status"},
)

// CommandDuration is the histogram for dispatch duration.
// Use RegisterMetrics to register this with a Prometheus registry.
var CommandDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "agora_command_duration_seconds",
		Help:    "Command dispatch duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"op"},
)

// RegisterMetrics registers command package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(CommandExecutions)
	reg.MustRegister(CommandDuration)
}

// RecordCommandExecution increments the execution counter.
func RecordCommandExecution(op, status string) {
	CommandExecutions.WithLabelValues(op, status).Inc()
}

// RecordCommandDuration records the duration of a dispatch.
func RecordCommandDuration(op string, duration time.Duration) {
	CommandDuration.WithLabelValues(op).Observe(duration.Seconds())
}
