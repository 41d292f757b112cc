// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package bus

import "github.com/prometheus/client_golang/prometheus"

const (
	scopeGlobal    = "global"
	scopeRecipient = "recipient"
)

// EventsDelivered counts events placed on a session channel.
var EventsDelivered = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "agora_bus_delivered_events_total",
		Help: "Events delivered to session buffers",
	},
	[]string{"scope"},
)

// EventsDropped counts events dropped because a session buffer was full.
var EventsDropped = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "agora_bus_dropped_events_total",
		Help: "Events dropped because a session buffer was full",
	},
	[]string{"scope"},
)

// SessionsActive is the number of subscribed sessions.
var SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "agora_bus_sessions",
	Help: "Currently subscribed sessions",
})

// RegisterMetrics registers bus metrics with reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(EventsDelivered, EventsDropped, SessionsActive)
}
