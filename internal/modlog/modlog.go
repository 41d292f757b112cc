// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

// Package modlog records moderation actions. Entries are append-only.
package modlog

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"

	"github.com/agorafed/agora/internal/core"
	"github.com/agorafed/agora/internal/model"
	"github.com/agorafed/agora/internal/store"
)

// Entries counts appended moderation records by action.
var Entries = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "agora_modlog_entries_total",
		Help: "Moderation log entries appended",
	},
	[]string{"action"},
)

// RegisterMetrics registers modlog metrics with reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Entries)
}

// Log appends moderation entries and mirrors them to the audit logger.
type Log struct {
	store  store.ModLogStore
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Log. A nil logger uses slog.Default.
func New(s store.ModLogStore, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{store: s, logger: logger.With("component", "modlog"), now: time.Now}
}

// AddAdmin records that modID granted (added) or revoked admin on targetID.
func (l *Log) AddAdmin(ctx context.Context, modID, targetID ulid.ULID, added bool) (*model.ModAdd, error) {
	now := l.now()
	entry := &model.ModAdd{
		ID:            core.NewIDAt(now),
		ModPersonID:   modID,
		OtherPersonID: targetID,
		Removed:       !added,
		When:          now,
	}
	if err := l.store.AppendModAdd(ctx, entry); err != nil {
		return nil, oops.In("modlog").Code("MODLOG_APPEND_FAILED").
			With("action", string(model.ModActionAddAdmin)).Wrap(err)
	}
	l.record(ctx, model.ModActionAddAdmin, modID, targetID, "removed", entry.Removed)
	return entry, nil
}

// Ban records that modID banned or unbanned targetID.
func (l *Log) Ban(ctx context.Context, modID, targetID ulid.ULID, banned bool, reason *string, expires *time.Time) (*model.ModBan, error) {
	now := l.now()
	entry := &model.ModBan{
		ID:            core.NewIDAt(now),
		ModPersonID:   modID,
		OtherPersonID: targetID,
		Reason:        reason,
		Banned:        banned,
		Expires:       expires,
		When:          now,
	}
	if err := l.store.AppendModBan(ctx, entry); err != nil {
		return nil, oops.In("modlog").Code("MODLOG_APPEND_FAILED").
			With("action", string(model.ModActionBan)).Wrap(err)
	}
	l.record(ctx, model.ModActionBan, modID, targetID, "banned", banned)
	return entry, nil
}

func (l *Log) record(ctx context.Context, action model.ModAction, modID, targetID ulid.ULID, flag string, value bool) {
	Entries.WithLabelValues(string(action)).Inc()
	l.logger.InfoContext(ctx, "moderation action",
		"action", string(action),
		"mod_person_id", modID.String(),
		"other_person_id", targetID.String(),
		flag, value,
	)
}
