// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

// Package janitor runs periodic maintenance: expiring captcha challenges and
// purging stale password reset requests.
package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agorafed/agora/internal/store"
)

var purged = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "agora_janitor_purged_total",
		Help: "Expired records removed by the janitor",
	},
	[]string{"task"},
)

// RegisterMetrics registers janitor metrics with reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(purged)
}

// Task removes expired records and returns how many it removed.
type Task struct {
	Name string
	Run  func(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper expires in-memory entries.
type Sweeper interface {
	Sweep(now time.Time) int
}

// CaptchaTask expires captcha challenges.
func CaptchaTask(s Sweeper) Task {
	return Task{
		Name: "captcha",
		Run: func(_ context.Context, now time.Time) (int64, error) {
			return int64(s.Sweep(now)), nil
		},
	}
}

// PasswordResetTask deletes expired password reset requests.
func PasswordResetTask(s store.PasswordResetStore) Task {
	return Task{Name: "password_reset", Run: s.DeleteExpiredPasswordResets}
}

// Janitor runs its tasks every interval.
type Janitor struct {
	tasks    []Task
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// New returns a Janitor. Each task run is bounded by timeout.
func New(interval, timeout time.Duration, logger *slog.Logger, tasks ...Task) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{
		tasks:    tasks,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes every task immediately and then on each tick until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.runOnce(ctx)
	for {
		select {
		case <-ticker.C:
			j.runOnce(ctx)
		case <-ctx.Done():
			j.logger.Info("janitor stopped")
			return
		}
	}
}

func (j *Janitor) runOnce(ctx context.Context) {
	now := j.now()
	for _, task := range j.tasks {
		taskCtx, cancel := context.WithTimeout(ctx, j.timeout)
		n, err := task.Run(taskCtx, now)
		cancel()
		if err != nil {
			j.logger.ErrorContext(ctx, "janitor task failed", "task", task.Name, "error", err)
			continue
		}
		if n > 0 {
			purged.WithLabelValues(task.Name).Add(float64(n))
			j.logger.InfoContext(ctx, "janitor task completed", "task", task.Name, "removed", n)
		}
	}
}
