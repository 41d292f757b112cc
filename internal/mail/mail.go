// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

// Package mail sends outbound notification email.
package mail

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/agorafed/agora/internal/errs"
)

// ErrTransient marks a send failure worth retrying.
var ErrTransient = errors.New("transient mail failure")

// Message is one outbound email.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender logs messages instead of sending them. Used in development.
type LogSender struct {
	Logger *slog.Logger
}

// Send logs msg at info level.
func (s LogSender) Send(ctx context.Context, msg Message) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "email",
		"to", msg.To,
		"to_name", msg.ToName,
		"subject", msg.Subject,
		"body", msg.HTML,
	)
	return nil
}

// RetryingSender retries transient failures of the wrapped Sender with
// exponential backoff.
type RetryingSender struct {
	next     Sender
	base     time.Duration
	attempts uint64
}

// NewRetryingSender wraps next, making up to attempts tries.
func NewRetryingSender(next Sender, base time.Duration, attempts uint64) *RetryingSender {
	if attempts == 0 {
		attempts = 1
	}
	return &RetryingSender{next: next, base: base, attempts: attempts}
}

// Send delivers msg, retrying transient errors.
func (s *RetryingSender) Send(ctx context.Context, msg Message) error {
	backoff := retry.WithMaxRetries(s.attempts-1, retry.NewExponential(s.base))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.next.Send(ctx, msg)
		if err != nil && IsTransient(err) {
			slog.WarnContext(ctx, "email send failed, retrying", "to", msg.To, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	if errors.Is(err, ErrTransient) || errors.Is(err, errs.ErrTimeout) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sendError(op string, err error) error {
	if IsTransient(err) {
		err = errors.Join(ErrTransient, err)
	}
	return oops.In("mail").Code("MAIL_SEND_FAILED").With("operation", op).Wrap(err)
}
