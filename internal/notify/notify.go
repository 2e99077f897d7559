// Package notify delivers account emails to users. Delivery is strictly
// fire-and-forget: the dispatcher runs every send on its own goroutine,
// failures are logged and swallowed, and nothing here can fail, delay, or
// reorder the request that triggered it.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Event identifies a notification template.
type Event string

const (
	// EventWelcome is sent after a successful registration.
	EventWelcome Event = "welcome"
	// EventLoginAlert is sent after a successful login.
	EventLoginAlert Event = "login-alert"
)

// Sender delivers a single notification synchronously. Implementations:
// SMTPSender (real email) and LogSender (no-op; logs the event).
type Sender interface {
	Send(ctx context.Context, recipient string, event Event, data map[string]string) error
}

// Dispatcher wraps a Sender with the async, best-effort delivery policy.
type Dispatcher struct {
	sender  Sender
	logger  *slog.Logger
	timeout time.Duration
}

// NewDispatcher creates a Dispatcher around the given sender.
func NewDispatcher(sender Sender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender:  sender,
		logger:  logger,
		timeout: 30 * time.Second,
	}
}

// Dispatch sends the notification on a new goroutine and returns
// immediately. Errors and panics inside the sender are logged, never
// propagated. There are no retries and no ordering guarantee relative to
// the response of the request that triggered the event.
func (d *Dispatcher) Dispatch(recipient string, event Event, data map[string]string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("notification sender panicked",
					slog.String("event", string(event)),
					slog.Any("panic", r),
				)
			}
		}()

		// The triggering request's context is long gone by the time this
		// runs; deliveries get their own deadline.
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.sender.Send(ctx, recipient, event, data); err != nil {
			d.logger.Error("notification delivery failed",
				slog.String("event", string(event)),
				slog.String("recipient", recipient),
				slog.String("error", err.Error()),
			)
			return
		}

		d.logger.Info("notification sent",
			slog.String("event", string(event)),
			slog.String("recipient", recipient),
		)
	}()
}

// LogSender is the Sender used when no SMTP server is configured: it
// records the event and delivers nothing.
type LogSender struct {
	Logger *slog.Logger
}

func (l *LogSender) Send(_ context.Context, recipient string, event Event, _ map[string]string) error {
	l.Logger.Debug("email delivery disabled, dropping notification",
		slog.String("event", string(event)),
		slog.String("recipient", recipient),
	)
	return nil
}
