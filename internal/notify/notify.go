// Package notify delivers change alerts. Telegram is the primary channel;
// Twitter is kept as a configurable alternative.
package notify

import "context"

// Notifier sends one plain-text message per detected change.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Discard is a Notifier that drops messages, for runs with notifications
// disabled.
type Discard struct{}

func (Discard) Notify(context.Context, string) error { return nil }
