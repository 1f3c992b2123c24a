package notify

import "context"

// Notifier sends best-effort confirmation messages. Failures are for the
// caller to log, never to fail a confirmed payment over.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Noop satisfies Notifier for deployments without an email backend.
type Noop struct{}

func (Noop) Send(context.Context, string, string, string) error { return nil }
