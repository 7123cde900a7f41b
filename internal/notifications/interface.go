package notifications

// Notifier delivers best-effort informational messages. Delivery failures
// are logged by callers and never affect trading decisions.
type Notifier interface {
	Send(text string) error
}

// Noop discards every message; used when no notifier is configured.
type Noop struct{}

func (Noop) Send(string) error { return nil }
