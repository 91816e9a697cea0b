package notify

// Notifier delivers out-of-band messages to users. Signup treats delivery
// as best-effort: a failed send is logged, never surfaced to the caller.
type Notifier interface {
	Send(recipient, subject, body string) error
}
