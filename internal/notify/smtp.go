package notify

import (
	"fmt"
	"net/smtp"
)

// SMTPNotifier sends mail through a plain SMTP relay.
type SMTPNotifier struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPNotifier creates a notifier for the relay at addr (host:port).
// user/pass may be empty for an unauthenticated relay.
func NewSMTPNotifier(addr, host, from, user, pass string) *SMTPNotifier {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, pass, host)
	}
	return &SMTPNotifier{
		addr: addr,
		from: from,
		auth: auth,
	}
}

func (n *SMTPNotifier) Send(recipient, subject, body string) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		n.from, recipient, subject, body,
	)
	return smtp.SendMail(n.addr, n.auth, n.from, []string{recipient}, []byte(msg))
}
