package mail

import (
	"context"

	"gopkg.in/gomail.v2"
)

type SMTPSender struct {
	from string
	send func(m *gomail.Message) error
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	dialer := gomail.NewDialer(host, port, username, password)
	return &SMTPSender{
		from: from,
		send: func(m *gomail.Message) error { return dialer.DialAndSend(m) },
	}
}

// Send returns as soon as ctx is done. gomail cannot be interrupted, so an
// abandoned delivery finishes or fails in the background.
func (s *SMTPSender) Send(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	done := make(chan error, 1)
	go func() {
		done <- s.send(m)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
