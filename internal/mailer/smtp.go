package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPMailer sends over an authenticated SMTP channel via gomail.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTP(host string, port int, username, password, from string) *SMTPMailer {
	if from == "" {
		from = username
	}

	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (m *SMTPMailer) Send(_ context.Context, to, link string) error {
	const op = "mailer.SMTPMailer.Send"

	msg := gomail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.from)
	msg.SetHeader("Subject", "VetLine - Verify your email address")
	msg.SetBody("text/html", body(link))

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func body(link string) string {
	return fmt.Sprintf(`<html><body>
<h2>Verify your email address</h2>
<p>Thanks for creating a VetLine account. Click the link below to activate it:</p>
<p><a href="%s">Verify my email</a></p>
<p>If the button does not work, copy this address into your browser:</p>
<p>%s</p>
<p>The link is valid for 24 hours. If you did not request this, you can safely ignore it.</p>
</body></html>`, link, link)
}
