package notifier

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Email submits messages over authenticated SMTP.
type Email struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       []string
	subject  string

	// sendMail is swapped out in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmail creates an SMTP channel.
func NewEmail(host string, port int, username, password, from string, to []string) *Email {
	return &Email{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		to:       to,
		subject:  "dcabot notification",
		sendMail: smtp.SendMail,
	}
}

// Name implements Channel.
func (e *Email) Name() string {
	return "email"
}

// Send implements Channel.
func (e *Email) Send(_ context.Context, message string) error {
	addr := net.JoinHostPort(e.host, strconv.Itoa(e.port))
	auth := smtp.PlainAuth("", e.username, e.password, e.host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		e.from, strings.Join(e.to, ", "), e.subject, message)

	return errors.Wrap(e.sendMail(addr, auth, e.from, e.to, []byte(msg)), "smtp submission failed")
}
