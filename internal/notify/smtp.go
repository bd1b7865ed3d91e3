package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"
)

type SMTPTransport struct {
	Host     string
	Port     int
	Username string
	Password string
}

func (t *SMTPTransport) Deliver(ctx context.Context, env Envelope) error {
	from, err := mail.ParseAddress(env.From)
	if err != nil {
		return fmt.Errorf("parse from: %w", err)
	}

	addr := net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, t.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: t.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if t.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", t.Username, t.Password, t.Host)); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}

	if err := c.Mail(from.Address); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := c.Rcpt(env.To); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(buildMessage(env, time.Now())); err != nil {
		_ = w.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("end data: %w", err)
	}
	return c.Quit()
}

func buildMessage(env Envelope, now time.Time) []byte {
	var b bytes.Buffer
	b.WriteString("From: " + env.From + "\r\n")
	b.WriteString("To: " + env.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", env.Subject) + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(env.HTML)
	b.WriteString("\r\n")
	return b.Bytes()
}

// LogTransport writes messages to the log instead of sending them. It is
// used when no SMTP relay is configured.
type LogTransport struct {
	Logger *slog.Logger
}

func (t *LogTransport) Deliver(ctx context.Context, env Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l := t.Logger
	if l == nil {
		l = slog.Default()
	}
	l.Info("mail_logged", "to", env.To, "subject", env.Subject, "bytes", len(env.HTML))
	return nil
}

// LogSMS stands in for an SMS gateway: mobile codes are written to the log.
type LogSMS struct {
	Logger *slog.Logger
}

func (s *LogSMS) SendCode(ctx context.Context, mobile, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	l.Info("mobile_otp_issued", "mobile", mobile, "otp", code)
	return nil
}
