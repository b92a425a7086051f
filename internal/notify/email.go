package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/CosmoTheDev/slack-digest/internal/config"
)

const defaultSMTPPort = "25"

// Email delivers digests over SMTP. It satisfies digest.Mailer.
type Email struct {
	cfg         config.MailConfig
	dialTimeout time.Duration
	now         func() time.Time
}

// NewEmail creates an Email sender from cfg.
func NewEmail(cfg config.MailConfig) *Email {
	return &Email{cfg: cfg, dialTimeout: 30 * time.Second, now: time.Now}
}

// SendMail sends one plain-text UTF-8 message.
func (e *Email) SendMail(ctx context.Context, from, to, subject, body string) error {
	client, err := e.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("email: MAIL FROM: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("email: RCPT TO %s: %w", to, err)
	}
	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("email: DATA: %w", err)
	}
	if _, err := wc.Write(buildMessage(from, to, subject, body, e.now())); err != nil {
		return fmt.Errorf("email: writing message: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("email: finishing message: %w", err)
	}
	return client.Quit()
}

// Verify connects, negotiates TLS and authenticates without sending.
func (e *Email) Verify(ctx context.Context) error {
	client, err := e.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.Quit()
}

func (e *Email) dial(ctx context.Context) (*smtp.Client, error) {
	host, addr := smtpAddress(e.cfg.SMTP)

	d := net.Dialer{Timeout: e.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("email: dial %s: %w", addr, err)
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("email: greeting from %s: %w", addr, err)
	}

	if e.cfg.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil { // #nosec G402 -- TLS config uses system defaults; ServerName is set for SNI
			client.Close()
			return nil, fmt.Errorf("email: STARTTLS: %w", err)
		}
	}
	if e.cfg.Username != "" {
		auth := smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, host)
		if err := client.Auth(auth); err != nil {
			client.Close()
			return nil, fmt.Errorf("email: auth: %w", err)
		}
	}
	return client, nil
}

// smtpAddress splits "host[:port]" into the TLS server name and dial address.
func smtpAddress(hostport string) (host, addr string) {
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return h, hostport
	}
	return hostport, net.JoinHostPort(hostport, defaultSMTPPort)
}

func buildMessage(from, to, subject, body string, date time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", date.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}
