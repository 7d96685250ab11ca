// Package smtpmail implements the notify.Notifier interface over SMTP,
// rendering the daily digest as an HTML email.
package smtpmail

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/notify"
)

// implicitTLSPort is the conventional SMTPS port. Connections to it use
// implicit TLS instead of STARTTLS.
const implicitTLSPort = 465

// dialTimeout bounds connection establishment to the SMTP server.
const dialTimeout = 10 * time.Second

// Notifier delivers digests over SMTP.
type Notifier struct {
	logger *slog.Logger
	cfg    config.SMTPConfig

	// recipients is the parsed form of cfg.To.
	recipients []string
}

// NewNotifier creates an SMTP notifier from the given configuration.
// Returns an error if the configuration is missing transport essentials.
func NewNotifier(logger *slog.Logger, cfg config.SMTPConfig) (*Notifier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Host == "" || cfg.Port == 0 {
		return nil, fmt.Errorf("%w: smtp host and port must be configured", notify.ErrDeliveryFailed)
	}
	if cfg.From == "" || cfg.To == "" {
		return nil, fmt.Errorf("%w: smtp sender and recipients must be configured", notify.ErrDeliveryFailed)
	}

	var recipients []string
	for _, addr := range strings.Split(cfg.To, ",") {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			recipients = append(recipients, trimmed)
		}
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("%w: no valid recipient addresses", notify.ErrDeliveryFailed)
	}

	return &Notifier{
		logger:     logger.With(slog.String("component", "smtp_notifier")),
		cfg:        cfg,
		recipients: recipients,
	}, nil
}

// Ensure Notifier implements notify.Notifier
var _ notify.Notifier = (*Notifier)(nil)

// Deliver implements notify.Notifier.Deliver
// It renders the digest to HTML and sends it as a single message to all
// configured recipients. A non-nil error means nothing was accepted by
// the server for any recipient past the failure point; callers treat
// any error as "not delivered".
func (n *Notifier) Deliver(ctx context.Context, digest *notify.Digest) error {
	if digest == nil {
		return fmt.Errorf("%w: digest is nil", notify.ErrDeliveryFailed)
	}

	body, err := RenderHTML(digest)
	if err != nil {
		return fmt.Errorf("%w: rendering digest: %v", notify.ErrDeliveryFailed, err)
	}

	msg := n.buildMessage(subjectFor(digest), body)

	n.logger.InfoContext(ctx, "delivering digest",
		"recipients", len(n.recipients),
		"reviews", len(digest.Reviews),
		"has_new_item", digest.NewItem != nil)

	if err := n.send(ctx, msg); err != nil {
		n.logger.ErrorContext(ctx, "digest delivery failed", "error", err)
		return fmt.Errorf("%w: %v", notify.ErrDeliveryFailed, err)
	}

	n.logger.InfoContext(ctx, "digest delivered")
	return nil
}

// Ping connects and authenticates without sending anything, used by the
// test-connections command.
func (n *Notifier) Ping(ctx context.Context) error {
	client, err := n.connect(ctx)
	if err != nil {
		return fmt.Errorf("smtp connection test failed: %w", err)
	}
	defer func() { _ = client.Close() }()

	if err := n.authenticate(client); err != nil {
		return fmt.Errorf("smtp authentication test failed: %w", err)
	}
	return client.Quit()
}

func subjectFor(digest *notify.Digest) string {
	date := digest.Date.Format("2006-01-02")
	switch {
	case digest.NewItem != nil && len(digest.Reviews) > 0:
		return fmt.Sprintf("Daily Knowledge %s: %s + %d reviews",
			date, digest.NewItem.Topic, len(digest.Reviews))
	case digest.NewItem != nil:
		return fmt.Sprintf("Daily Knowledge %s: %s", date, digest.NewItem.Topic)
	case len(digest.Reviews) > 0:
		return fmt.Sprintf("Daily Knowledge %s: %d reviews", date, len(digest.Reviews))
	default:
		return fmt.Sprintf("Daily Knowledge %s", date)
	}
}

// buildMessage assembles the full RFC 5322 message with an HTML body.
func (n *Notifier) buildMessage(subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + n.cfg.From + "\r\n")
	b.WriteString("To: " + strings.Join(n.recipients, ", ") + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

// connect establishes an SMTP client, negotiating TLS appropriately:
// implicit TLS on port 465, STARTTLS otherwise.
func (n *Notifier) connect(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))

	dialer := &net.Dialer{Timeout: dialTimeout}

	if n.cfg.Port == implicitTLSPort {
		conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: n.cfg.Host})
		if err != nil {
			return nil, fmt.Errorf("tls dial %s: %w", addr, err)
		}
		client, err := smtp.NewClient(conn, n.cfg.Host)
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("smtp handshake with %s: %w", addr, err)
		}
		return client, nil
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("smtp handshake with %s: %w", addr, err)
	}

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: n.cfg.Host}); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("starttls with %s: %w", addr, err)
		}
	}

	return client, nil
}

func (n *Notifier) authenticate(client *smtp.Client) error {
	if n.cfg.Username == "" {
		return nil
	}
	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	return client.Auth(auth)
}

func (n *Notifier) send(ctx context.Context, msg []byte) error {
	client, err := n.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if err := n.authenticate(client); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(n.cfg.From); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	for _, rcpt := range n.recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp RCPT TO %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close body: %w", err)
	}

	return client.Quit()
}
