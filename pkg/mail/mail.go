package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"

	"github.com/mateolafalce/padelpro/config"
)

// Client sends plain-text admin notifications over SMTP.
type Client struct {
	host     string
	port     int
	user     string
	password string
	from     string
	to       string
}

func NewClient(cfg *config.EmailConfig) (*Client, error) {
	if cfg.Host == "" || cfg.From == "" || cfg.To == "" {
		return nil, errors.New("email host, from and to are required")
	}

	port := cfg.Port
	if port == 0 {
		port = 587
	}

	return &Client{
		host:     cfg.Host,
		port:     port,
		user:     cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		to:       cfg.To,
	}, nil
}

func (c *Client) Name() string { return "email" }

func (c *Client) Notify(ctx context.Context, subject, message string) error {
	m, err := c.buildMessage(subject, message)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(c.port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTLSConfig(&tls.Config{ServerName: c.host}),
	}
	if c.user != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(c.user),
			mail.WithPassword(c.password),
		)
	}

	client, err := mail.NewClient(c.host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client (host=%s port=%d): %w", c.host, c.port, err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send email (host=%s port=%d): %w", c.host, c.port, err)
	}

	logrus.WithFields(logrus.Fields{"to": c.to, "subject": subject}).Debug("Email sent")
	return nil
}

func (c *Client) buildMessage(subject, body string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(c.from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(c.to); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject("[PadelPro] " + subject)
	m.SetBodyString(mail.TypeTextPlain, body)
	return m, nil
}
