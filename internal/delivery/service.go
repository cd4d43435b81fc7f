package delivery

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"mashup/internal/config"
	"mashup/internal/logging"
	"mashup/internal/services"
)

const zipContentType = mail.ContentType("application/zip")

// Service sends a finished mashup to a recipient.
type Service interface {
	Deliver(ctx context.Context, recipient, attachmentPath string) error
}

// Transport sends composed messages. *mail.Client satisfies it.
type Transport interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// TransportFactory builds a Transport for one delivery.
type TransportFactory func(creds Credentials) (Transport, error)

// SMTP delivers over implicit-TLS SMTP submission.
type SMTP struct {
	Host           string
	Port           int
	Sender         string
	Subject        string
	Body           string
	AttachmentName string
	Timeout        time.Duration

	credentials CredentialProvider
	dial        TransportFactory
	logger      *slog.Logger
}

// NewService builds the SMTP delivery service described by cfg. Explicit
// sender and password settings win; otherwise EMAIL and EMAIL_PASSWORD are
// read from the environment and the optional env file.
func NewService(cfg *config.Config, logger *slog.Logger) *SMTP {
	d := cfg.Delivery
	providers := chain{}
	if strings.TrimSpace(d.Sender) != "" && d.Password != "" {
		providers = append(providers, StaticCredentials{Username: d.Sender, Password: d.Password})
	}
	providers = append(providers, EnvCredentials{File: d.EnvFile})

	svc := &SMTP{
		Host:           d.SMTPHost,
		Port:           d.SMTPPort,
		Sender:         d.Sender,
		Subject:        d.Subject,
		Body:           d.Body,
		AttachmentName: d.AttachmentName,
		Timeout:        cfg.DeliveryTimeout(),
		credentials:    providers,
		logger:         logging.NewComponentLogger(logger, "delivery"),
	}
	svc.dial = svc.newClient
	return svc
}

// WithTransport replaces the SMTP dialer, used by tests.
func (s *SMTP) WithTransport(factory TransportFactory) *SMTP {
	s.dial = factory
	return s
}

// WithCredentials replaces the credential source.
func (s *SMTP) WithCredentials(provider CredentialProvider) *SMTP {
	s.credentials = provider
	return s
}

// Configured reports whether credentials can currently be resolved.
func (s *SMTP) Configured() bool {
	creds, err := s.credentials.Credentials()
	return err == nil && creds.complete()
}

// Deliver emails attachmentPath to recipient. Every failure is tagged
// services.ErrDelivery.
func (s *SMTP) Deliver(ctx context.Context, recipient, attachmentPath string) error {
	creds, err := s.credentials.Credentials()
	if err != nil {
		return services.Fail(services.ErrDelivery, "Mashup was created but email delivery is not configured correctly.", err)
	}
	if !creds.complete() {
		return services.Fail(services.ErrDelivery,
			"Mashup was created but email delivery is not configured. Set "+EnvSender+" and "+EnvPassword+".", nil)
	}
	if _, err := os.Stat(attachmentPath); err != nil {
		return services.Fail(services.ErrDelivery, "Mashup archive is missing.", err)
	}

	msg, err := s.compose(creds, recipient, attachmentPath)
	if err != nil {
		return services.Fail(services.ErrDelivery, "Could not prepare the email.", err)
	}

	transport, err := s.dial(creds)
	if err != nil {
		return services.Fail(services.ErrDelivery, "Could not connect to the mail server.", err)
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	start := time.Now()
	if err := transport.DialAndSendWithContext(ctx, msg); err != nil {
		return services.Fail(services.ErrDelivery, "Mashup was created but the email could not be sent.", err)
	}

	s.logger.Info("mashup delivered",
		logging.String("recipient", recipient),
		logging.String("attachment", filepath.Base(attachmentPath)),
		logging.Duration("elapsed", time.Since(start)),
		logging.String(logging.FieldEventType, "delivery_sent"),
	)
	return nil
}

func (s *SMTP) compose(creds Credentials, recipient, attachmentPath string) (*mail.Msg, error) {
	sender := strings.TrimSpace(s.Sender)
	if sender == "" {
		sender = creds.Username
	}

	msg := mail.NewMsg()
	if err := msg.From(sender); err != nil {
		return nil, err
	}
	if err := msg.To(recipient); err != nil {
		return nil, err
	}
	msg.Subject(s.Subject)
	msg.SetBodyString(mail.TypeTextPlain, s.Body)

	name := strings.TrimSpace(s.AttachmentName)
	if name == "" {
		name = filepath.Base(attachmentPath)
	}
	msg.AttachFile(attachmentPath, mail.WithFileName(name), mail.WithFileContentType(zipContentType))
	return msg, nil
}

func (s *SMTP) newClient(creds Credentials) (Transport, error) {
	opts := []mail.Option{
		mail.WithPort(s.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(creds.Username),
		mail.WithPassword(creds.Password),
	}
	if s.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.Timeout))
	}
	return mail.NewClient(s.Host, opts...)
}
