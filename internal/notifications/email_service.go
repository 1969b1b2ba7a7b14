package notifications

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"organizer/pkg/logger"
)

// EmailService delivers rendered emails.
type EmailService interface {
	Send(ctx context.Context, email Email) error
}

// SMTPConfig holds SMTP configuration
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
}

func validateSMTPConfig(config *SMTPConfig) error {
	if config == nil {
		return fmt.Errorf("SMTP config is nil")
	}
	if config.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("SMTP port must be between 1 and 65535")
	}
	if config.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

// SMTPEmailService sends mail through an SMTP relay
type SMTPEmailService struct {
	config *SMTPConfig
}

func NewSMTPEmailService(config *SMTPConfig) (*SMTPEmailService, error) {
	if err := validateSMTPConfig(config); err != nil {
		return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
	}
	return &SMTPEmailService{config: config}, nil
}

func (s *SMTPEmailService) Send(ctx context.Context, email Email) error {
	message := s.buildMessage(email)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	var err error
	if s.config.UseTLS {
		err = s.sendWithSTARTTLS(addr, auth, email.To, message)
	} else {
		err = smtp.SendMail(addr, auth, s.config.FromEmail, []string{email.To}, message)
	}
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.GetDefault().InfoContext(ctx, "Email sent", "to", email.To, "subject", email.Subject)
	return nil
}

// sendWithSTARTTLS sends email with STARTTLS encryption
func (s *SMTPEmailService) sendWithSTARTTLS(addr string, auth smtp.Auth, to string, message []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Quit()

	if err = client.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return w.Close()
}

// buildMessage creates a multipart/alternative message
func (s *SMTPEmailService) buildMessage(email Email) []byte {
	boundary := "boundary_" + strconv.FormatInt(time.Now().UnixNano(), 10)
	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		"To":           email.To,
		"Subject":      email.Subject,
		"MIME-Version": "1.0",
		"Date":         time.Now().Format(time.RFC1123Z),
		"Content-Type": fmt.Sprintf("multipart/alternative; boundary=%s", boundary),
	}

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\r\n", k, headers[k])
	}
	b.WriteString("\r\n")

	if email.TextBody != "" {
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", boundary, email.TextBody)
	}
	if email.HTMLBody != "" {
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, email.HTMLBody)
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String())
}

// MemoryEmailService records emails instead of sending them. Used when SMTP
// is not configured and in tests.
type MemoryEmailService struct {
	mu   sync.Mutex
	sent []Email
}

func NewMemoryEmailService() *MemoryEmailService {
	return &MemoryEmailService{}
}

func (s *MemoryEmailService) Send(ctx context.Context, email Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, email)
	logger.GetDefault().DebugContext(ctx, "Email captured", "to", email.To, "subject", email.Subject)
	return nil
}

func (s *MemoryEmailService) Sent() []Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Email, len(s.sent))
	copy(out, s.sent)
	return out
}
