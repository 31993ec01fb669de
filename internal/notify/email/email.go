package email

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/astroadvisor/internal/config"
	mail "github.com/xhit/go-simple-mail/v2"
)

// NotificationService sends account related emails.
type NotificationService struct {
	config *config.EmailConfig
}

// Welcome contains the data for a welcome email.
type Welcome struct {
	UserEmail string
	Username  string
	BirthDate string
	Location  string
}

// New creates a new email notification service.
func New(cfg *config.EmailConfig) *NotificationService {
	return &NotificationService{
		config: cfg,
	}
}

// Enabled reports whether emails are sent at all.
func (n *NotificationService) Enabled() bool {
	return n != nil && n.config != nil && n.config.Enabled
}

// SendWelcome sends a welcome email to a newly registered user.
func (n *NotificationService) SendWelcome(welcome Welcome) error {
	if !n.Enabled() {
		log.Debug("Email notifications are disabled, skipping welcome email")
		return nil
	}

	if welcome.UserEmail == "" {
		log.Warn("User email is empty, skipping welcome email", "user", welcome.Username)
		return nil
	}

	body, err := generateEmailBody("welcome.html", welcome)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return n.sendEmail(welcome.UserEmail, "Welcome to Astro Advisor", body)
}

//go:embed templates/*.html
var templatesFS embed.FS

// generateEmailBody renders the named template.
func generateEmailBody(name string, data any) (string, error) {
	t, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// sendEmail sends an email using go-simple-mail library.
func (n *NotificationService) sendEmail(to, subject, body string) error {
	server := mail.NewSMTPClient()
	server.Host = n.config.SMTPHost
	server.Port = n.config.SMTPPort
	server.Username = n.config.Username
	server.Password = n.config.Password

	switch {
	case n.config.UseSSL:
		server.Encryption = mail.EncryptionSSLTLS
	case n.config.UseTLS:
		server.Encryption = mail.EncryptionSTARTTLS
	default:
		server.Encryption = mail.EncryptionNone
	}

	if n.config.InsecureSkipVerify {
		server.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	smtpClient, err := server.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() {
		if closeErr := smtpClient.Close(); closeErr != nil {
			log.Warn("Failed to close SMTP client", "error", closeErr)
		}
	}()

	fromName := n.config.FromName
	if fromName == "" {
		fromName = "Astro Advisor"
	}

	msg := mail.NewMSG()
	msg.SetFrom(fmt.Sprintf("%s <%s>", fromName, n.config.FromEmail))
	msg.AddTo(to)
	msg.SetSubject(subject)
	msg.SetBody(mail.TextHTML, body)

	if msg.Error != nil {
		return fmt.Errorf("failed to build email: %w", msg.Error)
	}

	if err := msg.Send(smtpClient); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info("Email sent successfully", "to", to, "subject", subject)
	return nil
}
