// Package notify delivers rendered reports by email.
package notify

import (
	"fmt"
	"os"

	"classtrack-go/internal/config"
	"classtrack-go/internal/track"
)

// NewMailerFromConfig creates a Mailer implementation based on the mailer
// config type. smtpPassword is only used for type=smtp; the resend backend
// reads RESEND_API_KEY from the environment.
func NewMailerFromConfig(cfg config.MailerConfig, sender, smtpPassword string) (track.Mailer, error) {
	switch cfg.Type {
	case "resend":
		apiKey := os.Getenv("RESEND_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("RESEND_API_KEY required for resend mailer")
		}
		return NewResendMailer(apiKey, sender), nil
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("smtp_host required for smtp mailer")
		}
		port := cfg.SMTPPort
		if port == 0 {
			port = 587
		}
		return NewSMTPMailer(cfg.SMTPHost, port, cfg.SMTPUser, smtpPassword, sender), nil
	case "memory":
		return NewMemoryMailer(), nil
	default:
		return nil, fmt.Errorf("unknown mailer type: %s", cfg.Type)
	}
}
