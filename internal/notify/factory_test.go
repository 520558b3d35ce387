package notify_test

import (
	"strings"
	"testing"

	"classtrack-go/internal/config"
	"classtrack-go/internal/notify"
)

func TestNewMailerFromConfig(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		m, err := notify.NewMailerFromConfig(config.MailerConfig{Type: "memory"}, "reports@example.com", "")
		if err != nil {
			t.Fatalf("NewMailerFromConfig() error = %v", err)
		}
		if _, ok := m.(*notify.MemoryMailer); !ok {
			t.Errorf("mailer = %T, want *notify.MemoryMailer", m)
		}
	})

	t.Run("smtp", func(t *testing.T) {
		cfg := config.MailerConfig{Type: "smtp", SMTPHost: "smtp.example.com", SMTPUser: "reports"}
		m, err := notify.NewMailerFromConfig(cfg, "reports@example.com", "secret")
		if err != nil {
			t.Fatalf("NewMailerFromConfig() error = %v", err)
		}
		if _, ok := m.(*notify.SMTPMailer); !ok {
			t.Errorf("mailer = %T, want *notify.SMTPMailer", m)
		}
	})

	t.Run("smtp requires host", func(t *testing.T) {
		_, err := notify.NewMailerFromConfig(config.MailerConfig{Type: "smtp"}, "reports@example.com", "")
		if err == nil || !strings.Contains(err.Error(), "smtp_host") {
			t.Fatalf("error = %v, want smtp_host required", err)
		}
	})

	t.Run("resend requires api key", func(t *testing.T) {
		t.Setenv("RESEND_API_KEY", "")
		_, err := notify.NewMailerFromConfig(config.MailerConfig{Type: "resend"}, "reports@example.com", "")
		if err == nil || !strings.Contains(err.Error(), "RESEND_API_KEY") {
			t.Fatalf("error = %v, want RESEND_API_KEY required", err)
		}
	})

	t.Run("resend", func(t *testing.T) {
		t.Setenv("RESEND_API_KEY", "re_test_key")
		m, err := notify.NewMailerFromConfig(config.MailerConfig{Type: "resend"}, "reports@example.com", "")
		if err != nil {
			t.Fatalf("NewMailerFromConfig() error = %v", err)
		}
		if _, ok := m.(*notify.ResendMailer); !ok {
			t.Errorf("mailer = %T, want *notify.ResendMailer", m)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := notify.NewMailerFromConfig(config.MailerConfig{Type: "carrier-pigeon"}, "reports@example.com", "")
		if err == nil || !strings.Contains(err.Error(), "unknown mailer type") {
			t.Fatalf("error = %v, want unknown mailer type", err)
		}
	})
}
