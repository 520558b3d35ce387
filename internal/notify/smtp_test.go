package notify

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSMTPMailer_BuildMessage(t *testing.T) {
	t.Parallel()

	attachment := filepath.Join(t.TempDir(), "report.xlsx")
	content := strings.Repeat("workbook", 20)
	if err := os.WriteFile(attachment, []byte(content), 0644); err != nil {
		t.Fatalf("writing attachment: %v", err)
	}

	m := NewSMTPMailer("smtp.example.com", 587, "reports", "secret", "reports@example.com")
	msg, err := m.buildMessage([]string{"a@example.com", "b@example.com"},
		"Submissions report 2024-01-15", "<h2>Report</h2>", attachment)
	if err != nil {
		t.Fatalf("buildMessage() error = %v", err)
	}

	text := string(msg)
	for _, want := range []string{
		"From: reports@example.com\r\n",
		"To: a@example.com, b@example.com\r\n",
		"Subject: Submissions report 2024-01-15\r\n",
		"Content-Type: multipart/mixed; boundary=\"classtrack-report-boundary\"\r\n",
		"Content-Type: text/html; charset=utf-8\r\n\r\n<h2>Report</h2>",
		"Content-Disposition: attachment; filename=\"report.xlsx\"\r\n",
		"--classtrack-report-boundary--\r\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("message missing %q", want)
		}
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(content))
	if !strings.Contains(text, encoded[:76]+"\r\n"+encoded[76:152]) {
		t.Error("attachment not base64 encoded in 76 character lines")
	}
}

func TestSMTPMailer_BuildMessage_EncodesSubject(t *testing.T) {
	t.Parallel()

	attachment := filepath.Join(t.TempDir(), "report.xlsx")
	if err := os.WriteFile(attachment, []byte("x"), 0644); err != nil {
		t.Fatalf("writing attachment: %v", err)
	}

	m := NewSMTPMailer("smtp.example.com", 587, "reports", "secret", "reports@example.com")
	msg, err := m.buildMessage([]string{"a@example.com"}, "Reporte de entregas: módulos", "body", attachment)
	if err != nil {
		t.Fatalf("buildMessage() error = %v", err)
	}

	if !strings.Contains(string(msg), "=?utf-8?q?") {
		t.Error("non-ASCII subject not Q-encoded")
	}
}

func TestSMTPMailer_BuildMessage_MissingAttachment(t *testing.T) {
	t.Parallel()

	m := NewSMTPMailer("smtp.example.com", 587, "reports", "secret", "reports@example.com")
	_, err := m.buildMessage([]string{"a@example.com"}, "subject", "body", "/nonexistent/report.xlsx")
	if err == nil {
		t.Fatal("buildMessage() error = nil, want error for missing attachment")
	}
}
