package notify

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
)

// SMTPMailer sends reports through a plain SMTP relay with STARTTLS
// authentication. It exists for deployments that cannot use a hosted email
// API.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	sender   string
}

// NewSMTPMailer creates an SMTPMailer.
func NewSMTPMailer(host string, port int, username, password, sender string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		sender:   sender,
	}
}

// SendReport emails the report with the workbook attached as a MIME part.
func (m *SMTPMailer) SendReport(recipients []string, subject, htmlBody, attachmentPath string) error {
	msg, err := m.buildMessage(recipients, subject, htmlBody, attachmentPath)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := smtp.SendMail(addr, auth, m.sender, recipients, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

func (m *SMTPMailer) buildMessage(recipients []string, subject, htmlBody, attachmentPath string) ([]byte, error) {
	content, err := os.ReadFile(attachmentPath)
	if err != nil {
		return nil, fmt.Errorf("reading attachment: %w", err)
	}
	filename := filepath.Base(attachmentPath)

	const boundary = "classtrack-report-boundary"
	var b bytes.Buffer

	fmt.Fprintf(&b, "From: %s\r\n", m.sender)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: application/vnd.openxmlformats-officedocument.spreadsheetml.sheet\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(&b, "Content-Disposition: attachment; filename=%q\r\n\r\n", filename)

	encoded := base64.StdEncoding.EncodeToString(content)
	// RFC 2045 line length limit.
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.Bytes(), nil
}
