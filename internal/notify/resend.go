package notify

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/resend/resend-go/v2"
)

// ResendMailer sends reports through the Resend API.
type ResendMailer struct {
	client *resend.Client
	sender string
}

// NewResendMailer creates a ResendMailer.
func NewResendMailer(apiKey, sender string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		sender: sender,
	}
}

// SendReport emails the report with the workbook attached.
func (m *ResendMailer) SendReport(recipients []string, subject, htmlBody, attachmentPath string) error {
	content, err := os.ReadFile(attachmentPath)
	if err != nil {
		return fmt.Errorf("reading attachment: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    m.sender,
		To:      recipients,
		Subject: subject,
		Html:    htmlBody,
		Attachments: []*resend.Attachment{
			{
				Filename: filepath.Base(attachmentPath),
				Content:  content,
			},
		},
	}

	if _, err := m.client.Emails.Send(params); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}
