package notify

// SentEmail records one delivery made through the memory mailer.
type SentEmail struct {
	Recipients     []string
	Subject        string
	HTMLBody       string
	AttachmentPath string
}

// MemoryMailer records deliveries instead of sending them. Used in tests.
type MemoryMailer struct {
	Sent []SentEmail
}

// NewMemoryMailer creates a MemoryMailer.
func NewMemoryMailer() *MemoryMailer {
	return &MemoryMailer{}
}

func (m *MemoryMailer) SendReport(recipients []string, subject, htmlBody, attachmentPath string) error {
	m.Sent = append(m.Sent, SentEmail{
		Recipients:     recipients,
		Subject:        subject,
		HTMLBody:       htmlBody,
		AttachmentPath: attachmentPath,
	})
	return nil
}
