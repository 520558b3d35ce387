package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"filippo.io/age"

	"classtrack-go/internal/track"
)

// EncryptingArchive wraps another archive and age-encrypts every report
// before handing it over. Only the recipient's private key can read the
// archived copies.
type EncryptingArchive struct {
	inner     track.Archive
	recipient age.Recipient
}

// NewEncryptingArchive loads an age X25519 recipient from a file, one
// recipient per line with # comments, and wraps the inner archive.
func NewEncryptingArchive(inner track.Archive, recipientPath string) (*EncryptingArchive, error) {
	recipient, err := loadRecipient(recipientPath)
	if err != nil {
		return nil, err
	}
	return &EncryptingArchive{inner: inner, recipient: recipient}, nil
}

func loadRecipient(path string) (age.Recipient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipient file: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		recipient, err := age.ParseX25519Recipient(line)
		if err != nil {
			return nil, fmt.Errorf("parsing recipient: %w", err)
		}
		return recipient, nil
	}
	return nil, fmt.Errorf("no recipient found in %s", path)
}

// StoreReport encrypts the report and stores it under name + ".age". The
// declared size is recomputed since encryption changes the byte count.
func (a *EncryptingArchive) StoreReport(name string, r io.Reader, _ int64) error {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, a.recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("encrypting report: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing encrypted report: %w", err)
	}

	return a.inner.StoreReport(name+".age", bytes.NewReader(buf.Bytes()), int64(buf.Len()))
}

var _ track.Archive = (*EncryptingArchive)(nil)
