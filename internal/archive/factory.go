// Package archive stores delivered reports for later retrieval. Reports
// carry student names and emails, so any backend can be wrapped with age
// encryption at rest.
package archive

import (
	"fmt"

	"classtrack-go/internal/config"
	"classtrack-go/internal/track"
)

// NewArchiveFromConfig creates an Archive implementation based on the
// archive config type. When recipient_path is set the resulting archive
// encrypts every report before it leaves the process.
func NewArchiveFromConfig(cfg config.ArchiveConfig) (track.Archive, error) {
	var inner track.Archive
	var err error

	switch cfg.Type {
	case "memory":
		inner = NewMemoryArchive()
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 archive requires s3_bucket to be set")
		}
		inner, err = NewS3Archive(cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region)
		if err != nil {
			return nil, err
		}
	case "filesystem":
		if cfg.FSArchiveRoot == "" {
			return nil, fmt.Errorf("filesystem archive requires fs_archive_root to be set")
		}
		inner, err = NewFileSystemArchive(cfg.FSArchiveRoot)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown archive type: %s", cfg.Type)
	}

	if cfg.RecipientPath != "" {
		return NewEncryptingArchive(inner, cfg.RecipientPath)
	}
	return inner, nil
}
