package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for classtrack. Secrets never
// live here; they come from the environment (DATABASE_URL, RESEND_API_KEY,
// SMTP_PASSWORD) so the file can be checked into a private repo.
type Config struct {
	BaseDir      string `toml:"base_dir"`
	LogDir       string `toml:"log_dir"`
	RootFolderID string `toml:"root_folder_id"`

	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	Scan     ScanConfig     `toml:"scan"`
	Report   ReportConfig   `toml:"report"`
	Mailer   MailerConfig   `toml:"mailer"`
	Archive  ArchiveConfig  `toml:"archive"`
}

// DatabaseConfig represents configuration for the submissions database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type string `toml:"type"`          // "postgres" or "memory"
	URL  string `toml:"url,omitempty"` // only used for type=postgres; DATABASE_URL overrides
}

// StorageConfig holds remote file storage settings.
type StorageConfig struct {
	CredentialsFile string `toml:"credentials_file"` // service account JSON key
}

// ScanConfig tunes what a scan considers.
type ScanConfig struct {
	MimeTypes []string `toml:"mime_types"` // empty = all file types
}

// DefaultMimeTypes lists the file types a scan considers submissions by
// default: images, PDFs, Word documents and plain text. An explicit empty
// list in the config disables the filter.
func DefaultMimeTypes() []string {
	return []string{
		"image/jpeg", "image/jpg", "image/png", "image/gif", "image/bmp",
		"application/pdf",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/msword",
		"text/plain",
	}
}

// ReportConfig holds periodic report settings.
type ReportConfig struct {
	LookbackDays int      `toml:"lookback_days"`
	Sender       string   `toml:"sender"`
	Recipients   []string `toml:"recipients"`
	OutputDir    string   `toml:"output_dir"`
}

// MailerConfig represents configuration for report delivery.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type MailerConfig struct {
	Type string `toml:"type"` // "resend", "smtp", or "memory"

	// SMTP-specific fields (only used when Type == "smtp")
	SMTPHost string `toml:"smtp_host,omitempty"`
	SMTPPort int    `toml:"smtp_port,omitempty"`
	SMTPUser string `toml:"smtp_user,omitempty"`
}

// ArchiveConfig represents configuration for the report archive backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ArchiveConfig struct {
	Type string `toml:"type"` // "memory", "s3", or "filesystem"

	// S3-specific fields (only used when Type == "s3")
	S3Bucket string `toml:"s3_bucket,omitempty"`
	S3Prefix string `toml:"s3_prefix,omitempty"`
	S3Region string `toml:"s3_region,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSArchiveRoot string `toml:"fs_archive_root,omitempty"`

	// Optional age recipient; reports carry student data, so archives can
	// be encrypted at rest. Empty disables encryption.
	RecipientPath string `toml:"recipient_path,omitempty"`
}

// NewConfig creates a new Config with the provided values and sensible
// defaults.
func NewConfig(baseDir, rootFolderID string) *Config {
	return &Config{
		BaseDir:      baseDir,
		LogDir:       filepath.Join(baseDir, "log"),
		RootFolderID: rootFolderID,
		Database: DatabaseConfig{
			Type: "postgres",
		},
		Storage: StorageConfig{
			CredentialsFile: filepath.Join(baseDir, "credentials.json"),
		},
		Scan: ScanConfig{
			MimeTypes: DefaultMimeTypes(),
		},
		Report: ReportConfig{
			LookbackDays: 7,
			OutputDir:    filepath.Join(baseDir, "reports"),
		},
		Mailer: MailerConfig{
			Type: "resend",
		},
		Archive: ArchiveConfig{
			Type:          "filesystem",
			FSArchiveRoot: filepath.Join(baseDir, "archive"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path and applies
// environment overrides.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv lets the environment override file values for settings that are
// secrets or deployment-specific.
func (c *Config) applyEnv() {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Database.URL = url
	}
	if root := os.Getenv("CLASSTRACK_ROOT_FOLDER_ID"); root != "" {
		c.RootFolderID = root
	}
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
