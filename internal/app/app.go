package app

import (
	"context"
	"fmt"
	"os"

	"classtrack-go/internal/archive"
	"classtrack-go/internal/config"
	"classtrack-go/internal/database"
	"classtrack-go/internal/drive"
	"classtrack-go/internal/model"
	"classtrack-go/internal/notify"
	"classtrack-go/internal/report"
	"classtrack-go/internal/track"
)

// Operation names identify the CLI command being run. They select which
// dependencies get wired: stats and history need only the database, a scan
// needs the storage client, and a report needs the renderer, mailer and
// archive.
const (
	OpScan       = "Scan"
	OpSendReport = "SendReport"
	OpStats      = "Stats"
	OpHistory    = "History"
)

// App is the application layer between the CLI and the track service.
// It constructs dependencies from config and manages their lifecycle on
// Close.
type App struct {
	cfg     *config.Config
	db      track.Database
	service *track.Service
	logFile *os.File
}

// NewApp creates a wired App for the given operation. smtpPassword is only
// consulted when the config selects the smtp mailer. The caller must call
// Close when done.
func NewApp(cfg *config.Config, operation, smtpPassword string) (*App, error) {
	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	opID := track.UUIDGenerator{}.New()
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	var storage track.Storage
	if operation == OpScan {
		client, err := drive.NewClient(context.Background(), cfg.Storage.CredentialsFile)
		if err != nil {
			db.Close()
			logFile.Close()
			return nil, fmt.Errorf("creating storage client: %w", err)
		}
		if err := client.VerifyAccess(cfg.RootFolderID); err != nil {
			db.Close()
			logFile.Close()
			return nil, err
		}
		storage = client
	}

	var renderer track.ReportRenderer
	var mailer track.Mailer
	var arch track.Archive
	if operation == OpSendReport {
		renderer = report.NewExcelRenderer()

		mailer, err = notify.NewMailerFromConfig(cfg.Mailer, cfg.Report.Sender, smtpPassword)
		if err != nil {
			db.Close()
			logFile.Close()
			return nil, fmt.Errorf("creating mailer: %w", err)
		}

		arch, err = archive.NewArchiveFromConfig(cfg.Archive)
		if err != nil {
			db.Close()
			logFile.Close()
			return nil, fmt.Errorf("creating archive: %w", err)
		}
	}

	svc := track.NewService(db, storage, track.NewResolver(), renderer, mailer, arch,
		&slogAdapter{l: logger}, track.RealClock{}, track.UUIDGenerator{},
		cfg.RootFolderID, cfg.Scan.MimeTypes)

	return &App{
		cfg:     cfg,
		db:      db,
		service: svc,
		logFile: logFile,
	}, nil
}

// RunFullScan runs the end-to-end scan.
func (a *App) RunFullScan() (*track.ScanResult, error) {
	return a.service.FullScan()
}

// RunReportCycle renders, delivers and archives a report. days and
// recipients override the config when non-zero; the returned string is the
// rendered file's path.
func (a *App) RunReportCycle(days int, recipients []string) (string, error) {
	opts := track.ReportOptions{
		LookbackDays: a.cfg.Report.LookbackDays,
		Recipients:   a.cfg.Report.Recipients,
		OutputDir:    a.cfg.Report.OutputDir,
	}
	if days > 0 {
		opts.LookbackDays = days
	}
	if len(recipients) > 0 {
		opts.Recipients = recipients
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = 7
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	return a.service.RunReportCycle(opts)
}

// Stats returns the headline counters.
func (a *App) Stats() (model.Statistics, error) {
	return a.service.Stats()
}

// History returns the most recent sync runs.
func (a *App) History(limit int) ([]model.SyncRun, error) {
	return a.service.History(limit)
}

// Close releases the database connection and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.db.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
