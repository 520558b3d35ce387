package track

import "classtrack-go/internal/model"

// Service is the orchestration layer that coordinates the storage client,
// identity resolver and repository to perform the high-level operations
// needed by the CLI and the scheduled job.
type Service struct {
	database Database
	storage  Storage
	resolver *Resolver
	renderer ReportRenderer
	mailer   Mailer
	archive  Archive
	logger   Logger
	clock    Clock
	idgen    IDGenerator

	rootFolderID string
	mimeTypes    []string
}

// NewService creates a Service with the provided dependencies.
// rootFolderID names the remote folder whose child folders are the course
// modules; mimeTypes restricts which files a scan considers (empty = all).
func NewService(database Database, storage Storage, resolver *Resolver, renderer ReportRenderer, mailer Mailer, archive Archive, logger Logger, clock Clock, idgen IDGenerator, rootFolderID string, mimeTypes []string) *Service {
	return &Service{
		database:     database,
		storage:      storage,
		resolver:     resolver,
		renderer:     renderer,
		mailer:       mailer,
		archive:      archive,
		logger:       logger,
		clock:        clock,
		idgen:        idgen,
		rootFolderID: rootFolderID,
		mimeTypes:    mimeTypes,
	}
}

// Stats returns the headline counters relative to the current time.
func (s *Service) Stats() (model.Statistics, error) {
	return s.database.Statistics(s.clock.Now())
}

// History returns the most recent sync runs, newest first.
func (s *Service) History(limit int) ([]model.SyncRun, error) {
	return s.database.RecentSyncRuns(limit)
}
