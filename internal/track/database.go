package track

import (
	"time"

	"classtrack-go/internal/model"
)

// Database is the entity repository consumed by the service layer. It owns
// all write access to the four persisted entities; implementations discover
// the store's table layout at construction and build writes against the
// columns that actually exist.
type Database interface {
	// Module operations

	// Modules returns all modules in course order.
	Modules() ([]model.Module, error)

	// ModuleByID returns a module by primary key, or nil when absent.
	ModuleByID(id int64) (*model.Module, error)

	// ModuleByDriveFolder returns the module tracking the given remote
	// folder, or nil when absent.
	ModuleByDriveFolder(folderID string) (*model.Module, error)

	// CreateModule inserts a module, deriving its short code from the name
	// and its order index from the current maximum. Returns the new id.
	CreateModule(name, driveFolderID, description string) (int64, error)

	// Student operations

	// Students returns all students ordered by full name.
	Students() ([]model.Student, error)

	// StudentByEmail returns a student by email, or nil when absent.
	StudentByEmail(email string) (*model.Student, error)

	// UpsertStudent inserts a student or, when the email already exists,
	// updates the stored name. Returns the row id.
	UpsertStudent(fullName, email string) (int64, error)

	// Submission operations

	// UpsertSubmission inserts a submission for the given remote file or,
	// when the file id already exists, refreshes its mutable fields
	// (filename, size, modified time, detection time) without touching the
	// module/student association. Returns the row id.
	UpsertSubmission(moduleID, studentID int64, file File, detectedAt time.Time) (int64, error)

	// Sync run operations

	// CreateSyncRun inserts a sync run in the running state and returns its id.
	CreateSyncRun(syncType string, startedAt time.Time) (int64, error)

	// FinishSyncRun moves a sync run to a terminal status, recording counts
	// and a bounded error sample.
	FinishSyncRun(id int64, status string, filesProcessed, errorCount int, errorDetails string, completedAt time.Time) error

	// RecentSyncRuns returns the most recent runs, newest first.
	RecentSyncRuns(limit int) ([]model.SyncRun, error)

	// Read-side aggregations (report generator and stats command)

	// Statistics returns headline counters relative to now.
	Statistics(now time.Time) (model.Statistics, error)

	// ReportSummary counts modules, students, submissions and students
	// active since cutoff.
	ReportSummary(cutoff time.Time) (model.ReportSummary, error)

	// ModuleActivity returns per-module aggregates ordered by order index.
	ModuleActivity() ([]model.ModuleActivity, error)

	// StudentActivity returns per-student aggregates, most submissions first.
	StudentActivity() ([]model.StudentActivity, error)

	// RecentSubmissions returns submissions detected since cutoff, newest
	// first, capped at limit.
	RecentSubmissions(cutoff time.Time, limit int) ([]model.RecentSubmission, error)

	// DailyActivity returns per-day submission and active-student counts
	// since cutoff, oldest day first.
	DailyActivity(cutoff time.Time) ([]model.DailyActivity, error)

	// TopStudents returns the n most active students since cutoff.
	TopStudents(cutoff time.Time, n int) ([]model.TopStudent, error)

	// Close closes the underlying connection pool.
	Close() error
}
