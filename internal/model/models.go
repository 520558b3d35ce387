package model

import "time"

// Module represents a course unit backed by one top-level Drive folder.
type Module struct {
	ID             int64
	Name           string
	Code           string // generated short code, e.g. "MOD07"
	Description    string
	DriveFolderID  string // unique external folder reference
	DriveFolderURL string
	OrderIndex     int
}

// Student is a person identified by a (name, email) pair. Email may be a
// synthesized placeholder when identity came from filename parsing alone.
type Student struct {
	ID       int64
	FullName string
	Email    string
}

// Submission is one detected file attributed to one student within one module.
type Submission struct {
	ID            int64
	ModuleID      int64
	StudentID     int64
	FileID        string // unique external file id
	Filename      string
	MimeType      string
	SizeBytes     int64
	SizeMB        float64
	FileExtension string
	DriveURL      string
	UploadedBy    string // last modifying user's email, when present
	OwnerEmail    string
	CreatedTime   *time.Time // remote creation time, nil when unparseable
	ModifiedTime  *time.Time
	DetectedAt    time.Time
}

// SyncRun is one execution of the end-to-end scan or report job.
type SyncRun struct {
	ID             int64
	SyncType       string
	Status         string // running, completed, completed_with_errors, failed
	StartedAt      time.Time
	CompletedAt    *time.Time
	FilesProcessed int
	Errors         int
	ErrorDetails   string // bounded JSON sample, never an unbounded log
}

// SyncRun status values.
const (
	RunStatusRunning             = "running"
	RunStatusCompleted           = "completed"
	RunStatusCompletedWithErrors = "completed_with_errors"
	RunStatusFailed              = "failed"
)

// Statistics are the headline counters shown by the stats command.
type Statistics struct {
	TotalStudents           int
	TotalModules            int
	TotalSubmissions        int
	SubmissionsLastWeek     int
	ActiveStudentsLastMonth int
}

// ReportSummary is the executive-summary block of the Excel report.
type ReportSummary struct {
	TotalModules     int
	TotalStudents    int
	TotalSubmissions int
	ActiveStudents   int // students with activity inside the lookback window
}

// ModuleActivity is one row of the per-module report sheet.
type ModuleActivity struct {
	Code           string
	Name           string
	Students       int
	Submissions    int
	LastSubmission *time.Time
	DriveFolderURL string
}

// StudentActivity is one row of the per-student report sheet.
type StudentActivity struct {
	FullName         string
	Email            string
	ModulesCompleted int
	TotalSubmissions int
	FirstActivity    *time.Time
	LastActivity     *time.Time
}

// RecentSubmission is one row of the detailed submissions sheet.
type RecentSubmission struct {
	StudentName   string
	Email         string
	ModuleName    string
	Filename      string
	FileExtension string
	SizeMB        float64
	DetectedAt    time.Time
	DriveURL      string
}

// DailyActivity is one per-day row of the statistics sheet.
type DailyActivity struct {
	Date           string // YYYY-MM-DD
	Submissions    int
	ActiveStudents int
}

// TopStudent is one row of the most-active-students ranking.
type TopStudent struct {
	FullName    string
	Submissions int
}

// ReportData aggregates everything the report renderer needs.
type ReportData struct {
	GeneratedAt       time.Time
	PeriodDays        int
	Summary           ReportSummary
	Modules           []ModuleActivity
	Students          []StudentActivity
	RecentSubmissions []RecentSubmission
	Daily             []DailyActivity
	TopStudents       []TopStudent
}
