package database

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"classtrack-go/internal/model"
	"classtrack-go/internal/track"
)

// Store implements track.Database on top of database/sql. One implementation
// serves both PostgreSQL and SQLite; the Dialect carries the differences and
// the Catalog filters every write down to the columns the live schema has.
type Store struct {
	db      *sql.DB
	dialect Dialect
	catalog *Catalog
}

// NewStore wraps an open connection. It discovers the schema catalog up
// front; a discovery failure is fatal since no write can be validated
// without it.
func NewStore(db *sql.DB, dialect Dialect) (*Store, error) {
	cat, err := DiscoverCatalog(db, dialect)
	if err != nil {
		return nil, fmt.Errorf("discovering schema: %w", err)
	}
	return &Store{db: db, dialect: dialect, catalog: cat}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a transaction. Each write is its own transaction so
// a failing file never poisons the rest of a scan.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Module operations

func (s *Store) Modules() ([]model.Module, error) {
	rows, err := s.db.Query(`SELECT id, name, code, description, drive_folder_id, drive_folder_url, order_index
		FROM modules ORDER BY order_index, id`)
	if err != nil {
		return nil, fmt.Errorf("listing modules: %w", err)
	}
	defer rows.Close()

	var modules []model.Module
	for rows.Next() {
		var m model.Module
		if err := rows.Scan(&m.ID, &m.Name, &m.Code, &m.Description, &m.DriveFolderID, &m.DriveFolderURL, &m.OrderIndex); err != nil {
			return nil, fmt.Errorf("scanning module: %w", err)
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

func (s *Store) ModuleByID(id int64) (*model.Module, error) {
	q := fmt.Sprintf(`SELECT id, name, code, description, drive_folder_id, drive_folder_url, order_index
		FROM modules WHERE id = %s`, s.dialect.Placeholder(1))
	return s.scanModule(s.db.QueryRow(q, id))
}

func (s *Store) ModuleByDriveFolder(folderID string) (*model.Module, error) {
	q := fmt.Sprintf(`SELECT id, name, code, description, drive_folder_id, drive_folder_url, order_index
		FROM modules WHERE drive_folder_id = %s`, s.dialect.Placeholder(1))
	return s.scanModule(s.db.QueryRow(q, folderID))
}

func (s *Store) scanModule(row *sql.Row) (*model.Module, error) {
	var m model.Module
	err := row.Scan(&m.ID, &m.Name, &m.Code, &m.Description, &m.DriveFolderID, &m.DriveFolderURL, &m.OrderIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning module: %w", err)
	}
	return &m, nil
}

// CreateModule inserts a module with a generated short code and the next
// order_index.
func (s *Store) CreateModule(name, driveFolderID, description string) (int64, error) {
	var id int64
	err := s.withTx(func(tx *sql.Tx) error {
		var next int
		if err := tx.QueryRow(`SELECT COALESCE(MAX(order_index), 0) + 1 FROM modules`).Scan(&next); err != nil {
			return fmt.Errorf("next order index: %w", err)
		}

		fields := []Field{
			{"name", name},
			{"code", GenerateModuleCode(name)},
			{"description", description},
			{"drive_folder_id", driveFolderID},
			{"drive_folder_url", folderURL(driveFolderID)},
			{"order_index", next},
		}
		stmt, args, err := BuildInsert(s.catalog, s.dialect, "modules", fields)
		if err != nil {
			return err
		}
		stmt += " RETURNING id"
		if err := tx.QueryRow(stmt, args...).Scan(&id); err != nil {
			return fmt.Errorf("inserting module %s: %w", name, err)
		}
		return nil
	})
	return id, err
}

// Student operations

func (s *Store) Students() ([]model.Student, error) {
	rows, err := s.db.Query(`SELECT id, full_name, email FROM students ORDER BY full_name`)
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var st model.Student
		if err := rows.Scan(&st.ID, &st.FullName, &st.Email); err != nil {
			return nil, fmt.Errorf("scanning student: %w", err)
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

func (s *Store) StudentByEmail(email string) (*model.Student, error) {
	q := fmt.Sprintf(`SELECT id, full_name, email FROM students WHERE email = %s`, s.dialect.Placeholder(1))
	var st model.Student
	err := s.db.QueryRow(q, email).Scan(&st.ID, &st.FullName, &st.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning student: %w", err)
	}
	return &st, nil
}

// UpsertStudent inserts a student or, on an email conflict, refreshes the
// name. The email stays the identity key and is never rewritten.
func (s *Store) UpsertStudent(fullName, email string) (int64, error) {
	fields := []Field{
		{"full_name", fullName},
		{"email", email},
	}
	stmt, args, err := BuildInsert(s.catalog, s.dialect, "students", fields)
	if err != nil {
		return 0, err
	}

	set := "full_name = EXCLUDED.full_name"
	if s.catalog.HasColumn("students", "updated_at") {
		set += ", updated_at = " + s.dialect.Now()
	}
	stmt += " ON CONFLICT (email) DO UPDATE SET " + set + " RETURNING id"

	var id int64
	err = s.withTx(func(tx *sql.Tx) error {
		if err := tx.QueryRow(stmt, args...).Scan(&id); err != nil {
			return fmt.Errorf("upserting student %s: %w", email, err)
		}
		return nil
	})
	return id, err
}

// Submission operations

// UpsertSubmission inserts a submission or, when the file was seen before,
// refreshes only the fields that change when a file is re-uploaded: name,
// size, modified time and detection time. Attribution never changes on
// re-detection.
func (s *Store) UpsertSubmission(moduleID, studentID int64, file track.File, detectedAt time.Time) (int64, error) {
	fields := []Field{
		{"module_id", moduleID},
		{"student_id", studentID},
		{"file_id", file.ID},
		{"filename", file.Name},
		{"mime_type", file.MimeType},
		{"size_bytes", file.Size},
		{"size_mb", sizeMB(file.Size)},
		{"file_extension", fileExtension(file.Name)},
		{"drive_url", fileURL(file.ID)},
		{"uploaded_by", uploaderEmail(file)},
		{"owner_email", ownerEmail(file)},
		{"created_time", ParseDriveTime(file.CreatedTime)},
		{"modified_time", ParseDriveTime(file.ModifiedTime)},
		{"detected_at", detectedAt},
	}
	stmt, args, err := BuildInsert(s.catalog, s.dialect, "submissions", fields)
	if err != nil {
		return 0, err
	}

	var set []string
	for _, col := range []string{"filename", "size_bytes", "size_mb", "modified_time", "detected_at"} {
		if s.catalog.HasColumn("submissions", col) {
			set = append(set, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}
	stmt += " ON CONFLICT (file_id) DO UPDATE SET " + strings.Join(set, ", ") + " RETURNING id"

	var id int64
	err = s.withTx(func(tx *sql.Tx) error {
		if err := tx.QueryRow(stmt, args...).Scan(&id); err != nil {
			return fmt.Errorf("upserting submission %s: %w", file.Name, err)
		}
		return nil
	})
	return id, err
}

// Sync run operations

func (s *Store) CreateSyncRun(syncType string, startedAt time.Time) (int64, error) {
	fields := []Field{
		{"sync_type", syncType},
		{"status", model.RunStatusRunning},
		{"started_at", startedAt},
	}
	stmt, args, err := BuildInsert(s.catalog, s.dialect, "sync_logs", fields)
	if err != nil {
		return 0, err
	}
	stmt += " RETURNING id"

	var id int64
	err = s.withTx(func(tx *sql.Tx) error {
		if err := tx.QueryRow(stmt, args...).Scan(&id); err != nil {
			return fmt.Errorf("creating sync run: %w", err)
		}
		return nil
	})
	return id, err
}

func (s *Store) FinishSyncRun(id int64, status string, filesProcessed, errorCount int, errorDetails string, completedAt time.Time) error {
	q := fmt.Sprintf(`UPDATE sync_logs
		SET status = %s, completed_at = %s, files_processed = %s, errors_count = %s, error_details = %s
		WHERE id = %s`,
		s.dialect.Placeholder(1), s.dialect.Placeholder(2), s.dialect.Placeholder(3),
		s.dialect.Placeholder(4), s.dialect.Placeholder(5), s.dialect.Placeholder(6))

	return s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(q, status, completedAt, filesProcessed, errorCount, errorDetails, id)
		if err != nil {
			return fmt.Errorf("finishing sync run %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err == nil && n == 0 {
			return fmt.Errorf("sync run %d not found", id)
		}
		return nil
	})
}

func (s *Store) RecentSyncRuns(limit int) ([]model.SyncRun, error) {
	q := fmt.Sprintf(`SELECT id, sync_type, status, started_at, completed_at, files_processed, errors_count, error_details
		FROM sync_logs ORDER BY started_at DESC, id DESC LIMIT %s`, s.dialect.Placeholder(1))
	rows, err := s.db.Query(q, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sync runs: %w", err)
	}
	defer rows.Close()

	var runs []model.SyncRun
	for rows.Next() {
		var r model.SyncRun
		var completed sql.NullTime
		if err := rows.Scan(&r.ID, &r.SyncType, &r.Status, &r.StartedAt, &completed, &r.FilesProcessed, &r.Errors, &r.ErrorDetails); err != nil {
			return nil, fmt.Errorf("scanning sync run: %w", err)
		}
		if completed.Valid {
			t := completed.Time
			r.CompletedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Aggregate queries. Time windows are always passed in as parameters so the
// same query text serves both engines and tests can pin the clock.

func (s *Store) Statistics(now time.Time) (model.Statistics, error) {
	var stats model.Statistics
	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM students`, &stats.TotalStudents},
		{`SELECT COUNT(*) FROM modules`, &stats.TotalModules},
		{`SELECT COUNT(*) FROM submissions`, &stats.TotalSubmissions},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return stats, fmt.Errorf("counting: %w", err)
		}
	}

	q := fmt.Sprintf(`SELECT COUNT(*) FROM submissions WHERE detected_at >= %s`, s.dialect.Placeholder(1))
	if err := s.db.QueryRow(q, now.AddDate(0, 0, -7)).Scan(&stats.SubmissionsLastWeek); err != nil {
		return stats, fmt.Errorf("counting recent submissions: %w", err)
	}

	q = fmt.Sprintf(`SELECT COUNT(DISTINCT student_id) FROM submissions WHERE detected_at >= %s`, s.dialect.Placeholder(1))
	if err := s.db.QueryRow(q, now.AddDate(0, -1, 0)).Scan(&stats.ActiveStudentsLastMonth); err != nil {
		return stats, fmt.Errorf("counting active students: %w", err)
	}
	return stats, nil
}

func (s *Store) ReportSummary(cutoff time.Time) (model.ReportSummary, error) {
	var sum model.ReportSummary
	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM modules`, &sum.TotalModules},
		{`SELECT COUNT(*) FROM students`, &sum.TotalStudents},
		{`SELECT COUNT(*) FROM submissions`, &sum.TotalSubmissions},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return sum, fmt.Errorf("counting: %w", err)
		}
	}

	q := fmt.Sprintf(`SELECT COUNT(DISTINCT student_id) FROM submissions WHERE detected_at >= %s`, s.dialect.Placeholder(1))
	if err := s.db.QueryRow(q, cutoff).Scan(&sum.ActiveStudents); err != nil {
		return sum, fmt.Errorf("counting active students: %w", err)
	}
	return sum, nil
}

func (s *Store) ModuleActivity() ([]model.ModuleActivity, error) {
	rows, err := s.db.Query(`SELECT m.code, m.name,
			COUNT(DISTINCT sub.student_id), COUNT(sub.id), MAX(sub.detected_at), m.drive_folder_url
		FROM modules m
		LEFT JOIN submissions sub ON sub.module_id = m.id
		GROUP BY m.id, m.code, m.name, m.drive_folder_url, m.order_index
		ORDER BY m.order_index, m.id`)
	if err != nil {
		return nil, fmt.Errorf("module activity: %w", err)
	}
	defer rows.Close()

	var out []model.ModuleActivity
	for rows.Next() {
		var a model.ModuleActivity
		var last nullTime
		if err := rows.Scan(&a.Code, &a.Name, &a.Students, &a.Submissions, &last, &a.DriveFolderURL); err != nil {
			return nil, fmt.Errorf("scanning module activity: %w", err)
		}
		a.LastSubmission = last.t
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) StudentActivity() ([]model.StudentActivity, error) {
	rows, err := s.db.Query(`SELECT st.full_name, st.email,
			COUNT(DISTINCT sub.module_id), COUNT(sub.id), MIN(sub.detected_at), MAX(sub.detected_at)
		FROM students st
		LEFT JOIN submissions sub ON sub.student_id = st.id
		GROUP BY st.id, st.full_name, st.email
		ORDER BY COUNT(sub.id) DESC, st.full_name`)
	if err != nil {
		return nil, fmt.Errorf("student activity: %w", err)
	}
	defer rows.Close()

	var out []model.StudentActivity
	for rows.Next() {
		var a model.StudentActivity
		var first, last nullTime
		if err := rows.Scan(&a.FullName, &a.Email, &a.ModulesCompleted, &a.TotalSubmissions, &first, &last); err != nil {
			return nil, fmt.Errorf("scanning student activity: %w", err)
		}
		a.FirstActivity = first.t
		a.LastActivity = last.t
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) RecentSubmissions(cutoff time.Time, limit int) ([]model.RecentSubmission, error) {
	q := fmt.Sprintf(`SELECT st.full_name, st.email, m.name, sub.filename, sub.file_extension, sub.size_mb, sub.detected_at, sub.drive_url
		FROM submissions sub
		JOIN students st ON st.id = sub.student_id
		JOIN modules m ON m.id = sub.module_id
		WHERE sub.detected_at >= %s
		ORDER BY sub.detected_at DESC
		LIMIT %s`, s.dialect.Placeholder(1), s.dialect.Placeholder(2))
	rows, err := s.db.Query(q, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("recent submissions: %w", err)
	}
	defer rows.Close()

	var out []model.RecentSubmission
	for rows.Next() {
		var r model.RecentSubmission
		if err := rows.Scan(&r.StudentName, &r.Email, &r.ModuleName, &r.Filename, &r.FileExtension, &r.SizeMB, &r.DetectedAt, &r.DriveURL); err != nil {
			return nil, fmt.Errorf("scanning recent submission: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) DailyActivity(cutoff time.Time) ([]model.DailyActivity, error) {
	day := s.dialect.DayExpr("detected_at")
	q := fmt.Sprintf(`SELECT %s AS day, COUNT(*), COUNT(DISTINCT student_id)
		FROM submissions
		WHERE detected_at >= %s
		GROUP BY day
		ORDER BY day`, day, s.dialect.Placeholder(1))
	rows, err := s.db.Query(q, cutoff)
	if err != nil {
		return nil, fmt.Errorf("daily activity: %w", err)
	}
	defer rows.Close()

	var out []model.DailyActivity
	for rows.Next() {
		var d model.DailyActivity
		if err := rows.Scan(&d.Date, &d.Submissions, &d.ActiveStudents); err != nil {
			return nil, fmt.Errorf("scanning daily activity: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) TopStudents(cutoff time.Time, n int) ([]model.TopStudent, error) {
	q := fmt.Sprintf(`SELECT st.full_name, COUNT(sub.id) AS total
		FROM submissions sub
		JOIN students st ON st.id = sub.student_id
		WHERE sub.detected_at >= %s
		GROUP BY st.id, st.full_name
		ORDER BY total DESC, st.full_name
		LIMIT %s`, s.dialect.Placeholder(1), s.dialect.Placeholder(2))
	rows, err := s.db.Query(q, cutoff, n)
	if err != nil {
		return nil, fmt.Errorf("top students: %w", err)
	}
	defer rows.Close()

	var out []model.TopStudent
	for rows.Next() {
		var t model.TopStudent
		if err := rows.Scan(&t.FullName, &t.Submissions); err != nil {
			return nil, fmt.Errorf("scanning top student: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// nullTime scans nullable timestamps from aggregate expressions. SQLite
// returns such columns as strings since MIN/MAX lose the declared column
// type; PostgreSQL returns time.Time. Both land here.
type nullTime struct {
	t *time.Time
}

func (n *nullTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		n.t = &v
		return nil
	case []byte:
		return n.parse(string(v))
	case string:
		return n.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into timestamp", value)
	}
}

func (n *nullTime) parse(s string) error {
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
		time.RFC3339Nano,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			n.t = &t
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", s)
}

// Derived submission fields

// ParseDriveTime parses the timestamp formats the remote API emits. Returns
// nil when the value is empty or unparseable; the column then stays NULL.
func ParseDriveTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

func sizeMB(bytes int64) float64 {
	return math.Round(float64(bytes)/(1024*1024)*100) / 100
}

func fileExtension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return "noext"
	}
	ext := strings.ToLower(name[i+1:])
	if len(ext) > 50 {
		ext = ext[:50]
	}
	return ext
}

func fileURL(id string) string {
	return fmt.Sprintf("https://drive.google.com/file/d/%s/view", id)
}

func folderURL(id string) string {
	return fmt.Sprintf("https://drive.google.com/drive/folders/%s", id)
}

func uploaderEmail(f track.File) string {
	if f.LastModifyingUser != nil {
		return f.LastModifyingUser.EmailAddress
	}
	return ""
}

func ownerEmail(f track.File) string {
	if len(f.Owners) > 0 {
		return f.Owners[0].EmailAddress
	}
	return ""
}
