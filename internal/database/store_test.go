package database

import (
	"testing"
	"time"

	"classtrack-go/internal/model"
	"classtrack-go/internal/track"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error = %v", err)
	}

	store, err := NewStore(db, SQLite())
	if err != nil {
		db.Close()
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

var testTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func TestStore_CreateModule(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	id1, err := s.CreateModule("Módulo 1", "folder-1", "first")
	if err != nil {
		t.Fatalf("CreateModule() error = %v", err)
	}
	id2, err := s.CreateModule("Correcciones", "folder-2", "")
	if err != nil {
		t.Fatalf("CreateModule() error = %v", err)
	}
	if id1 == id2 {
		t.Fatalf("module ids collide: %d", id1)
	}

	mod, err := s.ModuleByDriveFolder("folder-1")
	if err != nil {
		t.Fatalf("ModuleByDriveFolder() error = %v", err)
	}
	if mod == nil {
		t.Fatal("ModuleByDriveFolder() = nil, want module")
	}
	if mod.Code != "MOD01" {
		t.Errorf("Code = %q, want %q", mod.Code, "MOD01")
	}
	if mod.OrderIndex != 1 {
		t.Errorf("OrderIndex = %d, want 1", mod.OrderIndex)
	}
	if mod.DriveFolderURL != "https://drive.google.com/drive/folders/folder-1" {
		t.Errorf("DriveFolderURL = %q", mod.DriveFolderURL)
	}

	mod2, err := s.ModuleByID(id2)
	if err != nil {
		t.Fatalf("ModuleByID() error = %v", err)
	}
	if mod2.Code != "CORR" {
		t.Errorf("Code = %q, want %q", mod2.Code, "CORR")
	}
	if mod2.OrderIndex != 2 {
		t.Errorf("OrderIndex = %d, want 2", mod2.OrderIndex)
	}

	missing, err := s.ModuleByDriveFolder("folder-x")
	if err != nil {
		t.Fatalf("ModuleByDriveFolder() error = %v", err)
	}
	if missing != nil {
		t.Errorf("ModuleByDriveFolder(folder-x) = %+v, want nil", missing)
	}
}

func TestStore_UpsertStudent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	id1, err := s.UpsertStudent("ana", "ana@example.com")
	if err != nil {
		t.Fatalf("UpsertStudent() error = %v", err)
	}

	id2, err := s.UpsertStudent("Ana López", "ana@example.com")
	if err != nil {
		t.Fatalf("UpsertStudent() error = %v", err)
	}
	if id1 != id2 {
		t.Errorf("upsert returned new id %d, want %d", id2, id1)
	}

	students, err := s.Students()
	if err != nil {
		t.Fatalf("Students() error = %v", err)
	}
	if len(students) != 1 {
		t.Fatalf("len(Students()) = %d, want 1", len(students))
	}
	if students[0].FullName != "Ana López" {
		t.Errorf("FullName = %q, want %q", students[0].FullName, "Ana López")
	}

	st, err := s.StudentByEmail("ana@example.com")
	if err != nil {
		t.Fatalf("StudentByEmail() error = %v", err)
	}
	if st == nil || st.ID != id1 {
		t.Errorf("StudentByEmail() = %+v, want id %d", st, id1)
	}
}

func TestStore_UpsertSubmission(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	moduleID, err := s.CreateModule("Módulo 1", "folder-1", "")
	if err != nil {
		t.Fatalf("CreateModule() error = %v", err)
	}
	studentID, err := s.UpsertStudent("Ana", "ana@example.com")
	if err != nil {
		t.Fatalf("UpsertStudent() error = %v", err)
	}

	file := track.File{
		ID:           "file-1",
		Name:         "Modulo1_Ana_01.JPG",
		MimeType:     "image/jpeg",
		Size:         3 * 1024 * 1024,
		ModifiedTime: "2024-01-10T09:00:00.000Z",
	}
	id1, err := s.UpsertSubmission(moduleID, studentID, file, testTime)
	if err != nil {
		t.Fatalf("UpsertSubmission() error = %v", err)
	}

	recent, err := s.RecentSubmissions(testTime.AddDate(0, 0, -1), 10)
	if err != nil {
		t.Fatalf("RecentSubmissions() error = %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("len(RecentSubmissions()) = %d, want 1", len(recent))
	}
	sub := recent[0]
	if sub.SizeMB != 3.0 {
		t.Errorf("SizeMB = %v, want 3.0", sub.SizeMB)
	}
	if sub.FileExtension != "jpg" {
		t.Errorf("FileExtension = %q, want %q", sub.FileExtension, "jpg")
	}
	if sub.DriveURL != "https://drive.google.com/file/d/file-1/view" {
		t.Errorf("DriveURL = %q", sub.DriveURL)
	}

	// Re-detection updates file details but never re-attributes.
	otherModule, err := s.CreateModule("Módulo 2", "folder-2", "")
	if err != nil {
		t.Fatalf("CreateModule() error = %v", err)
	}
	otherStudent, err := s.UpsertStudent("Luis", "luis@example.com")
	if err != nil {
		t.Fatalf("UpsertStudent() error = %v", err)
	}

	file.Name = "Modulo1_Ana_01_v2.jpg"
	file.Size = 1024 * 1024
	id2, err := s.UpsertSubmission(otherModule, otherStudent, file, testTime.Add(time.Hour))
	if err != nil {
		t.Fatalf("second UpsertSubmission() error = %v", err)
	}
	if id1 != id2 {
		t.Errorf("upsert returned new id %d, want %d", id2, id1)
	}

	recent, err = s.RecentSubmissions(testTime.AddDate(0, 0, -1), 10)
	if err != nil {
		t.Fatalf("RecentSubmissions() error = %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("len(RecentSubmissions()) = %d, want 1", len(recent))
	}
	sub = recent[0]
	if sub.Filename != "Modulo1_Ana_01_v2.jpg" {
		t.Errorf("Filename = %q, want updated name", sub.Filename)
	}
	if sub.SizeMB != 1.0 {
		t.Errorf("SizeMB = %v, want 1.0", sub.SizeMB)
	}
	if sub.ModuleName != "Módulo 1" {
		t.Errorf("ModuleName = %q, attribution must not change", sub.ModuleName)
	}
	if sub.Email != "ana@example.com" {
		t.Errorf("Email = %q, attribution must not change", sub.Email)
	}
}

func TestStore_SyncRuns(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	id, err := s.CreateSyncRun("full_scan", testTime)
	if err != nil {
		t.Fatalf("CreateSyncRun() error = %v", err)
	}

	runs, err := s.RecentSyncRuns(10)
	if err != nil {
		t.Fatalf("RecentSyncRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(RecentSyncRuns()) = %d, want 1", len(runs))
	}
	if runs[0].Status != model.RunStatusRunning {
		t.Errorf("Status = %q, want %q", runs[0].Status, model.RunStatusRunning)
	}
	if runs[0].CompletedAt != nil {
		t.Error("CompletedAt set before finish")
	}

	done := testTime.Add(2 * time.Minute)
	if err := s.FinishSyncRun(id, model.RunStatusCompleted, 12, 0, "", done); err != nil {
		t.Fatalf("FinishSyncRun() error = %v", err)
	}

	runs, _ = s.RecentSyncRuns(10)
	if runs[0].Status != model.RunStatusCompleted {
		t.Errorf("Status = %q, want %q", runs[0].Status, model.RunStatusCompleted)
	}
	if runs[0].FilesProcessed != 12 {
		t.Errorf("FilesProcessed = %d, want 12", runs[0].FilesProcessed)
	}
	if runs[0].CompletedAt == nil {
		t.Fatal("CompletedAt = nil after finish")
	}

	if err := s.FinishSyncRun(9999, model.RunStatusCompleted, 0, 0, "", done); err == nil {
		t.Error("FinishSyncRun(unknown id) error = nil, want error")
	}
}

func TestStore_Aggregates(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	m1, _ := s.CreateModule("Módulo 1", "folder-1", "")
	m2, _ := s.CreateModule("Módulo 2", "folder-2", "")
	ana, _ := s.UpsertStudent("Ana", "ana@example.com")
	luis, _ := s.UpsertStudent("Luis", "luis@example.com")

	submit := func(fileID string, module, student int64, at time.Time) {
		t.Helper()
		_, err := s.UpsertSubmission(module, student, track.File{ID: fileID, Name: fileID + ".jpg"}, at)
		if err != nil {
			t.Fatalf("UpsertSubmission(%s) error = %v", fileID, err)
		}
	}
	submit("f1", m1, ana, testTime)
	submit("f2", m2, ana, testTime.Add(time.Hour))
	submit("f3", m1, luis, testTime.AddDate(0, 0, -40))

	stats, err := s.Statistics(testTime)
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}
	if stats.TotalSubmissions != 3 {
		t.Errorf("TotalSubmissions = %d, want 3", stats.TotalSubmissions)
	}
	if stats.SubmissionsLastWeek != 2 {
		t.Errorf("SubmissionsLastWeek = %d, want 2", stats.SubmissionsLastWeek)
	}
	if stats.ActiveStudentsLastMonth != 1 {
		t.Errorf("ActiveStudentsLastMonth = %d, want 1", stats.ActiveStudentsLastMonth)
	}

	cutoff := testTime.AddDate(0, 0, -7)

	sum, err := s.ReportSummary(cutoff)
	if err != nil {
		t.Fatalf("ReportSummary() error = %v", err)
	}
	if sum.ActiveStudents != 1 {
		t.Errorf("ActiveStudents = %d, want 1", sum.ActiveStudents)
	}

	modules, err := s.ModuleActivity()
	if err != nil {
		t.Fatalf("ModuleActivity() error = %v", err)
	}
	if len(modules) != 2 {
		t.Fatalf("len(ModuleActivity()) = %d, want 2", len(modules))
	}
	if modules[0].Submissions != 2 || modules[0].Students != 2 {
		t.Errorf("module 1 activity = %d subs, %d students, want 2, 2",
			modules[0].Submissions, modules[0].Students)
	}
	if modules[0].LastSubmission == nil {
		t.Error("module 1 LastSubmission = nil")
	}

	students, err := s.StudentActivity()
	if err != nil {
		t.Fatalf("StudentActivity() error = %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("len(StudentActivity()) = %d, want 2", len(students))
	}
	if students[0].FullName != "Ana" || students[0].TotalSubmissions != 2 {
		t.Errorf("most active = %q with %d, want Ana with 2",
			students[0].FullName, students[0].TotalSubmissions)
	}
	if students[0].ModulesCompleted != 2 {
		t.Errorf("ModulesCompleted = %d, want 2", students[0].ModulesCompleted)
	}

	daily, err := s.DailyActivity(cutoff)
	if err != nil {
		t.Fatalf("DailyActivity() error = %v", err)
	}
	if len(daily) != 1 {
		t.Fatalf("len(DailyActivity()) = %d, want 1", len(daily))
	}
	if daily[0].Date != "2024-01-15" {
		t.Errorf("Date = %q, want %q", daily[0].Date, "2024-01-15")
	}
	if daily[0].Submissions != 2 || daily[0].ActiveStudents != 1 {
		t.Errorf("daily = %d subs, %d students, want 2, 1",
			daily[0].Submissions, daily[0].ActiveStudents)
	}

	top, err := s.TopStudents(cutoff, 5)
	if err != nil {
		t.Fatalf("TopStudents() error = %v", err)
	}
	if len(top) != 1 {
		t.Fatalf("len(TopStudents()) = %d, want 1", len(top))
	}
	if top[0].FullName != "Ana" || top[0].Submissions != 2 {
		t.Errorf("top = %q with %d, want Ana with 2", top[0].FullName, top[0].Submissions)
	}
}

func TestParseDriveTime(t *testing.T) {
	t.Parallel()

	got := ParseDriveTime("2024-01-10T09:00:00.000Z")
	if got == nil {
		t.Fatal("ParseDriveTime(RFC3339 millis) = nil")
	}
	if !got.Equal(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("parsed = %v", got)
	}

	if ParseDriveTime("2024-01-10T09:00:00") == nil {
		t.Error("ParseDriveTime(no zone) = nil, want parsed")
	}
	if ParseDriveTime("") != nil {
		t.Error("ParseDriveTime(empty) != nil")
	}
	if ParseDriveTime("not-a-time") != nil {
		t.Error("ParseDriveTime(garbage) != nil")
	}
}

func TestFileExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"photo.JPG", "jpg"},
		{"archive.tar.gz", "gz"},
		{"README", "noext"},
		{"trailing.", "noext"},
	}
	for _, tt := range tests {
		if got := fileExtension(tt.name); got != tt.want {
			t.Errorf("fileExtension(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSizeMB(t *testing.T) {
	t.Parallel()

	if got := sizeMB(3 * 1024 * 1024); got != 3.0 {
		t.Errorf("sizeMB(3MiB) = %v, want 3.0", got)
	}
	if got := sizeMB(1536 * 1024); got != 1.5 {
		t.Errorf("sizeMB(1.5MiB) = %v, want 1.5", got)
	}
	if got := sizeMB(1); got != 0.0 {
		t.Errorf("sizeMB(1) = %v, want 0.0", got)
	}
}
